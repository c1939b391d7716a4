package domain

import (
	"testing"
	"time"
)

func TestDurationForPrice(t *testing.T) {
	if got := DurationForPrice(450); got != 150 {
		t.Errorf("price 450 = %d min, want 150", got)
	}
	if got := DurationForPrice(750); got != 180 {
		t.Errorf("price 750 = %d min, want 180", got)
	}
	if got := DurationForPrice(1200); got != 240 {
		t.Errorf("price 1200 = %d min, want 240", got)
	}
}

func TestPriorityFromDue(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	if got := PriorityFromDue(now.AddDate(0, 0, -3), now); got != 10 {
		t.Errorf("overdue job priority = %d, want 10", got)
	}
	if got := PriorityFromDue(now.AddDate(0, 0, 60), now); got != 1 {
		t.Errorf("far-out job priority = %d, want 1", got)
	}

	mid := PriorityFromDue(now.AddDate(0, 0, 14), now)
	if mid <= 1 || mid >= 10 {
		t.Errorf("two-week job priority = %d, want strictly between 1 and 10", mid)
	}
}
