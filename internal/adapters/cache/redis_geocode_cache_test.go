package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"schedule-optimizer-service/internal/domain"
)

func newTestRedisCache(t *testing.T) *RedisGeocodeCache {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisGeocodeCache(client)
}

func TestRedisGeocodeCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestRedisCache(t)

	stored := map[string]domain.Coordinates{
		"4500 kingsway, burnaby":   {Lon: -123.00, Lat: 49.23},
		"800 main st, vancouver":   {Lon: -123.10, Lat: 49.28},
		"7200 canada way, burnaby": {Lon: -122.95, Lat: 49.24},
	}
	if err := c.PutMany(ctx, stored); err != nil {
		t.Fatalf("PutMany: %v", err)
	}

	got, err := c.GetMany(ctx, []string{
		"4500 kingsway, burnaby",
		"800 main st, vancouver",
		"never geocoded address",
	})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("hits = %d, want 2", len(got))
	}
	if got["4500 kingsway, burnaby"].Lat != 49.23 {
		t.Errorf("wrong coordinates for kingsway: %+v", got["4500 kingsway, burnaby"])
	}
	if _, ok := got["never geocoded address"]; ok {
		t.Errorf("unknown address should be a miss, not a hit")
	}
}

func TestRedisGeocodeCacheDeduplicatesKeys(t *testing.T) {
	ctx := context.Background()
	c := newTestRedisCache(t)

	if err := c.PutMany(ctx, map[string]domain.Coordinates{"a st": {Lon: 1, Lat: 2}}); err != nil {
		t.Fatalf("PutMany: %v", err)
	}

	got, err := c.GetMany(ctx, []string{"a st", "a st", "  ", "a st"})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("hits = %d, want 1", len(got))
	}
}

func TestRedisGeocodeCacheEmptyInputs(t *testing.T) {
	ctx := context.Background()
	c := newTestRedisCache(t)

	got, err := c.GetMany(ctx, nil)
	if err != nil {
		t.Fatalf("GetMany(nil): %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no hits, got %v", got)
	}

	if err := c.PutMany(ctx, nil); err != nil {
		t.Errorf("PutMany(nil) should be a no-op, got %v", err)
	}

	if err := c.PutMany(ctx, map[string]domain.Coordinates{" ": {}}); err == nil {
		t.Errorf("empty address key should be rejected")
	}
}
