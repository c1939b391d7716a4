package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"schedule-optimizer-service/internal/domain"
)

// SQLite-backed implementation of the ClusterSource port. The position
// column preserves table order, which the clusterer's first-match rule
// depends on.
type SqliteClusterRepository struct{ DB *sql.DB }

func NewSqliteClusterRepository(db *sql.DB) *SqliteClusterRepository {
	return &SqliteClusterRepository{DB: db}
}

func (s *SqliteClusterRepository) GetClusters(ctx context.Context) ([]domain.LocationCluster, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite cluster repository: DB is nil")
	}

	query := `
	SELECT
		cluster_id,
		name,
		lon,
		lat,
		radius_km,
		max_jobs_per_day,
		buffer_minutes,
		aliases,
		exclusions
	FROM clusters
	ORDER BY position;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get clusters: query clusters table: %w", err)
	}
	defer rows.Close()

	clusters := make([]domain.LocationCluster, 0, 8)
	for rows.Next() {
		var c domain.LocationCluster
		var aliases, exclusions []byte
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Center.Lon, &c.Center.Lat, &c.RadiusKM,
			&c.MaxJobsPerDay, &c.BufferMinutes, &aliases, &exclusions,
		); err != nil {
			return nil, fmt.Errorf("get clusters: scan row: %w", err)
		}

		if err := json.Unmarshal(aliases, &c.Aliases); err != nil {
			return nil, fmt.Errorf("get clusters: decode aliases for %q: %w", c.ID, err)
		}
		if len(exclusions) > 0 {
			if err := json.Unmarshal(exclusions, &c.Exclusions); err != nil {
				return nil, fmt.Errorf("get clusters: decode exclusions for %q: %w", c.ID, err)
			}
		}

		clusters = append(clusters, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get clusters: row iteration: %w", err)
	}

	return clusters, nil
}

// SaveClusters upserts cluster definitions, assigning positions in the
// order given.
func (s *SqliteClusterRepository) SaveClusters(ctx context.Context, clusters []domain.LocationCluster) error {
	if s.DB == nil {
		return errors.New("sqlite cluster repository: DB is nil")
	}
	if len(clusters) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save clusters: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO clusters (
		cluster_id,
		name,
		lon,
		lat,
		radius_km,
		max_jobs_per_day,
		buffer_minutes,
		aliases,
		exclusions,
		position
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("save clusters: db prepare: %w", err)
	}
	defer stmt.Close()

	for i, c := range clusters {
		aliases, err := json.Marshal(c.Aliases)
		if err != nil {
			return fmt.Errorf("save clusters: encode aliases for %q: %w", c.ID, err)
		}
		exclusions, err := json.Marshal(c.Exclusions)
		if err != nil {
			return fmt.Errorf("save clusters: encode exclusions for %q: %w", c.ID, err)
		}

		if _, err := stmt.ExecContext(ctx,
			c.ID, c.Name, c.Center.Lon, c.Center.Lat, c.RadiusKM,
			c.MaxJobsPerDay, c.BufferMinutes, aliases, exclusions, i,
		); err != nil {
			return fmt.Errorf("save clusters: insert %q: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save clusters: commit: %w", err)
	}
	return nil
}
