package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tryonstudio/internal/moodboard"
)

// PostgresStore persists runs in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// CreateRun stores the provided run.
func (s *PostgresStore) CreateRun(ctx context.Context, input Run) (Run, error) {
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now()
	}

	views, err := json.Marshal(input.Views)
	if err != nil {
		return Run{}, fmt.Errorf("marshal views: %w", err)
	}

	if _, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, background_style, model_identity, composite_url, views, status, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		input.ID, input.BackgroundStyle, input.ModelIdentity, input.CompositeURL, views, input.Status, input.CreatedAt); err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	return input, nil
}

// ListRuns returns the most recent runs.
func (s *PostgresStore) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, background_style, model_identity, composite_url, views, status, created_at
         FROM runs ORDER BY created_at DESC LIMIT 50`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		item, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, item)
	}
	return runs, rows.Err()
}

// GetRun returns a run by ID.
func (s *PostgresStore) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, background_style, model_identity, composite_url, views, status, created_at
         FROM runs WHERE id = $1`, id)
	item, err := scanRun(row)
	if err == pgx.ErrNoRows {
		return Run{}, ErrNotFound
	}
	return item, err
}

// ReplaceView rewrites one labeled view URL on the stored run.
func (s *PostgresStore) ReplaceView(ctx context.Context, id, label, url string) (Run, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return Run{}, err
	}

	for idx := range run.Views {
		if run.Views[idx].Label == label {
			run.Views[idx] = moodboard.View{Label: label, URL: url}
		}
	}

	views, err := json.Marshal(run.Views)
	if err != nil {
		return Run{}, fmt.Errorf("marshal views: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `UPDATE runs SET views = $2 WHERE id = $1`, id, views)
	if err != nil {
		return Run{}, fmt.Errorf("update run views: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Run{}, ErrNotFound
	}
	return run, nil
}

// DeleteRun removes a run by ID.
func (s *PostgresStore) DeleteRun(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Close releases database resources.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func scanRun(row pgx.Row) (Run, error) {
	var (
		item  Run
		views []byte
	)
	if err := row.Scan(&item.ID, &item.BackgroundStyle, &item.ModelIdentity, &item.CompositeURL, &views, &item.Status, &item.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return Run{}, pgx.ErrNoRows
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if len(views) > 0 {
		if err := json.Unmarshal(views, &item.Views); err != nil {
			return Run{}, fmt.Errorf("decode views: %w", err)
		}
	}
	return item, nil
}
