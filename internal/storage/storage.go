package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"tryonstudio/internal/moodboard"
)

// ErrNotFound indicates that a run could not be located in the backing store.
var ErrNotFound = errors.New("run not found")

// Run records one completed moodboard generation.
type Run struct {
	ID              string              `json:"id"`
	BackgroundStyle string              `json:"background_style"`
	ModelIdentity   string              `json:"model_identity,omitempty"`
	CompositeURL    string              `json:"composite_url,omitempty"`
	Views           moodboard.Moodboard `json:"views"`
	Status          string              `json:"status"`
	CreatedAt       time.Time           `json:"created_at"`
}

// Store defines the persistence behaviors the application relies on.
type Store interface {
	CreateRun(ctx context.Context, input Run) (Run, error)
	ListRuns(ctx context.Context) ([]Run, error)
	GetRun(ctx context.Context, id string) (Run, error)
	ReplaceView(ctx context.Context, id, label, url string) (Run, error)
	DeleteRun(ctx context.Context, id string) error
	Close()
}

// NewStore selects a backing store based on whether a database URL is provided.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	if databaseURL == "" {
		return NewInMemoryStore(), nil
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := ensureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS runs (
        id TEXT PRIMARY KEY,
        background_style TEXT NOT NULL,
        model_identity TEXT,
        composite_url TEXT,
        views JSONB DEFAULT '[]'::jsonb,
        status TEXT,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`)
	if err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	return nil
}
