package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tryonstudio/internal/moodboard"
)

// maxRetainedRuns bounds the in-memory history.
const maxRetainedRuns = 50

// InMemoryStore is a thread-safe store used when a database is not configured.
type InMemoryStore struct {
	mu   sync.RWMutex
	runs []Run
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{runs: make([]Run, 0)}
}

// CreateRun prepends a run, trimming history beyond the retention cap.
func (s *InMemoryStore) CreateRun(_ context.Context, input Run) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now()
	}
	if input.Views == nil {
		input.Views = moodboard.Moodboard{}
	}

	s.runs = append([]Run{input}, s.runs...)
	if len(s.runs) > maxRetainedRuns {
		s.runs = s.runs[:maxRetainedRuns]
	}

	return input, nil
}

// ListRuns returns a snapshot of stored runs, newest first.
func (s *InMemoryStore) ListRuns(_ context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]Run, len(s.runs))
	copy(snapshot, s.runs)
	return snapshot, nil
}

// GetRun returns a run by ID.
func (s *InMemoryStore) GetRun(_ context.Context, id string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return Run{}, ErrNotFound
}

// ReplaceView substitutes the URL of one labeled view. Last writer wins;
// edits are not serialized per entry.
func (s *InMemoryStore) ReplaceView(_ context.Context, id, label, url string) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for idx := range s.runs {
		if s.runs[idx].ID != id {
			continue
		}
		views := make(moodboard.Moodboard, len(s.runs[idx].Views))
		copy(views, s.runs[idx].Views)
		for v := range views {
			if views[v].Label == label {
				views[v] = moodboard.View{Label: label, URL: url}
			}
		}
		s.runs[idx].Views = views
		return s.runs[idx], nil
	}
	return Run{}, ErrNotFound
}

// DeleteRun removes a run by ID.
func (s *InMemoryStore) DeleteRun(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for idx, r := range s.runs {
		if r.ID == id {
			s.runs = append(s.runs[:idx], s.runs[idx+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Close satisfies the Store interface.
func (s *InMemoryStore) Close() {}
