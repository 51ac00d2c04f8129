// Package memory provides an in-process activity store for local development
// and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"example.com/reactivities/internal/domain"
)

// Store keeps activities in a map guarded by a RWMutex.
type Store struct {
	mu         sync.RWMutex
	activities map[string]domain.Activity
	deleted    map[string]struct{}
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		activities: make(map[string]domain.Activity),
		deleted:    make(map[string]struct{}),
	}
}

// List returns all activities ordered by date then id.
func (s *Store) List(ctx context.Context) ([]domain.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Activity, 0, len(s.activities))
	for _, activity := range s.activities {
		out = append(out, activity)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// Get returns nil, nil when the id is unknown.
func (s *Store) Get(ctx context.Context, id string) (*domain.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	activity, ok := s.activities[id]
	if !ok {
		return nil, nil
	}
	return &activity, nil
}

// Insert adds a new activity. Ids already in use, or previously deleted, are
// rejected with zero rows affected.
func (s *Store) Insert(ctx context.Context, activity domain.Activity) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.activities[activity.ID]; exists {
		return 0, nil
	}
	if _, gone := s.deleted[activity.ID]; gone {
		return 0, nil
	}
	s.activities[activity.ID] = activity
	return 1, nil
}

// Update overwrites an existing activity.
func (s *Store) Update(ctx context.Context, activity domain.Activity) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.activities[activity.ID]; !exists {
		return 0, nil
	}
	s.activities[activity.ID] = activity
	return 1, nil
}

// Delete removes an activity and retires its id.
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.activities[id]; !exists {
		return 0, nil
	}
	delete(s.activities, id)
	s.deleted[id] = struct{}{}
	return 1, nil
}
