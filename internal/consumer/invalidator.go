package consumer

import (
	"context"

	"example.com/reactivities/internal/outbox"
)

// Evictor drops cached entries for one activity.
type Evictor interface {
	Evict(ctx context.Context, id string) error
}

// CacheInvalidator evicts cache entries for every activity event. It runs
// after the write has committed, so it also clears entries repopulated from a
// read that raced the write.
type CacheInvalidator struct {
	cache Evictor
}

// NewCacheInvalidator constructs a CacheInvalidator.
func NewCacheInvalidator(cache Evictor) *CacheInvalidator {
	return &CacheInvalidator{cache: cache}
}

// Handle implements Handler.
func (c *CacheInvalidator) Handle(ctx context.Context, msg Message) error {
	switch msg.EventType {
	case outbox.EventActivityCreated, outbox.EventActivityUpdated, outbox.EventActivityDeleted:
		return c.cache.Evict(ctx, msg.AggregateID)
	default:
		return nil
	}
}
