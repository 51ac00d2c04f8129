// Package cache adds a Redis read-through layer in front of an activity store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"example.com/reactivities/internal/domain"
	"example.com/reactivities/internal/observability"
)

const (
	listKey    = "activities:list"
	listGenKey = "activities:gen:list"

	// generationTTL outlives any single read so a counter cannot expire
	// between a read's snapshot and its fill.
	generationTTL = 24 * time.Hour
)

var errStaleRead = errors.New("cache: generation changed during read")

type backend interface {
	List(ctx context.Context) ([]domain.Activity, error)
	Get(ctx context.Context, id string) (*domain.Activity, error)
	Insert(ctx context.Context, activity domain.Activity) (int64, error)
	Update(ctx context.Context, activity domain.Activity) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// Store wraps a backing store with Redis-backed caching for reads.
type Store struct {
	base  backend
	redis *redis.Client
	ttl   time.Duration
}

// NewStore creates a caching wrapper using the provided Redis client and TTL.
func NewStore(base backend, client *redis.Client, ttl time.Duration) *Store {
	if base == nil {
		panic("cache.NewStore: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Store{base: base, redis: client, ttl: ttl}
}

func (s *Store) List(ctx context.Context) ([]domain.Activity, error) {
	var cached []domain.Activity
	if s.load(ctx, listKey, &cached) {
		return cached, nil
	}

	gen, fill := s.generation(ctx, listGenKey)
	activities, err := s.base.List(ctx)
	if err != nil {
		return nil, err
	}
	if fill {
		s.storeIfCurrent(ctx, listGenKey, gen, listKey, activities)
	}
	return activities, nil
}

func (s *Store) Get(ctx context.Context, id string) (*domain.Activity, error) {
	var cached domain.Activity
	if s.load(ctx, activityKey(id), &cached) {
		return &cached, nil
	}

	gen, fill := s.generation(ctx, activityGenKey(id))
	activity, err := s.base.Get(ctx, id)
	if err != nil || activity == nil {
		return activity, err
	}
	if fill {
		s.storeIfCurrent(ctx, activityGenKey(id), gen, activityKey(id), activity)
	}
	return activity, nil
}

func (s *Store) Insert(ctx context.Context, activity domain.Activity) (int64, error) {
	rows, err := s.base.Insert(ctx, activity)
	if err == nil && rows > 0 {
		s.evict(ctx, activity.ID)
	}
	return rows, err
}

func (s *Store) Update(ctx context.Context, activity domain.Activity) (int64, error) {
	rows, err := s.base.Update(ctx, activity)
	if err == nil && rows > 0 {
		s.evict(ctx, activity.ID)
	}
	return rows, err
}

func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	rows, err := s.base.Delete(ctx, id)
	if err == nil && rows > 0 {
		s.evict(ctx, id)
	}
	return rows, err
}

func (s *Store) load(ctx context.Context, key string, dst any) bool {
	if s.redis == nil {
		return false
	}
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			observability.RecordCacheLookup("miss")
			return false
		}
		// On redis errors fall back to the backing store without failing.
		log.WithError(err).WithField("key", key).Warn("cache read failed")
		observability.RecordCacheLookup("error")
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		_ = s.redis.Del(ctx, key).Err()
		observability.RecordCacheLookup("error")
		return false
	}
	observability.RecordCacheLookup("hit")
	return true
}

// generation reads the counter Evict bumps for genKey. It must be read before
// the backing store so a fill can tell whether a write landed in between.
// fill is false when nothing should be cached.
func (s *Store) generation(ctx context.Context, genKey string) (gen string, fill bool) {
	if s.redis == nil || s.ttl == 0 {
		return "", false
	}
	gen, err := s.redis.Get(ctx, genKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", false
	}
	return gen, true
}

// storeIfCurrent caches value under key unless genKey moved past gen.
func (s *Store) storeIfCurrent(ctx context.Context, genKey, gen, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}

	err = s.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleRead
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleRead), errors.Is(err, redis.TxFailedErr):
		observability.RecordCacheLookup("stale")
	default:
		log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

// Evict drops the list entry and the entry for id, and bumps both
// generations so reads already in flight do not refill them.
func (s *Store) Evict(ctx context.Context, id string) error {
	if s.redis == nil {
		return nil
	}
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, genKey := range []string{listGenKey, activityGenKey(id)} {
			pipe.Incr(ctx, genKey)
			pipe.Expire(ctx, genKey, generationTTL)
		}
		pipe.Del(ctx, listKey, activityKey(id))
		return nil
	})
	return err
}

func (s *Store) evict(ctx context.Context, id string) {
	if err := s.Evict(ctx, id); err != nil {
		log.WithError(err).WithField("activity_id", id).Warn("cache evict failed")
	}
}

func activityKey(id string) string {
	return "activities:id:" + id
}

func activityGenKey(id string) string {
	return "activities:gen:id:" + id
}
