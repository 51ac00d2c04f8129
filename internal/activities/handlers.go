// Package activities implements the list, get, create, edit and delete
// handlers. Each performs one logical persistence operation and reports the
// outcome as a domain.Result.
package activities

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"example.com/reactivities/internal/domain"
	"example.com/reactivities/internal/mediator"
)

// Failure messages reported to clients.
const (
	msgNotFound     = "Activity not found"
	msgCreateFailed = "Failed to create the activity"
	msgUpdateFailed = "Failed to update the activity"
	msgDeleteFailed = "Failed to delete the activity"
)

// Store captures the persistence operations the handlers rely on. Write
// methods report the number of rows affected by the commit.
type Store interface {
	List(ctx context.Context) ([]domain.Activity, error)
	Get(ctx context.Context, id string) (*domain.Activity, error)
	Insert(ctx context.Context, activity domain.Activity) (int64, error)
	Update(ctx context.Context, activity domain.Activity) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// Handlers groups the activity request handlers around a Store.
type Handlers struct {
	store Store
	newID func() string
}

// Option configures Handlers.
type Option func(*Handlers)

// WithIDGenerator overrides how new activity ids are produced.
func WithIDGenerator(fn func() string) Option {
	return func(h *Handlers) {
		h.newID = fn
	}
}

// NewHandlers constructs Handlers.
func NewHandlers(store Store, opts ...Option) *Handlers {
	h := &Handlers{store: store, newID: uuid.NewString}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register binds every handler to its request kind.
func (h *Handlers) Register(b *mediator.Builder) {
	mediator.Register(b, h.List)
	mediator.Register(b, h.Get)
	mediator.Register(b, h.Create)
	mediator.Register(b, h.Edit)
	mediator.Register(b, h.Delete)
}

// List returns all activities in store order.
func (h *Handlers) List(ctx context.Context, _ ListQuery) (domain.Result[[]domain.Activity], error) {
	items, err := h.store.List(ctx)
	if err != nil {
		return domain.Result[[]domain.Activity]{}, err
	}
	if items == nil {
		items = []domain.Activity{}
	}
	return domain.Success(items), nil
}

// Get returns one activity.
func (h *Handlers) Get(ctx context.Context, q DetailsQuery) (domain.Result[*domain.Activity], error) {
	activity, err := h.store.Get(ctx, q.ID)
	if err != nil {
		return domain.Result[*domain.Activity]{}, err
	}
	if activity == nil {
		return domain.Failure[*domain.Activity](msgNotFound, http.StatusNotFound), nil
	}
	return domain.Success(activity), nil
}

// Create persists a new activity and returns its id.
func (h *Handlers) Create(ctx context.Context, c CreateCommand) (domain.Result[string], error) {
	activity := domain.NewActivity(h.newID(), c.Activity.Fields())

	rows, err := h.store.Insert(ctx, activity)
	if err != nil {
		return domain.Result[string]{}, err
	}
	if rows == 0 {
		return domain.Failure[string](msgCreateFailed, http.StatusBadRequest), nil
	}
	return domain.Success(activity.ID), nil
}

// Edit replaces every mutable field of an existing activity.
func (h *Handlers) Edit(ctx context.Context, c EditCommand) (domain.Result[domain.Unit], error) {
	activity, err := h.store.Get(ctx, c.Activity.ID)
	if err != nil {
		return domain.Result[domain.Unit]{}, err
	}
	if activity == nil {
		return domain.Failure[domain.Unit](msgNotFound, http.StatusNotFound), nil
	}

	activity.Replace(c.Activity.Fields(), c.Activity.IsCanceled)

	rows, err := h.store.Update(ctx, *activity)
	if err != nil {
		return domain.Result[domain.Unit]{}, err
	}
	if rows == 0 {
		return domain.Failure[domain.Unit](msgUpdateFailed, http.StatusBadRequest), nil
	}
	return domain.Success(domain.Unit{}), nil
}

// Delete removes an activity.
func (h *Handlers) Delete(ctx context.Context, c DeleteCommand) (domain.Result[domain.Unit], error) {
	activity, err := h.store.Get(ctx, c.ID)
	if err != nil {
		return domain.Result[domain.Unit]{}, err
	}
	if activity == nil {
		return domain.Failure[domain.Unit](msgNotFound, http.StatusNotFound), nil
	}

	rows, err := h.store.Delete(ctx, activity.ID)
	if err != nil {
		return domain.Result[domain.Unit]{}, err
	}
	if rows == 0 {
		return domain.Failure[domain.Unit](msgDeleteFailed, http.StatusBadRequest), nil
	}
	return domain.Success(domain.Unit{}), nil
}
