package activities

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/reactivities/internal/domain"
	"example.com/reactivities/internal/persistence/memory"
)

func sampleDto() BaseActivityDto {
	return BaseActivityDto{
		Title:       "Run",
		Date:        NewDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		Description: "d",
		Category:    "c",
		City:        "NY",
		Venue:       "Park",
	}
}

func TestCreateThenGetReturnsSubmittedFields(t *testing.T) {
	ctx := context.Background()
	h := NewHandlers(memory.NewStore())

	created, err := h.Create(ctx, CreateCommand{Activity: CreateActivityDto{BaseActivityDto: sampleDto()}})
	require.NoError(t, err)
	require.True(t, created.IsSuccess())
	require.NotEmpty(t, created.Value())

	got, err := h.Get(ctx, DetailsQuery{ID: created.Value()})
	require.NoError(t, err)
	require.True(t, got.IsSuccess())

	act := got.Value()
	assert.Equal(t, created.Value(), act.ID)
	assert.Equal(t, "Run", act.Title)
	assert.Equal(t, "d", act.Description)
	assert.Equal(t, "c", act.Category)
	assert.Equal(t, "NY", act.City)
	assert.Equal(t, "Park", act.Venue)
	assert.True(t, act.Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, act.IsCanceled)
}

func TestGetUnknownIsNotFound(t *testing.T) {
	h := NewHandlers(memory.NewStore())

	res, err := h.Get(context.Background(), DetailsQuery{ID: "missing"})
	require.NoError(t, err)
	assert.False(t, res.IsSuccess())
	assert.Equal(t, http.StatusNotFound, res.Code())
}

func TestEditUnknownIsNotFoundAndDoesNotWrite(t *testing.T) {
	store := &stubStore{}
	h := NewHandlers(store)

	dto := EditActivityDto{ID: "missing", BaseActivityDto: sampleDto()}
	res, err := h.Edit(context.Background(), EditCommand{Activity: dto})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.Code())
	assert.Zero(t, store.updates)
}

func TestEditReplacesEveryField(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	h := NewHandlers(store, WithIDGenerator(func() string { return "fixed-id" }))

	_, err := h.Create(ctx, CreateCommand{Activity: CreateActivityDto{BaseActivityDto: sampleDto()}})
	require.NoError(t, err)

	edited := BaseActivityDto{
		Title:       "Swim",
		Date:        NewDate(time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)),
		Description: "pool",
		Category:    "sport",
		City:        "LA",
		Venue:       "Gym",
		Latitude:    34.05,
		Longitude:   -118.24,
	}
	res, err := h.Edit(ctx, EditCommand{Activity: EditActivityDto{ID: "fixed-id", BaseActivityDto: edited, IsCanceled: true}})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	got, err := store.Get(ctx, "fixed-id")
	require.NoError(t, err)
	want := domain.Activity{
		ID: "fixed-id", Title: "Swim", Date: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		Description: "pool", Category: "sport", IsCanceled: true, City: "LA", Venue: "Gym",
		Latitude: 34.05, Longitude: -118.24,
	}
	assert.Equal(t, want, *got)
}

func TestDeleteTwiceSucceedsThenNotFound(t *testing.T) {
	ctx := context.Background()
	h := NewHandlers(memory.NewStore())

	created, err := h.Create(ctx, CreateCommand{Activity: CreateActivityDto{BaseActivityDto: sampleDto()}})
	require.NoError(t, err)

	first, err := h.Delete(ctx, DeleteCommand{ID: created.Value()})
	require.NoError(t, err)
	assert.True(t, first.IsSuccess())

	second, err := h.Delete(ctx, DeleteCommand{ID: created.Value()})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, second.Code())
}

func TestListCountsCreatesMinusDeletes(t *testing.T) {
	ctx := context.Background()
	h := NewHandlers(memory.NewStore())

	empty, err := h.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.NotNil(t, empty.Value())
	assert.Empty(t, empty.Value())

	var ids []string
	for i := 0; i < 5; i++ {
		res, err := h.Create(ctx, CreateCommand{Activity: CreateActivityDto{BaseActivityDto: sampleDto()}})
		require.NoError(t, err)
		ids = append(ids, res.Value())
	}
	for _, id := range ids[:2] {
		_, err := h.Delete(ctx, DeleteCommand{ID: id})
		require.NoError(t, err)
	}

	list, err := h.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, list.Value(), 3)
}

func TestZeroRowsAffectedIsBadRequest(t *testing.T) {
	ctx := context.Background()
	existing := &domain.Activity{ID: "a1", Title: "Run"}
	store := &stubStore{found: existing, rows: 0}
	h := NewHandlers(store)

	created, err := h.Create(ctx, CreateCommand{Activity: CreateActivityDto{BaseActivityDto: sampleDto()}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, created.Code())
	assert.Equal(t, msgCreateFailed, created.Error())

	edited, err := h.Edit(ctx, EditCommand{Activity: EditActivityDto{ID: "a1", BaseActivityDto: sampleDto()}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, edited.Code())
	assert.Equal(t, msgUpdateFailed, edited.Error())

	deleted, err := h.Delete(ctx, DeleteCommand{ID: "a1"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, deleted.Code())
	assert.Equal(t, msgDeleteFailed, deleted.Error())
}

func TestStoreErrorsPropagate(t *testing.T) {
	boom := errors.New("connection refused")
	h := NewHandlers(&stubStore{err: boom})

	_, err := h.List(context.Background(), ListQuery{})
	require.ErrorIs(t, err, boom)

	_, err = h.Get(context.Background(), DetailsQuery{ID: "x"})
	require.ErrorIs(t, err, boom)
}

func TestDateAcceptsCalendarDatesAndTimestamps(t *testing.T) {
	var dto CreateActivityDto
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Run","date":"2024-01-01"}`), &dto))
	assert.True(t, dto.Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-01-01T10:00:00+02:00"}`), &dto))
	assert.True(t, dto.Date.Equal(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)))

	require.Error(t, json.Unmarshal([]byte(`{"date":"yesterday"}`), &dto))
}

func TestEditDtoDecodesFlattenedFields(t *testing.T) {
	var dto EditActivityDto
	body := `{"id":"a1","title":"Run","date":"2024-01-01","isCanceled":true,"latitude":1.5}`
	require.NoError(t, json.Unmarshal([]byte(body), &dto))

	assert.Equal(t, "a1", dto.ID)
	assert.Equal(t, "Run", dto.Title)
	assert.True(t, dto.IsCanceled)
	assert.Equal(t, 1.5, dto.Latitude)
}

type stubStore struct {
	found   *domain.Activity
	rows    int64
	err     error
	updates int
}

func (s *stubStore) List(context.Context) ([]domain.Activity, error) {
	return nil, s.err
}

func (s *stubStore) Get(context.Context, string) (*domain.Activity, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.found == nil {
		return nil, nil
	}
	copied := *s.found
	return &copied, nil
}

func (s *stubStore) Insert(context.Context, domain.Activity) (int64, error) {
	return s.rows, s.err
}

func (s *stubStore) Update(context.Context, domain.Activity) (int64, error) {
	s.updates++
	return s.rows, s.err
}

func (s *stubStore) Delete(context.Context, string) (int64, error) {
	return s.rows, s.err
}
