package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/reactivities/internal/domain"
	"example.com/reactivities/internal/persistence"
)

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	act := domain.Activity{ID: "a1", Title: "Run", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	rows, err := store.Insert(ctx, act)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	got, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, act, *got)

	got.Title = "mutated copy"
	again, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Run", again.Title)

	act.Title = "Walk"
	rows, err = store.Update(ctx, act)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	rows, err = store.Delete(ctx, "a1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	missing, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	rows, err = store.Insert(ctx, act)
	require.NoError(t, err)
	assert.Zero(t, rows, "deleted ids must not be reused")
}

func TestStoreZeroRowsForUnknownIDs(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	rows, err := store.Update(ctx, domain.Activity{ID: "nope"})
	require.NoError(t, err)
	assert.Zero(t, rows)

	rows, err = store.Delete(ctx, "nope")
	require.NoError(t, err)
	assert.Zero(t, rows)
}

func TestStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStore().List(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSeedOnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	n, err := persistence.Seed(ctx, store, now)
	require.NoError(t, err)
	assert.Equal(t, len(persistence.SampleActivities(now)), n)

	n, err = persistence.Seed(ctx, store, now)
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(persistence.SampleActivities(now)))
	assert.True(t, all[0].Date.Before(all[len(all)-1].Date))
}

func TestSeedCountsOnlyAcceptedRows(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	samples := persistence.SampleActivities(now)

	_, err := store.Insert(ctx, samples[0])
	require.NoError(t, err)
	rows, err := store.Delete(ctx, samples[0].ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	n, err := persistence.Seed(ctx, store, now)
	require.NoError(t, err)
	assert.Equal(t, len(samples)-1, n)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, n)
}
