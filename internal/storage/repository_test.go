// ABOUTME: Tests for the badger gateway and scoped transactions.
// ABOUTME: Verifies id assignment, scope checks, and commit/rollback behavior.
package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/harperreed/myjot/internal/models"
	"github.com/harperreed/myjot/internal/storage"
	"github.com/harperreed/myjot/internal/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routine(name string) *models.WorkoutEntry {
	return &models.WorkoutEntry{
		LogName:    name,
		BodyWeight: 180,
		Exercises: []models.Exercise{{
			ID: 1, Order: 1, Name: "Squat", Category: models.CategoryStrength,
			Sets: []models.Set{{ID: 1, Order: 1, Type: models.SetNormal,
				Fields: models.StrengthFields{Reps: 5, Weight: 225, WeightUnitType: models.WeightLbs}}},
		}},
	}
}

func TestPutAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	repo := storagetest.NewBadger(t)

	first, err := repo.Put(ctx, storage.CollExerciseRoutines, routine("A"))
	require.NoError(t, err)
	second, err := repo.Put(ctx, storage.CollExerciseRoutines, routine("B"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)

	// ids are per collection
	logID, err := repo.Put(ctx, storage.CollExerciseLog, routine("C"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), logID)
}

func TestPutWithIDReplaces(t *testing.T) {
	ctx := context.Background()
	repo := storagetest.NewBadger(t)

	r := routine("A")
	id, err := repo.Put(ctx, storage.CollExerciseRoutines, r)
	require.NoError(t, err)

	r.LogName = "A2"
	again, err := repo.Put(ctx, storage.CollExerciseRoutines, r)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	got, err := storage.Get[models.WorkoutEntry](ctx, repo, storage.CollExerciseRoutines, id)
	require.NoError(t, err)
	assert.Equal(t, "A2", got.LogName)
	assert.Equal(t, 1, storagetest.Count(t, repo, storage.CollExerciseRoutines))
}

func TestGetRoundTripsNestedExercises(t *testing.T) {
	ctx := context.Background()
	repo := storagetest.NewBadger(t)

	id, err := repo.Put(ctx, storage.CollExerciseRoutines, routine("Legs"))
	require.NoError(t, err)

	got, err := storage.Get[models.WorkoutEntry](ctx, repo, storage.CollExerciseRoutines, id)
	require.NoError(t, err)
	require.Len(t, got.Exercises, 1)
	sf, ok := got.Exercises[0].Sets[0].Strength()
	require.True(t, ok)
	assert.Equal(t, 225.0, sf.Weight)
}

func TestGetMissingIsNotFound(t *testing.T) {
	repo := storagetest.NewBadger(t)

	_, err := storage.Get[models.WorkoutEntry](context.Background(), repo, storage.CollExerciseLog, 42)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := storagetest.NewBadger(t)

	id, err := repo.Put(ctx, storage.CollExerciseLog, routine("A"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, storage.CollExerciseLog, id))
	assert.Equal(t, 0, storagetest.Count(t, repo, storage.CollExerciseLog))
	assert.ErrorIs(t, repo.Delete(ctx, storage.CollExerciseLog, id), storage.ErrNotFound)
}

func TestListReturnsAscendingIDs(t *testing.T) {
	ctx := context.Background()
	repo := storagetest.NewBadger(t)

	for _, name := range []string{"A", "B", "C"} {
		_, err := repo.Put(ctx, storage.CollExerciseRoutines, routine(name))
		require.NoError(t, err)
	}
	// a record with a much larger id still sorts last
	far := routine("Z")
	far.ID = 1000
	_, err := repo.Put(ctx, storage.CollExerciseRoutines, far)
	require.NoError(t, err)

	all, err := storage.List[models.WorkoutEntry](ctx, repo, storage.CollExerciseRoutines)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"A", "B", "C", "Z"}, []string{all[0].LogName, all[1].LogName, all[2].LogName, all[3].LogName})

	next, err := repo.Put(ctx, storage.CollExerciseRoutines, routine("N"))
	require.NoError(t, err)
	assert.Equal(t, int64(1001), next)
}

func TestTransactionScope(t *testing.T) {
	ctx := context.Background()
	repo := storagetest.NewBadger(t)

	err := repo.RunInTransaction(ctx, storage.ModeRead, []storage.Collection{storage.CollExerciseLog}, func(tx storage.Tx) error {
		_, err := tx.List(storage.CollMealLog)
		return err
	})
	assert.ErrorIs(t, err, storage.ErrCollectionNotInScope)

	err = repo.RunInTransaction(ctx, storage.ModeRead, []storage.Collection{storage.CollExerciseLog}, func(tx storage.Tx) error {
		_, err := tx.Put(storage.CollExerciseLog, routine("A"))
		return err
	})
	assert.ErrorIs(t, err, storage.ErrReadOnlyTransaction)

	err = repo.RunInTransaction(ctx, storage.ModeRead, []storage.Collection{"workouts"}, func(tx storage.Tx) error {
		return nil
	})
	assert.ErrorIs(t, err, storage.ErrUnknownCollection)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	repo := storagetest.NewBadger(t)
	boom := errors.New("boom")

	err := repo.RunInTransaction(ctx, storage.ModeReadWrite, []storage.Collection{storage.CollExerciseLog}, func(tx storage.Tx) error {
		if _, err := tx.Put(storage.CollExerciseLog, routine("A")); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, storagetest.Count(t, repo, storage.CollExerciseLog))
}

func TestTransactionRollsBackAndRepanics(t *testing.T) {
	ctx := context.Background()
	repo := storagetest.NewBadger(t)

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = repo.RunInTransaction(ctx, storage.ModeReadWrite, []storage.Collection{storage.CollExerciseLog}, func(tx storage.Tx) error {
			_, _ = tx.Put(storage.CollExerciseLog, routine("A"))
			panic("kaboom")
		})
	})
	assert.Equal(t, 0, storagetest.Count(t, repo, storage.CollExerciseLog))
}

func TestPutsInOneTransactionSeeEachOther(t *testing.T) {
	ctx := context.Background()
	repo := storagetest.NewBadger(t)

	var ids []int64
	err := repo.RunInTransaction(ctx, storage.ModeReadWrite, []storage.Collection{storage.CollMealLog}, func(tx storage.Tx) error {
		for i := 0; i < 3; i++ {
			dt := "2025-01-01T08:00"
			id, err := tx.Put(storage.CollMealLog, &models.MealEntry{LogName: "x", DateTime: &dt, MealName: "Oats", MealType: models.MealBreakfast})
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	repo := storagetest.NewBadger(t)

	for _, name := range []string{"A", "B"} {
		_, err := repo.Put(ctx, storage.CollExerciseLog, routine(name))
		require.NoError(t, err)
	}
	_, err := repo.Put(ctx, storage.CollExerciseRoutines, routine("keep"))
	require.NoError(t, err)

	err = repo.RunInTransaction(ctx, storage.ModeReadWrite, []storage.Collection{storage.CollExerciseLog}, func(tx storage.Tx) error {
		return tx.Clear(storage.CollExerciseLog)
	})
	require.NoError(t, err)

	assert.Equal(t, 0, storagetest.Count(t, repo, storage.CollExerciseLog))
	assert.Equal(t, 1, storagetest.Count(t, repo, storage.CollExerciseRoutines))
}

func TestCanceledContext(t *testing.T) {
	repo := storagetest.NewBadger(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Put(ctx, storage.CollExerciseLog, routine("A"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFailOnNthPutRollsBack(t *testing.T) {
	ctx := context.Background()
	inner := storagetest.NewBadger(t)
	injected := errors.New("disk full")
	repo := storagetest.NewFailOnNthPut(inner, 2, injected)

	err := repo.RunInTransaction(ctx, storage.ModeReadWrite, []storage.Collection{storage.CollExerciseLog}, func(tx storage.Tx) error {
		for _, name := range []string{"A", "B", "C"} {
			if _, err := tx.Put(storage.CollExerciseLog, routine(name)); err != nil {
				return err
			}
		}
		return nil
	})

	assert.ErrorIs(t, err, injected)
	assert.Equal(t, 0, storagetest.Count(t, inner, storage.CollExerciseLog))
}
