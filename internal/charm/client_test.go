// ABOUTME: Unit tests for the Charm KV gateway using an in-memory KV fake.
// ABOUTME: Covers buffered commits, rollback, read-only locking, and sync calls.
package charm

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/myjot/internal/models"
	"github.com/harperreed/myjot/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKV struct {
	db        *badger.DB
	readOnly  bool
	syncs     int
	commitErr error
	// failWrites hands out read-only transactions so the first write fails.
	failWrites bool
}

func newFakeKV(t *testing.T) *fakeKV {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &fakeKV{db: db}
}

func (f *fakeKV) Get(key []byte) ([]byte, error) {
	var v []byte
	err := f.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		v, err = item.ValueCopy(nil)
		return err
	})
	return v, err
}

func (f *fakeKV) Keys() ([][]byte, error) {
	var out [][]byte
	err := f.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			out = append(out, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return out, err
}

func (f *fakeKV) NewTransaction(update bool) (*badger.Txn, error) {
	return f.db.NewTransaction(update && !f.failWrites), nil
}

func (f *fakeKV) Commit(txn *badger.Txn, callback func(error)) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	return txn.Commit()
}

func (f *fakeKV) Sync() error      { f.syncs++; return nil }
func (f *fakeKV) Reset() error     { return f.db.DropAll() }
func (f *fakeKV) IsReadOnly() bool { return f.readOnly }
func (f *fakeKV) Close() error     { return nil }

// stored returns every key in the fake in ascending order.
func (f *fakeKV) stored(t *testing.T) []string {
	t.Helper()
	keys, err := f.Keys()
	require.NoError(t, err)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	sort.Strings(out)
	return out
}

func newTestGateway(t *testing.T) (*storage.Repository, *fakeKV) {
	t.Helper()
	kv := newFakeKV(t)
	return NewGateway(newClient(kv, nil)), kv
}

func meal(name string) *models.MealEntry {
	dt := "2025-03-10T12:00"
	return &models.MealEntry{LogName: "log", DateTime: &dt, MealName: name, MealType: models.MealLunch}
}

func TestPutGetList(t *testing.T) {
	ctx := context.Background()
	g, kv := newTestGateway(t)

	id1, err := g.Put(ctx, storage.CollMealLog, meal("Soup"))
	require.NoError(t, err)
	id2, err := g.Put(ctx, storage.CollMealLog, meal("Salad"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id1)
	assert.Equal(t, int64(2), id2)
	assert.Contains(t, kv.stored(t), storage.RecordKey(storage.CollMealLog, 2))

	got, err := storage.Get[models.MealEntry](ctx, g, storage.CollMealLog, 2)
	require.NoError(t, err)
	assert.Equal(t, "Salad", got.MealName)

	all, err := storage.List[models.MealEntry](ctx, g, storage.CollMealLog)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Soup", all[0].MealName)
}

func TestWritesAreBufferedUntilCommit(t *testing.T) {
	ctx := context.Background()
	g, kv := newTestGateway(t)
	boom := errors.New("boom")

	err := g.RunInTransaction(ctx, storage.ModeReadWrite, []storage.Collection{storage.CollMealLog}, func(tx storage.Tx) error {
		if _, err := tx.Put(storage.CollMealLog, meal("Soup")); err != nil {
			return err
		}
		// the transaction sees its own write
		raws, err := tx.List(storage.CollMealLog)
		if err != nil {
			return err
		}
		assert.Len(t, raws, 1)
		assert.Empty(t, kv.stored(t))
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, kv.stored(t))
	assert.Equal(t, 0, kv.syncs)
}

func TestCommitSyncs(t *testing.T) {
	g, kv := newTestGateway(t)

	_, err := g.Put(context.Background(), storage.CollUser, &models.UserProfile{UserName: "sam"})
	require.NoError(t, err)
	assert.Equal(t, 1, kv.syncs)
}

func TestAutoSyncDisabled(t *testing.T) {
	kv := newFakeKV(t)
	c := newClient(kv, nil)
	c.SetAutoSync(false)

	_, err := NewGateway(c).Put(context.Background(), storage.CollUser, &models.UserProfile{UserName: "sam"})
	require.NoError(t, err)
	assert.Equal(t, 0, kv.syncs)
}

func TestPanicDiscardsBuffer(t *testing.T) {
	g, kv := newTestGateway(t)

	assert.Panics(t, func() {
		_ = g.RunInTransaction(context.Background(), storage.ModeReadWrite, []storage.Collection{storage.CollMealLog}, func(tx storage.Tx) error {
			_, _ = tx.Put(storage.CollMealLog, meal("Soup"))
			panic("kaboom")
		})
	})
	assert.Empty(t, kv.stored(t))

	// the lock was released
	_, err := g.Put(context.Background(), storage.CollMealLog, meal("Soup"))
	assert.NoError(t, err)
}

func TestReadOnlyDatabaseRejectsWrites(t *testing.T) {
	g, kv := newTestGateway(t)
	kv.readOnly = true

	_, err := g.Put(context.Background(), storage.CollMealLog, meal("Soup"))
	assert.ErrorIs(t, err, ErrDatabaseLocked)

	_, err = g.ListAll(context.Background(), storage.CollMealLog)
	assert.NoError(t, err)
}

func TestDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	g, kv := newTestGateway(t)

	for _, name := range []string{"A", "B", "C"} {
		_, err := g.Put(ctx, storage.CollMealLog, meal(name))
		require.NoError(t, err)
	}
	_, err := g.Put(ctx, storage.CollUser, &models.UserProfile{UserName: "sam"})
	require.NoError(t, err)

	require.NoError(t, g.Delete(ctx, storage.CollMealLog, 2))
	assert.ErrorIs(t, g.Delete(ctx, storage.CollMealLog, 2), storage.ErrNotFound)

	err = g.RunInTransaction(ctx, storage.ModeReadWrite, []storage.Collection{storage.CollMealLog}, func(tx storage.Tx) error {
		if err := tx.Clear(storage.CollMealLog); err != nil {
			return err
		}
		id, err := tx.Put(storage.CollMealLog, meal("fresh"))
		assert.Equal(t, int64(1), id)
		return err
	})
	require.NoError(t, err)

	assert.Len(t, kv.stored(t), 2)
	counts, err := g.Transactor.(*Client).KeyCount()
	require.NoError(t, err)
	assert.Equal(t, map[storage.Collection]int{storage.CollMealLog: 1, storage.CollUser: 1}, counts)
}

func TestFailedCommitIsReported(t *testing.T) {
	g, kv := newTestGateway(t)
	kv.commitErr = errors.New("disk full")

	_, err := g.Put(context.Background(), storage.CollMealLog, meal("Soup"))
	assert.ErrorContains(t, err, "disk full")
	assert.Empty(t, kv.stored(t))
	assert.Equal(t, 0, kv.syncs)
}

func seedMeals(t *testing.T, g *storage.Repository, names ...string) {
	t.Helper()
	for _, name := range names {
		_, err := g.Put(context.Background(), storage.CollMealLog, meal(name))
		require.NoError(t, err)
	}
}

// replaceJournal clears mealLog and writes three workouts in one transaction.
func replaceJournal(g *storage.Repository) error {
	colls := []storage.Collection{storage.CollMealLog, storage.CollExerciseLog}
	return g.RunInTransaction(context.Background(), storage.ModeReadWrite, colls, func(tx storage.Tx) error {
		if err := tx.Clear(storage.CollMealLog); err != nil {
			return err
		}
		for _, name := range []string{"Push", "Pull", "Legs"} {
			dt := "2025-03-10T07:00"
			if _, err := tx.Put(storage.CollExerciseLog, &models.WorkoutEntry{LogName: name, DateTime: &dt, BodyWeight: 180}); err != nil {
				return err
			}
		}
		return nil
	})
}

func TestFailedCommitLeavesNothingBehind(t *testing.T) {
	g, kv := newTestGateway(t)
	seedMeals(t, g, "Soup", "Salad")
	before := kv.stored(t)

	kv.commitErr = errors.New("network down")
	err := replaceJournal(g)

	assert.ErrorContains(t, err, "network down")
	assert.Equal(t, before, kv.stored(t))
}

func TestFailedWriteLeavesNothingBehind(t *testing.T) {
	g, kv := newTestGateway(t)
	seedMeals(t, g, "Soup", "Salad")
	before := kv.stored(t)

	kv.failWrites = true
	err := replaceJournal(g)

	assert.ErrorIs(t, err, badger.ErrReadOnlyTxn)
	assert.Equal(t, before, kv.stored(t))

	meals, err := storage.List[models.MealEntry](context.Background(), g, storage.CollMealLog)
	require.NoError(t, err)
	assert.Len(t, meals, 2)
}

func TestMigrateBetweenBackends(t *testing.T) {
	ctx := context.Background()
	src, _ := newTestGateway(t)
	dst, _ := newTestGateway(t)

	_, err := src.Put(ctx, storage.CollMealLog, meal("Soup"))
	require.NoError(t, err)
	_, err = src.Put(ctx, storage.CollUser, &models.UserProfile{UserName: "sam"})
	require.NoError(t, err)

	summary, err := storage.MigrateData(ctx, src, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total())

	got, err := storage.Get[models.UserProfile](ctx, dst, storage.CollUser, 1)
	require.NoError(t, err)
	assert.Equal(t, "sam", got.UserName)
}
