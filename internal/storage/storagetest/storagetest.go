// ABOUTME: Test helpers for code that talks to a storage.Gateway.
// ABOUTME: Provides an in-memory badger gateway and a fault-injecting transactor.
package storagetest

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/harperreed/myjot/internal/storage"
)

// NewBadger opens an in-memory badger gateway closed at test cleanup.
func NewBadger(t testing.TB) *storage.Repository {
	t.Helper()
	repo, err := storage.Open(storage.InMemoryConfig())
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

// FailOnNthPut wraps a transactor and fails the Nth Put across its
// lifetime. Puts are counted starting at 1; reads pass through.
type FailOnNthPut struct {
	Inner  storage.Transactor
	FailOn int32
	Err    error

	count atomic.Int32
}

// NewFailOnNthPut returns a gateway whose Nth Put fails with err.
func NewFailOnNthPut(inner storage.Transactor, n int32, err error) *storage.Repository {
	return storage.NewRepository(&FailOnNthPut{Inner: inner, FailOn: n, Err: err})
}

// RunInTransaction runs fn against a wrapped transaction.
func (f *FailOnNthPut) RunInTransaction(ctx context.Context, mode storage.Mode, colls []storage.Collection, fn func(storage.Tx) error) error {
	return f.Inner.RunInTransaction(ctx, mode, colls, func(tx storage.Tx) error {
		return fn(&failingTx{Tx: tx, parent: f})
	})
}

// Close closes the wrapped transactor.
func (f *FailOnNthPut) Close() error { return f.Inner.Close() }

// Puts returns how many Puts were attempted.
func (f *FailOnNthPut) Puts() int32 { return f.count.Load() }

type failingTx struct {
	storage.Tx
	parent *FailOnNthPut
}

func (t *failingTx) Put(coll storage.Collection, rec storage.Record) (int64, error) {
	if t.parent.count.Add(1) == t.parent.FailOn {
		return 0, t.parent.Err
	}
	return t.Tx.Put(coll, rec)
}

// Count returns the number of records in coll.
func Count(t testing.TB, g storage.Gateway, coll storage.Collection) int {
	t.Helper()
	raws, err := g.ListAll(context.Background(), coll)
	if err != nil {
		t.Fatalf("list %s: %v", coll, err)
	}
	return len(raws)
}

// Raw returns the stored JSON of one record decoded into a generic map.
func Raw(t testing.TB, g storage.Gateway, coll storage.Collection, id int64) map[string]any {
	t.Helper()
	var m map[string]any
	if err := g.GetByID(context.Background(), coll, id, &m); err != nil {
		t.Fatalf("get %s %d: %v", coll, id, err)
	}
	return m
}
