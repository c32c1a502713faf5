// ABOUTME: Repository gateway interface over the journal's record collections.
// ABOUTME: Single-collection helpers are built on top of scoped transactions.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Collection names a table of JSON records keyed by a numeric id.
type Collection string

const (
	CollUser             Collection = "user"
	CollExerciseLog      Collection = "exerciseLog"
	CollMealLog          Collection = "mealLog"
	CollExerciseRoutines Collection = "exerciseRoutines"
	CollCustomMeals      Collection = "customMeals"
)

// AllCollections lists every collection of the journal.
var AllCollections = []Collection{
	CollUser,
	CollExerciseLog,
	CollMealLog,
	CollExerciseRoutines,
	CollCustomMeals,
}

// Valid reports whether c is a known collection.
func (c Collection) Valid() bool {
	for _, known := range AllCollections {
		if c == known {
			return true
		}
	}
	return false
}

// Mode is the access mode of a transaction.
type Mode int

const (
	ModeRead Mode = iota
	ModeReadWrite
)

func (m Mode) String() string {
	if m == ModeReadWrite {
		return "rw"
	}
	return "r"
}

var (
	ErrNotFound             = errors.New("record not found")
	ErrCollectionNotInScope = errors.New("collection not in transaction scope")
	ErrReadOnlyTransaction  = errors.New("write in read-only transaction")
	ErrUnknownCollection    = errors.New("unknown collection")
)

// Record is a value stored in a collection. A zero RecordID asks Put to
// assign the next id.
type Record interface {
	RecordID() int64
	SetRecordID(id int64)
}

// Tx is a unit of work over a fixed set of collections.
type Tx interface {
	Get(coll Collection, id int64, dst any) error
	List(coll Collection) ([]json.RawMessage, error)
	Put(coll Collection, rec Record) (int64, error)
	Delete(coll Collection, id int64) error
	Clear(coll Collection) error
}

// Transactor runs work inside scoped transactions. The work is committed
// when it returns nil and rolled back when it returns an error or panics;
// a panic is re-raised after the rollback.
type Transactor interface {
	RunInTransaction(ctx context.Context, mode Mode, colls []Collection, fn func(Tx) error) error
	Close() error
}

// Gateway is the storage interface used by the rest of the journal.
// This interface allows swapping backends (badger, Charm KV).
type Gateway interface {
	Transactor
	GetByID(ctx context.Context, coll Collection, id int64, dst any) error
	ListAll(ctx context.Context, coll Collection) ([]json.RawMessage, error)
	Put(ctx context.Context, coll Collection, rec Record) (int64, error)
	Delete(ctx context.Context, coll Collection, id int64) error
}

// Repository implements Gateway on top of any Transactor.
type Repository struct {
	Transactor
}

// NewRepository wraps t with the single-collection helpers.
func NewRepository(t Transactor) *Repository {
	return &Repository{Transactor: t}
}

// GetByID decodes the record with the given id into dst.
func (r *Repository) GetByID(ctx context.Context, coll Collection, id int64, dst any) error {
	return r.RunInTransaction(ctx, ModeRead, []Collection{coll}, func(tx Tx) error {
		return tx.Get(coll, id, dst)
	})
}

// ListAll returns every record of the collection in ascending id order.
func (r *Repository) ListAll(ctx context.Context, coll Collection) ([]json.RawMessage, error) {
	var out []json.RawMessage
	err := r.RunInTransaction(ctx, ModeRead, []Collection{coll}, func(tx Tx) error {
		var err error
		out, err = tx.List(coll)
		return err
	})
	return out, err
}

// Put inserts or replaces rec and returns its id.
func (r *Repository) Put(ctx context.Context, coll Collection, rec Record) (int64, error) {
	var id int64
	err := r.RunInTransaction(ctx, ModeReadWrite, []Collection{coll}, func(tx Tx) error {
		var err error
		id, err = tx.Put(coll, rec)
		return err
	})
	return id, err
}

// Delete removes the record with the given id.
func (r *Repository) Delete(ctx context.Context, coll Collection, id int64) error {
	return r.RunInTransaction(ctx, ModeReadWrite, []Collection{coll}, func(tx Tx) error {
		return tx.Delete(coll, id)
	})
}

// Get reads one record of type T.
func Get[T any](ctx context.Context, g Gateway, coll Collection, id int64) (*T, error) {
	var v T
	if err := g.GetByID(ctx, coll, id, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// List reads every record of a collection as type T.
func List[T any](ctx context.Context, g Gateway, coll Collection) ([]*T, error) {
	raws, err := g.ListAll(ctx, coll)
	if err != nil {
		return nil, err
	}
	return DecodeAll[T](coll, raws)
}

// DecodeAll unmarshals raw records into values of type T.
func DecodeAll[T any](coll Collection, raws []json.RawMessage) ([]*T, error) {
	out := make([]*T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s record: %w", coll, err)
		}
		out = append(out, &v)
	}
	return out, nil
}
