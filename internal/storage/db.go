// ABOUTME: Badger-backed transactor and its connection lifecycle.
// ABOUTME: Each RunInTransaction maps onto one badger transaction.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/myjot/internal/logging"
)

// BadgerConfig configures the embedded badger store.
type BadgerConfig struct {
	Dir        string
	InMemory   bool
	SyncWrites bool
	Logger     *log.Logger
}

// InMemoryConfig returns a config suitable for tests.
func InMemoryConfig() BadgerConfig {
	return BadgerConfig{InMemory: true}
}

// DB wraps the badger database.
type DB struct {
	db  *badger.DB
	log *log.Logger
}

// Open opens or creates the badger store and returns it behind the
// Gateway helpers.
func Open(cfg BadgerConfig) (*Repository, error) {
	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}
	return NewRepository(db), nil
}

// OpenDB opens the raw badger transactor.
func OpenDB(cfg BadgerConfig) (*DB, error) {
	logger := logging.OrDiscard(cfg.Logger)

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Dir == "" {
			cfg.Dir = DefaultDBPath()
		}
		if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithLogger(badgerLogger{logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Debug("opened badger store", "dir", cfg.Dir, "in_memory", cfg.InMemory)
	return &DB{db: db, log: logger}, nil
}

// DataDir returns the default data directory following the XDG base directory layout.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "myjot")
}

// DefaultDBPath returns the default badger directory.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "badger")
}

// Close closes the database.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// RunInTransaction runs fn in one badger transaction limited to colls.
func (d *DB) RunInTransaction(ctx context.Context, mode Mode, colls []Collection, fn func(Tx) error) (err error) {
	scope, err := NewScope(mode, colls)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	txn := d.db.NewTransaction(mode == ModeReadWrite)
	defer func() {
		if p := recover(); p != nil {
			txn.Discard()
			d.log.Error("transaction panicked", "mode", mode, "collections", colls)
			panic(p)
		}
	}()

	if err := fn(&badgerTx{txn: txn, scope: scope}); err != nil {
		txn.Discard()
		d.log.Debug("transaction rolled back", "mode", mode, "collections", colls, "err", err)
		return err
	}
	if mode == ModeRead {
		txn.Discard()
		return nil
	}
	if err := ctx.Err(); err != nil {
		txn.Discard()
		return err
	}
	if err := txn.Commit(); err != nil {
		d.log.Error("commit failed", "collections", colls, "err", err)
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type badgerTx struct {
	txn   *badger.Txn
	scope Scope
}

func (t *badgerTx) Get(coll Collection, id int64, dst any) error {
	if err := t.scope.CheckRead(coll); err != nil {
		return err
	}
	item, err := t.txn.Get([]byte(RecordKey(coll, id)))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%s %d: %w", coll, id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("get %s %d: %w", coll, id, err)
	}
	data, err := item.ValueCopy(nil)
	if err != nil {
		return fmt.Errorf("read %s %d: %w", coll, id, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s %d: %w", coll, id, err)
	}
	return nil
}

func (t *badgerTx) List(coll Collection) ([]json.RawMessage, error) {
	if err := t.scope.CheckRead(coll); err != nil {
		return nil, err
	}
	prefix := []byte(KeyPrefix(coll))
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := t.txn.NewIterator(opts)
	defer it.Close()

	var out []json.RawMessage
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		data, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", coll, err)
		}
		out = append(out, json.RawMessage(data))
	}
	return out, nil
}

func (t *badgerTx) Put(coll Collection, rec Record) (int64, error) {
	if err := t.scope.CheckWrite(coll); err != nil {
		return 0, err
	}
	id := rec.RecordID()
	if id == 0 {
		id = nextID(t.maxID(coll))
		rec.SetRecordID(id)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("encode %s record: %w", coll, err)
	}
	if err := t.txn.Set([]byte(RecordKey(coll, id)), data); err != nil {
		return 0, fmt.Errorf("put %s %d: %w", coll, id, err)
	}
	return id, nil
}

func (t *badgerTx) Delete(coll Collection, id int64) error {
	if err := t.scope.CheckWrite(coll); err != nil {
		return err
	}
	key := []byte(RecordKey(coll, id))
	if _, err := t.txn.Get(key); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%s %d: %w", coll, id, ErrNotFound)
		}
		return fmt.Errorf("get %s %d: %w", coll, id, err)
	}
	if err := t.txn.Delete(key); err != nil {
		return fmt.Errorf("delete %s %d: %w", coll, id, err)
	}
	return nil
}

func (t *badgerTx) Clear(coll Collection) error {
	if err := t.scope.CheckWrite(coll); err != nil {
		return err
	}
	prefix := []byte(KeyPrefix(coll))
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false

	var keys [][]byte
	it := t.txn.NewIterator(opts)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()

	for _, k := range keys {
		if err := t.txn.Delete(k); err != nil {
			return fmt.Errorf("clear %s: %w", coll, err)
		}
	}
	return nil
}

// maxID returns the largest id stored in coll, counting pending writes.
func (t *badgerTx) maxID(coll Collection) int64 {
	prefix := []byte(KeyPrefix(coll))
	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	opts.PrefetchValues = false
	it := t.txn.NewIterator(opts)
	defer it.Close()

	it.Seek([]byte(maxKey(coll)))
	if !it.ValidForPrefix(prefix) {
		return 0
	}
	_, id, err := ParseRecordKey(string(it.Item().Key()))
	if err != nil {
		return 0
	}
	return id
}

// badgerLogger routes badger's internal logging onto the journal logger.
type badgerLogger struct {
	l *log.Logger
}

func (b badgerLogger) Errorf(f string, v ...interface{})   { b.l.Errorf(f, v...) }
func (b badgerLogger) Warningf(f string, v ...interface{}) { b.l.Warnf(f, v...) }
func (b badgerLogger) Infof(f string, v ...interface{})    { b.l.Debugf(f, v...) }
func (b badgerLogger) Debugf(f string, v ...interface{})   { b.l.Debugf(f, v...) }
