// ABOUTME: Scoped transactions over Charm KV for the journal gateway.
// ABOUTME: Writes are buffered and applied in one badger transaction on commit.
package charm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/myjot/internal/storage"
)

type pendingWrite struct {
	data    []byte
	deleted bool
}

type kvTx struct {
	c       *Client
	scope   storage.Scope
	pending map[string]pendingWrite
}

// RunInTransaction runs fn with buffered writes. Nothing reaches the KV
// store unless fn returns nil; a panic discards the buffer and is re-raised.
func (c *Client) RunInTransaction(ctx context.Context, mode storage.Mode, colls []storage.Collection, fn func(storage.Tx) error) error {
	scope, err := storage.NewScope(mode, colls)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if mode == storage.ModeReadWrite {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.kv.IsReadOnly() {
			return ErrDatabaseLocked
		}
	} else {
		c.mu.RLock()
		defer c.mu.RUnlock()
	}

	tx := &kvTx{c: c, scope: scope, pending: make(map[string]pendingWrite)}
	if err := fn(tx); err != nil {
		c.log.Debug("transaction rolled back", "mode", mode, "collections", colls, "err", err)
		return err
	}
	if mode == storage.ModeRead || len(tx.pending) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := tx.commit(); err != nil {
		c.log.Error("commit failed", "collections", colls, "err", err)
		return fmt.Errorf("commit transaction: %w", err)
	}
	c.syncIfEnabled()
	return nil
}

// commit applies every pending write to a single KV transaction so a
// failure leaves nothing behind.
func (t *kvTx) commit() error {
	keys := make([]string, 0, len(t.pending))
	for k := range t.pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	txn, err := t.c.kv.NewTransaction(true)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer txn.Discard()

	for _, k := range keys {
		w := t.pending[k]
		if w.deleted {
			if err := txn.Delete([]byte(k)); err != nil {
				return fmt.Errorf("delete %s: %w", k, err)
			}
			continue
		}
		if err := txn.Set([]byte(k), w.data); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}

	// nil callback: commit synchronously and report the error here.
	return t.c.kv.Commit(txn, nil)
}

// read returns the value of key as seen by this transaction.
func (t *kvTx) read(key string) ([]byte, bool, error) {
	if w, ok := t.pending[key]; ok {
		return w.data, !w.deleted, nil
	}
	data, err := t.c.kv.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// keys returns the live keys of coll in ascending order.
func (t *kvTx) keys(coll storage.Collection) ([]string, error) {
	prefix := storage.KeyPrefix(coll)
	all, err := t.c.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	live := make(map[string]bool)
	for _, k := range all {
		if bytes.HasPrefix(k, []byte(prefix)) {
			live[string(k)] = true
		}
	}
	for k, w := range t.pending {
		if strings.HasPrefix(k, prefix) {
			live[k] = !w.deleted
		}
	}

	out := make([]string, 0, len(live))
	for k, ok := range live {
		if ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (t *kvTx) Get(coll storage.Collection, id int64, dst any) error {
	if err := t.scope.CheckRead(coll); err != nil {
		return err
	}
	data, ok, err := t.read(storage.RecordKey(coll, id))
	if err != nil {
		return fmt.Errorf("get %s %d: %w", coll, id, err)
	}
	if !ok {
		return fmt.Errorf("%s %d: %w", coll, id, storage.ErrNotFound)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s %d: %w", coll, id, err)
	}
	return nil
}

func (t *kvTx) List(coll storage.Collection) ([]json.RawMessage, error) {
	if err := t.scope.CheckRead(coll); err != nil {
		return nil, err
	}
	keys, err := t.keys(coll)
	if err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, 0, len(keys))
	for _, k := range keys {
		data, ok, err := t.read(k)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", coll, err)
		}
		if ok {
			out = append(out, json.RawMessage(data))
		}
	}
	return out, nil
}

func (t *kvTx) Put(coll storage.Collection, rec storage.Record) (int64, error) {
	if err := t.scope.CheckWrite(coll); err != nil {
		return 0, err
	}
	id := rec.RecordID()
	if id == 0 {
		keys, err := t.keys(coll)
		if err != nil {
			return 0, err
		}
		var maxID int64
		if len(keys) > 0 {
			if _, maxID, err = storage.ParseRecordKey(keys[len(keys)-1]); err != nil {
				return 0, err
			}
		}
		id = maxID + 1
		rec.SetRecordID(id)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("encode %s record: %w", coll, err)
	}
	t.pending[storage.RecordKey(coll, id)] = pendingWrite{data: data}
	return id, nil
}

func (t *kvTx) Delete(coll storage.Collection, id int64) error {
	if err := t.scope.CheckWrite(coll); err != nil {
		return err
	}
	key := storage.RecordKey(coll, id)
	_, ok, err := t.read(key)
	if err != nil {
		return fmt.Errorf("get %s %d: %w", coll, id, err)
	}
	if !ok {
		return fmt.Errorf("%s %d: %w", coll, id, storage.ErrNotFound)
	}
	t.pending[key] = pendingWrite{deleted: true}
	return nil
}

func (t *kvTx) Clear(coll storage.Collection) error {
	if err := t.scope.CheckWrite(coll); err != nil {
		return err
	}
	keys, err := t.keys(coll)
	if err != nil {
		return err
	}
	for _, k := range keys {
		t.pending[k] = pendingWrite{deleted: true}
	}
	return nil
}
