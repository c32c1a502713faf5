// ABOUTME: Key layout of the KV schema and transaction scope checks.
// ABOUTME: Records live under "<collection>:<zero-padded id>" so keys sort by id.
package storage

import (
	"fmt"
	"strconv"
	"strings"
)

const idWidth = 20

// KeyPrefix returns the key prefix shared by every record of coll.
func KeyPrefix(coll Collection) string {
	return string(coll) + ":"
}

// RecordKey returns the key of record id in coll.
func RecordKey(coll Collection, id int64) string {
	return fmt.Sprintf("%s%0*d", KeyPrefix(coll), idWidth, id)
}

// maxKey sorts after every record key of coll.
func maxKey(coll Collection) string {
	return KeyPrefix(coll) + "~"
}

// ParseRecordKey splits a record key into its collection and id.
func ParseRecordKey(key string) (Collection, int64, error) {
	name, rawID, ok := strings.Cut(key, ":")
	if !ok {
		return "", 0, fmt.Errorf("parse key %q: missing separator", key)
	}
	coll := Collection(name)
	if !coll.Valid() {
		return "", 0, fmt.Errorf("parse key %q: %w", key, ErrUnknownCollection)
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("parse key %q: %w", key, err)
	}
	return coll, id, nil
}

// Scope is the mode and collection set a transaction was opened with.
type Scope struct {
	mode  Mode
	colls map[Collection]bool
}

// NewScope validates the collections of a transaction.
func NewScope(mode Mode, colls []Collection) (Scope, error) {
	s := Scope{mode: mode, colls: make(map[Collection]bool, len(colls))}
	for _, c := range colls {
		if !c.Valid() {
			return Scope{}, fmt.Errorf("open transaction on %q: %w", c, ErrUnknownCollection)
		}
		s.colls[c] = true
	}
	return s, nil
}

// Mode returns the access mode of the scope.
func (s Scope) Mode() Mode { return s.mode }

// CheckRead fails when coll was not named when the transaction opened.
func (s Scope) CheckRead(coll Collection) error {
	if !s.colls[coll] {
		return fmt.Errorf("%s: %w", coll, ErrCollectionNotInScope)
	}
	return nil
}

// CheckWrite additionally fails in read-only transactions.
func (s Scope) CheckWrite(coll Collection) error {
	if err := s.CheckRead(coll); err != nil {
		return err
	}
	if s.mode != ModeReadWrite {
		return fmt.Errorf("%s: %w", coll, ErrReadOnlyTransaction)
	}
	return nil
}

// Record ids are assigned max+1 per collection.
func nextID(maxID int64) int64 {
	return maxID + 1
}
