// ABOUTME: Data migration between journal storage backends.
// ABOUTME: Copies every collection from source to destination, keeping record ids.

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// MigrateSummary holds counts of migrated records per collection.
type MigrateSummary struct {
	Records map[Collection]int
}

// Total returns the number of records migrated.
func (s *MigrateSummary) Total() int {
	n := 0
	for _, c := range s.Records {
		n += c
	}
	return n
}

// rawRecord carries an undecoded record between backends.
type rawRecord struct {
	id   int64
	data json.RawMessage
}

func (r *rawRecord) RecordID() int64      { return r.id }
func (r *rawRecord) SetRecordID(id int64) { r.id = id }

func (r *rawRecord) MarshalJSON() ([]byte, error) { return r.data, nil }

// MigrateData copies all records from src to dst. Everything is read in one
// read transaction and written in one read-write transaction. The
// destination should be empty before calling this function.
func MigrateData(ctx context.Context, src, dst Gateway) (*MigrateSummary, error) {
	summary := &MigrateSummary{Records: make(map[Collection]int)}
	records := make(map[Collection][]*rawRecord)

	err := src.RunInTransaction(ctx, ModeRead, AllCollections, func(tx Tx) error {
		for _, coll := range AllCollections {
			raws, err := tx.List(coll)
			if err != nil {
				return err
			}
			for _, raw := range raws {
				var probe struct {
					ID int64 `json:"id"`
				}
				if err := json.Unmarshal(raw, &probe); err != nil {
					return fmt.Errorf("read %s record id: %w", coll, err)
				}
				records[coll] = append(records[coll], &rawRecord{id: probe.ID, data: raw})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	err = dst.RunInTransaction(ctx, ModeReadWrite, AllCollections, func(tx Tx) error {
		for _, coll := range AllCollections {
			n, err := putAll(tx, coll, records[coll])
			if err != nil {
				return fmt.Errorf("write %s: %w", coll, err)
			}
			summary.Records[coll] = n
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("write destination: %w", err)
	}

	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
