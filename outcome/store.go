// Package outcome persists one record per processed job, keyed by destination
// key, in a local Pebble database. The batch summary and the -outcomes
// listing both read from it, and a later run overwrites the record for the
// same destination.
package outcome

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
)

// Status is the terminal state of a job.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Record is one job's persisted outcome.
type Record struct {
	DestKey   string    `json:"dest_key"`
	SourceKey string    `json:"source_key"`
	Status    Status    `json:"status"`
	Profile   string    `json:"profile"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is a pebble-backed outcome log.
type Store struct {
	db *pebble.DB
}

// Open opens (or creates) the outcome database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open outcome store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores rec under its destination key, replacing any earlier record.
func (s *Store) Record(rec Record) error {
	if rec.DestKey == "" {
		return fmt.Errorf("outcome record has no destination key")
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome record: %w", err)
	}
	return s.db.Set([]byte(rec.DestKey), data, pebble.Sync)
}

// Get retrieves the record for destKey, or nil if none exists.
func (s *Store) Get(destKey string) (*Record, error) {
	data, closer, err := s.db.Get([]byte(destKey))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get outcome: %w", err)
	}
	defer closer.Close()

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal outcome record: %w", err)
	}
	return &rec, nil
}

// List returns every recorded outcome.
func (s *Store) List() ([]Record, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	var records []Record
	for iter.First(); iter.Valid(); iter.Next() {
		var rec Record
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			continue // skip invalid records
		}
		records = append(records, rec)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iteration error: %w", err)
	}
	return records, nil
}

// CleanupOldRecords deletes records older than maxAge.
func (s *Store) CleanupOldRecords(maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)

	records, err := s.List()
	if err != nil {
		return err
	}
	for _, rec := range records {
		if rec.Timestamp.Before(cutoff) {
			if err := s.db.Delete([]byte(rec.DestKey), pebble.Sync); err != nil {
				return fmt.Errorf("failed to delete outcome %s: %w", rec.DestKey, err)
			}
		}
	}
	return nil
}
