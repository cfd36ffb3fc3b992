// Package history persists the last measured speedup ratio per test so a run
// can be compared against the one before it.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

const ratiosBucket = "ratios"

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("history store is closed")

// Entry is the most recent passing measurement of one test.
type Entry struct {
	Path       string    `json:"path"`
	Ratio      float64   `json:"ratio"`
	RecordedAt time.Time `json:"recorded_at"`
	// Runs counts how many times the test has been recorded.
	Runs uint64 `json:"runs"`
}

// Store is a bbolt-backed map from input path to Entry.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(ratiosBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history %s: %w", path, err)
	}

	return &Store{db: db}, nil
}

// Previous returns the stored entry for path. ok is false when the test has
// never been recorded.
func (s *Store) Previous(path string) (entry Entry, ok bool, err error) {
	if s == nil || s.db == nil {
		return Entry{}, false, ErrClosed
	}
	err = s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(ratiosBucket)).Get([]byte(path))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &entry); err != nil {
			return fmt.Errorf("decode history entry for %s: %w", path, err)
		}
		ok = true
		return nil
	})
	return entry, ok, err
}

// Record stores ratio as the latest measurement for path, in one transaction.
func (s *Store) Record(path string, ratio float64, at time.Time) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(ratiosBucket))

		var entry Entry
		if data := b.Get([]byte(path)); data != nil {
			// A corrupt entry is overwritten rather than blocking the run.
			_ = json.Unmarshal(data, &entry)
		}
		entry.Path = path
		entry.Ratio = ratio
		entry.RecordedAt = at.UTC()
		entry.Runs++

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return b.Put([]byte(path), data)
	})
}

// Count returns the number of recorded tests.
func (s *Store) Count() (int, error) {
	if s == nil || s.db == nil {
		return 0, ErrClosed
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket([]byte(ratiosBucket)).Stats().KeyN
		return nil
	})
	return count, err
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
