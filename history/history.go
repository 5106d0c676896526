// Package history archives finalized dictation segments locally so a
// session's text survives the editor that received it.
package history

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const keyPrefix = "seg:"

// Segment is one archived dictation result.
type Segment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Rewritten bool      `json:"rewritten"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store is a badger-backed segment archive.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	return &Store{db: db}, nil
}

// Append records a segment and returns it with its assigned ID.
func (s *Store) Append(text string, rewritten bool) (Segment, error) {
	seg := Segment{
		ID:        uuid.NewString(),
		Text:      text,
		Rewritten: rewritten,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(seg)
	if err != nil {
		return Segment{}, fmt.Errorf("marshal segment: %w", err)
	}

	// Keys sort by creation time so Recent is a reverse scan.
	key := fmt.Sprintf("%s%020d:%s", keyPrefix, seg.CreatedAt.UnixNano(), seg.ID)
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return Segment{}, fmt.Errorf("store segment: %w", err)
	}
	return seg, nil
}

// Recent returns up to n segments, newest first.
func (s *Store) Recent(n int) ([]Segment, error) {
	var out []Segment
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix) && len(out) < n; it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var seg Segment
				if err := json.Unmarshal(val, &seg); err != nil {
					return err
				}
				out = append(out, seg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan history: %w", err)
	}
	return out, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
