package deps

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
)

var (
	bucketEdges     = []byte("edges")
	bucketBaselines = []byte("baselines")
	bucketSnapshot  = []byte("snapshot")
	keySnapshot     = []byte("model")
)

// refSep joins file and marker id in store keys. It cannot appear in
// either component.
const refSep = "\x1f"

// Store persists the dependency graph, per-marker baselines, and the last
// model snapshot so regeneration scope survives restarts.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the state database at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketEdges, bucketBaselines, bucketSnapshot} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("creating bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing state database for inspection. Nothing
// is created or written; the path must exist.
func OpenReadOnly(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("opening state db read-only: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type edgeRecord struct {
	Keys []string `json:"keys"`
}

// SaveEdges writes one marker's dependency keys.
func (s *Store) SaveEdges(file, markerID string, keys []string) error {
	data, err := json.Marshal(edgeRecord{Keys: keys})
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEdges).Put(refKey(file, markerID), data)
	})
}

// LoadTracker rebuilds the in-memory graph from persisted edges.
func (s *Store) LoadTracker() (*Tracker, error) {
	t := NewTracker()
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEdges).ForEach(func(k, v []byte) error {
			file, markerID, ok := splitRefKey(k)
			if !ok {
				return nil
			}
			var rec edgeRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decoding edges for %s: %w", k, err)
			}
			t.Record(file, markerID, rec.Keys)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Baseline returns the last content the engine generated for a marker.
func (s *Store) Baseline(file, markerID string) (string, bool, error) {
	var content string
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketBaselines).Get(refKey(file, markerID))
		if v != nil {
			content = string(v)
			found = true
		}
		return nil
	})
	return content, found, err
}

// PutBaseline records freshly generated content as the marker's baseline.
func (s *Store) PutBaseline(file, markerID, content string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketBaselines).Put(refKey(file, markerID), []byte(content))
	})
}

// Snapshot returns the stored model snapshot bytes, nil if none.
func (s *Store) Snapshot() ([]byte, error) {
	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketSnapshot).Get(keySnapshot)
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	return raw, err
}

// PutSnapshot stores the model snapshot for the next run's delta.
func (s *Store) PutSnapshot(raw []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSnapshot).Put(keySnapshot, raw)
	})
}

func refKey(file, markerID string) []byte {
	return []byte(file + refSep + markerID)
}

func splitRefKey(k []byte) (file, markerID string, ok bool) {
	s := string(k)
	for i := 0; i < len(s); i++ {
		if s[i] == refSep[0] {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}
