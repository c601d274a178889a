package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketBlobs = []byte("prefs")

// BlobStore implements domain.BlobStore using BoltDB.
// Values are opaque bytes; callers own the encoding.
type BlobStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewBlobStore opens the preference database in dir.
// An empty dir gives a memory-only store that forgets everything on exit.
func NewBlobStore(dir string) (*BlobStore, error) {
	if dir == "" {
		return &BlobStore{cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(filepath.Join(dir, "prefs.db"), 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketBlobs)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BlobStore{db: db, cache: make(map[string][]byte)}, nil
}

func (s *BlobStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *BlobStore) Get(key string) ([]byte, bool, error) {
	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return clone(data), true, nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil, false, nil
	}

	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketBlobs).Get([]byte(key)); v != nil {
			data = clone(v)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if data == nil {
		return nil, false, nil
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[key] = data
	s.mu.Unlock()

	return clone(data), true, nil
}

func (s *BlobStore) Set(key string, value []byte) error {
	data := clone(value)

	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketBlobs).Put([]byte(key), data)
		})
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.cache[key] = data
	s.mu.Unlock()
	return nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
