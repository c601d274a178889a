package store

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mmcdole/reel/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketCategories = []byte("categories")
	bucketMovies     = []byte("movies")
	bucketByCategory = []byte("movies_by_category") // index: categoryID 0x00 movieKey -> nil
	bucketMeta       = []byte("meta")
)

const metaMainKey = "main"

// movieRecord is the persisted form of a movie, tagged with its owning category.
// The tag is stripped before movies are handed back to callers.
type movieRecord struct {
	domain.Movie
	OwningCategory string `json:"_category_id"`
}

type metaRecord struct {
	Key      string `json:"key"`
	LastSync int64  `json:"lastSync"`
}

// CatalogStore implements domain.CatalogStore using BoltDB.
type CatalogStore struct {
	db *bolt.DB
}

// NewCatalogStore opens (or creates) the catalog database for a server.
// Each server URL gets its own directory so switching servers never mixes catalogs.
func NewCatalogStore(baseCacheDir, serverURL string) (*CatalogStore, error) {
	dir := CatalogDir(baseCacheDir, serverURL)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return OpenCatalogStore(filepath.Join(dir, "catalog.db"))
}

// OpenCatalogStore opens the catalog database at an explicit path.
func OpenCatalogStore(dbPath string) (*CatalogStore, error) {
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketCategories, bucketMovies, bucketByCategory, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &CatalogStore{db: db}, nil
}

// CatalogDir returns the directory holding serverURL's catalog under baseCacheDir.
// Preference data lives beside these directories, never inside one.
func CatalogDir(baseCacheDir, serverURL string) string {
	if serverURL == "" {
		return baseCacheDir
	}
	return filepath.Join(baseCacheDir, hashServerURL(serverURL))
}

func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *CatalogStore) Close() error {
	return s.db.Close()
}

// === Keys ===

// movieKey encodes a stream ID so that byte order matches numeric order.
func movieKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id)^(1<<63))
	return key
}

func indexKey(categoryID string, mk []byte) []byte {
	key := make([]byte, 0, len(categoryID)+1+len(mk))
	key = append(key, categoryID...)
	key = append(key, 0)
	return append(key, mk...)
}

// resetBucket drops and recreates a bucket inside tx.
func resetBucket(tx *bolt.Tx, name []byte) (*bolt.Bucket, error) {
	if tx.Bucket(name) != nil {
		if err := tx.DeleteBucket(name); err != nil {
			return nil, err
		}
	}
	return tx.CreateBucket(name)
}

// === Full replace ===

// ReplaceAll wipes and rewrites the catalog.
// Categories, movies (with their index) and metadata are written in three
// independent transactions. A crash after the first commit leaves the new
// categories next to the previous generation's movies; callers recover by
// running another full sync.
func (s *CatalogStore) ReplaceAll(ctx context.Context, categories []domain.Category, rows []domain.CatalogRow, syncedAt int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := resetBucket(tx, bucketCategories)
		if err != nil {
			return err
		}
		for _, c := range categories {
			data, err := json.Marshal(c)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(c.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace categories: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		movies, err := resetBucket(tx, bucketMovies)
		if err != nil {
			return err
		}
		index, err := resetBucket(tx, bucketByCategory)
		if err != nil {
			return err
		}

		for _, row := range rows {
			cid := row.Category.ID
			for _, m := range row.Movies {
				mk := movieKey(m.StreamID)

				// A stream listed under two categories keeps the last owner
				if prev := movies.Get(mk); prev != nil {
					var old movieRecord
					if err := json.Unmarshal(prev, &old); err == nil && old.OwningCategory != cid {
						if err := index.Delete(indexKey(old.OwningCategory, mk)); err != nil {
							return err
						}
					}
				}

				data, err := json.Marshal(movieRecord{Movie: m, OwningCategory: cid})
				if err != nil {
					return err
				}
				if err := movies.Put(mk, data); err != nil {
					return err
				}
				if err := index.Put(indexKey(cid, mk), nil); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace movies: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(metaRecord{Key: metaMainKey, LastSync: syncedAt})
		if err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put([]byte(metaMainKey), data)
	})
	if err != nil {
		return fmt.Errorf("write sync metadata: %w", err)
	}
	return nil
}

// === Load ===

// LoadAll returns the persisted catalog with movies grouped into rows by
// owning category, in category key order. A store that was never synced
// yields empty slices and a nil LastSync; a sync that kept no categories
// yields empty slices with LastSync set.
func (s *CatalogStore) LoadAll(ctx context.Context) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}

	snap := domain.Snapshot{Categories: []domain.Category{}, Rows: []domain.CatalogRow{}}
	err := s.db.View(func(tx *bolt.Tx) error {
		lastSync, err := readLastSync(tx)
		if err != nil {
			return err
		}
		snap.LastSync = lastSync

		cats, err := readCategories(tx)
		if err != nil {
			return err
		}
		if len(cats) == 0 {
			return nil
		}

		byCategory := make(map[string][]domain.Movie)
		err = tx.Bucket(bucketMovies).ForEach(func(k, v []byte) error {
			var rec movieRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode movie %x: %w", k, err)
			}
			byCategory[rec.OwningCategory] = append(byCategory[rec.OwningCategory], rec.Movie)
			return nil
		})
		if err != nil {
			return err
		}

		rows := make([]domain.CatalogRow, 0, len(cats))
		for _, c := range cats {
			movies := byCategory[c.ID]
			if movies == nil {
				movies = []domain.Movie{}
			}
			rows = append(rows, domain.CatalogRow{Category: c, Movies: movies})
		}

		snap.Categories = cats
		snap.Rows = rows
		return nil
	})
	if err != nil {
		return domain.Snapshot{}, err
	}
	return snap, nil
}

// MoviesByCategory returns one category's movies via the secondary index.
func (s *CatalogStore) MoviesByCategory(ctx context.Context, categoryID string) ([]domain.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	movies := []domain.Movie{}
	err := s.db.View(func(tx *bolt.Tx) error {
		index := tx.Bucket(bucketByCategory)
		data := tx.Bucket(bucketMovies)

		prefix := append([]byte(categoryID), 0)
		c := index.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			v := data.Get(k[len(prefix):])
			if v == nil {
				continue
			}
			var rec movieRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode movie %x: %w", k[len(prefix):], err)
			}
			movies = append(movies, rec.Movie)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movies, nil
}

// LastSync returns the epoch millis of the last full sync, or nil if none was recorded.
func (s *CatalogStore) LastSync(ctx context.Context) (*int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ts *int64
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		ts, err = readLastSync(tx)
		return err
	})
	return ts, err
}

func readCategories(tx *bolt.Tx) ([]domain.Category, error) {
	var cats []domain.Category
	err := tx.Bucket(bucketCategories).ForEach(func(k, v []byte) error {
		var c domain.Category
		if err := json.Unmarshal(v, &c); err != nil {
			return fmt.Errorf("decode category %q: %w", k, err)
		}
		cats = append(cats, c)
		return nil
	})
	return cats, err
}

func readLastSync(tx *bolt.Tx) (*int64, error) {
	v := tx.Bucket(bucketMeta).Get([]byte(metaMainKey))
	if v == nil {
		return nil, nil
	}
	var meta metaRecord
	if err := json.Unmarshal(v, &meta); err != nil {
		return nil, fmt.Errorf("decode sync metadata: %w", err)
	}
	return &meta.LastSync, nil
}
