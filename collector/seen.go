package collector

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("seen_urls")

// SeenTracker is a bbolt-backed record of feed URLs the collector already
// handed to the pipeline, so a restarted collector does not republish
// whole feeds. It is a cache only; URL uniqueness is still enforced by
// the article store.
type SeenTracker struct {
	db *bolt.DB
	mu sync.RWMutex
}

// OpenSeenTracker opens (or creates) the tracker database at path.
func OpenSeenTracker(path string) (*SeenTracker, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for seen tracker: %w", err)
	}

	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open seen tracker: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &SeenTracker{db: db}, nil
}

func (s *SeenTracker) IsSeen(url string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var seen bool
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		seen = b.Get([]byte(url)) != nil
		return nil
	})
	return seen, err
}

func (s *SeenTracker) MarkSeen(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		return b.Put([]byte(url), []byte("1"))
	})
}

func (s *SeenTracker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
