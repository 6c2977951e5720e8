package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// DefaultBoltBucket holds every planner key when no bucket is configured
const DefaultBoltBucket = "planner"

// BoltAdapter stores values in a single bucket of a BoltDB file
type BoltAdapter struct {
	db     *bolt.DB
	bucket []byte
}

// OpenBolt opens (creating if needed) the BoltDB file at path and
// ensures the bucket exists.
func OpenBolt(path, bucket string) (*BoltAdapter, error) {
	if path == "" {
		return nil, fmt.Errorf("bolt path is required")
	}
	if bucket == "" {
		bucket = DefaultBoltBucket
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bolt directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bolt bucket: %w", err)
	}

	return &BoltAdapter{db: db, bucket: []byte(bucket)}, nil
}

// Load reads key from the bucket. Bolt values are only valid inside the
// transaction, so the result is copied out.
func (b *BoltAdapter) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if b == nil || b.db == nil {
		return nil, false, bolt.ErrDatabaseNotOpen
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var value []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(b.bucket).Get([]byte(key)); v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, value != nil, nil
}

// Save writes key in its own update transaction
func (b *BoltAdapter) Save(ctx context.Context, key string, value []byte) error {
	if b == nil || b.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).Put([]byte(key), value)
	}); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Ping checks that the bucket is still readable
func (b *BoltAdapter) Ping(ctx context.Context) error {
	if b == nil || b.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(b.bucket) == nil {
			return fmt.Errorf("bucket %s missing", b.bucket)
		}
		return nil
	})
}

// Close closes the Bolt database
func (b *BoltAdapter) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Stats exposes Bolt statistics for health output
func (b *BoltAdapter) Stats() bolt.Stats {
	if b == nil || b.db == nil {
		return bolt.Stats{}
	}
	return b.db.Stats()
}
