// Package persistence provides the key-value byte stores the planner
// snapshots its collections into.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Backend names accepted by Open
const (
	BackendMemory   = "memory"
	BackendBolt     = "bolt"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// ErrClosed is returned by adapters used after Close
var ErrClosed = errors.New("persistence: adapter closed")

// Adapter is a key-value byte store. Load reports found=false for an
// absent key; that is not an error.
type Adapter interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
	Close() error
}

// Options selects and configures a backend
type Options struct {
	Backend     string
	BoltPath    string
	BoltBucket  string
	SQLitePath  string
	RedisURL    string
	DatabaseURL string
	KeyPrefix   string
}

// Open connects to the backend named in opts
func Open(opts Options) (Adapter, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendMemory:
		return NewMemoryAdapter(), nil
	case BackendBolt:
		a, err := OpenBolt(opts.BoltPath, opts.BoltBucket)
		if err != nil {
			return nil, err
		}
		return a, nil
	case BackendRedis:
		a, err := NewRedisAdapter(opts.RedisURL, opts.KeyPrefix)
		if err != nil {
			return nil, err
		}
		return a, nil
	case BackendPostgres:
		a, err := NewPostgresAdapter(opts.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return a, nil
	case BackendSQLite:
		a, err := OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (must be memory, bolt, sqlite, redis or postgres)", opts.Backend)
	}
}
