// Package store holds the planner's in-memory collections and the
// write-behind persister that snapshots them into a persistence adapter.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/benvon/day-planner/internal/models"
	"github.com/benvon/day-planner/internal/persistence"
	"github.com/benvon/day-planner/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Persistence keys, one snapshot per collection
const (
	TaskStoreKey     = "task-store"
	CategoryStoreKey = "category-store"
	SettingsKey      = "time-settings"
)

// DefaultPersistTimeout bounds a single adapter write
const DefaultPersistTimeout = 5 * time.Second

// Persister writes collection snapshots to an adapter on a background
// goroutine. Only the latest snapshot per key is kept while a write is
// in flight, so bursts of mutations collapse into one write.
type Persister struct {
	adapter persistence.Adapter
	log     *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending map[string][]byte
	closed  bool

	// failed is owned by the run loop. A key stays failed until a later
	// write of the same key succeeds or a Flush reports it.
	failed map[string]error

	wake     chan struct{}
	flushReq chan chan error
	stop     chan struct{}
	done     chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// NewPersister starts the write loop. timeout <= 0 uses DefaultPersistTimeout.
func NewPersister(adapter persistence.Adapter, log *zap.Logger, timeout time.Duration) *Persister {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultPersistTimeout
	}
	p := &Persister{
		adapter:  adapter,
		log:      log,
		timeout:  timeout,
		pending:  make(map[string][]byte),
		failed:   make(map[string]error),
		wake:     make(chan struct{}, 1),
		flushReq: make(chan chan error),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

// Adapter returns the underlying adapter
func (p *Persister) Adapter() persistence.Adapter {
	return p.adapter
}

// Enqueue schedules data to be written under key, replacing any snapshot
// for the same key that has not been written yet. It never blocks.
func (p *Persister) Enqueue(key string, data []byte) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.log.Warn("persist_after_close_dropped", zap.String("key", key))
		return
	}
	p.pending[key] = data
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Flush waits until every snapshot enqueued before the call is written.
// Failures since the previous Flush that were not superseded by a
// successful write of the same key are joined into the returned error.
func (p *Persister) Flush(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case p.flushReq <- reply:
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes whatever is pending and stops the loop. The adapter is
// not closed. Enqueue after Close drops the snapshot.
func (p *Persister) Close(ctx context.Context) error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		close(p.stop)
	})

	select {
	case <-p.done:
		return p.closeErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Load reads key from the adapter and decodes it into v. A stored value
// that is not valid JSON for v yields an INVALID_FORMAT error.
func (p *Persister) Load(ctx context.Context, key string, v any) (bool, error) {
	data, found, err := p.adapter.Load(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, models.WrapError(models.ErrCodeInvalidFormat, fmt.Sprintf("malformed snapshot under %s", key), err)
	}
	return true, nil
}

func (p *Persister) run() {
	defer close(p.done)
	for {
		select {
		case <-p.wake:
			p.drain()
		case reply := <-p.flushReq:
			p.drain()
			reply <- p.takeFailures()
		case <-p.stop:
			p.drain()
			p.closeErr = p.takeFailures()
			return
		}
	}
}

// drain writes every pending snapshot in key order, recording the
// outcome of each key in p.failed
func (p *Persister) drain() {
	p.mu.Lock()
	batch := p.pending
	p.pending = make(map[string][]byte)
	p.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	keys := make([]string, 0, len(batch))
	for k := range batch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := p.write(key, batch[key]); err != nil {
			p.failed[key] = err
			continue
		}
		delete(p.failed, key)
	}
}

func (p *Persister) takeFailures() error {
	if len(p.failed) == 0 {
		return nil
	}
	keys := make([]string, 0, len(p.failed))
	for k := range p.failed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	errs := make([]error, 0, len(keys))
	for _, key := range keys {
		errs = append(errs, p.failed[key])
	}
	p.failed = make(map[string]error)
	return errors.Join(errs...)
}

func (p *Persister) write(key string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	ctx, span := telemetry.Tracer().Start(ctx, "persist_snapshot",
		trace.WithAttributes(attribute.String("planner.key", key), attribute.Int("planner.bytes", len(data))))
	defer span.End()

	if err := p.adapter.Save(ctx, key, data); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		p.log.Error("persist_snapshot_failed",
			zap.String("key", key),
			zap.Int("bytes", len(data)),
			zap.Error(err),
		)
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	p.log.Debug("persisted_snapshot",
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)
	return nil
}
