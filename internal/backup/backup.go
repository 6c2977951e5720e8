// Package backup writes zstd-compressed task exports to a directory,
// prunes old ones and restores them.
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

const (
	filePrefix = "tasks-"
	// FileExt is the extension of compressed snapshots
	FileExt = ".json.zst"
	// timestamps sort lexically in this layout
	stampLayout = "20060102T150405.000Z"

	maxNameAttempts = 1000
)

// ErrNotFound is returned when a named snapshot does not exist in the backup directory
var ErrNotFound = errors.New("backup: snapshot not found")

// TaskSource is the slice of the task store a backup needs
type TaskSource interface {
	ExportTasks() ([]byte, error)
	ImportTasks(ctx context.Context, data []byte) error
}

// Snapshot describes one backup file
type Snapshot struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"createdAt"`
	Size      int64     `json:"size"`
}

// zstd.Encoder and zstd.Decoder are safe for concurrent EncodeAll/DecodeAll.
var (
	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	var err error
	encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("backup: zstd encoder initialization failed: " + err.Error())
	}
	decoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("backup: zstd decoder initialization failed: " + err.Error())
	}
}

// Manager creates, lists, prunes and restores snapshots in one directory
type Manager struct {
	dir       string
	retention int
	tasks     TaskSource
	log       *zap.Logger
	now       func() time.Time
}

// Option configures a Manager
type Option func(*Manager)

// WithClock overrides the time source used to stamp snapshots
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager returns a Manager writing to dir. retention is the number of
// snapshots kept after each run; 0 keeps everything.
func NewManager(dir string, retention int, tasks TaskSource, log *zap.Logger, opts ...Option) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		dir:       dir,
		retention: retention,
		tasks:     tasks,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the backup directory
func (m *Manager) Dir() string {
	return m.dir
}

// Run exports the task collection, writes it compressed and prunes old snapshots.
// The file is written under a temporary name and then linked into place, so a
// listed snapshot is always complete and an existing snapshot is never replaced.
func (m *Manager) Run(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	data, err := m.tasks.ExportTasks()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to export tasks: %w", err)
	}
	if err := os.MkdirAll(m.dir, 0o750); err != nil {
		return Snapshot{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	created := m.now().UTC().Truncate(time.Millisecond)
	compressed := encoder.EncodeAll(data, make([]byte, 0, len(data)/2))

	tmp, err := os.CreateTemp(m.dir, ".tmp-"+filePrefix+"*")
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(compressed); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return Snapshot{}, fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return Snapshot{}, fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return Snapshot{}, fmt.Errorf("failed to close snapshot: %w", err)
	}
	// os.Link refuses an existing target. A taken stamp moves forward a
	// millisecond so names stay unique and ordered.
	var name, path string
	for attempt := 0; ; attempt++ {
		name = filePrefix + created.Format(stampLayout) + FileExt
		path = filepath.Join(m.dir, name)
		err := os.Link(tmpName, path)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) || attempt >= maxNameAttempts {
			_ = os.Remove(tmpName)
			return Snapshot{}, fmt.Errorf("failed to finalize snapshot: %w", err)
		}
		created = created.Add(time.Millisecond)
	}
	_ = os.Remove(tmpName)

	snap := Snapshot{Name: name, Path: path, CreatedAt: created, Size: int64(len(compressed))}
	m.log.Info("backup_written",
		zap.String("name", name),
		zap.Int("raw_bytes", len(data)),
		zap.Int64("compressed_bytes", snap.Size),
	)

	if err := m.prune(); err != nil {
		// the snapshot itself succeeded
		m.log.Warn("backup_prune_failed", zap.Error(err))
	}
	return snap, nil
}

// List returns the snapshots in the backup directory, newest first.
// A missing directory yields an empty list.
func (m *Manager) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Snapshot{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	snaps := make([]Snapshot, 0, len(entries))
	for _, e := range entries {
		created, ok := parseName(e.Name())
		if e.IsDir() || !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		snaps = append(snaps, Snapshot{
			Name:      e.Name(),
			Path:      filepath.Join(m.dir, e.Name()),
			CreatedAt: created,
			Size:      info.Size(),
		})
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Name > snaps[j].Name })
	return snaps, nil
}

// Read returns the decompressed export held in file. A bare name is
// resolved inside the backup directory. Uncompressed .json exports are
// returned as-is.
func (m *Manager) Read(file string) ([]byte, error) {
	path := m.resolve(file)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, file)
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if !strings.HasSuffix(path, ".zst") && !bytes.HasPrefix(raw, zstdMagic) {
		return raw, nil
	}
	data, err := decoder.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress %s: %w", filepath.Base(path), err)
	}
	return data, nil
}

// Restore replaces the task collection with the contents of file
func (m *Manager) Restore(ctx context.Context, file string) error {
	data, err := m.Read(file)
	if err != nil {
		return err
	}
	if err := m.tasks.ImportTasks(ctx, data); err != nil {
		return fmt.Errorf("failed to restore %s: %w", filepath.Base(file), err)
	}
	m.log.Info("backup_restored", zap.String("name", filepath.Base(file)))
	return nil
}

// Latest returns the newest snapshot, or false when there is none
func (m *Manager) Latest() (Snapshot, bool, error) {
	snaps, err := m.List()
	if err != nil || len(snaps) == 0 {
		return Snapshot{}, false, err
	}
	return snaps[0], true, nil
}

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// resolve looks bare names up in the backup directory first, then relative to the working directory.
func (m *Manager) resolve(file string) string {
	if filepath.Base(file) == file {
		inDir := filepath.Join(m.dir, file)
		if _, err := os.Stat(inDir); err == nil {
			return inDir
		}
	}
	return file
}

func (m *Manager) prune() error {
	if m.retention <= 0 {
		return nil
	}
	snaps, err := m.List()
	if err != nil {
		return err
	}
	var errs []error
	for _, s := range snaps[min(m.retention, len(snaps)):] {
		if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		m.log.Debug("backup_pruned", zap.String("name", s.Name))
	}
	return errors.Join(errs...)
}

// IsSnapshotName reports whether name is a bare snapshot file name as written by Run
func IsSnapshotName(name string) bool {
	_, ok := parseName(name)
	return ok && filepath.Base(name) == name
}

func parseName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, FileExt) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), FileExt)
	t, err := time.Parse(stampLayout, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
