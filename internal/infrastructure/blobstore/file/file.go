// Package file stores blobs as files under a root directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/infrastructure/blobstore"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/logging"
)

const (
	blobExt   = ".blob"
	backupDir = ".backups"
)

// Store writes one file per key. Saves are atomic and the previous version
// of each key is kept as a rotating backup.
type Store struct {
	root        string
	backupCount int
	logger      *logging.Logger
	now         func() time.Time

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithBackups sets how many previous versions are kept per key.
func WithBackups(n int) Option {
	return func(s *Store) { s.backupCount = n }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) { s.logger = l.Named("file-store") }
}

// WithClock overrides the clock used to name backups.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates the root directory if needed and verifies it is writable.
func New(root string, opts ...Option) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve store root %s: %w", root, err)
	}
	s := &Store{
		root:        abs,
		backupCount: 3,
		logger:      logging.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Join(abs, backupDir), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory %s: %w", abs, err)
	}
	probe, err := os.CreateTemp(abs, ".probe-*")
	if err != nil {
		return nil, fmt.Errorf("store directory %s is not writable: %w", abs, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	s.logger.Debug("file store ready", zap.String("root", abs), zap.Int("backups", s.backupCount))
	return s, nil
}

// Root returns the absolute root directory.
func (s *Store) Root() string {
	return s.root
}

// Load reads the blob under key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, blobstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Save backs up the current version and atomically replaces it with data.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", key, err)
	}
	if err := s.backup(key, path); err != nil {
		s.logger.Warn("backup failed", zap.String("key", key), zap.Error(err))
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("verify %s: %w", key, err)
	}
	if info.Size() != int64(len(data)) {
		return fmt.Errorf("verify %s: wrote %d bytes, found %d", key, len(data), info.Size())
	}

	s.logger.Debug("blob saved", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

// Delete removes key and its backups.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if err := os.RemoveAll(s.backupPath(key)); err != nil {
		return fmt.Errorf("delete backups of %s: %w", key, err)
	}
	return nil
}

// Backups lists the backup files of key, newest first.
func (s *Store) Backups(key string) ([]string, error) {
	if err := blobstore.ValidateKey(key); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.backupPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == blobExt {
			names = append(names, filepath.Join(s.backupPath(key), e.Name()))
		}
	}
	// Names are fixed-width timestamps so lexical order is chronological.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func (s *Store) path(key string) (string, error) {
	if err := blobstore.ValidateKey(key); err != nil {
		return "", err
	}
	if strings.HasPrefix(key, backupDir) {
		return "", fmt.Errorf("%w: %q is reserved", blobstore.ErrInvalidKey, key)
	}
	return filepath.Join(s.root, filepath.FromSlash(key)+blobExt), nil
}

func (s *Store) backupPath(key string) string {
	return filepath.Join(s.root, backupDir, filepath.FromSlash(key))
}

// backup copies the current version of key aside. Must hold mu.
func (s *Store) backup(key, path string) error {
	if s.backupCount <= 0 {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	dir := s.backupPath(key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := s.now().UTC().Format("20060102T150405.000000000") + blobExt
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o600); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return s.pruneBackups(key)
}

// pruneBackups keeps only the newest backupCount versions. Must hold mu.
func (s *Store) pruneBackups(key string) error {
	backups, err := s.Backups(key)
	if err != nil {
		return err
	}
	for i := s.backupCount; i < len(backups); i++ {
		s.logger.Debug("removing old backup", zap.String("path", backups[i]))
		if err := os.Remove(backups[i]); err != nil {
			return fmt.Errorf("remove old backup %s: %w", backups[i], err)
		}
	}
	return nil
}
