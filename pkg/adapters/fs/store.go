// Package fs implements core.Store on a directory, one file per key.
package fs

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/tally/pkg/core"
)

// fileSuffix is appended to every escaped key.
const fileSuffix = ".kv"

// Config holds the configuration for the filesystem store.
type Config struct {
	Path      string
	MustExist bool
	ReadOnly  bool
	Logger    *slog.Logger

	// ErrorHandler receives runtime watcher failures which are otherwise only logged.
	ErrorHandler func(error)
}

// Store implements core.Store on top of a directory.
type Store struct {
	Path   string
	config Config

	mu            sync.RWMutex
	watcherActive bool
	lastWrite     *time.Time
	writes        int
}

// NewStore creates a filesystem-backed store. No I/O happens until Initialize.
func NewStore(config Config) *Store {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Store{Path: config.Path, config: config}
}

// Initialize ensures the store directory exists.
func (s *Store) Initialize(ctx context.Context) error {
	if s.config.MustExist || s.config.ReadOnly {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: store path does not exist: %s", core.ErrStoreUnavailable, s.Path)
		}
		if err != nil {
			return fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: store path is not a directory: %s", core.ErrStoreUnavailable, s.Path)
		}
		return nil
	}
	if err := os.MkdirAll(s.Path, 0755); err != nil {
		return fmt.Errorf("%w: failed to create store directory: %v", core.ErrStoreUnavailable, err)
	}
	return nil
}

// Get reads the value of key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(s.filename(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: read %s: %v", core.ErrStoreUnavailable, key, err)
	}
	return data, true, nil
}

// Set writes value under key atomically.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("empty key")
	}
	if err := writeFileAtomic(s.filename(key), value, 0644); err != nil {
		return fmt.Errorf("%w: write %s: %v", core.ErrStoreUnavailable, key, err)
	}
	s.config.Logger.Debug("store write", "key", key, "bytes", len(value))
	s.recordWrite()
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.filename(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: delete %s: %v", core.ErrStoreUnavailable, key, err)
	}
	s.recordWrite()
	return nil
}

// Keys lists the stored keys matching pattern, sorted.
func (s *Store) Keys(ctx context.Context, pattern string) ([]string, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid key pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	entries, err := os.ReadDir(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", core.ErrStoreUnavailable, s.Path, err)
	}

	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		key, ok := s.keyOf(e.Name())
		if !ok {
			continue
		}
		if pattern != "" {
			if match, _ := doublestar.Match(pattern, key); !match {
				continue
			}
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) filename(key string) string {
	return filepath.Join(s.Path, url.PathEscape(key)+fileSuffix)
}

// keyOf maps a file name back to its key.
func (s *Store) keyOf(name string) (string, bool) {
	name = filepath.Base(name)
	if isTempFile(name) || !strings.HasSuffix(name, fileSuffix) {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimSuffix(name, fileSuffix))
	if err != nil {
		return "", false
	}
	return key, true
}

func (s *Store) recordWrite() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.lastWrite = &now
	s.writes++
}

var _ core.Store = (*Store)(nil)
var _ core.Initializer = (*Store)(nil)
