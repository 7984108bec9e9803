package fs

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/tally/pkg/core"
)

// Watch reports changes of keys matching pattern made by any process.
// The returned channel is closed when ctx is cancelled or the watcher fails.
func (s *Store) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid key pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.Path, err)
	}

	events := make(chan core.Event, 16)
	s.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(events)
		defer s.setWatcherActive(false)
		defer watcher.Close()
		return s.watchLoop(ctx, watcher, pattern, events)
	}, lifecycle.WithErrorHandler(func(err error) {
		s.handleWatchError(fmt.Errorf("watcher stopped: %w", err))
	}))

	return events, nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, pattern string, out chan<- core.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			e, ok := s.translate(event, pattern)
			if !ok {
				continue
			}
			s.config.Logger.Debug("store change", "key", e.Key, "type", e.Type)
			select {
			case out <- e:
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			s.handleWatchError(err)
		}
	}
}

// translate maps a filesystem event to a key event, filtering temp files and non-matching keys.
func (s *Store) translate(event fsnotify.Event, pattern string) (core.Event, bool) {
	key, ok := s.keyOf(event.Name)
	if !ok {
		return core.Event{}, false
	}
	if pattern != "" {
		if match, _ := doublestar.Match(pattern, key); !match {
			return core.Event{}, false
		}
	}

	var t core.EventType
	switch {
	case event.Has(fsnotify.Create):
		t = core.EventCreate
	case event.Has(fsnotify.Write):
		t = core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		t = core.EventDelete
	default:
		return core.Event{}, false
	}
	return core.Event{Type: t, Key: key, Timestamp: time.Now().Unix()}, true
}

func (s *Store) handleWatchError(err error) {
	s.config.Logger.Error("fsnotify error", "error", err)
	if s.config.ErrorHandler != nil {
		s.config.ErrorHandler(err)
	}
}

var _ core.Watchable = (*Store)(nil)
