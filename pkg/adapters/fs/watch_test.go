package fs_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/tally/pkg/adapters/fs"
	"github.com/aretw0/tally/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Watch(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, err := s.Watch(ctx, core.NotesKey)
	require.NoError(t, err)

	// Writes from another handle on the same directory.
	other := fs.NewStore(fs.Config{Path: s.Path})
	require.NoError(t, other.Set(ctx, "reminded-1-01/01/2025", []byte("true")))
	require.NoError(t, other.Set(ctx, core.NotesKey, []byte("[]")))

	select {
	case e := <-events:
		assert.Equal(t, core.NotesKey, e.Key)
		assert.Contains(t, []core.EventType{core.EventCreate, core.EventModify}, e.Type)
	case <-ctx.Done():
		t.Fatal("timed out waiting for watch event")
	}
}

func TestStore_WatchClosesOnCancel(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	events, err := s.Watch(ctx, "")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-events:
		for ok {
			_, ok = <-events
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch channel not closed after cancel")
	}
}
