package core

import (
	"context"
	"time"
)

// Well-known store keys.
const (
	// NotesKey holds the whole note collection as one serialized document.
	NotesKey = "tally-notes"

	// LedgerPrefix prefixes the reminder ledger keys: reminded-{noteId}-{DD/MM/YYYY}.
	LedgerPrefix = "reminded-"
)

// Store is the durable key/value surface every persistence adapter provides.
// Implementations must give read-your-own-write consistency.
type Store interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns the keys matching a doublestar glob pattern ("" matches all).
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// Initializer is implemented by stores that need setup (mkdir, schema migration).
type Initializer interface {
	Initialize(ctx context.Context) error
}

// Watchable is implemented by stores that can report changes made by other processes.
type Watchable interface {
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

// Clock abstracts the wall clock so schedules can be tested.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the real wall clock.
var SystemClock Clock = ClockFunc(time.Now)
