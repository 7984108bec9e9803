package notes

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/tally/pkg/codec"
	"github.com/aretw0/tally/pkg/core"
)

// Repository loads and saves the note collection stored under core.NotesKey.
type Repository struct {
	store core.Store
}

// NewRepository creates a Repository on top of store.
func NewRepository(store core.Store) *Repository {
	return &Repository{store: store}
}

// Store returns the underlying key/value store.
func (r *Repository) Store() core.Store {
	return r.store
}

// Load returns the stored collection. A store that has never been written
// holds no notes.
func (r *Repository) Load(ctx context.Context) ([]core.Note, error) {
	data, ok, err := r.store.Get(ctx, core.NotesKey)
	if err != nil {
		return nil, storeError("load notes", err)
	}
	if !ok || len(data) == 0 {
		return nil, nil
	}
	notes, err := codec.UnmarshalNotes(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", core.NotesKey, err)
	}
	return notes, nil
}

// Save replaces the stored collection.
func (r *Repository) Save(ctx context.Context, notes []core.Note) error {
	if notes == nil {
		notes = []core.Note{}
	}
	data, err := codec.MarshalNotes(notes)
	if err != nil {
		return fmt.Errorf("encode notes: %w", err)
	}
	if err := r.store.Set(ctx, core.NotesKey, data); err != nil {
		return storeError("save notes", err)
	}
	return nil
}

// storeError makes sure every backend failure matches core.ErrStoreUnavailable,
// unless it is a read-only refusal.
func storeError(op string, err error) error {
	if errors.Is(err, core.ErrStoreUnavailable) || errors.Is(err, core.ErrReadOnly) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, core.ErrStoreUnavailable, err)
}
