package notes_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/tally/pkg/adapters/memory"
	"github.com/aretw0/tally/pkg/core"
	"github.com/aretw0/tally/pkg/notes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*notes.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	clock := core.ClockFunc(func() time.Time { return fixedNow })
	return notes.NewService(store, notes.WithClock(clock)), store
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	t.Run("Extracts Facts", func(t *testing.T) {
		n, err := svc.Create(ctx, "  Pay rent EUR1200 every month 01/07  ")
		require.NoError(t, err)
		assert.Equal(t, 1, n.ID)
		assert.Equal(t, "Pay rent EUR1200 every month 01/07", n.Content)
		require.NotNil(t, n.Amount)
		assert.Equal(t, 1200.0, *n.Amount)
		assert.Equal(t, "EUR", n.CurrencyCode)
		require.NotNil(t, n.DueDate)
		assert.Equal(t, core.Date{Year: 2024, Month: time.July, Day: 1}, *n.DueDate)
		require.NotNil(t, n.Recurrence)
		assert.Equal(t, core.Monthly, n.Recurrence.Unit)
		assert.Equal(t, fixedNow, n.CreatedAt)
		assert.Equal(t, []string{"Pay"}, n.Tags)
	})

	t.Run("Synthesizes From Vocabulary", func(t *testing.T) {
		n, err := svc.Create(ctx, "call the landlord, pay asap")
		require.NoError(t, err)
		assert.Equal(t, 2, n.ID)
		assert.Equal(t, []string{"Pay"}, n.Tags)
	})

	t.Run("Rejects Empty Content", func(t *testing.T) {
		_, err := svc.Create(ctx, "   ")
		assert.ErrorIs(t, err, core.ErrEmptyContent)
	})
}

func TestService_UpdateContentRederives(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	n, err := svc.Create(ctx, "Q3 USD10 20/06")
	require.NoError(t, err)
	_, err = svc.AddTag(ctx, n.ID, " errand ")
	require.NoError(t, err)

	got, err := svc.UpdateContent(ctx, n.ID, "just text")
	require.NoError(t, err)
	assert.True(t, got.IsZero(), "every fact field is re-derived")
	assert.Contains(t, got.Tags, "errand")
	assert.Equal(t, n.CreatedAt, got.CreatedAt)

	_, err = svc.UpdateContent(ctx, 99, "x")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestService_SetID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	a, _ := svc.Create(ctx, "first")
	b, _ := svc.Create(ctx, "second")
	require.NoError(t, svc.Update(ctx, func(all []core.Note) ([]core.Note, error) {
		all[1].Origin = a.ID
		return all, nil
	}))

	assert.ErrorIs(t, svc.SetID(ctx, a.ID, 0), core.ErrInvalidID)
	assert.ErrorIs(t, svc.SetID(ctx, a.ID, b.ID), core.ErrDuplicateID)
	assert.ErrorIs(t, svc.SetID(ctx, 42, 43), core.ErrNotFound)

	require.NoError(t, svc.SetID(ctx, a.ID, 10))
	moved, err := svc.Get(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "first", moved.Content)

	follower, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, follower.Origin)

	next, err := svc.Create(ctx, "third")
	require.NoError(t, err)
	assert.Equal(t, 11, next.ID)
}

func TestService_DuplicateIDAcrossDeleted(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	a, _ := svc.Create(ctx, "first")
	b, _ := svc.Create(ctx, "second")
	require.NoError(t, svc.SoftDelete(ctx, a.ID))
	assert.ErrorIs(t, svc.SetID(ctx, b.ID, a.ID), core.ErrDuplicateID)
}

func TestService_Tags(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	n, _ := svc.Create(ctx, "buy milk")
	n, err := svc.AddTag(ctx, n.ID, "shopping")
	require.NoError(t, err)
	n, err = svc.AddTag(ctx, n.ID, "shopping")
	require.NoError(t, err)
	assert.Equal(t, []string{"shopping"}, n.Tags)

	_, err = svc.AddTag(ctx, n.ID, "  ")
	assert.Error(t, err)

	n, err = svc.RemoveTag(ctx, n.ID, "shopping")
	require.NoError(t, err)
	assert.Empty(t, n.Tags)
}

func TestService_DeleteRecoverPurge(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	a, _ := svc.Create(ctx, "first")
	b, _ := svc.Create(ctx, "second")

	require.NoError(t, svc.SoftDelete(ctx, a.ID, b.ID))
	visible, err := svc.List(ctx, notes.Filter{})
	require.NoError(t, err)
	assert.Empty(t, visible)

	trash, err := svc.List(ctx, notes.Filter{OnlyDeleted: true})
	require.NoError(t, err)
	assert.Len(t, trash, 2)

	require.NoError(t, svc.Recover(ctx, a.ID))
	require.NoError(t, svc.Purge(ctx, b.ID))

	all, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].Deleted)

	assert.ErrorIs(t, svc.SoftDelete(ctx, b.ID), core.ErrNotFound)
}

func TestService_StoreFailureCommitsNothing(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)

	_, err := svc.Create(ctx, "kept")
	require.NoError(t, err)

	store.FailWith = assert.AnError
	_, err = svc.Create(ctx, "lost")
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)
	assert.ErrorIs(t, err, assert.AnError)
	store.FailWith = nil

	all, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "kept", all[0].Content)
}

func TestService_TagCounts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, _ = svc.Create(ctx, "#home clean")
	_, _ = svc.Create(ctx, "#home cook")
	c, _ := svc.Create(ctx, "#work report")
	require.NoError(t, svc.SoftDelete(ctx, c.ID))

	counts, err := svc.TagCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []notes.TagCount{{Tag: "home", Count: 2}}, counts)
}

func TestService_Renumber(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	for _, c := range []string{"alpha", "beta", "gamma"} {
		_, err := svc.Create(ctx, c)
		require.NoError(t, err)
	}
	require.NoError(t, svc.SetID(ctx, 1, 7))
	require.NoError(t, svc.SoftDelete(ctx, 2))
	require.NoError(t, svc.Update(ctx, func(all []core.Note) ([]core.Note, error) {
		all[2].Origin = 7
		return all, nil
	}))

	require.NoError(t, svc.Renumber(ctx, notes.Filter{}))

	all, err := svc.List(ctx, notes.Filter{IncludeDeleted: true})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "gamma", all[0].Content)
	assert.Equal(t, 2, all[0].Origin)
	assert.Equal(t, "alpha", all[1].Content)
	assert.Equal(t, "beta", all[2].Content)
	assert.Equal(t, 3, all[2].ID)
}

func TestService_State(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	_, _ = svc.Create(ctx, "x")

	state, ok := svc.State().(notes.ServiceState)
	require.True(t, ok)
	assert.Equal(t, 1, state.Mutations)
	assert.Equal(t, "service", svc.ComponentType())
}
