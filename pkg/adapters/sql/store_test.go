package sql_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	sqlstore "github.com/aretw0/tally/pkg/adapters/sql"
	"github.com/aretw0/tally/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exercise(t *testing.T, s *sqlstore.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))
	// Initialize is idempotent.
	require.NoError(t, s.Initialize(ctx))

	_, ok, err := s.Get(ctx, core.NotesKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, core.NotesKey, []byte(`[]`)))
	require.NoError(t, s.Set(ctx, core.NotesKey, []byte(`[{"id":1}]`)))
	v, ok, err := s.Get(ctx, core.NotesKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, string(v))

	require.NoError(t, s.Set(ctx, "reminded-1-16/10/2026", []byte("true")))
	require.NoError(t, s.Set(ctx, "reminded-2-15/10/2026", []byte("true")))
	keys, err := s.Keys(ctx, "reminded-*-*/*/*")
	require.NoError(t, err)
	assert.Equal(t, []string{"reminded-1-16/10/2026", "reminded-2-15/10/2026"}, keys)

	require.NoError(t, s.Delete(ctx, "reminded-2-15/10/2026"))
	keys, err = s.Keys(ctx, "")
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}

func TestSQLite(t *testing.T) {
	s, err := sqlstore.Open(sqlstore.Config{
		Dialect: sqlstore.SQLite,
		DSN:     filepath.Join(t.TempDir(), "tally.db"),
	})
	require.NoError(t, err)
	defer s.Close()
	exercise(t, s)
}

func TestPostgres(t *testing.T) {
	dsn := os.Getenv("TALLY_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TALLY_TEST_POSTGRES_DSN not set")
	}
	s, err := sqlstore.Open(sqlstore.Config{Dialect: sqlstore.Postgres, DSN: dsn, Table: "tally_kv_test"})
	require.NoError(t, err)
	defer s.Close()
	t.Cleanup(func() {
		for _, k := range []string{core.NotesKey, "reminded-1-16/10/2026"} {
			_ = s.Delete(context.Background(), k)
		}
	})
	exercise(t, s)
}

func TestOpen_Rejects(t *testing.T) {
	_, err := sqlstore.Open(sqlstore.Config{Dialect: "oracle", DSN: "x"})
	assert.Error(t, err)

	_, err = sqlstore.Open(sqlstore.Config{Dialect: sqlstore.SQLite})
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)
}
