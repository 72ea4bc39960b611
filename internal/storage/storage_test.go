package storage

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kv interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	CheckReadiness(ctx context.Context) error
	Close() error
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func stores(t *testing.T) map[string]kv {
	t.Helper()
	sqlite, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "kv.db"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]kv{
		"sqlite": sqlite,
		"memory": NewMemoryKV(),
	}
}

func TestKV_GetMissing(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			v, ok, err := s.Get(context.Background(), "favourites")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, v)
		})
	}
}

func TestKV_PutGetOverwrite(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Put(ctx, "favourites", []byte(`["London"]`)))
			require.NoError(t, s.Put(ctx, "favourites", []byte(`["London","Paris"]`)))

			v, ok, err := s.Get(ctx, "favourites")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.JSONEq(t, `["London","Paris"]`, string(v))
		})
	}
}

func TestKV_Readiness(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, s.CheckReadiness(context.Background()))
		})
	}
}

func TestSQLiteKV_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	first, err := OpenSQLite(ctx, path, discardLogger())
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, "favourites", []byte(`["Tokyo"]`)))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(ctx, path, discardLogger())
	require.NoError(t, err)
	defer second.Close()

	v, ok, err := second.Get(ctx, "favourites")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `["Tokyo"]`, string(v))
}

func TestSQLiteKV_ClosedNotReady(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "kv.db"), discardLogger())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.Error(t, s.CheckReadiness(context.Background()))
}

func TestMemoryKV_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryKV()
	value := []byte("abc")
	require.NoError(t, m.Put(ctx, "k", value))
	value[0] = 'x'

	got, _, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
}
