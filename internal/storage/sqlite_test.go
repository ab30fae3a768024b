package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestSQLite(t *testing.T, path string) *SQLiteKV {
	kv, err := NewSQLiteKV(path)
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestSQLiteKV_Contract(t *testing.T) {
	runKVContract(t, setupTestSQLite(t, ":memory:"))
}

func TestSQLiteKV_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.db")
	ctx := context.Background()

	first, err := NewSQLiteKV(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "cart:s1", []byte(`[{"id":"a","quantity":2}]`)))
	require.NoError(t, first.Close())

	// migrations must be idempotent on an existing file
	second := setupTestSQLite(t, path)
	value, err := second.Get(ctx, "cart:s1")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a","quantity":2}]`, string(value))
}
