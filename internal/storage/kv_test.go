package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runKVContract checks the behavior every backend must share.
func runKVContract(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		value, err := kv.Get(ctx, "cart:missing")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, value)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "cart:s1", []byte(`[{"id":"a","quantity":1}]`)))

		value, err := kv.Get(ctx, "cart:s1")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"a","quantity":1}]`, string(value))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "cart:s2", []byte(`[{"id":"a","quantity":1}]`)))
		require.NoError(t, kv.Set(ctx, "cart:s2", []byte(`[]`)))

		value, err := kv.Get(ctx, "cart:s2")
		require.NoError(t, err)
		assert.Equal(t, "[]", string(value))
	})

	t.Run("emptied cart stays stored", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "cart:s3", []byte(`[{"id":"a","quantity":2}]`)))
		require.NoError(t, kv.Set(ctx, "cart:s3", []byte(`[]`)))

		value, err := kv.Get(ctx, "cart:s3")
		require.NoError(t, err)
		assert.Equal(t, "[]", string(value))
	})
}
