package storage

import (
	"context"
	"errors"
)

// KV is a durable key/value store holding serialized carts.
// Consumers define what they persist; backends only move bytes. Keys are
// overwritten, never removed: an emptied cart is stored as an empty array.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

var ErrNotFound = errors.New("key not found")
