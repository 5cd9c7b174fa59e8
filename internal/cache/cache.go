// Package cache provides the durable local key-value store used to persist
// dictionary and session snapshots across process runs. Implementations are
// interchangeable; a nil Store means the execution context has no durable
// storage and persistence silently degrades to in-memory only.
package cache

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("cache: key not found")

// Store is a byte-oriented key-value store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
