package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent or its TTL has lapsed.
var ErrNotFound = errors.New("key not found")

// Store is the external key-value surface the metadata cache is built on.
// Values are opaque bytes (UTF-8 JSON by convention); every Set may carry
// a per-key TTL.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
	Increment(ctx context.Context, key string) (uint64, error)
	Counter(ctx context.Context, key string) (uint64, error)
	Close() error
}
