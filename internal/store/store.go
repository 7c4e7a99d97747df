// Package store provides a key-value store abstraction used for reminder
// dispatch deduplication, with in-memory and Redis implementations.
package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key does not exist or has expired.
var ErrNotFound = errors.New("store: key not found")

// Store is the key-value surface the reminder jobs rely on. SetNX is the
// dedupe primitive: it stores the key only when absent and reports whether
// the write happened.
type Store interface {
	Set(key string, value []byte, ttl time.Duration) error
	Get(key string) ([]byte, error)
	SetNX(key string, value []byte, ttl time.Duration) (bool, error)
	Delete(key string) error
	Exists(key string) (bool, error)
	Close() error
}
