// Package kv provides the key-value persistence adapter behind the domain
// store. Values are opaque byte slices (JSON-encoded collections); every key
// has an associated change feed so other processes observe writes, replacing
// the browser storage-event mechanism of the original dashboard.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key has never been set.
var ErrNotFound = errors.New("key not found")

// Store is the persistence adapter contract. Set with a zero TTL persists
// until overwritten; a positive TTL is used for revocable session tokens.
//
// Subscribe returns a channel delivering the new value after every Set on the
// key from any process, and a cancel function that releases the subscription.
// The channel is closed when the subscription ends.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Subscribe(ctx context.Context, key string) (<-chan []byte, func(), error)
	Close() error
}
