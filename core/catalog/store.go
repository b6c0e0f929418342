package catalog

import (
	"context"

	"dat-catalog/core/items"
)

// Store is the persistence collaborator holding buckets. Implementations must
// be safe for concurrent use on distinct keys; the catalog serializes access
// to any single key.
type Store interface {
	// EnsureKey creates an empty bucket if needed and reports whether it already existed.
	EnsureKey(ctx context.Context, key string) (existed bool, err error)
	// Fetch returns the items of a bucket in insertion order. A missing key yields no items.
	Fetch(ctx context.Context, key string) ([]*items.Item, error)
	// Replace overwrites a bucket, creating the key if needed.
	Replace(ctx context.Context, key string, list []*items.Item) error
	// DeleteKey removes a bucket and its items.
	DeleteKey(ctx context.Context, key string) error
	// Keys lists every bucket key.
	Keys(ctx context.Context) ([]string, error)
}

// Appender is implemented by stores that can append to a bucket without rewriting it.
type Appender interface {
	Append(ctx context.Context, key string, list ...*items.Item) error
}
