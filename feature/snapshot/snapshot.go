package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	engine "dat-catalog/core/catalog"
	"dat-catalog/core/items"

	"go.uber.org/zap"
)

// Version is the snapshot document version written by Build.
const Version = 1

// Snapshot is the serialized form of a whole catalog.
type Snapshot struct {
	Version   int                  `json:"version"`
	CreatedAt time.Time            `json:"created_at"`
	Header    items.Header         `json:"header"`
	Options   engine.BucketOptions `json:"options"`
	Buckets   []Bucket             `json:"buckets"`
}

// Bucket is one key and its items, flagged items included.
type Bucket struct {
	Key   string            `json:"key"`
	Items []json.RawMessage `json:"items"`
}

// Build captures every bucket of c in natural key order.
func Build(ctx context.Context, c *engine.Catalog) (*Snapshot, error) {
	snap := &Snapshot{
		Version:   Version,
		CreatedAt: time.Now().UTC(),
		Header:    c.Header,
		Options:   c.Options(),
		Buckets:   []Bucket{},
	}

	for _, key := range c.SortedKeys(ctx) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		list, err := c.Items(ctx, key)
		if err != nil {
			return nil, err
		}

		b := Bucket{Key: key, Items: make([]json.RawMessage, 0, len(list))}
		for _, it := range list {
			raw, err := json.Marshal(it)
			if err != nil {
				return nil, fmt.Errorf("failed to encode item in %q: %w", key, err)
			}
			b.Items = append(b.Items, raw)
		}
		snap.Buckets = append(snap.Buckets, b)
	}
	return snap, nil
}

// RestoreResult summarizes a restore.
type RestoreResult struct {
	Buckets int `json:"buckets"`
	Items   int `json:"items"`
	Skipped int `json:"skipped"`
}

// Restore loads the items of snap into c and re-applies the bucketing the
// snapshot was taken under. With replace set every existing bucket is
// removed first. Items that fail to decode are logged and skipped.
func Restore(ctx context.Context, c *engine.Catalog, snap *Snapshot, replace bool, logger *zap.Logger) (*RestoreResult, error) {
	if snap.Version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, snap.Version)
	}

	if replace {
		for _, key := range c.Keys(ctx) {
			if err := c.RemoveKey(ctx, key); err != nil {
				return nil, err
			}
		}
		c.Header = snap.Header
	}

	result := &RestoreResult{}
	var list []*items.Item
	for _, b := range snap.Buckets {
		result.Buckets++
		for i, raw := range b.Items {
			var it items.Item
			if err := json.Unmarshal(raw, &it); err != nil {
				logger.Warn("Skipping malformed snapshot item",
					zap.String("key", b.Key),
					zap.Int("position", i),
					zap.Error(err),
				)
				result.Skipped++
				continue
			}
			list = append(list, &it)
		}
	}

	if err := c.AddItems(ctx, list); err != nil {
		return nil, err
	}
	result.Items = len(list)

	if snap.Options.Key != items.KeyNone {
		if err := c.BucketBy(ctx, snap.Options); err != nil {
			return result, err
		}
	}
	return result, nil
}
