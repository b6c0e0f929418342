package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"dat-catalog/core/items"
	"dat-catalog/core/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// keyFunc processes one key. Implementations take the key lock themselves.
type keyFunc func(ctx context.Context, key string) error

// forEachKey runs fn over keys on the bounded worker pool. Cancellation is
// checked before each key is scheduled. A key failing on a malformed item or
// a panic is logged and skipped; store errors are collected and returned.
func (c *Catalog) forEachKey(ctx context.Context, stage string, keys []string, fn keyFunc) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(c.workers)

	for _, key := range keys {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := c.runKey(ctx, stage, key, fn); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s interrupted: %w", stage, err)
	}
	return errors.Join(errs...)
}

func (c *Catalog) runKey(ctx context.Context, stage, key string, fn keyFunc) (err error) {
	log := logger.ForKey(c.logger, key).With(zap.String("stage", stage))
	defer func() {
		if r := recover(); r != nil {
			log.Error("Key processing panicked", zap.Any("panic", r))
			c.metrics.RecordKeyFailure(stage)
			err = nil
		}
	}()

	err = fn(ctx, key)
	if errors.Is(err, items.ErrMalformedItem) {
		log.Warn("Skipping key with malformed item", zap.Error(err))
		c.metrics.RecordKeyFailure(stage)
		return nil
	}
	return err
}

// validateAll returns the first structural error in list.
func validateAll(list []*items.Item) error {
	for i, it := range list {
		if err := it.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

// storeKeys lists keys in natural order for a mutating pass.
func (c *Catalog) storeKeys(ctx context.Context) ([]string, error) {
	keys, err := c.store.Keys(ctx)
	if err != nil {
		return nil, storeErr("list keys", "", err)
	}
	slices.SortFunc(keys, compareNatural)
	return keys, nil
}
