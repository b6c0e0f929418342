package checks

import (
	"context"
	"fmt"
	"slices"

	engine "dat-catalog/core/catalog"
	"dat-catalog/core/items"
)

// CheckEmptyKeys lists buckets holding no items other than blanks.
func CheckEmptyKeys(ctx context.Context, c *engine.Catalog) ([]string, error) {
	if c == nil {
		return nil, fmt.Errorf("catalog is nil")
	}

	empty := []string{}
	for _, key := range c.SortedKeys(ctx) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		list, err := c.Items(ctx, key)
		if err != nil {
			return nil, err
		}
		if !slices.ContainsFunc(list, func(it *items.Item) bool {
			return it != nil && it.Kind() != items.KindBlank
		}) {
			empty = append(empty, key)
		}
	}
	return empty, nil
}

// FixEmptyKeys drops every bucket holding only blanks.
func FixEmptyKeys(ctx context.Context, c *engine.Catalog) error {
	return c.ClearEmpty(ctx)
}
