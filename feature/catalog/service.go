package catalog

import (
	"context"
	"errors"
	"fmt"

	engine "dat-catalog/core/catalog"
	"dat-catalog/core/items"

	"go.uber.org/zap"
)

// ErrInvalidRequest reports unusable request parameters.
var ErrInvalidRequest = errors.New("invalid request")

// Service exposes the catalog to the HTTP layer.
type Service struct {
	catalog *engine.Catalog
	logger  *zap.Logger
}

// NewService creates a new catalog service.
func NewService(c *engine.Catalog, logger *zap.Logger) *Service {
	return &Service{catalog: c, logger: logger}
}

// StatsReport is the statistics view returned by the API.
type StatsReport struct {
	Statistics engine.Statistics `json:"statistics"`
	GameCount  int               `json:"game_count"`
	BucketedBy items.ItemKey     `json:"bucketed_by"`
	MergedBy   items.DedupeType  `json:"merged_by"`
}

// BucketRequest selects a bucketing pass.
type BucketRequest struct {
	Key                 string `json:"key"`
	Dedupe              string `json:"dedupe"`
	NormalizeCase       bool   `json:"lower"`
	IgnoreSourceContext bool   `json:"norename"`
}

// Options parses the request into bucketing options.
func (r BucketRequest) Options() (engine.BucketOptions, error) {
	key, err := items.ParseItemKey(r.Key)
	if err != nil {
		return engine.BucketOptions{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	dedupe, err := items.ParseDedupeType(r.Dedupe)
	if err != nil {
		return engine.BucketOptions{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return engine.BucketOptions{
		Key:                 key,
		Dedupe:              dedupe,
		NormalizeCase:       r.NormalizeCase,
		IgnoreSourceContext: r.IgnoreSourceContext,
	}, nil
}

// Keys lists bucket keys in natural order.
func (s *Service) Keys(ctx context.Context) []string {
	return s.catalog.SortedKeys(ctx)
}

// Bucket returns the items of a bucket. Unless all is set only the items a
// writer would emit are returned.
func (s *Service) Bucket(ctx context.Context, key string, all bool) ([]*items.Item, error) {
	if !all {
		return s.catalog.FilteredItems(ctx, key), nil
	}
	return s.catalog.Items(ctx, key)
}

// Stats returns the running statistics, or rebuilt ones when recalculate is set.
func (s *Service) Stats(ctx context.Context, recalculate bool) (StatsReport, error) {
	stats := s.catalog.Statistics()
	if recalculate {
		var err error
		if stats, err = s.catalog.RecalculateStats(ctx); err != nil {
			return StatsReport{}, err
		}
	}
	return StatsReport{
		Statistics: stats,
		GameCount:  stats.GameCount(),
		BucketedBy: s.catalog.BucketedBy(),
		MergedBy:   s.catalog.MergedBy(),
	}, nil
}

// BestHash returns the strongest hash tier shared by every dumped item.
func (s *Service) BestHash() items.ItemKey {
	return s.catalog.BestHashTier()
}

// Bucketize runs a bucketing pass. An empty key selects the best hash tier.
func (s *Service) Bucketize(ctx context.Context, req BucketRequest) (engine.BucketOptions, error) {
	if req.Key == "" {
		req.Key = string(s.catalog.BestHashTier())
	}
	opts, err := req.Options()
	if err != nil {
		return opts, err
	}

	s.logger.Info("Bucketing catalog",
		zap.String("key", string(opts.Key)),
		zap.String("dedupe", string(opts.Dedupe)),
	)
	if err := s.catalog.BucketBy(ctx, opts); err != nil {
		return opts, fmt.Errorf("bucketing by %s failed: %w", opts.Key, err)
	}
	return opts, nil
}

// AddItems adds decoded items under their current keys.
func (s *Service) AddItems(ctx context.Context, list []*items.Item) error {
	return s.catalog.AddItems(ctx, list)
}

// Clear purges flagged items and empty buckets.
func (s *Service) Clear(ctx context.Context, marked, empty bool) error {
	if marked {
		if err := s.catalog.ClearMarked(ctx); err != nil {
			return err
		}
	}
	if empty {
		if err := s.catalog.ClearEmpty(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Duplicates flags and returns the duplicates of item.
func (s *Service) Duplicates(ctx context.Context, item *items.Item, sorted bool) ([]*items.Item, error) {
	return s.catalog.Duplicates(ctx, item, sorted)
}
