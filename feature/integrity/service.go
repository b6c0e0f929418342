package integrity

import (
	"context"

	engine "dat-catalog/core/catalog"
	"dat-catalog/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks.
type Service struct {
	catalog *engine.Catalog
	db      *gorm.DB
	logger  *zap.Logger
}

// NewService creates a new integrity service. db may be nil when the
// catalog runs on the memory store.
func NewService(c *engine.Catalog, db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		catalog: c,
		db:      db,
		logger:  logger,
	}
}

// CheckStatistics recounts the catalog and compares with the running statistics.
func (s *Service) CheckStatistics(ctx context.Context) (*checks.StatisticsReport, error) {
	report, err := checks.CheckStatistics(ctx, s.catalog)
	if err == nil && !report.Matched {
		s.logger.Warn("Statistics diverged from the stored items",
			zap.Int64("running_total", report.Running.TotalCount),
			zap.Int64("recount_total", report.Recomputed.TotalCount),
		)
	}
	return report, err
}

// CheckEmptyKeys returns buckets holding nothing but blanks.
func (s *Service) CheckEmptyKeys(ctx context.Context) ([]string, error) {
	return checks.CheckEmptyKeys(ctx, s.catalog)
}

// FixEmptyKeys drops the empty buckets.
func (s *Service) FixEmptyKeys(ctx context.Context) error {
	return checks.FixEmptyKeys(ctx, s.catalog)
}

// CheckSchema verifies the SQL store tables.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckStoreSchema(s.db)
}
