package cmd

import (
	"context"
	"fmt"

	engine "dat-catalog/core/catalog"
	"dat-catalog/core/config"
	"dat-catalog/core/database"
	"dat-catalog/core/logger"
	"dat-catalog/core/metrics"
	"dat-catalog/core/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app bundles what every command needs.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	catalog *engine.Catalog
	metrics *metrics.CatalogMetrics
}

// newApp loads the configuration, opens the bucket store and the catalog
// over it. A catalog opened over the SQL store has its statistics recounted.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	var m *metrics.CatalogMetrics
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		if m, err = metrics.NewCatalogMetrics(registry); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	a := &app{cfg: cfg, logger: logg, metrics: m}

	var st engine.Store
	switch cfg.Catalog.Store {
	case engine.StoreMemory:
		st = store.NewMemory()
	default:
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("database connection required: %w", err)
		}
		sqlStore, err := store.NewSQL(db)
		if err != nil {
			return nil, err
		}
		a.db = db
		st = sqlStore
		a.logger = logg.With(zap.String("driver", db.Dialector.Name()))
	}

	a.catalog = engine.New(st, cfg.Catalog, a.logger, m)

	if a.db != nil {
		stats, err := a.catalog.Reload(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog: %w", err)
		}
		a.logger.Info("Catalog opened",
			zap.String("store", cfg.Catalog.Store),
			zap.Int64("items", stats.TotalCount),
			zap.Int("machines", stats.GameCount()),
		)
	}

	return a, nil
}

func (a *app) close() {
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = a.logger.Sync()
}
