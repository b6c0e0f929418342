package cmd

import (
	"fmt"
	"time"

	"dat-catalog/core/loader"
	"dat-catalog/core/logger"
	"dat-catalog/core/middleware/auth"
	"dat-catalog/core/middleware/rayid"
	"dat-catalog/core/storage"

	"dat-catalog/feature/catalog"
	"dat-catalog/feature/integrity"
	"dat-catalog/feature/snapshot"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "dat-catalog/docs/swagger"
)

// @title DAT Catalog API
// @version 1.0
// @description API for bucketing and deduplicating DAT catalogs.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the catalog server",
	Long:  `Opens the catalog, starts the HTTP server and initializes all enabled features.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		logg := a.logger
		zap.ReplaceGlobals(logg)

		if err := a.cfg.Server.Validate(); err != nil {
			return err
		}

		srv := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             a.cfg.Server.BodyLimit(),
			ReadTimeout:           time.Duration(a.cfg.Server.ReadTimeoutSeconds) * time.Second,
		})

		// Snapshots need object storage; the feature stays off without it.
		var client storage.Client
		if c, err := storage.NewClient(a.cfg.Storage); err != nil {
			logg.Warn("Object storage unavailable, snapshots disabled", zap.Error(err))
		} else {
			client = c
		}

		mgr := loader.NewManager(logg)
		for _, f := range []loader.Feature{
			catalog.NewFeature(a.catalog, logg),
			integrity.NewFeature(a.catalog, a.db, logg),
			snapshot.NewFeature(a.catalog, client, a.cfg.Storage, logg),
		} {
			if err := mgr.Register(f); err != nil {
				return err
			}
		}

		// RayID first so everything below is traceable
		srv.Use(rayid.New())

		srv.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Public routes
		srv.Get("/swagger/*", swagger.HandlerDefault)
		if a.metrics != nil {
			srv.Get(a.cfg.Metrics.Path, adaptor.HTTPHandler(a.metrics.Handler()))
		}

		srv.Use(auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey}))

		if err := mgr.LoadAll(srv); err != nil {
			return fmt.Errorf("failed to load features: %w", err)
		}

		errCh := make(chan error, 1)
		go func() {
			logg.Info("Starting server", zap.String("port", a.cfg.Server.Port))
			errCh <- srv.Listen(":" + a.cfg.Server.Port)
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("server failed: %w", err)
		case <-cmd.Context().Done():
		}

		logg.Info("Shutting down server...")
		return srv.ShutdownWithTimeout(10 * time.Second)
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
