package cmd

import (
	"context"
	"fmt"

	"dat-catalog/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on the catalog",
	Long:  `Recounts the statistics, looks for empty buckets and verifies the store schema.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, true, true)
	},
}

// statisticsCheckCmd represents the integrity statistics command
var statisticsCheckCmd = &cobra.Command{
	Use:   "statistics",
	Short: "Recount statistics from the stored items",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false, false)
	},
}

// keysCheckCmd represents the integrity keys command
var keysCheckCmd = &cobra.Command{
	Use:   "keys",
	Short: "Check and drop empty buckets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true, false)
	},
}

// schemaCheckCmd represents the integrity schema command
var schemaCheckCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the SQL bucket store schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(statisticsCheckCmd, keysCheckCmd, schemaCheckCmd)

	keysCheckCmd.Flags().BoolVar(&fixFlag, "fix", false, "Drop empty buckets")
}

func runIntegrityChecks(ctx context.Context, runStatistics, runKeys, runSchema bool) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	logg := a.logger

	svc := integrity.NewService(a.catalog, a.db, logg)

	if runStatistics {
		logg.Info("Recounting statistics...")
		report, err := svc.CheckStatistics(ctx)
		if err != nil {
			return fmt.Errorf("statistics check failed: %w", err)
		}
		if report.Matched {
			logg.Info("Statistics are consistent.", zap.Int64("items", report.Recomputed.TotalCount))
		}
	}

	if runKeys {
		logg.Info("Checking for empty buckets...")
		empty, err := svc.CheckEmptyKeys(ctx)
		if err != nil {
			return fmt.Errorf("keys check failed: %w", err)
		}

		switch {
		case len(empty) == 0:
			logg.Info("No empty buckets.")
		case fixFlag:
			logg.Warn("Empty buckets detected", zap.Strings("keys", empty))
			if err := svc.FixEmptyKeys(ctx); err != nil {
				return fmt.Errorf("failed to drop empty buckets: %w", err)
			}
			logg.Info("Empty buckets dropped.", zap.Int("count", len(empty)))
		default:
			logg.Warn("Empty buckets detected", zap.Strings("keys", empty))
			logg.Info("Run with --fix to drop them.")
		}
	}

	if runSchema {
		if a.db == nil {
			logg.Info("Memory store in use, skipping schema check.")
			return nil
		}
		logg.Info("Checking store schema...")
		report, err := svc.CheckSchema()
		if err != nil {
			return fmt.Errorf("schema check failed: %w", err)
		}
		if report.Matched {
			logg.Info("Store schema matches.", zap.String("driver", report.Driver))
		} else {
			logg.Warn("Store schema mismatches found", zap.String("driver", report.Driver))
			for table, tbl := range report.Tables {
				if tbl.Status != "ok" {
					logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tbl.MissingColumns))
				}
			}
			for _, e := range report.Errors {
				logg.Error("Inspection Error", zap.String("error", e))
			}
		}
	}
	return nil
}
