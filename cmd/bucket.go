package cmd

import (
	"fmt"
	"time"

	engine "dat-catalog/core/catalog"
	"dat-catalog/core/items"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// bucketCmd represents the bucket command
var bucketCmd = &cobra.Command{
	Use:   "bucket",
	Short: "Regroup the catalog and merge duplicates",
	Long: `Regroups every item under a key mode (machine or a hash) and merges duplicates
inside each bucket. Without --key the best hash tier available is used.
The catalog must live in a persistent database (database.path) to outlive the command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		start := time.Now()

		opts, err := bucketFlags(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if opts == nil {
			opts = &engine.BucketOptions{}
		}
		if opts.Key == items.KeyNone {
			opts.Key = a.catalog.BestHashTier()
			a.logger.Info("Using best hash tier", zap.String("key", string(opts.Key)))
		}

		if err := a.catalog.BucketBy(ctx, *opts); err != nil {
			return fmt.Errorf("bucketing failed: %w", err)
		}

		clearMarked, _ := cmd.Flags().GetBool("clear")
		if clearMarked {
			if err := a.catalog.ClearMarked(ctx); err != nil {
				return fmt.Errorf("failed to clear flagged items: %w", err)
			}
		}

		stats := a.catalog.Statistics()
		fmt.Println("\n=== Bucketing Summary ===")
		fmt.Printf("Bucketed By: %s\n", displayKey(a.catalog.BucketedBy()))
		fmt.Printf("Merged By: %s\n", displayDedupe(a.catalog.MergedBy()))
		fmt.Printf("Buckets: %d\n", len(a.catalog.Keys(ctx)))
		fmt.Printf("Items: %d\n", stats.TotalCount)
		fmt.Printf("Flagged For Removal: %d\n", stats.RemovedCount)
		fmt.Printf("Execution Time: %s\n", time.Since(start).String())
		return nil
	},
}

func addBucketFlags(cmd *cobra.Command) {
	cmd.Flags().String("key", "", "Key mode (machine, crc, md5, sha1, sha256, sha384, sha512)")
	cmd.Flags().String("dedupe", "", "Merge mode (none, game, full)")
	cmd.Flags().Bool("lower", false, "Lowercase hash keys")
	cmd.Flags().Bool("norename", false, "Drop the source index from machine keys")
}

// bucketFlags parses the bucketing flags. It returns nil when none was set.
func bucketFlags(cmd *cobra.Command) (*engine.BucketOptions, error) {
	flags := cmd.Flags()
	if !flags.Changed("key") && !flags.Changed("dedupe") && !flags.Changed("lower") && !flags.Changed("norename") {
		return nil, nil
	}

	rawKey, _ := flags.GetString("key")
	key, err := items.ParseItemKey(rawKey)
	if err != nil {
		return nil, err
	}
	rawDedupe, _ := flags.GetString("dedupe")
	dedupe, err := items.ParseDedupeType(rawDedupe)
	if err != nil {
		return nil, err
	}
	lower, _ := flags.GetBool("lower")
	norename, _ := flags.GetBool("norename")

	return &engine.BucketOptions{
		Key:                 key,
		Dedupe:              dedupe,
		NormalizeCase:       lower,
		IgnoreSourceContext: norename,
	}, nil
}

func displayKey(k items.ItemKey) string {
	if k == items.KeyNone {
		return "none"
	}
	return string(k)
}

func displayDedupe(d items.DedupeType) string {
	if d == items.DedupeNone {
		return "none"
	}
	return string(d)
}

func init() {
	RootCmd.AddCommand(bucketCmd)
	addBucketFlags(bucketCmd)
	bucketCmd.Flags().Bool("clear", false, "Remove flagged items after merging")
}
