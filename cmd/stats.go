package cmd

import (
	"encoding/json"
	"fmt"
	"slices"

	"dat-catalog/core/items"

	"github.com/spf13/cobra"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print catalog statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		stats := a.catalog.Statistics()
		if recalculate, _ := cmd.Flags().GetBool("recalculate"); recalculate {
			if stats, err = a.catalog.RecalculateStats(ctx); err != nil {
				return fmt.Errorf("failed to recalculate statistics: %w", err)
			}
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			data, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Println("\n=== Catalog Statistics ===")
		fmt.Printf("Items: %d\n", stats.TotalCount)
		fmt.Printf("Machines: %d\n", stats.GameCount())
		fmt.Printf("Total Size: %d\n", stats.TotalSize)
		fmt.Printf("Flagged For Removal: %d\n", stats.RemovedCount)
		fmt.Printf("Best Hash: %s\n", a.catalog.BestHashTier())

		kinds := make([]items.Kind, 0, len(stats.Counts))
		for k := range stats.Counts {
			kinds = append(kinds, k)
		}
		slices.Sort(kinds)
		for _, k := range kinds {
			fmt.Printf("  %s: %d\n", k, stats.Counts[k])
		}
		for _, k := range items.HashTiers {
			if n := stats.HashCounts[k]; n > 0 {
				fmt.Printf("  with %s: %d\n", k, n)
			}
		}
		for status, n := range stats.StatusCounts {
			fmt.Printf("  %s: %d\n", status, n)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(statsCmd)
	statsCmd.Flags().Bool("recalculate", false, "Rebuild the statistics from the store")
	statsCmd.Flags().Bool("json", false, "Output JSON")
}
