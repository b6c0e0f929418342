package cmd

import (
	"fmt"

	"dat-catalog/core/storage"
	"dat-catalog/feature/snapshot"

	"github.com/spf13/cobra"
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export and import catalog snapshots",
	Long:  `Moves whole catalogs to and from the configured object storage bucket.`,
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export [name]",
	Short: "Export the catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		return withSnapshots(cmd, func(svc *snapshot.Service) error {
			result, err := svc.Export(cmd.Context(), name)
			if err != nil {
				return err
			}
			fmt.Printf("Exported %d buckets to %s (%d bytes)\n", result.Buckets, result.Object, result.Size)
			return nil
		})
	},
}

var snapshotImportCmd = &cobra.Command{
	Use:   "import <name>",
	Short: "Import a snapshot into the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		replace, _ := cmd.Flags().GetBool("replace")
		return withSnapshots(cmd, func(svc *snapshot.Service) error {
			result, err := svc.Import(cmd.Context(), args[0], replace)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d items from %d buckets (%d skipped)\n", result.Items, result.Buckets, result.Skipped)
			return nil
		})
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSnapshots(cmd, func(svc *snapshot.Service) error {
			list, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range list {
				fmt.Printf("%s\t%d\t%s\n", s.Name, s.Size, s.LastModified.Format("2006-01-02 15:04:05"))
			}
			return nil
		})
	},
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a stored snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSnapshots(cmd, func(svc *snapshot.Service) error {
			return svc.Delete(cmd.Context(), args[0])
		})
	},
}

func withSnapshots(cmd *cobra.Command, fn func(*snapshot.Service) error) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	client, err := storage.NewClient(a.cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}
	return fn(snapshot.NewService(a.catalog, client, a.cfg.Storage, a.logger))
}

func init() {
	RootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotExportCmd, snapshotImportCmd, snapshotListCmd, snapshotDeleteCmd)
	snapshotImportCmd.Flags().Bool("replace", false, "Empty the catalog first")
}
