package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yairfalse/driftwatch/internal/storage"
)

func newSnapshotsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "snapshots",
		Short:        "List stored baseline snapshots",
		SilenceUsage: true,
		Example: `  # Show all stored baselines, newest first
  driftwatch snapshots`,
		RunE: runSnapshots,
	}

	return cmd
}

func runSnapshots(cmd *cobra.Command, args []string) error {
	storeConfig := storage.Config{BaseDir: cfg.Storage.BaseDir}
	store, err := storage.NewLocalStore(storeConfig)
	if err != nil {
		return err
	}

	infos, err := store.ListSnapshots()
	if err != nil {
		return err
	}

	if len(infos) == 0 {
		fmt.Println("No snapshots stored yet. Capture one with 'driftwatch capture'.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tENDPOINT\tCAPTURED\tSIZE")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d B\n",
			info.Name,
			info.Endpoint,
			info.CapturedAt.Format("2006-01-02 15:04:05"),
			info.FileSize)
	}
	return w.Flush()
}
