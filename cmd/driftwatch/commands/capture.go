package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newCaptureCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "capture",
		Short:        "Capture a baseline snapshot of an endpoint",
		SilenceUsage: true,
		Long: `Capture issues one GET against the configured service, decodes the JSON
body, and stores it with its capture metadata as a named baseline snapshot.

Later 'driftwatch test' runs compare the live endpoint against this baseline.`,
		Example: `  # Capture a dashboard stats baseline
  driftwatch capture --endpoint /api/dashboard/stats --name dashboard-stats

  # Capture with query parameters
  driftwatch capture --endpoint /api/dashboard/stats --params period=7d --params team=n1

  # Let the name derive from endpoint and capture time
  driftwatch capture --endpoint /api/dashboard/stats`,
		RunE: runCapture,
	}

	cmd.Flags().StringP("endpoint", "e", "", "endpoint path to capture (required)")
	cmd.Flags().StringSliceP("params", "p", nil, "query parameters as key=value (repeatable)")
	cmd.Flags().StringP("name", "n", "", "snapshot name (derived from endpoint and time if omitted)")
	cmd.MarkFlagRequired("endpoint")

	return cmd
}

func runCapture(cmd *cobra.Command, args []string) error {
	endpoint, _ := cmd.Flags().GetString("endpoint")
	name, _ := cmd.Flags().GetString("name")
	paramPairs, _ := cmd.Flags().GetStringSlice("params")

	params, err := parseParams(paramPairs)
	if err != nil {
		return err
	}

	r, _, err := buildRunner(-1)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout())
	defer cancel()

	snapshot, path, err := r.Capture(ctx, endpoint, params, name)
	if err != nil {
		return err
	}

	fmt.Printf("Baseline captured: %s\n", snapshot.Metadata.Endpoint)
	fmt.Printf("  status:        %d\n", snapshot.Metadata.ResponseStatus)
	fmt.Printf("  response time: %.3fs\n", snapshot.Metadata.ResponseTime)
	fmt.Printf("  stored at:     %s\n", path)

	return nil
}
