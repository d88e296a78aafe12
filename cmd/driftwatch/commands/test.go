package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	drifterrors "github.com/yairfalse/driftwatch/internal/errors"
	"github.com/yairfalse/driftwatch/internal/output"
	"github.com/yairfalse/driftwatch/pkg/types"
)

func newTestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "test",
		Short:        "Run one regression test against a stored baseline",
		SilenceUsage: true,
		Long: `Test loads a stored snapshot as the expected value, fetches the endpoint's
current response, and compares the two field by field. Numeric fields match
within the relative tolerance; everything else must be identical.

The report is printed and persisted. Exit codes: 0 = passed, 1 = drift
detected, 2 = the test could not run at all.`,
		Example: `  # Compare the endpoint against the stored baseline
  driftwatch test --endpoint /api/dashboard/stats --snapshot dashboard-stats

  # Tighten the numeric tolerance to 1%
  driftwatch test --endpoint /api/dashboard/stats --snapshot dashboard-stats --tolerance 0.01

  # Use a snapshot file directly and emit the machine-readable report
  driftwatch test --snapshot ./snapshots/dashboard-stats.json --format json

  # Compare against the newest snapshot matching a pattern
  driftwatch test --endpoint /api/dashboard/stats --snapshot "dashboard-*"

  # Intentionally test parameter variance against an older baseline
  driftwatch test --endpoint /api/dashboard/stats --snapshot dashboard-stats --params period=30d`,
		RunE: runTest,
	}

	cmd.Flags().StringP("endpoint", "e", "", "endpoint path to fetch (defaults to the snapshot's endpoint)")
	cmd.Flags().StringP("snapshot", "s", "", "stored snapshot name or file path (required)")
	cmd.Flags().StringSliceP("params", "p", nil, "override query parameters as key=value (repeatable)")
	cmd.Flags().StringP("name", "n", "", "test name for the report (defaults to the snapshot name)")
	cmd.Flags().Float64P("tolerance", "t", -1, "relative numeric tolerance (default 0.05)")
	cmd.Flags().StringP("format", "f", "", "report format (summary, json, yaml)")
	cmd.MarkFlagRequired("snapshot")

	return cmd
}

func runTest(cmd *cobra.Command, args []string) error {
	endpoint, _ := cmd.Flags().GetString("endpoint")
	snapshotRef, _ := cmd.Flags().GetString("snapshot")
	testName, _ := cmd.Flags().GetString("name")
	tolerance, _ := cmd.Flags().GetFloat64("tolerance")
	formatName, _ := cmd.Flags().GetString("format")
	paramPairs, _ := cmd.Flags().GetStringSlice("params")

	params, err := parseParams(paramPairs)
	if err != nil {
		return err
	}
	if params != nil && endpoint == "" {
		return fmt.Errorf("--endpoint is required when overriding --params")
	}

	if formatName == "" {
		formatName = cfg.Output.Format
	}
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return err
	}

	if testName == "" {
		testName = filepath.Base(snapshotRef)
		testName = testName[:len(testName)-len(filepath.Ext(testName))]
	}

	r, store, err := buildRunner(tolerance)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout())
	defer cancel()

	report := r.Run(ctx, snapshotRef, endpoint, params, testName)

	renderer := output.NewRenderer(output.Config{NoColor: cfg.Output.NoColor})
	rendered, err := renderer.FormatReport(report, format)
	if err != nil {
		return err
	}
	fmt.Println(string(rendered))

	reportPath, err := store.SaveReport(report)
	if err != nil {
		return err
	}
	fmt.Printf("Report saved: %s\n", reportPath)

	if !report.Summary.Success {
		// A run that never got to compare anything is "could not run"
		// (exit 2), not a detected regression (exit 1).
		if len(report.Differences) == 1 && report.Differences[0].Kind == types.DifferenceExecutionError {
			return drifterrors.New(drifterrors.ErrorTypeValidation,
				fmt.Sprintf("test could not run: %v", report.Differences[0].Actual))
		}
		return errRegressionDetected
	}
	return nil
}
