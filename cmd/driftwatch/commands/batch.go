package commands

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/yairfalse/driftwatch/internal/runner"
	"github.com/yairfalse/driftwatch/pkg/types"
)

func newBatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "batch",
		Short:        "Run the configured set of endpoint regression tests",
		SilenceUsage: true,
		Long: `Batch runs every test defined under 'batch.tests' in the configuration,
concurrently. Tests without a stored baseline get one captured automatically
and count as passed for that run.

One failing endpoint never stops the others; each test ends in its own
report.`,
		Example: `  # Run all configured tests
  driftwatch batch

  # Limit concurrency
  driftwatch batch --workers 2

  # Example config (~/.driftwatch/config.yaml):
  #   batch:
  #     workers: 4
  #     tests:
  #       - name: dashboard-stats
  #         endpoint: /api/dashboard/stats
  #         params:
  #           period: 7d
  #       - name: technician-ranking
  #         endpoint: /api/ranking`,
		RunE: runBatch,
	}

	cmd.Flags().IntP("workers", "w", 0, "maximum concurrent tests (default from config)")

	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	workers, _ := cmd.Flags().GetInt("workers")
	if workers <= 0 {
		workers = cfg.Batch.Workers
	}

	if len(cfg.Batch.Tests) == 0 {
		return fmt.Errorf("no batch tests configured; add them under 'batch.tests' in the config file")
	}

	specs := make([]runner.TestSpec, 0, len(cfg.Batch.Tests))
	for _, test := range cfg.Batch.Tests {
		specs = append(specs, runner.TestSpec{
			Name:     test.Name,
			Endpoint: test.Endpoint,
			Params:   test.Params,
			Snapshot: test.Snapshot,
		})
	}

	r, store, err := buildRunner(-1)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout()*2)
	defer cancel()

	results := r.RunBatch(ctx, specs, workers)

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	if cfg.Output.NoColor {
		green.DisableColor()
		red.DisableColor()
		yellow.DisableColor()
	}

	passed := 0
	for _, result := range results {
		switch {
		case result.Err != nil:
			red.Printf("  ✗ %s: %v\n", result.Spec.Name, result.Err)
		case result.Captured:
			yellow.Printf("  ● %s: baseline captured\n", result.Spec.Name)
			passed++
		case result.Passed():
			green.Printf("  ✓ %s: %d comparisons\n", result.Spec.Name, result.Report.Summary.TotalComparisons)
			passed++
		default:
			red.Printf("  ✗ %s: %d of %d comparisons failed\n",
				result.Spec.Name,
				result.Report.Summary.FailedComparisons,
				result.Report.Summary.TotalComparisons)
			printBatchDifferences(result.Report)
		}

		if result.Report != nil {
			if _, err := store.SaveReport(result.Report); err != nil {
				red.Printf("    failed to save report: %v\n", err)
			}
		}
	}

	fmt.Printf("\n%d/%d tests passed\n", passed, len(results))

	if passed != len(results) {
		return errRegressionDetected
	}
	return nil
}

func printBatchDifferences(report *types.RegressionReport) {
	const maxShown = 5
	for i, diff := range report.Differences {
		if i == maxShown {
			fmt.Printf("    ... and %d more\n", len(report.Differences)-maxShown)
			break
		}
		fmt.Printf("    %s: %v → %v (%s)\n", diff.FieldPath, diff.Expected, diff.Actual, diff.Kind)
	}
}
