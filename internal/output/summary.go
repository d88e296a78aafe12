package output

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/yairfalse/driftwatch/pkg/types"
)

// RenderSummary produces the human-readable block for a regression report:
// totals, a pass/fail banner, and one line per failing field with both
// values side by side.
func (r *Renderer) RenderSummary(report *types.RegressionReport) string {
	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)
	dim := color.New(color.Faint)
	if r.config.NoColor {
		green.DisableColor()
		red.DisableColor()
		dim.DisableColor()
	}

	var out strings.Builder

	out.WriteString(fmt.Sprintf("Regression Test: %s\n", report.TestName))
	out.WriteString(strings.Repeat("=", 24+len(report.TestName)) + "\n")
	out.WriteString(fmt.Sprintf("Run at:   %s\n", report.Timestamp.Format("2006-01-02 15:04:05")))
	out.WriteString(fmt.Sprintf("Duration: %.3fs\n\n", report.Summary.ExecutionTime))

	out.WriteString("Summary:\n")
	out.WriteString(fmt.Sprintf("  Compared: %d\n", report.Summary.TotalComparisons))
	out.WriteString(fmt.Sprintf("  Passed:   %d\n", report.Summary.PassedComparisons))
	out.WriteString(fmt.Sprintf("  Failed:   %d\n\n", report.Summary.FailedComparisons))

	if report.Summary.Success {
		out.WriteString(green.Sprint("PASSED") + " - no drift detected\n")
		return out.String()
	}

	out.WriteString(red.Sprint("FAILED") + " - drift detected\n\n")
	out.WriteString("Differences:\n")

	for _, diff := range report.Differences {
		out.WriteString(fmt.Sprintf("  ~ %s\n", diff.FieldPath))
		out.WriteString(fmt.Sprintf("      expected: %s\n", formatValue(diff.Expected)))
		out.WriteString(fmt.Sprintf("      actual:   %s\n", formatValue(diff.Actual)))

		detail := string(diff.Kind)
		if diff.ToleranceApplied {
			detail += ", tolerance applied"
		}
		out.WriteString(dim.Sprintf("      (%s)\n", detail))

		if diff.Kind == types.DifferenceListLengthMismatch {
			out.WriteString(dim.Sprint("      elements beyond the shorter length were not compared\n"))
		}
	}

	return out.String()
}

// formatValue renders an outcome value for the summary, quoting strings so
// "10" and 10 stay distinguishable.
func formatValue(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", value)
	case float64:
		// Trim the ".000000" noise off whole numbers.
		if value == float64(int64(value)) {
			return fmt.Sprintf("%d", int64(value))
		}
		return fmt.Sprintf("%g", value)
	default:
		return fmt.Sprintf("%v", value)
	}
}
