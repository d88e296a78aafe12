package output

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/yairfalse/driftwatch/pkg/types"
)

// Format is an output format for rendered reports.
type Format string

const (
	FormatSummary Format = "summary"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
)

// ParseFormat validates a format name, defaulting to the human summary.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatSummary, "":
		return FormatSummary, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", name)
	}
}

// Config controls rendering behavior
type Config struct {
	NoColor bool
}

// Renderer formats regression reports for humans and machines
type Renderer struct {
	config Config
}

// NewRenderer creates a new report renderer
func NewRenderer(config Config) *Renderer {
	return &Renderer{config: config}
}

// FormatReport renders a report in the requested format
func (r *Renderer) FormatReport(report *types.RegressionReport, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(report, "", "  ")
	case FormatYAML:
		return yaml.Marshal(report)
	case FormatSummary:
		return []byte(r.RenderSummary(report)), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
