package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/tabstat-cli/internal/dataset"
	"github.com/KaramelBytes/tabstat-cli/internal/stats"
)

// Tool names one of the statistics a run computes.
type Tool string

const (
	ToolCrossEntropy  Tool = "crossentropy"
	ToolSampleEntropy Tool = "sampen"
	ToolCorrelation   Tool = "correlation"
	ToolTTest         Tool = "ttest"
)

// MaxSampEnColumns caps how many columns one sample entropy run inspects.
const MaxSampEnColumns = 5

// ErrInvalidConfig wraps every RunConfig validation failure.
var ErrInvalidConfig = errors.New("invalid run configuration")

// ParseTool accepts a tool name or one of its common aliases.
func ParseTool(s string) (Tool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "crossentropy", "cross-entropy", "ce":
		return ToolCrossEntropy, nil
	case "sampen", "sample-entropy", "sampleentropy":
		return ToolSampleEntropy, nil
	case "correlation", "correlate", "pearson":
		return ToolCorrelation, nil
	case "ttest", "t-test":
		return ToolTTest, nil
	}
	return "", fmt.Errorf("%w: unknown tool %q", ErrInvalidConfig, s)
}

// Params carries the tool-specific knobs.
type Params struct {
	// EmbeddingDim is the sample entropy template length m.
	EmbeddingDim int `json:"embedding_dim,omitempty"`
	// ToleranceFactor scales the population SD into the SampEn tolerance; 0 selects 0.2.
	ToleranceFactor float64    `json:"tolerance_factor,omitempty"`
	Mode            stats.Mode `json:"mode"`
	Tail            stats.Tail `json:"tail"`
}

// RunConfig describes one invocation. It is built once, validated, and then
// only passed by value.
type RunConfig struct {
	Tool    Tool
	Source  string
	Columns []string
	// Output overrides the default result spreadsheet path.
	Output string
	Params Params
	Read   dataset.Options
}

func (c RunConfig) clone() RunConfig {
	c.Columns = append([]string(nil), c.Columns...)
	return c
}

// Validate checks the configuration before any file is touched.
func (c RunConfig) Validate() error {
	if strings.TrimSpace(c.Source) == "" {
		return fmt.Errorf("%w: no source folder or file selected", ErrInvalidConfig)
	}
	info, err := os.Stat(c.Source)
	if err != nil {
		return fmt.Errorf("%w: source: %v", ErrInvalidConfig, err)
	}
	var cols int
	for _, col := range c.Columns {
		if col != "" {
			cols++
		}
	}
	if cols != len(c.Columns) {
		return fmt.Errorf("%w: empty column name", ErrInvalidConfig)
	}
	switch c.Tool {
	case ToolCrossEntropy:
		if cols != 2 {
			return fmt.Errorf("%w: cross entropy needs exactly two columns, got %d", ErrInvalidConfig, cols)
		}
	case ToolCorrelation:
		if cols != 2 {
			return fmt.Errorf("%w: correlation needs columns X and Y, got %d", ErrInvalidConfig, cols)
		}
	case ToolTTest:
		if cols != 2 {
			return fmt.Errorf("%w: t-test needs columns A and B, got %d", ErrInvalidConfig, cols)
		}
		if info.IsDir() {
			return fmt.Errorf("%w: t-test runs on a single file, got folder %s", ErrInvalidConfig, c.Source)
		}
	case ToolSampleEntropy:
		if cols == 0 {
			return fmt.Errorf("%w: sample entropy needs at least one column", ErrInvalidConfig)
		}
		if cols > MaxSampEnColumns {
			return fmt.Errorf("%w: sample entropy accepts at most %d columns, got %d", ErrInvalidConfig, MaxSampEnColumns, cols)
		}
		if c.Params.EmbeddingDim < 1 {
			return fmt.Errorf("%w: embedding dimension must be a positive integer, got %d", ErrInvalidConfig, c.Params.EmbeddingDim)
		}
		if c.Params.ToleranceFactor < 0 {
			return fmt.Errorf("%w: tolerance factor must be >= 0", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown tool %q", ErrInvalidConfig, c.Tool)
	}
	return nil
}

// OutputPath returns where the result spreadsheet goes. Folder runs default
// to a fixed name inside the folder; the t-test writes only when asked.
func (c RunConfig) OutputPath() string {
	if c.Output != "" {
		return c.Output
	}
	var name string
	switch c.Tool {
	case ToolCrossEntropy:
		name = "Cross_Entropy_Results.xlsx"
	case ToolCorrelation:
		name = "Pearson_Correlations.xlsx"
	case ToolSampleEntropy:
		name = "Sample_Entropy_Results.xlsx"
	default:
		return ""
	}
	dir := c.Source
	if info, err := os.Stat(c.Source); err == nil && !info.IsDir() {
		dir = filepath.Dir(c.Source)
	}
	return filepath.Join(dir, name)
}
