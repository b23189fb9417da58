package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/echocheck/packages/core/runner"
)

// JSONMetricsOutput is the complete JSON output structure
type JSONMetricsOutput struct {
	Metadata JSONMetadata       `json:"metadata"`
	Summary  JSONSummary        `json:"summary"`
	Latency  JSONLatency        `json:"latency"`
	Checks   []JSONCheckMetrics `json:"checks"`
}

// JSONMetadata contains metadata about the run
type JSONMetadata struct {
	RunID       string `json:"run_id"`
	BaseURL     string `json:"base_url"`
	GeneratedAt string `json:"generated_at"`
	Duration    string `json:"duration"`
}

type JSONSummary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// JSONLatency holds request latency percentiles in milliseconds
type JSONLatency struct {
	Count  int64   `json:"count"`
	MinMs  float64 `json:"min_ms"`
	MaxMs  float64 `json:"max_ms"`
	MeanMs float64 `json:"mean_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

// JSONCheckMetrics holds the metrics of one check
type JSONCheckMetrics struct {
	Name       string  `json:"name"`
	Outcome    string  `json:"outcome"`
	DurationMs float64 `json:"duration_ms"`
	Requests   int     `json:"requests"`
	Assertions int     `json:"assertions"`
}

// JSONExporter exports run metrics in JSON format
type JSONExporter struct {
	writer   io.Writer
	filePath string
	pretty   bool
}

// JSONOption is a functional option for JSONExporter
type JSONOption func(*JSONExporter)

// WithJSONWriter sets the output writer for JSON metrics
func WithJSONWriter(w io.Writer) JSONOption {
	return func(j *JSONExporter) {
		j.writer = w
	}
}

// WithJSONFile sets the output file for JSON metrics
func WithJSONFile(path string) JSONOption {
	return func(j *JSONExporter) {
		j.filePath = path
	}
}

// WithJSONPretty enables pretty-printed JSON output
func WithJSONPretty(pretty bool) JSONOption {
	return func(j *JSONExporter) {
		j.pretty = pretty
	}
}

// NewJSONExporter creates a new JSON metrics exporter
func NewJSONExporter(opts ...JSONOption) *JSONExporter {
	j := &JSONExporter{
		pretty: true,
	}

	for _, opt := range opts {
		opt(j)
	}

	return j
}

// BuildJSON assembles the JSON document for result.
func BuildJSON(result *runner.RunResult) JSONMetricsOutput {
	latency := Summarize(result)

	output := JSONMetricsOutput{
		Metadata: JSONMetadata{
			RunID:       result.ID,
			BaseURL:     result.BaseURL,
			GeneratedAt: time.Now().Format(time.RFC3339),
			Duration:    result.Duration.String(),
		},
		Summary: JSONSummary{
			Total:  result.Total(),
			Passed: result.Passed,
			Failed: result.Failed,
		},
		Latency: JSONLatency{
			Count:  latency.Count,
			MinMs:  ms(latency.Min),
			MaxMs:  ms(latency.Max),
			MeanMs: ms(latency.Mean),
			P50Ms:  ms(latency.P50),
			P95Ms:  ms(latency.P95),
			P99Ms:  ms(latency.P99),
		},
		Checks: make([]JSONCheckMetrics, 0, len(result.Results)),
	}

	for _, cr := range result.Results {
		output.Checks = append(output.Checks, JSONCheckMetrics{
			Name:       cr.Name,
			Outcome:    Outcome(cr),
			DurationMs: ms(cr.Duration),
			Requests:   len(cr.Exchanges),
			Assertions: len(cr.Assertions),
		})
	}
	return output
}

// Export writes the metrics of result to the configured file and writer
func (j *JSONExporter) Export(result *runner.RunResult) error {
	output := BuildJSON(result)

	var data []byte
	var err error

	if j.pretty {
		data, err = json.MarshalIndent(output, "", "  ")
	} else {
		data, err = json.Marshal(output)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	// Write to file if path is specified
	if j.filePath != "" {
		if err := os.WriteFile(j.filePath, data, 0644); err != nil {
			return fmt.Errorf("failed to write metrics file: %w", err)
		}
	}

	// Write to writer if specified
	if j.writer != nil {
		if _, err := j.writer.Write(data); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		if _, err := j.writer.Write([]byte("\n")); err != nil {
			return fmt.Errorf("failed to write newline: %w", err)
		}
	}

	return nil
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
