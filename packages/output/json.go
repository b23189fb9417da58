package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/echocheck/packages/core/runner"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	RunID    string      `json:"runId,omitempty"`
	BaseURL  string      `json:"baseUrl,omitempty"`
	Summary  JSONSummary `json:"summary"`
	Checks   []JSONCheck `json:"checks"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

// JSONSummary represents the run summary
type JSONSummary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// JSONCheck represents a single check result
type JSONCheck struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Passed      bool            `json:"passed"`
	Kind        string          `json:"failureKind,omitempty"`
	Duration    float64         `json:"duration"`
	Error       string          `json:"error,omitempty"`
	Exchanges   []JSONExchange  `json:"exchanges,omitempty"`
	Assertions  []JSONAssertion `json:"assertions,omitempty"`
}

// JSONExchange represents one request a check sent
type JSONExchange struct {
	Method     string  `json:"method"`
	URL        string  `json:"url"`
	StatusCode int     `json:"statusCode,omitempty"`
	Duration   float64 `json:"duration,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// JSONAssertion represents an assertion result
type JSONAssertion struct {
	Subject  string `json:"subject"`
	Operator string `json:"operator"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
	Passed   bool   `json:"passed"`
	Message  string `json:"message,omitempty"`
}

// JSONFormatter formats check results as JSON
type JSONFormatter struct {
	writer  io.Writer
	runID   string
	baseURL string
	results []JSONCheck
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:  os.Stdout,
		results: make([]JSONCheck, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	f.runID = result.ID
	f.baseURL = result.BaseURL

	for _, r := range result.Results {
		check := JSONCheck{
			Name:        r.Name,
			Description: r.Description,
			Passed:      r.Passed,
			Duration:    float64(r.Duration.Milliseconds()),
		}

		if !r.Passed {
			check.Kind = r.Kind.String()
			check.Error = r.Message
		}

		for _, ex := range r.Exchanges {
			je := JSONExchange{
				Method: ex.Request.Method,
				URL:    ex.Request.BuildURL(),
			}
			if ex.Err != nil {
				je.Error = ex.Err.Error()
			} else if ex.Response != nil {
				je.StatusCode = ex.Response.StatusCode
				je.Duration = float64(ex.Response.DurationMs())
			}
			check.Exchanges = append(check.Exchanges, je)
		}

		for _, a := range r.Assertions {
			check.Assertions = append(check.Assertions, JSONAssertion{
				Subject:  a.Subject,
				Operator: a.Operator,
				Expected: a.Expected,
				Actual:   a.Actual,
				Passed:   a.Passed,
				Message:  a.Message,
			})
		}

		f.results = append(f.results, check)
	}
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	var passed, failed int
	for _, c := range f.results {
		if c.Passed {
			passed++
		} else {
			failed++
		}
	}

	output := JSONOutput{
		RunID:   f.runID,
		BaseURL: f.baseURL,
		Summary: JSONSummary{
			Total:  len(f.results),
			Passed: passed,
			Failed: failed,
		},
		Checks:   f.results,
		Duration: float64(totalDuration.Milliseconds()),
		Time:     time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
