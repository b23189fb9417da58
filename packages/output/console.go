package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/echocheck/packages/core/runner"
	"github.com/abdul-hamid-achik/echocheck/packages/jsonvalue"
	"github.com/abdul-hamid-achik/echocheck/packages/probe"
	"github.com/fatih/color"
)

const bannerWidth = 50

// formatValue formats a value for display, truncating or summarizing large values
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case []any:
		return fmt.Sprintf("[array with %d items]", len(val))
	case *jsonvalue.Object:
		return fmt.Sprintf("{object with %d keys}", val.Len())
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	case map[string]string:
		return fmt.Sprintf("{map with %d entries}", len(val))
	case string:
		v = fmt.Sprintf("%q", val)
	}
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatResult(result *runner.RunResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()
	rule := strings.Repeat("=", bannerWidth)

	fmt.Fprintf(f.writer, "\n%s\n", bold(fmt.Sprintf("Running %d checks against %s", result.Total(), result.BaseURL)))
	fmt.Fprintf(f.writer, "\n")

	for _, r := range result.Results {
		switch {
		case r.Passed:
			fmt.Fprintf(f.writer, "  %s %s %s\n", green("✓"), r.Name, cyan(fmt.Sprintf("(%dms)", r.Duration.Milliseconds())))
		case r.Kind == runner.FailureError:
			fmt.Fprintf(f.writer, "  %s %s %s\n", red("x"), r.Name, red(fmt.Sprintf("(%s)", r.Message)))
		default:
			fmt.Fprintf(f.writer, "  %s %s %s\n", red("✗"), r.Name, cyan(fmt.Sprintf("(%dms)", r.Duration.Milliseconds())))
		}

		if f.verbose {
			if r.Description != "" {
				fmt.Fprintf(f.writer, "    %s\n", r.Description)
			}
			for _, ex := range r.Exchanges {
				if ex.Err != nil {
					fmt.Fprintf(f.writer, "    %s %s %s\n", ex.Request.Method, ex.Request.BuildURL(), red("failed"))
					continue
				}
				fmt.Fprintf(f.writer, "    %s %s -> %d %s\n", ex.Request.Method, ex.Response.URL, ex.Response.StatusCode,
					cyan(fmt.Sprintf("(%dms)", ex.Response.DurationMs())))
			}
		}

		for _, a := range r.Assertions {
			if a.Passed {
				if f.verbose {
					fmt.Fprintf(f.writer, "    %s %s %s\n", green("✓"), a.Subject, a.Operator)
				}
				continue
			}
			if a.Err != nil {
				continue
			}
			fmt.Fprintf(f.writer, "    %s %s %s\n", red("→"), a.Subject, a.Operator)
			fmt.Fprintf(f.writer, "      Expected: %s\n", formatValue(a.Expected, 100))
			fmt.Fprintf(f.writer, "      Actual:   %s\n", formatValue(a.Actual, 100))
			if a.Message != "" {
				fmt.Fprintf(f.writer, "      %s\n", a.Message)
			}
		}
	}

	fmt.Fprintf(f.writer, "\n%s\n", rule)
	fmt.Fprintf(f.writer, "%s\n", bold("RESULTS"))
	fmt.Fprintf(f.writer, "%s\n", rule)
	fmt.Fprintf(f.writer, "Total:  %d\n", result.Total())
	fmt.Fprintf(f.writer, "Passed: %s\n", green(result.Passed))
	if result.Failed > 0 {
		fmt.Fprintf(f.writer, "Failed: %s\n", red(result.Failed))
	} else {
		fmt.Fprintf(f.writer, "Failed: %d\n", result.Failed)
	}
	fmt.Fprintf(f.writer, "Time:   %dms\n", result.Duration.Milliseconds())
	fmt.Fprintf(f.writer, "\n")
	if result.OK() {
		fmt.Fprintf(f.writer, "%s\n", green("ALL CHECKS PASSED"))
	} else {
		fmt.Fprintf(f.writer, "%s\n", yellow(fmt.Sprintf("%d checks failed", result.Failed)))
	}
	fmt.Fprintf(f.writer, "%s\n", rule)
}

// FormatProbe renders connectivity probe results.
func (f *ConsoleFormatter) FormatProbe(results []*probe.Result) {
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "%s\n\n", bold("=== Connectivity probe ==="))
	for _, r := range results {
		fmt.Fprintf(f.writer, "Probing: %s\n", r.URL)
		if r.Err != nil {
			fmt.Fprintf(f.writer, "  %s %v\n\n", red("Error:"), r.Err)
			continue
		}
		fmt.Fprintf(f.writer, "  Status: %s %s\n", statusColor(r.StatusCode)(r.StatusCode), cyan(fmt.Sprintf("(%dms)", r.Duration.Milliseconds())))
		if r.Title != "" {
			fmt.Fprintf(f.writer, "  Title:  %s\n", r.Title)
		}
		fmt.Fprintf(f.writer, "  Body:   %s\n\n", r.Snippet)
	}
}

func statusColor(code int) func(a ...any) string {
	switch {
	case code >= 200 && code < 300:
		return color.New(color.FgGreen).SprintFunc()
	case code >= 400:
		return color.New(color.FgRed).SprintFunc()
	default:
		return color.New(color.FgYellow).SprintFunc()
	}
}

// FormatError reports an error that kept a run from producing results.
func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("echocheck"), version)
}
