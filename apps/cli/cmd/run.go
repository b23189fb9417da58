package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/echocheck/packages/checks"
	"github.com/abdul-hamid-achik/echocheck/packages/core/config"
	"github.com/abdul-hamid-achik/echocheck/packages/core/env"
	"github.com/abdul-hamid-achik/echocheck/packages/core/runner"
	"github.com/abdul-hamid-achik/echocheck/packages/export/metrics"
	"github.com/abdul-hamid-achik/echocheck/packages/output"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the contract checks",
	Long: `Run the built-in contract checks against an httpbin-compatible service.

Every check runs, even when earlier ones fail, and a summary is printed at the
end. Failures are informational unless --fail-exit is set.

Examples:
  echocheck run
  echocheck run --base-url http://localhost:8080
  echocheck run --check "get-*,basic-auth"
  echocheck run -o junit --output-file report.xml
  echocheck run --metrics-file echocheck.prom --fail-exit
  echocheck run --watch`,
	Args: cobra.NoArgs,
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	baseURLFlag     string
	checkFlag       string
	outputFlag      string
	outputFileFlag  string
	metricsFileFlag string
	configFlag      string
	envFileFlag     string
	timeoutFlag     string
	rateLimitFlag   float64
	proxyFlag       string
	insecureFlag    bool
	noColorFlag     bool
	verboseFlag     int
	watchFlag       bool
	failExitFlag    bool
)

func init() {
	// Target flags
	runCmd.Flags().StringVar(&baseURLFlag, "base-url", env.String("base-url", ""), "Base URL of the service under test (default https://httpbin.org) (env: ECHOCHECK_BASE_URL)")
	runCmd.Flags().StringVarP(&checkFlag, "check", "c", env.String("check", ""), "Run only checks matching name pattern (comma-separated, * wildcard) (env: ECHOCHECK_CHECK)")
	runCmd.Flags().StringVar(&configFlag, "config", env.String("config", ""), "Path to config file (env: ECHOCHECK_CONFIG)")
	runCmd.Flags().StringVar(&envFileFlag, "env-file", env.String("env-file", ""), "Path to .env file loaded before settings are resolved (env: ECHOCHECK_ENV_FILE)")

	// Output flags
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", env.String("output", "console"), "Output format: console, json, junit, tap (env: ECHOCHECK_OUTPUT)")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", env.String("output-file", ""), "Write output to file (default: stdout) (env: ECHOCHECK_OUTPUT_FILE)")
	runCmd.Flags().StringVar(&metricsFileFlag, "metrics-file", env.String("metrics-file", ""), "Write run metrics to file: .json for JSON, anything else Prometheus text (env: ECHOCHECK_METRICS_FILE)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", env.Bool("no-color", false), "Disable colored output (env: ECHOCHECK_NO_COLOR)")
	runCmd.Flags().CountVarP(&verboseFlag, "verbose", "v", "Verbose output and debug logging")

	// Execution flags
	runCmd.Flags().StringVar(&timeoutFlag, "timeout", env.String("timeout", "30s"), "Request timeout (e.g., 30s, 1m) (env: ECHOCHECK_TIMEOUT)")
	runCmd.Flags().Float64Var(&rateLimitFlag, "rate-limit", env.Float("rate-limit", 0), "Maximum requests per second, 0 for unlimited (env: ECHOCHECK_RATE_LIMIT)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch the config file for changes and re-run checks")
	runCmd.Flags().BoolVar(&failExitFlag, "fail-exit", env.Bool("fail-exit", false), "Exit with status 1 when any check fails (env: ECHOCHECK_FAIL_EXIT)")

	// Network flags
	runCmd.Flags().StringVar(&proxyFlag, "proxy", env.String("proxy", ""), "Proxy URL for HTTP requests (env: ECHOCHECK_PROXY)")
	runCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", env.Bool("insecure", false), "Disable SSL certificate validation (env: ECHOCHECK_INSECURE)")
}

// runSettings is the resolved configuration of one run. Command line flags
// win over ECHOCHECK_ variables, which win over the config file.
type runSettings struct {
	configPath   string
	baseURL      string
	checks       string
	output       string
	outputFile   string
	metricsFile  string
	timeout      time.Duration
	delayTimeout time.Duration
	rateLimit    float64
	proxy        string
	validateSSL  bool
	headers      map[string]string
	noColor      bool
	verbose      int
	failExit     bool
}

func loadRunSettings(cmd *cobra.Command) (*runSettings, error) {
	flags := cmd.Flags()

	if envFileFlag != "" {
		if _, err := env.LoadAndExportDotEnv(envFileFlag); err != nil {
			return nil, configError(err)
		}
	}

	configPath := pick(flags.Changed("config"), configFlag, env.String("config", ""))
	if configPath == "" {
		configPath = config.FindConfigFile(".")
	}
	fileConfig, err := loadLayeredConfig(configPath)
	if err != nil {
		return nil, err
	}

	s := &runSettings{
		configPath:   configPath,
		baseURL:      pick(flags.Changed("base-url"), baseURLFlag, fileConfig.BaseURL),
		checks:       pick(flags.Changed("check"), checkFlag, env.String("check", "")),
		outputFile:   pick(flags.Changed("output-file"), outputFileFlag, env.String("output-file", "")),
		metricsFile:  pick(flags.Changed("metrics-file"), metricsFileFlag, env.String("metrics-file", "")),
		proxy:        pick(flags.Changed("proxy"), proxyFlag, fileConfig.Proxy),
		timeout:      fileConfig.TimeoutDuration(),
		delayTimeout: fileConfig.DelayTimeoutDuration(),
		rateLimit:    fileConfig.RateLimit,
		headers:      fileConfig.Headers,
		verbose:      verboseFlag,
	}

	defaultOutput := "console"
	if len(fileConfig.Reporters) > 0 {
		defaultOutput = fileConfig.Reporters[0]
	}
	s.output = strings.ToLower(pick(flags.Changed("output"), outputFlag, env.String("output", defaultOutput)))

	if flags.Changed("timeout") {
		d, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			return nil, usageError(fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", timeoutFlag, err))
		}
		s.timeout = d
	}

	if flags.Changed("rate-limit") {
		s.rateLimit = rateLimitFlag
	}
	if s.rateLimit < 0 {
		return nil, usageError(fmt.Errorf("--rate-limit must not be negative"))
	}

	s.noColor = pickBool(flags.Changed("no-color"), noColorFlag, fileConfig.GetNoColor())
	s.failExit = pickBool(flags.Changed("fail-exit"), failExitFlag, fileConfig.GetFailExit())
	s.validateSSL = !pickBool(flags.Changed("insecure"), insecureFlag, !fileConfig.GetValidateSSL())
	if s.verbose == 0 && fileConfig.GetVerbose() {
		s.verbose = 1
	}

	if _, err := output.New(s.output, output.Options{}); err != nil {
		return nil, usageError(err)
	}
	return s, nil
}

// loadLayeredConfig returns the config file at path, or the defaults when
// path is empty, with ECHOCHECK_ variables merged over it.
func loadLayeredConfig(path string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path != "" {
		var err error
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return nil, configError(err)
		}
	}

	envConfig, err := config.FromEnv(env.LoadSystemEnv())
	if err != nil {
		return nil, configError(err)
	}
	return cfg.Merge(envConfig), nil
}

func pick(changed bool, flagVal, fallback string) string {
	if changed {
		return flagVal
	}
	return fallback
}

func pickBool(changed bool, flagVal, fallback bool) bool {
	if changed {
		return flagVal
	}
	return fallback
}

func runCommand(cmd *cobra.Command, args []string) error {
	settings, err := loadRunSettings(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := runOnce(ctx, cmd, settings)
	if err != nil {
		return err
	}

	if !watchFlag {
		return exitStatus(settings, result)
	}
	return watch(ctx, cmd, settings)
}

// exitStatus turns a finished run into the command's error, if any.
func exitStatus(settings *runSettings, result *runner.RunResult) error {
	if settings.failExit && !result.OK() {
		return &ExitError{
			Code:   ExitTestFailure,
			Err:    fmt.Errorf("%d of %d checks failed", result.Failed, result.Total()),
			Silent: true,
		}
	}
	return nil
}

// runOnce executes the selected checks and writes every configured report.
func runOnce(ctx context.Context, cmd *cobra.Command, settings *runSettings) (*runner.RunResult, error) {
	logger := newLogger(cmd.ErrOrStderr(), settings.verbose, settings.noColor)

	selected := checks.Filter(checks.New(checks.Options{DelayTimeout: settings.delayTimeout}), settings.checks)
	if len(selected) == 0 {
		return nil, usageError(fmt.Errorf("no checks match %q", settings.checks))
	}

	var out io.Writer = cmd.OutOrStdout()
	if settings.outputFile != "" {
		f, err := os.Create(settings.outputFile)
		if err != nil {
			return nil, fmt.Errorf("cannot create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	formatter, err := output.New(settings.output, output.Options{
		Writer:  out,
		Verbose: settings.verbose > 0,
		NoColor: settings.noColor || settings.outputFile != "",
	})
	if err != nil {
		return nil, usageError(err)
	}
	formatter.FormatHeader(version)

	r := runner.NewRunner(&runner.Config{
		BaseURL:        settings.baseURL,
		Timeout:        settings.timeout,
		FollowRedirect: true,
		ValidateSSL:    settings.validateSSL,
		Proxy:          settings.proxy,
		DefaultHeaders: settings.headers,
		RateLimit:      settings.rateLimit,
		Logger:         logger,
	})

	result := r.Run(ctx, selected)
	formatter.FormatResult(result)

	if flushable, ok := formatter.(output.Flushable); ok {
		if err := flushable.Flush(result.Duration); err != nil {
			return nil, fmt.Errorf("error writing output: %w", err)
		}
	}

	if settings.metricsFile != "" {
		if err := metrics.WriteFile(settings.metricsFile, result); err != nil {
			logger.Warn("metrics not written", "path", settings.metricsFile, "error", err)
		}
	}

	logger.Debug("run complete",
		slog.String("id", result.ID),
		slog.Int("passed", result.Passed),
		slog.Int("failed", result.Failed),
		slog.Duration("duration", result.Duration),
	)
	return result, nil
}

// watch re-runs the checks whenever the config file changes, until ctx is
// canceled.
func watch(ctx context.Context, cmd *cobra.Command, settings *runSettings) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	targets := watchTargets(settings.configPath)
	dirs := make(map[string]bool)
	for _, t := range targets {
		dirs[filepath.Dir(t)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")
	report := errorReporter(cmd, settings.noColor)

	var debounce <-chan time.Time
	var changed string
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) && isWatched(event.Name, targets) {
				changed = event.Name
				debounce = time.After(WatchDebounceDelay)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			report.FormatError(fmt.Errorf("watcher: %w", err))

		case <-debounce:
			debounce = nil
			fmt.Fprintf(cmd.OutOrStdout(), "\n\nFile changed: %s\nRe-running checks...\n\n", changed)

			next, err := loadRunSettings(cmd)
			if err != nil {
				report.FormatError(err)
			} else {
				settings = next
				report = errorReporter(cmd, settings.noColor)
				if _, err := runOnce(ctx, cmd, settings); err != nil {
					report.FormatError(err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")
		}
	}
}

// errorReporter prints errors that do not end a watch session.
func errorReporter(cmd *cobra.Command, noColor bool) *output.ConsoleFormatter {
	return output.NewConsoleFormatter(
		output.WithWriter(cmd.ErrOrStderr()),
		output.WithNoColor(noColor),
	)
}

// watchTargets lists the files whose changes trigger a re-run. Without an
// explicit config file, every default config name in the working directory
// is watched so a newly created one is picked up.
func watchTargets(configPath string) []string {
	var targets []string
	if configPath != "" {
		targets = append(targets, configPath)
	} else {
		targets = append(targets, config.ConfigFilenames...)
	}

	for i, t := range targets {
		if abs, err := filepath.Abs(t); err == nil {
			targets[i] = abs
		}
	}
	return targets
}

func isWatched(name string, targets []string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		abs = name
	}
	for _, t := range targets {
		if t == abs {
			return true
		}
	}
	return false
}
