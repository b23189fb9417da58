package cmd

import (
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/echocheck/packages/core/config"
	"github.com/abdul-hamid-achik/echocheck/packages/core/env"
	"github.com/abdul-hamid-achik/echocheck/packages/http"
	"github.com/abdul-hamid-achik/echocheck/packages/output"
	"github.com/abdul-hamid-achik/echocheck/packages/probe"
	"github.com/spf13/cobra"
)

var (
	probeTimeoutFlag string
	probeConfigFlag  string
	probeNoColorFlag bool
	probeVerboseFlag int
)

var probeCmd = &cobra.Command{
	Use:   "probe [URL...]",
	Short: "Check that the test services are reachable",
	Long: `Send one GET request to each URL and print the status code and the start
of the body. Nothing is asserted; an unreachable URL is reported and the
remaining URLs are still probed.

Without arguments the URLs come from the config file, or default to:
  https://reqres.in/api/users/2
  https://reqres.in/
  http://httpbin.org/get

Examples:
  echocheck probe
  echocheck probe http://localhost:8080/get --timeout 2s`,
	RunE: probeCommand,
}

func init() {
	probeCmd.Flags().StringVar(&probeTimeoutFlag, "timeout", "", "Timeout per request (default 10s) (env: ECHOCHECK_PROBE_TIMEOUT)")
	probeCmd.Flags().StringVar(&probeConfigFlag, "config", env.String("config", ""), "Path to config file (env: ECHOCHECK_CONFIG)")
	probeCmd.Flags().BoolVar(&probeNoColorFlag, "no-color", env.Bool("no-color", false), "Disable colored output (env: ECHOCHECK_NO_COLOR)")
	probeCmd.Flags().CountVarP(&probeVerboseFlag, "verbose", "v", "Debug logging")
}

func probeCommand(cmd *cobra.Command, args []string) error {
	configPath := probeConfigFlag
	if configPath == "" {
		configPath = config.FindConfigFile(".")
	}
	cfg, err := loadLayeredConfig(configPath)
	if err != nil {
		return err
	}

	urls := args
	if len(urls) == 0 {
		urls = cfg.ProbeURLs
	}
	if len(urls) == 0 {
		urls = config.DefaultProbeURLs
	}

	timeout := cfg.ProbeTimeoutDuration()
	if probeTimeoutFlag != "" {
		timeout, err = time.ParseDuration(probeTimeoutFlag)
		if err != nil {
			return usageError(fmt.Errorf("invalid timeout value %q: %w", probeTimeoutFlag, err))
		}
	}

	noColor := probeNoColorFlag || cfg.GetNoColor()
	logger := newLogger(cmd.ErrOrStderr(), probeVerboseFlag, noColor)

	client := http.NewClient(
		http.WithTimeout(timeout),
		http.WithValidateSSL(cfg.GetValidateSSL()),
		http.WithProxy(cfg.Proxy),
	)

	results := probe.Run(cmd.Context(), client, urls, probe.Options{
		Timeout: timeout,
		Headers: cfg.Headers,
		Logger:  logger,
	})

	output.NewConsoleFormatter(
		output.WithWriter(cmd.OutOrStdout()),
		output.WithNoColor(noColor),
	).FormatProbe(results)
	return nil
}
