package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/abdul-hamid-achik/echocheck/packages/core/env"
	"github.com/abdul-hamid-achik/echocheck/packages/mock"
	"github.com/spf13/cobra"
)

var (
	serveAddrFlag     string
	serveMaxDelayFlag int
	serveVerboseFlag  int
	serveNoColorFlag  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a local httpbin-compatible echo server",
	Long: `Start an HTTP server implementing the httpbin endpoints the checks use:
/get, /post, /put, /patch, /delete, /headers, /status/{code},
/basic-auth/{user}/{passwd} and /delay/{n}.

Examples:
  echocheck serve
  echocheck serve --addr :9000
  echocheck run --base-url http://localhost:8080`,
	Args: cobra.NoArgs,
	RunE: serveCommand,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddrFlag, "addr", env.String("addr", mock.DefaultAddr), "Address to listen on (env: ECHOCHECK_ADDR)")
	serveCmd.Flags().IntVar(&serveMaxDelayFlag, "max-delay", mock.DefaultMaxDelay, "Largest delay /delay/{n} honours, in seconds")
	serveCmd.Flags().CountVarP(&serveVerboseFlag, "verbose", "v", "Log every request at debug level")
	serveCmd.Flags().BoolVar(&serveNoColorFlag, "no-color", env.Bool("no-color", false), "Disable colored logs (env: ECHOCHECK_NO_COLOR)")
}

func serveCommand(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd.ErrOrStderr(), serveVerboseFlag, serveNoColorFlag)

	server := mock.NewServer(
		mock.WithAddr(serveAddrFlag),
		mock.WithMaxDelay(serveMaxDelayFlag),
		mock.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("echo server listening", "addr", server.Addr())
	if err := server.StartWithContext(ctx); err != nil {
		return &ExitError{Code: ExitNetworkError, Err: err}
	}
	logger.Info("echo server stopped")
	return nil
}
