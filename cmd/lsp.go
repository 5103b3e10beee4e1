// Copyright © 2026 The rpmspec-ls authors

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rpmdev/rpmspec-ls/lsp"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	_ "github.com/tliron/commonlog/simple"
)

var (
	lspStdio     bool
	lspPort      int
	lspLogFile   string
	lspVerbosity int
	lspTraceFile string
)

var lspCmd = &cobra.Command{
	Use:   "lsp [flags]",
	Short: "Start the rpmspec language server",
	Long: `Start an LSP server for RPM spec files.

The server lints open spec files with rpmlint on open and save, and
publishes the findings as diagnostics. When the external RPM language
server is installed its diagnostics are merged into the same session;
when it is missing the server silently runs lint-only.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Examples:
  rpmspec-ls lsp                     Start with stdio transport
  rpmspec-ls lsp --stdio             Same as above (explicit)
  rpmspec-ls lsp --port 7998         Start with TCP on port 7998

Editor configuration (VS Code):
  Install a generic LSP client extension and configure it to run
  "rpmspec-ls lsp --stdio" for .spec files.`,
	Args: cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		logPath := &lspLogFile
		if lspLogFile == "" {
			logPath = nil
		}
		commonlog.Configure(lspVerbosity, logPath)

		if lspTraceFile != "" {
			shutdown, err := setupTracing(lspTraceFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "lsp server error: %v\n", err)
				os.Exit(1)
			}
			defer shutdown()
		}

		srv := lsp.New(lsp.WithConfig(configFromViper))

		if !lspStdio && lspPort > 0 {
			addr := fmt.Sprintf("localhost:%d", lspPort)
			if err := srv.RunTCP(addr); err != nil {
				fmt.Fprintf(os.Stderr, "lsp server error: %v\n", err)
				os.Exit(1)
			}
		} else {
			if err := srv.RunStdio(); err != nil {
				fmt.Fprintf(os.Stderr, "lsp server error: %v\n", err)
				os.Exit(1)
			}
		}
	},
}

// setupTracing installs a tracer provider that appends subprocess spans
// to the given file. The returned function flushes and closes it.
func setupTracing(path string) (func(), error) {
	f, err := os.Create(path) //nolint:gosec // trace output path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("opening trace file: %w", err)
	}
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(f),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return func() {
		_ = tp.Shutdown(context.Background())
		_ = f.Close()
	}, nil
}

func init() {
	rootCmd.AddCommand(lspCmd)

	lspCmd.Flags().BoolVar(&lspStdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	lspCmd.Flags().IntVar(&lspPort, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")
	lspCmd.Flags().StringVar(&lspLogFile, "log-file", "",
		"Write server logs to this file instead of stderr")
	lspCmd.Flags().CountVarP(&lspVerbosity, "verbose", "v",
		"Increase log verbosity (repeatable)")
	lspCmd.Flags().StringVar(&lspTraceFile, "trace-file", "",
		"Record subprocess trace spans to this file")
}
