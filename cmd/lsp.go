// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"os"

	"github.com/coimbrox/progress-4gl-formatter/lsp"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	// Register the simple commonlog backend.
	_ "github.com/tliron/commonlog/simple"
)

// LSPCommand creates the "lsp" cobra command with optional embedder
// configuration.
func LSPCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts...)

	var (
		stdio     bool
		port      int
		verbosity int
		logFile   string
	)

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Start the ablfmt Language Server Protocol server",
		Long: `Start an LSP server for Progress 4GL / OpenEdge ABL source files.

The language server formats documents on request (textDocument/formatting)
and publishes diagnostics for blocks that are never closed and END
statements without an open block. Documents are tracked when their
language id is progress, abl, OpenEdge ABL or Progress 4GL.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Logging:
  -v           Increase log verbosity (may be repeated)
  --log-file   Write the log to a file instead of stderr

Examples:
  ablfmt lsp                           Start with stdio transport
  ablfmt lsp --stdio                   Same as above (explicit)
  ablfmt lsp --port 7998 -vv           Start with TCP on port 7998

Editor configuration (VS Code):
  Install a generic LSP client extension and configure it to run
  "ablfmt lsp --stdio" for .p, .w, .i and .cls files.`,
		Args: cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			var path *string
			if logFile != "" {
				path = &logFile
			}
			commonlog.Configure(verbosity, path)

			f, err := cfg.resolveFormatter()
			if err != nil {
				fmt.Fprintf(os.Stderr, "ablfmt lsp: %v\n", err)
				os.Exit(2)
			}
			serverOpts := []lsp.Option{lsp.WithFormatter(f)}
			if cfg.tracerProvider != nil {
				serverOpts = append(serverOpts, lsp.WithTracerProvider(cfg.tracerProvider))
			}
			srv := lsp.New(serverOpts...)

			if !stdio && port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				if err := srv.RunTCP(addr); err != nil {
					fmt.Fprintf(os.Stderr, "lsp server error: %v\n", err)
					os.Exit(1)
				}
				return
			}
			if err := srv.RunStdio(); err != nil {
				fmt.Fprintf(os.Stderr, "lsp server error: %v\n", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")
	cmd.Flags().CountVarP(&verbosity, "verbose", "v",
		"Log verbosity (repeat for more detail)")
	cmd.Flags().StringVar(&logFile, "log-file", "",
		"Write the server log to this file instead of stderr")

	return cmd
}

func init() {
	rootCmd.AddCommand(LSPCommand())
}
