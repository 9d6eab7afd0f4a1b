package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/parleyhq/parley/internal/completion"
	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/logging"
	"github.com/parleyhq/parley/internal/negotiation"
	"github.com/parleyhq/parley/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the negotiation HTTP server",
	Long: `Start the HTTP server that hosts negotiation sessions: session
creation, operator input, typing signals, and the SSE event stream
consumed by the web frontend.

The server shuts down gracefully on SIGINT/SIGTERM, stopping every
running session first.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	logger, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer logger.Close()

	client := completion.NewHTTPClient(cfg.Completion)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(negotiation.NewRegistry(), client, cfg, logger)
	return srv.Start(ctx)
}
