package cmd

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talentsift/talentsift/internal/logging"
	"github.com/talentsift/talentsift/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Run the HTTP API server.

Endpoints:
  POST /search          classic skill search
  POST /shortlist       agentic shortlist, streamed as SSE
  POST /shortlist/sync  agentic shortlist, single JSON response
  GET  /resume/{id}     redacted resume profile
  GET  /skills          known canonical skills
  GET  /healthz         component health`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}

func runServe(cmd *cobra.Command, addr string) error {
	// Servers log to stderr as well as the rotated file.
	logCfg := logging.DefaultConfig()
	if debugMode {
		logCfg = logging.DebugConfig()
	}
	if cleanup, err := logging.SetupDefault(logCfg); err == nil {
		defer cleanup()
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	serverCfg := a.cfg.Server
	if addr != "" {
		serverCfg.Addr = addr
	}

	components := server.Components{Embedder: a.cfg.Embeddings.Provider}
	if rerankEnabled(a.cfg) {
		components.Reranker = "http"
	}

	var opts []server.Option
	if a.bleve != nil {
		opts = append(opts, server.WithIndexer(a.bleve))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(serverCfg, a.store, a.engine, a.pipeline(), components, slog.Default(), opts...)
	return srv.Start(ctx)
}
