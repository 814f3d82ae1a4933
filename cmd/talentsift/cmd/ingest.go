package cmd

import (
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/talentsift/talentsift/internal/ingest"
	"github.com/talentsift/talentsift/internal/ui"
)

func newIngestCmd() *cobra.Command {
	var (
		limit    int
		watch    bool
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "ingest <resumes.jsonl>",
		Short: "Ingest a master resume file into the search corpus",
		Long: `Ingest a master resume file into the search corpus.

The input is JSONL (one resume per line) or a JSON array. Each resume
is redacted, chunked by section, embedded, and written to the store in
a single transaction. Re-ingesting the same file is idempotent.

With --watch, the command keeps running and re-ingests whenever the
file changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args[0], limit, watch, debounce)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Ingest at most N resumes (0 = all)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep watching the file and re-ingest on change")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Delay before re-ingesting after a change (with --watch)")
	return cmd
}

func runIngest(cmd *cobra.Command, path string, limit int, watch bool, debounce time.Duration) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	opts := []ingest.Option{ingest.WithLogger(slog.Default())}
	if a.bleve != nil {
		opts = append(opts, ingest.WithIndexer(a.bleve))
	}
	ingestor := ingest.NewIngestor(a.store, a.embedder, opts...)

	stats, err := ingestor.Run(cmd.Context(), path, limit)
	if err != nil {
		return err
	}

	renderer := ui.NewIngestRenderer(ui.NewConfig(cmd.OutOrStdout(),
		ui.WithForcePlain(plainMode), ui.WithNoColor(noColor)))
	renderer.Render(stats)

	if !watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("watching for changes", "path", path)
	return ingest.NewWatcher(ingestor, path, debounce).Watch(ctx)
}
