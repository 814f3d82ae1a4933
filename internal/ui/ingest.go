package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/talentsift/talentsift/internal/ingest"
)

// IngestRenderer prints an ingestion run summary.
type IngestRenderer struct {
	out    io.Writer
	styles Styles
}

// NewIngestRenderer creates an ingestion summary renderer.
func NewIngestRenderer(cfg Config) *IngestRenderer {
	return &IngestRenderer{out: cfg.Output, styles: cfg.styles()}
}

// Render displays ingestion statistics.
func (r *IngestRenderer) Render(stats *ingest.Stats) {
	header := fmt.Sprintf("Ingested %d resumes, %d chunks in %s",
		stats.ResumesProcessed, stats.ChunksCreated,
		stats.Elapsed.Round(100*time.Millisecond))
	_, _ = fmt.Fprintln(r.out, r.styles.Header.Render(header))
	_, _ = fmt.Fprintf(r.out, "  %s %d\n", r.styles.Label.Render("Skills extracted:"), stats.SkillsExtracted)
	if stats.Errors > 0 {
		_, _ = fmt.Fprintf(r.out, "  %s %d resumes skipped\n",
			r.styles.Warning.Render("Errors:"), stats.Errors)
	}
}
