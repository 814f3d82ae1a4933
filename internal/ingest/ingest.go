// Package ingest loads resume documents into the store: it separates
// PII, extracts the skill ledger, generates sanitized chunks, embeds
// them, and writes each resume atomically.
package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/talentsift/talentsift/internal/embed"
	sifterr "github.com/talentsift/talentsift/internal/errors"
	"github.com/talentsift/talentsift/internal/skill"
	"github.com/talentsift/talentsift/internal/store"
)

const embedBatchSize = 64

// ChunkIndexer receives chunks after they are stored, for backends
// that keep a separate lexical index. *store.BleveChunkIndex satisfies
// it.
type ChunkIndexer interface {
	IndexChunks(chunks []store.Chunk) error
	DeleteResume(ctx context.Context, resumeID string) error
}

// Stats summarizes one ingestion run.
type Stats struct {
	ResumesProcessed int           `json:"resumesProcessed"`
	ChunksCreated    int           `json:"chunksCreated"`
	SkillsExtracted  int           `json:"skillsExtracted"`
	Errors           int           `json:"errors"`
	Elapsed          time.Duration `json:"-"`
}

// Ingestor runs the ingestion pipeline. A cross-process file lock
// serializes runs against the same data directory.
type Ingestor struct {
	store    *store.SQLiteStore
	embedder embed.Embedder
	indexer  ChunkIndexer
	logger   *slog.Logger
	lockPath string
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithIndexer attaches a lexical chunk indexer.
func WithIndexer(idx ChunkIndexer) Option {
	return func(i *Ingestor) { i.indexer = idx }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Ingestor) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithLockPath overrides the ingest lock file location.
func WithLockPath(path string) Option {
	return func(i *Ingestor) { i.lockPath = path }
}

// NewIngestor creates an ingestor writing to s, embedding with e.
func NewIngestor(s *store.SQLiteStore, e embed.Embedder, opts ...Option) *Ingestor {
	i := &Ingestor{
		store:    s,
		embedder: e,
		logger:   slog.Default(),
		lockPath: filepath.Join(os.TempDir(), "talentsift-ingest.lock"),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Run ingests the resumes in path. limit > 0 caps the number of
// resumes processed. A second concurrent run against the same lock
// path fails fast with an ingest-locked error.
func (i *Ingestor) Run(ctx context.Context, path string, limit int) (*Stats, error) {
	lock := flock.New(i.lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, sifterr.New(sifterr.ErrCodeInternal, "acquiring ingest lock", err)
	}
	if !locked {
		return nil, sifterr.New(sifterr.ErrCodeIngestLocked, "another ingestion is already running", nil)
	}
	defer lock.Unlock()

	start := time.Now()
	resumes, err := ReadResumes(path)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(resumes) > limit {
		resumes = resumes[:limit]
	}
	i.logger.Info("ingest_started",
		slog.String("input", path),
		slog.Int("resumes", len(resumes)))

	stats := &Stats{}
	for idx := range resumes {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := i.ingestOne(ctx, &resumes[idx], idx, stats); err != nil {
			stats.Errors++
			i.logger.Error("resume_ingest_failed",
				slog.Int("index", idx),
				slog.String("error", err.Error()))
		}
	}

	stats.Elapsed = time.Since(start)
	i.logger.Info("ingest_complete",
		slog.Int("resumes", stats.ResumesProcessed),
		slog.Int("chunks", stats.ChunksCreated),
		slog.Int("skills", stats.SkillsExtracted),
		slog.Int("errors", stats.Errors),
		slog.Duration("elapsed", stats.Elapsed))
	return stats, nil
}

// ingestOne processes a single resume: the store write is one
// transaction, so readers see the resume fully or not at all.
func (i *Ingestor) ingestOne(ctx context.Context, raw *RawResume, idx int, stats *Stats) error {
	resumeID := raw.ResumeID(idx)
	redactor := NewRedactor(raw)

	core := raw.Core(resumeID, redactor)
	ledger := skill.ExtractLedger(core)
	chunks := GenerateChunks(core, redactor)

	if err := i.embedChunks(ctx, chunks); err != nil {
		return err
	}

	if err := i.store.UpsertResume(ctx, core, raw.PII(), ledger, chunks); err != nil {
		return err
	}

	if i.indexer != nil {
		if err := i.indexer.DeleteResume(ctx, resumeID); err != nil {
			return err
		}
		if err := i.indexer.IndexChunks(chunks); err != nil {
			return err
		}
	}

	stats.ResumesProcessed++
	stats.ChunksCreated += len(chunks)
	stats.SkillsExtracted += len(ledger)
	return nil
}

// embedChunks fills chunk embeddings in batches. A nil embedder skips
// embedding entirely; the resume remains lexically searchable.
func (i *Ingestor) embedChunks(ctx context.Context, chunks []store.Chunk) error {
	if i.embedder == nil || len(chunks) == 0 {
		return nil
	}
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, end-start)
		for j := start; j < end; j++ {
			texts[j-start] = chunks[j].ChunkText
		}
		vectors, err := i.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return err
		}
		for j, vec := range vectors {
			chunks[start+j].Embedding = vec
		}
	}
	return nil
}

// Delete removes one resume from the store and the lexical index.
func (i *Ingestor) Delete(ctx context.Context, resumeID string) error {
	if err := i.store.DeleteResume(ctx, resumeID); err != nil {
		return err
	}
	if i.indexer != nil {
		return i.indexer.DeleteResume(ctx, resumeID)
	}
	return nil
}
