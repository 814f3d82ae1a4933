package ingest

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	sifterr "github.com/talentsift/talentsift/internal/errors"
)

// Watcher re-ingests an input file whenever it changes. Rapid write
// bursts (editors, rsync) are coalesced within a debounce window so a
// save triggers one run, not one per syscall.
type Watcher struct {
	ingestor *Ingestor
	path     string
	debounce time.Duration
	logger   *slog.Logger
}

// NewWatcher creates a watcher over the given input file.
func NewWatcher(ingestor *Ingestor, path string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		ingestor: ingestor,
		path:     path,
		debounce: debounce,
		logger:   ingestor.logger,
	}
}

// Watch blocks until ctx is cancelled, re-running ingestion after each
// settled change to the input file. The parent directory is watched so
// atomic replace-by-rename is seen as well.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return sifterr.New(sifterr.ErrCodeInternal, "creating file watcher", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return sifterr.New(sifterr.ErrCodeFileNotFound, "watching "+dir, err)
	}
	w.logger.Info("watch_started", slog.String("path", w.path))

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch_error", slog.String("error", err.Error()))

		case <-timerC:
			timer = nil
			timerC = nil
			stats, err := w.ingestor.Run(ctx, w.path, 0)
			if err != nil {
				w.logger.Error("watch_ingest_failed", slog.String("error", err.Error()))
				continue
			}
			w.logger.Info("watch_ingest_complete",
				slog.Int("resumes", stats.ResumesProcessed),
				slog.Int("errors", stats.Errors))
		}
	}
}
