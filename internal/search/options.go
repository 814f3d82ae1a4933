package search

import (
	"log/slog"
	"time"

	"github.com/talentsift/talentsift/internal/config"
	"github.com/talentsift/talentsift/internal/rerank"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLexical replaces the lexical retriever.
func WithLexical(r Retriever) Option {
	return func(e *Engine) {
		e.lexical = r
	}
}

// WithDense sets the dense retriever.
func WithDense(r Retriever) Option {
	return func(e *Engine) {
		e.dense = r
	}
}

// WithReranker sets the cross-encoder reranker.
func WithReranker(r rerank.Reranker) Option {
	return func(e *Engine) {
		e.reranker = r
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRRFConstant sets the RRF smoothing parameter k.
func WithRRFConstant(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.rrfK = k
		}
	}
}

// WithRetrievalCaps sets the per-leg list caps and the gating pool cap.
func WithRetrievalCaps(kDense, kSparse, kPool int) Option {
	return func(e *Engine) {
		if kDense > 0 {
			e.kDense = kDense
		}
		if kSparse > 0 {
			e.kSparse = kSparse
		}
		if kPool > 0 {
			e.kPool = kPool
		}
	}
}

// WithLimits sets the default and maximum result limits.
func WithLimits(defaultLimit, maxLimit int) Option {
	return func(e *Engine) {
		if defaultLimit > 0 {
			e.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			e.maxLimit = maxLimit
		}
	}
}

// WithRetrieverTimeout sets the soft per-leg retrieval timeout.
func WithRetrieverTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.retrieverTimeout = d
		}
	}
}

// WithRerankTimeout sets the rerank call timeout.
func WithRerankTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.rerankTimeout = d
		}
	}
}

// WithRerankPool caps the rerank candidate pool.
func WithRerankPool(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.rerankPool = n
		}
	}
}

// FromConfig derives engine options from configuration.
func FromConfig(cfg *config.Config) []Option {
	return []Option{
		WithRRFConstant(cfg.Search.RRFConstant),
		WithRetrievalCaps(cfg.Search.KDense, cfg.Search.KSparse, cfg.Search.KPool),
		WithLimits(cfg.Search.DefaultLimit, cfg.Search.MaxLimit),
		WithRetrieverTimeout(cfg.Search.RetrieverTimeout),
		WithRerankTimeout(cfg.Rerank.Timeout),
		WithRerankPool(cfg.Rerank.PoolSize),
	}
}
