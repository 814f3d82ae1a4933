package cmd

import (
	"log/slog"

	"github.com/talentsift/talentsift/internal/agent"
	"github.com/talentsift/talentsift/internal/config"
	"github.com/talentsift/talentsift/internal/embed"
	"github.com/talentsift/talentsift/internal/rerank"
	"github.com/talentsift/talentsift/internal/search"
	"github.com/talentsift/talentsift/internal/session"
	"github.com/talentsift/talentsift/internal/store"
)

// app wires the configured component stack once per command invocation.
type app struct {
	cfg      *config.Config
	store    *store.SQLiteStore
	embedder embed.Embedder
	engine   *search.Engine
	bleve    *store.BleveChunkIndex
}

// openApp loads configuration and builds the store, embedder, and
// engine. Callers must Close it.
func openApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	st, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return nil, err
	}

	embedder, err := embed.New(cfg.Embeddings)
	if err != nil {
		st.Close()
		return nil, err
	}

	a := &app{cfg: cfg, store: st, embedder: embedder}

	opts := []search.Option{
		search.WithDense(search.NewDenseRetriever(embedder, st)),
		search.WithRRFConstant(cfg.Search.RRFConstant),
		search.WithRetrievalCaps(cfg.Search.KDense, cfg.Search.KSparse, cfg.Search.KPool),
		search.WithLimits(cfg.Search.DefaultLimit, cfg.Search.MaxLimit),
		search.WithRetrieverTimeout(cfg.Search.RetrieverTimeout),
		search.WithRerankTimeout(cfg.Rerank.Timeout),
		search.WithRerankPool(cfg.Rerank.PoolSize),
	}
	if cfg.Search.LexicalBackend == "bleve" {
		idx, err := store.NewBleveChunkIndex(cfg.Search.BleveIndexPath)
		if err != nil {
			st.Close()
			return nil, err
		}
		a.bleve = idx
		opts = append(opts, search.WithLexical(search.NewBleveRetriever(idx)))
	}
	if rerankEnabled(cfg) {
		opts = append(opts, search.WithReranker(
			rerank.NewHTTPReranker(cfg.Rerank.Endpoint, rerank.WithTimeout(cfg.Rerank.Timeout))))
	}

	a.engine = search.NewEngine(st, opts...)
	return a, nil
}

// rerankEnabled reports whether the cross-encoder reranker should be
// wired: the flag must be set and an endpoint configured.
func rerankEnabled(cfg *config.Config) bool {
	return cfg.Rerank.Enabled && cfg.Rerank.Endpoint != ""
}

// Close releases the app's resources.
func (a *app) Close() {
	if a.bleve != nil {
		_ = a.bleve.Close()
	}
	_ = a.store.Close()
}

// pipeline builds the agentic shortlist pipeline. Intent extraction
// uses the configured LLM when an API key is present and falls back to
// keyword parsing otherwise.
func (a *app) pipeline() *agent.Pipeline {
	var extractor agent.Extractor = agent.HeuristicExtractor{}
	if a.cfg.Intent.APIKey != "" {
		extractor = agent.NewOpenAIExtractor(a.cfg.Intent)
	} else {
		slog.Info("intent extraction disabled, using keyword parsing",
			"reason", "no OPENAI_API_KEY configured")
	}
	return agent.NewPipeline(a.store, a.engine, extractor, a.cfg.Agent, slog.Default())
}

// sessions builds the saved-search manager.
func (a *app) sessions() (*session.Manager, error) {
	return session.NewManager(session.ManagerConfig{
		StoragePath: a.cfg.Sessions.StoragePath,
		MaxSearches: a.cfg.Sessions.MaxSessions,
	})
}
