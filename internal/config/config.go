// Package config loads TalentSift configuration from YAML with environment
// variable overrides. Precedence, lowest to highest:
//
//  1. Built-in defaults
//  2. Config file (.talentsift.yaml in the working directory, or
//     ~/.config/talentsift/config.yaml)
//  3. Environment variables (EMBEDDING_MODEL_DIM, K_DENSE, ...)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete TalentSift configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store"`
	Search     SearchConfig     `yaml:"search"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Rerank     RerankConfig     `yaml:"rerank"`
	Intent     IntentConfig     `yaml:"intent"`
	Agent      AgentConfig      `yaml:"agent"`
	Server     ServerConfig     `yaml:"server"`
	Sessions   SessionsConfig   `yaml:"sessions"`
	LogLevel   string           `yaml:"log_level"`
}

// StoreConfig configures the SQLite resume store.
type StoreConfig struct {
	// Path is the SQLite database file. Empty means in-memory (tests).
	Path string `yaml:"path"`
	// CacheMB is the SQLite page cache size in MB (default: 64).
	CacheMB int `yaml:"cache_mb"`
}

// SearchConfig configures retrieval and fusion.
type SearchConfig struct {
	// LexicalBackend selects the lexical retriever backend.
	// Options: "termfreq" (default, per-term occurrence counting) or
	// "bleve" (BM25-scored index).
	LexicalBackend string `yaml:"lexical_backend"`

	// BleveIndexPath is the on-disk Bleve index location.
	// Only used when LexicalBackend is "bleve".
	BleveIndexPath string `yaml:"bleve_index_path"`

	// RRFConstant is the RRF fusion smoothing parameter k (default: 60).
	RRFConstant int `yaml:"rrf_constant"`

	// KDense and KSparse cap the dense and lexical retrieval lists.
	KDense  int `yaml:"k_dense"`
	KSparse int `yaml:"k_sparse"`

	// KPool caps the number of gated candidates carried into retrieval.
	KPool int `yaml:"k_pool"`

	// DefaultLimit and MaxLimit bound classic search results.
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`

	// RetrieverTimeout is the soft timeout per retrieval leg.
	RetrieverTimeout time.Duration `yaml:"retriever_timeout"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	// Endpoint is the embedding service base URL (POST {endpoint}/embed).
	Endpoint string `yaml:"endpoint"`
	// Dimensions is the embedding dimension, fixed per deployment.
	Dimensions int `yaml:"dimensions"`
	// BatchSize is the batch size for ingest-time embedding.
	BatchSize int `yaml:"batch_size"`
	// Timeout is the per-request timeout.
	Timeout time.Duration `yaml:"timeout"`
	// CacheSize is the query-embedding LRU cache capacity.
	CacheSize int `yaml:"cache_size"`
	// Provider selects the embedder: "http" (default) or "static"
	// (deterministic hash embedder, offline/testing).
	Provider string `yaml:"provider"`
}

// RerankConfig configures the cross-encoder reranker.
type RerankConfig struct {
	// Endpoint is the rerank service base URL (POST {endpoint}/rerank).
	Endpoint string `yaml:"endpoint"`
	// Timeout is the per-request timeout (default: 5s).
	Timeout time.Duration `yaml:"timeout"`
	// Enabled wires the cross-encoder reranker. Without it the engine
	// keeps fused order and the agentic pipeline skips its rerank step.
	Enabled bool `yaml:"enabled"`
	// PoolSize is the rerank candidate pool cap (default: 100).
	PoolSize int `yaml:"pool_size"`
}

// IntentConfig configures the intent-extraction LLM.
type IntentConfig struct {
	// APIKey is the OpenAI API key (env OPENAI_API_KEY).
	APIKey string `yaml:"api_key"`
	// Model is the chat model used for MissionSpec extraction.
	Model string `yaml:"model"`
	// BaseURL overrides the OpenAI endpoint (for compatible gateways).
	BaseURL string `yaml:"base_url"`
	// Timeout is the per-call timeout.
	Timeout time.Duration `yaml:"timeout"`
}

// AgentConfig configures the agentic shortlist pipeline.
type AgentConfig struct {
	// MinRelevanceScore is the floor below which a candidate does not
	// count toward a strong match (default: 20).
	MinRelevanceScore float64 `yaml:"min_relevance_score"`
	// MinStrongCandidates is how many candidates must clear the floor
	// before the weak-match fallback is skipped (default: 3).
	MinStrongCandidates int `yaml:"min_strong_candidates"`
	// MaxResults caps the agentic shortlist (default: 25).
	MaxResults int `yaml:"max_results"`
	// QueryTimeout is the hard per-query deadline (default: 20s).
	QueryTimeout time.Duration `yaml:"query_timeout"`
	// EventBuffer is the emission channel depth (default: 64).
	EventBuffer int `yaml:"event_buffer"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// SessionsConfig configures saved search sessions.
type SessionsConfig struct {
	// StoragePath is the directory where sessions are stored.
	// Defaults to ~/.talentsift/sessions.
	StoragePath string `yaml:"storage_path"`
	// MaxSessions is the maximum number of sessions allowed (default: 50).
	MaxSessions int `yaml:"max_sessions"`
}

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Path:    defaultDataPath("talentsift.db"),
			CacheMB: 64,
		},
		Search: SearchConfig{
			LexicalBackend:   "termfreq",
			RRFConstant:      60,
			KDense:           300,
			KSparse:          300,
			KPool:            500,
			DefaultLimit:     50,
			MaxLimit:         100,
			RetrieverTimeout: 2 * time.Second,
		},
		Embeddings: EmbeddingsConfig{
			Endpoint:  "http://localhost:8000",
			BatchSize: 64,
			Timeout:   10 * time.Second,
			CacheSize: 1000,
			Provider:  "http",
		},
		Rerank: RerankConfig{
			Endpoint: "http://localhost:8000",
			Timeout:  5 * time.Second,
			PoolSize: 100,
		},
		Intent: IntentConfig{
			Model:   "gpt-4o-mini",
			Timeout: 15 * time.Second,
		},
		Agent: AgentConfig{
			MinRelevanceScore:   20,
			MinStrongCandidates: 3,
			MaxResults:          25,
			QueryTimeout:        20 * time.Second,
			EventBuffer:         64,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Sessions: SessionsConfig{
			StoragePath: defaultDataPath("sessions"),
			MaxSessions: 50,
		},
		LogLevel: "info",
	}
}

// Load reads configuration from the given path (or the default search
// locations when path is empty), then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, found, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	if found {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Search.RRFConstant <= 0 {
		return fmt.Errorf("search.rrf_constant must be positive, got %d", c.Search.RRFConstant)
	}
	if c.Search.KDense <= 0 || c.Search.KSparse <= 0 {
		return fmt.Errorf("search.k_dense and search.k_sparse must be positive")
	}
	if c.Embeddings.Dimensions < 0 {
		return fmt.Errorf("embeddings.dimensions must be non-negative, got %d", c.Embeddings.Dimensions)
	}
	switch c.Search.LexicalBackend {
	case "", "termfreq", "bleve":
	default:
		return fmt.Errorf("search.lexical_backend must be termfreq or bleve, got %q", c.Search.LexicalBackend)
	}
	return nil
}

// applyEnv applies environment variable overrides on top of file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("EMBEDDING_MODEL_DIM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Embeddings.Dimensions = n
		}
	}
	if v := os.Getenv("EMBED_MODEL_ENDPOINT"); v != "" {
		c.Embeddings.Endpoint = v
	}
	if v := os.Getenv("RERANK_MODEL_ENDPOINT"); v != "" {
		c.Rerank.Endpoint = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Intent.APIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.Intent.Model = v
	}
	if v := os.Getenv("K_DENSE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.KDense = n
		}
	}
	if v := os.Getenv("K_SPARSE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.KSparse = n
		}
	}
	if v := os.Getenv("RRF_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.RRFConstant = n
		}
	}
	if v := os.Getenv("MIN_RELEVANCE_SCORE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Agent.MinRelevanceScore = f
		}
	}
	if v := os.Getenv("RETRIEVER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Search.RetrieverTimeout = d
		}
	}
	if v := os.Getenv("RERANK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Rerank.Timeout = d
		}
	}
	if v := os.Getenv("AGENT_QUERY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Agent.QueryTimeout = d
		}
	}
}

// readConfigFile locates and reads the config file.
// Returns found=false when no file exists, which is not an error.
func readConfigFile(path string) (data []byte, found bool, err error) {
	candidates := []string{path}
	if path == "" {
		candidates = []string{".talentsift.yaml"}
		if home, herr := os.UserHomeDir(); herr == nil {
			candidates = append(candidates, filepath.Join(home, ".config", "talentsift", "config.yaml"))
		}
	}

	for _, p := range candidates {
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if err == nil {
			return data, true, nil
		}
		if !os.IsNotExist(err) {
			return nil, false, fmt.Errorf("read config %s: %w", p, err)
		}
		if path != "" {
			// Explicit path that does not exist is an error.
			return nil, false, fmt.Errorf("config file not found: %s", p)
		}
	}
	return nil, false, nil
}

// defaultDataPath returns a path under ~/.talentsift.
func defaultDataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".talentsift", name)
	}
	return filepath.Join(home, ".talentsift", name)
}
