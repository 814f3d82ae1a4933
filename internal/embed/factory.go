package embed

import (
	"fmt"

	"github.com/talentsift/talentsift/internal/config"
)

// New builds the embedder stack from configuration:
// provider -> retry -> cache.
func New(cfg config.EmbeddingsConfig) (Embedder, error) {
	var base Embedder
	switch cfg.Provider {
	case "", "http":
		base = NewHTTPEmbedder(cfg.Endpoint,
			WithTimeout(cfg.Timeout),
			WithDimensions(cfg.Dimensions))
	case "static":
		base = NewStaticEmbedder(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	retrying := NewRetryingEmbedder(base, 3, 0)
	return NewCachedEmbedder(retrying, cfg.CacheSize)
}
