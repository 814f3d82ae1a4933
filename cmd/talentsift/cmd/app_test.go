package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talentsift/talentsift/internal/config"
)

func TestRerankEnabled(t *testing.T) {
	cfg := config.Default()
	assert.False(t, rerankEnabled(cfg), "off by default")

	cfg.Rerank.Enabled = true
	assert.True(t, rerankEnabled(cfg))

	cfg.Rerank.Endpoint = ""
	assert.False(t, rerankEnabled(cfg), "needs an endpoint as well as the flag")
}
