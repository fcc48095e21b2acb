package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeopt/internal/config"
)

func defaults(t *testing.T) *config.AppConfig {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	return cfg
}

func TestBuildPipelineDefaults(t *testing.T) {
	p, err := BuildPipeline(defaults(t), nil)
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestBuildPipelineUnknownEmbedder(t *testing.T) {
	cfg := defaults(t)
	cfg.Embedder.Type = "word2vec"
	_, err := BuildPipeline(cfg, nil)
	assert.Error(t, err)
}

func TestBuildPipelineUnknownStore(t *testing.T) {
	cfg := defaults(t)
	cfg.VectorStore.Type = "pinecone"
	_, err := BuildPipeline(cfg, nil)
	assert.Error(t, err)
}

func TestBuildPipelineQdrantRequiresConfig(t *testing.T) {
	cfg := defaults(t)
	cfg.VectorStore.Type = "qdrant"
	_, err := BuildPipeline(cfg, nil)
	assert.Error(t, err)
}
