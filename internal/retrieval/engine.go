package retrieval

import (
	"log/slog"

	"codeopt/internal/domain"
)

// DefaultTopK is the number of nearest records fetched per query.
const DefaultTopK = 3

// Engine answers free-text queries with the nearest stored records. Failures
// anywhere in the lookup degrade to an empty result set: the caller gets a
// prompt with no context rather than an error.
type Engine struct {
	embedder domain.Embedder
	store    domain.VectorStore
	topK     int
	log      *slog.Logger
}

func NewEngine(embedder domain.Embedder, store domain.VectorStore, topK int, log *slog.Logger) *Engine {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{embedder: embedder, store: store, topK: topK, log: log}
}

// Retrieve embeds the query and returns up to topK records, nearest first.
// An empty slice, never an error, signals "no usable context".
func (e *Engine) Retrieve(query string) []domain.RetrievedRecord {
	vec, err := e.embedder.Embed(query)
	if err != nil {
		e.log.Error("failed to embed query", slog.Any("error", err))
		return nil
	}
	results, err := e.store.Search(vec, e.topK)
	if err != nil {
		e.log.Error("vector search failed", slog.Any("error", err))
		return nil
	}
	return results
}
