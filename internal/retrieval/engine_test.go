package retrieval

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeopt/internal/domain"
	"codeopt/internal/vectorstore"
	"codeopt/internal/vectorstore/memory"
)

type fixedEmbedder struct {
	vec []float64
	err error
}

func (e *fixedEmbedder) Name() string                  { return "fixed" }
func (e *fixedEmbedder) Prepare(corpus []string) error { return nil }
func (e *fixedEmbedder) Dimension() int                { return len(e.vec) }
func (e *fixedEmbedder) Embed(text string) ([]float64, error) {
	return e.vec, e.err
}

type failingStore struct{ domain.VectorStore }

func (f *failingStore) Search(vector []float64, topK int) ([]domain.RetrievedRecord, error) {
	return nil, errors.New("index offline")
}

func TestRetrieveTopK(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Init(2))
	require.NoError(t, store.Upsert([]domain.Point{
		{ID: "a", Vector: []float64{1, 0}, Document: "a", Metadata: map[string]string{vectorstore.MetaRecommendation: "ra"}},
		{ID: "b", Vector: []float64{0.9, 0.1}, Document: "b", Metadata: map[string]string{vectorstore.MetaRecommendation: "rb"}},
		{ID: "c", Vector: []float64{0, 1}, Document: "c", Metadata: map[string]string{vectorstore.MetaRecommendation: "rc"}},
		{ID: "d", Vector: []float64{0.5, 0.5}, Document: "d", Metadata: map[string]string{vectorstore.MetaRecommendation: "rd"}},
	}))

	e := NewEngine(&fixedEmbedder{vec: []float64{1, 0}}, store, 3, nil)
	res := e.Retrieve("query")

	require.Len(t, res, 3)
	assert.Equal(t, "a", res[0].Observation)
}

func TestRetrieveEmptyIndex(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Init(2))

	e := NewEngine(&fixedEmbedder{vec: []float64{1, 0}}, store, 3, nil)
	assert.Empty(t, e.Retrieve("query"))
}

func TestRetrieveEmbedderFailure(t *testing.T) {
	e := NewEngine(&fixedEmbedder{err: errors.New("model offline")}, memory.NewStore(), 3, nil)
	assert.Empty(t, e.Retrieve("query"))
}

func TestRetrieveStoreFailure(t *testing.T) {
	e := NewEngine(&fixedEmbedder{vec: []float64{1, 0}}, &failingStore{}, 3, nil)
	assert.Empty(t, e.Retrieve("query"))
}
