package tfidf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedderLifecycle(t *testing.T) {
	e := NewEmbedder()

	_, err := e.Embed("anything")
	require.Error(t, err, "embed before prepare must fail")

	corpus := []string{
		"N+1 query pattern against user table",
		"unbounded thread pool creation",
		"string concatenation inside loop",
	}
	require.NoError(t, e.Prepare(corpus))
	assert.Greater(t, e.Dimension(), 0)

	vec, err := e.Embed(corpus[0])
	require.NoError(t, err)
	require.Len(t, vec, e.Dimension())

	// L2 normalized.
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	assert.InDelta(t, 1.0, norm, 1e-9)
}

func TestEmbedUnknownTokensIsZeroVector(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{"slow database query"}))

	vec, err := e.Embed("完全不同")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestPrepareEmptyCorpus(t *testing.T) {
	e := NewEmbedder()
	assert.Error(t, e.Prepare(nil))
}

func TestSimilarTextScoresCloser(t *testing.T) {
	e := NewEmbedder()
	corpus := []string{
		"N+1 query pattern fetching rows one by one",
		"excessive logging inside tight loop",
	}
	require.NoError(t, e.Prepare(corpus))

	q, err := e.Embed("query fetching rows one by one")
	require.NoError(t, err)
	a, err := e.Embed(corpus[0])
	require.NoError(t, err)
	b, err := e.Embed(corpus[1])
	require.NoError(t, err)

	assert.Greater(t, dot(q, a), dot(q, b))
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
