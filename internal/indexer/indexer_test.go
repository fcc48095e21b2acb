package indexer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeopt/internal/domain"
	"codeopt/internal/vectorstore/memory"
)

// unitEmbedder maps every text to a fixed-dimension vector and can be told
// to fail on specific inputs.
type unitEmbedder struct {
	failOn string
}

func (e *unitEmbedder) Name() string                { return "unit" }
func (e *unitEmbedder) Prepare(corpus []string) error { return nil }
func (e *unitEmbedder) Dimension() int              { return 2 }
func (e *unitEmbedder) Embed(text string) ([]float64, error) {
	if e.failOn != "" && strings.Contains(text, e.failOn) {
		return nil, errors.New("embedder down")
	}
	return []float64{1, 0}, nil
}

func records(obs ...string) []domain.KnowledgeRecord {
	out := make([]domain.KnowledgeRecord, len(obs))
	for i, o := range obs {
		out[i] = domain.KnowledgeRecord{Observation: o, Recommendation: "rec " + o, SourceSheet: "Perf"}
	}
	return out
}

func TestIndexRecordsStoresAll(t *testing.T) {
	store := memory.NewStore()
	ix := New(&unitEmbedder{}, store, Config{BatchSize: 2}, nil)

	res := ix.IndexRecords(records("a", "b", "c", "d", "e"))
	assert.Equal(t, Result{Input: 5, Stored: 5}, res)

	n, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestIndexRecordsPartialFailure(t *testing.T) {
	store := memory.NewStore()
	// Batch size 2: the batch containing "c" fails, the others store.
	ix := New(&unitEmbedder{failOn: "c"}, store, Config{BatchSize: 2}, nil)

	res := ix.IndexRecords(records("a", "b", "c", "d", "e"))
	assert.Equal(t, 5, res.Input)
	assert.Equal(t, 3, res.Stored)

	n, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestIndexRecordsEmptyInput(t *testing.T) {
	store := memory.NewStore()
	ix := New(&unitEmbedder{}, store, Config{}, nil)

	res := ix.IndexRecords(nil)
	assert.Equal(t, Result{}, res)
}

func TestContentIDsStableAcrossOrder(t *testing.T) {
	a := New(&unitEmbedder{}, memory.NewStore(), Config{}, nil)
	rs := records("slow loop", "chatty io")

	id0 := a.recordID(rs[0], 0)
	id1 := a.recordID(rs[1], 1)
	assert.Equal(t, id0, a.recordID(rs[0], 7), "content IDs ignore position")
	assert.NotEqual(t, id0, id1)
	assert.True(t, strings.HasPrefix(id0, "obs_"))
}

func TestPositionalIDs(t *testing.T) {
	ix := New(&unitEmbedder{}, memory.NewStore(), Config{IDScheme: IDSchemePositional}, nil)
	rs := records("slow loop")
	assert.Equal(t, "obs_0", ix.recordID(rs[0], 0))
	assert.Equal(t, "obs_3", ix.recordID(rs[0], 3))
}

func TestIndexChunks(t *testing.T) {
	store := memory.NewStore()
	ix := New(&unitEmbedder{}, store, Config{}, nil)

	res := ix.IndexChunks([]domain.Chunk{
		{Key: "spring.pool", Text: "spring.pool: 10"},
		{Key: "debug", Text: "debug: false"},
	})
	assert.Equal(t, Result{Input: 2, Stored: 2}, res)

	hits, err := store.Search([]float64{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, domain.SourceJSON, hits[0].Source)
	assert.NotEmpty(t, hits[0].Key)
}
