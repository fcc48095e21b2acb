package domain

import "context"

// Record sources stored in point metadata.
const (
	SourceWorkbook = "workbook"
	SourceJSON     = "json"
)

// KnowledgeRecord is the unit of retrievable knowledge extracted from a
// workbook sheet. Observation and Recommendation are always non-empty once a
// record leaves the extractor.
type KnowledgeRecord struct {
	Observation    string
	Recommendation string
	SourceSheet    string
	Description    string
}

// Chunk is a flattened leaf of an auxiliary JSON dataset, indexed alongside
// workbook records as supplementary context.
type Chunk struct {
	Key  string
	Text string
}

// Point is what gets persisted in a vector store: the embedded document plus
// string-keyed metadata.
type Point struct {
	ID       string
	Vector   []float64
	Document string
	Metadata map[string]string
}

// RetrievedRecord is one similarity-search hit, nearest first in any slice
// returned by a store or the retrieval engine.
type RetrievedRecord struct {
	Observation    string
	Recommendation string
	SourceSheet    string
	Description    string
	Source         string
	Key            string
	Score          float64
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
}

// VectorStore persists points and supports similarity search.
type VectorStore interface {
	Init(dimension int) error
	Upsert(points []Point) error
	Search(vector []float64, topK int) ([]RetrievedRecord, error)
	Count() (int, error)
	Clear() error
}

// Generator produces a completion for a composed prompt via the downstream
// language-model service.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
