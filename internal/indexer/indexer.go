package indexer

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"codeopt/internal/domain"
	"codeopt/internal/vectorstore"
)

// ID assignment schemes. Content-derived IDs make re-ingestion an upsert by
// content identity; positional IDs reproduce the legacy obs_<n> numbering,
// which can silently remap IDs when input order or batch size changes.
const (
	IDSchemeContent    = "content"
	IDSchemePositional = "positional"
)

// DefaultBatchSize bounds how many records are embedded and stored per
// store round-trip.
const DefaultBatchSize = 51

// Result reports how much of the input survived indexing. Stored may be a
// strict subset of Input under the partial-success policy.
type Result struct {
	Input  int
	Stored int
}

// Indexer embeds documents and upserts them into a vector store in batches.
// A failure in one batch is logged and skipped; later batches still run.
type Indexer struct {
	embedder  domain.Embedder
	store     domain.VectorStore
	batchSize int
	idScheme  string
	log       *slog.Logger

	initialized bool
}

type Config struct {
	BatchSize int
	IDScheme  string
}

func New(embedder domain.Embedder, store domain.VectorStore, cfg Config, log *slog.Logger) *Indexer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.IDScheme == "" {
		cfg.IDScheme = IDSchemeContent
	}
	if log == nil {
		log = slog.Default()
	}
	return &Indexer{
		embedder:  embedder,
		store:     store,
		batchSize: cfg.BatchSize,
		idScheme:  cfg.IDScheme,
		log:       log,
	}
}

// IndexRecords embeds each record's observation and stores it with its
// recommendation metadata.
func (ix *Indexer) IndexRecords(records []domain.KnowledgeRecord) Result {
	docs := lo.Map(records, func(r domain.KnowledgeRecord, i int) document {
		return document{
			id:   ix.recordID(r, i),
			text: r.Observation,
			metadata: map[string]string{
				vectorstore.MetaRecommendation: r.Recommendation,
				vectorstore.MetaSheet:          r.SourceSheet,
				vectorstore.MetaDescription:    r.Description,
				vectorstore.MetaSource:         domain.SourceWorkbook,
			},
		}
	})
	return ix.index(docs)
}

// IndexChunks stores flattened JSON dataset leaves as supplementary context.
func (ix *Indexer) IndexChunks(chunks []domain.Chunk) Result {
	docs := lo.Map(chunks, func(c domain.Chunk, i int) document {
		return document{
			id:   ix.chunkID(c, i),
			text: c.Text,
			metadata: map[string]string{
				vectorstore.MetaSource: domain.SourceJSON,
				vectorstore.MetaKey:    c.Key,
			},
		}
	})
	return ix.index(docs)
}

type document struct {
	id       string
	text     string
	metadata map[string]string
}

func (ix *Indexer) index(docs []document) Result {
	res := Result{Input: len(docs)}
	for batchNo, batch := range lo.Chunk(docs, ix.batchSize) {
		points, err := ix.embedBatch(batch)
		if err != nil {
			ix.log.Error("failed to embed batch, skipping",
				slog.Int("batch", batchNo), slog.Int("size", len(batch)), slog.Any("error", err))
			continue
		}
		if err := ix.store.Upsert(points); err != nil {
			ix.log.Error("failed to store batch, skipping",
				slog.Int("batch", batchNo), slog.Int("size", len(batch)), slog.Any("error", err))
			continue
		}
		res.Stored += len(points)
		ix.log.Info("stored batch", slog.Int("batch", batchNo), slog.Int("records", len(points)))
	}
	return res
}

func (ix *Indexer) embedBatch(batch []document) ([]domain.Point, error) {
	points := make([]domain.Point, 0, len(batch))
	for _, d := range batch {
		vec, err := ix.embedder.Embed(d.text)
		if err != nil {
			return nil, fmt.Errorf("embed %q: %w", d.id, err)
		}
		// Remote embedders only report their dimension after the first
		// call, so the store is initialized from the first vector seen.
		if !ix.initialized {
			if err := ix.store.Init(len(vec)); err != nil {
				return nil, fmt.Errorf("init store: %w", err)
			}
			ix.initialized = true
		}
		points = append(points, domain.Point{
			ID:       d.id,
			Vector:   vec,
			Document: d.text,
			Metadata: d.metadata,
		})
	}
	return points, nil
}

func (ix *Indexer) recordID(r domain.KnowledgeRecord, i int) string {
	if ix.idScheme == IDSchemePositional {
		return fmt.Sprintf("obs_%d", i)
	}
	return "obs_" + contentHash(r.Observation)
}

func (ix *Indexer) chunkID(c domain.Chunk, i int) string {
	if ix.idScheme == IDSchemePositional {
		return fmt.Sprintf("json_%d", i)
	}
	return "json_" + contentHash(c.Text)
}

func contentHash(text string) string {
	h := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(text))))
	return hex.EncodeToString(h[:8])
}
