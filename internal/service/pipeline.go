package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"

	"codeopt/internal/domain"
	"codeopt/internal/extract"
	"codeopt/internal/indexer"
	"codeopt/internal/prompt"
	"codeopt/internal/retrieval"
)

// Pipeline is the application core: one-time knowledge ingestion at startup,
// then retrieve-compose-generate per request.
type Pipeline struct {
	extractor *extract.WorkbookExtractor
	indexer   *indexer.Indexer
	engine    *retrieval.Engine
	composer  *prompt.Composer
	generator domain.Generator
	embedder  domain.Embedder
	store     domain.VectorStore
	topK      int
	log       *slog.Logger

	// records kept for lexical fallback ranking when a query embeds to a
	// degenerate vector (possible with the local TF-IDF embedder).
	records []domain.KnowledgeRecord
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	Records indexer.Result
	Chunks  indexer.Result
	Skipped bool
}

// Summary renders the report as a single status line.
func (r IngestReport) Summary() string {
	if r.Skipped {
		return "Ingestion skipped: store already populated."
	}
	return fmt.Sprintf("Indexed %d/%d records and %d/%d context chunks.",
		r.Records.Stored, r.Records.Input, r.Chunks.Stored, r.Chunks.Input)
}

func NewPipeline(
	extractor *extract.WorkbookExtractor,
	ix *indexer.Indexer,
	engine *retrieval.Engine,
	composer *prompt.Composer,
	generator domain.Generator,
	embedder domain.Embedder,
	store domain.VectorStore,
	topK int,
	log *slog.Logger,
) *Pipeline {
	if topK <= 0 {
		topK = retrieval.DefaultTopK
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		extractor: extractor,
		indexer:   ix,
		engine:    engine,
		composer:  composer,
		generator: generator,
		embedder:  embedder,
		store:     store,
		topK:      topK,
		log:       log,
	}
}

// Ingest loads the workbook (and optional JSON dataset) into the vector
// store. It never fails the process: every degradation path logs and moves
// on, and an already-populated store short-circuits unless force is set.
func (p *Pipeline) Ingest(workbookPath, jsonPath string, force bool) IngestReport {
	if !force {
		if n, err := p.store.Count(); err != nil {
			p.log.Warn("could not check store count, ingesting anyway", slog.Any("error", err))
		} else if n > 0 {
			p.log.Info("store already populated, skipping ingestion", slog.Int("count", n))
			return IngestReport{Skipped: true}
		}
	}

	records := p.extractor.Extract(workbookPath)
	var chunks []domain.Chunk
	if jsonPath != "" {
		chunks = extract.LoadJSONDataset(jsonPath, p.log)
	}
	p.records = records

	corpus := make([]string, 0, len(records)+len(chunks))
	for _, r := range records {
		corpus = append(corpus, r.Observation)
	}
	for _, c := range chunks {
		corpus = append(corpus, c.Text)
	}
	if len(corpus) == 0 {
		p.log.Warn("no knowledge extracted, serving without context")
		return IngestReport{}
	}
	if err := p.embedder.Prepare(corpus); err != nil {
		p.log.Error("embedder preparation failed, serving without context", slog.Any("error", err))
		return IngestReport{}
	}

	report := IngestReport{
		Records: p.indexer.IndexRecords(records),
		Chunks:  p.indexer.IndexChunks(chunks),
	}
	p.log.Info("ingestion finished",
		slog.Int("records_stored", report.Records.Stored),
		slog.Int("records_input", report.Records.Input),
		slog.Int("chunks_stored", report.Chunks.Stored),
		slog.Int("chunks_input", report.Chunks.Input))
	return report
}

// Retrieve returns the nearest stored records for a query, falling back to
// lexical token-overlap ranking when similarity search yields nothing usable.
func (p *Pipeline) Retrieve(query string) []domain.RetrievedRecord {
	results := p.engine.Retrieve(query)
	usable := false
	for _, r := range results {
		if r.Score > 1e-9 {
			usable = true
			break
		}
	}
	if usable {
		return results
	}
	if fallback := p.lexicalSearch(query); len(fallback) > 0 {
		p.log.Debug("similarity search degenerate, using lexical fallback")
		return fallback
	}
	return results
}

// Optimize runs the full request path: retrieve context, compose the prompt,
// call the language model. Retrieval degradation is silent; generation
// failure is the caller's error.
func (p *Pipeline) Optimize(ctx context.Context, code string) (string, error) {
	records := p.Retrieve(code)
	text := p.composer.Compose(records, code)
	out, err := p.generator.Generate(ctx, text)
	if err != nil {
		return "", fmt.Errorf("language model call failed: %w", err)
	}
	return out, nil
}

// Count reports how many points the store currently holds.
func (p *Pipeline) Count() (int, error) {
	return p.store.Count()
}

var wordRe = regexp.MustCompile(`[\p{L}\p{N}]+`)

func (p *Pipeline) lexicalSearch(query string) []domain.RetrievedRecord {
	if len(p.records) == 0 {
		return nil
	}
	qset := tokenSet(query)
	if len(qset) == 0 {
		return nil
	}
	type scored struct {
		rec   domain.KnowledgeRecord
		score float64
	}
	candidates := make([]scored, 0, len(p.records))
	for _, r := range p.records {
		if s := ochiai(qset, r.Observation); s > 0 {
			candidates = append(candidates, scored{r, s})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > p.topK {
		candidates = candidates[:p.topK]
	}
	out := make([]domain.RetrievedRecord, len(candidates))
	for i, c := range candidates {
		out[i] = domain.RetrievedRecord{
			Observation:    c.rec.Observation,
			Recommendation: c.rec.Recommendation,
			SourceSheet:    c.rec.SourceSheet,
			Description:    c.rec.Description,
			Source:         domain.SourceWorkbook,
			Score:          c.score,
		}
	}
	return out
}

func tokenSet(s string) map[string]struct{} {
	tokens := wordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// ochiai is the token-set overlap coefficient |A∩B| / sqrt(|A||B|).
func ochiai(qset map[string]struct{}, text string) float64 {
	tset := tokenSet(text)
	if len(qset) == 0 || len(tset) == 0 {
		return 0
	}
	inter := 0
	for t := range tset {
		if _, ok := qset[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(qset))*float64(len(tset)))
}
