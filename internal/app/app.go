package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"codeopt/internal/config"
	"codeopt/internal/domain"
	"codeopt/internal/embedding/openai"
	"codeopt/internal/embedding/tfidf"
	"codeopt/internal/extract"
	"codeopt/internal/indexer"
	"codeopt/internal/llm"
	"codeopt/internal/prompt"
	"codeopt/internal/retrieval"
	"codeopt/internal/schema"
	"codeopt/internal/service"
	"codeopt/internal/vectorstore/memory"
	"codeopt/internal/vectorstore/qdrant"
)

// SetupLogger installs the process-wide JSON logger, rotating to a file when
// a log path is configured. Logs go to stderr so the console UI owns stdout.
func SetupLogger(cfg config.LogConfig) *slog.Logger {
	var writer io.Writer = os.Stderr
	if cfg.Path != "" {
		writer = &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    100, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
	}
	l := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(l)
	return l
}

// BuildPipeline assembles the configured pipeline. Components are
// constructed once here and injected; nothing downstream reaches for
// globals.
func BuildPipeline(cfg *config.AppConfig, log *slog.Logger) (*service.Pipeline, error) {
	var embedder domain.Embedder
	switch cfg.Embedder.Type {
	case "tfidf", "":
		embedder = tfidf.NewEmbedder()
	case "openai":
		ocfg := openai.Config{}
		if cfg.Embedder.OpenAI != nil {
			ocfg = openai.Config{
				BaseURL:   cfg.Embedder.OpenAI.BaseURL,
				APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
				Model:     cfg.Embedder.OpenAI.Model,
				Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
			}
		}
		embedder = openai.NewClient(ocfg)
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}

	var store domain.VectorStore
	switch cfg.VectorStore.Type {
	case "memory", "":
		store = memory.NewStore()
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			return nil, fmt.Errorf("qdrant config missing")
		}
		store = qdrant.NewStore(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	matcher := schema.NewMatcher(schema.Config{
		ObservationKeys:    cfg.Match.ObservationKeys,
		RecommendationKeys: cfg.Match.RecommendationKeys,
		Threshold:          cfg.Match.Threshold,
		Mode:               cfg.Match.Mode,
	})
	extractor := extract.NewWorkbookExtractor(matcher, log)
	ix := indexer.New(embedder, store, indexer.Config{
		BatchSize: cfg.Index.BatchSize,
		IDScheme:  cfg.Index.IDScheme,
	}, log)
	engine := retrieval.NewEngine(embedder, store, cfg.Retrieval.TopK, log)
	composer := prompt.NewComposer(cfg.Server.Target)
	generator := llm.NewOllamaClient(llm.OllamaConfig{
		URL:     cfg.LLM.URL,
		Model:   cfg.LLM.Model,
		Timeout: time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	})

	return service.NewPipeline(extractor, ix, engine, composer, generator,
		embedder, store, cfg.Retrieval.TopK, log), nil
}
