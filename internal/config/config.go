package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// IngestConfig describes the knowledge sources loaded at startup.
type IngestConfig struct {
	WorkbookPath string `yaml:"workbook_path"`
	JSONPath     string `yaml:"json_path,omitempty"`
	// Force re-runs ingestion even when the store already holds records.
	Force bool `yaml:"force"`
}

// MatchConfig tunes how sheet headers map to the logical columns.
type MatchConfig struct {
	Mode               string   `yaml:"mode"` // fuzzy | exact
	Threshold          float64  `yaml:"threshold"`
	ObservationKeys    []string `yaml:"observation_keys,omitempty"`
	RecommendationKeys []string `yaml:"recommendation_keys,omitempty"`
}

// IndexConfig tunes batching and ID assignment during indexing.
type IndexConfig struct {
	BatchSize int    `yaml:"batch_size"`
	IDScheme  string `yaml:"id_scheme"` // content | positional
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"` // tfidf | openai
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"` // memory | qdrant
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// RetrievalConfig tunes the query path.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// LLMConfig points at the downstream language-model service.
type LLMConfig struct {
	URL         string `yaml:"url"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// ServerConfig configures the HTTP layer and the optimization target named
// in composed prompts.
type ServerConfig struct {
	Addr   string `yaml:"addr"`
	Target string `yaml:"target,omitempty"`
}

// LogConfig configures structured logging. An empty path logs to stdout.
type LogConfig struct {
	Path  string `yaml:"path,omitempty"`
	Level string `yaml:"level"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Ingest      IngestConfig      `yaml:"ingest"`
	Match       MatchConfig       `yaml:"match"`
	Index       IndexConfig       `yaml:"index"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	LLM         LLMConfig         `yaml:"llm"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
}

// SlogLevel maps the configured level name onto a slog level, defaulting to
// info for unknown values.
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/codeopt/config.yaml.
// If neither exists, it writes defaults to ~/.config/codeopt/config.yaml and
// returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "codeopt", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Ingest:      IngestConfig{WorkbookPath: "FinalDataset.xlsx"},
		Match:       MatchConfig{Mode: "fuzzy", Threshold: 0.7},
		Index:       IndexConfig{BatchSize: 51, IDScheme: "content"},
		Embedder:    EmbedderConfig{Type: "tfidf"},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Retrieval:   RetrievalConfig{TopK: 3},
		LLM:         LLMConfig{URL: "http://localhost:11434/api/generate", Model: "llama3:8b", TimeoutSecs: 30},
		Server:      ServerConfig{Addr: ":5000"},
		Log:         LogConfig{Level: "info"},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Match.Mode == "" {
		cfg.Match.Mode = "fuzzy"
	}
	if cfg.Match.Threshold == 0 {
		cfg.Match.Threshold = 0.7
	}
	if cfg.Index.BatchSize == 0 {
		cfg.Index.BatchSize = 51
	}
	if cfg.Index.IDScheme == "" {
		cfg.Index.IDScheme = "content"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.LLM.URL == "" {
		cfg.LLM.URL = "http://localhost:11434/api/generate"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "llama3:8b"
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 30
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":5000"
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "http://localhost:11434/v1"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "all-minilm"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
}
