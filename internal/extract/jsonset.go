package extract

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"codeopt/internal/domain"
)

// FlattenJSON decomposes an arbitrary JSON document into leaf chunks, one per
// scalar value, keyed by its dotted path ("spring.datasource.url",
// "servers[0].port"). Object keys are visited in sorted order so the output
// is stable across runs.
func FlattenJSON(data []byte) ([]domain.Chunk, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse json dataset: %w", err)
	}
	var chunks []domain.Chunk
	flatten(doc, "", &chunks)
	return chunks, nil
}

// LoadJSONDataset reads and flattens the dataset at path. A missing or
// unparsable file degrades to zero chunks, mirroring workbook extraction.
func LoadJSONDataset(path string, log *slog.Logger) []domain.Chunk {
	if log == nil {
		log = slog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("json dataset not readable, skipping", slog.String("path", path), slog.Any("error", err))
		return nil
	}
	chunks, err := FlattenJSON(data)
	if err != nil {
		log.Error("json dataset not parsable, skipping", slog.String("path", path), slog.Any("error", err))
		return nil
	}
	return chunks
}

func flatten(v any, path string, out *[]domain.Chunk) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child := k
			if path != "" {
				child = path + "." + k
			}
			flatten(t[k], child, out)
		}
	case []any:
		for i, item := range t {
			flatten(item, fmt.Sprintf("%s[%d]", path, i), out)
		}
	default:
		*out = append(*out, domain.Chunk{
			Key:  path,
			Text: fmt.Sprintf("%s: %v", path, t),
		})
	}
}
