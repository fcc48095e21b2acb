package schema

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Matching modes for locating the observation and recommendation columns.
const (
	ModeFuzzy = "fuzzy"
	ModeExact = "exact"
)

// DefaultThreshold is the minimum similarity ratio at which a header is
// accepted for a logical field.
const DefaultThreshold = 0.7

// Exact header names used by the strict ingestion mode and for the optional
// description column, which is never fuzzy-matched.
const (
	ExactObservationHeader    = "Observation"
	ExactRecommendationHeader = "Recommendation"
	DescriptionHeader         = "Description"
)

// ColumnNotFound marks a logical field with no accepted header.
const ColumnNotFound = -1

// ColumnMapping is the result of matching one sheet's header row. Index
// values are positions into the header slice, ColumnNotFound when absent.
// A sheet contributes records only when Complete() is true.
type ColumnMapping struct {
	Observation    int
	Recommendation int
	Description    int
}

// Complete reports whether both required columns were located.
func (m ColumnMapping) Complete() bool {
	return m.Observation != ColumnNotFound && m.Recommendation != ColumnNotFound
}

// Matcher locates logical columns in a header row by comparing headers
// against per-field synonym lists with a normalized edit-distance ratio.
type Matcher struct {
	observationKeys    []string
	recommendationKeys []string
	threshold          float64
	mode               string
}

// Config configures a Matcher. Zero values fall back to the defaults used by
// the observed datasets.
type Config struct {
	ObservationKeys    []string
	RecommendationKeys []string
	Threshold          float64
	Mode               string
}

// DefaultObservationKeys are the known spellings of observation-like headers.
func DefaultObservationKeys() []string {
	return []string{"Scenarios", "Observation", "Dependencies / Checklists", "Checklist", "Recommendation", "Section"}
}

// DefaultRecommendationKeys are the known spellings of recommendation-like headers.
func DefaultRecommendationKeys() []string {
	return []string{"Sample Code", "Recommendation / Sample Code", "Sample Config", "Conclusion", "Example", "Details"}
}

// NewMatcher creates a Matcher from the provided configuration.
func NewMatcher(cfg Config) *Matcher {
	if len(cfg.ObservationKeys) == 0 {
		cfg.ObservationKeys = DefaultObservationKeys()
	}
	if len(cfg.RecommendationKeys) == 0 {
		cfg.RecommendationKeys = DefaultRecommendationKeys()
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeFuzzy
	}
	return &Matcher{
		observationKeys:    cfg.ObservationKeys,
		recommendationKeys: cfg.RecommendationKeys,
		threshold:          cfg.Threshold,
		mode:               cfg.Mode,
	}
}

// Match maps a header row to the logical fields. In exact mode the required
// columns must be named "Observation" and "Recommendation" verbatim; in fuzzy
// mode they are picked by best synonym score at or above the threshold.
// The two picks are not cross-checked for distinctness: an ambiguous header
// set can select the same column for both roles.
func (m *Matcher) Match(headers []string) ColumnMapping {
	mapping := ColumnMapping{
		Observation:    ColumnNotFound,
		Recommendation: ColumnNotFound,
		Description:    ColumnNotFound,
	}
	switch m.mode {
	case ModeExact:
		mapping.Observation = indexOf(headers, ExactObservationHeader)
		mapping.Recommendation = indexOf(headers, ExactRecommendationHeader)
	default:
		mapping.Observation = m.FindColumn(headers, m.observationKeys)
		mapping.Recommendation = m.FindColumn(headers, m.recommendationKeys)
	}
	// The description column is matched by exact name in every variant.
	mapping.Description = indexOf(headers, DescriptionHeader)
	return mapping
}

// FindColumn returns the index of the header with the highest score against
// the synonym list, or ColumnNotFound if no header reaches the threshold.
// Ties keep the earliest header: the scan is stable and only a strictly
// greater score replaces the current best.
func (m *Matcher) FindColumn(headers []string, synonyms []string) int {
	best := ColumnNotFound
	bestScore := 0.0
	for i, h := range headers {
		score := Score(h, synonyms)
		if score > bestScore && score >= m.threshold {
			best = i
			bestScore = score
		}
	}
	return best
}

// Score computes the similarity of one header against a synonym list: the
// maximum normalized ratio over all synonyms, in [0,1].
func Score(header string, synonyms []string) float64 {
	h := Normalize(header)
	best := 0.0
	for _, s := range synonyms {
		if r := ratio(h, Normalize(s)); r > best {
			best = r
		}
	}
	return best
}

// Normalize prepares a header for comparison: trimmed, lowercased, with the
// separators "/", "-" and "_" replaced by spaces.
func Normalize(header string) string {
	r := strings.NewReplacer("/", " ", "-", " ", "_", " ")
	return r.Replace(strings.ToLower(strings.TrimSpace(header)))
}

// ratio is the normalized Levenshtein similarity: 1 - distance/maxLen,
// where identical strings score 1.0.
func ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1.0
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(d)/float64(longest)
}

func indexOf(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return ColumnNotFound
}
