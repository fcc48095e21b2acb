package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "sample code", Normalize("  Sample_Code "))
	assert.Equal(t, "recommendation   sample code", Normalize("Recommendation / Sample-Code"))
	assert.Equal(t, "", Normalize("   "))
}

func TestScoreInvariantUnderCaseAndSeparators(t *testing.T) {
	synonyms := []string{"Sample Code"}
	base := Score("Sample Code", synonyms)
	require.Equal(t, 1.0, base)

	for _, h := range []string{"sample code", "SAMPLE CODE", "Sample-Code", "Sample_Code", "Sample/Code", " sample code "} {
		assert.Equal(t, base, Score(h, synonyms), "header %q", h)
	}
}

func TestScoreMaxOverSynonyms(t *testing.T) {
	synonyms := []string{"Conclusion", "Observation"}
	assert.Equal(t, 1.0, Score("observation", synonyms))
	assert.Less(t, Score("unrelated header", synonyms), 0.5)
}

func TestFindColumnThresholdAndTieBreak(t *testing.T) {
	m := NewMatcher(Config{Threshold: 0.7})

	headers := []string{"Totally Different", "Observations", "Observation"}
	idx := m.FindColumn(headers, []string{"Observation"})
	require.Equal(t, 2, idx, "exact normalized match beats near match")

	// Two identical headers: first one encountered wins.
	headers = []string{"Observation", "Observation"}
	assert.Equal(t, 0, m.FindColumn(headers, []string{"Observation"}))

	// Nothing reaches the threshold.
	headers = []string{"Latency", "Throughput"}
	assert.Equal(t, ColumnNotFound, m.FindColumn(headers, []string{"Observation"}))
}

func TestMatchFuzzy(t *testing.T) {
	m := NewMatcher(Config{})
	headers := []string{"Scenarios", "Sample Code", "Description"}
	mapping := m.Match(headers)

	require.True(t, mapping.Complete())
	assert.Equal(t, 0, mapping.Observation)
	assert.Equal(t, 1, mapping.Recommendation)
	assert.Equal(t, 2, mapping.Description)
}

func TestMatchFuzzyIncomplete(t *testing.T) {
	m := NewMatcher(Config{})
	mapping := m.Match([]string{"Date", "Owner", "Status"})

	assert.False(t, mapping.Complete())
	assert.Equal(t, ColumnNotFound, mapping.Observation)
	assert.Equal(t, ColumnNotFound, mapping.Recommendation)
	assert.Equal(t, ColumnNotFound, mapping.Description)
}

func TestMatchExactMode(t *testing.T) {
	m := NewMatcher(Config{Mode: ModeExact})

	mapping := m.Match([]string{"Observation", "Recommendation"})
	require.True(t, mapping.Complete())
	assert.Equal(t, 0, mapping.Observation)
	assert.Equal(t, 1, mapping.Recommendation)

	// Exact mode does not accept close spellings.
	mapping = m.Match([]string{"observation", "Recommendations"})
	assert.False(t, mapping.Complete())
}

func TestMatchDescriptionExactOnly(t *testing.T) {
	m := NewMatcher(Config{})
	mapping := m.Match([]string{"Observation", "Recommendation", "Descriptions"})
	assert.Equal(t, ColumnNotFound, mapping.Description)
}

func TestSameColumnMayServeBothRoles(t *testing.T) {
	// "Recommendation" appears in both synonym lists; with no better
	// candidate it is selected for both logical fields.
	m := NewMatcher(Config{
		ObservationKeys:    []string{"Recommendation"},
		RecommendationKeys: []string{"Recommendation"},
	})
	mapping := m.Match([]string{"Recommendation"})
	assert.Equal(t, mapping.Observation, mapping.Recommendation)
}
