package vectorstore

import "codeopt/internal/domain"

// Metadata keys shared by every store backend.
const (
	MetaRecommendation = "recommendation"
	MetaSheet          = "sheet"
	MetaDescription    = "description"
	MetaSource         = "source"
	MetaKey            = "key"
)

// RecordFromPoint maps a stored document and its metadata back into the
// retrieval result tuple.
func RecordFromPoint(document string, meta map[string]string, score float64) domain.RetrievedRecord {
	return domain.RetrievedRecord{
		Observation:    document,
		Recommendation: meta[MetaRecommendation],
		SourceSheet:    meta[MetaSheet],
		Description:    meta[MetaDescription],
		Source:         meta[MetaSource],
		Key:            meta[MetaKey],
		Score:          score,
	}
}
