package extract

import (
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"codeopt/internal/domain"
	"codeopt/internal/schema"
)

// WorkbookExtractor walks every sheet of an xlsx workbook and yields
// KnowledgeRecord candidates from sheets whose header row maps to the
// required logical columns. Sheets and rows that fail validation are skipped,
// never fatal: a missing workbook yields zero records so the indexing step
// can run as a no-op.
type WorkbookExtractor struct {
	matcher *schema.Matcher
	log     *slog.Logger
}

// NewWorkbookExtractor creates an extractor using the given column matcher.
func NewWorkbookExtractor(matcher *schema.Matcher, log *slog.Logger) *WorkbookExtractor {
	if log == nil {
		log = slog.Default()
	}
	return &WorkbookExtractor{matcher: matcher, log: log}
}

// Extract reads the workbook at path and returns all valid records in sheet
// order, then row order within each sheet.
func (e *WorkbookExtractor) Extract(path string) []domain.KnowledgeRecord {
	f, err := excelize.OpenFile(path)
	if err != nil {
		e.log.Error("failed to open workbook", slog.String("path", path), slog.Any("error", err))
		return nil
	}
	defer f.Close()

	var records []domain.KnowledgeRecord
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			e.log.Error("failed to read sheet", slog.String("sheet", sheet), slog.Any("error", err))
			continue
		}
		records = append(records, e.extractSheet(sheet, rows)...)
	}
	return records
}

func (e *WorkbookExtractor) extractSheet(sheet string, rows [][]string) []domain.KnowledgeRecord {
	if len(rows) < 2 {
		e.log.Warn("sheet has no data rows, skipping", slog.String("sheet", sheet))
		return nil
	}
	mapping := e.matcher.Match(rows[0])
	if !mapping.Complete() {
		e.log.Warn("required columns not found, skipping sheet", slog.String("sheet", sheet))
		return nil
	}

	var records []domain.KnowledgeRecord
	dropped := 0
	for _, row := range rows[1:] {
		obs := strings.TrimSpace(cell(row, mapping.Observation))
		rec := strings.TrimSpace(cell(row, mapping.Recommendation))
		if obs == "" || rec == "" {
			dropped++
			continue
		}
		kr := domain.KnowledgeRecord{
			Observation:    obs,
			Recommendation: rec,
			SourceSheet:    sheet,
		}
		if mapping.Description != schema.ColumnNotFound {
			kr.Description = strings.TrimSpace(cell(row, mapping.Description))
		}
		records = append(records, kr)
	}
	e.log.Info("extracted sheet",
		slog.String("sheet", sheet),
		slog.Int("records", len(records)),
		slog.Int("dropped", dropped))
	return records
}

// cell returns the value at idx, tolerating the ragged rows excelize produces
// when trailing cells are empty.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
