// Package export writes a report to an XLSX workbook for offline review.
package export

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"brandpulse/internal/report"
)

const (
	sheetSummary = "Summary"
	sheetThemes  = "Themes"
	sheetPosts   = "Posts"
	sheetPhrases = "Phrases"
)

// WriteXLSX renders the report into a workbook at path. One sheet per
// report section; the message texts are left out since the raw data is the
// canonical content.
func WriteXLSX(rep *report.Report, path string, log *logrus.Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	if err := writeSummary(f, rep); err != nil {
		return err
	}
	if err := writeThemes(f, rep); err != nil {
		return err
	}
	if err := writePosts(f, rep); err != nil {
		return err
	}
	if err := writePhrases(f, rep); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	log.WithField("path", path).Info("report exported to xlsx")
	return nil
}

func writeSummary(f *excelize.File, rep *report.Report) error {
	s := rep.RawData.Summary
	rows := [][]any{
		{"Run ID", rep.Metadata.RunID},
		{"Generated At", rep.Metadata.GeneratedAt.UTC().Format("2006-01-02 15:04:05")},
		{"Date Range", rep.Metadata.DateRange},
		{"Total Posts", s.Total},
		{"Positive", s.PositiveCount},
		{"Negative", s.NegativeCount},
		{"Positive %", s.PositivePct},
		{"Negative %", s.NegativePct},
		{"Sentiment Score", s.SentimentScore},
		{"Trend", string(s.Trend)},
		{"Cache Hits", rep.Metadata.CacheHits},
		{"API Cost USD", rep.Metadata.TotalAPICost},
	}
	for i, row := range rows {
		if err := setRow(f, sheetSummary, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func writeThemes(f *excelize.File, rep *report.Report) error {
	if _, err := f.NewSheet(sheetThemes); err != nil {
		return fmt.Errorf("create themes sheet: %w", err)
	}
	if err := setRow(f, sheetThemes, 1, []any{"Side", "Theme", "Count", "Urgency", "Description"}); err != nil {
		return err
	}
	row := 2
	for _, g := range rep.RawData.PositiveThemes {
		if err := setRow(f, sheetThemes, row, []any{"positive", g.Theme, g.Count, "", g.Description}); err != nil {
			return err
		}
		row++
	}
	for _, g := range rep.RawData.NegativeThemes {
		if err := setRow(f, sheetThemes, row, []any{"negative", g.Theme, g.Count, string(g.Urgency), g.Description}); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writePosts(f *excelize.File, rep *report.Report) error {
	if _, err := f.NewSheet(sheetPosts); err != nil {
		return fmt.Errorf("create posts sheet: %w", err)
	}
	if err := setRow(f, sheetPosts, 1, []any{"Side", "Username", "URL", "Engagement", "Urgency", "Text"}); err != nil {
		return err
	}
	row := 2
	write := func(side string, refs []report.PostRef) error {
		for _, ref := range refs {
			if err := setRow(f, sheetPosts, row, []any{
				side, ref.Username, ref.URL, ref.Engagement, string(ref.Urgency), ref.Text,
			}); err != nil {
				return err
			}
			row++
		}
		return nil
	}
	if err := write("positive", rep.RawData.AllPositive); err != nil {
		return err
	}
	return write("negative", rep.RawData.AllNegative)
}

func writePhrases(f *excelize.File, rep *report.Report) error {
	if _, err := f.NewSheet(sheetPhrases); err != nil {
		return fmt.Errorf("create phrases sheet: %w", err)
	}
	if err := setRow(f, sheetPhrases, 1, []any{"Phrase", "Username", "Theme", "Category", "Urgency", "URL"}); err != nil {
		return err
	}
	for i, p := range rep.RawData.NegativePhrases {
		if err := setRow(f, sheetPhrases, i+2, []any{
			p.Phrase, p.Username, p.Theme, p.Category, string(p.Urgency), p.URL,
		}); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d on %s: %w", row, sheet, err)
	}
	return nil
}
