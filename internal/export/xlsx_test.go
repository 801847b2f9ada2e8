package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"brandpulse/internal/report"
	"brandpulse/internal/types"
)

func testLog() *logrus.Entry {
	log, _ := logtest.NewNullLogger()
	return logrus.NewEntry(log)
}

func TestWriteXLSX(t *testing.T) {
	rep := &report.Report{
		RawData: report.RawData{
			Summary: report.Summary{
				Total: 2, PositiveCount: 1, NegativeCount: 1,
				SentimentScore: 12.5, Trend: types.TrendStable,
			},
			PositiveThemes: []report.ThemeGroup{
				{Theme: "mobile_app_praise", Count: 1, Description: "Praise"},
			},
			NegativeThemes: []report.ThemeGroup{
				{Theme: "fee_complaints", Count: 1, Urgency: types.UrgencyHigh, Description: "Fees"},
			},
			NegativePhrases: []report.Phrase{
				{Phrase: "hidden fees", Username: "bob", Theme: "fee_complaints", Category: "[FEES]", Urgency: types.UrgencyHigh},
			},
			AllPositive: []report.PostRef{{Username: "alice", URL: "https://x.com/a/1", Text: "great"}},
			AllNegative: []report.PostRef{{Username: "bob", URL: "https://x.com/b/2", Text: "fees", Engagement: 40}},
		},
		Metadata: report.Metadata{
			RunID:       "run-1",
			GeneratedAt: time.Date(2025, 12, 5, 9, 0, 0, 0, time.UTC),
			DateRange:   "2025-12-04 to 2025-12-05",
		},
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteXLSX(rep, path, testLog()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Summary", "Themes", "Posts", "Phrases"}, f.GetSheetList())

	runID, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", runID)

	theme, err := f.GetCellValue("Themes", "B2")
	require.NoError(t, err)
	assert.Equal(t, "mobile_app_praise", theme)

	user, err := f.GetCellValue("Posts", "B2")
	require.NoError(t, err)
	assert.Equal(t, "alice", user)

	phrase, err := f.GetCellValue("Phrases", "A2")
	require.NoError(t, err)
	assert.Equal(t, "hidden fees", phrase)
}
