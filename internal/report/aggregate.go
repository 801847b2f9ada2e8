package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"brandpulse/internal/catalog"
	"brandpulse/internal/types"
)

// Options tunes one aggregation run. Zero values mean defaults.
type Options struct {
	// BrandName appears in the report headers.
	BrandName string
	// TopThemes caps how many theme groups each sentiment section carries.
	TopThemes int
	// ExamplesPerTheme caps the example links per theme group.
	ExamplesPerTheme int
	// DetailCeiling is the character cap on the detail message.
	DetailCeiling int
	// HistoricalScores are prior runs' sentiment scores, most recent last.
	// Empty means no trend baseline, so the trend reads STABLE.
	HistoricalScores []float64
}

const (
	defaultTopThemes        = 5
	defaultExamplesPerTheme = 3
)

func (o Options) withDefaults() Options {
	if o.BrandName == "" {
		o.BrandName = "Brand"
	}
	if o.TopThemes <= 0 {
		o.TopThemes = defaultTopThemes
	}
	if o.ExamplesPerTheme <= 0 {
		o.ExamplesPerTheme = defaultExamplesPerTheme
	}
	if o.DetailCeiling <= 0 {
		o.DetailCeiling = DefaultDetailCeiling
	}
	return o
}

// RunInfo carries provenance the aggregator cannot compute itself.
type RunInfo struct {
	DateRange    string
	Duration     time.Duration
	CacheHits    int
	TotalAPICost float64
}

// Aggregator turns classified posts into a finished Report.
type Aggregator struct {
	cat      *catalog.Catalog
	log      *logrus.Entry
	opts     Options
	renderer *Renderer
}

// NewAggregator wires the aggregator with its catalog and options.
func NewAggregator(cat *catalog.Catalog, log *logrus.Entry, opts Options) *Aggregator {
	opts = opts.withDefaults()
	labels := make([]ProductLabel, 0, len(cat.Products()))
	for _, p := range cat.Products() {
		labels = append(labels, ProductLabel{ID: p.ID, Label: p.Label})
	}
	return &Aggregator{
		cat:      cat,
		log:      log,
		opts:     opts,
		renderer: NewRenderer(opts.BrandName, labels, opts.DetailCeiling),
	}
}

// Renderer exposes the aggregator's renderer so the notifier can re-render
// RawData in its own markup instead of reparsing the plain text.
func (a *Aggregator) Renderer() *Renderer { return a.renderer }

// SetHistoricalScores replaces the trend baseline before the next run.
// The scores are prior runs' sentiment scores, most recent last.
func (a *Aggregator) SetHistoricalScores(scores []float64) {
	a.opts.HistoricalScores = scores
}

// Aggregate builds the full report for one run. It never fails: an empty
// input yields the canonical empty report, and consistency problems are
// logged as warnings while the report is still returned.
func (a *Aggregator) Aggregate(records []types.ClassifiedPost, run RunInfo) *Report {
	meta := Metadata{
		RunID:           uuid.NewString(),
		GeneratedAt:     time.Now().UTC(),
		DateRange:       run.DateRange,
		DurationSeconds: run.Duration.Seconds(),
		PostsAnalyzed:   len(records),
		CacheHits:       run.CacheHits,
		TotalAPICost:    run.TotalAPICost,
	}

	if len(records) == 0 {
		a.log.WithField("run_id", meta.RunID).Info("no records to aggregate, producing empty report")
		return a.emptyReport(meta)
	}

	positive, negative := partition(records)
	score := sentimentScore(records)
	total := len(records)

	raw := RawData{
		Summary: Summary{
			Total:          total,
			PositiveCount:  len(positive),
			NegativeCount:  len(negative),
			PositivePct:    float64(len(positive)) / float64(total) * 100,
			NegativePct:    float64(len(negative)) / float64(total) * 100,
			SentimentScore: score,
			Trend:          determineTrend(score, a.opts.HistoricalScores),
		},
		ProductMentions: countProductMentions(records, a.cat),
		PositiveThemes:  buildThemeGroups(groupByThemes(positive), a.opts.TopThemes, a.opts.ExamplesPerTheme, a.cat, false),
		NegativeThemes:  buildThemeGroups(groupByThemes(negative), a.opts.TopThemes, a.opts.ExamplesPerTheme, a.cat, true),
		Strategic:       countStrategic(records),
		NegativePhrases: extractPhrases(negative, a.cat),
		AllPositive:     postRefs(positive),
		AllNegative:     postRefs(negative),
	}

	summaryText, detailText := a.renderer.Messages(raw, meta, FormatPlain)
	rep := &Report{
		SummaryText: summaryText,
		DetailText:  detailText,
		RawData:     raw,
		Metadata:    meta,
	}

	if problems := validateReport(rep, records); len(problems) > 0 {
		log := a.log.WithField("run_id", meta.RunID)
		for _, p := range problems {
			log.WithField("check", p).Warn("report consistency check failed")
		}
	}

	a.log.WithFields(logrus.Fields{
		"run_id":    meta.RunID,
		"total":     total,
		"positive":  len(positive),
		"negative":  len(negative),
		"score":     fmt.Sprintf("%.1f", score),
		"trend":     raw.Summary.Trend,
		"cost_usd":  fmt.Sprintf("%.4f", run.TotalAPICost),
		"cache_hit": run.CacheHits,
	}).Info("report assembled")

	return rep
}

func (a *Aggregator) emptyReport(meta Metadata) *Report {
	raw := RawData{
		Summary: Summary{
			SentimentScore: 0.0,
			Trend:          types.TrendStable,
		},
		ProductMentions: countProductMentions(nil, a.cat),
		PositiveThemes:  []ThemeGroup{},
		NegativeThemes:  []ThemeGroup{},
		NegativePhrases: []Phrase{},
		AllPositive:     []PostRef{},
		AllNegative:     []PostRef{},
	}
	return &Report{
		SummaryText: a.renderer.EmptySummary(meta),
		DetailText:  a.renderer.EmptyDetail(),
		RawData:     raw,
		Metadata:    meta,
	}
}

// postRefs projects records into the full listing, preserving input order.
func postRefs(records []types.ClassifiedPost) []PostRef {
	refs := make([]PostRef, 0, len(records))
	for _, rec := range records {
		refs = append(refs, PostRef{
			URL:        rec.Post.URL,
			Username:   rec.Post.AuthorUsername,
			Text:       rec.Post.Text,
			Engagement: rec.Post.Engagement.Total,
			Themes:     rec.Classification.Themes,
			Urgency:    rec.Classification.Urgency,
		})
	}
	return refs
}
