// Package report turns a flat list of classified posts into a structured,
// validated, ranked report with two audience-tiered messages: a terse summary
// and a detailed drill-down. It is pure computation with no network or disk
// I/O, and always returns a well-formed report, logging anomalies instead of
// failing.
package report

import (
	"time"

	"brandpulse/internal/types"
)

// Summary holds the headline statistics for one run.
type Summary struct {
	Total          int         `json:"total_posts"`
	PositiveCount  int         `json:"positive_count"`
	NegativeCount  int         `json:"negative_count"`
	PositivePct    float64     `json:"positive_pct"`
	NegativePct    float64     `json:"negative_pct"`
	SentimentScore float64     `json:"sentiment_score"`
	Trend          types.Trend `json:"trend"`
}

// PostRef is the report-facing projection of one post.
type PostRef struct {
	URL        string        `json:"url"`
	Username   string        `json:"username"`
	Text       string        `json:"text"`
	Engagement int           `json:"engagement,omitempty"`
	Themes     []string      `json:"themes,omitempty"`
	Urgency    types.Urgency `json:"urgency,omitempty"`
}

// ThemeGroup is one ranked theme bucket with its best examples.
type ThemeGroup struct {
	Theme       string        `json:"theme"`
	Count       int           `json:"count"`
	Description string        `json:"description"`
	Urgency     types.Urgency `json:"urgency,omitempty"`
	Examples    []PostRef     `json:"example_posts"`
}

// Phrase is one flagged keyword occurrence from a negative record. Repeated
// identical phrases are deliberately not deduplicated: volume is signal.
type Phrase struct {
	Phrase   string        `json:"phrase"`
	Username string        `json:"username"`
	Theme    string        `json:"theme"`
	Category string        `json:"category"`
	URL      string        `json:"url"`
	Urgency  types.Urgency `json:"urgency"`
}

// StrategicTally counts records per executive-level category. Influencer
// mentions are counted independently of category.
type StrategicTally struct {
	StrategicWins       int `json:"strategic_wins"`
	AdoptionSignals     int `json:"adoption_signals"`
	CriticalFUD         int `json:"critical_fud"`
	AffiliateViolations int `json:"affiliate_violations"`
	InfluencerMentions  int `json:"influencer_mentions"`
}

func (t StrategicTally) Any() bool {
	return t.StrategicWins > 0 || t.AdoptionSignals > 0 || t.CriticalFUD > 0 ||
		t.AffiliateViolations > 0 || t.InfluencerMentions > 0
}

// RawData is the boundary artifact: persisted as JSON by the storage layer
// and re-rendered into chat markup by the notifier.
type RawData struct {
	Summary         Summary        `json:"summary"`
	ProductMentions map[string]int `json:"product_mentions"`
	PositiveThemes  []ThemeGroup   `json:"positive_themes"`
	NegativeThemes  []ThemeGroup   `json:"negative_themes"`
	Strategic       StrategicTally `json:"strategic_highlights"`
	NegativePhrases []Phrase       `json:"negative_phrase_analysis"`
	AllPositive     []PostRef      `json:"all_positive_posts"`
	AllNegative     []PostRef      `json:"all_negative_posts"`
}

// Metadata records provenance for one aggregation run.
type Metadata struct {
	RunID           string    `json:"run_id"`
	GeneratedAt     time.Time `json:"generated_at"`
	DateRange       string    `json:"date_range"`
	DurationSeconds float64   `json:"analysis_duration"`
	PostsAnalyzed   int       `json:"posts_analyzed"`
	CacheHits       int       `json:"cache_hits"`
	TotalAPICost    float64   `json:"total_api_cost"`
}

// Report is the aggregate output. Immutable after construction.
type Report struct {
	SummaryText string   `json:"message_summary"`
	DetailText  string   `json:"message_detail"`
	RawData     RawData  `json:"raw_data"`
	Metadata    Metadata `json:"metadata"`
}
