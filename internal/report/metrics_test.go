package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"brandpulse/internal/catalog"
	"brandpulse/internal/types"
)

func TestPartition(t *testing.T) {
	records := []types.ClassifiedPost{
		makeRecord("1", types.SentimentPositive, 90),
		makeRecord("2", types.SentimentNegative, 80),
		makeRecord("3", types.SentimentNeutral, 70),
		makeRecord("4", types.SentimentMixed, 60),
		makeRecord("5", types.SentimentNegative, 50),
	}

	positive, negative := partition(records)

	// NEUTRAL and MIXED land on the positive side, only NEGATIVE on the other
	assert.Len(t, positive, 3)
	assert.Len(t, negative, 2)
	assert.Equal(t, len(records), len(positive)+len(negative))
	for _, r := range negative {
		assert.Equal(t, types.SentimentNegative, r.Classification.Sentiment)
	}
}

func TestSentimentScore(t *testing.T) {
	tests := []struct {
		name    string
		records []types.ClassifiedPost
		want    float64
	}{
		{
			name:    "empty input",
			records: nil,
			want:    0.0,
		},
		{
			name: "all positive full confidence",
			records: []types.ClassifiedPost{
				makeRecord("1", types.SentimentPositive, 100),
				makeRecord("2", types.SentimentPositive, 100),
			},
			want: 100.0,
		},
		{
			name: "all negative full confidence",
			records: []types.ClassifiedPost{
				makeRecord("1", types.SentimentNegative, 100),
			},
			want: -100.0,
		},
		{
			name: "neutral contributes weight but no direction",
			records: []types.ClassifiedPost{
				makeRecord("1", types.SentimentNeutral, 100),
				makeRecord("2", types.SentimentMixed, 100),
			},
			want: 0.0,
		},
		{
			name: "zero confidence everywhere",
			records: []types.ClassifiedPost{
				makeRecord("1", types.SentimentPositive, 0),
				makeRecord("2", types.SentimentNegative, 0),
			},
			want: 0.0,
		},
		{
			name: "confidence weights the mix",
			// (1*1.0 - 1*0.5) / (1.0 + 0.5) * 100
			records: []types.ClassifiedPost{
				makeRecord("1", types.SentimentPositive, 100),
				makeRecord("2", types.SentimentNegative, 50),
			},
			want: 33.3333,
		},
		{
			name: "neutral dilutes toward zero",
			// (1*0.8 - 1*0.8) + neutral 0.4 weight
			records: []types.ClassifiedPost{
				makeRecord("1", types.SentimentPositive, 80),
				makeRecord("2", types.SentimentNegative, 80),
				makeRecord("3", types.SentimentNeutral, 40),
			},
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sentimentScore(tt.records)
			assert.InDelta(t, tt.want, got, 0.001)
			assert.GreaterOrEqual(t, got, -100.0)
			assert.LessOrEqual(t, got, 100.0)
		})
	}
}

func TestSentimentScoreMonotonic(t *testing.T) {
	base := []types.ClassifiedPost{
		makeRecord("1", types.SentimentPositive, 80),
		makeRecord("2", types.SentimentNegative, 80),
	}
	before := sentimentScore(base)
	after := sentimentScore(append(base, makeRecord("3", types.SentimentNegative, 90)))
	assert.Less(t, after, before, "adding a negative record must not raise the score")
}

func TestDetermineTrend(t *testing.T) {
	tests := []struct {
		name       string
		score      float64
		historical []float64
		want       types.Trend
	}{
		{"no history", 75.0, nil, types.TrendStable},
		{"well above average", 50.0, []float64{20.0, 30.0}, types.TrendImproving},
		{"well below average", -10.0, []float64{20.0, 30.0}, types.TrendDeclining},
		{"inside the band", 32.0, []float64{30.0}, types.TrendStable},
		{"exactly on the band edge", 40.0, []float64{30.0}, types.TrendStable},
		{"just past the band edge", 40.1, []float64{30.0}, types.TrendImproving},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, determineTrend(tt.score, tt.historical))
		})
	}
}

func TestCountProductMentions(t *testing.T) {
	cat := catalog.New()

	r1 := makeRecord("1", types.SentimentPositive, 90)
	r1.Classification.ProductMentions = []string{"mobile_app", "trading"}
	r2 := makeRecord("2", types.SentimentNegative, 90)
	r2.Classification.ProductMentions = []string{"mobile_app", "not_a_product"}

	counts := countProductMentions([]types.ClassifiedPost{r1, r2}, cat)

	assert.Equal(t, 2, counts["mobile_app"])
	assert.Equal(t, 1, counts["trading"])
	// Unknown products are dropped, not counted
	assert.NotContains(t, counts, "not_a_product")
	// Every catalog product is present even at zero
	for _, p := range cat.Products() {
		assert.Contains(t, counts, p.ID)
	}
	assert.Equal(t, 0, counts["ai_insights"])
}

func TestCountStrategic(t *testing.T) {
	win := makeRecord("1", types.SentimentPositive, 90)
	win.Classification.StrategicCategory = types.CategoryStrategicWin

	fud := makeRecord("2", types.SentimentNegative, 90)
	fud.Classification.StrategicCategory = types.CategoryCriticalFUD
	fud.Classification.IsInfluencer = true

	violation := makeRecord("3", types.SentimentNegative, 90)
	violation.Classification.StrategicCategory = types.CategoryAffiliateViolation

	routine := makeRecord("4", types.SentimentNegative, 90)
	routine.Classification.StrategicCategory = types.CategoryRoutineNegative
	routine.Classification.IsInfluencer = true

	tally := countStrategic([]types.ClassifiedPost{win, fud, violation, routine})

	assert.Equal(t, 1, tally.StrategicWins)
	assert.Equal(t, 1, tally.CriticalFUD)
	assert.Equal(t, 1, tally.AffiliateViolations)
	assert.Equal(t, 0, tally.AdoptionSignals)
	// Influencers count independently of their strategic category
	assert.Equal(t, 2, tally.InfluencerMentions)
	assert.True(t, tally.Any())
}
