package report

import (
	"brandpulse/internal/catalog"
	"brandpulse/internal/types"
)

// trendBand is how far the current score must move from the historical
// average before the trend leaves STABLE.
const trendBand = 10.0

// partition splits records into the negative partition (sentiment ==
// NEGATIVE) and everything else. MIXED and NEUTRAL count as positive here on
// purpose: the headline stays binary while the detail sections still surface
// them through themes and strategic categories.
func partition(records []types.ClassifiedPost) (positive, negative []types.ClassifiedPost) {
	for _, r := range records {
		if r.Classification.Sentiment == types.SentimentNegative {
			negative = append(negative, r)
		} else {
			positive = append(positive, r)
		}
	}
	return positive, negative
}

// sentimentScore computes the confidence-weighted average sentiment on a
// [-100, 100] scale. A record contributes +1, -1, or 0 scaled by
// confidence/100, so low-confidence records move the score less than
// high-confidence ones. Zero total weight yields 0 by convention.
func sentimentScore(records []types.ClassifiedPost) float64 {
	var weighted, weight float64
	for _, r := range records {
		confidence := float64(r.Classification.Confidence) / 100.0

		var base float64
		switch r.Classification.Sentiment {
		case types.SentimentPositive:
			base = 1.0
		case types.SentimentNegative:
			base = -1.0
		default: // NEUTRAL or MIXED
			base = 0.0
		}

		weighted += base * confidence
		weight += confidence
	}
	if weight <= 0 {
		return 0.0
	}
	return weighted / weight * 100.0
}

// determineTrend compares the current score against the average of the
// supplied historical scores. No history means STABLE.
func determineTrend(score float64, historical []float64) types.Trend {
	if len(historical) == 0 {
		return types.TrendStable
	}
	var sum float64
	for _, s := range historical {
		sum += s
	}
	diff := score - sum/float64(len(historical))
	switch {
	case diff > trendBand:
		return types.TrendImproving
	case diff < -trendBand:
		return types.TrendDeclining
	}
	return types.TrendStable
}

// countProductMentions tallies mentions per catalog product. Mentions of
// products outside the catalog are ignored rather than counted or rejected.
func countProductMentions(records []types.ClassifiedPost, cat *catalog.Catalog) map[string]int {
	counts := make(map[string]int, len(cat.Products()))
	for _, p := range cat.Products() {
		counts[p.ID] = 0
	}
	for _, r := range records {
		for _, id := range r.Classification.ProductMentions {
			if cat.KnownProduct(id) {
				counts[id]++
			}
		}
	}
	return counts
}

// countStrategic tallies records per strategic category. EXECUTION_ISSUE,
// ROUTINE_NEGATIVE, and NEUTRAL_MENTION carry no executive weight and are not
// tallied; influencer mentions are counted regardless of category.
func countStrategic(records []types.ClassifiedPost) StrategicTally {
	var tally StrategicTally
	for _, r := range records {
		switch r.Classification.StrategicCategory {
		case types.CategoryStrategicWin:
			tally.StrategicWins++
		case types.CategoryAdoptionSignal:
			tally.AdoptionSignals++
		case types.CategoryCriticalFUD:
			tally.CriticalFUD++
		case types.CategoryAffiliateViolation:
			tally.AffiliateViolations++
		}
		if r.Classification.IsInfluencer {
			tally.InfluencerMentions++
		}
	}
	return tally
}
