package classify

import (
	"time"

	"github.com/sirupsen/logrus"

	"brandpulse/internal/types"
)

const summaryFallbackLen = 100

// coerce turns a raw model answer into a Classification whose every enum
// field is valid. Invalid or missing values fall back to neutral defaults
// and are logged, never propagated. This is the only constructor of
// Classification values in the program.
func coerce(raw rawAnalysis, post types.Post, log *logrus.Entry) types.Classification {
	cl := types.Classification{
		Sentiment:           types.Sentiment(raw.Sentiment),
		Intent:              types.Intent(raw.Intent),
		ProductMentions:     orEmpty(raw.ProductMentions),
		Themes:              orEmpty(raw.Themes),
		NegativePatterns:    orEmpty(raw.NegativePatterns),
		CriticalKeywords:    orEmpty(raw.CriticalKeywords),
		Urgency:             types.Urgency(raw.Urgency),
		Actionable:          raw.Actionable,
		Summary:             raw.Summary,
		CompetitiveMentions: orEmpty(raw.CompetitiveMentions),
		IsViral:             raw.IsViral,
		IsInfluencer:        raw.IsInfluencer,
		StrategicCategory:   types.StrategicCategory(raw.StrategicCategory),
		AnalyzedAt:          time.Now().UTC(),
	}

	if !cl.Sentiment.Valid() {
		if raw.Sentiment != "" {
			log.WithField("value", raw.Sentiment).Warn("invalid sentiment, defaulting to NEUTRAL")
		}
		cl.Sentiment = types.SentimentNeutral
	}
	if !cl.Intent.Valid() {
		if raw.Intent != "" {
			log.WithField("value", raw.Intent).Warn("invalid intent, defaulting to GENERAL_MENTION")
		}
		cl.Intent = types.IntentGeneralMention
	}
	if !cl.Urgency.Valid() {
		if raw.Urgency != "" {
			log.WithField("value", raw.Urgency).Warn("invalid urgency, defaulting to LOW")
		}
		cl.Urgency = types.UrgencyLow
	}
	if !cl.StrategicCategory.Valid() {
		if raw.StrategicCategory != "" {
			log.WithField("value", raw.StrategicCategory).Warn("invalid strategic category, defaulting to NEUTRAL_MENTION")
		}
		cl.StrategicCategory = types.CategoryNeutralMention
	}

	cl.Confidence = 50
	if raw.Confidence != nil {
		cl.Confidence = clamp(int(*raw.Confidence), 0, 100)
	}

	if cl.Summary == "" {
		cl.Summary = summaryFromText(post.Text)
	}

	return cl
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func summaryFromText(text string) string {
	runes := []rune(text)
	if len(runes) <= summaryFallbackLen {
		return text
	}
	return string(runes[:summaryFallbackLen]) + "..."
}
