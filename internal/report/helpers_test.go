package report

import (
	"brandpulse/internal/types"
)

// makeRecord builds a minimal classified post for tests. Callers mutate the
// returned value for scenario-specific fields.
func makeRecord(id string, sentiment types.Sentiment, confidence int) types.ClassifiedPost {
	return types.ClassifiedPost{
		Post: types.Post{
			ID:             id,
			URL:            "https://x.com/user_" + id + "/status/" + id,
			AuthorUsername: "user_" + id,
			Text:           "post " + id,
		},
		Classification: types.Classification{
			Sentiment:         sentiment,
			Confidence:        confidence,
			Urgency:           types.UrgencyLow,
			StrategicCategory: types.CategoryNeutralMention,
		},
	}
}
