package report

import (
	"sort"

	"brandpulse/internal/catalog"
	"brandpulse/internal/types"
)

// extractPhrases emits one entry per critical keyword found in the negative
// partition, mapped to an alert category via the catalog. The final list is
// ordered HIGH, MEDIUM, LOW; the sort is stable so repeated occurrences keep
// input order within a tier.
func extractPhrases(negative []types.ClassifiedPost, cat *catalog.Catalog) []Phrase {
	var phrases []Phrase

	for _, r := range negative {
		primaryTheme := catalog.UnknownTheme
		if len(r.Classification.Themes) > 0 {
			primaryTheme = r.Classification.Themes[0]
		}
		category := cat.AlertCategory(primaryTheme, r.Classification.NegativePatterns)

		for _, keyword := range r.Classification.CriticalKeywords {
			phrases = append(phrases, Phrase{
				Phrase:   keyword,
				Username: r.Post.AuthorUsername,
				Theme:    primaryTheme,
				Category: category,
				URL:      r.Post.URL,
				Urgency:  r.Classification.Urgency,
			})
		}
	}

	sort.SliceStable(phrases, func(i, j int) bool {
		return phrases[i].Urgency.Rank() < phrases[j].Urgency.Rank()
	})
	return phrases
}
