package report

import (
	"sort"

	"brandpulse/internal/catalog"
	"brandpulse/internal/types"
)

// themeGroups keeps bucket membership plus first-occurrence order so that
// ranking ties break deterministically.
type themeGroups struct {
	buckets map[string][]types.ClassifiedPost
	order   []string
}

// groupByThemes buckets records by theme. A record with several themes lands
// in several buckets; a record with none lands in the "general" bucket.
func groupByThemes(records []types.ClassifiedPost) *themeGroups {
	g := &themeGroups{buckets: make(map[string][]types.ClassifiedPost)}
	for _, r := range records {
		themes := r.Classification.Themes
		if len(themes) == 0 {
			themes = []string{catalog.GeneralTheme}
		}
		for _, theme := range themes {
			if _, seen := g.buckets[theme]; !seen {
				g.order = append(g.order, theme)
			}
			g.buckets[theme] = append(g.buckets[theme], r)
		}
	}
	return g
}

// topThemes returns up to n theme names ranked by bucket size descending.
// The sort is stable over first-occurrence order, so equal counts keep the
// order in which the themes first appeared in the input.
func (g *themeGroups) topThemes(n int) []string {
	ranked := make([]string, len(g.order))
	copy(ranked, g.order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return len(g.buckets[ranked[i]]) > len(g.buckets[ranked[j]])
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func (g *themeGroups) members(theme string) []types.ClassifiedPost {
	return g.buckets[theme]
}

// themeUrgency is the max severity across a bucket: one HIGH member makes the
// whole theme HIGH.
func themeUrgency(records []types.ClassifiedPost) types.Urgency {
	urgency := types.UrgencyLow
	for _, r := range records {
		if r.Classification.Urgency.Rank() < urgency.Rank() {
			urgency = r.Classification.Urgency
		}
	}
	return urgency
}

// exampleRefs picks up to n example posts for a theme. Influencer posts
// always precede non-influencer posts; within each class, higher engagement
// wins. Stable, so equal keys keep input order.
func exampleRefs(records []types.ClassifiedPost, n int) []PostRef {
	ranked := make([]types.ClassifiedPost, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Classification.IsInfluencer != b.Classification.IsInfluencer {
			return a.Classification.IsInfluencer
		}
		return a.Post.Engagement.Total > b.Post.Engagement.Total
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	refs := make([]PostRef, 0, len(ranked))
	for _, r := range ranked {
		refs = append(refs, PostRef{
			URL:      r.Post.URL,
			Username: r.Post.AuthorUsername,
			Text:     r.Post.Text,
			Urgency:  r.Classification.Urgency,
		})
	}
	return refs
}

// buildThemeGroups assembles the ranked ThemeGroup slice for one partition.
// Urgency is only meaningful for the negative partition; callers pass
// withUrgency accordingly.
func buildThemeGroups(g *themeGroups, topN, examplesPer int, cat *catalog.Catalog, withUrgency bool) []ThemeGroup {
	top := g.topThemes(topN)
	groups := make([]ThemeGroup, 0, len(top))
	for _, theme := range top {
		members := g.members(theme)
		group := ThemeGroup{
			Theme:       theme,
			Count:       len(members),
			Description: cat.ThemeDescription(theme),
			Examples:    exampleRefs(members, examplesPer),
		}
		if withUrgency {
			group.Urgency = themeUrgency(members)
		}
		groups = append(groups, group)
	}
	return groups
}
