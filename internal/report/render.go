package report

import (
	"fmt"
	"strings"

	"brandpulse/internal/types"
)

// Format selects the rendering target. The same renderer feeds both the
// report's own text fields (plain) and the chat notifier (Slack markup), so
// the two outputs can never drift apart structurally.
type Format int

const (
	FormatPlain Format = iota
	FormatSlack
)

// DefaultDetailCeiling is the hard length cap on the detail message,
// including the truncation marker.
const DefaultDetailCeiling = 40000

const truncationMarker = "\n\n... (truncated)"

type style struct {
	divider string
	link    func(url, username string) string
}

func styleFor(f Format) style {
	if f == FormatSlack {
		return style{
			divider: strings.Repeat("━", 20),
			link: func(url, username string) string {
				return fmt.Sprintf("<%s|@%s>", url, username)
			},
		}
	}
	return style{
		divider: strings.Repeat("-", 20),
		link: func(url, username string) string {
			return fmt.Sprintf("@%s (%s)", username, url)
		},
	}
}

func trendGlyph(t types.Trend) string {
	switch t {
	case types.TrendImproving:
		return "↗️"
	case types.TrendDeclining:
		return "↘️"
	}
	return "→"
}

func urgencyGlyph(u types.Urgency) string {
	switch u {
	case types.UrgencyHigh:
		return "🚨"
	case types.UrgencyMedium:
		return "⚠️"
	}
	return "ℹ️"
}

// Renderer produces the two report messages from RawData. It is stateless
// and side-effect free: the same input always renders the same text.
type Renderer struct {
	brand         string
	productLabels []ProductLabel
	detailCeiling int
}

// ProductLabel pairs a catalog product ID with its display label for the
// product-mentions section.
type ProductLabel struct {
	ID    string
	Label string
}

// NewRenderer builds a renderer for the given brand name and product display
// order. A ceiling of 0 means DefaultDetailCeiling.
func NewRenderer(brand string, products []ProductLabel, ceiling int) *Renderer {
	if ceiling <= 0 {
		ceiling = DefaultDetailCeiling
	}
	return &Renderer{brand: brand, productLabels: products, detailCeiling: ceiling}
}

// Summary renders the terse headline message.
func (r *Renderer) Summary(raw RawData, meta Metadata, f Format) string {
	st := styleFor(f)
	s := raw.Summary

	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s Daily Sentiment Report\n", r.brand)
	b.WriteString(st.divider + "\n")
	if meta.DateRange != "" {
		fmt.Fprintf(&b, "📅 %s\n", meta.DateRange)
	}
	fmt.Fprintf(&b, "Total Posts: %d\n", s.Total)
	fmt.Fprintf(&b, "💚 Positive: %d (%.0f%%)\n", s.PositiveCount, s.PositivePct)
	fmt.Fprintf(&b, "❌ Negative: %d (%.0f%%)\n", s.NegativeCount, s.NegativePct)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Overall Sentiment: %.0f/100 %s", s.SentimentScore, trendGlyph(s.Trend))

	if alerts := raw.Strategic.CriticalFUD + raw.Strategic.AffiliateViolations; raw.Strategic.CriticalFUD > 5 || raw.Strategic.AffiliateViolations > 0 {
		fmt.Fprintf(&b, "\n\n⚠️ %d critical issues detected - see detail for specifics", alerts)
	}
	return b.String()
}

// Detail renders the sectioned drill-down message, capped at the configured
// ceiling (marker included).
func (r *Renderer) Detail(raw RawData, meta Metadata, f Format) string {
	st := styleFor(f)
	var sections []string

	// Product mentions
	var pm strings.Builder
	pm.WriteString("📱 KEY PRODUCT MENTIONS\n" + st.divider)
	for _, p := range r.productLabels {
		fmt.Fprintf(&pm, "\n• %s: %d posts", p.Label, raw.ProductMentions[p.ID])
	}
	sections = append(sections, pm.String())

	// Themes
	sections = append(sections,
		"✅ TLDR POSITIVE SENTIMENTS\n"+renderThemes(raw.PositiveThemes, st, false))
	sections = append(sections,
		"⚠️ TLDR NEGATIVE SENTIMENTS\n"+renderThemes(raw.NegativeThemes, st, true))

	// Strategic highlights, only when there is something to say
	if raw.Strategic.Any() {
		var sh strings.Builder
		sh.WriteString("🎯 STRATEGIC HIGHLIGHTS")
		if raw.Strategic.StrategicWins > 0 {
			fmt.Fprintf(&sh, "\n• %d Strategic Wins 🎉", raw.Strategic.StrategicWins)
		}
		if raw.Strategic.AdoptionSignals > 0 {
			fmt.Fprintf(&sh, "\n• %d Adoption Signals 📈", raw.Strategic.AdoptionSignals)
		}
		if raw.Strategic.InfluencerMentions > 0 {
			fmt.Fprintf(&sh, "\n• %d Influencer Mentions 👤", raw.Strategic.InfluencerMentions)
		}
		if raw.Strategic.CriticalFUD > 0 {
			fmt.Fprintf(&sh, "\n• ⚠️ %d Critical FUD alerts", raw.Strategic.CriticalFUD)
		}
		if raw.Strategic.AffiliateViolations > 0 {
			fmt.Fprintf(&sh, "\n• 🚨 %d Affiliate Violations", raw.Strategic.AffiliateViolations)
		}
		sections = append(sections, sh.String())
	}

	// Full listings
	sections = append(sections, fmt.Sprintf("✅ Positive posts (Total: %d)\n%s",
		len(raw.AllPositive), renderPostList(raw.AllPositive, st)))
	sections = append(sections, fmt.Sprintf("⚠️ Negative posts (Total: %d)\n%s",
		len(raw.AllNegative), renderPostList(raw.AllNegative, st)))

	// Phrase analysis
	sections = append(sections, "🚨 NEGATIVE PHRASE ANALYSIS\n"+renderPhrases(raw.NegativePhrases, st))

	// Footer
	sections = append(sections, fmt.Sprintf("📊 Generated at %s | Cost: $%.4f",
		meta.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"), meta.TotalAPICost))

	detail := strings.Join(sections, "\n\n"+st.divider+"\n")
	return truncate(detail, r.detailCeiling)
}

// Messages renders both tiers at once.
func (r *Renderer) Messages(raw RawData, meta Metadata, f Format) (summary, detail string) {
	return r.Summary(raw, meta, f), r.Detail(raw, meta, f)
}

// EmptySummary and EmptyDetail are the canonical texts for a run that found
// no posts.
func (r *Renderer) EmptySummary(meta Metadata) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s Daily Sentiment Report\n", r.brand)
	b.WriteString(strings.Repeat("-", 20) + "\n")
	if meta.DateRange != "" {
		fmt.Fprintf(&b, "📅 %s\n", meta.DateRange)
	}
	b.WriteString("No posts to analyze")
	return b.String()
}

func (r *Renderer) EmptyDetail() string {
	return "No posts available for analysis."
}

func renderThemes(groups []ThemeGroup, st style, withUrgency bool) string {
	if len(groups) == 0 {
		if withUrgency {
			return "No significant negative sentiments this period."
		}
		return "No significant positive sentiments this period."
	}
	var lines []string
	for _, g := range groups {
		links := make([]string, 0, len(g.Examples))
		for _, ex := range g.Examples {
			links = append(links, st.link(ex.URL, ex.Username))
		}
		examples := "No examples"
		if len(links) > 0 {
			examples = strings.Join(links, " ")
		}
		if withUrgency {
			lines = append(lines, fmt.Sprintf("• %s %s", urgencyGlyph(g.Urgency), g.Description))
		} else {
			lines = append(lines, fmt.Sprintf("• %s", g.Description))
		}
		lines = append(lines, fmt.Sprintf("  Examples: %s", examples))
	}
	return strings.Join(lines, "\n")
}

func renderPostList(refs []PostRef, st style) string {
	if len(refs) == 0 {
		return "None"
	}
	lines := make([]string, 0, len(refs))
	for _, ref := range refs {
		lines = append(lines, "• "+st.link(ref.URL, ref.Username))
	}
	return strings.Join(lines, "\n")
}

func renderPhrases(phrases []Phrase, st style) string {
	if len(phrases) == 0 {
		return "No qualifying negative phrases detected in this period."
	}
	var lines []string
	for _, p := range phrases {
		lines = append(lines,
			fmt.Sprintf("• Phrase: %q", p.Phrase),
			fmt.Sprintf("  Handle: @%s", p.Username),
			fmt.Sprintf("  Category: %s", p.Category),
			fmt.Sprintf("  URL: %s", st.link(p.URL, p.Username)),
			"")
	}
	return strings.Join(lines, "\n")
}

// truncate caps s at ceiling characters including the marker. Counting is in
// runes so a cut never splits a multi-byte character.
func truncate(s string, ceiling int) string {
	runes := []rune(s)
	if len(runes) <= ceiling {
		return s
	}
	marker := []rune(truncationMarker)
	keep := ceiling - len(marker)
	if keep < 0 {
		keep = 0
		marker = marker[:ceiling]
	}
	return string(runes[:keep]) + string(marker)
}
