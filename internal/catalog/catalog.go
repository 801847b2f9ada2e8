// Package catalog holds the static classification tables: theme descriptions,
// pattern/theme to alert-category mappings, and the product catalog. The
// tables are built once and never mutated; components receive the catalog by
// reference instead of reaching for package globals.
package catalog

import "strings"

const (
	// GeneralTheme is the bucket for records the classifier left themeless.
	GeneralTheme = "general"
	// UnknownTheme labels phrase entries whose record carried no themes.
	UnknownTheme = "unknown"
	// CategoryGeneral is the fallback alert category when neither a negative
	// pattern nor the primary theme maps to anything more specific.
	CategoryGeneral = "[GENERAL]"
)

// Product is one entry of the fixed product catalog.
type Product struct {
	ID    string
	Label string
}

// Catalog is the immutable lookup table set.
type Catalog struct {
	themeDescriptions map[string]string
	alertCategories   map[string]string
	products          []Product
}

// New builds the catalog. The tables double as the contract with the
// classifier prompt: every theme and pattern the prompt enumerates has an
// entry here.
func New() *Catalog {
	return &Catalog{
		themeDescriptions: map[string]string{
			// Positive
			"mobile_as_future":        "Users highlighting the mobile app as revolutionary for trading",
			"mobile_adoption":         "New users downloading and onboarding to the mobile app",
			"competitive_advantage":   "Comparing the platform favorably against competitors",
			"season2_engagement":      "High engagement with Season 2 points and rewards",
			"roi_confirmation":        "Users confirming profitable trades and platform value",
			"trading_execution_praise": "Positive feedback on execution quality and speed",
			"ai_insights_praise":      "Praise for AI signal accuracy and helpfulness",
			"points_earning_success":  "Successfully earning points through staking and trading",
			"seamless_experience":     "Easy onboarding and smooth user experience",
			"trust_security":          "Platform reliability and security praise",
			"mobile_app_praise":       "Positive feedback on mobile app UX and performance",
			// Negative
			"airdrop_expectations":      "Speculation about a platform token or airdrop farming",
			"scam_accusations":          "Fraud, scam, or rugpull accusations",
			"execution_failures":        "Complaints about slippage, bad fills, or execution quality",
			"subscription_revolt":       "Cancellations or pricing complaints",
			"fee_complaints":            "Concerns about high or hidden fees",
			"guaranteed_returns_claims": "Affiliate violation: users claiming guaranteed profits",
			"financial_advice_claims":   "Affiliate violation: financial advice or trade recommendations",
			"platform_failures":         "Technical issues, downtime, or login problems",
			"ai_signal_failures":        "Inaccurate or contradictory AI recommendations",
			"mobile_app_bugs":           "Crashes and technical issues with the mobile app",
			"season2_complaints":        "Issues with the Season 2 points system",
			"points_earning_issues":     "Problems with staking or trading rewards",
			"competitive_disadvantage":  "Comparisons showing the platform worse than alternatives",
			"speed_price_guarantees":    "Affiliate violation: unrealistic execution claims",
		},
		alertCategories: map[string]string{
			"airdrop_expectations":      "[AIRDROP]",
			"scam_accusations":          "[SCAM]",
			"scam_accusation":           "[SCAM]",
			"rugpull":                   "[SCAM]",
			"manipulation":              "[SCAM]",
			"execution_failures":        "[EXECUTION]",
			"bad_execution":             "[EXECUTION]",
			"slippage":                  "[EXECUTION]",
			"front_running":             "[EXECUTION]",
			"failed_trades":             "[EXECUTION]",
			"subscription_revolt":       "[SUBSCRIPTIONS]",
			"too_expensive":             "[SUBSCRIPTIONS]",
			"canceling":                 "[SUBSCRIPTIONS]",
			"ai_signal_failures":        "[AI-INSIGHTS]",
			"data_errors":               "[AI-INSIGHTS]",
			"platform_failures":         "[PLATFORM]",
			"platform_down":             "[PLATFORM]",
			"login_issues":              "[PLATFORM]",
			"fee_complaints":            "[FEES]",
			"high_fees":                 "[FEES]",
			"hidden_fees":               "[FEES]",
			"guaranteed_returns_claims": "[AFFILIATE-VIOLATION]",
			"guaranteed_profits":        "[AFFILIATE-VIOLATION]",
			"financial_advice_claims":   "[AFFILIATE-VIOLATION]",
			"financial_advice":          "[AFFILIATE-VIOLATION]",
			"speed_price_guarantees":    "[AFFILIATE-VIOLATION]",
			"guaranteed_speed":          "[AFFILIATE-VIOLATION]",
			"guaranteed_pricing":        "[AFFILIATE-VIOLATION]",
			"mobile_app_bugs":           "[MOBILE]",
			"season2_complaints":        "[SEASON2]",
			"points_earning_issues":     "[POINTS]",
		},
		products: []Product{
			{ID: "mobile_app", Label: "Mobile App"},
			{ID: "season2_rewards", Label: "Season 2 / Rewards"},
			{ID: "trading", Label: "Trading"},
			{ID: "ai_insights", Label: "AI Insights"},
			{ID: "points_program", Label: "Points"},
		},
	}
}

// ThemeDescription returns the natural-language description for a theme,
// falling back to a humanized form of the identifier.
func (c *Catalog) ThemeDescription(theme string) string {
	if d, ok := c.themeDescriptions[theme]; ok {
		return d
	}
	return humanize(theme)
}

// KnownTheme reports whether the theme appears in the description table.
func (c *Catalog) KnownTheme(theme string) bool {
	_, ok := c.themeDescriptions[theme]
	return ok
}

// AlertCategory maps a record to its alert-category label. Negative patterns
// are checked first because they are more specific than themes; the primary
// theme is the fallback, and CategoryGeneral the last resort.
func (c *Catalog) AlertCategory(primaryTheme string, patterns []string) string {
	for _, p := range patterns {
		if cat, ok := c.alertCategories[p]; ok {
			return cat
		}
	}
	if cat, ok := c.alertCategories[primaryTheme]; ok {
		return cat
	}
	return CategoryGeneral
}

// Products returns the fixed product catalog in display order.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// KnownProduct reports whether the product ID is in the catalog. Unknown
// mentions are ignored by the tallies rather than counted or rejected.
func (c *Catalog) KnownProduct(id string) bool {
	for _, p := range c.products {
		if p.ID == id {
			return true
		}
	}
	return false
}

func humanize(theme string) string {
	words := strings.Split(theme, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
