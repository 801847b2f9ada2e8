package classify

import (
	"fmt"
	"strings"

	"brandpulse/internal/types"
)

const systemPrompt = `You are an expert social media sentiment analysis agent for brand monitoring. The monitored brand is an analytics and trading platform with multiple products:

PRODUCTS:
1. Mobile App - iOS/Android app for on-the-go analytics and trading
2. Season 2 Rewards - Loyalty program with points, leaderboards, staking rewards
3. Trading - Agentic onchain execution with AI-powered routing
4. AI Insights - AI-driven signals, trade recommendations, market analysis
5. Points - Reward system for staking tokens and making spot trades

CRITICAL FUD PATTERNS:
- Airdrop farming accusations
- Scam/fraud/rugpull claims
- Execution failures (slippage, front-running, bad fills)
- Fee complaints and misrepresentation
- Guaranteed returns promises (affiliate violation)
- Financial advice claims (affiliate violation)
- Subscription pricing complaints
- Platform reliability issues

Your mission: Identify strategic wins, adoption signals, and critical reputation risks across all products.`

// buildUserPrompt assembles the batch classification prompt. The enumerated
// values must stay in sync with the types and catalog packages: the coercion
// step treats anything outside these lists as invalid.
func buildUserPrompt(posts []types.Post) string {
	return fmt.Sprintf(`Analyze these %d posts for brand monitoring across ALL products.

For EACH post, provide detailed multi-product classification:

=== CORE SENTIMENT ===
1. sentiment: POSITIVE, NEGATIVE, NEUTRAL, MIXED
2. confidence: 0-100

=== INTENT CLASSIFICATION ===
3. intent: Choose ONE primary intent:
   - PRAISE
   - FEATURE_REQUEST
   - COMPLAINT
   - QUESTION
   - GENERAL_MENTION
   - COMPETITIVE_COMPARISON
   - AIRDROP_FUD
   - SCAM_ACCUSATION
   - SUBSCRIPTION_COMPLAINT
   - EXECUTION_COMPLAINT
   - AFFILIATE_VIOLATION (guaranteed returns, financial advice, unrealistic claims)
   - SPAM

=== PRODUCT MENTIONS ===
4. product_mentions: Array of products mentioned (can be multiple):
   - "mobile_app" - Keywords: mobile app, ios, android, app store, play store, mobile UI, on the go, mobile alerts, mobile trading
   - "season2_rewards" - Keywords: season 2, S2, points, rewards, leaderboard, loyalty program, point farming, season rewards
   - "trading" - Keywords: trading, agentic trading, onchain execution, swap, exchange
   - "ai_insights" - Keywords: AI signals, AI-powered, AI insights, AI recommendations, AI analysis, smart execution
   - "points_program" - Keywords: staking rewards, trading rewards, earn points, point multiplier, spot trade rewards, stake tokens

=== THEMATIC ANALYSIS ===
5. themes: Array of themes (can include multiple). Choose from:

   POSITIVE STRATEGIC THEMES:
   - "mobile_as_future" - Revolutionary mobile trading
   - "mobile_adoption" - First-time users, app downloads
   - "competitive_advantage" - Better than competitors
   - "season2_engagement" - Love for S2 points/rewards
   - "roi_confirmation" - Profitable trades, value confirmation
   - "mobile_app_praise" - Positive UX/performance
   - "trading_execution_praise" - Great fills, routing, speed
   - "ai_insights_praise" - Accurate signals, helpful AI
   - "points_earning_success" - Successfully earning/staking points
   - "seamless_experience" - Easy onboarding, smooth UX
   - "trust_security" - Platform reliability, security praise

   NEGATIVE CRITICAL THEMES:
   - "airdrop_expectations" - Token/airdrop speculation
   - "scam_accusations" - Fraud/rugpull/ponzi claims
   - "subscription_revolt" - Cancellations, too expensive
   - "execution_failures" - Slippage, failed trades, bad fills, delays
   - "fee_complaints" - High fees, hidden fees, fee misrepresentation
   - "guaranteed_returns_claims" - Affiliate violation: profit promises
   - "financial_advice_claims" - Affiliate violation: buy/sell recommendations
   - "speed_price_guarantees" - Affiliate violation: unrealistic execution claims
   - "platform_failures" - Downtime, login issues, data errors
   - "ai_signal_failures" - Wrong signals, contradictory AI advice
   - "mobile_app_bugs" - Crashes, technical issues
   - "season2_complaints" - Points system issues
   - "points_earning_issues" - Problems with staking/trading rewards
   - "competitive_disadvantage" - Worse than alternatives

=== CRITICAL NEGATIVE PATTERNS (DETAILED DETECTION) ===
6. negative_patterns: Array of specific violations found (for negative posts only):

   EXECUTION ISSUES:
   - "bad_execution" - terrible execution, poor fills
   - "slippage" - slippage complaints
   - "front_running" - front-run accusations
   - "failed_trades" - failed tx, trade failures

   FEE ISSUES:
   - "high_fees" - fees too expensive
   - "hidden_fees" - undisclosed fees

   AFFILIATE VIOLATIONS:
   - "guaranteed_profits" - risk-free, guaranteed returns
   - "financial_advice" - buy/sell recommendations
   - "guaranteed_speed" - instant execution always, zero slippage guaranteed
   - "guaranteed_pricing" - best price guaranteed always

   SCAM/FRAUD:
   - "scam_accusation" - scam, fraud, ponzi
   - "rugpull" - rug pull accusations
   - "manipulation" - price manipulation, front-running by the platform

   PLATFORM:
   - "platform_down" - service outages
   - "login_issues" - can't access
   - "data_errors" - wrong data, contradictory signals

   SUBSCRIPTION:
   - "too_expensive" - pricing complaints
   - "canceling" - unsubscribing

=== CRITICAL KEYWORDS ===
7. critical_keywords: Array of exact concerning phrases found (for negative posts):
   - Extract phrases matching: airdrop, farm, farming, token, scam, rugpull, ponzi, fraud, slippage, front-run, guaranteed profits, financial advice

=== URGENCY & ACTIONABILITY ===
8. urgency: LOW, MEDIUM, HIGH
   - HIGH: Scam accusations, platform failures preventing use, viral negative, affiliate violations
   - MEDIUM: Execution failures, fee complaints, subscription cancellations
   - LOW: Feature requests, minor bugs, general questions

9. actionable: true/false
   - true: Requires immediate team response (scam claims, platform failures, affiliate violations, viral negative)
   - false: Routine monitoring

=== ADDITIONAL CONTEXT ===
10. summary: One clear sentence capturing the post's essence
11. competitive_mentions: Array of competitors mentioned
12. is_viral: true/false (engagement > 100 OR author followers > 10k)
13. is_influencer: true/false (author followers > 50k OR verified account)

=== STRATEGIC CATEGORIZATION ===
14. strategic_category: Executive-level classification:
   - "STRATEGIC_WIN" - Major validation, viral praise, competitive advantage
   - "ADOPTION_SIGNAL" - New users, app downloads, first trades
   - "CRITICAL_FUD" - Scam accusations, platform failures, viral negative
   - "AFFILIATE_VIOLATION" - Guaranteed returns, financial advice, unrealistic claims
   - "EXECUTION_ISSUE" - Trading quality problems
   - "ROUTINE_NEGATIVE" - Minor complaints
   - "NEUTRAL_MENTION" - Generic reference

=== OUTPUT FORMAT ===
Respond with ONLY a valid JSON array containing one object per post with ALL fields above.

Posts to analyze:
%s

NO MARKDOWN. PURE JSON ARRAY ONLY.`, len(posts), formatPosts(posts))
}

func formatPosts(posts []types.Post) string {
	var b strings.Builder
	for i, p := range posts {
		verified := ""
		if p.IsVerified {
			verified = " [verified]"
		}
		fmt.Fprintf(&b, "Post %d:\n", i+1)
		fmt.Fprintf(&b, "Text: %s\n", p.Text)
		fmt.Fprintf(&b, "Author: @%s (%d followers)%s\n", p.AuthorUsername, p.AuthorFollowers, verified)
		fmt.Fprintf(&b, "Engagement: %d likes, %d reposts, %d replies (Total: %d)\n",
			p.Engagement.Likes, p.Engagement.Reposts, p.Engagement.Replies, p.Engagement.Total)
		fmt.Fprintf(&b, "URL: %s\n", p.URL)
		fmt.Fprintf(&b, "Created: %s\n\n", p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"))
	}
	return strings.TrimRight(b.String(), "\n")
}
