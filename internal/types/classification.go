package types

import "time"

type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
	SentimentMixed    Sentiment = "MIXED"
)

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral, SentimentMixed:
		return true
	}
	return false
}

type Intent string

const (
	IntentPraise                Intent = "PRAISE"
	IntentFeatureRequest        Intent = "FEATURE_REQUEST"
	IntentComplaint             Intent = "COMPLAINT"
	IntentQuestion              Intent = "QUESTION"
	IntentGeneralMention        Intent = "GENERAL_MENTION"
	IntentCompetitiveComparison Intent = "COMPETITIVE_COMPARISON"
	IntentAirdropFUD            Intent = "AIRDROP_FUD"
	IntentScamAccusation        Intent = "SCAM_ACCUSATION"
	IntentSubscriptionComplaint Intent = "SUBSCRIPTION_COMPLAINT"
	IntentExecutionComplaint    Intent = "EXECUTION_COMPLAINT"
	IntentAffiliateViolation    Intent = "AFFILIATE_VIOLATION"
	IntentSpam                  Intent = "SPAM"
)

func (i Intent) Valid() bool {
	switch i {
	case IntentPraise, IntentFeatureRequest, IntentComplaint, IntentQuestion,
		IntentGeneralMention, IntentCompetitiveComparison, IntentAirdropFUD,
		IntentScamAccusation, IntentSubscriptionComplaint, IntentExecutionComplaint,
		IntentAffiliateViolation, IntentSpam:
		return true
	}
	return false
}

type Urgency string

const (
	UrgencyLow    Urgency = "LOW"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyHigh   Urgency = "HIGH"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	}
	return false
}

// Rank orders urgencies for sorting: HIGH sorts before MEDIUM before LOW.
// Unknown values sort last.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyHigh:
		return 0
	case UrgencyMedium:
		return 1
	case UrgencyLow:
		return 2
	}
	return 3
}

type StrategicCategory string

const (
	CategoryStrategicWin       StrategicCategory = "STRATEGIC_WIN"
	CategoryAdoptionSignal     StrategicCategory = "ADOPTION_SIGNAL"
	CategoryCriticalFUD        StrategicCategory = "CRITICAL_FUD"
	CategoryAffiliateViolation StrategicCategory = "AFFILIATE_VIOLATION"
	CategoryExecutionIssue     StrategicCategory = "EXECUTION_ISSUE"
	CategoryRoutineNegative    StrategicCategory = "ROUTINE_NEGATIVE"
	CategoryNeutralMention     StrategicCategory = "NEUTRAL_MENTION"
)

func (c StrategicCategory) Valid() bool {
	switch c {
	case CategoryStrategicWin, CategoryAdoptionSignal, CategoryCriticalFUD,
		CategoryAffiliateViolation, CategoryExecutionIssue, CategoryRoutineNegative,
		CategoryNeutralMention:
		return true
	}
	return false
}

type Trend string

const (
	TrendImproving Trend = "IMPROVING"
	TrendDeclining Trend = "DECLINING"
	TrendStable    Trend = "STABLE"
)

// Classification is the validated result of classifying one post. Instances
// are only produced by the classifier's coercion step, so downstream code can
// rely on every enum field holding a valid value.
type Classification struct {
	Sentiment           Sentiment         `json:"sentiment"`
	Confidence          int               `json:"confidence"`
	Intent              Intent            `json:"intent"`
	ProductMentions     []string          `json:"product_mentions"`
	Themes              []string          `json:"themes"`
	NegativePatterns    []string          `json:"negative_patterns"`
	CriticalKeywords    []string          `json:"critical_keywords"`
	Urgency             Urgency           `json:"urgency"`
	Actionable          bool              `json:"actionable"`
	Summary             string            `json:"summary"`
	CompetitiveMentions []string          `json:"competitive_mentions"`
	IsViral             bool              `json:"is_viral"`
	IsInfluencer        bool              `json:"is_influencer"`
	StrategicCategory   StrategicCategory `json:"strategic_category"`
	AnalyzedAt          time.Time         `json:"analyzed_at"`
}

// APICost is the model-usage share attributed to a single record.
type APICost struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	EstimatedUSD float64 `json:"estimated_cost_usd"`
}

// ClassifiedPost pairs a post with its classification. Records served from
// the cache look identical to records classified over the network, except
// that their cost is zero.
type ClassifiedPost struct {
	Post           Post           `json:"original_post"`
	Classification Classification `json:"classification"`
	Cost           APICost        `json:"api_cost"`
	FromCache      bool           `json:"from_cache,omitempty"`
}
