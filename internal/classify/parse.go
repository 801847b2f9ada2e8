package classify

import (
	"encoding/json"
	"fmt"
	"strings"
)

// rawAnalysis is the model's answer for one post before coercion. Fields are
// deliberately loose: the model occasionally returns a float confidence or
// omits arrays, and coercion deals with that rather than the decoder.
type rawAnalysis struct {
	Sentiment           string   `json:"sentiment"`
	Confidence          *float64 `json:"confidence"`
	Intent              string   `json:"intent"`
	ProductMentions     []string `json:"product_mentions"`
	Themes              []string `json:"themes"`
	NegativePatterns    []string `json:"negative_patterns"`
	CriticalKeywords    []string `json:"critical_keywords"`
	Urgency             string   `json:"urgency"`
	Actionable          bool     `json:"actionable"`
	Summary             string   `json:"summary"`
	CompetitiveMentions []string `json:"competitive_mentions"`
	IsViral             bool     `json:"is_viral"`
	IsInfluencer        bool     `json:"is_influencer"`
	StrategicCategory   string   `json:"strategic_category"`
}

// parseBatch extracts the JSON array from the model's text. Markdown fences
// and surrounding prose are tolerated; a bare object is wrapped into a
// one-element batch. Individual elements that fail to decode yield a zero
// rawAnalysis, so one malformed element cannot sink the batch.
func parseBatch(content string) ([]rawAnalysis, error) {
	cleaned := stripFences(content)

	payload, err := extractJSONArray(cleaned)
	if err != nil {
		return nil, err
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &elements); err != nil {
		return nil, fmt.Errorf("decode batch array: %w", err)
	}

	analyses := make([]rawAnalysis, len(elements))
	for i, el := range elements {
		// Best effort per element; the zero value coerces to safe defaults
		_ = json.Unmarshal(el, &analyses[i])
	}
	return analyses, nil
}

func stripFences(content string) string {
	cleaned := strings.TrimSpace(content)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}
	return cleaned
}

// extractJSONArray returns the outermost JSON array in s. When the payload
// is a bare object instead, it is wrapped in array brackets. Whichever opener
// appears first decides, so an array nested inside an object is not mistaken
// for the payload.
func extractJSONArray(s string) (string, error) {
	arrStart := strings.Index(s, "[")
	objStart := strings.Index(s, "{")

	if objStart >= 0 && (arrStart < 0 || objStart < arrStart) {
		end := strings.LastIndex(s, "}")
		if end > objStart {
			return "[" + s[objStart:end+1] + "]", nil
		}
		return "", fmt.Errorf("unterminated JSON object in model response")
	}
	if arrStart >= 0 {
		end := strings.LastIndex(s, "]")
		if end > arrStart {
			return s[arrStart : end+1], nil
		}
		return "", fmt.Errorf("unterminated JSON array in model response")
	}
	return "", fmt.Errorf("no JSON payload in model response")
}
