package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBatchPlainArray(t *testing.T) {
	content := `[
		{"sentiment": "POSITIVE", "confidence": 90, "intent": "PRAISE"},
		{"sentiment": "NEGATIVE", "confidence": 70, "intent": "COMPLAINT"}
	]`

	analyses, err := parseBatch(content)

	require.NoError(t, err)
	require.Len(t, analyses, 2)
	assert.Equal(t, "POSITIVE", analyses[0].Sentiment)
	require.NotNil(t, analyses[0].Confidence)
	assert.Equal(t, 90.0, *analyses[0].Confidence)
	assert.Equal(t, "COMPLAINT", analyses[1].Intent)
}

func TestParseBatchMarkdownFences(t *testing.T) {
	content := "```json\n[{\"sentiment\": \"NEUTRAL\"}]\n```"

	analyses, err := parseBatch(content)

	require.NoError(t, err)
	require.Len(t, analyses, 1)
	assert.Equal(t, "NEUTRAL", analyses[0].Sentiment)
}

func TestParseBatchSurroundingProse(t *testing.T) {
	content := `Here is the analysis you asked for:

[{"sentiment": "MIXED", "themes": ["fee_complaints"]}]

Let me know if you need anything else.`

	analyses, err := parseBatch(content)

	require.NoError(t, err)
	require.Len(t, analyses, 1)
	assert.Equal(t, []string{"fee_complaints"}, analyses[0].Themes)
}

func TestParseBatchBareObjectWrapped(t *testing.T) {
	// A single object with a nested array must parse as one element,
	// not as the nested array
	content := `{"sentiment": "NEGATIVE", "themes": ["scam_accusations", "fee_complaints"]}`

	analyses, err := parseBatch(content)

	require.NoError(t, err)
	require.Len(t, analyses, 1)
	assert.Equal(t, "NEGATIVE", analyses[0].Sentiment)
	assert.Len(t, analyses[0].Themes, 2)
}

func TestParseBatchMalformedElementSurvives(t *testing.T) {
	content := `[{"sentiment": "POSITIVE"}, {"sentiment": 42}]`

	analyses, err := parseBatch(content)

	require.NoError(t, err)
	require.Len(t, analyses, 2)
	assert.Equal(t, "POSITIVE", analyses[0].Sentiment)
	// The broken element decodes to the zero value and coerces downstream
	assert.Empty(t, analyses[1].Sentiment)
}

func TestParseBatchNoJSON(t *testing.T) {
	_, err := parseBatch("I could not analyze these posts.")
	assert.Error(t, err)
}
