package classify

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandpulse/internal/cache"
	"brandpulse/internal/types"
)

type stubMessages struct {
	responses []string
	errs      []error
	calls     int
}

func (s *stubMessages) New(_ context.Context, _ anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	text := "[]"
	if i < len(s.responses) {
		text = s.responses[i]
	}
	return &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{{Text: text}},
		Usage:   anthropic.Usage{InputTokens: 1000, OutputTokens: 500},
	}, nil
}

func stubClassifier(stub *stubMessages, c *cache.Cache) *Classifier {
	return &Classifier{
		messages:  stub,
		model:     defaultModel,
		batchSize: defaultBatchSize,
		cache:     c,
		log:       testLog(),
	}
}

func post(id string) types.Post {
	return types.Post{
		ID:             id,
		Text:           "post " + id,
		AuthorUsername: "user_" + id,
		URL:            "https://x.com/user_" + id + "/status/" + id,
		CreatedAt:      time.Now().UTC(),
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Options{}, testLog())
	assert.Error(t, err)

	c, err := New(Options{APIKey: "sk-test"}, testLog())
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestClassifyAllEmptyInput(t *testing.T) {
	results, stats, err := stubClassifier(&stubMessages{}, nil).ClassifyAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, stats.TotalCostUSD)
}

func TestClassifyAllSingleBatch(t *testing.T) {
	stub := &stubMessages{responses: []string{`[
		{"sentiment": "POSITIVE", "confidence": 90, "intent": "PRAISE", "strategic_category": "STRATEGIC_WIN"},
		{"sentiment": "NEGATIVE", "confidence": 80, "intent": "COMPLAINT", "strategic_category": "ROUTINE_NEGATIVE"}
	]`}}

	results, stats, err := stubClassifier(stub, nil).ClassifyAll(
		context.Background(), []types.Post{post("1"), post("2")})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, types.SentimentPositive, results[0].Classification.Sentiment)
	assert.Equal(t, types.SentimentNegative, results[1].Classification.Sentiment)
	assert.False(t, results[0].FromCache)

	// 1000 in at $3/MTok + 500 out at $15/MTok
	assert.InDelta(t, 0.0105, stats.TotalCostUSD, 1e-6)
	assert.Equal(t, 1000, stats.InputTokens)
	assert.Equal(t, 500, stats.OutputTokens)
	// Batch cost is split across its posts
	assert.Equal(t, 500, results[0].Cost.InputTokens)
	assert.InDelta(t, 0.00525, results[0].Cost.EstimatedUSD, 1e-6)
}

func TestClassifyAllShortResponsePadsDefaults(t *testing.T) {
	// Model answered for one post out of two
	stub := &stubMessages{responses: []string{`[{"sentiment": "POSITIVE", "confidence": 90}]`}}

	results, _, err := stubClassifier(stub, nil).ClassifyAll(
		context.Background(), []types.Post{post("1"), post("2")})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, types.SentimentPositive, results[0].Classification.Sentiment)
	assert.Equal(t, types.SentimentNeutral, results[1].Classification.Sentiment)
	assert.Equal(t, 50, results[1].Classification.Confidence)
}

func TestClassifyAllUnparseableResponseCoercesDefaults(t *testing.T) {
	stub := &stubMessages{responses: []string{"sorry, I cannot help with that"}}

	results, _, err := stubClassifier(stub, nil).ClassifyAll(
		context.Background(), []types.Post{post("1")})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, types.SentimentNeutral, results[0].Classification.Sentiment)
	assert.Equal(t, types.CategoryNeutralMention, results[0].Classification.StrategicCategory)
}

func TestClassifyAllRetriesTransientErrors(t *testing.T) {
	stub := &stubMessages{
		errs:      []error{errors.New("overloaded"), nil},
		responses: []string{"", `[{"sentiment": "POSITIVE", "confidence": 90}]`},
	}

	results, _, err := stubClassifier(stub, nil).ClassifyAll(
		context.Background(), []types.Post{post("1")})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2, stub.calls)
}

func TestClassifyAllAuthErrorIsPermanent(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, "https://api.anthropic.com/v1/messages", nil)
	require.NoError(t, err)
	stub := &stubMessages{errs: []error{&anthropic.Error{
		StatusCode: 401,
		Request:    req,
		Response:   &http.Response{StatusCode: 401},
	}}}

	_, _, err = stubClassifier(stub, nil).ClassifyAll(
		context.Background(), []types.Post{post("1")})

	assert.Error(t, err)
	// No retry after an auth failure
	assert.Equal(t, 1, stub.calls)
}

func TestClassifyAllServesCacheHits(t *testing.T) {
	c := cache.Open(t.TempDir()+"/cache.json", testLog())
	c.Put("1", types.Classification{Sentiment: types.SentimentPositive, Confidence: 95})

	stub := &stubMessages{responses: []string{`[{"sentiment": "NEGATIVE", "confidence": 80}]`}}
	results, stats, err := stubClassifier(stub, c).ClassifyAll(
		context.Background(), []types.Post{post("1"), post("2")})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, stats.CacheHits)
	assert.True(t, results[0].FromCache)
	assert.Equal(t, types.APICost{}, results[0].Cost)
	assert.False(t, results[1].FromCache)

	// The fresh classification lands in the cache for next time
	got, ok := c.Get("2")
	require.True(t, ok)
	assert.Equal(t, types.SentimentNegative, got.Sentiment)
}

func TestClassifyAllCostLimitSkipsRemainingBatches(t *testing.T) {
	stub := &stubMessages{responses: []string{
		`[{"sentiment": "POSITIVE", "confidence": 90}]`,
		`[{"sentiment": "POSITIVE", "confidence": 90}]`,
	}}
	cl := stubClassifier(stub, nil)
	cl.batchSize = 1
	cl.costLimit = 0.005 // below one batch's cost

	results, stats, err := cl.ClassifyAll(
		context.Background(), []types.Post{post("1"), post("2")})

	require.NoError(t, err)
	// First batch lands, then the limit stops the run
	assert.Len(t, results, 1)
	assert.Equal(t, 1, stats.Batches)
	assert.Equal(t, 1, stub.calls)
}
