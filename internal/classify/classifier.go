// Package classify sends posts to the Anthropic API in batches and returns
// validated classifications. Cached posts skip the network entirely.
package classify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"brandpulse/internal/cache"
	"brandpulse/internal/types"
)

// Pricing per million tokens for the default model.
const (
	inputPricePerMTok  = 3.0
	outputPricePerMTok = 15.0
)

const (
	defaultModel      = anthropic.Model("claude-sonnet-4-5")
	defaultBatchSize  = 15
	maxResponseTokens = 8192
	batchPause        = time.Second
	retryWindow       = 2 * time.Minute
)

// messageCreator is the slice of the Anthropic client the classifier needs.
type messageCreator interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Options configures a Classifier.
type Options struct {
	APIKey string
	// Model overrides the default model ID.
	Model string
	// BatchSize is posts per API call. Zero means the default of 15.
	BatchSize int
	// CostLimitUSD stops classification once the run's spend reaches it.
	// Zero means no limit.
	CostLimitUSD float64
	// Cache is optional. Nil disables caching.
	Cache *cache.Cache
}

// Stats summarizes one classification run.
type Stats struct {
	CacheHits    int
	Batches      int
	InputTokens  int
	OutputTokens int
	TotalCostUSD float64
}

// Classifier classifies posts via the Anthropic messages API.
type Classifier struct {
	messages  messageCreator
	model     anthropic.Model
	batchSize int
	costLimit float64
	cache     *cache.Cache
	log       *logrus.Entry
}

// New builds a Classifier. The API key is required.
func New(opts Options, log *logrus.Entry) (*Classifier, error) {
	if opts.APIKey == "" {
		return nil, errors.New("anthropic API key is required")
	}
	model := defaultModel
	if opts.Model != "" {
		model = anthropic.Model(opts.Model)
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	client := anthropic.NewClient(option.WithAPIKey(opts.APIKey))
	return &Classifier{
		messages:  &client.Messages,
		model:     model,
		batchSize: batchSize,
		costLimit: opts.CostLimitUSD,
		cache:     opts.Cache,
		log:       log,
	}, nil
}

// ClassifyAll classifies every post, serving cache hits first and batching
// the rest. Posts whose batch fails after retries are dropped from the
// result rather than failing the run; a run-level error is returned only
// when nothing could be classified at all.
func (c *Classifier) ClassifyAll(ctx context.Context, posts []types.Post) ([]types.ClassifiedPost, Stats, error) {
	var stats Stats
	if len(posts) == 0 {
		return nil, stats, nil
	}

	results := make([]types.ClassifiedPost, 0, len(posts))
	var uncached []types.Post
	for _, p := range posts {
		if c.cache != nil {
			if cl, ok := c.cache.Get(p.ID); ok {
				results = append(results, types.ClassifiedPost{Post: p, Classification: cl, FromCache: true})
				stats.CacheHits++
				continue
			}
		}
		uncached = append(uncached, p)
	}
	if stats.CacheHits > 0 {
		c.log.WithField("hits", stats.CacheHits).Info("served classifications from cache")
	}

	numBatches := (len(uncached) + c.batchSize - 1) / c.batchSize
	for i := 0; i < len(uncached); i += c.batchSize {
		if err := ctx.Err(); err != nil {
			return results, stats, err
		}
		if c.costLimit > 0 && stats.TotalCostUSD >= c.costLimit {
			c.log.WithFields(logrus.Fields{
				"spent_usd": fmt.Sprintf("%.4f", stats.TotalCostUSD),
				"limit_usd": fmt.Sprintf("%.4f", c.costLimit),
				"skipped":   len(uncached) - i,
			}).Warn("cost limit reached, skipping remaining posts")
			break
		}

		batch := uncached[i:min(i+c.batchSize, len(uncached))]
		batchNum := i/c.batchSize + 1
		c.log.WithFields(logrus.Fields{
			"batch": batchNum,
			"of":    numBatches,
			"posts": len(batch),
		}).Info("classifying batch")

		classified, err := c.classifyBatch(ctx, batch, &stats)
		if err != nil {
			c.log.WithFields(logrus.Fields{
				"batch": batchNum,
				"error": err.Error(),
			}).Error("batch failed after retries, skipping")
			continue
		}
		stats.Batches++
		results = append(results, classified...)

		for _, rec := range classified {
			if c.cache != nil {
				c.cache.Put(rec.Post.ID, rec.Classification)
			}
			c.logStrategicAlert(rec)
		}

		if batchNum < numBatches {
			select {
			case <-ctx.Done():
				return results, stats, ctx.Err()
			case <-time.After(batchPause):
			}
		}
	}

	if len(results) == 0 {
		return nil, stats, errors.New("classification produced no results")
	}

	c.log.WithFields(logrus.Fields{
		"classified": len(results),
		"cache_hits": stats.CacheHits,
		"cost_usd":   fmt.Sprintf("%.4f", stats.TotalCostUSD),
		"tokens_in":  stats.InputTokens,
		"tokens_out": stats.OutputTokens,
	}).Info("classification complete")
	return results, stats, nil
}

func (c *Classifier) classifyBatch(ctx context.Context, batch []types.Post, stats *Stats) ([]types.ClassifiedPost, error) {
	params := anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   maxResponseTokens,
		Temperature: anthropic.Float(0.15),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildUserPrompt(batch))),
		},
	}

	var resp *anthropic.Message
	operation := func() error {
		var err error
		resp, err = c.messages.New(ctx, params)
		if err != nil {
			var apierr *anthropic.Error
			if errors.As(err, &apierr) {
				switch apierr.StatusCode {
				case 401, 403:
					// Credentials will not fix themselves
					return backoff.Permanent(err)
				}
			}
			return err
		}
		if len(resp.Content) == 0 {
			return errors.New("empty model response")
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = retryWindow
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}

	inputTokens := int(resp.Usage.InputTokens)
	outputTokens := int(resp.Usage.OutputTokens)
	cost := estimateCost(inputTokens, outputTokens)
	stats.InputTokens += inputTokens
	stats.OutputTokens += outputTokens
	stats.TotalCostUSD += cost
	c.log.WithFields(logrus.Fields{
		"tokens_in":  inputTokens,
		"tokens_out": outputTokens,
		"cost_usd":   fmt.Sprintf("%.4f", cost),
	}).Debug("batch tokens accounted")

	analyses, err := parseBatch(resp.Content[0].Text)
	if err != nil {
		c.log.WithField("error", err.Error()).Warn("unparseable model response, coercing defaults for batch")
		analyses = nil
	}

	perPost := types.APICost{
		InputTokens:  inputTokens / len(batch),
		OutputTokens: outputTokens / len(batch),
		EstimatedUSD: cost / float64(len(batch)),
	}

	classified := make([]types.ClassifiedPost, 0, len(batch))
	for i, post := range batch {
		var raw rawAnalysis
		if i < len(analyses) {
			raw = analyses[i]
		}
		classified = append(classified, types.ClassifiedPost{
			Post:           post,
			Classification: coerce(raw, post, c.log),
			Cost:           perPost,
		})
	}
	return classified, nil
}

func (c *Classifier) logStrategicAlert(rec types.ClassifiedPost) {
	fields := logrus.Fields{
		"username": rec.Post.AuthorUsername,
		"summary":  rec.Classification.Summary,
	}
	switch rec.Classification.StrategicCategory {
	case types.CategoryStrategicWin:
		c.log.WithFields(fields).Info("strategic win detected")
	case types.CategoryCriticalFUD:
		c.log.WithFields(fields).Warn("critical FUD detected")
	case types.CategoryAffiliateViolation:
		c.log.WithFields(fields).Warn("affiliate violation detected")
	}
}

func estimateCost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)/1e6*inputPricePerMTok + float64(outputTokens)/1e6*outputPricePerMTok
}
