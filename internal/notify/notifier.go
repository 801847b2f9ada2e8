// Package notify delivers reports to Slack. Two delivery modes are
// supported: an incoming webhook, and a bot token which additionally allows
// posting the detail message as a threaded reply under the summary.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"

	"brandpulse/internal/report"
)

const (
	maxRetries  = 3
	threadPause = 500 * time.Millisecond
	postPause   = time.Second
)

var retryDelays = []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}

type mode int

const (
	modeDisabled mode = iota
	modeWebhook
	modeBot
)

// messagePoster is the slice of the Slack client the notifier needs.
type messagePoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Options configures the notifier. WebhookURL takes precedence over the bot
// token when both are set; with neither, the notifier is disabled and sends
// become no-ops.
type Options struct {
	WebhookURL    string
	BotToken      string
	ChannelID     string
	MentionUserID string
	BrandName     string
}

// Notifier posts report messages to Slack.
type Notifier struct {
	mode          mode
	webhookURL    string
	api           messagePoster
	channelID     string
	mentionUserID string
	brand         string
	renderer      *report.Renderer
	log           *logrus.Entry

	// postWebhook is swapped out in tests.
	postWebhook func(ctx context.Context, url string, msg *slack.WebhookMessage) error
}

// New builds a notifier. The renderer comes from the aggregator so Slack
// output stays structurally identical to the report's plain text.
func New(opts Options, renderer *report.Renderer, log *logrus.Entry) *Notifier {
	n := &Notifier{
		webhookURL:    opts.WebhookURL,
		channelID:     opts.ChannelID,
		mentionUserID: opts.MentionUserID,
		brand:         opts.BrandName,
		renderer:      renderer,
		log:           log,
		postWebhook:   slack.PostWebhookContext,
	}
	switch {
	case opts.WebhookURL != "":
		n.mode = modeWebhook
		log.Info("slack notifier using incoming webhook")
	case opts.BotToken != "":
		n.mode = modeBot
		n.api = slack.New(opts.BotToken)
		log.Info("slack notifier using bot token")
	default:
		n.mode = modeDisabled
		log.Warn("no slack credentials configured, notifications disabled")
	}
	return n
}

// Enabled reports whether any delivery mode is configured.
func (n *Notifier) Enabled() bool { return n.mode != modeDisabled }

// SendReport posts the summary and detail messages. In bot mode the detail
// goes into the summary's thread; webhooks cannot thread, so the messages
// are posted back to back.
func (n *Notifier) SendReport(ctx context.Context, rep *report.Report) error {
	if n.mode == modeDisabled {
		n.log.Warn("skipping slack notification, no credentials")
		return nil
	}

	summary, detail := n.renderer.Messages(rep.RawData, rep.Metadata, report.FormatSlack)
	if escalate, reason := shouldEscalate(rep.RawData); escalate && n.mentionUserID != "" {
		summary += fmt.Sprintf("\n\n⚠️ <@%s> Urgent: %s", n.mentionUserID, reason)
		n.log.WithField("reason", reason).Warn("escalating report to on-call")
	}

	n.log.WithFields(logrus.Fields{
		"summary_chars": len(summary),
		"detail_chars":  len(detail),
	}).Info("sending report to slack")

	if n.mode == modeWebhook {
		if err := n.sendWebhook(ctx, summary); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(postPause):
		}
		return n.sendWebhook(ctx, detail)
	}

	ts, err := n.sendBot(ctx, summary, "")
	if err != nil {
		return fmt.Errorf("post summary: %w", err)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(threadPause):
	}
	if _, err := n.sendBot(ctx, detail, ts); err != nil {
		return fmt.Errorf("post detail reply: %w", err)
	}
	n.log.WithField("thread_ts", ts).Info("report delivered to slack")
	return nil
}

// SendEmptyReport tells the channel that a run found nothing.
func (n *Notifier) SendEmptyReport(ctx context.Context, window time.Duration) error {
	if n.mode == modeDisabled {
		return nil
	}
	msg := fmt.Sprintf(`📊 %s Daily Sentiment Report
%s
📅 %s

ℹ️ No posts found in the last %.0f hours matching search criteria.

This could mean:
• Low mention volume during this period
• All posts filtered out (reposts, spam, etc.)
• API rate limits or connectivity issues

Reports will resume when new posts are detected.`,
		n.brand, strings.Repeat("━", 10),
		time.Now().UTC().Format("Jan 02, 2006"), window.Hours())
	return n.send(ctx, msg)
}

// SendError surfaces a run failure in the channel.
func (n *Notifier) SendError(ctx context.Context, runErr error) error {
	if n.mode == modeDisabled {
		return nil
	}
	msg := fmt.Sprintf(`🚨 %s Sentiment Monitor Error
%s
⚠️ An error occurred during sentiment analysis:

`+"```\n%v\n```"+`

Timestamp: %s

Please check logs for more details.`,
		n.brand, strings.Repeat("━", 10), runErr,
		time.Now().UTC().Format(time.RFC3339))
	return n.send(ctx, msg)
}

func (n *Notifier) send(ctx context.Context, msg string) error {
	if n.mode == modeWebhook {
		return n.sendWebhook(ctx, msg)
	}
	_, err := n.sendBot(ctx, msg, "")
	return err
}

func (n *Notifier) sendWebhook(ctx context.Context, msg string) error {
	err := n.retry(ctx, func() error {
		return n.postWebhook(ctx, n.webhookURL, &slack.WebhookMessage{Text: msg})
	})
	if err != nil {
		return fmt.Errorf("webhook post failed: %w", err)
	}
	return nil
}

func (n *Notifier) sendBot(ctx context.Context, msg, threadTS string) (string, error) {
	opts := []slack.MsgOption{
		slack.MsgOptionText(msg, false),
		slack.MsgOptionDisableLinkUnfurl(),
		slack.MsgOptionDisableMediaUnfurl(),
	}
	if threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(threadTS))
	}

	var ts string
	err := n.retry(ctx, func() error {
		_, postedTS, err := n.api.PostMessageContext(ctx, n.channelID, opts...)
		if err != nil {
			return err
		}
		ts = postedTS
		return nil
	})
	if err != nil {
		return "", err
	}
	return ts, nil
}

// retry runs op under the fixed delay ladder, capped at maxRetries attempts
// and stopped by context cancellation. A rate-limited call replaces the next
// delay with Slack's advertised Retry-After.
func (n *Notifier) retry(ctx context.Context, op func() error) error {
	ladder := &slackBackOff{}
	bo := backoff.WithContext(backoff.WithMaxRetries(ladder, maxRetries-1), ctx)
	return backoff.RetryNotify(func() error {
		err := op()
		var rle *slack.RateLimitedError
		if errors.As(err, &rle) {
			ladder.retryAfter = rle.RetryAfter
		}
		return err
	}, bo, func(err error, delay time.Duration) {
		var rle *slack.RateLimitedError
		if errors.As(err, &rle) {
			n.log.WithField("retry_after", delay.String()).Warn("rate limited by slack")
			return
		}
		n.log.WithFields(logrus.Fields{
			"delay": delay.String(),
			"error": err.Error(),
		}).Warn("slack post failed, retrying")
	})
}

// slackBackOff walks retryDelays in order, holding the last entry once the
// ladder runs out. A pending retryAfter overrides the next delay and is
// cleared on use.
type slackBackOff struct {
	attempt    int
	retryAfter time.Duration
}

func (b *slackBackOff) NextBackOff() time.Duration {
	delay := retryDelays[min(b.attempt, len(retryDelays)-1)]
	b.attempt++
	if b.retryAfter > 0 {
		delay = b.retryAfter
		b.retryAfter = 0
	}
	return delay
}

func (b *slackBackOff) Reset() {
	b.attempt = 0
	b.retryAfter = 0
}

// shouldEscalate decides whether the summary should mention the on-call
// user. Any one trigger is enough; they are checked from most to least
// specific so the reason names the strongest signal.
func shouldEscalate(raw report.RawData) (bool, string) {
	if raw.Strategic.CriticalFUD > 5 {
		return true, fmt.Sprintf("%d Critical FUD alerts detected", raw.Strategic.CriticalFUD)
	}
	if raw.Strategic.AffiliateViolations > 0 {
		return true, fmt.Sprintf("%d Affiliate violations found", raw.Strategic.AffiliateViolations)
	}
	for _, ref := range raw.AllNegative {
		for _, theme := range ref.Themes {
			if theme == "scam_accusations" {
				return true, "Scam accusations detected"
			}
		}
	}
	for _, ref := range raw.AllNegative {
		if ref.Engagement > 100 {
			return true, "Viral negative post detected"
		}
	}
	return false, ""
}
