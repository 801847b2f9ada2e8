// Package feed fetches recent brand mentions from the X API v2 recent
// search endpoint and maps them into posts.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"brandpulse/internal/types"
)

// DefaultBaseURL is the production X API endpoint.
const DefaultBaseURL = "https://api.twitter.com/2"

const (
	pageSize    = 100
	pagePause   = 500 * time.Millisecond
	retryWindow = 5 * time.Minute
)

// defaultKeywords are the product keywords searched alongside the brand
// handle.
var defaultKeywords = []string{"points", "point", "trade", "trading", "mobile", "app"}

// Options configures the feed client.
type Options struct {
	BearerToken string
	// BrandHandle is the monitored account, without the @.
	BrandHandle string
	// BrandName matches bare brand mentions in keyword extraction.
	BrandName string
	// Keywords overrides the default search keywords.
	Keywords []string
	// BaseURL overrides the API endpoint, for tests.
	BaseURL string
	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// Client talks to the X API with app-only bearer auth.
type Client struct {
	http     *http.Client
	baseURL  string
	token    string
	handle   string
	brand    string
	keywords []string
	log      *logrus.Entry
}

// NewClient builds a feed client. The bearer token and brand handle are
// required.
func NewClient(opts Options, log *logrus.Entry) (*Client, error) {
	if opts.BearerToken == "" {
		return nil, errors.New("bearer token is required")
	}
	if opts.BrandHandle == "" {
		return nil, errors.New("brand handle is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	keywords := opts.Keywords
	if len(keywords) == 0 {
		keywords = defaultKeywords
	}
	brand := opts.BrandName
	if brand == "" {
		brand = opts.BrandHandle
	}
	return &Client{
		http:     httpClient,
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    opts.BearerToken,
		handle:   opts.BrandHandle,
		brand:    brand,
		keywords: keywords,
		log:      log,
	}, nil
}

// ValidateCredentials checks the bearer token with a cheap user lookup.
// App-only auth cannot call the authenticated-user endpoint, so a known
// public account is looked up instead.
func (c *Client) ValidateCredentials(ctx context.Context) error {
	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/users/by/username/X", nil, &out); err != nil {
		return fmt.Errorf("validate credentials: %w", err)
	}
	if out.Data.ID == "" {
		return errors.New("validate credentials: empty response")
	}
	c.log.Info("bearer token validated")
	return nil
}

// Query returns the recent-search query for the configured brand. Reposts
// and the brand's own posts are excluded.
func (c *Client) Query() string {
	terms := append([]string{"@" + c.handle}, c.keywords...)
	return fmt.Sprintf("(%s) -from:%s -is:retweet", strings.Join(terms, " OR "), c.handle)
}

// SearchMentions fetches all mentions from the past window, following
// pagination until exhausted. When a page fails after retries, the posts
// collected so far are returned rather than discarded.
func (c *Client) SearchMentions(ctx context.Context, window time.Duration) ([]types.Post, error) {
	startTime := time.Now().UTC().Add(-window).Format(time.RFC3339)
	query := c.Query()
	c.log.WithFields(logrus.Fields{
		"query":      query,
		"start_time": startTime,
	}).Info("searching mentions")

	var posts []types.Post
	nextToken := ""
	for page := 1; ; page++ {
		resp, err := c.searchPage(ctx, query, startTime, nextToken)
		if err != nil {
			if len(posts) > 0 {
				c.log.WithFields(logrus.Fields{
					"page":  page,
					"error": err.Error(),
				}).Warn("page fetch failed, returning posts collected so far")
				return posts, nil
			}
			return nil, err
		}

		pagePosts := c.mapPosts(resp)
		posts = append(posts, pagePosts...)
		c.log.WithFields(logrus.Fields{
			"page":  page,
			"posts": len(pagePosts),
			"total": len(posts),
		}).Info("page retrieved")

		nextToken = resp.Meta.NextToken
		if nextToken == "" {
			break
		}
		select {
		case <-ctx.Done():
			return posts, ctx.Err()
		case <-time.After(pagePause):
		}
	}

	c.log.WithField("total", len(posts)).Info("search complete")
	return posts, nil
}

type searchResponse struct {
	Data []struct {
		ID            string    `json:"id"`
		Text          string    `json:"text"`
		AuthorID      string    `json:"author_id"`
		CreatedAt     time.Time `json:"created_at"`
		PublicMetrics struct {
			LikeCount    int `json:"like_count"`
			RetweetCount int `json:"retweet_count"`
			ReplyCount   int `json:"reply_count"`
			QuoteCount   int `json:"quote_count"`
		} `json:"public_metrics"`
	} `json:"data"`
	Includes struct {
		Users []apiUser `json:"users"`
	} `json:"includes"`
	Meta struct {
		ResultCount int    `json:"result_count"`
		NextToken   string `json:"next_token"`
	} `json:"meta"`
}

type apiUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Name          string `json:"name"`
	Verified      bool   `json:"verified"`
	PublicMetrics struct {
		FollowersCount int `json:"followers_count"`
	} `json:"public_metrics"`
}

func (c *Client) searchPage(ctx context.Context, query, startTime, nextToken string) (*searchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("start_time", startTime)
	params.Set("max_results", fmt.Sprintf("%d", pageSize))
	params.Set("tweet.fields", "id,text,author_id,created_at,public_metrics")
	params.Set("expansions", "author_id")
	params.Set("user.fields", "username,name,verified,public_metrics")
	if nextToken != "" {
		params.Set("next_token", nextToken)
	}

	var resp searchResponse
	if err := c.get(ctx, "/tweets/search/recent", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// get performs one authenticated GET with retries. Rate limits and server
// errors retry with backoff; auth failures do not.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := json.Unmarshal(body, out); err != nil {
				return backoff.Permanent(fmt.Errorf("decode response: %w", err))
			}
			return nil
		case resp.StatusCode == http.StatusTooManyRequests:
			c.log.Warn("rate limited by the X API, backing off")
			return fmt.Errorf("rate limited: %s", strings.TrimSpace(string(body)))
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return backoff.Permanent(fmt.Errorf("auth failure %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
		case resp.StatusCode >= 500:
			return fmt.Errorf("server error %d", resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = retryWindow
	return backoff.Retry(operation, backoff.WithContext(bo, ctx))
}

func (c *Client) mapPosts(resp *searchResponse) []types.Post {
	users := make(map[string]apiUser, len(resp.Includes.Users))
	for _, u := range resp.Includes.Users {
		users[u.ID] = u
	}

	posts := make([]types.Post, 0, len(resp.Data))
	for _, t := range resp.Data {
		author, ok := users[t.AuthorID]
		if !ok {
			c.log.WithField("post_id", t.ID).Warn("author data missing, skipping post")
			continue
		}
		m := t.PublicMetrics
		posts = append(posts, types.Post{
			ID:              t.ID,
			Text:            t.Text,
			AuthorUsername:  author.Username,
			AuthorName:      author.Name,
			AuthorFollowers: author.PublicMetrics.FollowersCount,
			IsVerified:      author.Verified,
			Engagement: types.Engagement{
				Likes:   m.LikeCount,
				Reposts: m.RetweetCount,
				Replies: m.ReplyCount,
				Quotes:  m.QuoteCount,
				Total:   m.LikeCount + m.RetweetCount + m.ReplyCount + m.QuoteCount,
			},
			CreatedAt:       t.CreatedAt,
			URL:             fmt.Sprintf("https://twitter.com/%s/status/%s", author.Username, t.ID),
			MatchedKeywords: c.matchKeywords(t.Text),
		})
	}
	return posts
}

// matchKeywords reports which search terms appear in the text, brand mention
// first, without duplicates.
func (c *Client) matchKeywords(text string) []string {
	lower := strings.ToLower(text)
	var matched []string
	if strings.Contains(lower, "@"+strings.ToLower(c.handle)) || strings.Contains(lower, strings.ToLower(c.brand)) {
		matched = append(matched, c.handle)
	}
	for _, kw := range c.keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}
