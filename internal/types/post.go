package types

import "time"

// Engagement holds the public interaction counts for a post.
type Engagement struct {
	Likes   int `json:"likes"`
	Reposts int `json:"reposts"`
	Replies int `json:"replies"`
	Quotes  int `json:"quotes"`
	Total   int `json:"total"`
}

// Post is one social-media message as returned by the feed source.
// IDs are strings because platform IDs overflow float64 when round-tripped
// through JSON.
type Post struct {
	ID               string     `json:"post_id"`
	Text             string     `json:"text"`
	AuthorUsername   string     `json:"author_username"`
	AuthorName       string     `json:"author_name"`
	AuthorFollowers  int        `json:"author_followers"`
	IsVerified       bool       `json:"is_verified"`
	Engagement       Engagement `json:"engagement"`
	CreatedAt        time.Time  `json:"created_at"`
	URL              string     `json:"url"`
	MatchedKeywords  []string   `json:"matched_keywords,omitempty"`
}
