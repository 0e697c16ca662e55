package core

import (
	"errors"
	"time"
)

// DefaultFeedProfile is the sentinel profile assigned to articles and briefs
// saved without an explicit feed profile.
const DefaultFeedProfile = "default"

// Validation errors returned for caller-supplied input that fails a
// precondition. They are distinguishable from storage errors via errors.Is.
var (
	// ErrEmptyURL is returned when an article is submitted without a URL.
	ErrEmptyURL = errors.New("article url is required")
	// ErrEmptyName is returned when a collection name is empty after trimming.
	ErrEmptyName = errors.New("collection name is required")
)

// Article represents a stored reference to ingested content, unique by URL.
type Article struct {
	ID          int64     `json:"id"`           // Surrogate id, assigned on creation
	URL         string    `json:"url"`          // Source URL, unique across articles
	Title       string    `json:"title"`        // Title of the article
	Content     string    `json:"content"`      // Extracted text content (may be empty)
	FeedProfile string    `json:"feed_profile"` // Free-text label partitioning articles into streams
	CreatedAt   time.Time `json:"created_at"`   // Timestamp set at creation, immutable
}

// Brief represents a generated summary document referencing the articles it
// was built from.
type Brief struct {
	ID                     int64     `json:"id"`                       // Surrogate id, strictly increasing
	BriefMarkdown          string    `json:"brief_markdown"`           // Generated markdown (may be empty)
	ContributingArticleIDs []int64   `json:"contributing_article_ids"` // Ordered article ids, round-tripped exactly
	FeedProfile            string    `json:"feed_profile"`             // Profile the brief was generated for
	CreatedAt              time.Time `json:"created_at"`               // Timestamp set at creation
}

// Collection represents a user-named grouping of articles.
type Collection struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CollectionStatus reports, for one collection, whether a given article is a
// member. The status query returns one entry per existing collection.
type CollectionStatus struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Contains bool   `json:"contains"`
}
