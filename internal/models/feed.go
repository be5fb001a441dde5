package models

import "time"

// Feed is a user's subscription to a remote RSS or Atom document.
type Feed struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	URL           string     `json:"url"`
	URLHash       string     `json:"-"`
	Title         string     `json:"title"`
	SiteURL       string     `json:"site_url,omitempty"`
	Description   string     `json:"description,omitempty"`
	LastFetchedAt *time.Time `json:"last_fetched_at,omitempty"`
	ItemCount     int        `json:"item_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// DisplayTitle returns the feed title, falling back to the subscription URL
// when no title has been stored yet.
func (f *Feed) DisplayTitle() string {
	if f.Title != "" {
		return f.Title
	}
	return f.URL
}

// FeedItem is one entry of a feed, deduplicated per feed on its GUID.
// ReadAt and BookmarkedAt belong to the user and are never touched by
// re-fetches.
type FeedItem struct {
	ID           int64      `json:"id"`
	FeedID       int64      `json:"feed_id"`
	GUID         string     `json:"-"`
	Title        string     `json:"title"`
	URL          string     `json:"url,omitempty"`
	Summary      string     `json:"summary,omitempty"`
	Content      string     `json:"content,omitempty"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	ReadAt       *time.Time `json:"read_at,omitempty"`
	BookmarkedAt *time.Time `json:"bookmarked_at,omitempty"`
	FeedTitle    string     `json:"feed_title,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
