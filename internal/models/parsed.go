package models

import "time"

// ParsedFeed is the dialect-agnostic result of parsing one RSS or Atom
// document. It is rebuilt on every fetch and never persisted as-is.
// Nil pointer fields mean the source supplied no value.
type ParsedFeed struct {
	Title       *string
	SiteURL     *string
	Description *string
	Items       []ParsedItem
}

// ParsedItem is a single entry extracted from a feed document, before
// identity resolution and content cleaning.
type ParsedItem struct {
	GUID        *string
	Title       *string
	URL         *string
	Summary     *string
	Content     *string
	PublishedAt *time.Time
}
