package feeds

import (
	"time"

	"github.com/araddon/dateparse"

	"feedward/internal/models"
)

const (
	atomNamespace    = "http://www.w3.org/2005/Atom"
	contentNamespace = "http://purl.org/rss/1.0/modules/content/"
)

// Parse turns a raw feed document into a dialect-agnostic ParsedFeed.
// It fails with a *ParseError when the normalized XML is empty or not
// well-formed. A document with a channel element under its root is read as
// RSS 2.0; anything else is read as Atom.
func Parse(raw string) (*models.ParsedFeed, error) {
	xml := Normalize(raw)
	if xml == "" {
		return nil, &ParseError{Reason: "feed XML is empty"}
	}

	root, err := parseTree(xml)
	if err != nil {
		return nil, &ParseError{Reason: "feed XML could not be parsed", Err: err}
	}

	if channel := root.childAnyNS("channel"); channel != nil {
		return parseRSS(channel), nil
	}
	return parseAtom(root), nil
}

// parseRSS extracts the feed and its items from an RSS 2.0 channel. RSS
// elements carry no namespace; the content module's encoded element is the
// one namespaced child read here.
func parseRSS(channel *element) *models.ParsedFeed {
	feed := &models.ParsedFeed{
		Title:       channel.child("", "title").textValue(),
		SiteURL:     channel.child("", "link").textValue(),
		Description: channel.child("", "description").textValue(),
	}

	for _, item := range channel.eachChild("", "item") {
		summary := item.child("", "description").textValue()
		content := item.child(contentNamespace, "encoded").textValue()
		content, summary = fallbackPair(content, summary)

		feed.Items = append(feed.Items, models.ParsedItem{
			GUID:        item.child("", "guid").textValue(),
			Title:       item.child("", "title").textValue(),
			URL:         item.child("", "link").textValue(),
			Summary:     summary,
			Content:     content,
			PublishedAt: parseDate(item.child("", "pubDate").textValue()),
		})
	}

	return feed
}

// parseAtom extracts the feed and its entries from an Atom document. The
// decoder already resolved prefixes, so entries live in whatever namespace
// the root was declared in — the Atom URI for well-formed feeds, the empty
// namespace for feeds that omit the declaration.
func parseAtom(root *element) *models.ParsedFeed {
	ns := root.space

	feed := &models.ParsedFeed{
		Title:       root.child(ns, "title").textValue(),
		SiteURL:     alternateLink(root, ns),
		Description: root.child(ns, "subtitle").textValue(),
	}

	for _, entry := range root.eachChild(ns, "entry") {
		summary := entry.child(ns, "summary").textValue()
		content := entry.child(ns, "content").textValue()
		content, summary = fallbackPair(content, summary)

		published := entry.child(ns, "updated").textValue()
		if published == nil {
			published = entry.child(ns, "published").textValue()
		}

		feed.Items = append(feed.Items, models.ParsedItem{
			GUID:        entry.child(ns, "id").textValue(),
			Title:       entry.child(ns, "title").textValue(),
			URL:         alternateLink(entry, ns),
			Summary:     summary,
			Content:     content,
			PublishedAt: parseDate(published),
		})
	}

	return feed
}

// alternateLink returns the href of the element's first link child whose
// rel attribute is absent or "alternate", or nil when no link qualifies.
// The same rule picks the feed's site URL and each entry's URL.
func alternateLink(e *element, ns string) *string {
	for _, link := range e.eachChild(ns, "link") {
		rel := link.attr("rel")
		if rel == nil || *rel == "alternate" {
			if href := link.attr("href"); href != nil {
				return stringValue(*href)
			}
			return nil
		}
	}
	return nil
}

// fallbackPair fills each of content and summary from the other when one is
// absent. Both stay absent when neither was supplied.
func fallbackPair(content, summary *string) (*string, *string) {
	if content == nil {
		content = summary
	}
	if summary == nil {
		summary = content
	}
	return content, summary
}

// parseDate parses a feed timestamp permissively, accepting the RFC 822
// forms RSS uses and the RFC 3339 forms Atom uses. An unparseable date
// yields absent; the item is still produced.
func parseDate(value *string) *time.Time {
	if value == nil {
		return nil
	}

	t, err := dateparse.ParseAny(*value)
	if err != nil {
		return nil
	}
	return &t
}
