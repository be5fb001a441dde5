package feeds

import (
	"crypto/sha1"
	"encoding/hex"
	"time"

	"feedward/internal/models"
)

// guidMaxLen is the width of the guid column.
const guidMaxLen = 191

// ResolveIdentity derives the dedupe key for a parsed item. An explicit
// non-empty guid is used verbatim; otherwise the key is the SHA-1 hex of
// url+title, with the RFC 3339 published date appended when the source
// supplied one. The date is left out of the seed when absent — seeding with
// the fetch time would mint a different key on every fetch and turn each
// re-fetch into a fresh insert. Either way the result is capped to the
// column width, so every item reaching the store has a usable key.
func ResolveIdentity(item *models.ParsedItem) string {
	if item.GUID != nil && *item.GUID != "" {
		return truncate(*item.GUID, guidMaxLen)
	}

	seed := deref(item.URL) + deref(item.Title)
	if item.PublishedAt != nil {
		seed += item.PublishedAt.Format(time.RFC3339)
	}

	sum := sha1.Sum([]byte(seed))
	return truncate(hex.EncodeToString(sum[:]), guidMaxLen)
}

// HashURL returns the SHA-1 hex digest of a subscription URL, the per-user
// uniqueness key stored in feeds.url_hash.
func HashURL(url string) string {
	sum := sha1.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
