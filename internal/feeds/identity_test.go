package feeds

import (
	"strings"
	"testing"
	"time"

	"feedward/internal/models"
)

func TestResolveIdentity_ExplicitGUIDUsedVerbatim(t *testing.T) {
	guid := "tag:example.com,2024:first"
	item := &models.ParsedItem{GUID: &guid}

	if got := ResolveIdentity(item); got != guid {
		t.Fatalf("ResolveIdentity = %q, want %q", got, guid)
	}
}

func TestResolveIdentity_EmptyGUIDSynthesized(t *testing.T) {
	empty := ""
	url := "https://example.com/first"
	item := &models.ParsedItem{GUID: &empty, URL: &url}

	got := ResolveIdentity(item)
	if got == "" {
		t.Fatal("ResolveIdentity returned empty key")
	}
	if len(got) != 40 {
		t.Fatalf("synthesized key length = %d, want 40 hex chars", len(got))
	}
}

func TestResolveIdentity_StableAcrossParses(t *testing.T) {
	url := "https://example.com/first"
	title := "First story"
	published := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	a := &models.ParsedItem{URL: &url, Title: &title, PublishedAt: &published}
	b := &models.ParsedItem{URL: &url, Title: &title, PublishedAt: &published}

	if ResolveIdentity(a) != ResolveIdentity(b) {
		t.Fatal("identical items produced different synthesized keys")
	}
}

func TestResolveIdentity_StableWithoutPublishedDate(t *testing.T) {
	url := "https://example.com/first"
	title := "First story"

	a := &models.ParsedItem{URL: &url, Title: &title}

	first := ResolveIdentity(a)
	time.Sleep(5 * time.Millisecond)
	second := ResolveIdentity(a)

	// An undated item must keep the same key on a later fetch; otherwise
	// every re-fetch inserts a duplicate row.
	if first != second {
		t.Fatalf("undated item key changed across fetches: %q vs %q", first, second)
	}
}

func TestResolveIdentity_ChangedFieldsChangeKey(t *testing.T) {
	url := "https://example.com/first"
	title := "First story"
	otherTitle := "Renamed story"

	a := &models.ParsedItem{URL: &url, Title: &title}
	b := &models.ParsedItem{URL: &url, Title: &otherTitle}

	if ResolveIdentity(a) == ResolveIdentity(b) {
		t.Fatal("different titles produced the same synthesized key")
	}
}

func TestResolveIdentity_LongGUIDTruncated(t *testing.T) {
	guid := strings.Repeat("x", 500)
	item := &models.ParsedItem{GUID: &guid}

	got := ResolveIdentity(item)
	if len(got) != guidMaxLen {
		t.Fatalf("key length = %d, want %d", len(got), guidMaxLen)
	}
}

func TestHashURL(t *testing.T) {
	got := HashURL("https://example.com/feed")
	if len(got) != 40 {
		t.Fatalf("hash length = %d, want 40", len(got))
	}
	if got != HashURL("https://example.com/feed") {
		t.Fatal("hash not deterministic")
	}
	if got == HashURL("https://example.com/other") {
		t.Fatal("distinct URLs hashed identically")
	}
}
