package feeds

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"feedward/internal/models"
	"feedward/internal/storage"
)

const (
	fetchTimeout = 10 * time.Second
	maxRetries   = 2 // additional attempts after the first
	retryBackoff = 100 * time.Millisecond

	acceptHeader = "application/rss+xml, application/atom+xml, application/xml, text/xml"
	userAgent    = "Feedward RSS Reader/1.0 (+https://feedward.example)"
)

// Fetcher downloads subscribed feeds and drives the transactional save.
type Fetcher struct {
	client *http.Client
	store  *storage.Store
}

// NewFetcher creates a Fetcher writing through the given store. The HTTP
// client bounds each attempt at 10 seconds; parsing and the transaction
// carry no deadline of their own.
func NewFetcher(store *storage.Store) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: fetchTimeout},
		store:  store,
	}
}

// FetchAndStore fetches one feed's document, parses it, and commits the
// result in a single transaction: feed metadata patched, last_fetched_at
// stamped, and every item upserted on (feed_id, guid). Failures are typed —
// *TransportError for network trouble or a non-2xx status after retries,
// *ParseError for an empty or malformed body — and in both cases nothing
// has been written. Running the same fetch twice, even concurrently,
// converges on the same rows because the upsert is idempotent.
func (f *Fetcher) FetchAndStore(ctx context.Context, feed *models.Feed) error {
	body, err := f.download(ctx, feed)
	if err != nil {
		slog.Warn("failed to fetch feed",
			"feed_id", feed.ID,
			"url", feed.URL,
			"error", err,
		)
		return err
	}

	parsed, err := Parse(body)
	if err != nil {
		return err
	}

	update := storage.FeedUpdate{
		Title:       parsed.Title,
		SiteURL:     parsed.SiteURL,
		Description: parsed.Description,
	}

	rows := make([]storage.ItemRow, 0, len(parsed.Items))
	for i := range parsed.Items {
		item := &parsed.Items[i]
		guid := ResolveIdentity(item)
		if guid == "" {
			continue
		}

		rows = append(rows, storage.ItemRow{
			GUID:        guid,
			Title:       item.Title,
			URL:         item.URL,
			Summary:     CleanSummary(item.Summary),
			Content:     CleanContent(item.Content),
			PublishedAt: item.PublishedAt,
		})
	}

	if err := f.store.SaveFetchResult(ctx, feed.ID, update, rows); err != nil {
		return fmt.Errorf("saving fetch result for feed %d: %w", feed.ID, err)
	}

	slog.Info("fetched feed", "feed_id", feed.ID, "url", feed.URL, "items", len(rows))
	return nil
}

// download GETs the feed document, retrying transport failures and non-2xx
// responses up to maxRetries extra attempts with a fixed backoff. The last
// failure comes back as a *TransportError.
func (f *Fetcher) download(ctx context.Context, feed *models.Feed) (string, error) {
	var lastErr error
	var lastStatus int

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryBackoff):
			case <-ctx.Done():
				return "", &TransportError{FeedID: feed.ID, URL: feed.URL, Err: ctx.Err()}
			}
		}

		body, status, err := f.attempt(ctx, feed.URL)
		if err == nil && status >= 200 && status < 300 {
			return body, nil
		}

		lastErr = err
		lastStatus = 0
		if err == nil {
			lastStatus = status
			lastErr = fmt.Errorf("unexpected status %d", status)
		}
	}

	return "", &TransportError{
		FeedID:     feed.ID,
		URL:        feed.URL,
		StatusCode: lastStatus,
		Err:        lastErr,
	}
}

// attempt issues a single GET and reads the body. The status code is
// returned even for non-2xx responses so download can classify them.
func (f *Fetcher) attempt(ctx context.Context, url string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, err
	}

	return string(body), resp.StatusCode, nil
}
