package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"feedward/internal/storage"
)

// maxConcurrentFetches bounds how many feeds refresh in parallel.
const maxConcurrentFetches = 10

// FailedFeed records one feed that could not be refreshed during a batch.
type FailedFeed struct {
	FeedID int64  `json:"feed_id"`
	URL    string `json:"url"`
	Error  string `json:"error"`
}

// Refresher re-fetches every subscription, either on demand or on a timer.
type Refresher struct {
	store    *storage.Store
	fetcher  *Fetcher
	interval time.Duration
}

// NewRefresher creates a Refresher. A non-positive interval disables the
// background loop; RefreshAll still works on demand.
func NewRefresher(store *storage.Store, fetcher *Fetcher, interval time.Duration) *Refresher {
	return &Refresher{store: store, fetcher: fetcher, interval: interval}
}

// RefreshAll fetches every feed with bounded concurrency. Individual feed
// failures are collected and returned rather than aborting the batch; each
// feed is an independent unit of work.
func (r *Refresher) RefreshAll(ctx context.Context) ([]FailedFeed, error) {
	feedList, err := r.store.AllFeeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing feeds to refresh: %w", err)
	}

	var (
		failed []FailedFeed
		mu     sync.Mutex
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	for i := range feedList {
		feed := feedList[i]
		g.Go(func() error {
			if err := r.fetcher.FetchAndStore(ctx, &feed); err != nil {
				mu.Lock()
				failed = append(failed, FailedFeed{
					FeedID: feed.ID,
					URL:    feed.URL,
					Error:  err.Error(),
				})
				mu.Unlock()
			}
			return nil // one bad feed never fails the batch
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("refreshing feeds: %w", err)
	}

	slog.Info("refreshed feeds", "total", len(feedList), "failed", len(failed))
	return failed, nil
}

// Run refreshes all feeds on the configured interval until the context is
// cancelled. It refreshes once immediately on startup.
func (r *Refresher) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}

	if _, err := r.RefreshAll(ctx); err != nil {
		slog.Error("initial refresh failed", "error", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.RefreshAll(ctx); err != nil {
				slog.Error("scheduled refresh failed", "error", err)
			}
		}
	}
}
