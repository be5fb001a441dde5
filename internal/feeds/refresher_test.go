package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRefreshAll_CollectsFailuresAndKeepsGoing(t *testing.T) {
	goodServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssDoc))
	}))
	defer goodServer.Close()

	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusBadGateway)
	}))
	defer badServer.Close()

	store := newTestStore(t)
	good := subscribeToServer(t, store, goodServer.URL)
	bad := subscribeToServer(t, store, badServer.URL)

	refresher := NewRefresher(store, NewFetcher(store), 0)
	ctx := context.Background()

	failed, err := refresher.RefreshAll(ctx)
	if err != nil {
		t.Fatalf("RefreshAll error: %v", err)
	}

	if len(failed) != 1 {
		t.Fatalf("got %d failed feeds, want 1: %+v", len(failed), failed)
	}
	if failed[0].FeedID != bad.ID {
		t.Errorf("failed feed id = %d, want %d", failed[0].FeedID, bad.ID)
	}
	if failed[0].URL != badServer.URL {
		t.Errorf("failed feed url = %q, want %q", failed[0].URL, badServer.URL)
	}
	if failed[0].Error == "" {
		t.Error("failed feed carries no error message")
	}

	// The healthy feed still refreshed.
	items, err := store.ItemsForFeed(ctx, good.ID)
	if err != nil {
		t.Fatalf("ItemsForFeed error: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("healthy feed has %d items after batch, want 1", len(items))
	}
}

func TestRefreshAll_NoFeeds(t *testing.T) {
	store := newTestStore(t)
	refresher := NewRefresher(store, NewFetcher(store), 0)

	failed, err := refresher.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("RefreshAll error: %v", err)
	}
	if len(failed) != 0 {
		t.Fatalf("got %d failures with no feeds subscribed", len(failed))
	}
}
