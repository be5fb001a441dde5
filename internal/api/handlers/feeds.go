package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"feedward/internal/feeds"
	"feedward/internal/models"
	"feedward/internal/storage"
)

// maxFeedURLLen bounds the subscription URL length.
const maxFeedURLLen = 2048

// ListFeeds handles GET /api/feeds. It returns the user's subscriptions
// with item counts, newest first.
func ListFeeds(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.FeedsForUser(r.Context(), queryUserID(r))
		if err != nil {
			slog.Error("failed to list feeds", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list feeds")
			return
		}

		writeJSON(w, http.StatusOK, list)
	}
}

// SubscribeFeed handles POST /api/feeds. It validates the URL, creates the
// subscription with the URL as its provisional title, and fetches the feed
// immediately. A failed first fetch does not undo the subscription; the
// next refresh retries it.
func SubscribeFeed(store *storage.Store, fetcher *feeds.Fetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			URL    string `json:"url"`
			UserID int64  `json:"user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if body.UserID < 1 {
			body.UserID = defaultUserID
		}

		if msg := validateFeedURL(body.URL); msg != "" {
			writeError(w, http.StatusUnprocessableEntity, msg)
			return
		}

		feed := &models.Feed{
			UserID:  body.UserID,
			URL:     body.URL,
			URLHash: feeds.HashURL(body.URL),
			Title:   body.URL,
		}

		if err := store.CreateFeed(r.Context(), feed); err != nil {
			if errors.Is(err, storage.ErrDuplicateFeed) {
				writeError(w, http.StatusUnprocessableEntity, "You have already added this feed.")
				return
			}
			slog.Error("failed to create feed", "url", body.URL, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to create feed")
			return
		}

		if err := fetcher.FetchAndStore(r.Context(), feed); err != nil {
			slog.Warn("initial fetch failed", "feed_id", feed.ID, "error", err)
		}

		created, err := store.FeedByID(r.Context(), feed.ID)
		if err != nil {
			slog.Error("failed to reload feed", "feed_id", feed.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to load feed")
			return
		}

		writeJSON(w, http.StatusCreated, created)
	}
}

// RefreshFeed handles POST /api/feeds/{id}/refresh. It re-fetches one feed
// synchronously and reports the fetch outcome.
func RefreshFeed(store *storage.Store, fetcher *feeds.Fetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		feed, err := store.FeedByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Feed not found")
				return
			}
			slog.Error("failed to load feed", "feed_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to load feed")
			return
		}

		if err := fetcher.FetchAndStore(r.Context(), feed); err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
	}
}

// RefreshAllFeeds handles POST /api/feeds/refresh. It refreshes every
// subscription with bounded concurrency and returns per-feed failures.
func RefreshAllFeeds(refresher *feeds.Refresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		failed, err := refresher.RefreshAll(r.Context())
		if err != nil {
			slog.Error("failed to refresh feeds", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to refresh feeds")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status": "refreshed",
			"failed": failed,
		})
	}
}

// UnsubscribeFeed handles DELETE /api/feeds/{id}. Deleting a feed cascades
// to all of its items.
func UnsubscribeFeed(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := store.DeleteFeed(r.Context(), id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Feed not found")
				return
			}
			slog.Error("failed to delete feed", "feed_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to delete feed")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// validateFeedURL checks a subscription URL, returning an error message for
// the client or "" when the URL is acceptable.
func validateFeedURL(raw string) string {
	if raw == "" {
		return "The url field is required."
	}
	if len(raw) > maxFeedURLLen {
		return "The url may not be greater than 2048 characters."
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "The url must be a valid URL."
	}
	return ""
}
