package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"feedward/internal/storage"
)

// recentItemLimit caps the dashboard listing.
const recentItemLimit = 50

// ListItems handles GET /api/items. It returns the newest items across all
// of the user's feeds, most recently published first.
func ListItems(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := store.RecentItemsForUser(r.Context(), queryUserID(r), recentItemLimit)
		if err != nil {
			slog.Error("failed to list items", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list items")
			return
		}

		writeJSON(w, http.StatusOK, items)
	}
}

// ListFeedItems handles GET /api/feeds/{id}/items.
func ListFeedItems(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if _, err := store.FeedByID(r.Context(), id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Feed not found")
				return
			}
			slog.Error("failed to load feed", "feed_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to load feed")
			return
		}

		items, err := store.ItemsForFeed(r.Context(), id)
		if err != nil {
			slog.Error("failed to list feed items", "feed_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list items")
			return
		}

		writeJSON(w, http.StatusOK, items)
	}
}

// ShowItem handles GET /api/items/{id}. Viewing an unread item marks it
// read; the original read timestamp survives later views.
func ShowItem(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		item, err := store.ItemByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Item not found")
				return
			}
			slog.Error("failed to load item", "item_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to load item")
			return
		}

		if item.ReadAt == nil {
			if err := store.MarkRead(r.Context(), id); err != nil {
				slog.Error("failed to mark item read", "item_id", id, "error", err)
				writeError(w, http.StatusInternalServerError, "Failed to mark item read")
				return
			}
			item, err = store.ItemByID(r.Context(), id)
			if err != nil {
				slog.Error("failed to reload item", "item_id", id, "error", err)
				writeError(w, http.StatusInternalServerError, "Failed to load item")
				return
			}
		}

		writeJSON(w, http.StatusOK, item)
	}
}

// ToggleBookmark handles POST /api/items/{id}/bookmark. It flips the
// bookmark state and reports the new one.
func ToggleBookmark(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		bookmarked, err := store.ToggleBookmark(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Item not found")
				return
			}
			slog.Error("failed to toggle bookmark", "item_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to toggle bookmark")
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"bookmarked": bookmarked})
	}
}
