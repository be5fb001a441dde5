// Package api exposes feedward's HTTP interface: subscription management,
// refresh triggers, and item listing/read/bookmark state.
package api

import (
	"github.com/go-chi/chi/v5"

	"feedward/internal/api/handlers"
	"feedward/internal/feeds"
	"feedward/internal/storage"
)

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(store *storage.Store, fetcher *feeds.Fetcher, refresher *feeds.Refresher) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestLogger)
	r.Use(Recovery)

	r.Route("/api", func(api chi.Router) {
		api.Get("/feeds", handlers.ListFeeds(store))
		api.Post("/feeds", handlers.SubscribeFeed(store, fetcher))
		api.Post("/feeds/refresh", handlers.RefreshAllFeeds(refresher))
		api.Get("/feeds/{id}/items", handlers.ListFeedItems(store))
		api.Post("/feeds/{id}/refresh", handlers.RefreshFeed(store, fetcher))
		api.Delete("/feeds/{id}", handlers.UnsubscribeFeed(store))

		api.Get("/items", handlers.ListItems(store))
		api.Get("/items/{id}", handlers.ShowItem(store))
		api.Post("/items/{id}/bookmark", handlers.ToggleBookmark(store))
	})

	return r
}
