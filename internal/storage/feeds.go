package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"feedward/internal/models"
)

// FeedUpdate carries the feed-level metadata produced by one fetch. Nil
// fields leave the stored value untouched; the source document simply did
// not supply them.
type FeedUpdate struct {
	Title       *string
	SiteURL     *string
	Description *string
}

// ItemRow is one fully resolved item ready for the keyed upsert: identity
// assigned, summary and content cleaned.
type ItemRow struct {
	GUID        string
	Title       *string
	URL         *string
	Summary     *string
	Content     *string
	PublishedAt *time.Time
}

// CreateFeed inserts a new subscription. The caller supplies URL and
// URLHash; the title starts out as the URL until the first fetch fills it
// in. Returns ErrDuplicateFeed when the user already subscribed to the URL.
func (s *Store) CreateFeed(ctx context.Context, feed *models.Feed) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM feeds WHERE user_id = ? AND url_hash = ?`,
		feed.UserID, feed.URLHash,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking for existing feed: %w", err)
	}
	if exists > 0 {
		return ErrDuplicateFeed
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO feeds (user_id, url_hash, url, title)
		 VALUES (?, ?, ?, ?)`,
		feed.UserID, feed.URLHash, feed.URL, feed.Title,
	)
	if err != nil {
		// The unique index backstops the pre-check under races.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateFeed
		}
		return fmt.Errorf("inserting feed: %w", err)
	}

	feed.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting feed id: %w", err)
	}
	return nil
}

// FeedByID returns one feed, or ErrNotFound.
func (s *Store) FeedByID(ctx context.Context, id int64) (*models.Feed, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT f.id, f.user_id, f.url_hash, f.url, f.title, f.site_url,
		        f.description, f.last_fetched_at, f.created_at, f.updated_at,
		        (SELECT COUNT(*) FROM feed_items i WHERE i.feed_id = f.id)
		 FROM feeds f WHERE f.id = ?`, id)

	feed, err := scanFeed(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying feed %d: %w", id, err)
	}
	return feed, nil
}

// FeedsForUser returns a user's subscriptions with item counts, newest
// subscription first.
func (s *Store) FeedsForUser(ctx context.Context, userID int64) ([]models.Feed, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.id, f.user_id, f.url_hash, f.url, f.title, f.site_url,
		        f.description, f.last_fetched_at, f.created_at, f.updated_at,
		        (SELECT COUNT(*) FROM feed_items i WHERE i.feed_id = f.id)
		 FROM feeds f WHERE f.user_id = ? ORDER BY f.created_at DESC, f.id DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying feeds for user %d: %w", userID, err)
	}
	defer rows.Close()

	feeds := []models.Feed{}
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning feed: %w", err)
		}
		feeds = append(feeds, *feed)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating feeds: %w", err)
	}
	return feeds, nil
}

// AllFeeds returns every subscription across all users, for the background
// refresh loop.
func (s *Store) AllFeeds(ctx context.Context) ([]models.Feed, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.id, f.user_id, f.url_hash, f.url, f.title, f.site_url,
		        f.description, f.last_fetched_at, f.created_at, f.updated_at,
		        (SELECT COUNT(*) FROM feed_items i WHERE i.feed_id = f.id)
		 FROM feeds f ORDER BY f.id`)
	if err != nil {
		return nil, fmt.Errorf("querying all feeds: %w", err)
	}
	defer rows.Close()

	feeds := []models.Feed{}
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning feed: %w", err)
		}
		feeds = append(feeds, *feed)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating feeds: %w", err)
	}
	return feeds, nil
}

// DeleteFeed removes a subscription and, via the schema's cascade, all of
// its items. Returns ErrNotFound for an unknown id.
func (s *Store) DeleteFeed(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM feeds WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting feed %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected for feed %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveFetchResult commits the outcome of one successful fetch in a single
// transaction: the feed's metadata is patched (nil fields keep the stored
// value), last_fetched_at is set to now, and the item batch is upserted on
// (feed_id, guid). On conflict only title, url, summary, content,
// published_at and updated_at are overwritten; read_at and bookmarked_at
// belong to the user and survive every re-fetch. Any failure rolls the
// whole transaction back, previous fetch state included.
func (s *Store) SaveFetchResult(ctx context.Context, feedID int64, update FeedUpdate, items []ItemRow) error {
	now := formatTime(time.Now())

	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE feeds SET
				title           = COALESCE(?, title),
				site_url        = COALESCE(?, site_url),
				description     = COALESCE(?, description),
				last_fetched_at = ?,
				updated_at      = ?
			 WHERE id = ?`,
			update.Title, update.SiteURL, update.Description, now, now, feedID,
		)
		if err != nil {
			return fmt.Errorf("updating feed %d metadata: %w", feedID, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking feed %d update: %w", feedID, err)
		}
		if n == 0 {
			return ErrNotFound
		}

		if len(items) == 0 {
			return nil
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO feed_items (feed_id, guid, title, url, summary, content, published_at, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(feed_id, guid) DO UPDATE SET
				title        = excluded.title,
				url          = excluded.url,
				summary      = excluded.summary,
				content      = excluded.content,
				published_at = excluded.published_at,
				updated_at   = excluded.updated_at`)
		if err != nil {
			return fmt.Errorf("preparing item upsert: %w", err)
		}
		defer stmt.Close()

		for i := range items {
			item := &items[i]
			if _, err := stmt.ExecContext(ctx,
				feedID, item.GUID, item.Title, item.URL, item.Summary,
				item.Content, formatTimePtr(item.PublishedAt), now, now,
			); err != nil {
				return fmt.Errorf("upserting item %q: %w", item.GUID, err)
			}
		}

		return nil
	})
}

// scanner is a minimal interface satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanFeed scans a feed row (with trailing item count) into a models.Feed.
func scanFeed(row scanner) (*models.Feed, error) {
	var (
		feed          models.Feed
		title         sql.NullString
		siteURL       sql.NullString
		description   sql.NullString
		lastFetchedAt sql.NullString
		createdAt     string
		updatedAt     string
	)

	if err := row.Scan(
		&feed.ID, &feed.UserID, &feed.URLHash, &feed.URL, &title, &siteURL,
		&description, &lastFetchedAt, &createdAt, &updatedAt, &feed.ItemCount,
	); err != nil {
		return nil, err
	}

	feed.Title = title.String
	feed.SiteURL = siteURL.String
	feed.Description = description.String
	feed.LastFetchedAt = parseTimePtr(lastFetchedAt)
	feed.CreatedAt = parseTime(createdAt)
	feed.UpdatedAt = parseTime(updatedAt)

	return &feed, nil
}
