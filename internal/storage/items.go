package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"feedward/internal/models"
)

const itemColumns = `i.id, i.feed_id, i.guid, i.title, i.url, i.summary,
	i.content, i.published_at, i.read_at, i.bookmarked_at, i.created_at,
	i.updated_at, COALESCE(NULLIF(f.title, ''), f.url)`

// RecentItemsForUser returns the newest items across all of a user's feeds,
// ordered by published date then insertion date, capped at limit.
func (s *Store) RecentItemsForUser(ctx context.Context, userID int64, limit int) ([]models.FeedItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+`
		 FROM feed_items i JOIN feeds f ON f.id = i.feed_id
		 WHERE f.user_id = ?
		 ORDER BY i.published_at DESC, i.created_at DESC
		 LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying items for user %d: %w", userID, err)
	}
	defer rows.Close()

	items := []models.FeedItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}
	return items, nil
}

// ItemsForFeed returns every item of one feed, newest first.
func (s *Store) ItemsForFeed(ctx context.Context, feedID int64) ([]models.FeedItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+`
		 FROM feed_items i JOIN feeds f ON f.id = i.feed_id
		 WHERE i.feed_id = ?
		 ORDER BY i.published_at DESC, i.created_at DESC`,
		feedID)
	if err != nil {
		return nil, fmt.Errorf("querying items for feed %d: %w", feedID, err)
	}
	defer rows.Close()

	items := []models.FeedItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}
	return items, nil
}

// ItemByID returns one item, or ErrNotFound.
func (s *Store) ItemByID(ctx context.Context, id int64) (*models.FeedItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+`
		 FROM feed_items i JOIN feeds f ON f.id = i.feed_id
		 WHERE i.id = ?`, id)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying item %d: %w", id, err)
	}
	return item, nil
}

// MarkRead stamps read_at on first view. Already-read items keep their
// original timestamp.
func (s *Store) MarkRead(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE feed_items SET read_at = ? WHERE id = ? AND read_at IS NULL`,
		formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("marking item %d read: %w", id, err)
	}
	if _, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("checking rows affected for item %d: %w", id, err)
	}
	return nil
}

// ToggleBookmark sets bookmarked_at when absent and clears it when present,
// returning the new state. Returns ErrNotFound for an unknown id.
func (s *Store) ToggleBookmark(ctx context.Context, id int64) (bool, error) {
	var bookmarkedAt sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT bookmarked_at FROM feed_items WHERE id = ?`, id,
	).Scan(&bookmarkedAt)
	if err == sql.ErrNoRows {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("querying item %d bookmark: %w", id, err)
	}

	if bookmarkedAt.Valid {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE feed_items SET bookmarked_at = NULL WHERE id = ?`, id,
		); err != nil {
			return false, fmt.Errorf("clearing bookmark on item %d: %w", id, err)
		}
		return false, nil
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE feed_items SET bookmarked_at = ? WHERE id = ?`,
		formatTime(time.Now()), id,
	); err != nil {
		return false, fmt.Errorf("setting bookmark on item %d: %w", id, err)
	}
	return true, nil
}

// scanItem scans an item row (with trailing feed title) into a
// models.FeedItem.
func scanItem(row scanner) (*models.FeedItem, error) {
	var (
		item         models.FeedItem
		title        sql.NullString
		url          sql.NullString
		summary      sql.NullString
		content      sql.NullString
		publishedAt  sql.NullString
		readAt       sql.NullString
		bookmarkedAt sql.NullString
		createdAt    string
		updatedAt    string
	)

	if err := row.Scan(
		&item.ID, &item.FeedID, &item.GUID, &title, &url, &summary, &content,
		&publishedAt, &readAt, &bookmarkedAt, &createdAt, &updatedAt,
		&item.FeedTitle,
	); err != nil {
		return nil, err
	}

	item.Title = title.String
	item.URL = url.String
	item.Summary = summary.String
	item.Content = content.String
	item.PublishedAt = parseTimePtr(publishedAt)
	item.ReadAt = parseTimePtr(readAt)
	item.BookmarkedAt = parseTimePtr(bookmarkedAt)
	item.CreatedAt = parseTime(createdAt)
	item.UpdatedAt = parseTime(updatedAt)

	return &item, nil
}
