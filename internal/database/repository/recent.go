package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jask/studydeck/internal/api"
)

// RecentRepo stores the last successful recent-items snapshot.
type RecentRepo struct {
	db *sql.DB
}

func NewRecentRepo(db *sql.DB) *RecentRepo { return &RecentRepo{db: db} }

// Replace swaps the stored snapshot for items in one transaction.
func (r *RecentRepo) Replace(ctx context.Context, items []RecentItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM recent_items`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear recent items: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO recent_items(kind, id, title, slug, author_username, author_image, viewed_at, position, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, it := range items {
		if _, err := stmt.ExecContext(ctx, it.Kind, it.ID, it.Title, it.Slug, it.AuthorUsername, it.AuthorImage,
			it.ViewedAt.UTC(), it.Position, it.FetchedAt.UTC()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert recent %s %s: %w", it.Kind, it.ID, err)
		}
	}
	return tx.Commit()
}

func (r *RecentRepo) List(ctx context.Context) ([]RecentItem, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT kind, id, title, slug, author_username, author_image, viewed_at, position, fetched_at
	FROM recent_items ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RecentItem
	for rows.Next() {
		var it RecentItem
		if err := rows.Scan(&it.Kind, &it.ID, &it.Title, &it.Slug, &it.AuthorUsername, &it.AuthorImage,
			&it.ViewedAt, &it.Position, &it.FetchedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// SnapshotFromAPI flattens a recent.get payload into rows, sets first, each
// in server order.
func SnapshotFromAPI(items api.RecentItems, fetchedAt time.Time) []RecentItem {
	out := make([]RecentItem, 0, len(items.Sets)+len(items.Folders))
	for _, s := range items.Sets {
		it := RecentItem{Kind: RecentKindSet, ID: s.ID, Title: s.Title, ViewedAt: s.ViewedAt, Position: len(out), FetchedAt: fetchedAt}
		it.AuthorUsername, it.AuthorImage = authorColumns(s.User)
		out = append(out, it)
	}
	for _, f := range items.Folders {
		it := RecentItem{Kind: RecentKindFolder, ID: f.ID, Title: f.Title, Slug: f.Slug, ViewedAt: f.ViewedAt, Position: len(out), FetchedAt: fetchedAt}
		it.AuthorUsername, it.AuthorImage = authorColumns(f.User)
		out = append(out, it)
	}
	return out
}

// ToAPI rebuilds the recent.get payload from stored rows.
func ToAPI(rows []RecentItem) api.RecentItems {
	var out api.RecentItems
	for _, it := range rows {
		var author *api.Author
		if it.AuthorUsername != nil {
			author = &api.Author{Username: *it.AuthorUsername, Image: it.AuthorImage}
		}
		switch it.Kind {
		case RecentKindSet:
			out.Sets = append(out.Sets, api.RecentSet{ID: it.ID, Title: it.Title, ViewedAt: it.ViewedAt, User: author})
		case RecentKindFolder:
			out.Folders = append(out.Folders, api.RecentFolder{ID: it.ID, Title: it.Title, Slug: it.Slug, ViewedAt: it.ViewedAt, User: author})
		}
	}
	return out
}

func authorColumns(a *api.Author) (*string, *string) {
	if a == nil {
		return nil, nil
	}
	name := a.Username
	return &name, a.Image
}
