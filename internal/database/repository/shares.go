package repository

import (
	"context"
	"database/sql"
)

// ShareLinkRepo keeps the history of copied share links.
type ShareLinkRepo struct {
	db *sql.DB
}

func NewShareLinkRepo(db *sql.DB) *ShareLinkRepo { return &ShareLinkRepo{db: db} }

func (r *ShareLinkRepo) Insert(ctx context.Context, l ShareLink) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO share_links(id, target_kind, target, url, created_at) VALUES (?, ?, ?, ?, ?)`,
		l.ID, l.TargetKind, l.Target, l.URL, l.CreatedAt.UTC())
	return err
}

// Latest returns up to limit links, newest first.
func (r *ShareLinkRepo) Latest(ctx context.Context, limit int) ([]ShareLink, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, target_kind, target, url, created_at FROM share_links
	ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ShareLink
	for rows.Next() {
		var l ShareLink
		if err := rows.Scan(&l.ID, &l.TargetKind, &l.Target, &l.URL, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
