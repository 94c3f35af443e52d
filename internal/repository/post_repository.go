package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/10190997/stud-do/internal/model"
)

// PostRepo manages persistence for room posts and their attachment
// links. A post and its attachments are written together so a post is
// never visible with half its attachments.
type PostRepo struct {
	db *sql.DB
}

// NewPostRepo constructs a PostRepo with the given DB handle.
func NewPostRepo(db *sql.DB) *PostRepo { return &PostRepo{db: db} }

// Create inserts a post and its attachment rows in one transaction.
// On success the generated ID and timestamps are populated on p.
func (r *PostRepo) Create(ctx context.Context, p *model.Post) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO posts (room_id, author_id, text) VALUES (?, ?, ?)`,
		p.RoomID, p.AuthorID, p.Text)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	if err := insertAttachmentsTx(ctx, tx, p.ID, p.Attachments); err != nil {
		return err
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM posts WHERE id = ?`, p.ID).
		Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID retrieves a post with its attachments. It returns
// ErrPostNotFound if there is no matching row.
func (r *PostRepo) GetByID(ctx context.Context, id uint64) (*model.Post, error) {
	var p model.Post
	err := r.db.QueryRowContext(ctx,
		`SELECT id, room_id, author_id, text, created_at, updated_at FROM posts WHERE id = ?`, id).
		Scan(&p.ID, &p.RoomID, &p.AuthorID, &p.Text, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	p.Attachments = make([]string, 0)
	rows, err := r.db.QueryContext(ctx,
		`SELECT link FROM attachments WHERE post_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, err
		}
		p.Attachments = append(p.Attachments, link)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByRoom returns all posts of a room, newest first, with their
// attachments populated in a single extra query.
func (r *PostRepo) ListByRoom(ctx context.Context, roomID uint64) ([]model.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, room_id, author_id, text, created_at, updated_at
		 FROM posts WHERE room_id = ? ORDER BY created_at DESC, id DESC`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]model.Post, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.RoomID, &p.AuthorID, &p.Text, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Attachments = make([]string, 0)
		index[p.ID] = len(posts)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return posts, nil
	}

	// Fetch attachments for all posts in one query.
	ids := make([]any, 0, len(posts))
	placeholders := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
		placeholders = append(placeholders, "?")
	}
	aq := `SELECT post_id, link FROM attachments WHERE post_id IN (` +
		strings.Join(placeholders, ",") + `) ORDER BY post_id, id`
	arows, err := r.db.QueryContext(ctx, aq, ids...)
	if err != nil {
		return nil, err
	}
	defer arows.Close()
	for arows.Next() {
		var pid uint64
		var link string
		if err := arows.Scan(&pid, &link); err != nil {
			return nil, err
		}
		if idx, ok := index[pid]; ok {
			posts[idx].Attachments = append(posts[idx].Attachments, link)
		}
	}
	if err := arows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

// Update rewrites a post's text and replaces its attachments in one
// transaction. ErrPostNotFound is returned when the post does not
// exist.
func (r *PostRepo) Update(ctx context.Context, id uint64, text string, attachments []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var exists uint64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM posts WHERE id = ?`, id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPostNotFound
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE posts SET text = ? WHERE id = ?`, text, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM attachments WHERE post_id = ?`, id); err != nil {
		return err
	}
	if err := insertAttachmentsTx(ctx, tx, id, attachments); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a post and its attachments. ErrPostNotFound is
// returned when there was nothing to delete.
func (r *PostRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attachments WHERE post_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrPostNotFound
	}
	return tx.Commit()
}

// insertAttachmentsTx bulk-inserts attachment links for a post within
// the given transaction. Passing an empty slice has no effect.
func insertAttachmentsTx(ctx context.Context, tx *sql.Tx, postID uint64, links []string) error {
	if len(links) == 0 {
		return nil
	}
	query := `INSERT INTO attachments (post_id, link) VALUES `
	args := make([]any, 0, len(links)*2)
	for i, link := range links {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, postID, link)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}
