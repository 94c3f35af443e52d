package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/10190997/stud-do/internal/model"
)

// ScheduleRepo manages persistence for schedules and their per-user
// shares. Share rows live in the schedule_shares table; the
// (schedule_id, user_id) pair carries a UNIQUE key.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo constructs a ScheduleRepo with the given DB handle.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

// CreateWithShare inserts a schedule and its creator share in a single
// transaction, so no schedule ever exists without the creator's
// schedule_shares row. The share is created with the given color and
// visibility on.
func (r *ScheduleRepo) CreateWithShare(ctx context.Context, name string, creatorID uint64, color string) (*model.Schedule, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO schedules (name, creator_id) VALUES (?, ?)`, name, creatorID)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schedule_shares (schedule_id, user_id, color, visibility) VALUES (?, ?, ?, TRUE)`,
		uint64(id), creatorID, color); err != nil {
		return nil, err
	}
	var s model.Schedule
	if err := tx.QueryRowContext(ctx,
		`SELECT id, name, creator_id, created_at FROM schedules WHERE id = ?`, uint64(id)).
		Scan(&s.ID, &s.Name, &s.CreatorID, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID retrieves a schedule by its ID. It returns
// ErrScheduleNotFound if there is no matching row.
func (r *ScheduleRepo) GetByID(ctx context.Context, id uint64) (*model.Schedule, error) {
	var s model.Schedule
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, creator_id, created_at FROM schedules WHERE id = ?`, id).
		Scan(&s.ID, &s.Name, &s.CreatorID, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Rename updates the schedule's name. ErrScheduleNotFound is returned
// when no row matches.
func (r *ScheduleRepo) Rename(ctx context.Context, id uint64, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE schedules SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists uint64
		if err := r.db.QueryRowContext(ctx, `SELECT id FROM schedules WHERE id = ?`, id).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrScheduleNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes a schedule together with its shares and events in one
// transaction. Deleting an absent schedule returns
// ErrScheduleNotFound.
func (r *ScheduleRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE schedule_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_shares WHERE schedule_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrScheduleNotFound
	}
	return tx.Commit()
}

// Share returns the share row for (scheduleID, userID). ErrNoShare is
// returned when the pair has no row.
func (r *ScheduleRepo) Share(ctx context.Context, scheduleID, userID uint64) (*model.ScheduleShare, error) {
	var sh model.ScheduleShare
	err := r.db.QueryRowContext(ctx,
		`SELECT schedule_id, user_id, color, visibility, created_at
		 FROM schedule_shares WHERE schedule_id = ? AND user_id = ? LIMIT 1`,
		scheduleID, userID).
		Scan(&sh.ScheduleID, &sh.UserID, &sh.Color, &sh.Visibility, &sh.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoShare
		}
		return nil, err
	}
	return &sh, nil
}

// AddShare inserts a share row with the given appearance. The UNIQUE
// key on (schedule_id, user_id) turns a duplicate insert into
// ErrDuplicate.
func (r *ScheduleRepo) AddShare(ctx context.Context, scheduleID, userID uint64, color string, visibility bool) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO schedule_shares (schedule_id, user_id, color, visibility) VALUES (?, ?, ?, ?)`,
		scheduleID, userID, color, visibility)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// UpdateShare sets the color and visibility of an existing share row.
// ErrNoShare is returned when the pair has no row. Only the
// (scheduleID, userID) row is touched; other users' appearance is
// never affected.
func (r *ScheduleRepo) UpdateShare(ctx context.Context, scheduleID, userID uint64, color string, visibility bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE schedule_shares SET color = ?, visibility = ? WHERE schedule_id = ? AND user_id = ?`,
		color, visibility, scheduleID, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists uint64
		if err := r.db.QueryRowContext(ctx,
			`SELECT user_id FROM schedule_shares WHERE schedule_id = ? AND user_id = ?`,
			scheduleID, userID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNoShare
			}
			return err
		}
	}
	return nil
}

// RemoveShare deletes the share row for (scheduleID, userID).
// ErrNoShare is returned when there was nothing to delete.
func (r *ScheduleRepo) RemoveShare(ctx context.Context, scheduleID, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM schedule_shares WHERE schedule_id = ? AND user_id = ?`, scheduleID, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoShare
	}
	return nil
}

// ListShares returns all share rows of a schedule ordered by user id.
func (r *ScheduleRepo) ListShares(ctx context.Context, scheduleID uint64) ([]model.ScheduleShare, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT schedule_id, user_id, color, visibility, created_at
		 FROM schedule_shares WHERE schedule_id = ? ORDER BY user_id`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shares := make([]model.ScheduleShare, 0)
	for rows.Next() {
		var sh model.ScheduleShare
		if err := rows.Scan(&sh.ScheduleID, &sh.UserID, &sh.Color, &sh.Visibility, &sh.CreatedAt); err != nil {
			return nil, err
		}
		shares = append(shares, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return shares, nil
}

// ListForUser returns every schedule the user has a share for, paired
// with that user's share row, newest schedule first.
func (r *ScheduleRepo) ListForUser(ctx context.Context, userID uint64) ([]model.Schedule, []model.ScheduleShare, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.id, s.name, s.creator_id, s.created_at,
		        sh.schedule_id, sh.user_id, sh.color, sh.visibility, sh.created_at
		 FROM schedules s JOIN schedule_shares sh ON sh.schedule_id = s.id
		 WHERE sh.user_id = ? ORDER BY s.created_at DESC, s.id DESC`, userID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	schedules := make([]model.Schedule, 0)
	shares := make([]model.ScheduleShare, 0)
	for rows.Next() {
		var s model.Schedule
		var sh model.ScheduleShare
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatorID, &s.CreatedAt,
			&sh.ScheduleID, &sh.UserID, &sh.Color, &sh.Visibility, &sh.CreatedAt); err != nil {
			return nil, nil, err
		}
		schedules = append(schedules, s)
		shares = append(shares, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return schedules, shares, nil
}
