package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/10190997/stud-do/internal/model"
)

// EventRepo manages persistence for calendar events. Placement writes
// go through a serializable transaction scoped to the schedule: the
// existing events are read with a locking select, the caller's
// placement check runs against that snapshot, and the row is written
// before the lock is released. Two concurrent placements for the same
// schedule therefore cannot both pass the check against a stale
// snapshot.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// GetByID retrieves an event by its ID. It returns ErrEventNotFound if
// there is no matching row.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	var ev model.Event
	var notify sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT id, schedule_id, name, starts_at, ends_at, notify_at FROM events WHERE id = ?`, id).
		Scan(&ev.ID, &ev.ScheduleID, &ev.Name, &ev.StartsAt, &ev.EndsAt, &notify)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if notify.Valid {
		t := notify.Time
		ev.NotifyAt = &t
	}
	return &ev, nil
}

// ListBySchedule returns all events of a schedule ordered by start
// time.
func (r *EventRepo) ListBySchedule(ctx context.Context, scheduleID uint64) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, schedule_id, name, starts_at, ends_at, notify_at
		 FROM events WHERE schedule_id = ? ORDER BY starts_at, id`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// CreateValidated inserts a new event after running the supplied
// placement check against the schedule's existing events, all inside
// one serializable transaction. The check error is returned unchanged
// so callers can surface their own failure types. On success the
// generated ID is populated on ev.
func (r *EventRepo) CreateValidated(ctx context.Context, ev *model.Event, check func(existing []model.Event) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := listByScheduleTx(ctx, tx, ev.ScheduleID)
	if err != nil {
		return err
	}
	if err := check(existing); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO events (schedule_id, name, starts_at, ends_at, notify_at) VALUES (?, ?, ?, ?, ?)`,
		ev.ScheduleID, ev.Name, ev.StartsAt, ev.EndsAt, nullableTime(ev.NotifyAt))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ev.ID = uint64(id)
	return tx.Commit()
}

// UpdateValidated rewrites an existing event after running the
// supplied placement check against all of the schedule's events,
// inside one serializable transaction. The stored row being updated
// is part of the snapshot, so a move can be rejected by the event's
// own old interval. Pass a nil check to skip re-validation when the
// interval did not change. ErrEventNotFound is returned when the row
// vanished between read and write.
func (r *EventRepo) UpdateValidated(ctx context.Context, ev *model.Event, check func(existing []model.Event) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if check != nil {
		existing, err := listByScheduleTx(ctx, tx, ev.ScheduleID)
		if err != nil {
			return err
		}
		if err := check(existing); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE events SET name = ?, starts_at = ?, ends_at = ?, notify_at = ? WHERE id = ? AND schedule_id = ?`,
		ev.Name, ev.StartsAt, ev.EndsAt, nullableTime(ev.NotifyAt), ev.ID, ev.ScheduleID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists uint64
		if err := tx.QueryRowContext(ctx,
			`SELECT id FROM events WHERE id = ? AND schedule_id = ?`, ev.ID, ev.ScheduleID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrEventNotFound
			}
			return err
		}
	}
	return tx.Commit()
}

// Delete removes an event. ErrEventNotFound is returned when there was
// nothing to delete.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// listByScheduleTx reads the schedule's events inside the transaction
// with FOR UPDATE so concurrent placements serialize on the same rows.
func listByScheduleTx(ctx context.Context, tx *sql.Tx, scheduleID uint64) ([]model.Event, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, schedule_id, name, starts_at, ends_at, notify_at
		 FROM events WHERE schedule_id = ? ORDER BY starts_at, id FOR UPDATE`,
		scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]model.Event, error) {
	events := make([]model.Event, 0)
	for rows.Next() {
		var ev model.Event
		var notify sql.NullTime
		if err := rows.Scan(&ev.ID, &ev.ScheduleID, &ev.Name, &ev.StartsAt, &ev.EndsAt, &notify); err != nil {
			return nil, err
		}
		if notify.Valid {
			t := notify.Time
			ev.NotifyAt = &t
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// nullableTime converts an optional timestamp into a driver-friendly
// value: nil stores SQL NULL.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
