package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/10190997/stud-do/internal/access"
	"github.com/10190997/stud-do/internal/model"
)

// RoomRepo manages persistence for rooms and their memberships.
// Membership rows live in the room_members table; the (room_id,
// user_id) pair carries a UNIQUE key so a user holds at most one role
// per room.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// CreateWithOwner inserts a room and its owner membership in a single
// transaction. A failure after the room insert rolls the room back so
// no room ever exists without an owner row. The created room is
// returned with its generated ID and DB-default timestamps populated.
func (r *RoomRepo) CreateWithOwner(ctx context.Context, name string, ownerID uint64) (*model.Room, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `INSERT INTO rooms (name) VALUES (?)`, name)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO room_members (room_id, user_id, role) VALUES (?, ?, ?)`,
		uint64(id), ownerID, access.RoleOwner); err != nil {
		return nil, err
	}
	var room model.Room
	if err := tx.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM rooms WHERE id = ?`, uint64(id)).
		Scan(&room.ID, &room.Name, &room.CreatedAt, &room.UpdatedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &room, nil
}

// GetByID retrieves a room by its ID. It returns ErrRoomNotFound if
// there is no matching row.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	var room model.Room
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM rooms WHERE id = ?`, id).
		Scan(&room.ID, &room.Name, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

// Rename updates the room's name. ErrRoomNotFound is returned when no
// row matches.
func (r *RoomRepo) Rename(ctx context.Context, id uint64, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE rooms SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return err
	}
	// RowsAffected is zero both for a missing row and for an unchanged
	// name, so check existence explicitly only when nothing matched.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists uint64
		if err := r.db.QueryRowContext(ctx, `SELECT id FROM rooms WHERE id = ?`, id).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrRoomNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes a room together with its memberships, posts and post
// attachments in one transaction. Deleting an absent room returns
// ErrRoomNotFound.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE a FROM attachments a JOIN posts p ON p.id = a.post_id WHERE p.room_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE room_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM room_members WHERE room_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRoomNotFound
	}
	return tx.Commit()
}

// Membership returns the role the user holds in the room.
// ErrNoMembership is returned when no row exists; the zero Role is
// never handed out as a default.
func (r *RoomRepo) Membership(ctx context.Context, roomID, userID uint64) (access.Role, error) {
	var role uint8
	err := r.db.QueryRowContext(ctx,
		`SELECT role FROM room_members WHERE room_id = ? AND user_id = ? LIMIT 1`,
		roomID, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return access.RoleNone, ErrNoMembership
		}
		return access.RoleNone, err
	}
	return access.Role(role), nil
}

// AddMember inserts a membership row with the given role. The UNIQUE
// key on (room_id, user_id) turns a duplicate insert into
// ErrDuplicate.
func (r *RoomRepo) AddMember(ctx context.Context, roomID, userID uint64, role access.Role) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO room_members (room_id, user_id, role) VALUES (?, ?, ?)`,
		roomID, userID, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// SetRole updates the role of an existing membership. ErrNoMembership
// is returned when the pair has no row.
func (r *RoomRepo) SetRole(ctx context.Context, roomID, userID uint64, role access.Role) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE room_members SET role = ? WHERE room_id = ? AND user_id = ?`,
		role, roomID, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists uint64
		if err := r.db.QueryRowContext(ctx,
			`SELECT user_id FROM room_members WHERE room_id = ? AND user_id = ?`,
			roomID, userID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNoMembership
			}
			return err
		}
	}
	return nil
}

// RemoveMember deletes the membership row for (roomID, userID).
// ErrNoMembership is returned when there was nothing to delete.
func (r *RoomRepo) RemoveMember(ctx context.Context, roomID, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM room_members WHERE room_id = ? AND user_id = ?`, roomID, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoMembership
	}
	return nil
}

// ListMembers returns all memberships of a room ordered by role then
// user id, so the owner comes first and the output is deterministic.
func (r *RoomRepo) ListMembers(ctx context.Context, roomID uint64) ([]model.RoomMember, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT room_id, user_id, role, created_at FROM room_members
		 WHERE room_id = ? ORDER BY role, user_id`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]model.RoomMember, 0)
	for rows.Next() {
		var m model.RoomMember
		var role uint8
		if err := rows.Scan(&m.RoomID, &m.UserID, &role, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Role = access.Role(role)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

// ListForUser returns every room the user is a member of, newest
// first.
func (r *RoomRepo) ListForUser(ctx context.Context, userID uint64) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.name, r.created_at, r.updated_at
		 FROM rooms r JOIN room_members m ON m.room_id = r.id
		 WHERE m.user_id = ? ORDER BY r.created_at DESC, r.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]model.Room, 0)
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// SearchForUser returns the user's rooms whose name contains the
// search text (case-insensitive, collation permitting).
func (r *RoomRepo) SearchForUser(ctx context.Context, userID uint64, text string) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.name, r.created_at, r.updated_at
		 FROM rooms r JOIN room_members m ON m.room_id = r.id
		 WHERE m.user_id = ? AND r.name LIKE CONCAT('%', ?, '%')
		 ORDER BY r.name, r.id`, userID, text)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]model.Room, 0)
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
