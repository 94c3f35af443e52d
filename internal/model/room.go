package model

import (
	"time"

	"github.com/10190997/stud-do/internal/access"
)

// Room represents a discussion space as stored in the `rooms` table.
// Membership is kept in the `room_members` table; every room has
// exactly one member with the owner role.
//
// Fields:
//  ID        – primary key identifier of the room.
//  Name      – display name of the room.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type Room struct {
	ID        uint64    // rooms.id
	Name      string    // rooms.name
	CreatedAt time.Time // rooms.created_at
	UpdatedAt time.Time // rooms.updated_at
}

// RoomMember mirrors the `room_members` table. The (RoomID, UserID)
// pair is unique; Role holds the numeric role value (owner=1,
// moderator=2, member=3).
//
// Fields:
//  RoomID    – room the membership belongs to.
//  UserID    – member user.
//  Role      – per-room role of the user.
//  CreatedAt – when the membership was created.
type RoomMember struct {
	RoomID    uint64      // room_members.room_id
	UserID    uint64      // room_members.user_id
	Role      access.Role // room_members.role
	CreatedAt time.Time   // room_members.created_at
}
