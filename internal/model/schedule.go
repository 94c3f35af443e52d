package model

import "time"

// DefaultShareColor is the display color assigned to a schedule share
// when the grantee has not picked one.
const DefaultShareColor = "#555555"

// Schedule represents a shared calendar as stored in the `schedules`
// table. The creator is fixed at creation time and is the only user
// allowed to rename or delete the schedule or to mutate its events.
//
// Fields:
//  ID        – primary key identifier of the schedule.
//  Name      – display name of the schedule.
//  CreatorID – user who created the schedule (immutable).
//  CreatedAt – timestamp of creation.
type Schedule struct {
	ID        uint64    // schedules.id
	Name      string    // schedules.name
	CreatorID uint64    // schedules.creator_id
	CreatedAt time.Time // schedules.created_at
}

// ScheduleShare mirrors the `schedule_shares` table. The
// (ScheduleID, UserID) pair is unique. A row grants the user access
// to the schedule and carries that user's personal appearance
// settings; the creator always has a row, written atomically with the
// schedule itself.
//
// Fields:
//  ScheduleID – schedule the share belongs to.
//  UserID     – user granted access.
//  Color      – the user's display color for this schedule.
//  Visibility – whether the user currently shows the schedule.
//  CreatedAt  – when the share was created.
type ScheduleShare struct {
	ScheduleID uint64    // schedule_shares.schedule_id
	UserID     uint64    // schedule_shares.user_id
	Color      string    // schedule_shares.color
	Visibility bool      // schedule_shares.visibility
	CreatedAt  time.Time // schedule_shares.created_at
}
