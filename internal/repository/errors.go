// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// the service managers to distinguish between different failure
// scenarios without parsing driver error text: a missing row maps to
// a not-found result, a duplicate key to a conflict.
package repository

import "errors"

// ErrRoomNotFound indicates that a room was not located in the DB.
var ErrRoomNotFound = errors.New("room not found")

// ErrScheduleNotFound indicates that a schedule was not located in the DB.
var ErrScheduleNotFound = errors.New("schedule not found")

// ErrEventNotFound indicates that an event was not located in the DB.
var ErrEventNotFound = errors.New("event not found")

// ErrPostNotFound indicates that a post was not located in the DB.
var ErrPostNotFound = errors.New("post not found")

// ErrUserNotFound indicates that a user was not located in the DB.
var ErrUserNotFound = errors.New("user not found")

// ErrNoMembership is returned when a (room, user) pair has no
// room_members row. Callers treat this as "no access", never as a
// default role.
var ErrNoMembership = errors.New("no membership")

// ErrNoShare is returned when a (schedule, user) pair has no
// schedule_shares row.
var ErrNoShare = errors.New("no share")

// ErrDuplicate is returned when an insert collides with an existing
// unique (room, user) or (schedule, user) pair.
var ErrDuplicate = errors.New("duplicate row")

// ErrRefreshTokenInvalid is returned when a refresh token hash matches
// no row, or the row is expired or revoked. Callers answer with 401
// without distinguishing the three cases.
var ErrRefreshTokenInvalid = errors.New("refresh token invalid")
