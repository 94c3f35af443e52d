package model

import "time"

// Event represents a time-bounded calendar item as stored in the
// `events` table. The interval is [StartsAt, EndsAt); EndsAt is
// expected to be at or after StartsAt but that is not enforced by the
// schema. All timestamps are stored in UTC.
//
// Fields:
//  ID         – primary key identifier of the event.
//  ScheduleID – schedule the event belongs to.
//  Name       – display name of the event.
//  StartsAt   – when the event begins.
//  EndsAt     – when the event ends.
//  NotifyAt   – optional reminder timestamp (null when no reminder).
type Event struct {
	ID         uint64     // events.id
	ScheduleID uint64     // events.schedule_id
	Name       string     // events.name
	StartsAt   time.Time  // events.starts_at
	EndsAt     time.Time  // events.ends_at
	NotifyAt   *time.Time // events.notify_at (nullable)
}
