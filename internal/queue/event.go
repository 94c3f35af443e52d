// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// ReminderScheduledEvent is published when a calendar event with a
// notification timestamp is created or updated. It carries enough
// information for downstream consumers to log or deliver the reminder
// without querying the primary database.
type ReminderScheduledEvent struct {
	EventID      uint64 `json:"event_id"`
	ScheduleID   uint64 `json:"schedule_id"`
	ScheduleName string `json:"schedule_name"`
	CreatorID    uint64 `json:"creator_id"`
	EventName    string `json:"event_name"`
	StartsAt     string `json:"starts_at"`
	EndsAt       string `json:"ends_at"`
	NotifyAt     string `json:"notify_at"`
	QueuedAt     string `json:"queued_at"`
}
