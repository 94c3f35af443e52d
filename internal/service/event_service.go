package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/10190997/stud-do/internal/model"
	"github.com/10190997/stud-do/internal/repository"
)

// EventStore is the persistence surface the event manager needs. It is
// implemented by repository.EventRepo. The Validated write methods run
// the check callback against a locked snapshot of the schedule's other
// events inside the same transaction as the write.
type EventStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
	ListBySchedule(ctx context.Context, scheduleID uint64) ([]model.Event, error)
	CreateValidated(ctx context.Context, ev *model.Event, check func(existing []model.Event) error) error
	UpdateValidated(ctx context.Context, ev *model.Event, check func(existing []model.Event) error) error
	Delete(ctx context.Context, id uint64) error
}

// ScheduleAccess is the slice of the schedule store the event manager
// needs to answer "does this schedule exist, who created it, and does
// this user see it". repository.ScheduleRepo implements it.
type ScheduleAccess interface {
	GetByID(ctx context.Context, id uint64) (*model.Schedule, error)
	Share(ctx context.Context, scheduleID, userID uint64) (*model.ScheduleShare, error)
}

// CreateEventInput carries the fields of a new event. NotifyAt is
// optional.
type CreateEventInput struct {
	ScheduleID uint64
	Name       string
	StartsAt   time.Time
	EndsAt     time.Time
	NotifyAt   *time.Time
}

// UpdateEventInput carries a partial event update. Nil fields keep the
// stored value.
type UpdateEventInput struct {
	Name     *string
	StartsAt *time.Time
	EndsAt   *time.Time
	NotifyAt *time.Time
}

// EventService manages the events inside schedules. Writes are
// restricted to the schedule's creator; reads require a share.
type EventService struct {
	events    EventStore
	schedules ScheduleAccess
}

// NewEventService constructs an EventService over the given stores.
func NewEventService(events EventStore, schedules ScheduleAccess) *EventService {
	return &EventService{events: events, schedules: schedules}
}

// checkPlacement rejects a candidate start time against the schedule's
// existing events. Two cases conflict: an existing event starting at
// the exact same instant, and an existing event whose end lies
// strictly after the candidate's start. The check is deliberately
// one-sided: the candidate's own end is never examined, and a
// candidate placed entirely before an existing event is still
// rejected. Clients rely on this exact behavior; do not extend it to
// a full bidirectional overlap test.
func checkPlacement(existing []model.Event, start time.Time) error {
	for _, ev := range existing {
		if ev.StartsAt.Equal(start) {
			return Conflict("an event in this schedule already starts at this time")
		}
		if ev.EndsAt.After(start) {
			return Conflict("the event would start inside another event in this schedule")
		}
	}
	return nil
}

// CreateEvent adds an event to a schedule. Only the schedule's creator
// may add events, and the start time must pass the placement check
// against the schedule's existing events.
func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput, callerID uint64) (*model.Event, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, Invalid("event name is required")
	}
	if _, err := s.requireCreator(ctx, in.ScheduleID, callerID); err != nil {
		return nil, err
	}
	ev := &model.Event{
		ScheduleID: in.ScheduleID,
		Name:       in.Name,
		StartsAt:   in.StartsAt,
		EndsAt:     in.EndsAt,
		NotifyAt:   in.NotifyAt,
	}
	err := s.events.CreateValidated(ctx, ev, func(existing []model.Event) error {
		return checkPlacement(existing, ev.StartsAt)
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return nil, svcErr
		}
		return nil, Unexpected(err)
	}
	return ev, nil
}

// UpdateEvent changes an event's fields. Only the schedule's creator
// may update. The placement check runs again only when the update
// actually moves the event's start or end; a rename or a notification
// change slides through untouched. When the check does run it sees
// the stored row itself too, so a move that lands on or before the
// event's own old interval is rejected like any other conflict.
func (s *EventService) UpdateEvent(ctx context.Context, eventID uint64, in UpdateEventInput, callerID uint64) (*model.Event, error) {
	stored, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, NotFound("event not found")
		}
		return nil, Unexpected(err)
	}
	if _, err := s.requireCreator(ctx, stored.ScheduleID, callerID); err != nil {
		return nil, err
	}

	merged := *stored
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, Invalid("event name is required")
		}
		merged.Name = name
	}
	if in.StartsAt != nil {
		merged.StartsAt = *in.StartsAt
	}
	if in.EndsAt != nil {
		merged.EndsAt = *in.EndsAt
	}
	if in.NotifyAt != nil {
		merged.NotifyAt = in.NotifyAt
	}

	var check func(existing []model.Event) error
	if !merged.StartsAt.Equal(stored.StartsAt) || !merged.EndsAt.Equal(stored.EndsAt) {
		start := merged.StartsAt
		check = func(existing []model.Event) error {
			return checkPlacement(existing, start)
		}
	}
	if err := s.events.UpdateValidated(ctx, &merged, check); err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return nil, svcErr
		}
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, NotFound("event not found")
		}
		return nil, Unexpected(err)
	}
	return &merged, nil
}

// DeleteEvent removes an event. Only the schedule's creator may
// delete.
func (s *EventService) DeleteEvent(ctx context.Context, eventID, callerID uint64) error {
	stored, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return NotFound("event not found")
		}
		return Unexpected(err)
	}
	if _, err := s.requireCreator(ctx, stored.ScheduleID, callerID); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return NotFound("event not found")
		}
		return Unexpected(err)
	}
	return nil
}

// GetEvent returns one event. The caller needs a share in the event's
// schedule; without one the event does not exist for them.
func (s *EventService) GetEvent(ctx context.Context, eventID, callerID uint64) (*model.Event, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, NotFound("event not found")
		}
		return nil, Unexpected(err)
	}
	if _, err := s.schedules.Share(ctx, ev.ScheduleID, callerID); err != nil {
		if errors.Is(err, repository.ErrNoShare) {
			return nil, NotFound("event not found")
		}
		return nil, Unexpected(err)
	}
	return ev, nil
}

// ListEvents returns a schedule's events ordered by start time. The
// caller needs a share in the schedule.
func (s *EventService) ListEvents(ctx context.Context, scheduleID, callerID uint64) ([]model.Event, error) {
	if _, err := s.schedules.Share(ctx, scheduleID, callerID); err != nil {
		if errors.Is(err, repository.ErrNoShare) {
			return nil, NotFound("schedule not found")
		}
		return nil, Unexpected(err)
	}
	events, err := s.events.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, Unexpected(err)
	}
	return events, nil
}

// requireCreator resolves the schedule and fails unless the caller
// created it.
func (s *EventService) requireCreator(ctx context.Context, scheduleID, callerID uint64) (*model.Schedule, error) {
	sched, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return nil, NotFound("schedule not found")
		}
		return nil, Unexpected(err)
	}
	if sched.CreatorID != callerID {
		return nil, PermissionDenied("only the schedule creator can manage its events")
	}
	return sched, nil
}
