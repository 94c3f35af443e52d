package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/10190997/stud-do/internal/model"
)

func newEventFixture(t *testing.T) (*EventService, *ScheduleService, uint64) {
	t.Helper()
	schedules := newMemScheduleStore()
	schedSvc := NewScheduleService(schedules)
	view, err := schedSvc.CreateSchedule(context.Background(), "spring term", "", alice)
	require.NoError(t, err)
	svc := NewEventService(newMemEventStore(), schedules)
	return svc, schedSvc, view.Schedule.ID
}

func at(hour, min int) time.Time {
	return time.Date(2026, time.September, 1, hour, min, 0, 0, time.UTC)
}

func TestCreateEventCreatorOnly(t *testing.T) {
	svc, schedSvc, schedID := newEventFixture(t)
	_, err := schedSvc.GrantAccess(context.Background(), schedID, bob, alice)
	require.NoError(t, err)

	in := CreateEventInput{ScheduleID: schedID, Name: "lecture", StartsAt: at(10, 0), EndsAt: at(11, 0)}
	_, err = svc.CreateEvent(context.Background(), in, bob)
	require.Error(t, err)
	assert.Equal(t, KindPermissionDenied, KindOf(err))

	ev, err := svc.CreateEvent(context.Background(), in, alice)
	require.NoError(t, err)
	assert.NotZero(t, ev.ID)
	assert.Equal(t, "lecture", ev.Name)
}

func TestCreateEventUnknownSchedule(t *testing.T) {
	svc, _, _ := newEventFixture(t)

	in := CreateEventInput{ScheduleID: 999, Name: "lecture", StartsAt: at(10, 0), EndsAt: at(11, 0)}
	_, err := svc.CreateEvent(context.Background(), in, alice)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

// Placement around an existing 10:00 to 11:00 event: a candidate at the
// same start is rejected, a candidate starting inside it is rejected,
// and a candidate starting exactly at its end is accepted.
func TestEventPlacementAgainstExisting(t *testing.T) {
	svc, _, schedID := newEventFixture(t)
	_, err := svc.CreateEvent(context.Background(), CreateEventInput{
		ScheduleID: schedID, Name: "lecture", StartsAt: at(10, 0), EndsAt: at(11, 0),
	}, alice)
	require.NoError(t, err)

	cases := []struct {
		name  string
		start time.Time
		ok    bool
	}{
		{"identical start", at(10, 0), false},
		{"start inside existing", at(10, 30), false},
		{"start at existing end", at(11, 0), true},
		{"start after existing end", at(12, 0), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateEvent(context.Background(), CreateEventInput{
				ScheduleID: schedID, Name: "seminar", StartsAt: tc.start, EndsAt: tc.start.Add(time.Hour),
			}, alice)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, KindConflict, KindOf(err))
			}
		})
	}
}

// The check guards only the candidate's start against other events'
// ends. A candidate placed entirely before an existing event is still
// rejected, because that event's end lies after the candidate's start.
func TestEventPlacementBeforeExistingRejected(t *testing.T) {
	svc, _, schedID := newEventFixture(t)
	_, err := svc.CreateEvent(context.Background(), CreateEventInput{
		ScheduleID: schedID, Name: "late lecture", StartsAt: at(14, 0), EndsAt: at(15, 0),
	}, alice)
	require.NoError(t, err)

	_, err = svc.CreateEvent(context.Background(), CreateEventInput{
		ScheduleID: schedID, Name: "morning briefing", StartsAt: at(9, 0), EndsAt: at(9, 30),
	}, alice)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestUpdateEventRevalidatesOnlyWhenTimesChange(t *testing.T) {
	svc, _, schedID := newEventFixture(t)
	first, err := svc.CreateEvent(context.Background(), CreateEventInput{
		ScheduleID: schedID, Name: "lecture", StartsAt: at(10, 0), EndsAt: at(11, 0),
	}, alice)
	require.NoError(t, err)
	second, err := svc.CreateEvent(context.Background(), CreateEventInput{
		ScheduleID: schedID, Name: "seminar", StartsAt: at(11, 0), EndsAt: at(12, 0),
	}, alice)
	require.NoError(t, err)

	// Renaming never trips the placement check.
	name := "guest lecture"
	got, err := svc.UpdateEvent(context.Background(), first.ID, UpdateEventInput{Name: &name}, alice)
	require.NoError(t, err)
	assert.Equal(t, "guest lecture", got.Name)
	assert.True(t, got.StartsAt.Equal(at(10, 0)))

	// Moving the second event onto the first one does.
	start := at(10, 0)
	_, err = svc.UpdateEvent(context.Background(), second.ID, UpdateEventInput{StartsAt: &start}, alice)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	// Moving it to a slot past every existing end, its own included,
	// succeeds.
	start = at(13, 0)
	end := at(14, 0)
	got, err = svc.UpdateEvent(context.Background(), second.ID, UpdateEventInput{StartsAt: &start, EndsAt: &end}, alice)
	require.NoError(t, err)
	assert.True(t, got.StartsAt.Equal(at(13, 0)))
}

func TestUpdateEventCountsItsOwnStoredRow(t *testing.T) {
	svc, _, schedID := newEventFixture(t)
	ev, err := svc.CreateEvent(context.Background(), CreateEventInput{
		ScheduleID: schedID, Name: "lecture", StartsAt: at(10, 0), EndsAt: at(11, 0),
	}, alice)
	require.NoError(t, err)

	// Sliding the only event half an hour later collides with its own
	// stored interval: the old end 11:00 lies after the new start.
	start := at(10, 30)
	end := at(11, 30)
	_, err = svc.UpdateEvent(context.Background(), ev.ID, UpdateEventInput{StartsAt: &start, EndsAt: &end}, alice)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	// Shrinking in place fails the same way: the new start equals the
	// stored row's start.
	start = at(10, 0)
	end = at(10, 30)
	_, err = svc.UpdateEvent(context.Background(), ev.ID, UpdateEventInput{StartsAt: &start, EndsAt: &end}, alice)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	// Only a slot starting at or after the stored end is accepted.
	start = at(11, 0)
	end = at(12, 0)
	got, err := svc.UpdateEvent(context.Background(), ev.ID, UpdateEventInput{StartsAt: &start, EndsAt: &end}, alice)
	require.NoError(t, err)
	assert.True(t, got.StartsAt.Equal(at(11, 0)))
}

func TestUpdateEventKeepsUnsetFields(t *testing.T) {
	svc, _, schedID := newEventFixture(t)
	notify := at(9, 45)
	ev, err := svc.CreateEvent(context.Background(), CreateEventInput{
		ScheduleID: schedID, Name: "lecture", StartsAt: at(10, 0), EndsAt: at(11, 0), NotifyAt: &notify,
	}, alice)
	require.NoError(t, err)

	name := "moved lecture"
	got, err := svc.UpdateEvent(context.Background(), ev.ID, UpdateEventInput{Name: &name}, alice)
	require.NoError(t, err)
	assert.True(t, got.StartsAt.Equal(at(10, 0)))
	assert.True(t, got.EndsAt.Equal(at(11, 0)))
	require.NotNil(t, got.NotifyAt)
	assert.True(t, got.NotifyAt.Equal(notify))
}

func TestUpdateEventCreatorOnly(t *testing.T) {
	svc, schedSvc, schedID := newEventFixture(t)
	_, err := schedSvc.GrantAccess(context.Background(), schedID, bob, alice)
	require.NoError(t, err)
	ev, err := svc.CreateEvent(context.Background(), CreateEventInput{
		ScheduleID: schedID, Name: "lecture", StartsAt: at(10, 0), EndsAt: at(11, 0),
	}, alice)
	require.NoError(t, err)

	name := "hijacked"
	_, err = svc.UpdateEvent(context.Background(), ev.ID, UpdateEventInput{Name: &name}, bob)
	require.Error(t, err)
	assert.Equal(t, KindPermissionDenied, KindOf(err))
}

func TestDeleteEventCreatorOnly(t *testing.T) {
	svc, schedSvc, schedID := newEventFixture(t)
	_, err := schedSvc.GrantAccess(context.Background(), schedID, bob, alice)
	require.NoError(t, err)
	ev, err := svc.CreateEvent(context.Background(), CreateEventInput{
		ScheduleID: schedID, Name: "lecture", StartsAt: at(10, 0), EndsAt: at(11, 0),
	}, alice)
	require.NoError(t, err)

	err = svc.DeleteEvent(context.Background(), ev.ID, bob)
	require.Error(t, err)
	assert.Equal(t, KindPermissionDenied, KindOf(err))

	require.NoError(t, svc.DeleteEvent(context.Background(), ev.ID, alice))

	_, err = svc.GetEvent(context.Background(), ev.ID, alice)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestListEventsRequiresShare(t *testing.T) {
	svc, schedSvc, schedID := newEventFixture(t)
	_, err := svc.CreateEvent(context.Background(), CreateEventInput{
		ScheduleID: schedID, Name: "lecture", StartsAt: at(10, 0), EndsAt: at(11, 0),
	}, alice)
	require.NoError(t, err)

	_, err = svc.ListEvents(context.Background(), schedID, bob)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = schedSvc.GrantAccess(context.Background(), schedID, bob, alice)
	require.NoError(t, err)

	events, err := svc.ListEvents(context.Background(), schedID, bob)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "lecture", events[0].Name)
}

func TestGetEventRequiresShare(t *testing.T) {
	svc, _, schedID := newEventFixture(t)
	ev, err := svc.CreateEvent(context.Background(), CreateEventInput{
		ScheduleID: schedID, Name: "lecture", StartsAt: at(10, 0), EndsAt: at(11, 0),
	}, alice)
	require.NoError(t, err)

	_, err = svc.GetEvent(context.Background(), ev.ID, bob)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	got, err := svc.GetEvent(context.Background(), ev.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, got.ID)
}

func TestCheckPlacementOrderIndependent(t *testing.T) {
	existing := []model.Event{
		{ID: 1, StartsAt: at(8, 0), EndsAt: at(9, 0)},
		{ID: 2, StartsAt: at(10, 0), EndsAt: at(11, 0)},
	}
	err := checkPlacement(existing, at(10, 30))
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	assert.NoError(t, checkPlacement(existing, at(11, 0)))
	assert.NoError(t, checkPlacement(nil, at(10, 0)))
}
