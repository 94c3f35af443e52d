package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/10190997/stud-do/internal/model"
	"github.com/10190997/stud-do/internal/queue"
	"github.com/10190997/stud-do/internal/service"
)

// EventHandler serves calendar event endpoints. When an event carries
// a notification timestamp, a reminder message is published to the
// broker after the write commits.
type EventHandler struct {
	Events    *service.EventService
	Schedules *service.ScheduleService
}

func NewEventHandler(events *service.EventService, schedules *service.ScheduleService) *EventHandler {
	return &EventHandler{Events: events, Schedules: schedules}
}

type eventResp struct {
	ID         uint64     `json:"id"`
	ScheduleID uint64     `json:"schedule_id"`
	Name       string     `json:"name"`
	StartsAt   time.Time  `json:"starts_at"`
	EndsAt     time.Time  `json:"ends_at"`
	NotifyAt   *time.Time `json:"notify_at,omitempty"`
}

func toEventResp(ev *model.Event) eventResp {
	return eventResp{
		ID:         ev.ID,
		ScheduleID: ev.ScheduleID,
		Name:       ev.Name,
		StartsAt:   ev.StartsAt,
		EndsAt:     ev.EndsAt,
		NotifyAt:   ev.NotifyAt,
	}
}

// parseRFC3339 parses a required timestamp field.
func parseRFC3339(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// Create handles POST /v1/events.
func (h *EventHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		ScheduleID uint64 `json:"schedule_id"`
		Name       string `json:"name"`
		StartsAt   string `json:"starts_at"`
		EndsAt     string `json:"ends_at"`
		NotifyAt   string `json:"notify_at"`
	}
	if err := c.Bind(&body); err != nil || body.ScheduleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	starts, ok := parseRFC3339(body.StartsAt)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC3339"})
	}
	ends, ok := parseRFC3339(body.EndsAt)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be RFC3339"})
	}
	in := service.CreateEventInput{
		ScheduleID: body.ScheduleID,
		Name:       body.Name,
		StartsAt:   starts,
		EndsAt:     ends,
	}
	if body.NotifyAt != "" {
		notify, ok := parseRFC3339(body.NotifyAt)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "notify_at must be RFC3339"})
		}
		in.NotifyAt = &notify
	}
	ev, err := h.Events.CreateEvent(c.Request().Context(), in, uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	h.publishReminder(c, ev, uid)
	return c.JSON(http.StatusCreated, toEventResp(ev))
}

// Get handles GET /v1/events/:id.
func (h *EventHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ev, err := h.Events.GetEvent(c.Request().Context(), id, uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toEventResp(ev))
}

// ListBySchedule handles GET /v1/schedules/:id/events.
func (h *EventHandler) ListBySchedule(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	events, err := h.Events.ListEvents(c.Request().Context(), id, uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	items := make([]eventResp, 0, len(events))
	for i := range events {
		items = append(items, toEventResp(&events[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Update handles PUT/PATCH /v1/events/:id. Omitted fields keep their
// stored values; placement is re-checked only when times change.
func (h *EventHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Name     *string `json:"name"`
		StartsAt *string `json:"starts_at"`
		EndsAt   *string `json:"ends_at"`
		NotifyAt *string `json:"notify_at"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	var in service.UpdateEventInput
	in.Name = body.Name
	if body.StartsAt != nil {
		t, ok := parseRFC3339(*body.StartsAt)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC3339"})
		}
		in.StartsAt = &t
	}
	if body.EndsAt != nil {
		t, ok := parseRFC3339(*body.EndsAt)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be RFC3339"})
		}
		in.EndsAt = &t
	}
	if body.NotifyAt != nil {
		t, ok := parseRFC3339(*body.NotifyAt)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "notify_at must be RFC3339"})
		}
		in.NotifyAt = &t
	}
	ev, err := h.Events.UpdateEvent(c.Request().Context(), id, in, uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	h.publishReminder(c, ev, uid)
	return c.JSON(http.StatusOK, toEventResp(ev))
}

// Delete handles DELETE /v1/events/:id.
func (h *EventHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Events.DeleteEvent(c.Request().Context(), id, uid); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// publishReminder enqueues a reminder message for events that carry a
// notification timestamp. Publishing is best effort: a broker outage
// must not fail the write that already committed.
func (h *EventHandler) publishReminder(c echo.Context, ev *model.Event, uid uint64) {
	if ev.NotifyAt == nil {
		return
	}
	view, err := h.Schedules.GetSchedule(c.Request().Context(), ev.ScheduleID, uid)
	if err != nil {
		c.Logger().Warnf("reminder for event %d skipped: %v", ev.ID, err)
		return
	}
	msg := queue.ReminderScheduledEvent{
		EventID:      ev.ID,
		ScheduleID:   ev.ScheduleID,
		ScheduleName: view.Schedule.Name,
		CreatorID:    view.Schedule.CreatorID,
		EventName:    ev.Name,
		StartsAt:     ev.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:       ev.EndsAt.UTC().Format(time.RFC3339),
		NotifyAt:     ev.NotifyAt.UTC().Format(time.RFC3339),
		QueuedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := queue.PublishReminderScheduled(ctx, msg); err != nil {
		c.Logger().Warnf("reminder publish for event %d failed: %v", ev.ID, err)
	}
}
