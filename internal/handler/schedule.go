package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/10190997/stud-do/internal/service"
)

// ScheduleHandler serves schedule and share endpoints.
type ScheduleHandler struct {
	Schedules *service.ScheduleService
}

func NewScheduleHandler(s *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{Schedules: s}
}

type shareResp struct {
	UserID     uint64 `json:"user_id"`
	Color      string `json:"color"`
	Visibility bool   `json:"visibility"`
}

type scheduleResp struct {
	ID         uint64      `json:"id"`
	Name       string      `json:"name"`
	CreatorID  uint64      `json:"creator_id"`
	Color      string      `json:"color"`
	Visibility bool        `json:"visibility"`
	Shares     []shareResp `json:"shares,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

func toScheduleResp(v *service.ScheduleView) scheduleResp {
	resp := scheduleResp{
		ID:         v.Schedule.ID,
		Name:       v.Schedule.Name,
		CreatorID:  v.Schedule.CreatorID,
		Color:      v.Color,
		Visibility: v.Visibility,
		CreatedAt:  v.Schedule.CreatedAt,
	}
	for _, s := range v.Shares {
		resp.Shares = append(resp.Shares, shareResp{UserID: s.UserID, Color: s.Color, Visibility: s.Visibility})
	}
	return resp
}

// Create handles POST /v1/schedules.
func (h *ScheduleHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	view, err := h.Schedules.CreateSchedule(c.Request().Context(), body.Name, body.Color, uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toScheduleResp(view))
}

// Get handles GET /v1/schedules/:id.
func (h *ScheduleHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	view, err := h.Schedules.GetSchedule(c.Request().Context(), id, uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toScheduleResp(view))
}

// List handles GET /v1/schedules. Each entry carries the caller's own
// colour and visibility.
func (h *ScheduleHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	views, err := h.Schedules.ListSchedules(c.Request().Context(), uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	items := make([]scheduleResp, 0, len(views))
	for i := range views {
		items = append(items, toScheduleResp(&views[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Update handles PUT/PATCH /v1/schedules/:id.
func (h *ScheduleHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	view, err := h.Schedules.RenameSchedule(c.Request().Context(), id, body.Name, uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toScheduleResp(view))
}

// Delete handles DELETE /v1/schedules/:id.
func (h *ScheduleHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Schedules.DeleteSchedule(c.Request().Context(), id, uid); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GrantAccess handles POST /v1/schedules/:id/shares.
func (h *ScheduleHandler) GrantAccess(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		UserID uint64 `json:"user_id"`
	}
	if err := c.Bind(&body); err != nil || body.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
	}
	view, err := h.Schedules.GrantAccess(c.Request().Context(), id, body.UserID, uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toScheduleResp(view))
}

// RevokeAccess handles DELETE /v1/schedules/:id/shares/:user_id.
func (h *ScheduleHandler) RevokeAccess(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	target, ok := paramID(c, "user_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user_id"})
	}
	if err := h.Schedules.RevokeAccess(c.Request().Context(), id, target, uid); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateAppearance handles PUT /v1/schedules/:id/appearance. The
// change applies to the caller's own share only.
func (h *ScheduleHandler) UpdateAppearance(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Color      *string `json:"color"`
		Visibility *bool   `json:"visibility"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	// Omitted fields keep the share's stored values.
	view, err := h.Schedules.UpdateAppearance(c.Request().Context(), id, uid, body.Color, body.Visibility)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toScheduleResp(view))
}
