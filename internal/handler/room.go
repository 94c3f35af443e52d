package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/10190997/stud-do/internal/repository"
	"github.com/10190997/stud-do/internal/service"
)

// RoomHandler serves room and membership endpoints. Role decisions are
// made by the room service; the handler only binds requests, resolves
// member profiles and renders responses.
type RoomHandler struct {
	Rooms *service.RoomService
	Users *repository.UserRepo
}

func NewRoomHandler(rooms *service.RoomService, users *repository.UserRepo) *RoomHandler {
	return &RoomHandler{Rooms: rooms, Users: users}
}

type memberResp struct {
	UserID uint64 `json:"user_id"`
	Login  string `json:"login"`
	Role   string `json:"role"`
}

type roomResp struct {
	ID        uint64       `json:"id"`
	Name      string       `json:"name"`
	Role      string       `json:"role"`
	Members   []memberResp `json:"members,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// toRoomResp renders a room view, enriching member rows with logins.
func (h *RoomHandler) toRoomResp(c echo.Context, v *service.RoomView) roomResp {
	resp := roomResp{
		ID:        v.Room.ID,
		Name:      v.Room.Name,
		Role:      v.Role.String(),
		CreatedAt: v.Room.CreatedAt,
	}
	ids := make([]uint64, 0, len(v.Members))
	for _, m := range v.Members {
		ids = append(ids, m.UserID)
	}
	logins := map[uint64]string{}
	if users, err := h.Users.GetMany(c.Request().Context(), ids); err == nil {
		for _, u := range users {
			logins[u.ID] = u.Login
		}
	}
	for _, m := range v.Members {
		resp.Members = append(resp.Members, memberResp{
			UserID: m.UserID,
			Login:  logins[m.UserID],
			Role:   m.Role.String(),
		})
	}
	return resp
}

func (h *RoomHandler) toRoomResps(c echo.Context, views []service.RoomView) []roomResp {
	out := make([]roomResp, 0, len(views))
	for i := range views {
		out = append(out, h.toRoomResp(c, &views[i]))
	}
	return out
}

// Create handles POST /v1/rooms.
func (h *RoomHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	view, err := h.Rooms.CreateRoom(c.Request().Context(), body.Name, uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, h.toRoomResp(c, view))
}

// Get handles GET /v1/rooms/:id.
func (h *RoomHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	view, err := h.Rooms.GetRoom(c.Request().Context(), id, uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, h.toRoomResp(c, view))
}

// List handles GET /v1/rooms.
func (h *RoomHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	views, err := h.Rooms.ListRooms(c.Request().Context(), uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": h.toRoomResps(c, views)})
}

// Search handles GET /v1/rooms/search?query=...
func (h *RoomHandler) Search(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	views, err := h.Rooms.SearchRooms(c.Request().Context(), c.QueryParam("query"), uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": h.toRoomResps(c, views)})
}

// Suggest handles GET /v1/rooms/suggest?query=... and returns matching
// room names only, for type-ahead boxes.
func (h *RoomHandler) Suggest(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	names, err := h.Rooms.SearchSuggestions(c.Request().Context(), c.QueryParam("query"), uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": names})
}

// Update handles PUT/PATCH /v1/rooms/:id.
func (h *RoomHandler) Update(c echo.Context) error {
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
	view, err := h.Rooms.RenameRoom(c.Request().Context(), id, body.Name, uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, h.toRoomResp(c, view))
}

// Delete handles DELETE /v1/rooms/:id.
func (h *RoomHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Rooms.DeleteRoom(c.Request().Context(), id, uid); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddMember handles POST /v1/rooms/:id/members.
func (h *RoomHandler) AddMember(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
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
	view, err := h.Rooms.AddMember(c.Request().Context(), id, body.UserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, h.toRoomResp(c, view))
}

// RemoveMember handles DELETE /v1/rooms/:id/members/:user_id.
func (h *RoomHandler) RemoveMember(c echo.Context) error {
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
	if err := h.Rooms.RemoveMember(c.Request().Context(), id, target, uid); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddModerator handles POST /v1/rooms/:id/moderators.
func (h *RoomHandler) AddModerator(c echo.Context) error {
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
	view, err := h.Rooms.AddModerator(c.Request().Context(), id, body.UserID, uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, h.toRoomResp(c, view))
}

// RemoveModerator handles DELETE /v1/rooms/:id/moderators/:user_id.
func (h *RoomHandler) RemoveModerator(c echo.Context) error {
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
	view, err := h.Rooms.RemoveModerator(c.Request().Context(), id, target, uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, h.toRoomResp(c, view))
}
