package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/10190997/stud-do/internal/model"
	"github.com/10190997/stud-do/internal/service"
)

// PostHandler serves room post endpoints.
type PostHandler struct {
	Posts *service.PostService
}

func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{Posts: posts}
}

type postResp struct {
	ID          uint64    `json:"id"`
	RoomID      uint64    `json:"room_id"`
	AuthorID    uint64    `json:"author_id"`
	Text        string    `json:"text"`
	Attachments []string  `json:"attachments"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toPostResp(p *model.Post) postResp {
	attachments := p.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return postResp{
		ID:          p.ID,
		RoomID:      p.RoomID,
		AuthorID:    p.AuthorID,
		Text:        p.Text,
		Attachments: attachments,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Create handles POST /v1/rooms/:id/posts.
func (h *PostHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Text        string   `json:"text"`
		Attachments []string `json:"attachments"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	post, err := h.Posts.CreatePost(c.Request().Context(), roomID, uid, body.Text, body.Attachments)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toPostResp(post))
}

// ListByRoom handles GET /v1/rooms/:id/posts, newest first.
func (h *PostHandler) ListByRoom(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	posts, err := h.Posts.ListPosts(c.Request().Context(), roomID, uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	items := make([]postResp, 0, len(posts))
	for i := range posts {
		items = append(items, toPostResp(&posts[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/posts/:id.
func (h *PostHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	post, err := h.Posts.GetPost(c.Request().Context(), id, uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toPostResp(post))
}

// Update handles PUT/PATCH /v1/posts/:id. Text and attachments are
// replaced wholesale.
func (h *PostHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Text        string   `json:"text"`
		Attachments []string `json:"attachments"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	post, err := h.Posts.UpdatePost(c.Request().Context(), id, uid, body.Text, body.Attachments)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toPostResp(post))
}

// Delete handles DELETE /v1/posts/:id.
func (h *PostHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Posts.DeletePost(c.Request().Context(), id, uid); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
