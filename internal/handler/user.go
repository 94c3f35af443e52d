package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/10190997/stud-do/internal/model"
	"github.com/10190997/stud-do/internal/repository"
)

// UserHandler serves user lookup endpoints used when inviting people
// into rooms and schedules.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(u *repository.UserRepo) *UserHandler {
	return &UserHandler{Users: u}
}

// Search handles GET /v1/users/search?query=... and returns users whose
// login or email contains the text. Password hashes never leave the
// handler layer.
func (h *UserHandler) Search(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("query"))
	if query == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "query is required"})
	}
	users, err := h.Users.Search(c.Request().Context(), query)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toUserParts(users)})
}

// GetByID handles GET /v1/users/:id.
func (h *UserHandler) GetByID(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Login: u.Login, Email: u.Email})
}

func toUserParts(users []model.User) []userPart {
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, userPart{ID: u.ID, Login: u.Login, Email: u.Email})
	}
	return out
}
