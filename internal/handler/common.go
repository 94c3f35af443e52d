package handler // handler defines the HTTP handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/10190997/stud-do/internal/service"
)

// getUserID extracts the authenticated user's ID from the echo context.
// JWTAuth stores it as uint64; older tokens may surface other numeric
// forms, so a few conversions are tolerated.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// paramID parses a numeric path parameter.
func paramID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// respondServiceError maps a service failure to an HTTP response. The
// reason text of an unexpected failure is already generic; the cause is
// logged so the detail is not lost.
func respondServiceError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch service.KindOf(err) {
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindPermissionDenied:
		status = http.StatusForbidden
	case service.KindConflict:
		status = http.StatusConflict
	case service.KindInvalid:
		status = http.StatusBadRequest
	case service.KindUnexpected:
		c.Logger().Errorf("internal error on %s %s: %v", c.Request().Method, c.Path(), errors.Unwrap(err))
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}
