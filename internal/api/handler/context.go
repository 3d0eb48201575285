package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/api/middleware"
	"github.com/taskmanager/task-api/internal/core/domain"
)

// ctxUser returns the user and token injected by the Auth middleware. A
// missing user means the route was registered without the middleware.
func ctxUser(c echo.Context) (*domain.User, string, error) {
	user, _ := c.Get(middleware.ContextUserKey).(*domain.User)
	if user == nil {
		return nil, "", echo.NewHTTPError(http.StatusUnauthorized, middleware.UnauthorizedMessage)
	}
	token, _ := c.Get(middleware.ContextTokenKey).(string)
	return user, token, nil
}

// bindPatch decodes a PATCH body into dst after checking that every key is in
// allowed.
func bindPatch(c echo.Context, allowed []string, dst any) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	for key := range fields {
		if !slices.Contains(allowed, key) {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid updates!")
		}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
