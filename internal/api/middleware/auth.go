package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
	"github.com/taskmanager/task-api/internal/pkg/metrics"
)

// Context keys set by Auth.
const (
	ContextUserKey  = "user"
	ContextTokenKey = "token"
)

// UnauthorizedMessage is rendered for every authentication failure.
const UnauthorizedMessage = "Please authenticate."

// Auth resolves the bearer token to its user and injects both into context.
// The token must still be in the user's token list. Only token failures
// become 401; any other error is passed through unchanged.
func Auth(authn ports.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := authn.Authenticate(c.Request().Context(), bearerToken(c))
			if err != nil {
				reason := failureReason(err)
				metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
				// Anything other than a token failure renders as 500.
				if reason == "error" {
					return err
				}
				return echo.NewHTTPError(http.StatusUnauthorized, UnauthorizedMessage).SetInternal(err)
			}

			c.Set(ContextUserKey, user)
			c.Set(ContextTokenKey, bearerToken(c))

			return next(c)
		}
	}
}

// bearerToken returns the token of an "Authorization: Bearer <token>" header,
// or "" when the header is absent or uses another scheme.
func bearerToken(c echo.Context) string {
	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenMissing):
		return "missing"
	case errors.Is(err, domain.ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, domain.ErrTokenInvalid):
		return "invalid"
	default:
		return "error"
	}
}
