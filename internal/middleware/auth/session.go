package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
)

const MsgLoginRequired = "Unauthorized. Please log in."

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (session.Current, error)
}

type SessionAuth struct {
	Auth         Authenticator
	CookieSecure bool
}

func NewSessionAuth(a Authenticator, cookieSecure bool) *SessionAuth {
	return &SessionAuth{Auth: a, CookieSecure: cookieSecure}
}

// RequireLogin resolves the session cookie and stores the current user in
// the request context. Anything short of a live session is a 401.
func (m *SessionAuth) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "require_login")

		ck, err := c.Cookie(session.CookieName)
		if err != nil || ck.Value == "" {
			l.Warn("auth_failed", "status", 401, "reason", "no session cookie")
			return echo.NewHTTPError(http.StatusUnauthorized, MsgLoginRequired)
		}

		cur, err := m.Auth.Authenticate(ctx, ck.Value)
		if err != nil {
			if !errors.Is(err, service.ErrUnauthorized) {
				l.Error("auth_failed", "status", 500, "reason", "cannot load session", "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
			}
			l.Warn("auth_failed", "status", 401, "reason", "session rejected", "error", err)
			c.SetCookie(session.DeleteCookie(m.CookieSecure))
			return echo.NewHTTPError(http.StatusUnauthorized, MsgLoginRequired)
		}

		ctx = session.IntoContext(ctx, cur)
		ctx = logging.IntoContext(ctx, logging.FromContext(ctx).With("user_id", cur.UserID))
		c.SetRequest(c.Request().WithContext(ctx))
		c.Set("user_id", cur.UserID)
		return next(c)
	}
}
