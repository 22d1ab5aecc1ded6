package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/transport"
)

const msgBadCredentials = "Unauthorized. Invalid username or password"

type AuthHTTP struct {
	Svc          *service.AuthService
	CookieSecure bool
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	body, err := bindBody(c)
	if err != nil {
		l.Warn("login_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	req, ok := transport.DecodeLogin(body)
	if !ok {
		l.Warn("login_failed", "status", 401, "reason", "missing credentials")
		return echo.NewHTTPError(http.StatusUnauthorized, msgBadCredentials)
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			l.Warn("login_failed", "status", 401, "reason", "invalid credentials")
			return echo.NewHTTPError(http.StatusUnauthorized, msgBadCredentials)
		}
		l.Error("login_failed", "status", 500, "reason", "cannot create session", "error", err)
		return internalError()
	}

	c.SetCookie(session.CreateCookie(res.Token, res.ExpiresAt, h.CookieSecure))

	l.Info("login_success", "user_id", res.UserID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Logged in successfully, welcome " + res.Username,
	})
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	cur, ok := currentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized. Please log in.")
	}

	if err := h.Svc.LogOut(ctx, cur); err != nil {
		l.Error("logout_failed", "status", 500, "reason", "cannot revoke session", "error", err)
		return internalError()
	}
	c.SetCookie(session.DeleteCookie(h.CookieSecure))

	l.Info("logout_success", "user_id", cur.UserID)
	return c.JSON(http.StatusOK, echo.Map{"message": "Logout successfully"})
}
