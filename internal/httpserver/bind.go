package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/transport"
)

const msgInternal = "internal server error"

func internalError() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusInternalServerError, msgInternal)
}

func bindBody(c echo.Context) (transport.Body, error) {
	body := transport.Body{}
	if err := (&echo.DefaultBinder{}).BindBody(c, &body); err != nil {
		return nil, err
	}
	return body, nil
}

// pathID parses an unsigned decimal path parameter, 0 included. Anything
// else is treated as an unknown route.
func pathID(c echo.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 63)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func currentUser(c echo.Context) (session.Current, bool) {
	return session.FromContext(c.Request().Context())
}
