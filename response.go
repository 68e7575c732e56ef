package figcms

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Every endpoint answers with the same envelope: {"success": true, ...}
// on the happy path, {"success": false, "error": "..."} otherwise.
// Success payloads carry their data under endpoint-specific keys.

// OK writes a success envelope with the given extra fields.
func OK(c echo.Context, code int, fields echo.Map) error {
	body := echo.Map{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	return c.JSON(code, body)
}

// Fail writes a failure envelope.
func Fail(c echo.Context, code int, msg string) error {
	return c.JSON(code, echo.Map{"success": false, "error": msg})
}

// httpErrorHandler maps the error taxonomy onto envelope responses so
// handlers can return domain errors directly.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var ve *ValidationError
	var ce *ConflictError
	var ue *UpstreamError
	switch {
	case errors.As(err, &ve):
		_ = Fail(c, http.StatusBadRequest, ve.Error())
	case errors.As(err, &ce):
		_ = Fail(c, http.StatusBadRequest, ce.Error())
	case errors.Is(err, ErrNotFound):
		_ = Fail(c, http.StatusNotFound, "Not found")
	case errors.Is(err, ErrInvalidCredentials):
		_ = Fail(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, ErrInvalidToken):
		_ = Fail(c, http.StatusUnauthorized, "Invalid token")
	case errors.As(err, &ue):
		c.Logger().Errorf("upstream error: %v", err)
		_ = Fail(c, http.StatusInternalServerError, ue.Error())
	default:
		code := http.StatusInternalServerError
		msg := "Internal server error"
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if m, isStr := he.Message.(string); isStr && code < 500 {
				msg = m
			}
		}
		if code >= 500 {
			c.Logger().Errorf("server error: %v", err)
		}
		_ = Fail(c, code, msg)
	}
}
