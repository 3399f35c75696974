package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/service"
)

// errorResp is the body of every failed request.
type errorResp struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError maps the service error taxonomy onto HTTP statuses.  Errors
// outside the taxonomy are handed back to echo, which answers 500 and
// lets the logger middleware record the cause.
func writeError(c echo.Context, err error) error {
	var (
		ve *service.ValidationError
		ae *service.AuthError
		nf *service.NotFoundError
		ce *service.ConflictError
		ie *service.IntegrityError
	)
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, errorResp{Error: "validation_error", Message: ve.Error()})
	case errors.As(err, &ae):
		code := "invalid_token"
		if ae.Reason == service.AuthExpired {
			code = "expired_token"
		}
		return c.JSON(http.StatusUnauthorized, errorResp{Error: code, Message: ae.Error()})
	case errors.As(err, &nf):
		return c.JSON(http.StatusNotFound, errorResp{Error: "not_found", Message: nf.Error()})
	case errors.As(err, &ce):
		return c.JSON(http.StatusConflict, errorResp{Error: "conflict", Message: ce.Error()})
	case errors.As(err, &ie):
		return c.JSON(http.StatusBadRequest, errorResp{Error: "integrity_error", Message: ie.Error()})
	}
	return err
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResp{Error: "validation_error", Message: msg})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorResp{Error: "invalid_token", Message: "authentication required"})
}

// HTTPErrorHandler renders echo's own errors (404 route, 405, bind
// failures) and unexpected failures in the same body shape.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	body := errorResp{Error: "internal_error", Message: "internal server error"}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		body.Error = http.StatusText(he.Code)
		if msg, ok := he.Message.(string); ok {
			body.Message = msg
		} else {
			body.Message = http.StatusText(he.Code)
		}
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, body)
}
