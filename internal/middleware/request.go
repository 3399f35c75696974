package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const requestIDHeader = echo.HeaderXRequestID

// RequestID propagates the client's X-Request-Id or assigns a new UUID.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			c.Set(requestIDHeader, id)
			c.Response().Header().Set(requestIDHeader, id)
			return next(c)
		}
	}
}

// Logger writes one structured line per request.
func Logger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			event := log.Info()
			if status >= 500 {
				event = log.Error()
			} else if status >= 400 {
				event = log.Warn()
			}
			event.
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Str("client_ip", c.RealIP()).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("request_id", c.Response().Header().Get(requestIDHeader)).
				Str("user_id", userID(c)).
				Msg("http request")
			return nil
		}
	}
}

// Recovery turns a panic into a 500 response.
func Recovery(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("error", r).
						Str("request_id", c.Response().Header().Get(requestIDHeader)).
						Msg("panic recovered")
					err = c.JSON(http.StatusInternalServerError, echo.Map{
						"error":   "internal_server_error",
						"message": "internal error",
					})
				}
			}()
			return next(c)
		}
	}
}
