package middleware

// identity.go holds the user identifier lookup shared by the rate limiter
// and other middleware.  Requests that did not pass SessionAuth are
// reported as "anon".

import "github.com/labstack/echo/v4"

// userID returns the authenticated user's id as a string.
func userID(c echo.Context) string {
	if v, ok := c.Get(ctxUserID).(string); ok && v != "" {
		return v
	}
	return "anon"
}
