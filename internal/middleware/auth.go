package middleware // middleware holds the echo middleware shared by every route group

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/service"
)

// Context keys set by SessionAuth.
const (
	ctxUser   = "user"
	ctxUserID = "user_id"
	ctxToken  = "token"
)

// TokenValidator resolves a bearer token into a user.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (model.UserContext, error)
}

// SessionAuth validates the Bearer session token on every request and
// stores the resolved user in the echo context.  Handlers read it back
// with CurrentUser.
func SessionAuth(v TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := BearerToken(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid_token", "message": "missing bearer token"})
			}
			uc, err := v.ValidateToken(c.Request().Context(), raw)
			if err != nil {
				if ae, ok := service.IsAuth(err); ok {
					code := "invalid_token"
					if ae.Reason == service.AuthExpired {
						code = "expired_token"
					}
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": code, "message": ae.Error()})
				}
				return err
			}
			c.Set(ctxUser, uc)
			c.Set(ctxUserID, strconv.FormatUint(uc.ID, 10))
			c.Set(ctxToken, raw)
			return next(c)
		}
	}
}

// BearerToken returns the token of an "Authorization: Bearer <token>"
// header, or "" when absent.
func BearerToken(c echo.Context) string {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(auth) < len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

// CurrentUser returns the user stored by SessionAuth.
func CurrentUser(c echo.Context) (model.UserContext, bool) {
	uc, ok := c.Get(ctxUser).(model.UserContext)
	return uc, ok
}
