package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-booking/internal/config"
	"github.com/iliyamo/hotel-booking/internal/handler"
	"github.com/iliyamo/hotel-booking/internal/middleware"
)

// Deps carries everything New needs to build the HTTP surface.  Redis may
// be nil; the limiter then runs in-process and caching is off.
type Deps struct {
	Auth         *handler.AuthHandler
	Rooms        *handler.RoomHandler
	Reservations *handler.ReservationHandler
	Payments     *handler.PaymentHandler
	Sessions     middleware.TokenValidator

	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Log       zerolog.Logger
}

// guards are the per-route middleware chains.  Public routes are rate
// limited per client before any session exists; guest routes resolve the
// session first so their bucket can be keyed by user.
type guards struct {
	public []echo.MiddlewareFunc
	guest  []echo.MiddlewareFunc
}

func newGuards(d Deps) guards {
	return guards{
		public: []echo.MiddlewareFunc{
			middleware.NewTokenBucket(d.RateLimit.Anonymous(), d.Redis, d.Log),
		},
		guest: []echo.MiddlewareFunc{
			middleware.SessionAuth(d.Sessions),
			middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log),
		},
	}
}

// with appends extra middleware to a chain without aliasing it.
func with(chain []echo.MiddlewareFunc, extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(chain)+len(extra))
	return append(append(out, chain...), extra...)
}

// New returns an echo instance with the global middleware chain and every
// route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(d.Log))
	e.Use(middleware.Recovery(d.Log))

	gd := newGuards(d)
	RegisterRoutes(e)
	registerAuth(e, d.Auth, gd)
	registerPublic(e, d.Rooms, d.Payments, gd, middleware.NewRedisCache(d.Cache, d.Redis))
	registerGuest(e, d.Reservations, d.Payments, gd)
	return e
}

// RegisterRoutes registers routes that do not require authentication and
// are not part of the API, currently only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// registerAuth registers the authentication routes.  Register and login
// need no session; logout and /v1/me require one.
func registerAuth(e *echo.Echo, a *handler.AuthHandler, gd guards) {
	e.POST("/v1/auth/register", a.Register, gd.public...)
	e.POST("/v1/auth/login", a.Login, gd.public...)
	e.POST("/v1/auth/logout", a.Logout, gd.guest...)
	e.GET("/v1/me", a.Me, gd.guest...)
}

// registerPublic registers the unauthenticated catalogue and search
// endpoints.  The catalogue is static, so its GET routes go through the
// response cache.
func registerPublic(e *echo.Echo, r *handler.RoomHandler, p *handler.PaymentHandler, gd guards, cache echo.MiddlewareFunc) {
	e.GET("/v1/room-types", r.RoomTypes, with(gd.public, cache)...)
	e.GET("/v1/rooms", r.ListRooms, with(gd.public, cache)...)
	e.POST("/v1/rooms/search", r.Search, gd.public...)
	e.POST("/v1/receipts/verify", p.VerifyReceipt, gd.public...)
}
