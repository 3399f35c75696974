package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/handler"
)

// registerGuest registers the endpoints of an authenticated guest.  The
// session check is attached per route rather than to a /v1 group, so
// unknown paths and wrong methods on public routes still get 404/405.
// Ownership of a reservation is checked by the service layer.
func registerGuest(e *echo.Echo, r *handler.ReservationHandler, p *handler.PaymentHandler, gd guards) {
	e.POST("/v1/reservations", r.Create, gd.guest...)
	e.GET("/v1/my-reservations", r.ListMine, gd.guest...)
	e.GET("/v1/reservations/:id", r.Get, gd.guest...)
	e.POST("/v1/payments", p.Pay, gd.guest...)
}
