package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/service"
)

// ReservationHandler serves the guest's reservations.  Every route sits
// behind SessionAuth.
type ReservationHandler struct {
	Reservations *service.ReservationService
}

func NewReservationHandler(r *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{Reservations: r}
}

type createReservationReq struct {
	RoomID    uint64 `json:"room_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Guests    int    `json:"guests"`
}

// Create handles POST /v1/reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
	uc, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.RoomID == 0 {
		return badRequest(c, "room_id is required")
	}
	start, ok := parseDate(req.StartDate)
	if !ok {
		return badRequest(c, "start_date must be YYYY-MM-DD")
	}
	end, ok := parseDate(req.EndDate)
	if !ok {
		return badRequest(c, "end_date must be YYYY-MM-DD")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	res, err := h.Reservations.CreateReservation(ctx, service.ReservationRequest{
		UserID: uc.ID,
		RoomID: req.RoomID,
		Start:  start,
		End:    end,
		Guests: req.Guests,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toReservation(res))
}

// ListMine handles GET /v1/my-reservations, newest first.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	uc, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	list, err := h.Reservations.ListForUser(ctx, uc.ID)
	if err != nil {
		return err
	}
	out := make([]reservationResp, 0, len(list))
	for _, d := range list {
		out = append(out, toReservationDetail(d))
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(out), "reservations": out})
}

// Get handles GET /v1/reservations/:id.  Reservations of other users are
// reported as 404.
func (h *ReservationHandler) Get(c echo.Context) error {
	uc, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return badRequest(c, "invalid reservation id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	d, err := h.Reservations.GetForUser(ctx, id, uc.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationDetail(d))
}
