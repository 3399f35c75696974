package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/service"
)

// RoomHandler serves the public catalogue and availability search.
type RoomHandler struct {
	Availability *service.AvailabilityChecker
}

func NewRoomHandler(a *service.AvailabilityChecker) *RoomHandler {
	return &RoomHandler{Availability: a}
}

type searchReq struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Guests    *int   `json:"guests"`
	Type      string `json:"type"`
}

type searchResp struct {
	StartDate string      `json:"start_date"`
	EndDate   string      `json:"end_date"`
	Nights    int         `json:"nights"`
	Count     int         `json:"count"`
	Rooms     []quoteResp `json:"rooms"`
}

type roomTypeResp struct {
	Value       string `json:"value"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RoomTypes handles GET /v1/room-types.
func (h *RoomHandler) RoomTypes(c echo.Context) error {
	types := service.RoomTypes()
	out := make([]roomTypeResp, 0, len(types))
	for _, t := range types {
		out = append(out, roomTypeResp{Value: string(t.Type), Name: t.Name, Description: t.Description})
	}
	return c.JSON(http.StatusOK, echo.Map{"types": out})
}

// ListRooms handles GET /v1/rooms.
func (h *RoomHandler) ListRooms(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	rooms, err := h.Availability.ListRooms(ctx)
	if err != nil {
		return err
	}
	out := make([]roomResp, 0, len(rooms))
	for _, rm := range rooms {
		out = append(out, toRoom(rm))
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": out})
}

// Search handles POST /v1/rooms/search.  guests defaults to 1 when the
// field is absent.
func (h *RoomHandler) Search(c echo.Context) error {
	var req searchReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	start, ok := parseDate(req.StartDate)
	if !ok {
		return badRequest(c, "start_date must be YYYY-MM-DD")
	}
	end, ok := parseDate(req.EndDate)
	if !ok {
		return badRequest(c, "end_date must be YYYY-MM-DD")
	}
	guests := 1
	if req.Guests != nil {
		guests = *req.Guests
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	quotes, err := h.Availability.SearchRooms(ctx, service.SearchQuery{Start: start, End: end, Guests: guests, Type: req.Type})
	if err != nil {
		return writeError(c, err)
	}
	out := make([]quoteResp, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, toQuote(q))
	}
	return c.JSON(http.StatusOK, searchResp{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Nights:    service.Nights(start, end),
		Count:     len(out),
		Rooms:     out,
	})
}
