package handler

import (
	"strings"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/service"
)

// ----- shared DTOs -----

type roomResp struct {
	ID          uint64  `json:"id"`
	Number      string  `json:"number"`
	Type        string  `json:"type"`
	Capacity    int     `json:"capacity"`
	Rate        float64 `json:"rate"`
	RateCents   int64   `json:"rate_cents"`
	Description string  `json:"description,omitempty"`
	Available   bool    `json:"available"`
}

type quoteResp struct {
	roomResp
	Nights     int     `json:"nights"`
	TotalPrice float64 `json:"total_price"`
	TotalCents int64   `json:"total_cents"`
}

type roomSummary struct {
	Number      string `json:"number"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

type reservationResp struct {
	ID         uint64       `json:"id"`
	RoomID     uint64       `json:"room_id"`
	StartDate  string       `json:"start_date"`
	EndDate    string       `json:"end_date"`
	Guests     int          `json:"guests"`
	Nights     int          `json:"nights"`
	TotalPrice float64      `json:"total_price"`
	TotalCents int64        `json:"total_cents"`
	Status     string       `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	Room       *roomSummary `json:"room,omitempty"`
}

func price(cents int64) float64 { return float64(cents) / 100 }

func toRoom(rm model.Room) roomResp {
	return roomResp{
		ID:          rm.ID,
		Number:      rm.Number,
		Type:        string(rm.Type),
		Capacity:    rm.Capacity,
		Rate:        price(rm.RateCents),
		RateCents:   rm.RateCents,
		Description: rm.Description,
		Available:   rm.Available,
	}
}

func toQuote(q service.RoomQuote) quoteResp {
	return quoteResp{roomResp: toRoom(q.Room), Nights: q.Nights, TotalPrice: price(q.TotalCents), TotalCents: q.TotalCents}
}

func toReservation(r model.Reservation) reservationResp {
	return reservationResp{
		ID:         r.ID,
		RoomID:     r.RoomID,
		StartDate:  r.StartDate.Format(time.DateOnly),
		EndDate:    r.EndDate.Format(time.DateOnly),
		Guests:     r.Guests,
		Nights:     r.Nights,
		TotalPrice: price(r.TotalCents),
		TotalCents: r.TotalCents,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt,
	}
}

func toReservationDetail(d model.ReservationDetail) reservationResp {
	out := toReservation(d.Reservation)
	out.Room = &roomSummary{Number: d.RoomNumber, Type: string(d.RoomType), Description: d.RoomDescription}
	return out
}

// parseDate reads a YYYY-MM-DD calendar day.
func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	return t, err == nil
}
