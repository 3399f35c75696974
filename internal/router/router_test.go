package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking/internal/config"
	"github.com/iliyamo/hotel-booking/internal/database"
	"github.com/iliyamo/hotel-booking/internal/handler"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository/memory"
	"github.com/iliyamo/hotel-booking/internal/service"
)

type app struct {
	t        *testing.T
	e        *echo.Echo
	rooms    map[string]model.Room
	accounts *service.AccountService
}

func newApp(t *testing.T) *app {
	return newLimitedApp(t, config.RateLimitConfig{Enabled: false})
}

func newLimitedApp(t *testing.T, rl config.RateLimitConfig) *app {
	t.Helper()
	st := memory.New()
	rooms := map[string]model.Room{}
	for _, rm := range st.AddRooms(database.SeedRooms()...) {
		rooms[rm.Number] = rm
	}

	sessions := service.NewSessionManager(st, 0)
	accounts := service.NewAccountService(st, sessions, 4)
	availability := service.NewAvailabilityChecker(st)
	reservations := service.NewReservationService(st, availability)
	payments := service.NewPaymentProcessor(st, nil, "test-secret", time.Hour)

	e := New(Deps{
		Auth:         handler.NewAuthHandler(accounts, sessions),
		Rooms:        handler.NewRoomHandler(availability),
		Reservations: handler.NewReservationHandler(reservations),
		Payments:     handler.NewPaymentHandler(payments),
		Sessions:     sessions,
		RateLimit:    rl,
		Cache:        config.CacheConfig{Enabled: false},
		Log:          zerolog.Nop(),
	})
	return &app{t: t, e: e, rooms: rooms, accounts: accounts}
}

func (a *app) do(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec.Code, out
}

func (a *app) login(email string) string {
	a.t.Helper()
	code, _ := a.do(http.MethodPost, "/v1/auth/register", "", echo.Map{
		"email": email, "password": "secret1", "name": "Ana", "surname": "Diaz", "phone": "555-0100",
	})
	require.Equal(a.t, http.StatusCreated, code)
	code, body := a.do(http.MethodPost, "/v1/auth/login", "", echo.Map{"email": email, "password": "secret1"})
	require.Equal(a.t, http.StatusOK, code)
	return body["token"].(string)
}

func future(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format(time.DateOnly)
}

func TestBookingFlow(t *testing.T) {
	a := newApp(t)
	token := a.login("guest@example.com")
	room := a.rooms["201"]

	code, body := a.do(http.MethodPost, "/v1/rooms/search", "", echo.Map{
		"start_date": future(30), "end_date": future(33), "guests": 2, "type": "doble",
	})
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 3, body["nights"])
	list := body["rooms"].([]any)
	require.NotEmpty(t, list)
	prev := 0.0
	for _, it := range list {
		r := it.(map[string]any)
		assert.Equal(t, "double", r["type"])
		assert.GreaterOrEqual(t, r["rate"].(float64), prev)
		assert.Equal(t, r["rate"].(float64)*3, r["total_price"])
		prev = r["rate"].(float64)
	}

	reserve := echo.Map{"room_id": room.ID, "start_date": future(30), "end_date": future(33), "guests": 2}
	code, body = a.do(http.MethodPost, "/v1/reservations", token, reserve)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "PENDING", body["status"])
	assert.EqualValues(t, 3, body["nights"])
	assert.EqualValues(t, 240, body["total_price"])
	resID := uint64(body["id"].(float64))

	code, body = a.do(http.MethodPost, "/v1/reservations", token, reserve)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "conflict", body["error"])

	code, _ = a.do(http.MethodPost, "/v1/reservations", token, echo.Map{"room_id": room.ID, "start_date": future(33), "end_date": future(35), "guests": 1})
	assert.Equal(t, http.StatusCreated, code)

	pay := echo.Map{"reservation_id": resID, "method": "visa", "card_number": "4532123456789012", "cvv": "123", "holder_name": "Ana Diaz"}
	code, body = a.do(http.MethodPost, "/v1/payments", token, pay)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "APPROVED", body["status"])
	assert.Equal(t, "9012", body["card_last4"])
	assert.EqualValues(t, 240, body["amount"])
	assert.Regexp(t, `^TXN-[0-9A-F]{16}$`, body["transaction_code"])
	receipt := body["receipt"].(string)

	code, body = a.do(http.MethodPost, "/v1/payments", token, pay)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "conflict", body["error"])

	code, body = a.do(http.MethodGet, fmt.Sprintf("/v1/reservations/%d", resID), token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "CONFIRMED", body["status"])
	assert.Equal(t, "201", body["room"].(map[string]any)["number"])

	code, body = a.do(http.MethodGet, "/v1/my-reservations", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, body["count"])

	code, body = a.do(http.MethodPost, "/v1/receipts/verify", "", echo.Map{"receipt": receipt})
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, resID, body["reservation_id"])
}

func TestAuthErrors(t *testing.T) {
	a := newApp(t)
	token := a.login("guest@example.com")

	code, body := a.do(http.MethodPost, "/v1/auth/register", "", echo.Map{
		"email": "guest@example.com", "password": "secret1", "name": "Ana", "surname": "Diaz",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "integrity_error", body["error"])

	code, _ = a.do(http.MethodPost, "/v1/auth/register", "", echo.Map{
		"email": "short@example.com", "password": "12345", "name": "Ana", "surname": "Diaz",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = a.do(http.MethodPost, "/v1/auth/login", "", echo.Map{"email": "guest@example.com", "password": "nope00"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid_token", body["error"])

	code, body = a.do(http.MethodGet, "/v1/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "guest@example.com", body["email"])

	code, _ = a.do(http.MethodGet, "/v1/my-reservations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = a.do(http.MethodPost, "/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, body = a.do(http.MethodGet, "/v1/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid_token", body["error"])
}

func TestReservationErrors(t *testing.T) {
	a := newApp(t)
	owner := a.login("owner@example.com")
	other := a.login("other@example.com")
	single := a.rooms["101"]

	tests := []struct {
		name   string
		body   echo.Map
		status int
	}{
		{"unknown room", echo.Map{"room_id": 9999, "start_date": future(10), "end_date": future(12), "guests": 1}, http.StatusNotFound},
		{"over capacity", echo.Map{"room_id": single.ID, "start_date": future(10), "end_date": future(12), "guests": 2}, http.StatusBadRequest},
		{"reversed dates", echo.Map{"room_id": single.ID, "start_date": future(12), "end_date": future(10), "guests": 1}, http.StatusBadRequest},
		{"bad date format", echo.Map{"room_id": single.ID, "start_date": "10/01/2030", "end_date": future(10), "guests": 1}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := a.do(http.MethodPost, "/v1/reservations", owner, tt.body)
			assert.Equal(t, tt.status, code)
		})
	}

	code, body := a.do(http.MethodPost, "/v1/reservations", owner, echo.Map{"room_id": single.ID, "start_date": future(10), "end_date": future(12), "guests": 1})
	require.Equal(t, http.StatusCreated, code)
	id := uint64(body["id"].(float64))

	code, _ = a.do(http.MethodGet, fmt.Sprintf("/v1/reservations/%d", id), other, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.do(http.MethodPost, "/v1/payments", other, echo.Map{"reservation_id": id, "card_number": "4532123456789012", "cvv": "123"})
	assert.Equal(t, http.StatusNotFound, code)

	code, body = a.do(http.MethodPost, "/v1/payments", owner, echo.Map{"reservation_id": id, "card_number": "4532", "cvv": "123"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", body["error"])
}

func TestCatalogue(t *testing.T) {
	a := newApp(t)

	code, body := a.do(http.MethodGet, "/v1/room-types", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["types"], 3)

	code, body = a.do(http.MethodGet, "/v1/rooms", "", nil)
	require.Equal(t, http.StatusOK, code)
	rooms := body["rooms"].([]any)
	require.Len(t, rooms, len(database.SeedRooms()))
	assert.Equal(t, "101", rooms[0].(map[string]any)["number"])

	code, _ = a.do(http.MethodPost, "/v1/rooms/search", "", echo.Map{"start_date": "2000-01-01", "end_date": "2000-01-03"})
	assert.Equal(t, http.StatusBadRequest, code)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	assert.Equal(t, "ok", rec.Body.String())
}

// sessionFor registers and logs in through the service, leaving the HTTP
// rate limit buckets untouched.
func (a *app) sessionFor(email string) string {
	a.t.Helper()
	ctx := context.Background()
	_, err := a.accounts.Register(ctx, service.Registration{Email: email, Password: "secret1", Name: "Ana", Surname: "Diaz"})
	require.NoError(a.t, err)
	res, err := a.accounts.Login(ctx, email, "secret1")
	require.NoError(a.t, err)
	return res.Token
}

func TestRateLimitIsPerUser(t *testing.T) {
	a := newLimitedApp(t, config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour,
		TTL: time.Hour, KeyStrategy: "user", Prefix: "rl",
	})
	first := a.sessionFor("first@example.com")
	second := a.sessionFor("second@example.com")

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		code, _ := a.do(http.MethodGet, "/v1/my-reservations", first, nil)
		codes = append(codes, code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	code, _ := a.do(http.MethodGet, "/v1/my-reservations", second, nil)
	assert.Equal(t, http.StatusOK, code, "second user has a bucket of its own")

	// Public routes are keyed by client IP and are not charged to either user.
	code, _ = a.do(http.MethodGet, "/v1/room-types", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestUnknownRoutesAreNotBehindAuth(t *testing.T) {
	a := newApp(t)

	code, _ := a.do(http.MethodGet, "/v1/rooms/search", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, code)

	code, _ = a.do(http.MethodGet, "/v1/no-such-route", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body := a.do(http.MethodGet, "/v1/my-reservations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid_token", body["error"])
}
