package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// schema is applied statement by statement; every statement is
// idempotent so Migrate can run on each start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		name          VARCHAR(100) NOT NULL,
		surname       VARCHAR(100) NOT NULL,
		phone         VARCHAR(40)  NOT NULL DEFAULT '',
		is_active     TINYINT(1)   NOT NULL DEFAULT 1,
		created_at    DATETIME(6)  NOT NULL,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS sessions (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token      VARCHAR(128) NOT NULL,
		created_at DATETIME(6)  NOT NULL,
		expires_at DATETIME(6)  NOT NULL,
		active     TINYINT(1)   NOT NULL DEFAULT 1,
		UNIQUE KEY uq_sessions_token (token),
		KEY ix_sessions_expires (expires_at),
		CONSTRAINT fk_sessions_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS rooms (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		number      VARCHAR(10)  NOT NULL,
		type        ENUM('single','double','suite') NOT NULL,
		capacity    INT          NOT NULL,
		rate_cents  BIGINT       NOT NULL,
		description VARCHAR(500) NULL,
		available   TINYINT(1)   NOT NULL DEFAULT 1,
		UNIQUE KEY uq_rooms_number (number),
		CONSTRAINT ck_rooms_capacity CHECK (capacity > 0),
		CONSTRAINT ck_rooms_rate CHECK (rate_cents > 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reservations (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id     BIGINT UNSIGNED NOT NULL,
		room_id     BIGINT UNSIGNED NOT NULL,
		start_date  DATE        NOT NULL,
		end_date    DATE        NOT NULL,
		guests      INT         NOT NULL,
		nights      INT         NOT NULL,
		total_cents BIGINT      NOT NULL,
		status      ENUM('PENDING','CONFIRMED') NOT NULL DEFAULT 'PENDING',
		created_at  DATETIME(6) NOT NULL,
		KEY ix_reservations_room_dates (room_id, start_date, end_date),
		KEY ix_reservations_user (user_id, created_at),
		CONSTRAINT fk_reservations_user FOREIGN KEY (user_id) REFERENCES users(id),
		CONSTRAINT fk_reservations_room FOREIGN KEY (room_id) REFERENCES rooms(id),
		CONSTRAINT ck_reservations_range CHECK (start_date < end_date)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS payments (
		id               BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		reservation_id   BIGINT UNSIGNED NOT NULL,
		amount_cents     BIGINT      NOT NULL,
		method           VARCHAR(40) NOT NULL,
		card_last4       CHAR(4)     NOT NULL,
		transaction_code VARCHAR(32) NOT NULL,
		status           VARCHAR(16) NOT NULL,
		created_at       DATETIME(6) NOT NULL,
		UNIQUE KEY uq_payments_reservation (reservation_id),
		UNIQUE KEY uq_payments_txn (transaction_code),
		CONSTRAINT fk_payments_reservation FOREIGN KEY (reservation_id) REFERENCES reservations(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates missing tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i+1, err)
		}
	}
	return nil
}

// SeedRooms returns the initial room catalogue.
func SeedRooms() []model.Room {
	return []model.Room{
		{Number: "101", Type: model.RoomSingle, Capacity: 1, RateCents: 5000, Description: "Single room with a city view", Available: true},
		{Number: "102", Type: model.RoomSingle, Capacity: 1, RateCents: 5000, Description: "Single room with a city view", Available: true},
		{Number: "103", Type: model.RoomSingle, Capacity: 1, RateCents: 5500, Description: "Single room with a balcony", Available: true},
		{Number: "201", Type: model.RoomDouble, Capacity: 2, RateCents: 8000, Description: "Double room with a queen bed", Available: true},
		{Number: "202", Type: model.RoomDouble, Capacity: 2, RateCents: 8500, Description: "Double room with a sea view", Available: true},
		{Number: "203", Type: model.RoomDouble, Capacity: 2, RateCents: 8000, Description: "Double room with two beds", Available: true},
		{Number: "204", Type: model.RoomDouble, Capacity: 2, RateCents: 9000, Description: "Double room with a terrace", Available: true},
		{Number: "301", Type: model.RoomSuite, Capacity: 4, RateCents: 15000, Description: "Family suite with a living room", Available: true},
		{Number: "302", Type: model.RoomSuite, Capacity: 3, RateCents: 13000, Description: "Junior suite", Available: true},
		{Number: "303", Type: model.RoomSuite, Capacity: 4, RateCents: 16000, Description: "Presidential suite", Available: true},
	}
}

// Seed inserts the initial rooms when the rooms table is empty.
func Seed(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rooms").Scan(&n); err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	const q = `INSERT INTO rooms (number, type, capacity, rate_cents, description, available) VALUES (?,?,?,?,?,?)`
	rooms := SeedRooms()
	for _, rm := range rooms {
		if _, err := db.ExecContext(ctx, q, rm.Number, string(rm.Type), rm.Capacity, rm.RateCents, rm.Description, rm.Available); err != nil {
			return 0, fmt.Errorf("seed room %s: %w", rm.Number, err)
		}
	}
	return len(rooms), nil
}
