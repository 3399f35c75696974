package model

import (
	"fmt"
	"strings"
)

// RoomType is the closed set of room categories.
type RoomType string

const (
	RoomSingle RoomType = "single"
	RoomDouble RoomType = "double"
	RoomSuite  RoomType = "suite"
)

// RoomTypes lists every valid room type in catalogue order.
var RoomTypes = []RoomType{RoomSingle, RoomDouble, RoomSuite}

// ParseRoomType maps user input onto a RoomType.  The Spanish labels
// used by the first version of the API ("simple", "doble") are accepted
// as aliases.
func ParseRoomType(s string) (RoomType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", "simple":
		return RoomSingle, nil
	case "double", "doble":
		return RoomDouble, nil
	case "suite":
		return RoomSuite, nil
	}
	return "", fmt.Errorf("unknown room type %q", s)
}

// Room is static reference data from the `rooms` table.  Bookings never
// mutate it.
//
// Fields:
//  ID          – primary key identifier.
//  Number      – unique room number shown to guests (e.g. "201").
//  Type        – one of RoomTypes.
//  Capacity    – maximum number of guests.
//  RateCents   – nightly rate in cents.
//  Description – optional free text.
//  Available   – whether the room is offered at all.
type Room struct {
	ID          uint64   // rooms.id
	Number      string   // rooms.number
	Type        RoomType // rooms.type
	Capacity    int      // rooms.capacity
	RateCents   int64    // rooms.rate_cents
	Description string   // rooms.description
	Available   bool     // rooms.available
}
