package memory

import (
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
)

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func roomKey(id uint64) string        { return "room:" + strconv.FormatUint(id, 10) }
func reservationKey(id uint64) string { return "reservation:" + strconv.FormatUint(id, 10) }

func countOverlapping(all map[uint64]model.Reservation, roomID uint64, start, end time.Time) int {
	n := 0
	for _, r := range all {
		if r.RoomID == roomID && r.Status.Blocking() && model.Overlaps(r.StartDate, r.EndDate, start, end) {
			n++
		}
	}
	return n
}

func typeRank(t model.RoomType) int {
	for i, x := range model.RoomTypes {
		if x == t {
			return i
		}
	}
	return len(model.RoomTypes)
}
