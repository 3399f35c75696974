// Package memory implements repository.Store in process memory.  It backs
// the test suites and APP_STORE=memory runs.
//
// A unit of work buffers its writes and applies them on commit under the
// store mutex, re-checking unique keys at that point.  LockByID takes a
// per-key lock that is held until the unit of work ends, giving the same
// per-room and per-reservation serialization as SELECT ... FOR UPDATE.
package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// Store keeps every table in maps keyed by id.
type Store struct {
	mu           sync.RWMutex
	users        map[uint64]model.User
	sessions     map[uint64]model.Session
	rooms        map[uint64]model.Room
	reservations map[uint64]model.Reservation
	payments     map[uint64]model.Payment

	nextID atomic.Uint64

	locksMu sync.Mutex
	locks   map[string]chan struct{}

	view
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	s := &Store{
		users:        make(map[uint64]model.User),
		sessions:     make(map[uint64]model.Session),
		rooms:        make(map[uint64]model.Room),
		reservations: make(map[uint64]model.Reservation),
		payments:     make(map[uint64]model.Payment),
		locks:        make(map[string]chan struct{}),
	}
	s.view = view{s: s}
	return s
}

// AddRooms inserts catalogue rooms, assigning ids to rooms that have
// none, and returns them in input order.
func (s *Store) AddRooms(rooms ...model.Room) []model.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Room, 0, len(rooms))
	for _, rm := range rooms {
		if rm.ID == 0 {
			rm.ID = s.newID()
		}
		s.rooms[rm.ID] = rm
		out = append(out, rm)
	}
	return out
}

// PaymentCount returns the number of committed payments for a
// reservation.
func (s *Store) PaymentCount(reservationID uint64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.payments {
		if p.ReservationID == reservationID {
			n++
		}
	}
	return n
}

// Reservations on a room in committed state, used by invariant checks.
func (s *Store) RoomReservations(roomID uint64) []model.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Reservation
	for _, r := range s.reservations {
		if r.RoomID == roomID {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) newID() uint64 { return s.nextID.Add(1) }

// InTx runs fn in a unit of work.  Locks taken through LockByID are
// released after the commit or the rollback.
func (s *Store) InTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	st := newTxState()
	defer st.release()
	if err := fn(view{s: s, tx: st}); err != nil {
		return err
	}
	return s.commit(st)
}

// lock blocks until the key is free or ctx is done.
func (s *Store) lock(ctx context.Context, st *txState, key string) error {
	if _, ok := st.held[key]; ok {
		return nil
	}
	s.locksMu.Lock()
	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	s.locksMu.Unlock()
	select {
	case ch <- struct{}{}:
		st.held[key] = ch
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) commit(st *txState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range st.users {
		if s.emailTaken(u.Email, u.ID) {
			return repository.ErrDuplicate
		}
	}
	for _, se := range st.sessions {
		if s.tokenTaken(se.Token, se.ID) {
			return repository.ErrDuplicate
		}
	}
	for _, p := range st.payments {
		if s.paymentTaken(p) {
			return repository.ErrDuplicate
		}
	}

	for id, u := range st.users {
		s.users[id] = u
	}
	for id, se := range st.sessions {
		s.sessions[id] = se
	}
	for id, r := range st.reservations {
		s.reservations[id] = r
	}
	for id, p := range st.payments {
		s.payments[id] = p
	}
	return nil
}

// The helpers below expect s.mu to be held.

func (s *Store) emailTaken(email string, self uint64) bool {
	for id, u := range s.users {
		if id != self && u.Email == email {
			return true
		}
	}
	return false
}

func (s *Store) tokenTaken(token string, self uint64) bool {
	for id, se := range s.sessions {
		if id != self && se.Token == token {
			return true
		}
	}
	return false
}

func (s *Store) paymentTaken(p model.Payment) bool {
	for id, x := range s.payments {
		if id == p.ID {
			continue
		}
		if x.ReservationID == p.ReservationID || x.TransactionCode == p.TransactionCode {
			return true
		}
	}
	return false
}

// txState holds the buffered writes and the locks of one unit of work.
type txState struct {
	held         map[string]chan struct{}
	users        map[uint64]model.User
	sessions     map[uint64]model.Session
	reservations map[uint64]model.Reservation
	payments     map[uint64]model.Payment
}

func newTxState() *txState {
	return &txState{
		held:         make(map[string]chan struct{}),
		users:        make(map[uint64]model.User),
		sessions:     make(map[uint64]model.Session),
		reservations: make(map[uint64]model.Reservation),
		payments:     make(map[uint64]model.Payment),
	}
}

func (st *txState) release() {
	for key, ch := range st.held {
		<-ch
		delete(st.held, key)
	}
}
