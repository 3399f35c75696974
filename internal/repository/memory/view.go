package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// view binds the repositories either to the committed maps (tx == nil)
// or to one unit of work.
type view struct {
	s  *Store
	tx *txState
}

func (v view) Users() repository.UserRepository               { return userRepo{v} }
func (v view) Sessions() repository.SessionRepository         { return sessionRepo{v} }
func (v view) Rooms() repository.RoomRepository               { return roomRepo{v} }
func (v view) Reservations() repository.ReservationRepository { return reservationRepo{v} }
func (v view) Payments() repository.PaymentRepository         { return paymentRepo{v} }

// merge copies the committed rows and lays the unit-of-work rows over
// them.
func merge[T any](mu *sync.RWMutex, committed, overlay map[uint64]T) map[uint64]T {
	mu.RLock()
	out := make(map[uint64]T, len(committed)+len(overlay))
	for id, x := range committed {
		out[id] = x
	}
	mu.RUnlock()
	for id, x := range overlay {
		out[id] = x
	}
	return out
}

func (v view) users() map[uint64]model.User {
	var o map[uint64]model.User
	if v.tx != nil {
		o = v.tx.users
	}
	return merge(&v.s.mu, v.s.users, o)
}

func (v view) sessions() map[uint64]model.Session {
	var o map[uint64]model.Session
	if v.tx != nil {
		o = v.tx.sessions
	}
	return merge(&v.s.mu, v.s.sessions, o)
}

func (v view) reservations() map[uint64]model.Reservation {
	var o map[uint64]model.Reservation
	if v.tx != nil {
		o = v.tx.reservations
	}
	return merge(&v.s.mu, v.s.reservations, o)
}

func (v view) payments() map[uint64]model.Payment {
	var o map[uint64]model.Payment
	if v.tx != nil {
		o = v.tx.payments
	}
	return merge(&v.s.mu, v.s.payments, o)
}

// ----- users -----

type userRepo struct{ view }

func (r userRepo) Create(_ context.Context, u *model.User) error {
	u.Email = normalizeEmail(u.Email)
	for _, x := range r.users() {
		if x.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.ID = r.s.newID()
	u.IsActive = true
	u.CreatedAt = time.Now().UTC()
	if r.tx != nil {
		r.tx.users[u.ID] = *u
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.emailTaken(u.Email, u.ID) {
		return repository.ErrDuplicate
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (model.User, error) {
	email = normalizeEmail(email)
	for _, u := range r.users() {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (r userRepo) GetByID(_ context.Context, id uint64) (model.User, error) {
	if u, ok := r.users()[id]; ok {
		return u, nil
	}
	return model.User{}, repository.ErrNotFound
}

// ----- sessions -----

type sessionRepo struct{ view }

func (r sessionRepo) Create(_ context.Context, s *model.Session) error {
	for _, x := range r.sessions() {
		if x.Token == s.Token {
			return repository.ErrDuplicate
		}
	}
	s.ID = r.s.newID()
	if r.tx != nil {
		r.tx.sessions[s.ID] = *s
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.tokenTaken(s.Token, s.ID) {
		return repository.ErrDuplicate
	}
	r.s.sessions[s.ID] = *s
	return nil
}

func (r sessionRepo) GetByToken(_ context.Context, token string) (model.Session, model.User, error) {
	for _, s := range r.sessions() {
		if s.Token != token {
			continue
		}
		u, ok := r.users()[s.UserID]
		if !ok {
			return model.Session{}, model.User{}, repository.ErrNotFound
		}
		return s, u, nil
	}
	return model.Session{}, model.User{}, repository.ErrNotFound
}

func (r sessionRepo) Deactivate(_ context.Context, token string) error {
	if r.tx != nil {
		for _, s := range r.sessions() {
			if s.Token == token {
				s.Active = false
				r.tx.sessions[s.ID] = s
				return nil
			}
		}
		return repository.ErrNotFound
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, s := range r.s.sessions {
		if s.Token == token {
			s.Active = false
			r.s.sessions[id] = s
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r sessionRepo) PurgeExpired(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, s := range r.s.sessions {
		if s.ExpiresAt.Before(cutoff) {
			delete(r.s.sessions, id)
			n++
		}
	}
	return n, nil
}

// ----- rooms -----

type roomRepo struct{ view }

func (r roomRepo) GetByID(_ context.Context, id uint64) (model.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rm, ok := r.s.rooms[id]
	if !ok {
		return model.Room{}, repository.ErrNotFound
	}
	return rm, nil
}

func (r roomRepo) LockByID(ctx context.Context, id uint64) (model.Room, error) {
	rm, err := r.GetByID(ctx, id)
	if err != nil || r.tx == nil {
		return rm, err
	}
	if err := r.s.lock(ctx, r.tx, roomKey(id)); err != nil {
		return model.Room{}, err
	}
	return rm, nil
}

func (r roomRepo) List(_ context.Context) ([]model.Room, error) {
	r.s.mu.RLock()
	out := make([]model.Room, 0, len(r.s.rooms))
	for _, rm := range r.s.rooms {
		out = append(out, rm)
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r roomRepo) SearchFree(ctx context.Context, q repository.RoomSearch) ([]model.Room, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	reservations := r.reservations()
	out := make([]model.Room, 0)
	for _, rm := range all {
		if !rm.Available || rm.Capacity < q.MinCapacity {
			continue
		}
		if q.Type != "" && rm.Type != q.Type {
			continue
		}
		if countOverlapping(reservations, rm.ID, q.Start, q.End) > 0 {
			continue
		}
		out = append(out, rm)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := typeRank(out[i].Type), typeRank(out[j].Type)
		if ti != tj {
			return ti < tj
		}
		if out[i].RateCents != out[j].RateCents {
			return out[i].RateCents < out[j].RateCents
		}
		return out[i].Number < out[j].Number
	})
	return out, nil
}

// ----- reservations -----

type reservationRepo struct{ view }

func (r reservationRepo) Create(_ context.Context, res *model.Reservation) error {
	res.ID = r.s.newID()
	res.CreatedAt = time.Now().UTC()
	if r.tx != nil {
		r.tx.reservations[res.ID] = *res
		return nil
	}
	r.s.mu.Lock()
	r.s.reservations[res.ID] = *res
	r.s.mu.Unlock()
	return nil
}

func (r reservationRepo) CountOverlapping(_ context.Context, roomID uint64, start, end time.Time) (int, error) {
	return countOverlapping(r.reservations(), roomID, start, end), nil
}

func (r reservationRepo) GetByID(_ context.Context, id uint64) (model.Reservation, error) {
	if res, ok := r.reservations()[id]; ok {
		return res, nil
	}
	return model.Reservation{}, repository.ErrNotFound
}

func (r reservationRepo) LockByID(ctx context.Context, id uint64) (model.Reservation, error) {
	if r.tx != nil {
		if err := r.s.lock(ctx, r.tx, reservationKey(id)); err != nil {
			return model.Reservation{}, err
		}
	}
	// Read after locking so the previous holder's commit is visible.
	return r.GetByID(ctx, id)
}

func (r reservationRepo) UpdateStatus(_ context.Context, id uint64, status model.ReservationStatus) error {
	if r.tx != nil {
		res, ok := r.reservations()[id]
		if !ok {
			return repository.ErrNotFound
		}
		res.Status = status
		r.tx.reservations[id] = res
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.reservations[id]
	if !ok {
		return repository.ErrNotFound
	}
	res.Status = status
	r.s.reservations[id] = res
	return nil
}

func (r reservationRepo) ListByUser(_ context.Context, userID uint64) ([]model.ReservationDetail, error) {
	out := make([]model.ReservationDetail, 0)
	for _, res := range r.reservations() {
		if res.UserID == userID {
			out = append(out, r.detail(res))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r reservationRepo) GetDetailForUser(_ context.Context, id, userID uint64) (model.ReservationDetail, error) {
	res, ok := r.reservations()[id]
	if !ok || res.UserID != userID {
		return model.ReservationDetail{}, repository.ErrNotFound
	}
	return r.detail(res), nil
}

func (r reservationRepo) detail(res model.Reservation) model.ReservationDetail {
	r.s.mu.RLock()
	rm := r.s.rooms[res.RoomID]
	r.s.mu.RUnlock()
	return model.ReservationDetail{
		Reservation:     res,
		RoomNumber:      rm.Number,
		RoomType:        rm.Type,
		RoomDescription: rm.Description,
	}
}

// ----- payments -----

type paymentRepo struct{ view }

func (r paymentRepo) Create(_ context.Context, p *model.Payment) error {
	for _, x := range r.payments() {
		if x.ReservationID == p.ReservationID || x.TransactionCode == p.TransactionCode {
			return repository.ErrDuplicate
		}
	}
	p.ID = r.s.newID()
	p.CreatedAt = time.Now().UTC()
	if r.tx != nil {
		r.tx.payments[p.ID] = *p
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.paymentTaken(*p) {
		return repository.ErrDuplicate
	}
	r.s.payments[p.ID] = *p
	return nil
}

func (r paymentRepo) GetByReservation(_ context.Context, reservationID uint64) (model.Payment, error) {
	for _, p := range r.payments() {
		if p.ReservationID == reservationID {
			return p, nil
		}
	}
	return model.Payment{}, repository.ErrNotFound
}
