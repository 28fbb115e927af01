package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/iliyamo/experience-booking/internal/model"
)

// MemoryStore is an in-process Store.  It gives the same guarantees as the
// SQL store for the reservation path: GetTimeslotForUpdate takes a lock
// scoped to one timeslot id, writes are buffered in the transaction and
// applied only on commit, and locks are released when WithinTx returns.
type MemoryStore struct {
	mu          sync.RWMutex
	experiences map[string]model.Experience
	timeslots   map[string]model.Timeslot
	bookings    map[string]model.Booking

	locksMu sync.Mutex
	locks   map[string]chan struct{}
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		experiences: make(map[string]model.Experience),
		timeslots:   make(map[string]model.Timeslot),
		bookings:    make(map[string]model.Booking),
		locks:       make(map[string]chan struct{}),
	}
}

func (s *MemoryStore) ListExperiences(ctx context.Context) ([]model.Experience, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Experience, 0, len(s.experiences))
	for _, e := range s.experiences {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetExperience(ctx context.Context, id string) (*model.Experience, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.experiences[id]
	if !ok {
		return nil, ErrExperienceNotFound
	}
	return &e, nil
}

func (s *MemoryStore) ListTimeslots(ctx context.Context, experienceID, date string) ([]model.Timeslot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Timeslot, 0)
	for _, t := range s.timeslots {
		if t.ExperienceID == experienceID && t.Date == date {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) GetTimeslot(ctx context.Context, id string) (*model.Timeslot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.timeslots[id]
	if !ok {
		return nil, ErrTimeslotNotFound
	}
	return &t, nil
}

func (s *MemoryStore) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return &b, nil
}

func (s *MemoryStore) UpsertExperience(ctx context.Context, e *model.Experience) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.experiences[e.ID]; !ok {
		s.experiences[e.ID] = *e
	}
	return nil
}

func (s *MemoryStore) UpsertTimeslot(ctx context.Context, t *model.Timeslot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timeslots[t.ID]; !ok {
		s.timeslots[t.ID] = *t
	}
	return nil
}

// BookingsForTimeslot returns every committed booking on a timeslot.  It is
// used to check the capacity ledger invariant.
func (s *MemoryStore) BookingsForTimeslot(timeslotID string) []model.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.TimeslotID == timeslotID {
			out = append(out, b)
		}
	}
	return out
}

// lockFor returns the lock channel for a timeslot id, creating it on first
// use.  A channel with capacity one is used instead of a mutex so waiting
// can be abandoned when the context ends.
func (s *MemoryStore) lockFor(id string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = make(chan struct{}, 1)
		s.locks[id] = l
	}
	return l
}

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx := &memTx{
		store:  s,
		held:   make(map[string]chan struct{}),
		spots:  make(map[string]int),
		booked: make(map[string]model.Booking),
	}
	defer tx.release()
	if err := fn(ctx, tx); err != nil {
		return err
	}
	// A transaction whose deadline passed before commit rolls back, same as
	// database/sql does.
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range tx.booked {
		if _, exists := s.bookings[id]; exists {
			return ErrDuplicateBooking
		}
	}
	for id, n := range tx.spots {
		t := s.timeslots[id]
		t.SpotsLeft = n
		s.timeslots[id] = t
	}
	for id, b := range tx.booked {
		s.bookings[id] = b
	}
	return nil
}

type memTx struct {
	store  *MemoryStore
	held   map[string]chan struct{}
	spots  map[string]int
	booked map[string]model.Booking
}

func (t *memTx) release() {
	for id, l := range t.held {
		<-l
		delete(t.held, id)
	}
}

func (t *memTx) GetTimeslotForUpdate(ctx context.Context, id string) (*model.Timeslot, error) {
	if _, ok := t.held[id]; !ok {
		// Locks exist only for real timeslots so unknown ids cannot grow
		// the lock table.
		if _, err := t.store.GetTimeslot(ctx, id); err != nil {
			return nil, err
		}
		l := t.store.lockFor(id)
		select {
		case l <- struct{}{}:
			t.held[id] = l
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	ts, err := t.store.GetTimeslot(ctx, id)
	if err != nil {
		return nil, err
	}
	if n, ok := t.spots[id]; ok {
		ts.SpotsLeft = n
	}
	return ts, nil
}

func (t *memTx) UpdateTimeslotSpotsLeft(ctx context.Context, id string, spotsLeft int) error {
	if _, ok := t.held[id]; !ok {
		return ErrTimeslotNotLocked
	}
	ts, err := t.store.GetTimeslot(ctx, id)
	if err != nil {
		return err
	}
	if spotsLeft < 0 || spotsLeft > ts.TotalSpots {
		return ErrSpotsOutOfRange
	}
	t.spots[id] = spotsLeft
	return nil
}

func (t *memTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	if _, err := t.store.GetTimeslot(ctx, b.TimeslotID); err != nil {
		return err
	}
	if _, dup := t.booked[b.ID]; dup {
		return ErrDuplicateBooking
	}
	if _, err := t.store.GetBooking(ctx, b.ID); err == nil {
		return ErrDuplicateBooking
	}
	t.booked[b.ID] = *b
	return nil
}
