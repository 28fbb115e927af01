package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/experience-booking/internal/model"
)

// SQLStore implements Store on top of MySQL.  It groups the experience,
// timeslot and booking repositories so a single transaction can span
// them.
type SQLStore struct {
	db          *sql.DB
	Experiences *ExperienceRepo
	Timeslots   *TimeslotRepo
	Bookings    *BookingRepo
}

// NewSQLStore wires the repositories to one connection pool.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{
		db:          db,
		Experiences: NewExperienceRepo(db),
		Timeslots:   NewTimeslotRepo(db),
		Bookings:    NewBookingRepo(db),
	}
}

// DB exposes the underlying sql.DB for callers that need it directly, such
// as schema migration.
func (s *SQLStore) DB() *sql.DB { return s.db }

func (s *SQLStore) ListExperiences(ctx context.Context) ([]model.Experience, error) {
	return s.Experiences.ListAll(ctx)
}

func (s *SQLStore) GetExperience(ctx context.Context, id string) (*model.Experience, error) {
	return s.Experiences.GetByID(ctx, id)
}

func (s *SQLStore) ListTimeslots(ctx context.Context, experienceID, date string) ([]model.Timeslot, error) {
	return s.Timeslots.ListByExperienceAndDate(ctx, experienceID, date)
}

func (s *SQLStore) GetTimeslot(ctx context.Context, id string) (*model.Timeslot, error) {
	return s.Timeslots.GetByID(ctx, id)
}

func (s *SQLStore) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	return s.Bookings.GetByID(ctx, id)
}

func (s *SQLStore) UpsertExperience(ctx context.Context, e *model.Experience) error {
	return s.Experiences.Upsert(ctx, e)
}

func (s *SQLStore) UpsertTimeslot(ctx context.Context, t *model.Timeslot) error {
	return s.Timeslots.Upsert(ctx, t)
}

// WithinTx begins a transaction, runs fn and commits.  Any error from fn
// rolls the transaction back.  database/sql also rolls back on its own
// when ctx is cancelled before Commit.
func (s *SQLStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(ctx, &sqlTx{store: s, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

// sqlTx binds the repository *Tx methods to one open transaction.
type sqlTx struct {
	store *SQLStore
	tx    *sql.Tx
}

func (t *sqlTx) GetTimeslotForUpdate(ctx context.Context, id string) (*model.Timeslot, error) {
	return t.store.Timeslots.GetByIDForUpdateTx(ctx, t.tx, id)
}

func (t *sqlTx) UpdateTimeslotSpotsLeft(ctx context.Context, id string, spotsLeft int) error {
	return t.store.Timeslots.UpdateSpotsLeftTx(ctx, t.tx, id, spotsLeft)
}

func (t *sqlTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	return t.store.Bookings.CreateTx(ctx, t.tx, b)
}
