package repository

import (
	"context"

	"github.com/iliyamo/experience-booking/internal/model"
)

// Store is the catalog and booking storage used by the service layer.  Plain
// reads run outside any transaction; the reservation path goes through
// WithinTx so that the capacity decrement and the booking insert commit or
// roll back together.
type Store interface {
	ListExperiences(ctx context.Context) ([]model.Experience, error)
	GetExperience(ctx context.Context, id string) (*model.Experience, error)
	// ListTimeslots returns the timeslots of one experience on one date,
	// ordered by time label then id.  No match yields an empty slice.
	ListTimeslots(ctx context.Context, experienceID, date string) ([]model.Timeslot, error)
	GetTimeslot(ctx context.Context, id string) (*model.Timeslot, error)
	GetBooking(ctx context.Context, id string) (*model.Booking, error)

	// WithinTx runs fn inside a single unit of work.  When fn returns an
	// error, or ctx ends before commit, every write made through tx is
	// discarded and any row locks are released.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// UpsertExperience and UpsertTimeslot insert a row unless one with the
	// same id exists.  They are only used to seed reference data.
	UpsertExperience(ctx context.Context, e *model.Experience) error
	UpsertTimeslot(ctx context.Context, t *model.Timeslot) error
}

// Tx is the set of operations available inside WithinTx.
type Tx interface {
	// GetTimeslotForUpdate reads a timeslot and holds an exclusive lock on
	// it until the surrounding transaction ends.
	GetTimeslotForUpdate(ctx context.Context, id string) (*model.Timeslot, error)
	UpdateTimeslotSpotsLeft(ctx context.Context, id string, spotsLeft int) error
	InsertBooking(ctx context.Context, b *model.Booking) error
}
