package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/experience-booking/internal/model"
)

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// BookingRepo provides the append-only booking ledger.  Rows are inserted
// inside the reservation transaction and read back by id for confirmation
// display; nothing updates or deletes them.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts a booking within the scope of an existing transaction.
// The caller supplies the id and created_at and must commit or roll back.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (id, experience_id, timeslot_id, date, time, customer_name, customer_email, seats, created_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		b.ID, b.ExperienceID, b.TimeslotID, b.Date, b.Time,
		b.CustomerName, b.CustomerEmail, b.Seats, b.CreatedAt.UTC(),
	)
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return ErrDuplicateBooking
	}
	return err
}

// GetByID returns a single booking.  When no booking with the specified id
// exists, ErrBookingNotFound is returned.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	const q = `SELECT id, experience_id, timeslot_id, date, time, customer_name, customer_email, seats, created_at
               FROM bookings WHERE id = ?`
	var b model.Booking
	var date time.Time
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.ExperienceID, &b.TimeslotID, &date, &b.Time,
		&b.CustomerName, &b.CustomerEmail, &b.Seats, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	b.Date = date.Format(model.DateLayout)
	b.CreatedAt = b.CreatedAt.UTC()
	return &b, nil
}
