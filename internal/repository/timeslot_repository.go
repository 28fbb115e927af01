// Package repository contains data access logic for timeslots.  A timeslot
// is a dated offering of an experience with a fixed capacity and a
// spots_left counter that only the reservation transaction decrements.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/experience-booking/internal/model"
)

// TimeslotRepo manages persistence for timeslots.
type TimeslotRepo struct {
	db *sql.DB
}

// NewTimeslotRepo constructs a TimeslotRepo with the given DB handle.
func NewTimeslotRepo(db *sql.DB) *TimeslotRepo {
	return &TimeslotRepo{db: db}
}

// mysqlCheckViolated is the server error number for a failed CHECK
// constraint (spots_left between 0 and total_spots).
const mysqlCheckViolated = 3819

const timeslotColumns = "id, experience_id, date, time, total_spots, spots_left"

// scanTimeslot reads one row.  DATE columns arrive as time.Time because the
// DSN sets parseTime=true; they are stored on the model as YYYY-MM-DD.
func scanTimeslot(row interface{ Scan(...any) error }, t *model.Timeslot) error {
	var date time.Time
	if err := row.Scan(&t.ID, &t.ExperienceID, &date, &t.Time, &t.TotalSpots, &t.SpotsLeft); err != nil {
		return err
	}
	t.Date = date.Format(model.DateLayout)
	return nil
}

// ListByExperienceAndDate returns all timeslots of an experience on a given
// date ordered by time label.  Served by the (experience_id, date) index.
func (r *TimeslotRepo) ListByExperienceAndDate(ctx context.Context, experienceID, date string) ([]model.Timeslot, error) {
	const q = "SELECT " + timeslotColumns + " FROM timeslots WHERE experience_id = ? AND date = ? ORDER BY time, id"
	rows, err := r.db.QueryContext(ctx, q, experienceID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Timeslot, 0)
	for rows.Next() {
		var t model.Timeslot
		if err := scanTimeslot(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID retrieves a timeslot without locking it.  It returns
// ErrTimeslotNotFound if there is no matching row.
func (r *TimeslotRepo) GetByID(ctx context.Context, id string) (*model.Timeslot, error) {
	var t model.Timeslot
	if err := scanTimeslot(r.db.QueryRowContext(ctx, "SELECT "+timeslotColumns+" FROM timeslots WHERE id = ?", id), &t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTimeslotNotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetByIDForUpdateTx reads a timeslot with SELECT ... FOR UPDATE inside the
// caller's transaction.  InnoDB holds an exclusive lock on the row until the
// transaction commits or rolls back, so concurrent reservations on the same
// timeslot are serialized while other timeslots stay unaffected.
func (r *TimeslotRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (*model.Timeslot, error) {
	const q = "SELECT " + timeslotColumns + " FROM timeslots WHERE id = ? FOR UPDATE"
	var t model.Timeslot
	if err := scanTimeslot(tx.QueryRowContext(ctx, q, id), &t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTimeslotNotFound
		}
		return nil, err
	}
	return &t, nil
}

// UpdateSpotsLeftTx sets spots_left on a timeslot within the provided
// transaction.  The DSN uses clientFoundRows so RowsAffected counts
// matched rows; zero means the timeslot does not exist.
func (r *TimeslotRepo) UpdateSpotsLeftTx(ctx context.Context, tx *sql.Tx, id string, spotsLeft int) error {
	res, err := tx.ExecContext(ctx, "UPDATE timeslots SET spots_left = ? WHERE id = ?", spotsLeft, id)
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlCheckViolated {
		return ErrSpotsOutOfRange
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTimeslotNotFound
	}
	return nil
}

// Upsert inserts the timeslot unless a row with the same id exists.
func (r *TimeslotRepo) Upsert(ctx context.Context, t *model.Timeslot) error {
	const q = `INSERT INTO timeslots (` + timeslotColumns + `)
               VALUES (?, ?, ?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE id = id`
	_, err := r.db.ExecContext(ctx, q, t.ID, t.ExperienceID, t.Date, t.Time, t.TotalSpots, t.SpotsLeft)
	return err
}
