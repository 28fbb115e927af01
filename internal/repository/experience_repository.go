// Package repository contains data access logic separated from HTTP handlers.
// This file defines repository methods for experiences.  Experiences are
// reference data: they are inserted by the seed step and only read
// afterwards.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"

	"github.com/iliyamo/experience-booking/internal/model"
)

// ExperienceRepo encapsulates all database queries related to experiences.
// It depends on a sql.DB connection which should be configured elsewhere.
type ExperienceRepo struct {
	db *sql.DB
}

// NewExperienceRepo constructs an ExperienceRepo with the provided DB handle.
func NewExperienceRepo(db *sql.DB) *ExperienceRepo {
	return &ExperienceRepo{db: db}
}

const experienceColumns = "id, title, description, price, image, duration, location, rating, reviews"

func scanExperience(row interface{ Scan(...any) error }, e *model.Experience) error {
	return row.Scan(&e.ID, &e.Title, &e.Description, &e.Price, &e.Image, &e.Duration, &e.Location, &e.Rating, &e.Reviews)
}

// ListAll returns every experience ordered by id.  An empty table yields an
// empty, non-nil slice.
func (r *ExperienceRepo) ListAll(ctx context.Context) ([]model.Experience, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+experienceColumns+" FROM experiences ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Experience, 0)
	for rows.Next() {
		var e model.Experience
		if err := scanExperience(rows, &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches an experience by its id.  It returns ErrExperienceNotFound
// if no row is found.
func (r *ExperienceRepo) GetByID(ctx context.Context, id string) (*model.Experience, error) {
	var e model.Experience
	err := scanExperience(r.db.QueryRowContext(ctx, "SELECT "+experienceColumns+" FROM experiences WHERE id = ?", id), &e)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExperienceNotFound
		}
		return nil, err
	}
	return &e, nil
}

// Upsert inserts the experience unless a row with the same id already
// exists, in which case the stored row is left untouched.
func (r *ExperienceRepo) Upsert(ctx context.Context, e *model.Experience) error {
	const q = `INSERT INTO experiences (` + experienceColumns + `)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE id = id`
	_, err := r.db.ExecContext(ctx, q, e.ID, e.Title, e.Description, e.Price, e.Image, e.Duration, e.Location, e.Rating, e.Reviews)
	return err
}
