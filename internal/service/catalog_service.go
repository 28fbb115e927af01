package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/experience-booking/internal/model"
	"github.com/iliyamo/experience-booking/internal/repository"
)

// CatalogService serves the read side: the experience list, per-date
// availability and booking lookup for the confirmation page.  Nothing here
// takes locks; availability may trail an in-flight reservation, which is
// fine because Reserve re-checks capacity under the row lock.
type CatalogService struct {
	store repository.Store
}

// NewCatalogService constructs a CatalogService over the given store.
func NewCatalogService(store repository.Store) *CatalogService {
	if store == nil {
		panic("nil store passed to NewCatalogService")
	}
	return &CatalogService{store: store}
}

// ExperienceAvailability is the detail view of one experience on one date.
type ExperienceAvailability struct {
	Experience *model.Experience        `json:"experience"`
	Date       string                   `json:"date"`
	Timeslots  []model.AvailabilitySlot `json:"timeslots"`
}

// ListExperiences returns the whole catalog ordered by id.
func (s *CatalogService) ListExperiences(ctx context.Context) ([]model.Experience, error) {
	list, err := s.store.ListExperiences(ctx)
	if err != nil {
		return nil, fmt.Errorf("list experiences: %w", err)
	}
	return list, nil
}

// ListAvailability projects the timeslots of an experience on a date.  No
// matching rows gives an empty slice, not an error.
func (s *CatalogService) ListAvailability(ctx context.Context, experienceID, date string) ([]model.AvailabilitySlot, error) {
	experienceID = strings.TrimSpace(experienceID)
	if err := checkDate(date); err != nil {
		return nil, err
	}
	rows, err := s.store.ListTimeslots(ctx, experienceID, date)
	if err != nil {
		return nil, fmt.Errorf("list timeslots: %w", err)
	}
	return ProjectAvailability(rows), nil
}

// GetExperienceAvailability returns the experience together with its
// availability on date.  An unknown experience is ErrNotFound.
func (s *CatalogService) GetExperienceAvailability(ctx context.Context, experienceID, date string) (*ExperienceAvailability, error) {
	experienceID = strings.TrimSpace(experienceID)
	if experienceID == "" {
		return nil, &ValidationError{Fields: map[string]string{"id": "is required"}}
	}
	if err := checkDate(date); err != nil {
		return nil, err
	}
	exp, err := s.store.GetExperience(ctx, experienceID)
	if err != nil {
		if errors.Is(err, repository.ErrExperienceNotFound) {
			return nil, fmt.Errorf("experience %s: %w", experienceID, ErrNotFound)
		}
		return nil, fmt.Errorf("get experience: %w", err)
	}
	slots, err := s.ListAvailability(ctx, experienceID, date)
	if err != nil {
		return nil, err
	}
	return &ExperienceAvailability{Experience: exp, Date: date, Timeslots: slots}, nil
}

// GetBooking returns a persisted booking by id.
func (s *CatalogService) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &ValidationError{Fields: map[string]string{"id": "is required"}}
	}
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, fmt.Errorf("booking %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func checkDate(date string) error {
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return &ValidationError{Fields: map[string]string{"date": "must be a date in YYYY-MM-DD format"}}
	}
	return nil
}
