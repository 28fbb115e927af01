package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/experience-booking/internal/model"
	"github.com/iliyamo/experience-booking/internal/repository"
)

// ReserveRequest is the input of a reservation.  Field names follow the
// POST /api/bookings body.
type ReserveRequest struct {
	ExperienceID  string `json:"experience_id" validate:"required"`
	TimeslotID    string `json:"timeslot_id" validate:"required"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	Time          string `json:"time" validate:"required"`
	CustomerName  string `json:"customer_name" validate:"required"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	Seats         int    `json:"seats" validate:"gt=0"`
}

func (r ReserveRequest) trimmed() ReserveRequest {
	r.ExperienceID = strings.TrimSpace(r.ExperienceID)
	r.TimeslotID = strings.TrimSpace(r.TimeslotID)
	r.Date = strings.TrimSpace(r.Date)
	r.Time = strings.TrimSpace(r.Time)
	r.CustomerName = strings.TrimSpace(r.CustomerName)
	r.CustomerEmail = strings.TrimSpace(r.CustomerEmail)
	return r
}

// ReservationService converts timeslot capacity into bookings.  It is the
// only writer of timeslots.spots_left and of the bookings table.
type ReservationService struct {
	store    repository.Store
	timeout  time.Duration
	log      logrus.FieldLogger
	validate *validator.Validate
	newID    func() string
	now      func() time.Time
}

// NewReservationService constructs a ReservationService.  timeout bounds
// each reservation transaction, lock wait included; zero disables it.
func NewReservationService(store repository.Store, timeout time.Duration, log logrus.FieldLogger) *ReservationService {
	if store == nil {
		panic("nil store passed to NewReservationService")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ReservationService{
		store:    store,
		timeout:  timeout,
		log:      log,
		validate: newValidator(),
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// Reserve locks the timeslot, checks and decrements its capacity and
// appends the booking, all in one transaction.  Either both writes commit
// or neither does.
//
// Errors match ErrValidation, ErrNotFound, ErrInsufficientCapacity or
// ErrTransactionFailure.  Any error means nothing was written.
func (s *ReservationService) Reserve(ctx context.Context, req ReserveRequest) (*model.Booking, error) {
	req = req.trimmed()
	if err := s.validate.Struct(req); err != nil {
		return nil, toValidationError(err)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var booking *model.Booking
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		ts, err := tx.GetTimeslotForUpdate(ctx, req.TimeslotID)
		if err != nil {
			return err
		}
		if mismatch := timeslotMismatch(ts, req); mismatch != nil {
			return mismatch
		}
		if ts.SpotsLeft < req.Seats {
			return &CapacityError{TimeslotID: ts.ID, Requested: req.Seats, Available: ts.SpotsLeft}
		}
		if err := tx.UpdateTimeslotSpotsLeft(ctx, ts.ID, ts.SpotsLeft-req.Seats); err != nil {
			return fmt.Errorf("update spots_left: %w", err)
		}
		b := &model.Booking{
			ID:            s.newID(),
			ExperienceID:  req.ExperienceID,
			TimeslotID:    ts.ID,
			Date:          ts.Date,
			Time:          ts.Time,
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			Seats:         req.Seats,
			CreatedAt:     s.now().UTC().Truncate(time.Second),
		}
		if err := tx.InsertBooking(ctx, b); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		booking = b
		return nil
	})
	if err != nil {
		err = classifyReserveError(req.TimeslotID, err)
		s.log.WithFields(logrus.Fields{
			"timeslot_id": req.TimeslotID,
			"seats":       req.Seats,
		}).WithError(err).Info("reservation rejected")
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"timeslot_id": booking.TimeslotID,
		"seats":       booking.Seats,
	}).Info("reservation committed")
	return booking, nil
}

// timeslotMismatch rejects requests whose experience, date or time disagree
// with the locked row, so a booking never records a slot other than the one
// it decremented.
func timeslotMismatch(ts *model.Timeslot, req ReserveRequest) error {
	fields := map[string]string{}
	if ts.ExperienceID != req.ExperienceID {
		fields["experience_id"] = "does not match the timeslot"
	}
	if ts.Date != req.Date {
		fields["date"] = "does not match the timeslot"
	}
	if ts.Time != req.Time {
		fields["time"] = "does not match the timeslot"
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func classifyReserveError(timeslotID string, err error) error {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInsufficientCapacity):
		return err
	case errors.Is(err, repository.ErrTimeslotNotFound):
		return fmt.Errorf("timeslot %s: %w", timeslotID, ErrNotFound)
	default:
		return fmt.Errorf("%w: %w", ErrTransactionFailure, err)
	}
}
