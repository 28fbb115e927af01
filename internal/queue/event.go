// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

import (
	"time"

	"github.com/iliyamo/experience-booking/internal/model"
)

// BookingConfirmedEvent is published after a reservation commits.  It
// carries enough of the booking for downstream consumers to log or audit
// it without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID     string `json:"booking_id"`
	ExperienceID  string `json:"experience_id"`
	TimeslotID    string `json:"timeslot_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	CustomerEmail string `json:"customer_email"`
	Seats         int    `json:"seats"`
	ConfirmedAt   string `json:"confirmed_at"`
}

// NewBookingConfirmedEvent builds the event for a committed booking.
func NewBookingConfirmedEvent(b *model.Booking) BookingConfirmedEvent {
	return BookingConfirmedEvent{
		BookingID:     b.ID,
		ExperienceID:  b.ExperienceID,
		TimeslotID:    b.TimeslotID,
		Date:          b.Date,
		Time:          b.Time,
		CustomerEmail: b.CustomerEmail,
		Seats:         b.Seats,
		ConfirmedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
	}
}
