package model

import "time"

// Booking is a confirmed reservation of Seats against a single timeslot.
// Bookings are append-only: created once by a successful reservation and
// never updated or deleted.
type Booking struct {
	ID            string    `json:"id"`             // bookings.id (UUIDv4)
	ExperienceID  string    `json:"experience_id"`  // bookings.experience_id
	TimeslotID    string    `json:"timeslot_id"`    // bookings.timeslot_id
	Date          string    `json:"date"`           // bookings.date
	Time          string    `json:"time"`           // bookings.time
	CustomerName  string    `json:"customer_name"`  // bookings.customer_name
	CustomerEmail string    `json:"customer_email"` // bookings.customer_email
	Seats         int       `json:"seats"`          // bookings.seats
	CreatedAt     time.Time `json:"created_at"`     // bookings.created_at
}
