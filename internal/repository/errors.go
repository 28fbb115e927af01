// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// reservation service to distinguish a missing row from a storage failure
// without inspecting driver-specific errors.
package repository

import "errors"

// ErrExperienceNotFound is returned when no experience has the requested id.
var ErrExperienceNotFound = errors.New("experience not found")

// ErrTimeslotNotFound is returned when no timeslot has the requested id.
var ErrTimeslotNotFound = errors.New("timeslot not found")

// ErrBookingNotFound is returned when no booking has the requested id.
var ErrBookingNotFound = errors.New("booking not found")

// ErrDuplicateBooking is returned when a booking id is already taken.  Ids
// are random UUIDs so in practice this signals a bug, not a collision.
var ErrDuplicateBooking = errors.New("duplicate booking id")

// ErrTimeslotNotLocked is returned by a transaction that tries to change
// spots_left on a timeslot it has not read for update first.
var ErrTimeslotNotLocked = errors.New("timeslot not locked by transaction")

// ErrSpotsOutOfRange is returned when a write would leave spots_left
// outside [0, total_spots].
var ErrSpotsOutOfRange = errors.New("spots_left out of range")
