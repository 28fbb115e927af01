package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Outcome taxonomy shared by the reservation and catalog services.  Callers
// classify with errors.Is; the detailed types below match these sentinels.
var (
	// ErrValidation marks a missing or malformed input field.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a missing experience, timeslot or booking.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientCapacity marks a reservation asking for more seats
	// than the timeslot has left.
	ErrInsufficientCapacity = errors.New("not enough spots left")
	// ErrTransactionFailure marks a storage error inside the reservation
	// transaction.  The transaction has been rolled back.
	ErrTransactionFailure = errors.New("transaction failed")
)

// ValidationError lists the offending fields with a short reason each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// CapacityError reports a lost race or a sold-out timeslot.
type CapacityError struct {
	TimeslotID string
	Requested  int
	Available  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s on timeslot %s: requested %d, available %d",
		ErrInsufficientCapacity, e.TimeslotID, e.Requested, e.Available)
}

func (e *CapacityError) Is(target error) bool { return target == ErrInsufficientCapacity }
