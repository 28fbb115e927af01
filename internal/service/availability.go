package service

import (
	"sort"
	"time"

	"github.com/iliyamo/experience-booking/internal/model"
)

// clockLayouts are the time label formats understood when ordering slots.
var clockLayouts = []string{"03:04 PM", "3:04 PM", "03:04PM", "3:04PM", "15:04", "15:04:05"}

// parseClock returns minutes since midnight for a time label.
func parseClock(label string) (int, bool) {
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, label); err == nil {
			return t.Hour()*60 + t.Minute(), true
		}
	}
	return 0, false
}

// ProjectAvailability turns raw timeslot rows into the availability view.
// Slots are ordered by clock time ("09:00 AM" before "02:00 PM"); labels
// that do not parse come last in label order.  The input is not modified
// and the result is never nil.
func ProjectAvailability(slots []model.Timeslot) []model.AvailabilitySlot {
	type keyed struct {
		slot    model.Timeslot
		minutes int
		parsed  bool
	}
	rows := make([]keyed, 0, len(slots))
	for _, s := range slots {
		m, ok := parseClock(s.Time)
		rows = append(rows, keyed{slot: s, minutes: m, parsed: ok})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.parsed != b.parsed {
			return a.parsed
		}
		if a.parsed && a.minutes != b.minutes {
			return a.minutes < b.minutes
		}
		if !a.parsed && a.slot.Time != b.slot.Time {
			return a.slot.Time < b.slot.Time
		}
		return a.slot.ID < b.slot.ID
	})
	out := make([]model.AvailabilitySlot, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.AvailabilitySlot{
			ID:         r.slot.ID,
			Time:       r.slot.Time,
			SpotsLeft:  r.slot.SpotsLeft,
			TotalSpots: r.slot.TotalSpots,
			Available:  r.slot.SpotsLeft > 0,
		})
	}
	return out
}
