package model

// DateLayout is the calendar date format used for timeslot and booking dates.
const DateLayout = "2006-01-02"

// Timeslot is one date+time offering of an Experience with a finite number
// of seats.  SpotsLeft is the only mutable column: it starts equal to
// TotalSpots and only ever goes down, and only the reservation service
// writes it.
//
// Fields:
//  ID           – primary key identifier.
//  ExperienceID – experience being offered.
//  Date         – calendar date in DateLayout.
//  Time         – time label as displayed ("09:00 AM").
//  TotalSpots   – fixed capacity set at creation.
//  SpotsLeft    – remaining capacity, 0 <= SpotsLeft <= TotalSpots.
type Timeslot struct {
	ID           string // timeslots.id
	ExperienceID string // timeslots.experience_id
	Date         string // timeslots.date
	Time         string // timeslots.time
	TotalSpots   int    // timeslots.total_spots
	SpotsLeft    int    // timeslots.spots_left
}

// AvailabilitySlot is the public projection of a Timeslot for one date.
type AvailabilitySlot struct {
	ID         string `json:"id"`
	Time       string `json:"time"`
	SpotsLeft  int    `json:"spotsLeft"`
	TotalSpots int    `json:"total"`
	Available  bool   `json:"available"`
}
