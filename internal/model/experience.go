package model

import "github.com/shopspring/decimal"

// Experience is a bookable activity or tour.  Rows are written once by the
// seed step and never touched by the reservation path.
//
// Fields:
//  ID          – primary key identifier (string, assigned by the seed data).
//  Title       – display title.
//  Description – long description shown on the detail page.
//  Price       – price per seat; never negative.
//  Image       – URL of the cover image.
//  Duration    – free-form duration label ("1.5 hours").
//  Location    – free-form location label.
//  Rating      – average rating between 0 and 5.
//  Reviews     – number of reviews behind Rating.
type Experience struct {
	ID          string          `json:"id"`          // experiences.id
	Title       string          `json:"title"`       // experiences.title
	Description string          `json:"description"` // experiences.description
	Price       decimal.Decimal `json:"price"`       // experiences.price
	Image       string          `json:"image"`       // experiences.image
	Duration    string          `json:"duration"`    // experiences.duration
	Location    string          `json:"location"`    // experiences.location
	Rating      float64         `json:"rating"`      // experiences.rating
	Reviews     int             `json:"reviews"`     // experiences.reviews
}
