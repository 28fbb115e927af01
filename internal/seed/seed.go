// Package seed holds the reference catalog and the rolling window of
// timeslots written at deploy time.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/experience-booking/internal/model"
)

// Writer is the part of repository.Store the seed step needs.
type Writer interface {
	UpsertExperience(ctx context.Context, e *model.Experience) error
	UpsertTimeslot(ctx context.Context, t *model.Timeslot) error
}

// Experiences returns the catalog.
func Experiences() []model.Experience {
	return []model.Experience{
		{
			ID:          "1",
			Title:       "Sunset Beach Yoga",
			Description: "Relax and rejuvenate with a peaceful yoga session on the beach as the sun sets over the ocean.",
			Price:       decimal.NewFromInt(45),
			Image:       "https://images.unsplash.com/photo-1506905925346-21bda4d32df4?w=800&h=600&fit=crop",
			Duration:    "1.5 hours",
			Location:    "Santa Monica Beach",
			Rating:      4.8,
			Reviews:     124,
		},
		{
			ID:          "2",
			Title:       "Mountain Hiking Adventure",
			Description: "Explore scenic mountain trails with an experienced guide. Perfect for nature lovers.",
			Price:       decimal.NewFromInt(75),
			Image:       "https://images.unsplash.com/photo-1551632811-561732d1e306?w=800&h=600&fit=crop",
			Duration:    "4 hours",
			Location:    "Blue Ridge Mountains",
			Rating:      4.9,
			Reviews:     89,
		},
		{
			ID:          "3",
			Title:       "City Food Tour",
			Description: "Discover hidden culinary gems and taste authentic local cuisine on this guided food tour.",
			Price:       decimal.NewFromInt(65),
			Image:       "https://images.unsplash.com/photo-1555939594-58d7cb561ad1?w=800&h=600&fit=crop",
			Duration:    "3 hours",
			Location:    "Downtown District",
			Rating:      4.7,
			Reviews:     156,
		},
		{
			ID:          "4",
			Title:       "Sunset Sailing Experience",
			Description: "Sail into the sunset on a private yacht with champagne and stunning coastal views.",
			Price:       decimal.NewFromInt(120),
			Image:       "https://images.unsplash.com/photo-1544551763-46a013bb70d5?w=800&h=600&fit=crop",
			Duration:    "2 hours",
			Location:    "Marina Bay",
			Rating:      5.0,
			Reviews:     73,
		},
		{
			ID:          "5",
			Title:       "Photography Walking Tour",
			Description: "Capture the city's beauty through your lens with tips from a professional photographer.",
			Price:       decimal.NewFromInt(55),
			Image:       "https://images.unsplash.com/photo-1452587925148-ce544e77e70d?w=800&h=600&fit=crop",
			Duration:    "2.5 hours",
			Location:    "Historic Quarter",
			Rating:      4.6,
			Reviews:     92,
		},
		{
			ID:          "6",
			Title:       "Wine Tasting Experience",
			Description: "Sample premium wines and learn about winemaking from expert sommeliers.",
			Price:       decimal.NewFromInt(85),
			Image:       "https://images.unsplash.com/photo-1510812431401-41d2bd2722f3?w=800&h=600&fit=crop",
			Duration:    "2 hours",
			Location:    "Napa Valley Vineyard",
			Rating:      4.9,
			Reviews:     134,
		},
	}
}

// dailySlot is one entry of the daily schedule.
type dailySlot struct {
	time     string
	capacity int
}

// dailySchedule is offered for every experience on every seeded date.  The
// 04:00 PM slot has no capacity and always shows as sold out.
var dailySchedule = []dailySlot{
	{"09:00 AM", 8},
	{"11:00 AM", 5},
	{"02:00 PM", 12},
	{"04:00 PM", 0},
	{"06:00 PM", 3},
}

// TimeslotID builds the id of the n-th (1-based) daily slot.
func TimeslotID(date string, n int, experienceID string) string {
	return fmt.Sprintf("TS-%s-%d-%s", date, n, experienceID)
}

// Timeslots returns the schedule of every experience for days consecutive
// dates starting at from (UTC calendar date).
func Timeslots(experiences []model.Experience, from time.Time, days int) []model.Timeslot {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]model.Timeslot, 0, days*len(experiences)*len(dailySchedule))
	for d := 0; d < days; d++ {
		date := start.AddDate(0, 0, d).Format(model.DateLayout)
		for _, e := range experiences {
			for i, s := range dailySchedule {
				out = append(out, model.Timeslot{
					ID:           TimeslotID(date, i+1, e.ID),
					ExperienceID: e.ID,
					Date:         date,
					Time:         s.time,
					TotalSpots:   s.capacity,
					SpotsLeft:    s.capacity,
				})
			}
		}
	}
	return out
}

// Result counts the rows offered to the store.  Rows that already existed
// are counted too; upserts leave them untouched.
type Result struct {
	Experiences int
	Timeslots   int
}

// Run writes the catalog and the timeslot window.  It is idempotent:
// existing rows, including their spots_left, are never overwritten.
func Run(ctx context.Context, w Writer, from time.Time, days int) (Result, error) {
	var res Result
	exps := Experiences()
	for i := range exps {
		if err := w.UpsertExperience(ctx, &exps[i]); err != nil {
			return res, fmt.Errorf("seed experience %s: %w", exps[i].ID, err)
		}
		res.Experiences++
	}
	slots := Timeslots(exps, from, days)
	for i := range slots {
		if err := w.UpsertTimeslot(ctx, &slots[i]); err != nil {
			return res, fmt.Errorf("seed timeslot %s: %w", slots[i].ID, err)
		}
		res.Timeslots++
	}
	return res, nil
}
