package calc

import (
	"time"

	"github.com/ridelog/ridelog/internal/models"
)

// TripSummary is shown when a trip ends.
type TripSummary struct {
	DurationDays     int     `json:"duration_days"`
	DistanceTraveled float64 `json:"distance_traveled"`
	TotalExpenses    float64 `json:"total_expenses"`
}

// SummarizeTrip measures a trip. An unfinished trip is measured up to now,
// and a trip shorter than a day counts as one day. A trip that has not
// started yet measures nothing past its start. Distance is 0 unless both
// odometer readings were recorded.
func SummarizeTrip(trip models.Trip, now time.Time) TripSummary {
	end := now
	if trip.End != nil {
		end = *trip.End
	}
	if trip.Status == models.TripPlanned || end.Before(trip.Start) {
		end = trip.Start
	}
	days := DaysBetween(end, trip.Start)
	if days < 1 {
		days = 1
	}

	var distance float64
	if trip.StartOdometer != nil && trip.EndOdometer != nil {
		distance = *trip.EndOdometer - *trip.StartOdometer
	}

	var total float64
	for _, e := range trip.Expenses {
		total += e.Cost
	}

	return TripSummary{
		DurationDays:     days,
		DistanceTraveled: distance,
		TotalExpenses:    round(total, 2),
	}
}
