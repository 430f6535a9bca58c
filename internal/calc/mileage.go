package calc

import (
	"sort"

	"github.com/ridelog/ridelog/internal/models"
)

// Mileage holds fuel efficiency figures in km per liter. A figure that
// cannot be determined is 0.
type Mileage struct {
	Average    float64 `json:"average"`
	MostRecent float64 `json:"most_recent"`
	Best       float64 `json:"best"`
}

// RealFills drops odometer sync entries, keeping only actual purchases.
func RealFills(logs []models.FuelLog) []models.FuelLog {
	out := make([]models.FuelLog, 0, len(logs))
	for _, l := range logs {
		if l.IsRealFill() {
			out = append(out, l)
		}
	}
	return out
}

// MileageStats computes efficiency from real fuel logs.
//
// Samples come from consecutive full-tank fills: the distance between them
// divided by every liter bought after the first fill up to and including
// the second. When no full-tank pair yields a sample, the user supplied
// estimates on the logs are used instead.
func MileageStats(logs []models.FuelLog) Mileage {
	if len(logs) < 2 {
		return Mileage{}
	}

	sorted := sortByOdometer(logs)
	var samples []float64

	var fullIdx []int
	for i, l := range sorted {
		if l.TankStatus == models.TankFull {
			fullIdx = append(fullIdx, i)
		}
	}
	for i := 0; i+1 < len(fullIdx); i++ {
		from, to := fullIdx[i], fullIdx[i+1]
		distance := sorted[to].Odometer - sorted[from].Odometer
		var consumed float64
		for j := from + 1; j <= to; j++ {
			consumed += sorted[j].Liters
		}
		if distance > 0 && consumed > 0 {
			samples = append(samples, distance/consumed)
		}
	}

	if len(samples) == 0 {
		for _, l := range sorted {
			if l.EstimatedMileage != nil && *l.EstimatedMileage > 0 {
				samples = append(samples, *l.EstimatedMileage)
			}
		}
	}

	if len(samples) == 0 {
		return Mileage{}
	}

	var sum, best float64
	for _, s := range samples {
		sum += s
		if s > best {
			best = s
		}
	}
	return Mileage{
		Average:    sum / float64(len(samples)),
		MostRecent: samples[len(samples)-1],
		Best:       best,
	}
}

func sortByOdometer(logs []models.FuelLog) []models.FuelLog {
	sorted := make([]models.FuelLog, len(logs))
	copy(sorted, logs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Odometer < sorted[j].Odometer
	})
	return sorted
}
