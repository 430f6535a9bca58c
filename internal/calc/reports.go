package calc

import (
	"sort"
	"time"

	"github.com/ridelog/ridelog/internal/models"
)

// MonthlyCost is the spend of one calendar month.
type MonthlyCost struct {
	Month   string  `json:"month"` // 2006-01
	Label   string  `json:"label"` // Jan
	Fuel    float64 `json:"fuel"`
	Service float64 `json:"service"`
}

// MileagePoint is one fill-to-fill efficiency reading.
type MileagePoint struct {
	Date       time.Time `json:"date"`
	KmPerLiter float64   `json:"km_per_liter"`
}

const (
	mileageOutlier   = 100
	mileageTrendSize = 10
)

// MonthlyCosts buckets fuel and service spend into the last months calendar
// months ending with the month of today, oldest first. Records outside the
// window are ignored.
func MonthlyCosts(logs []models.FuelLog, services []models.ServiceRecord, today time.Time, months int) []MonthlyCost {
	if months <= 0 {
		return []MonthlyCost{}
	}

	out := make([]MonthlyCost, months)
	index := make(map[string]int, months)
	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	for i := 0; i < months; i++ {
		m := start.AddDate(0, i-months+1, 0)
		key := m.Format("2006-01")
		out[i] = MonthlyCost{Month: key, Label: m.Format("Jan")}
		index[key] = i
	}

	for _, l := range logs {
		if i, ok := index[l.Date.In(today.Location()).Format("2006-01")]; ok {
			out[i].Fuel += l.Amount
		}
	}
	for _, s := range services {
		if i, ok := index[s.Date.In(today.Location()).Format("2006-01")]; ok {
			out[i].Service += s.ComputedTotal()
		}
	}
	for i := range out {
		out[i].Fuel = round(out[i].Fuel, 2)
		out[i].Service = round(out[i].Service, 2)
	}
	return out
}

// MileageTrend returns the efficiency of each fill against the previous
// one in date order, dropping readings of 100 km/l or more, and keeps the
// latest ten.
func MileageTrend(logs []models.FuelLog) []MileagePoint {
	var fills []models.FuelLog
	for _, l := range logs {
		if l.Liters > 0 {
			fills = append(fills, l)
		}
	}
	sort.SliceStable(fills, func(i, j int) bool {
		return fills[i].Date.Before(fills[j].Date)
	})

	points := []MileagePoint{}
	for i := 1; i < len(fills); i++ {
		distance := fills[i].Odometer - fills[i-1].Odometer
		if distance <= 0 {
			continue
		}
		kml := distance / fills[i].Liters
		if kml < mileageOutlier {
			points = append(points, MileagePoint{Date: fills[i].Date, KmPerLiter: round(kml, 2)})
		}
	}
	if len(points) > mileageTrendSize {
		points = points[len(points)-mileageTrendSize:]
	}
	return points
}
