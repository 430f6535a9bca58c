package calc

import (
	"sort"
	"strings"
	"time"

	"github.com/ridelog/ridelog/internal/models"
)

// EfficiencyStatus grades the average fuel mileage.
type EfficiencyStatus string

const (
	EfficiencyExcellent EfficiencyStatus = "Excellent"
	EfficiencyAverage   EfficiencyStatus = "Average"
	EfficiencyPoor      EfficiencyStatus = "Poor"
)

// Stats is the dashboard snapshot, recomputed from the full history on
// every request.
type Stats struct {
	LastOdometer      float64          `json:"last_odometer"`
	TotalFuelCost     float64          `json:"total_fuel_cost"`
	TotalServiceCost  float64          `json:"total_service_cost"`
	TotalOwnership    float64          `json:"total_ownership"`
	TotalFuelLiters   float64          `json:"total_fuel_liters"`
	AvgMileage        float64          `json:"avg_mileage"`
	LastMileage       float64          `json:"last_mileage"`
	BestMileage       float64          `json:"best_mileage"`
	CostPerKm         float64          `json:"cost_per_km"`
	EfficiencyStatus  EfficiencyStatus `json:"efficiency_status"`
	DailyAvgKm        float64          `json:"daily_avg_km"`
	TotalPartsChanged int              `json:"total_parts_changed"`
	TotalOilChanges   int              `json:"total_oil_changes"`
	TotalServices     int              `json:"total_services"`
	TotalFuelLogs     int              `json:"total_fuel_logs"`
	LastServiceDate   *time.Time       `json:"last_service_date"`
	Cpk               CpkData          `json:"cpk"`
}

// CalculateStats builds the snapshot. Odometer sync logs move LastOdometer
// but are excluded from costs, liters and mileage.
func CalculateStats(logs []models.FuelLog, services []models.ServiceRecord, cc models.EngineCC) Stats {
	fills := RealFills(logs)

	var lastServiceDate *time.Time
	if last, ok := latestService(services); ok {
		lastServiceDate = timePtr(last.Date)
	}
	lastOdo := LastOdometer(logs, services)

	var fuelCost, liters float64
	for _, l := range fills {
		fuelCost += l.Amount
		liters += l.Liters
	}
	var serviceCost float64
	var parts, oil int
	for _, s := range services {
		serviceCost += s.ComputedTotal()
		for _, p := range s.Parts {
			if strings.Contains(strings.ToLower(p.Name), "oil") {
				oil++
			} else {
				parts++
			}
		}
	}
	ownership := fuelCost + serviceCost

	firstOdo := firstOdometer(logs, services)
	costPerKm := 0.0
	if distance := lastOdo - firstOdo; distance > 0 {
		costPerKm = ownership / distance
	}

	mileage := MileageStats(fills)

	return Stats{
		LastOdometer:      lastOdo,
		TotalFuelCost:     round(fuelCost, 2),
		TotalServiceCost:  round(serviceCost, 2),
		TotalOwnership:    round(ownership, 2),
		TotalFuelLiters:   round(liters, 2),
		AvgMileage:        round(mileage.Average, 1),
		LastMileage:       round(mileage.MostRecent, 1),
		BestMileage:       round(mileage.Best, 1),
		CostPerKm:         round(costPerKm, 2),
		EfficiencyStatus:  efficiency(mileage.Average),
		DailyAvgKm:        round(DailyAverageKm(logs, services), 1),
		TotalPartsChanged: parts,
		TotalOilChanges:   oil,
		TotalServices:     len(services),
		TotalFuelLogs:     len(fills),
		LastServiceDate:   lastServiceDate,
		Cpk:               CalculateCpk(fills, services, cc),
	}
}

// LastOdometer is the highest fuel log reading, sync logs included, or the
// latest-dated service reading when that is higher.
func LastOdometer(logs []models.FuelLog, services []models.ServiceRecord) float64 {
	var odo float64
	for _, l := range logs {
		if l.Odometer > odo {
			odo = l.Odometer
		}
	}
	if last, ok := latestService(services); ok && last.Odometer > odo {
		odo = last.Odometer
	}
	return odo
}

// DailyAverageKm is the distance per day between the earliest and latest
// dated records that carry an odometer. It is 0 with fewer than two such
// records or when either span is not positive.
func DailyAverageKm(logs []models.FuelLog, services []models.ServiceRecord) float64 {
	type point struct {
		date time.Time
		odo  float64
	}
	var points []point
	for _, l := range logs {
		if !l.Date.IsZero() && l.Odometer > 0 {
			points = append(points, point{l.Date, l.Odometer})
		}
	}
	for _, s := range services {
		if !s.Date.IsZero() && s.Odometer > 0 {
			points = append(points, point{s.Date, s.Odometer})
		}
	}
	if len(points) < 2 {
		return 0
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].date.Before(points[j].date)
	})

	first, last := points[0], points[len(points)-1]
	days := last.date.Sub(first.date).Hours() / 24
	distance := last.odo - first.odo
	if days <= 0 || distance <= 0 {
		return 0
	}
	return distance / days
}

func firstOdometer(logs []models.FuelLog, services []models.ServiceRecord) float64 {
	first := 0.0
	take := func(odo float64) {
		if odo > 0 && (first == 0 || odo < first) {
			first = odo
		}
	}
	for _, l := range logs {
		take(l.Odometer)
	}
	for _, s := range services {
		take(s.Odometer)
	}
	return first
}

func efficiency(avg float64) EfficiencyStatus {
	switch {
	case avg > 40:
		return EfficiencyExcellent
	case avg > 25:
		return EfficiencyAverage
	default:
		return EfficiencyPoor
	}
}
