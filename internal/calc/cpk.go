package calc

import (
	"sort"

	"github.com/ridelog/ridelog/internal/models"
	"github.com/shopspring/decimal"
)

// Condition is the running-cost rating of a bike.
type Condition string

const (
	ConditionMint          Condition = "Mint Condition"
	ConditionSolid         Condition = "Solid Rider"
	ConditionFair          Condition = "Fair Runner"
	ConditionWorn          Condition = "Worn Beater"
	ConditionBasket        Condition = "Basket Case"
	ConditionNotEnoughData Condition = "Not Enough Data"
)

// MinCpkDistance is the odometer span in km below which no rating is given.
const MinCpkDistance = 500

// cpkThresholds are upper bounds in NPR per km. Mint is exclusive, the rest
// inclusive; anything above worn is a basket case.
type cpkThresholds struct {
	mint, solid, fair, worn decimal.Decimal
}

func thresholds(mint, solid, fair, worn string) cpkThresholds {
	return cpkThresholds{
		mint:  decimal.RequireFromString(mint),
		solid: decimal.RequireFromString(solid),
		fair:  decimal.RequireFromString(fair),
		worn:  decimal.RequireFromString(worn),
	}
}

var cpkTable = map[models.EngineCC]cpkThresholds{
	models.CC50To125:   thresholds("3.60", "5.77", "8.65", "14.41"),
	models.CC126To250:  thresholds("4.32", "6.49", "10.09", "17.30"),
	models.CC251To500:  thresholds("5.77", "7.93", "12.25", "20.18"),
	models.CC501To1000: thresholds("7.21", "10.09", "14.41", "23.06"),
	models.CCOver1000:  thresholds("8.65", "12.25", "17.30", "28.83"),
}

// CpkData is the cost-per-km breakdown. When Condition is
// ConditionNotEnoughData, TotalCpk is nil and the other figures are zero.
type CpkData struct {
	Condition         Condition `json:"condition"`
	TotalCpk          *float64  `json:"total_cpk"`
	FuelCpk           float64   `json:"fuel_cpk,omitempty"`
	ServiceCpk        float64   `json:"service_cpk,omitempty"`
	FuelCpkPercent    int       `json:"fuel_cpk_percent,omitempty"`
	ServiceCpkPercent int       `json:"service_cpk_percent,omitempty"`
	TotalDistance     float64   `json:"total_distance,omitempty"`
}

// HasRating reports whether a numeric rating was produced.
func (c CpkData) HasRating() bool {
	return c.TotalCpk != nil
}

var notEnoughData = CpkData{Condition: ConditionNotEnoughData}

// CalculateCpk rates running cost over the odometer span covered by the
// given real fuel logs and service records.
func CalculateCpk(logs []models.FuelLog, services []models.ServiceRecord, cc models.EngineCC) CpkData {
	var odos []float64
	for _, l := range logs {
		if l.Odometer > 0 {
			odos = append(odos, l.Odometer)
		}
	}
	for _, s := range services {
		if s.Odometer > 0 {
			odos = append(odos, s.Odometer)
		}
	}
	if len(odos) < 2 {
		return notEnoughData
	}
	sort.Float64s(odos)
	totalDistance := odos[len(odos)-1] - odos[0]
	if totalDistance < MinCpkDistance {
		return notEnoughData
	}

	fuelSum := decimal.Zero
	for _, l := range logs {
		fuelSum = fuelSum.Add(decimal.NewFromFloat(l.Amount))
	}
	serviceSum := decimal.Zero
	for _, s := range services {
		serviceSum = serviceSum.Add(decimal.NewFromFloat(s.ComputedTotal()))
	}
	totalExpense := fuelSum.Add(serviceSum)
	if totalDistance <= 0 || !totalExpense.IsPositive() {
		return notEnoughData
	}

	distance := decimal.NewFromFloat(totalDistance)
	totalCpk := totalExpense.Div(distance)
	hundred := decimal.NewFromInt(100)

	total, _ := totalCpk.Round(2).Float64()
	fuelCpk, _ := fuelSum.Div(distance).Round(2).Float64()
	serviceCpk, _ := serviceSum.Div(distance).Round(2).Float64()

	return CpkData{
		Condition:         classify(totalCpk, cc),
		TotalCpk:          &total,
		FuelCpk:           fuelCpk,
		ServiceCpk:        serviceCpk,
		FuelCpkPercent:    int(fuelSum.Div(totalExpense).Mul(hundred).Round(0).IntPart()),
		ServiceCpkPercent: int(serviceSum.Div(totalExpense).Mul(hundred).Round(0).IntPart()),
		TotalDistance:     totalDistance,
	}
}

func classify(cpk decimal.Decimal, cc models.EngineCC) Condition {
	t, ok := cpkTable[cc]
	if !ok {
		t = cpkTable[models.CC126To250]
	}
	switch {
	case cpk.LessThan(t.mint):
		return ConditionMint
	case cpk.LessThanOrEqual(t.solid):
		return ConditionSolid
	case cpk.LessThanOrEqual(t.fair):
		return ConditionFair
	case cpk.LessThanOrEqual(t.worn):
		return ConditionWorn
	default:
		return ConditionBasket
	}
}
