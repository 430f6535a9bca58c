package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TankStatus records whether a fill topped the tank up.
type TankStatus string

const (
	TankFull    TankStatus = "full"
	TankPartial TankStatus = "partial"
)

// FuelType is the grade of fuel bought.
type FuelType string

const (
	FuelNormal  FuelType = "normal"
	FuelPremium FuelType = "premium"
)

// FuelLog represents a single fuel purchase.
type FuelLog struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RiderID          string             `json:"rider_id" bson:"rider_id"`
	Date             time.Time          `json:"date" bson:"date" validate:"required"`
	Odometer         float64            `json:"odometer" bson:"odometer" validate:"gte=0"` // in kilometers
	Liters           float64            `json:"liters" bson:"liters" validate:"gte=0"`
	Amount           float64            `json:"amount" bson:"amount" validate:"gte=0"`
	PricePerLiter    float64            `json:"price_per_liter" bson:"price_per_liter" validate:"gte=0"`
	TankStatus       TankStatus         `json:"tank_status" bson:"tank_status" validate:"oneof=full partial"`
	EstimatedMileage *float64           `json:"estimated_mileage,omitempty" bson:"estimated_mileage,omitempty" validate:"omitempty,gt=0"` // km/l, partial fills only
	Station          string             `json:"station,omitempty" bson:"station,omitempty"`
	FuelType         FuelType           `json:"fuel_type,omitempty" bson:"fuel_type,omitempty" validate:"omitempty,oneof=normal premium"`
	PaymentMode      string             `json:"payment_mode,omitempty" bson:"payment_mode,omitempty"`
	Location         string             `json:"location,omitempty" bson:"location,omitempty"`
	Notes            string             `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
}

// IsRealFill reports whether the log is an actual purchase rather than an
// odometer sync entry.
func (f FuelLog) IsRealFill() bool {
	return f.Liters > 0 || f.Amount > 0
}

// NewOdometerSync builds the zero-liter, zero-amount log that only moves the
// recorded odometer forward.
func NewOdometerSync(riderID string, odometer float64, date time.Time) FuelLog {
	return FuelLog{
		RiderID:    riderID,
		Date:       date,
		Odometer:   odometer,
		TankStatus: TankPartial,
		Notes:      "odometer sync",
	}
}
