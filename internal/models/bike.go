package models

import "time"

// EngineCC is the displacement bucket used to pick cost-per-km thresholds.
type EngineCC string

const (
	CC50To125   EngineCC = "50-125"
	CC126To250  EngineCC = "126-250"
	CC251To500  EngineCC = "251-500"
	CC501To1000 EngineCC = "501-1000"
	CCOver1000  EngineCC = ">1000"
)

// IsValidEngineCC checks if an engine class is valid
func IsValidEngineCC(cc EngineCC) bool {
	switch cc {
	case CC50To125, CC126To250, CC251To500, CC501To1000, CCOver1000:
		return true
	default:
		return false
	}
}

// Bike holds the rider's vehicle details.
type Bike struct {
	Name             string     `json:"name" bson:"name"`
	Number           string     `json:"number" bson:"number"`
	Make             string     `json:"make" bson:"make"`
	Model            string     `json:"model" bson:"model"`
	Year             int        `json:"year" bson:"year" validate:"omitempty,gte=1900"`
	EngineCC         EngineCC   `json:"engine_cc" bson:"engine_cc" validate:"required,oneof=50-125 126-250 251-500 501-1000 >1000"`
	PurchasePrice    float64    `json:"purchase_price,omitempty" bson:"purchase_price,omitempty" validate:"gte=0"`
	PurchaseDate     *time.Time `json:"purchase_date,omitempty" bson:"purchase_date,omitempty"`
	FuelTankCapacity float64    `json:"fuel_tank_capacity,omitempty" bson:"fuel_tank_capacity,omitempty" validate:"gte=0"` // in liters
}
