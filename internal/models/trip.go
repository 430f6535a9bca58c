package models

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
	TripPlanned   TripStatus = "planned"
	TripActive    TripStatus = "active"
	TripCompleted TripStatus = "completed"
)

// Trip represents a planned, running or finished ride.
type Trip struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RiderID           string             `json:"rider_id" bson:"rider_id"`
	Destination       string             `json:"destination" bson:"destination" validate:"required"`
	Start             time.Time          `json:"start" bson:"start" validate:"required"`
	End               *time.Time         `json:"end,omitempty" bson:"end,omitempty"`
	EstimatedDistance float64            `json:"estimated_distance" bson:"estimated_distance" validate:"gte=0"` // in kilometers
	StartOdometer     *float64           `json:"start_odometer,omitempty" bson:"start_odometer,omitempty"`
	EndOdometer       *float64           `json:"end_odometer,omitempty" bson:"end_odometer,omitempty"`
	Status            TripStatus         `json:"status" bson:"status" validate:"oneof=planned active completed"`
	Expenses          []TripExpense      `json:"expenses" bson:"expenses" validate:"dive"`
	CreatedAt         time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" bson:"updated_at"`
}

// TripExpense is one line of a trip wallet.
type TripExpense struct {
	ID   uuid.UUID `json:"id" bson:"id"`
	Item string    `json:"item" bson:"item" validate:"required"`
	Cost float64   `json:"cost" bson:"cost" validate:"gte=0"`
}

// NewTripExpense creates an expense line with a fresh id.
func NewTripExpense(item string, cost float64) TripExpense {
	return TripExpense{ID: uuid.New(), Item: item, Cost: cost}
}
