package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReminderType selects how a part's service interval is measured.
type ReminderType string

const (
	ReminderNone ReminderType = "none"
	ReminderKm   ReminderType = "km"
	ReminderDays ReminderType = "days"
)

// IsValidReminderType checks if a reminder type is valid
func IsValidReminderType(t ReminderType) bool {
	switch t {
	case ReminderNone, ReminderKm, ReminderDays:
		return true
	default:
		return false
	}
}

// ServiceType classifies a workshop visit.
type ServiceType string

const (
	ServiceRegular   ServiceType = "regular"
	ServiceRepair    ServiceType = "repair"
	ServiceEmergency ServiceType = "emergency"
)

// ServicePart is a line item of a service record.
type ServicePart struct {
	Name          string       `json:"name" bson:"name" validate:"required"`
	UnitCost      float64      `json:"unit_cost" bson:"unit_cost" validate:"gte=0"`
	Quantity      float64      `json:"quantity" bson:"quantity" validate:"gte=0"`
	ReminderType  ReminderType `json:"reminder_type" bson:"reminder_type" validate:"omitempty,oneof=none km days"`
	ReminderValue float64      `json:"reminder_value" bson:"reminder_value"` // km or days depending on ReminderType
}

// HasReminder reports whether the part carries a usable service interval.
// Parts with a reminder type but no positive value are ignored.
func (p ServicePart) HasReminder() bool {
	return (p.ReminderType == ReminderKm || p.ReminderType == ReminderDays) && p.ReminderValue > 0
}

// LineCost is the part cost times quantity.
func (p ServicePart) LineCost() float64 {
	return p.UnitCost * p.Quantity
}

// ServiceRecord represents a vehicle maintenance record.
type ServiceRecord struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RiderID     string             `json:"rider_id" bson:"rider_id"`
	Date        time.Time          `json:"date" bson:"date" validate:"required"`
	Odometer    float64            `json:"odometer" bson:"odometer" validate:"gte=0"` // in kilometers
	Title       string             `json:"title" bson:"title" validate:"required"`
	LaborCost   float64            `json:"labor_cost" bson:"labor_cost" validate:"gte=0"`
	TotalCost   float64            `json:"total_cost" bson:"total_cost"`
	Parts       []ServicePart      `json:"parts" bson:"parts" validate:"dive"`
	ServiceType ServiceType        `json:"service_type,omitempty" bson:"service_type,omitempty" validate:"omitempty,oneof=regular repair emergency"`
	Notes       string             `json:"notes,omitempty" bson:"notes,omitempty"`
	InvoiceURL  string             `json:"invoice_url,omitempty" bson:"invoice_url,omitempty" validate:"omitempty,url"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// ComputedTotal is labor plus the sum of part line costs. Stored TotalCost
// values are not trusted.
func (s ServiceRecord) ComputedTotal() float64 {
	total := s.LaborCost
	for _, p := range s.Parts {
		total += p.LineCost()
	}
	return total
}
