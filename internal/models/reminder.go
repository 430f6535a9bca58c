package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ManualReminder is a free-form "remind me" entry that is not tied to a
// service part. At least one of DueDate and DueOdometer must be set.
type ManualReminder struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RiderID     string             `json:"rider_id" bson:"rider_id"`
	DueDate     *time.Time         `json:"due_date,omitempty" bson:"due_date,omitempty"`
	DueOdometer *float64           `json:"due_odometer,omitempty" bson:"due_odometer,omitempty" validate:"omitempty,gt=0"`
	Notes       string             `json:"notes" bson:"notes"`
	IsCompleted bool               `json:"is_completed" bson:"is_completed"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// HasDueDate reports whether the reminder is date-based.
func (r ManualReminder) HasDueDate() bool {
	return r.DueDate != nil && !r.DueDate.IsZero()
}

// HasDueOdometer reports whether the reminder is odometer-based.
func (r ManualReminder) HasDueOdometer() bool {
	return r.DueOdometer != nil && *r.DueOdometer > 0
}
