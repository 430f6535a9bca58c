package db

import (
	"context"
	"errors"

	"github.com/ridelog/ridelog/internal/models"
)

var (
	// ErrNotFound is returned when no record matches the rider and id.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write breaks a unique index.
	ErrDuplicate = errors.New("duplicate record")
	// ErrInvalidID is returned for ids that are not valid ObjectIDs.
	ErrInvalidID = errors.New("invalid record id")
)

// RecordStore holds one rider's fuel logs, service records, trips and
// manual reminders. Every call is scoped to a rider so records of other
// riders are never visible.
type RecordStore interface {
	FuelLogs(ctx context.Context, riderID string) ([]models.FuelLog, error)
	ServiceRecords(ctx context.Context, riderID string) ([]models.ServiceRecord, error)
	Trips(ctx context.Context, riderID string) ([]models.Trip, error)
	ManualReminders(ctx context.Context, riderID string) ([]models.ManualReminder, error)
	Bike(ctx context.Context, riderID string) (*models.Bike, error)

	InsertFuelLog(ctx context.Context, log *models.FuelLog) error
	DeleteFuelLog(ctx context.Context, riderID, id string) error

	InsertServiceRecord(ctx context.Context, record *models.ServiceRecord) error
	DeleteServiceRecord(ctx context.Context, riderID, id string) error

	InsertManualReminder(ctx context.Context, reminder *models.ManualReminder) error
	CompleteManualReminder(ctx context.Context, riderID, id string) error
	DeleteManualReminder(ctx context.Context, riderID, id string) error

	InsertTrip(ctx context.Context, trip *models.Trip) error
	FindTrip(ctx context.Context, riderID, id string) (*models.Trip, error)
	FindActiveTrip(ctx context.Context, riderID string) (*models.Trip, error)
	UpdateTrip(ctx context.Context, trip *models.Trip) error
}

// RiderCollection defines the interface for rider account operations.
type RiderCollection interface {
	InsertRider(ctx context.Context, rider *models.Rider) error
	FindRiderByID(ctx context.Context, id string) (*models.Rider, error)
	FindRiderByEmail(ctx context.Context, email string) (*models.Rider, error)
	FindActiveRiders(ctx context.Context) ([]models.Rider, error)
	UpdateBike(ctx context.Context, id string, bike models.Bike) error
	UpdateLastLogin(ctx context.Context, id string) error
}
