package garage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ridelog/ridelog/internal/db"
	"github.com/ridelog/ridelog/internal/models"
	log "github.com/sirupsen/logrus"
)

// AddFuelLog validates and stores a fuel log for the rider. A real fill
// made while a trip is active is also added to the trip's expenses.
func (s *Service) AddFuelLog(ctx context.Context, riderID string, fuel *models.FuelLog) error {
	fuel.RiderID = riderID
	if fuel.PricePerLiter == 0 && fuel.Liters > 0 {
		fuel.PricePerLiter = fuel.Amount / fuel.Liters
	}
	if err := models.Validate(fuel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if err := s.store.InsertFuelLog(ctx, fuel); err != nil {
		return fmt.Errorf("failed to save fuel log: %w", err)
	}
	if fuel.IsRealFill() {
		s.postToActiveTrip(ctx, riderID, fuelExpenseItem(fuel.Liters), fuel.Amount)
	}
	return nil
}

// AddServiceRecord validates and stores a service record. Its total is
// recomputed from labor and parts, and posted to the active trip.
func (s *Service) AddServiceRecord(ctx context.Context, riderID string, record *models.ServiceRecord) error {
	record.RiderID = riderID
	record.TotalCost = record.ComputedTotal()
	if err := models.Validate(record); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if err := s.store.InsertServiceRecord(ctx, record); err != nil {
		return fmt.Errorf("failed to save service record: %w", err)
	}
	s.postToActiveTrip(ctx, riderID, "Service: "+record.Title, record.TotalCost)
	return nil
}

// AddManualReminder validates and stores a manual reminder.
func (s *Service) AddManualReminder(ctx context.Context, riderID string, reminder *models.ManualReminder) error {
	reminder.RiderID = riderID
	reminder.IsCompleted = false
	if err := models.Validate(reminder); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if err := s.store.InsertManualReminder(ctx, reminder); err != nil {
		return fmt.Errorf("failed to save reminder: %w", err)
	}
	return nil
}

// postToActiveTrip appends an expense line to the rider's active trip.
// The record that caused it is already stored, so failures are logged and
// not returned.
func (s *Service) postToActiveTrip(ctx context.Context, riderID, item string, cost float64) {
	trip, err := s.store.FindActiveTrip(ctx, riderID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.WithError(err).WithField("rider_id", riderID).Warn("Failed to look up active trip")
		}
		return
	}
	trip.Expenses = append(trip.Expenses, models.NewTripExpense(item, cost))
	if err := s.store.UpdateTrip(ctx, trip); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"rider_id": riderID,
			"trip_id":  trip.ID.Hex(),
			"item":     item,
		}).Warn("Failed to post expense to active trip")
		return
	}
	log.WithFields(log.Fields{
		"rider_id": riderID,
		"trip_id":  trip.ID.Hex(),
		"item":     item,
		"cost":     cost,
	}).Debug("Posted expense to active trip")
}

func fuelExpenseItem(liters float64) string {
	return "Fuel (" + strconv.FormatFloat(liters, 'f', -1, 64) + "L)"
}

// FuelLogs lists the rider's fuel logs, odometer syncs included.
func (s *Service) FuelLogs(ctx context.Context, riderID string) ([]models.FuelLog, error) {
	return s.store.FuelLogs(ctx, riderID)
}

func (s *Service) DeleteFuelLog(ctx context.Context, riderID, id string) error {
	return s.store.DeleteFuelLog(ctx, riderID, id)
}

// ServiceRecords lists the rider's service history.
func (s *Service) ServiceRecords(ctx context.Context, riderID string) ([]models.ServiceRecord, error) {
	return s.store.ServiceRecords(ctx, riderID)
}

func (s *Service) DeleteServiceRecord(ctx context.Context, riderID, id string) error {
	return s.store.DeleteServiceRecord(ctx, riderID, id)
}

// ManualReminders lists the rider's manual reminders, completed ones included.
func (s *Service) ManualReminders(ctx context.Context, riderID string) ([]models.ManualReminder, error) {
	return s.store.ManualReminders(ctx, riderID)
}

// CompleteManualReminder marks a manual reminder done so it stops being
// projected.
func (s *Service) CompleteManualReminder(ctx context.Context, riderID, id string) error {
	return s.store.CompleteManualReminder(ctx, riderID, id)
}

func (s *Service) DeleteManualReminder(ctx context.Context, riderID, id string) error {
	return s.store.DeleteManualReminder(ctx, riderID, id)
}
