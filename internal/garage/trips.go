package garage

import (
	"context"
	"errors"
	"fmt"

	"github.com/ridelog/ridelog/internal/calc"
	"github.com/ridelog/ridelog/internal/db"
	"github.com/ridelog/ridelog/internal/models"
	log "github.com/sirupsen/logrus"
)

// Trips lists the rider's trips, newest first.
func (s *Service) Trips(ctx context.Context, riderID string) ([]models.Trip, error) {
	trips, err := s.store.Trips(ctx, riderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trips: %w", err)
	}
	return trips, nil
}

// PlanTrip stores a new trip in the planned state.
func (s *Service) PlanTrip(ctx context.Context, riderID string, trip *models.Trip) error {
	trip.RiderID = riderID
	trip.Status = models.TripPlanned
	trip.End = nil
	trip.StartOdometer = nil
	trip.EndOdometer = nil
	if err := models.Validate(trip); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if err := s.store.InsertTrip(ctx, trip); err != nil {
		return fmt.Errorf("failed to save trip: %w", err)
	}
	return nil
}

// StartTrip moves a planned trip to active and records the odometer it
// starts at. Only one trip per rider can be active.
func (s *Service) StartTrip(ctx context.Context, riderID, tripID string, odometer float64) (*models.Trip, error) {
	if odometer < 0 {
		return nil, ErrInvalidOdometer
	}
	trip, err := s.store.FindTrip(ctx, riderID, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status != models.TripPlanned {
		return nil, ErrTripNotPlanned
	}
	if _, err := s.store.FindActiveTrip(ctx, riderID); err == nil {
		return nil, ErrTripAlreadyActive
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to check active trip: %w", err)
	}

	now := s.clock.Now()
	trip.Status = models.TripActive
	trip.Start = now
	trip.StartOdometer = &odometer
	if err := s.store.UpdateTrip(ctx, trip); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, ErrTripAlreadyActive
		}
		return nil, fmt.Errorf("failed to start trip: %w", err)
	}
	s.syncOdometer(ctx, riderID, tripID, odometer)

	log.WithFields(log.Fields{
		"rider_id": riderID,
		"trip_id":  tripID,
		"odometer": odometer,
	}).Info("Trip started")
	return trip, nil
}

// EndTrip completes the active trip at the given odometer and returns its
// summary.
func (s *Service) EndTrip(ctx context.Context, riderID, tripID string, odometer float64) (*models.Trip, *calc.TripSummary, error) {
	trip, err := s.activeTrip(ctx, riderID, tripID)
	if err != nil {
		return nil, nil, err
	}
	if trip.StartOdometer != nil && odometer < *trip.StartOdometer {
		return nil, nil, fmt.Errorf("%w: end %.0f is below start %.0f", ErrInvalidOdometer, odometer, *trip.StartOdometer)
	}

	now := s.clock.Now()
	trip.Status = models.TripCompleted
	trip.End = &now
	trip.EndOdometer = &odometer
	if err := s.store.UpdateTrip(ctx, trip); err != nil {
		return nil, nil, fmt.Errorf("failed to end trip: %w", err)
	}
	s.syncOdometer(ctx, riderID, tripID, odometer)

	summary := calc.SummarizeTrip(*trip, now)
	log.WithFields(log.Fields{
		"rider_id": riderID,
		"trip_id":  tripID,
		"days":     summary.DurationDays,
		"distance": summary.DistanceTraveled,
		"expenses": summary.TotalExpenses,
	}).Info("Trip completed")
	return trip, &summary, nil
}

// AddTripExpense adds a wallet line to the active trip.
func (s *Service) AddTripExpense(ctx context.Context, riderID, tripID, item string, cost float64) (*models.Trip, error) {
	expense := models.NewTripExpense(item, cost)
	if err := models.Validate(expense); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	trip, err := s.activeTrip(ctx, riderID, tripID)
	if err != nil {
		return nil, err
	}
	trip.Expenses = append(trip.Expenses, expense)
	if err := s.store.UpdateTrip(ctx, trip); err != nil {
		return nil, fmt.Errorf("failed to add expense: %w", err)
	}
	return trip, nil
}

// TripSummary measures any of the rider's trips. Trips still running are
// measured up to now.
func (s *Service) TripSummary(ctx context.Context, riderID, tripID string) (*calc.TripSummary, error) {
	trip, err := s.store.FindTrip(ctx, riderID, tripID)
	if err != nil {
		return nil, err
	}
	summary := calc.SummarizeTrip(*trip, s.clock.Now())
	return &summary, nil
}

func (s *Service) activeTrip(ctx context.Context, riderID, tripID string) (*models.Trip, error) {
	trip, err := s.store.FindTrip(ctx, riderID, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status != models.TripActive {
		return nil, ErrTripNotActive
	}
	return trip, nil
}

// syncOdometer stores an odometer sync log when the reading is ahead of
// everything recorded so far, so distance ridden on a trip counts toward
// the reminders. The trip is already saved, so failures are logged and not
// returned.
func (s *Service) syncOdometer(ctx context.Context, riderID, tripID string, odometer float64) {
	fields := log.Fields{
		"rider_id": riderID,
		"trip_id":  tripID,
		"odometer": odometer,
	}
	logs, err := s.store.FuelLogs(ctx, riderID)
	if err != nil {
		log.WithError(err).WithFields(fields).Warn("Failed to load fuel logs for odometer sync")
		return
	}
	services, err := s.store.ServiceRecords(ctx, riderID)
	if err != nil {
		log.WithError(err).WithFields(fields).Warn("Failed to load service records for odometer sync")
		return
	}
	if odometer <= calc.LastOdometer(logs, services) {
		return
	}
	sync := models.NewOdometerSync(riderID, odometer, s.clock.Now())
	if err := s.store.InsertFuelLog(ctx, &sync); err != nil {
		log.WithError(err).WithFields(fields).Warn("Failed to save odometer sync")
	}
}
