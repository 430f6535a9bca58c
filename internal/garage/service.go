package garage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ridelog/ridelog/internal/advisor"
	"github.com/ridelog/ridelog/internal/calc"
	"github.com/ridelog/ridelog/internal/db"
	"github.com/ridelog/ridelog/internal/models"
	log "github.com/sirupsen/logrus"
	"github.com/zoobzio/clockz"
)

var (
	ErrInvalidRecord     = errors.New("invalid record")
	ErrInvalidOdometer   = errors.New("invalid odometer reading")
	ErrTripAlreadyActive = errors.New("another trip is already active")
	ErrTripNotActive     = errors.New("trip is not active")
	ErrTripNotPlanned    = errors.New("trip is not planned")
)

// DefaultReportMonths is the report window used when none is requested.
const DefaultReportMonths = 6

// Service loads a rider's records and runs the calculations over them.
// It also keeps the active trip's wallet in step with new fuel and service
// entries.
type Service struct {
	store   db.RecordStore
	advisor advisor.TripAdvisor
	clock   clockz.Clock
}

// NewService creates a garage service
func NewService(store db.RecordStore, tripAdvisor advisor.TripAdvisor, clock clockz.Clock) *Service {
	if clock == nil {
		clock = clockz.RealClock
	}
	return &Service{store: store, advisor: tripAdvisor, clock: clock}
}

// Dashboard is the read-only snapshot rendered on the home screen.
type Dashboard struct {
	Bike        models.Bike          `json:"bike"`
	Stats       calc.Stats           `json:"stats"`
	Reminders   []calc.Reminder      `json:"reminders"`
	NextService calc.NextServiceInfo `json:"next_service"`
	ActiveTrip  *models.Trip         `json:"active_trip"`
}

// Report holds the chart series.
type Report struct {
	Months       int                 `json:"months"`
	MonthlyCosts []calc.MonthlyCost  `json:"monthly_costs"`
	MileageTrend []calc.MileagePoint `json:"mileage_trend"`
}

// history is everything the calculations need for one rider.
type history struct {
	logs     []models.FuelLog
	services []models.ServiceRecord
	manual   []models.ManualReminder
	bike     models.Bike
}

func (s *Service) load(ctx context.Context, riderID string) (*history, error) {
	logs, err := s.store.FuelLogs(ctx, riderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load fuel logs: %w", err)
	}
	services, err := s.store.ServiceRecords(ctx, riderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load service records: %w", err)
	}
	manual, err := s.store.ManualReminders(ctx, riderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reminders: %w", err)
	}
	h := &history{logs: logs, services: services, manual: manual}

	bike, err := s.store.Bike(ctx, riderID)
	switch {
	case err == nil:
		h.bike = *bike
	case errors.Is(err, db.ErrNotFound):
		// no bike yet, cost ratings fall back to the default class
	default:
		return nil, fmt.Errorf("failed to load bike: %w", err)
	}
	return h, nil
}

func (h *history) stats() calc.Stats {
	return calc.CalculateStats(h.logs, h.services, h.bike.EngineCC)
}

// reminders lists open reminders, most urgent first.
func (h *history) reminders(stats calc.Stats, today time.Time) []calc.Reminder {
	return calc.ByUrgency(calc.ActiveReminders(h.services, h.manual, stats.LastOdometer, stats.DailyAvgKm, today))
}

// Dashboard builds the rider's snapshot.
func (s *Service) Dashboard(ctx context.Context, riderID string) (*Dashboard, error) {
	h, err := s.load(ctx, riderID)
	if err != nil {
		return nil, err
	}
	stats := h.stats()
	reminders := h.reminders(stats, s.clock.Now())

	dash := &Dashboard{
		Bike:        h.bike,
		Stats:       stats,
		Reminders:   reminders,
		NextService: calc.NextService(reminders, stats.LastServiceDate),
	}

	active, err := s.store.FindActiveTrip(ctx, riderID)
	switch {
	case err == nil:
		dash.ActiveTrip = active
	case !errors.Is(err, db.ErrNotFound):
		return nil, fmt.Errorf("failed to load active trip: %w", err)
	}
	return dash, nil
}

// Reminders returns the rider's open reminders, most urgent first.
func (s *Service) Reminders(ctx context.Context, riderID string) ([]calc.Reminder, error) {
	h, err := s.load(ctx, riderID)
	if err != nil {
		return nil, err
	}
	return h.reminders(h.stats(), s.clock.Now()), nil
}

// Report returns monthly spend for the last months and the mileage trend.
func (s *Service) Report(ctx context.Context, riderID string, months int) (*Report, error) {
	if months <= 0 {
		months = DefaultReportMonths
	}
	h, err := s.load(ctx, riderID)
	if err != nil {
		return nil, err
	}
	return &Report{
		Months:       months,
		MonthlyCosts: calc.MonthlyCosts(h.logs, h.services, s.clock.Now(), months),
		MileageTrend: calc.MileageTrend(h.logs),
	}, nil
}

// Advise asks the trip advisor about the rider's service intervals for a
// trip starting on start. The odometer, daily average and task list come
// from the rider's history.
func (s *Service) Advise(ctx context.Context, riderID, destination string, start time.Time, distance float64) (*advisor.Result, error) {
	h, err := s.load(ctx, riderID)
	if err != nil {
		return nil, err
	}
	stats := h.stats()
	req := advisor.NewRequest(destination, start, distance, stats.DailyAvgKm, stats.LastOdometer, advisor.TasksFromServices(h.services))

	log.WithFields(log.Fields{
		"rider_id":    riderID,
		"destination": destination,
		"distance":    distance,
		"tasks":       len(req.MaintenanceTasks),
	}).Debug("Requesting trip advisory")

	return s.advisor.Advise(ctx, req)
}
