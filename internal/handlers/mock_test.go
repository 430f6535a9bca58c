package handlers

import (
	"context"
	"time"

	"github.com/ridelog/ridelog/internal/advisor"
	"github.com/ridelog/ridelog/internal/calc"
	"github.com/ridelog/ridelog/internal/garage"
	"github.com/ridelog/ridelog/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockGarage is a mock implementation of Garage
type MockGarage struct {
	mock.Mock
}

func (m *MockGarage) FuelLogs(ctx context.Context, riderID string) ([]models.FuelLog, error) {
	args := m.Called(ctx, riderID)
	logs, _ := args.Get(0).([]models.FuelLog)
	return logs, args.Error(1)
}

func (m *MockGarage) AddFuelLog(ctx context.Context, riderID string, fuel *models.FuelLog) error {
	return m.Called(ctx, riderID, fuel).Error(0)
}

func (m *MockGarage) DeleteFuelLog(ctx context.Context, riderID, id string) error {
	return m.Called(ctx, riderID, id).Error(0)
}

func (m *MockGarage) ServiceRecords(ctx context.Context, riderID string) ([]models.ServiceRecord, error) {
	args := m.Called(ctx, riderID)
	records, _ := args.Get(0).([]models.ServiceRecord)
	return records, args.Error(1)
}

func (m *MockGarage) AddServiceRecord(ctx context.Context, riderID string, record *models.ServiceRecord) error {
	return m.Called(ctx, riderID, record).Error(0)
}

func (m *MockGarage) DeleteServiceRecord(ctx context.Context, riderID, id string) error {
	return m.Called(ctx, riderID, id).Error(0)
}

func (m *MockGarage) Reminders(ctx context.Context, riderID string) ([]calc.Reminder, error) {
	args := m.Called(ctx, riderID)
	reminders, _ := args.Get(0).([]calc.Reminder)
	return reminders, args.Error(1)
}

func (m *MockGarage) ManualReminders(ctx context.Context, riderID string) ([]models.ManualReminder, error) {
	args := m.Called(ctx, riderID)
	reminders, _ := args.Get(0).([]models.ManualReminder)
	return reminders, args.Error(1)
}

func (m *MockGarage) AddManualReminder(ctx context.Context, riderID string, reminder *models.ManualReminder) error {
	return m.Called(ctx, riderID, reminder).Error(0)
}

func (m *MockGarage) CompleteManualReminder(ctx context.Context, riderID, id string) error {
	return m.Called(ctx, riderID, id).Error(0)
}

func (m *MockGarage) DeleteManualReminder(ctx context.Context, riderID, id string) error {
	return m.Called(ctx, riderID, id).Error(0)
}

func (m *MockGarage) Trips(ctx context.Context, riderID string) ([]models.Trip, error) {
	args := m.Called(ctx, riderID)
	trips, _ := args.Get(0).([]models.Trip)
	return trips, args.Error(1)
}

func (m *MockGarage) PlanTrip(ctx context.Context, riderID string, trip *models.Trip) error {
	return m.Called(ctx, riderID, trip).Error(0)
}

func (m *MockGarage) StartTrip(ctx context.Context, riderID, tripID string, odometer float64) (*models.Trip, error) {
	args := m.Called(ctx, riderID, tripID, odometer)
	trip, _ := args.Get(0).(*models.Trip)
	return trip, args.Error(1)
}

func (m *MockGarage) EndTrip(ctx context.Context, riderID, tripID string, odometer float64) (*models.Trip, *calc.TripSummary, error) {
	args := m.Called(ctx, riderID, tripID, odometer)
	trip, _ := args.Get(0).(*models.Trip)
	summary, _ := args.Get(1).(*calc.TripSummary)
	return trip, summary, args.Error(2)
}

func (m *MockGarage) AddTripExpense(ctx context.Context, riderID, tripID, item string, cost float64) (*models.Trip, error) {
	args := m.Called(ctx, riderID, tripID, item, cost)
	trip, _ := args.Get(0).(*models.Trip)
	return trip, args.Error(1)
}

func (m *MockGarage) TripSummary(ctx context.Context, riderID, tripID string) (*calc.TripSummary, error) {
	args := m.Called(ctx, riderID, tripID)
	summary, _ := args.Get(0).(*calc.TripSummary)
	return summary, args.Error(1)
}

func (m *MockGarage) Dashboard(ctx context.Context, riderID string) (*garage.Dashboard, error) {
	args := m.Called(ctx, riderID)
	dashboard, _ := args.Get(0).(*garage.Dashboard)
	return dashboard, args.Error(1)
}

func (m *MockGarage) Report(ctx context.Context, riderID string, months int) (*garage.Report, error) {
	args := m.Called(ctx, riderID, months)
	report, _ := args.Get(0).(*garage.Report)
	return report, args.Error(1)
}

func (m *MockGarage) Advise(ctx context.Context, riderID, destination string, start time.Time, distance float64) (*advisor.Result, error) {
	args := m.Called(ctx, riderID, destination, start, distance)
	result, _ := args.Get(0).(*advisor.Result)
	return result, args.Error(1)
}

var _ Garage = (*garage.Service)(nil)
