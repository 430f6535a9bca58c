package garage

import (
	"context"

	"github.com/ridelog/ridelog/internal/advisor"
	"github.com/ridelog/ridelog/internal/models"
	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) FuelLogs(ctx context.Context, riderID string) ([]models.FuelLog, error) {
	args := m.Called(ctx, riderID)
	logs, _ := args.Get(0).([]models.FuelLog)
	return logs, args.Error(1)
}

func (m *mockStore) ServiceRecords(ctx context.Context, riderID string) ([]models.ServiceRecord, error) {
	args := m.Called(ctx, riderID)
	records, _ := args.Get(0).([]models.ServiceRecord)
	return records, args.Error(1)
}

func (m *mockStore) Trips(ctx context.Context, riderID string) ([]models.Trip, error) {
	args := m.Called(ctx, riderID)
	trips, _ := args.Get(0).([]models.Trip)
	return trips, args.Error(1)
}

func (m *mockStore) ManualReminders(ctx context.Context, riderID string) ([]models.ManualReminder, error) {
	args := m.Called(ctx, riderID)
	reminders, _ := args.Get(0).([]models.ManualReminder)
	return reminders, args.Error(1)
}

func (m *mockStore) Bike(ctx context.Context, riderID string) (*models.Bike, error) {
	args := m.Called(ctx, riderID)
	bike, _ := args.Get(0).(*models.Bike)
	return bike, args.Error(1)
}

func (m *mockStore) InsertFuelLog(ctx context.Context, log *models.FuelLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *mockStore) DeleteFuelLog(ctx context.Context, riderID, id string) error {
	return m.Called(ctx, riderID, id).Error(0)
}

func (m *mockStore) InsertServiceRecord(ctx context.Context, record *models.ServiceRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *mockStore) DeleteServiceRecord(ctx context.Context, riderID, id string) error {
	return m.Called(ctx, riderID, id).Error(0)
}

func (m *mockStore) InsertManualReminder(ctx context.Context, reminder *models.ManualReminder) error {
	return m.Called(ctx, reminder).Error(0)
}

func (m *mockStore) CompleteManualReminder(ctx context.Context, riderID, id string) error {
	return m.Called(ctx, riderID, id).Error(0)
}

func (m *mockStore) DeleteManualReminder(ctx context.Context, riderID, id string) error {
	return m.Called(ctx, riderID, id).Error(0)
}

func (m *mockStore) InsertTrip(ctx context.Context, trip *models.Trip) error {
	return m.Called(ctx, trip).Error(0)
}

func (m *mockStore) FindTrip(ctx context.Context, riderID, id string) (*models.Trip, error) {
	args := m.Called(ctx, riderID, id)
	trip, _ := args.Get(0).(*models.Trip)
	return trip, args.Error(1)
}

func (m *mockStore) FindActiveTrip(ctx context.Context, riderID string) (*models.Trip, error) {
	args := m.Called(ctx, riderID)
	trip, _ := args.Get(0).(*models.Trip)
	return trip, args.Error(1)
}

func (m *mockStore) UpdateTrip(ctx context.Context, trip *models.Trip) error {
	return m.Called(ctx, trip).Error(0)
}

type mockAdvisor struct {
	mock.Mock
}

func (m *mockAdvisor) Advise(ctx context.Context, req advisor.Request) (*advisor.Result, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*advisor.Result)
	return result, args.Error(1)
}
