package garage

import (
	"context"
	"fmt"
	"testing"

	"github.com/ridelog/ridelog/internal/db"
	"github.com/ridelog/ridelog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func ptrFloat(f float64) *float64 { return &f }

func plannedTrip(clock clockz.Clock) *models.Trip {
	return &models.Trip{
		ID:                primitive.NewObjectID(),
		RiderID:           rider,
		Destination:       "Mustang",
		Start:             shiftDays(clock.Now(), 3),
		EstimatedDistance: 500,
		Status:            models.TripPlanned,
		Expenses:          []models.TripExpense{},
	}
}

func syncLog(odometer float64) interface{} {
	return mock.MatchedBy(func(l *models.FuelLog) bool {
		return l.Odometer == odometer && !l.IsRealFill() && l.RiderID == rider
	})
}

func TestService_PlanTrip(t *testing.T) {
	clock := clockz.NewFakeClock()
	store := new(mockStore)
	store.On("InsertTrip", mock.Anything, mock.AnythingOfType("*models.Trip")).Return(nil)

	trip := &models.Trip{
		Destination:       "Pokhara",
		Start:             shiftDays(clock.Now(), 10),
		EstimatedDistance: 200,
		Status:            models.TripCompleted,
		StartOdometer:     ptrFloat(100),
	}
	err := NewService(store, nil, clock).PlanTrip(context.Background(), rider, trip)

	require.NoError(t, err)
	assert.Equal(t, models.TripPlanned, trip.Status)
	assert.Equal(t, rider, trip.RiderID)
	assert.Nil(t, trip.StartOdometer)
}

func TestService_PlanTrip_Invalid(t *testing.T) {
	clock := clockz.NewFakeClock()
	store := new(mockStore)

	err := NewService(store, nil, clock).PlanTrip(context.Background(), rider, &models.Trip{Start: clock.Now()})

	assert.ErrorIs(t, err, ErrInvalidRecord)
	store.AssertNotCalled(t, "InsertTrip", mock.Anything, mock.Anything)
}

func TestService_StartTrip(t *testing.T) {
	clock := clockz.NewFakeClock()
	logs, services := riderHistory(clock.Now())

	tests := []struct {
		name     string
		odometer float64
		wantSync bool
	}{
		{"ahead of history adds a sync log", 1500, true},
		{"behind history adds nothing", 1200, false},
		{"equal to history adds nothing", 1300, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mockStore)
			trip := plannedTrip(clock)
			store.On("FindTrip", mock.Anything, rider, trip.ID.Hex()).Return(trip, nil)
			store.On("FindActiveTrip", mock.Anything, rider).Return(nil, db.ErrNotFound)
			store.On("UpdateTrip", mock.Anything, trip).Return(nil)
			store.On("FuelLogs", mock.Anything, rider).Return(logs, nil)
			store.On("ServiceRecords", mock.Anything, rider).Return(services, nil)
			if tt.wantSync {
				store.On("InsertFuelLog", mock.Anything, syncLog(tt.odometer)).Return(nil)
			}

			started, err := NewService(store, nil, clock).StartTrip(context.Background(), rider, trip.ID.Hex(), tt.odometer)

			require.NoError(t, err)
			assert.Equal(t, models.TripActive, started.Status)
			assert.Equal(t, clock.Now(), started.Start)
			require.NotNil(t, started.StartOdometer)
			assert.Equal(t, tt.odometer, *started.StartOdometer)
			if !tt.wantSync {
				store.AssertNotCalled(t, "InsertFuelLog", mock.Anything, mock.Anything)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestService_StartTrip_Rejected(t *testing.T) {
	clock := clockz.NewFakeClock()

	tests := []struct {
		name     string
		odometer float64
		setup    func(store *mockStore, trip *models.Trip)
		wantErr  error
	}{
		{
			name:     "negative odometer",
			odometer: -1,
			setup:    func(*mockStore, *models.Trip) {},
			wantErr:  ErrInvalidOdometer,
		},
		{
			name:     "unknown trip",
			odometer: 1500,
			setup: func(store *mockStore, trip *models.Trip) {
				store.On("FindTrip", mock.Anything, rider, trip.ID.Hex()).Return(nil, db.ErrNotFound)
			},
			wantErr: db.ErrNotFound,
		},
		{
			name:     "trip already running",
			odometer: 1500,
			setup: func(store *mockStore, trip *models.Trip) {
				trip.Status = models.TripActive
				store.On("FindTrip", mock.Anything, rider, trip.ID.Hex()).Return(trip, nil)
			},
			wantErr: ErrTripNotPlanned,
		},
		{
			name:     "another trip active",
			odometer: 1500,
			setup: func(store *mockStore, trip *models.Trip) {
				store.On("FindTrip", mock.Anything, rider, trip.ID.Hex()).Return(trip, nil)
				store.On("FindActiveTrip", mock.Anything, rider).Return(&models.Trip{Status: models.TripActive}, nil)
			},
			wantErr: ErrTripAlreadyActive,
		},
		{
			name:     "another trip started concurrently",
			odometer: 1500,
			setup: func(store *mockStore, trip *models.Trip) {
				store.On("FindTrip", mock.Anything, rider, trip.ID.Hex()).Return(trip, nil)
				store.On("FindActiveTrip", mock.Anything, rider).Return(nil, db.ErrNotFound)
				store.On("UpdateTrip", mock.Anything, trip).Return(fmt.Errorf("%w: E11000", db.ErrDuplicate))
			},
			wantErr: ErrTripAlreadyActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mockStore)
			trip := plannedTrip(clock)
			tt.setup(store, trip)

			started, err := NewService(store, nil, clock).StartTrip(context.Background(), rider, trip.ID.Hex(), tt.odometer)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, started)
			store.AssertNotCalled(t, "InsertFuelLog", mock.Anything, mock.Anything)
		})
	}
}

func activeTrip(clock clockz.Clock) *models.Trip {
	trip := plannedTrip(clock)
	trip.Status = models.TripActive
	trip.Start = shiftDays(clock.Now(), -3)
	trip.StartOdometer = ptrFloat(1300)
	trip.Expenses = []models.TripExpense{
		models.NewTripExpense("Fuel (5L)", 900),
		models.NewTripExpense("Permit", 3000),
	}
	return trip
}

func TestService_EndTrip(t *testing.T) {
	clock := clockz.NewFakeClock()
	logs, services := riderHistory(clock.Now())
	store := new(mockStore)
	trip := activeTrip(clock)
	store.On("FindTrip", mock.Anything, rider, trip.ID.Hex()).Return(trip, nil)
	store.On("UpdateTrip", mock.Anything, trip).Return(nil)
	store.On("FuelLogs", mock.Anything, rider).Return(logs, nil)
	store.On("ServiceRecords", mock.Anything, rider).Return(services, nil)
	store.On("InsertFuelLog", mock.Anything, syncLog(1820)).Return(nil)

	ended, summary, err := NewService(store, nil, clock).EndTrip(context.Background(), rider, trip.ID.Hex(), 1820)

	require.NoError(t, err)
	assert.Equal(t, models.TripCompleted, ended.Status)
	require.NotNil(t, ended.End)
	assert.Equal(t, clock.Now(), *ended.End)
	assert.Equal(t, 1820.0, *ended.EndOdometer)
	assert.Equal(t, 3, summary.DurationDays)
	assert.Equal(t, 520.0, summary.DistanceTraveled)
	assert.Equal(t, 3900.0, summary.TotalExpenses)
	store.AssertExpectations(t)
}

func TestService_EndTrip_Rejected(t *testing.T) {
	clock := clockz.NewFakeClock()

	t.Run("not active", func(t *testing.T) {
		store := new(mockStore)
		trip := plannedTrip(clock)
		store.On("FindTrip", mock.Anything, rider, trip.ID.Hex()).Return(trip, nil)

		_, _, err := NewService(store, nil, clock).EndTrip(context.Background(), rider, trip.ID.Hex(), 1500)

		assert.ErrorIs(t, err, ErrTripNotActive)
		store.AssertNotCalled(t, "UpdateTrip", mock.Anything, mock.Anything)
	})

	t.Run("odometer below start", func(t *testing.T) {
		store := new(mockStore)
		trip := activeTrip(clock)
		store.On("FindTrip", mock.Anything, rider, trip.ID.Hex()).Return(trip, nil)

		_, _, err := NewService(store, nil, clock).EndTrip(context.Background(), rider, trip.ID.Hex(), 1299)

		assert.ErrorIs(t, err, ErrInvalidOdometer)
		assert.Equal(t, models.TripActive, trip.Status)
		store.AssertNotCalled(t, "UpdateTrip", mock.Anything, mock.Anything)
	})
}

func TestService_StartTrip_SyncFailureKeepsTrip(t *testing.T) {
	clock := clockz.NewFakeClock()
	logs, services := riderHistory(clock.Now())

	tests := []struct {
		name  string
		setup func(store *mockStore)
	}{
		{
			name: "fuel logs unavailable",
			setup: func(store *mockStore) {
				store.On("FuelLogs", mock.Anything, rider).Return(nil, fmt.Errorf("mongo down"))
			},
		},
		{
			name: "service records unavailable",
			setup: func(store *mockStore) {
				store.On("FuelLogs", mock.Anything, rider).Return(logs, nil)
				store.On("ServiceRecords", mock.Anything, rider).Return(nil, fmt.Errorf("mongo down"))
			},
		},
		{
			name: "sync log not saved",
			setup: func(store *mockStore) {
				store.On("FuelLogs", mock.Anything, rider).Return(logs, nil)
				store.On("ServiceRecords", mock.Anything, rider).Return(services, nil)
				store.On("InsertFuelLog", mock.Anything, syncLog(1500)).Return(fmt.Errorf("mongo down"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mockStore)
			trip := plannedTrip(clock)
			store.On("FindTrip", mock.Anything, rider, trip.ID.Hex()).Return(trip, nil)
			store.On("FindActiveTrip", mock.Anything, rider).Return(nil, db.ErrNotFound)
			store.On("UpdateTrip", mock.Anything, trip).Return(nil)
			tt.setup(store)

			started, err := NewService(store, nil, clock).StartTrip(context.Background(), rider, trip.ID.Hex(), 1500)

			require.NoError(t, err)
			assert.Equal(t, models.TripActive, started.Status)
			store.AssertExpectations(t)
		})
	}
}

func TestService_EndTrip_SyncFailureKeepsTrip(t *testing.T) {
	clock := clockz.NewFakeClock()
	store := new(mockStore)
	trip := activeTrip(clock)
	store.On("FindTrip", mock.Anything, rider, trip.ID.Hex()).Return(trip, nil)
	store.On("UpdateTrip", mock.Anything, trip).Return(nil)
	store.On("FuelLogs", mock.Anything, rider).Return(nil, fmt.Errorf("mongo down"))

	ended, summary, err := NewService(store, nil, clock).EndTrip(context.Background(), rider, trip.ID.Hex(), 1820)

	require.NoError(t, err)
	assert.Equal(t, models.TripCompleted, ended.Status)
	assert.Equal(t, 520.0, summary.DistanceTraveled)
	store.AssertNotCalled(t, "InsertFuelLog", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestService_AddTripExpense(t *testing.T) {
	clock := clockz.NewFakeClock()

	t.Run("appends to the active trip", func(t *testing.T) {
		store := new(mockStore)
		trip := activeTrip(clock)
		store.On("FindTrip", mock.Anything, rider, trip.ID.Hex()).Return(trip, nil)
		store.On("UpdateTrip", mock.Anything, expenseMatcher("Homestay", 1500)).Return(nil)

		updated, err := NewService(store, nil, clock).AddTripExpense(context.Background(), rider, trip.ID.Hex(), "Homestay", 1500)

		require.NoError(t, err)
		assert.Len(t, updated.Expenses, 3)
		assert.NotEqual(t, updated.Expenses[1].ID, updated.Expenses[2].ID)
		store.AssertExpectations(t)
	})

	t.Run("completed trip", func(t *testing.T) {
		store := new(mockStore)
		trip := activeTrip(clock)
		trip.Status = models.TripCompleted
		store.On("FindTrip", mock.Anything, rider, trip.ID.Hex()).Return(trip, nil)

		_, err := NewService(store, nil, clock).AddTripExpense(context.Background(), rider, trip.ID.Hex(), "Homestay", 1500)

		assert.ErrorIs(t, err, ErrTripNotActive)
	})

	t.Run("invalid expense", func(t *testing.T) {
		store := new(mockStore)

		_, err := NewService(store, nil, clock).AddTripExpense(context.Background(), rider, primitive.NewObjectID().Hex(), "", -5)

		assert.ErrorIs(t, err, ErrInvalidRecord)
		store.AssertNotCalled(t, "FindTrip", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_TripSummary_RunningTrip(t *testing.T) {
	clock := clockz.NewFakeClock()
	store := new(mockStore)
	trip := activeTrip(clock)
	store.On("FindTrip", mock.Anything, rider, trip.ID.Hex()).Return(trip, nil)

	summary, err := NewService(store, nil, clock).TripSummary(context.Background(), rider, trip.ID.Hex())

	require.NoError(t, err)
	assert.Equal(t, 3, summary.DurationDays)
	assert.Zero(t, summary.DistanceTraveled)
	assert.Equal(t, 3900.0, summary.TotalExpenses)
}

func TestService_TripSummary_PlannedTrip(t *testing.T) {
	clock := clockz.NewFakeClock()
	store := new(mockStore)
	trip := plannedTrip(clock)
	store.On("FindTrip", mock.Anything, rider, trip.ID.Hex()).Return(trip, nil)

	summary, err := NewService(store, nil, clock).TripSummary(context.Background(), rider, trip.ID.Hex())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.DurationDays)
	assert.Zero(t, summary.DistanceTraveled)
}

func TestService_Trips(t *testing.T) {
	store := new(mockStore)
	store.On("Trips", mock.Anything, rider).Return([]models.Trip{{Destination: "Mustang"}}, nil)

	trips, err := NewService(store, nil, clockz.NewFakeClock()).Trips(context.Background(), rider)

	require.NoError(t, err)
	assert.Len(t, trips, 1)
}
