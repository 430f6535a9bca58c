package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ridelog/ridelog/internal/advisor"
	"github.com/ridelog/ridelog/internal/calc"
	"github.com/ridelog/ridelog/internal/garage"
	"github.com/ridelog/ridelog/internal/metrics"
	"github.com/ridelog/ridelog/internal/models"
)

// Garage is the rider-scoped record and calculation service behind the API.
// *garage.Service implements it.
type Garage interface {
	FuelLogs(ctx context.Context, riderID string) ([]models.FuelLog, error)
	AddFuelLog(ctx context.Context, riderID string, fuel *models.FuelLog) error
	DeleteFuelLog(ctx context.Context, riderID, id string) error

	ServiceRecords(ctx context.Context, riderID string) ([]models.ServiceRecord, error)
	AddServiceRecord(ctx context.Context, riderID string, record *models.ServiceRecord) error
	DeleteServiceRecord(ctx context.Context, riderID, id string) error

	Reminders(ctx context.Context, riderID string) ([]calc.Reminder, error)
	ManualReminders(ctx context.Context, riderID string) ([]models.ManualReminder, error)
	AddManualReminder(ctx context.Context, riderID string, reminder *models.ManualReminder) error
	CompleteManualReminder(ctx context.Context, riderID, id string) error
	DeleteManualReminder(ctx context.Context, riderID, id string) error

	Trips(ctx context.Context, riderID string) ([]models.Trip, error)
	PlanTrip(ctx context.Context, riderID string, trip *models.Trip) error
	StartTrip(ctx context.Context, riderID, tripID string, odometer float64) (*models.Trip, error)
	EndTrip(ctx context.Context, riderID, tripID string, odometer float64) (*models.Trip, *calc.TripSummary, error)
	AddTripExpense(ctx context.Context, riderID, tripID, item string, cost float64) (*models.Trip, error)
	TripSummary(ctx context.Context, riderID, tripID string) (*calc.TripSummary, error)

	Dashboard(ctx context.Context, riderID string) (*garage.Dashboard, error)
	Report(ctx context.Context, riderID string, months int) (*garage.Report, error)
	Advise(ctx context.Context, riderID, destination string, start time.Time, distance float64) (*advisor.Result, error)
}

// GarageHandler serves the rider's records, trips and derived views.
type GarageHandler struct {
	garage  Garage
	metrics *metrics.Metrics
}

// NewGarageHandler creates a garage handler. m may be nil.
func NewGarageHandler(g Garage, m *metrics.Metrics) *GarageHandler {
	return &GarageHandler{garage: g, metrics: m}
}

// ReminderList is the GET /api/reminders response: the projected reminders
// ordered by urgency, and the stored manual entries they came from.
type ReminderList struct {
	Reminders []calc.Reminder         `json:"reminders"`
	Manual    []models.ManualReminder `json:"manual"`
}

// Fuel lists fuel logs on GET and records a fill on POST.
func (h *GarageHandler) Fuel(w http.ResponseWriter, r *http.Request) {
	id, ok := riderID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		logs, err := h.garage.FuelLogs(r.Context(), id)
		if err != nil {
			writeError(w, r, err, "list fuel logs")
			return
		}
		writeJSON(w, http.StatusOK, nonNil(logs))
	case http.MethodPost:
		var fuel models.FuelLog
		if !readJSON(w, r, &fuel) {
			return
		}
		if err := h.garage.AddFuelLog(r.Context(), id, &fuel); err != nil {
			writeError(w, r, err, "save fuel log")
			return
		}
		writeJSON(w, http.StatusCreated, fuel)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *GarageHandler) DeleteFuel(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, h.garage.DeleteFuelLog, "delete fuel log")
}

// Services lists service records on GET and records a service on POST.
func (h *GarageHandler) Services(w http.ResponseWriter, r *http.Request) {
	id, ok := riderID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		records, err := h.garage.ServiceRecords(r.Context(), id)
		if err != nil {
			writeError(w, r, err, "list service records")
			return
		}
		writeJSON(w, http.StatusOK, nonNil(records))
	case http.MethodPost:
		var record models.ServiceRecord
		if !readJSON(w, r, &record) {
			return
		}
		if err := h.garage.AddServiceRecord(r.Context(), id, &record); err != nil {
			writeError(w, r, err, "save service record")
			return
		}
		writeJSON(w, http.StatusCreated, record)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *GarageHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, h.garage.DeleteServiceRecord, "delete service record")
}

// Reminders returns the projected reminders on GET and adds a manual
// reminder on POST.
func (h *GarageHandler) Reminders(w http.ResponseWriter, r *http.Request) {
	id, ok := riderID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		reminders, err := h.garage.Reminders(r.Context(), id)
		if err != nil {
			writeError(w, r, err, "compute reminders")
			return
		}
		manual, err := h.garage.ManualReminders(r.Context(), id)
		if err != nil {
			writeError(w, r, err, "list reminders")
			return
		}
		writeJSON(w, http.StatusOK, ReminderList{Reminders: nonNil(reminders), Manual: nonNil(manual)})
	case http.MethodPost:
		var reminder models.ManualReminder
		if !readJSON(w, r, &reminder) {
			return
		}
		if err := h.garage.AddManualReminder(r.Context(), id, &reminder); err != nil {
			writeError(w, r, err, "save reminder")
			return
		}
		writeJSON(w, http.StatusCreated, reminder)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *GarageHandler) CompleteReminder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := riderID(w, r)
	if !ok {
		return
	}
	if err := h.garage.CompleteManualReminder(r.Context(), id, r.PathValue("id")); err != nil {
		writeError(w, r, err, "complete reminder")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GarageHandler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, h.garage.DeleteManualReminder, "delete reminder")
}

func (h *GarageHandler) deleteRecord(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, riderID, id string) error, action string) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := riderID(w, r)
	if !ok {
		return
	}
	if err := del(r.Context(), id, r.PathValue("id")); err != nil {
		writeError(w, r, err, action)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
