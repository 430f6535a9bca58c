package handlers

import (
	"net/http"

	"github.com/ridelog/ridelog/internal/calc"
	"github.com/ridelog/ridelog/internal/models"
)

type odometerRequest struct {
	Odometer float64 `json:"odometer"`
}

type expenseRequest struct {
	Item string  `json:"item"`
	Cost float64 `json:"cost"`
}

// TripEnded is the response of ending a trip.
type TripEnded struct {
	Trip    *models.Trip      `json:"trip"`
	Summary *calc.TripSummary `json:"summary"`
}

// Trips lists trips on GET and plans a new one on POST.
func (h *GarageHandler) Trips(w http.ResponseWriter, r *http.Request) {
	id, ok := riderID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		trips, err := h.garage.Trips(r.Context(), id)
		if err != nil {
			writeError(w, r, err, "list trips")
			return
		}
		writeJSON(w, http.StatusOK, nonNil(trips))
	case http.MethodPost:
		var trip models.Trip
		if !readJSON(w, r, &trip) {
			return
		}
		if err := h.garage.PlanTrip(r.Context(), id, &trip); err != nil {
			writeError(w, r, err, "plan trip")
			return
		}
		writeJSON(w, http.StatusCreated, trip)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// StartTrip sets a planned trip off at the given odometer reading.
func (h *GarageHandler) StartTrip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := riderID(w, r)
	if !ok {
		return
	}
	var req odometerRequest
	if !readJSON(w, r, &req) {
		return
	}

	trip, err := h.garage.StartTrip(r.Context(), id, r.PathValue("id"), req.Odometer)
	if err != nil {
		writeError(w, r, err, "start trip")
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// EndTrip completes the active trip and returns its summary.
func (h *GarageHandler) EndTrip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := riderID(w, r)
	if !ok {
		return
	}
	var req odometerRequest
	if !readJSON(w, r, &req) {
		return
	}

	trip, summary, err := h.garage.EndTrip(r.Context(), id, r.PathValue("id"), req.Odometer)
	if err != nil {
		writeError(w, r, err, "end trip")
		return
	}
	writeJSON(w, http.StatusOK, TripEnded{Trip: trip, Summary: summary})
}

func (h *GarageHandler) AddTripExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := riderID(w, r)
	if !ok {
		return
	}
	var req expenseRequest
	if !readJSON(w, r, &req) {
		return
	}

	trip, err := h.garage.AddTripExpense(r.Context(), id, r.PathValue("id"), req.Item, req.Cost)
	if err != nil {
		writeError(w, r, err, "add trip expense")
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

func (h *GarageHandler) TripSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := riderID(w, r)
	if !ok {
		return
	}

	summary, err := h.garage.TripSummary(r.Context(), id, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "summarize trip")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
