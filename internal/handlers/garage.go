package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ridelog/ridelog/internal/advisor"
	"github.com/ridelog/ridelog/internal/metrics"
)

// maxReportMonths bounds the report window.
const maxReportMonths = 24

// AdvisoryRequest is the body of POST /api/advisory. The odometer, daily
// average and service tasks are filled in from the rider's history.
type AdvisoryRequest struct {
	Destination string  `json:"destination"`
	StartDate   string  `json:"start_date"`
	Distance    float64 `json:"distance"`
}

func (h *GarageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := riderID(w, r)
	if !ok {
		return
	}

	dashboard, err := h.garage.Dashboard(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "load dashboard")
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

// Reports returns the spend and mileage charts. The window is set with
// ?months=N and defaults to six months.
func (h *GarageHandler) Reports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := riderID(w, r)
	if !ok {
		return
	}

	months := 0
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxReportMonths {
			http.Error(w, "months must be between 1 and "+strconv.Itoa(maxReportMonths), http.StatusBadRequest)
			return
		}
		months = n
	}

	report, err := h.garage.Report(r.Context(), id, months)
	if err != nil {
		writeError(w, r, err, "build report")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Advisory checks the rider's service intervals against a planned trip.
func (h *GarageHandler) Advisory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := riderID(w, r)
	if !ok {
		return
	}

	var req AdvisoryRequest
	if !readJSON(w, r, &req) {
		return
	}
	req.Destination = strings.TrimSpace(req.Destination)
	start, err := time.Parse(advisor.DateLayout, req.StartDate)
	if err != nil {
		h.metrics.AdvisoryServed(metrics.AdvisoryInvalid)
		http.Error(w, "start_date must be formatted as "+advisor.DateLayout, http.StatusBadRequest)
		return
	}

	result, err := h.garage.Advise(r.Context(), id, req.Destination, start, req.Distance)
	if err != nil {
		switch {
		case errors.Is(err, advisor.ErrInvalidRequest):
			h.metrics.AdvisoryServed(metrics.AdvisoryInvalid)
		case errors.Is(err, advisor.ErrAdvisoryFailed):
			h.metrics.AdvisoryServed(metrics.AdvisoryFailed)
		}
		writeError(w, r, err, "build advisory")
		return
	}
	h.metrics.AdvisoryServed(metrics.AdvisoryOK)
	writeJSON(w, http.StatusOK, result)
}
