package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ridelog/ridelog/internal/advisor"
	"github.com/ridelog/ridelog/internal/db"
	"github.com/ridelog/ridelog/internal/garage"
	"github.com/ridelog/ridelog/internal/middleware"
	log "github.com/sirupsen/logrus"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}

// readJSON decodes the request body into v, writing a 400 on failure.
func readJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

// riderID returns the authenticated rider, writing a 401 when missing.
func riderID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.GetRiderFromContext(r.Context())
	if !ok {
		http.Error(w, "Rider context not found", http.StatusUnauthorized)
		return "", false
	}
	return claims.RiderID, true
}

// writeError maps service errors to status codes. Anything unrecognised is
// logged and reported as a 500 naming the failed action.
func writeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, garage.ErrInvalidRecord),
		errors.Is(err, garage.ErrInvalidOdometer),
		errors.Is(err, advisor.ErrInvalidRequest),
		errors.Is(err, db.ErrInvalidID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, db.ErrNotFound):
		http.Error(w, "Record not found", http.StatusNotFound)
	case errors.Is(err, garage.ErrTripAlreadyActive),
		errors.Is(err, garage.ErrTripNotActive),
		errors.Is(err, garage.ErrTripNotPlanned),
		errors.Is(err, db.ErrDuplicate):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, advisor.ErrAdvisoryFailed):
		http.Error(w, "Trip advisory is unavailable right now, please try again", http.StatusBadGateway)
	default:
		log.WithError(err).WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("Failed to " + action)
		http.Error(w, "Failed to "+action, http.StatusInternalServerError)
	}
}
