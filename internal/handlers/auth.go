package handlers

import (
	"errors"
	"net/http"

	"github.com/ridelog/ridelog/internal/auth"
	"github.com/ridelog/ridelog/internal/db"
	"github.com/ridelog/ridelog/internal/models"
	log "github.com/sirupsen/logrus"
)

// AuthHandler handles rider accounts and authentication.
type AuthHandler struct {
	authService *auth.Service
	riders      db.RiderCollection
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, riders db.RiderCollection) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		riders:      riders,
	}
}

// Login handles rider login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var loginReq models.LoginRequest
	if !readJSON(w, r, &loginReq) {
		return
	}
	if loginReq.Email == "" || loginReq.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	rider, err := h.riders.FindRiderByEmail(r.Context(), loginReq.Email)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.WithError(err).Error("Failed to look up rider")
		}
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if !rider.IsActive {
		http.Error(w, "Account is deactivated", http.StatusUnauthorized)
		return
	}
	if !h.authService.CheckPassword(loginReq.Password, rider.PasswordHash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := h.riders.UpdateLastLogin(r.Context(), rider.ID.Hex()); err != nil {
		log.WithError(err).WithField("rider_id", rider.ID.Hex()).Warn("Failed to update last login")
	}
	h.respondWithTokens(w, http.StatusOK, rider)
}

// Register creates a rider account together with its bike.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var registerReq models.RegisterRequest
	if !readJSON(w, r, &registerReq) {
		return
	}

	if err := h.authService.ValidateEmail(registerReq.Email); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.authService.ValidatePassword(registerReq.Password); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.authService.ValidateDisplayName(registerReq.DisplayName); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := models.Validate(registerReq.Bike); err != nil {
		http.Error(w, "Invalid bike: "+err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := h.riders.FindRiderByEmail(r.Context(), registerReq.Email); err == nil {
		http.Error(w, "Email already exists", http.StatusConflict)
		return
	}

	passwordHash, err := h.authService.HashPassword(registerReq.Password)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	rider := &models.Rider{
		Email:        registerReq.Email,
		DisplayName:  registerReq.DisplayName,
		PasswordHash: passwordHash,
		Bike:         registerReq.Bike,
	}
	if err := h.riders.InsertRider(r.Context(), rider); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			http.Error(w, "Email already exists", http.StatusConflict)
			return
		}
		log.WithError(err).Error("Failed to create rider")
		http.Error(w, "Failed to create rider", http.StatusInternalServerError)
		return
	}

	log.WithField("rider_id", rider.ID.Hex()).Info("Rider registered")
	h.respondWithTokens(w, http.StatusCreated, rider)
}

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, status int, rider *models.Rider) {
	token, err := h.authService.GenerateToken(rider)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		http.Error(w, "Failed to generate refresh token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, models.LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		Rider:        *rider,
	})
}

// GetProfile returns the current rider's account
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := riderID(w, r)
	if !ok {
		return
	}

	rider, err := h.riders.FindRiderByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Rider not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rider)
}

// UpdateBike replaces the bike details of the current rider.
func (h *AuthHandler) UpdateBike(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := riderID(w, r)
	if !ok {
		return
	}

	var bike models.Bike
	if !readJSON(w, r, &bike) {
		return
	}
	if err := models.Validate(bike); err != nil {
		http.Error(w, "Invalid bike: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.riders.UpdateBike(r.Context(), id, bike); err != nil {
		writeError(w, r, err, "update bike")
		return
	}
	writeJSON(w, http.StatusOK, bike)
}
