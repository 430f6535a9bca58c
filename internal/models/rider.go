package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rider represents an account owning one bike and its records.
type Rider struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	DisplayName  string             `bson:"display_name" json:"display_name"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Bike         Bike               `bson:"bike" json:"bike"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	LastLogin    *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents a rider registration request
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Bike        Bike   `json:"bike"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	Rider        Rider  `json:"rider"`
}

// Claims represents JWT claims
type Claims struct {
	RiderID string `json:"rider_id"`
	Email   string `json:"email"`
	Exp     int64  `json:"exp"`
}
