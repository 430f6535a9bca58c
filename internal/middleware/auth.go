package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ridelog/ridelog/internal/auth"
	"github.com/ridelog/ridelog/internal/models"
	log "github.com/sirupsen/logrus"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	RiderContextKey contextKey = "rider"
)

// publicPaths are served without a token.
var publicPaths = []string{
	"/api/auth/login",
	"/api/auth/register",
	"/health",
	"/metrics",
}

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authService *auth.Service
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Authenticate validates the bearer token and stores the rider's claims in
// the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		token, err := m.authService.ExtractTokenFromHeader(authHeader)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		claims, err := m.authService.ValidateToken(token)
		if err != nil {
			log.WithFields(log.Fields{
				"path":  r.URL.Path,
				"error": err,
			}).Debug("Rejected token")
			if errors.Is(err, auth.ErrExpiredToken) {
				http.Error(w, "Token expired", http.StatusUnauthorized)
				return
			}
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), RiderContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRiderFromContext extracts rider claims from request context
func GetRiderFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(RiderContextKey).(*models.Claims)
	return claims, ok
}

// WithRider returns a copy of ctx carrying the claims.
func WithRider(ctx context.Context, claims *models.Claims) context.Context {
	return context.WithValue(ctx, RiderContextKey, claims)
}

func isPublic(path string) bool {
	for _, p := range publicPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
