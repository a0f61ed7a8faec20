package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/straye-as/quotation-api/internal/domain"
	"go.uber.org/zap"
)

var (
	// ErrUnknownUser means the identity has never signed in through the callback
	ErrUnknownUser = errors.New("user not found")
	// ErrUserNotApproved means the users row exists but an administrator has not approved it
	ErrUserNotApproved = errors.New("user is not approved")
)

// TokenValidator verifies a bearer token and returns the identity it carries
type TokenValidator interface {
	ValidateToken(token string) (*Identity, error)
}

// UserResolver maps a verified identity to an approved users row.
// It returns ErrUnknownUser or ErrUserNotApproved when the caller may not proceed.
type UserResolver interface {
	ResolveSessionUser(ctx context.Context, identity *Identity) (*domain.User, error)
}

// Middleware handles authentication for HTTP requests
type Middleware struct {
	validator TokenValidator
	users     UserResolver
	apiKey    string
	logger    *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(validator TokenValidator, users UserResolver, apiKey string, logger *zap.Logger) *Middleware {
	return &Middleware{
		validator: validator,
		users:     users,
		apiKey:    apiKey,
		logger:    logger,
	}
}

// Authenticate requires either a valid x-api-key or a Bearer ID token of an approved user
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if apiKey := r.Header.Get("x-api-key"); apiKey != "" {
			if !m.validateAPIKey(apiKey) {
				m.logger.Warn("invalid API key attempt",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeAuthError(w, http.StatusUnauthorized, "Invalid API key")
				return
			}

			userCtx := SystemUser()
			m.logger.Info("request authenticated",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("auth_type", "api_key"),
				zap.Duration("auth_duration", time.Since(start)),
			)
			next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "Missing or malformed authorization header")
			return
		}

		identity, err := m.validator.ValidateToken(token)
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			writeAuthError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		user, err := m.users.ResolveSessionUser(r.Context(), identity)
		if err != nil {
			switch {
			case errors.Is(err, ErrUnknownUser):
				writeAuthError(w, http.StatusUnauthorized, "Sign in first")
			case errors.Is(err, ErrUserNotApproved):
				writeAuthError(w, http.StatusForbidden, "Your account is awaiting approval")
			default:
				m.logger.Error("failed to resolve session user", zap.String("email", identity.Email), zap.Error(err))
				writeAuthError(w, http.StatusInternalServerError, "Failed to resolve user")
			}
			return
		}

		userCtx := FromUser(user)
		m.logger.Info("request authenticated",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("auth_type", "jwt"),
			zap.String("user_id", userCtx.UserID.String()),
			zap.String("user_email", userCtx.Email),
			zap.Duration("auth_duration", time.Since(start)),
		)
		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
	})
}

// RequireAdmin ensures the caller is an administrator or the API key
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userCtx, ok := FromContext(r.Context())
		if !ok {
			writeAuthError(w, http.StatusForbidden, "No user context")
			return
		}
		if !userCtx.IsAdmin() {
			writeAuthError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) validateAPIKey(key string) bool {
	if m.apiKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) == 1
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func writeAuthError(w http.ResponseWriter, status int, detail string) {
	errType := domain.ErrorTypeUnauthorized
	title := "Unauthorized"
	switch status {
	case http.StatusForbidden:
		errType = domain.ErrorTypeForbidden
		title = "Forbidden"
	case http.StatusInternalServerError:
		errType = domain.ErrorTypeInternal
		title = "Internal Server Error"
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.APIError{Type: errType, Title: title, Status: status, Detail: detail})
}
