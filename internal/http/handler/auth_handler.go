package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/straye-as/quotation-api/internal/auth"
	"github.com/straye-as/quotation-api/internal/domain"
	"go.uber.org/zap"
)

// SignInService admits or registers a verified identity
type SignInService interface {
	SignIn(ctx context.Context, identity *auth.Identity) (*domain.SessionUserDTO, error)
}

type AuthHandler struct {
	validator auth.TokenValidator
	signIn    SignInService
	logger    *zap.Logger
}

func NewAuthHandler(validator auth.TokenValidator, signIn SignInService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		validator: validator,
		signIn:    signIn,
		logger:    logger,
	}
}

// Callback godoc
// @Summary Sign in with a Google ID token
// @Description Unknown emails are registered unapproved and rejected until an administrator approves them
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.AuthCallbackRequest true "Google ID token"
// @Success 200 {object} domain.SessionUserDTO
// @Failure 401 {object} domain.APIError "Invalid token"
// @Failure 403 {object} domain.APIError "Awaiting approval"
// @Router /auth/callback [post]
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	var req domain.AuthCallbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	identity, err := h.validator.ValidateToken(req.IDToken)
	if err != nil {
		h.logger.Debug("sign-in token rejected", zap.Error(err))
		if errors.Is(err, auth.ErrExpiredToken) {
			respondWithError(w, http.StatusUnauthorized, "Token has expired")
			return
		}
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	user, err := h.signIn.SignIn(r.Context(), identity)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user signed in", zap.String("user_id", user.ID.String()), zap.String("email", user.Email))
	respondJSON(w, http.StatusOK, user)
}

// Me godoc
// @Summary Get current authenticated user
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.SessionUserDTO
// @Failure 401 {object} domain.APIError "Unauthorized"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	respondJSON(w, http.StatusOK, domain.SessionUserDTO{
		ID:         userCtx.UserID,
		Email:      userCtx.Email,
		Name:       userCtx.DisplayName,
		Role:       userCtx.Role,
		IsApproved: userCtx.IsApproved,
	})
}
