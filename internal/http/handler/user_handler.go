package handler

import (
	"net/http"

	"github.com/straye-as/quotation-api/internal/service"
	"go.uber.org/zap"
)

// SetApprovalRequest grants or revokes access for a user
type SetApprovalRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

type UserHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewUserHandler(authService *service.AuthService, logger *zap.Logger) *UserHandler {
	return &UserHandler{authService: authService, logger: logger}
}

// @Summary Approve or revoke a user
// @Description Administrators only. Approved users may sign in and use the API.
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body SetApprovalRequest true "Approval state"
// @Success 200 {object} domain.SessionUserDTO
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /users/{id}/approval [put]
func (h *UserHandler) SetApproval(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "user")
	if !ok {
		return
	}

	var req SetApprovalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user, err := h.authService.SetApproval(r.Context(), id, *req.Approved)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}
