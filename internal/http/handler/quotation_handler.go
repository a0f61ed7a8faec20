package handler

import (
	"fmt"
	"mime"
	"net/http"

	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/service"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type QuotationHandler struct {
	quotationService *service.QuotationService
	exportService    *service.ExportService
	logger           *zap.Logger
}

func NewQuotationHandler(quotationService *service.QuotationService, exportService *service.ExportService, logger *zap.Logger) *QuotationHandler {
	return &QuotationHandler{
		quotationService: quotationService,
		exportService:    exportService,
		logger:           logger,
	}
}

// @Summary List quotations
// @Description Returns every quotation, newest first, with the name of the last editor
// @Tags Quotations
// @Produce json
// @Success 200 {array} domain.QuotationSummaryDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations [get]
func (h *QuotationHandler) List(w http.ResponseWriter, r *http.Request) {
	quotations, err := h.quotationService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, quotations)
}

// @Summary Create quotation
// @Description Stores a new quotation. Client totals are ignored and recomputed from the items.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param request body domain.SaveQuotationRequest true "Quotation data"
// @Success 201 {object} domain.IDResponse
// @Failure 400 {object} domain.APIError "Validation error"
// @Failure 500 {object} domain.APIError "Persistence failure"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations [post]
func (h *QuotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.SaveQuotationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	id, err := h.quotationService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/v1/quotations/"+id.String())
	respondJSON(w, http.StatusCreated, domain.IDResponse{ID: id})
}

// @Summary Get quotation
// @Description Returns the header, items in sort order, normalized memo, totals and editor
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} domain.QuotationDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id} [get]
func (h *QuotationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "quotation")
	if !ok {
		return
	}

	quotation, err := h.quotationService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, quotation)
}

// @Summary Update quotation
// @Description Replaces every mutable field and the full item set. The last update wins.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param request body domain.SaveQuotationRequest true "Quotation data"
// @Success 200 {object} domain.SuccessResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id} [put]
func (h *QuotationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "quotation")
	if !ok {
		return
	}

	var req domain.SaveQuotationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.quotationService.Update(r.Context(), id, &req); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, domain.SuccessResponse{Success: true})
}

// @Summary Delete quotation
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} domain.SuccessResponse
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id} [delete]
func (h *QuotationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "quotation")
	if !ok {
		return
	}

	if err := h.quotationService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, domain.SuccessResponse{Success: true})
}

// @Summary Copy quotation
// @Description Creates a new quotation with the header, terms, items and tabs of an existing one
// @Tags Quotations
// @Produce json
// @Param id path string true "Source quotation ID"
// @Success 201 {object} domain.IDResponse
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id}/copy [post]
func (h *QuotationHandler) Copy(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "quotation")
	if !ok {
		return
	}

	newID, err := h.quotationService.Copy(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/v1/quotations/"+newID.String())
	respondJSON(w, http.StatusCreated, domain.IDResponse{ID: newID})
}

// @Summary Export quotation
// @Description Renders the printable tabs of a quotation as an xlsx workbook
// @Tags Quotations
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Quotation ID"
// @Success 200 {file} file
// @Failure 400 {object} domain.APIError "No tab selected for printing"
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id}/export [get]
func (h *QuotationHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "quotation")
	if !ok {
		return
	}

	file, err := h.exportService.Export(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Filename}))
	w.Header().Set("Content-Length", fmt.Sprint(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}
