package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/quotation-api/internal/service"
	"go.uber.org/zap"
)

type UploadHandler struct {
	uploadService *service.UploadService
	maxUpload     int64
	logger        *zap.Logger
}

func NewUploadHandler(uploadService *service.UploadService, maxUpload int64, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		maxUpload:     maxUpload,
		logger:        logger,
	}
}

// @Summary Upload image
// @Description Stores one png, jpeg, gif or webp image and returns the path under which it is served
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Success 200 {object} domain.UploadResponse
// @Failure 400 {object} domain.APIError
// @Failure 413 {object} domain.APIError
// @Failure 502 {object} domain.APIError "Upload failed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /uploads [post]
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: maximum size is %dMB", h.maxUpload>>20))
			return
		}
		respondWithError(w, http.StatusBadRequest, "Invalid upload: expected multipart/form-data")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file upload: file field is required")
		return
	}
	defer file.Close()

	resp, err := h.uploadService.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// @Summary Get uploaded file
// @Description Serves a stored upload; usable directly as an image source
// @Tags Uploads
// @Produce octet-stream
// @Param name path string true "Stored file name"
// @Success 200 {file} file
// @Failure 404 {object} domain.APIError
// @Router /uploads/{name} [get]
func (h *UploadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rc, contentType, err := h.uploadService.Open(r.Context(), name)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	if !strings.HasPrefix(contentType, "image/") {
		w.Header().Set("Content-Disposition", "attachment")
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("failed to stream upload", zap.String("name", name), zap.Error(err))
	}
}
