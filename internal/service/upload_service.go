package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/metrics"
	"github.com/straye-as/quotation-api/internal/storage"
	"go.uber.org/zap"
)

const maxFilenameLength = 120

// imageTypes are the upload types that are served inline as image sources
var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// UploadService stores quotation images and resolves their public paths
type UploadService struct {
	storage      storage.Storage
	publicPrefix string
	metrics      *metrics.Metrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewUploadService creates an UploadService serving files under publicPrefix, e.g. "/uploads"
func NewUploadService(store storage.Storage, publicPrefix string, m *metrics.Metrics, logger *zap.Logger) *UploadService {
	return &UploadService{
		storage:      store,
		publicPrefix: "/" + strings.Trim(publicPrefix, "/"),
		metrics:      m,
		logger:       logger,
		now:          time.Now,
	}
}

// Upload stores data as "<unix millis>_<filename>" and returns its public path.
// Only image extensions are accepted; the stored type follows the extension, not the declared type.
func (s *UploadService) Upload(ctx context.Context, filename, declaredType string, data io.Reader) (*domain.UploadResponse, error) {
	clean := SanitizeFilename(filename)
	if clean == "" {
		return nil, ErrInvalidUpload
	}
	contentType, ok := ImageContentType(clean)
	if !ok {
		s.logger.Warn("rejected non-image upload",
			zap.String("filename", filename),
			zap.String("declared_type", declaredType),
		)
		return nil, ErrUnsupportedFileType
	}
	name := fmt.Sprintf("%d_%s", s.now().UnixMilli(), clean)

	size, err := s.storage.Upload(ctx, name, contentType, data)
	if err != nil {
		s.logger.Error("failed to store upload", zap.String("filename", filename), zap.Error(err))
		return nil, &UploadError{Filename: filename, Err: err}
	}
	s.metrics.AddUploadBytes(size)

	s.logger.Info("file uploaded",
		zap.String("name", name),
		zap.String("content_type", contentType),
		zap.Int64("size", size),
	)
	return &domain.UploadResponse{Path: s.PublicPath(name)}, nil
}

// Open returns the stored bytes of name and their content type.
// Names without an image extension are reported as application/octet-stream.
func (s *UploadService) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	if !storage.ValidName(name) {
		return nil, "", ErrFileNotFound
	}
	rc, err := s.storage.Download(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
			return nil, "", ErrFileNotFound
		}
		return nil, "", fmt.Errorf("failed to open upload: %w", err)
	}
	return rc, contentTypeFor(name), nil
}

// PublicPath is the URL path clients use to fetch the object name
func (s *UploadService) PublicPath(name string) string {
	return s.publicPrefix + "/" + name
}

// ObjectName is the inverse of PublicPath; it reports false for paths outside the prefix
func (s *UploadService) ObjectName(publicPath string) (string, bool) {
	name, ok := strings.CutPrefix(publicPath, s.publicPrefix+"/")
	if !ok || !storage.ValidName(name) {
		return "", false
	}
	return name, true
}

// SanitizeFilename reduces a client file name to a safe single path segment.
// Letters and digits of any script are kept; separators and controls become '_'.
func SanitizeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if base == "." || base == "/" || base == ".." {
		return ""
	}

	var b strings.Builder
	for _, r := range base {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	clean := strings.TrimLeft(b.String(), ".")
	if runes := []rune(clean); len(runes) > maxFilenameLength {
		ext := path.Ext(clean)
		keep := maxFilenameLength - len([]rune(ext))
		if keep < 1 {
			return string(runes[:maxFilenameLength])
		}
		clean = string([]rune(strings.TrimSuffix(clean, ext))[:keep]) + ext
	}
	return clean
}

// ImageContentType reports the image type for the extension of name
func ImageContentType(name string) (string, bool) {
	ct, ok := imageTypes[strings.ToLower(path.Ext(name))]
	return ct, ok
}

func contentTypeFor(name string) string {
	if ct, ok := ImageContentType(name); ok {
		return ct
	}
	return "application/octet-stream"
}
