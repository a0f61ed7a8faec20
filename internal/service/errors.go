package service

import (
	"errors"
	"fmt"

	"github.com/straye-as/quotation-api/internal/auth"
)

// Common service errors
var (
	// ErrQuotationNotFound is returned when no quotation has the requested id
	ErrQuotationNotFound = errors.New("quotation not found")

	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrUserNotApproved is returned when a signed-in user still awaits approval
	ErrUserNotApproved = auth.ErrUserNotApproved

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidUpload is returned for an empty or unnamed upload
	ErrInvalidUpload = errors.New("invalid upload")

	// ErrUnsupportedFileType is returned for uploads that are not a raster image
	ErrUnsupportedFileType = errors.New("unsupported file type: only png, jpeg, gif and webp images are accepted")

	// ErrFileNotFound is returned when a stored upload does not exist
	ErrFileNotFound = errors.New("file not found")
)

// PersistenceError wraps a failure of the quotation store
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s quotation: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// UploadError wraps a failure of the file store
type UploadError struct {
	Filename string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed for %s: %v", e.Filename, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
