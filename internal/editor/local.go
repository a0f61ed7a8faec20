package editor

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/service"
)

// LocalBackend runs a Session directly against the quotation service
type LocalBackend struct {
	quotations *service.QuotationService
}

func NewLocalBackend(quotations *service.QuotationService) *LocalBackend {
	return &LocalBackend{quotations: quotations}
}

func (b *LocalBackend) Create(ctx context.Context, doc *domain.Document) (uuid.UUID, error) {
	return b.quotations.CreateDocument(ctx, doc)
}

func (b *LocalBackend) Update(ctx context.Context, id uuid.UUID, doc *domain.Document) error {
	return notFound(b.quotations.UpdateDocument(ctx, id, doc))
}

func (b *LocalBackend) Get(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	doc, err := b.quotations.GetDocument(ctx, id)
	return doc, notFound(err)
}

func (b *LocalBackend) Delete(ctx context.Context, id uuid.UUID) error {
	return notFound(b.quotations.Delete(ctx, id))
}

func notFound(err error) error {
	if errors.Is(err, service.ErrQuotationNotFound) {
		return ErrNotFound
	}
	return err
}

// LocalFiles stores session uploads through the upload service
type LocalFiles struct {
	uploads *service.UploadService
}

func NewLocalFiles(uploads *service.UploadService) *LocalFiles {
	return &LocalFiles{uploads: uploads}
}

func (f *LocalFiles) Upload(ctx context.Context, filename, contentType string, data io.Reader) (string, error) {
	resp, err := f.uploads.Upload(ctx, filename, contentType, data)
	if err != nil {
		return "", err
	}
	return resp.Path, nil
}

var (
	_ Backend   = (*LocalBackend)(nil)
	_ FileStore = (*LocalFiles)(nil)
)
