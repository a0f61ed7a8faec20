package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/straye-as/quotation-api/internal/auth"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/mapper"
	"github.com/straye-as/quotation-api/internal/metrics"
	"github.com/straye-as/quotation-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuotationService validates quotation documents and persists them through the repository
type QuotationService struct {
	quotationRepo *repository.QuotationRepository
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// NewQuotationService creates a new QuotationService. m may be nil.
func NewQuotationService(quotationRepo *repository.QuotationRepository, m *metrics.Metrics, logger *zap.Logger) *QuotationService {
	return &QuotationService{
		quotationRepo: quotationRepo,
		metrics:       m,
		logger:        logger,
	}
}

// Create validates the payload and stores it as a new quotation.
// Totals in the payload are ignored and recomputed from the items.
func (s *QuotationService) Create(ctx context.Context, req *domain.SaveQuotationRequest) (uuid.UUID, error) {
	doc, err := mapper.DocumentFromRequest(req)
	if err != nil {
		return uuid.Nil, err
	}
	return s.CreateDocument(ctx, doc)
}

// CreateDocument stores doc as a new quotation edited by the caller
func (s *QuotationService) CreateDocument(ctx context.Context, doc *domain.Document) (uuid.UUID, error) {
	if err := doc.Validate(); err != nil {
		return uuid.Nil, err
	}
	if user, ok := auth.FromContext(ctx); ok {
		doc.EditorID = user.EditorID()
	}

	id, err := s.quotationRepo.Create(ctx, doc)
	s.metrics.ObserveQuotationOp("create", err)
	if err != nil {
		s.logger.Error("failed to create quotation", zap.String("title", doc.Title), zap.Error(err))
		return uuid.Nil, &PersistenceError{Op: "create", Err: err}
	}

	totals := doc.Totals()
	s.logger.Info("quotation created",
		zap.String("quotation_id", id.String()),
		zap.String("title", doc.Title),
		zap.String("grand_total", totals.GrandTotal.String()),
	)
	return id, nil
}

// Update replaces every mutable field and the full item set of quotation id.
// The editor is updated only when the caller is a real user.
func (s *QuotationService) Update(ctx context.Context, id uuid.UUID, req *domain.SaveQuotationRequest) error {
	doc, err := mapper.DocumentFromRequest(req)
	if err != nil {
		return err
	}
	return s.UpdateDocument(ctx, id, doc)
}

// UpdateDocument replaces quotation id with doc
func (s *QuotationService) UpdateDocument(ctx context.Context, id uuid.UUID, doc *domain.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	doc.EditorID = nil
	if user, ok := auth.FromContext(ctx); ok {
		doc.EditorID = user.EditorID()
	}

	err := s.quotationRepo.Update(ctx, id, doc)
	s.metrics.ObserveQuotationOp("update", err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuotationNotFound
		}
		s.logger.Error("failed to update quotation", zap.String("quotation_id", id.String()), zap.Error(err))
		return &PersistenceError{Op: "update", Err: err}
	}

	s.logger.Info("quotation updated",
		zap.String("quotation_id", id.String()),
		zap.Int("main_items", len(doc.Main)),
		zap.Int("detail_items", len(doc.Detail)),
	)
	return nil
}

// Delete removes quotation id and its items
func (s *QuotationService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.quotationRepo.Delete(ctx, id)
	s.metrics.ObserveQuotationOp("delete", err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuotationNotFound
		}
		s.logger.Error("failed to delete quotation", zap.String("quotation_id", id.String()), zap.Error(err))
		return &PersistenceError{Op: "delete", Err: err}
	}
	s.logger.Info("quotation deleted", zap.String("quotation_id", id.String()))
	return nil
}

// GetDocument loads quotation id as a document
func (s *QuotationService) GetDocument(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	doc, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuotationNotFound
		}
		s.logger.Error("failed to load quotation", zap.String("quotation_id", id.String()), zap.Error(err))
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	return doc, nil
}

// GetByID loads quotation id in its read representation
func (s *QuotationService) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuotationDTO, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	dto, err := mapper.ToQuotationDTO(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to map quotation: %w", err)
	}
	return &dto, nil
}

// List returns every quotation, newest first
func (s *QuotationService) List(ctx context.Context) ([]domain.QuotationSummaryDTO, error) {
	summaries, err := s.quotationRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to list quotations", zap.Error(err))
		return nil, &PersistenceError{Op: "list", Err: err}
	}

	dtos := make([]domain.QuotationSummaryDTO, len(summaries))
	for i := range summaries {
		dtos[i] = mapper.ToQuotationSummaryDTO(&summaries[i])
	}
	return dtos, nil
}

// Copy creates a new quotation with the header, terms, items and tabs of sourceID.
// The copy is attributed to the caller, or to the source's editor for the system caller.
func (s *QuotationService) Copy(ctx context.Context, sourceID uuid.UUID) (uuid.UUID, error) {
	source, err := s.GetDocument(ctx, sourceID)
	if err != nil {
		return uuid.Nil, err
	}

	clone := source.Clone()
	if user, ok := auth.FromContext(ctx); ok {
		if editorID := user.EditorID(); editorID != nil {
			clone.EditorID = editorID
		}
	}

	id, err := s.quotationRepo.Create(ctx, clone)
	s.metrics.ObserveQuotationOp("copy", err)
	if err != nil {
		s.logger.Error("failed to copy quotation", zap.String("source_id", sourceID.String()), zap.Error(err))
		return uuid.Nil, &PersistenceError{Op: "copy", Err: err}
	}

	s.logger.Info("quotation copied",
		zap.String("source_id", sourceID.String()),
		zap.String("quotation_id", id.String()),
	)
	return id, nil
}
