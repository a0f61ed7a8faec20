package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/quotation-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const itemBatchSize = 200

type QuotationRepository struct {
	db *gorm.DB
}

func NewQuotationRepository(db *gorm.DB) *QuotationRepository {
	return &QuotationRepository{db: db}
}

// Create inserts the header and all items in one transaction and returns the new id
func (r *QuotationRepository) Create(ctx context.Context, doc *domain.Document) (uuid.UUID, error) {
	row, items, err := toRows(doc)
	if err != nil {
		return uuid.Nil, err
	}
	row.ID = uuid.Nil
	row.EditorID = doc.EditorID

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(row).Error; err != nil {
			return err
		}
		return insertItems(tx, row.ID, items)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return row.ID, nil
}

// Update overwrites every mutable header field and replaces the full item set.
// There is no concurrency check; the last update wins.
func (r *QuotationRepository) Update(ctx context.Context, id uuid.UUID, doc *domain.Document) error {
	row, items, err := toRows(doc)
	if err != nil {
		return err
	}

	columns := map[string]interface{}{
		"title":             row.Title,
		"customer_name":     row.CustomerName,
		"customer_ref":      row.CustomerRef,
		"quotation_date":    row.QuotationDate,
		"total_amount":      row.TotalAmount,
		"vat":               row.VAT,
		"grand_total":       row.GrandTotal,
		"memo":              row.Memo,
		"image_layout":      row.ImageLayout,
		"image_component":   row.ImageComponent,
		"image_maintenance": row.ImageMaintenance,
		"image_schedule":    row.ImageSchedule,
		"updated_at":        time.Now().UTC(),
	}
	if doc.EditorID != nil {
		columns["editor_id"] = *doc.EditorID
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Quotation{}).Where("id = ?", id).Updates(columns)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("quotation_id = ?", id).Delete(&domain.QuotationItem{}).Error; err != nil {
			return err
		}
		return insertItems(tx, id, items)
	})
}

// Delete removes the header row; items go with it through the foreign key cascade
func (r *QuotationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Quotation{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetByID loads the header, the editor and the items in sort order
func (r *QuotationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	var row domain.Quotation
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Editor").
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return fromRows(&row), nil
}

// ListAll returns every quotation, newest first, with the editor name when known
func (r *QuotationRepository) ListAll(ctx context.Context) ([]domain.QuotationSummary, error) {
	var rows []domain.Quotation
	err := r.db.WithContext(ctx).
		Joins("Editor").
		Order("quotations.created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.QuotationSummary, len(rows))
	for i, row := range rows {
		summaries[i] = domain.QuotationSummary{
			ID:            row.ID,
			Title:         row.Title,
			CustomerName:  row.CustomerName,
			CustomerRef:   row.CustomerRef,
			QuotationDate: row.QuotationDate,
			GrandTotal:    row.GrandTotal,
			CreatedAt:     row.CreatedAt,
			UpdatedAt:     row.UpdatedAt,
		}
		if row.Editor != nil {
			summaries[i].EditorName = row.Editor.Name
		}
	}
	return summaries, nil
}

// ListImageURLs returns every image URL referenced by any quotation
func (r *QuotationRepository) ListImageURLs(ctx context.Context) (map[string]struct{}, error) {
	var rows []domain.Quotation
	err := r.db.WithContext(ctx).
		Select("id", "memo", "image_layout", "image_component", "image_maintenance", "image_schedule").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	urls := make(map[string]struct{})
	for _, row := range rows {
		images := row.LegacyImages()
		for _, u := range []string{images.Layout, images.Component, images.Maintenance, images.Schedule} {
			if u != "" {
				urls[u] = struct{}{}
			}
		}
		memo := domain.ParseMemo(row.Memo, images)
		for _, u := range memo.TabConfig.ImageURLs() {
			urls[u] = struct{}{}
		}
	}
	return urls, nil
}

func insertItems(tx *gorm.DB, quotationID uuid.UUID, items []domain.QuotationItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].QuotationID = quotationID
	}
	return tx.Omit(clause.Associations).CreateInBatches(items, itemBatchSize).Error
}
