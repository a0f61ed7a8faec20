package mapper

import (
	"fmt"
	"time"

	"github.com/straye-as/quotation-api/internal/domain"
)

const timestampLayout = "2006-01-02T15:04:05Z"

func formatDate(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.Format(domain.DateLayout)
	return &s
}

// ToQuotationDTO converts a document to its read representation.
// Items are the main table followed by the primary detail sheet, in sort order.
func ToQuotationDTO(doc *domain.Document) (domain.QuotationDTO, error) {
	memo, err := doc.Memo().Encode()
	if err != nil {
		return domain.QuotationDTO{}, err
	}
	totals := doc.Totals()
	images := doc.Tabs.LegacyImages()

	dto := domain.QuotationDTO{
		ID:               doc.ID,
		Title:            doc.Title,
		CustomerName:     doc.CustomerName,
		CustomerRef:      doc.CustomerRef,
		QuotationDate:    formatDate(doc.QuotationDate),
		TotalAmount:      totals.Subtotal.InexactFloat64(),
		VAT:              totals.VAT.InexactFloat64(),
		GrandTotal:       totals.GrandTotal.InexactFloat64(),
		Memo:             memo,
		ImageLayout:      images.Layout,
		ImageComponent:   images.Component,
		ImageMaintenance: images.Maintenance,
		ImageSchedule:    images.Schedule,
		EditorID:         doc.EditorID,
		EditorName:       doc.EditorName,
		Items:            make([]domain.LineItemDTO, 0, len(doc.Main)+len(doc.Detail)),
		CreatedAt:        doc.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:        doc.UpdatedAt.UTC().Format(timestampLayout),
	}

	for _, section := range []domain.SectionID{domain.SectionMain, domain.SectionDetail} {
		items, _ := doc.Section(section)
		for _, it := range *items {
			if it.ReadOnly {
				continue
			}
			dto.Items = append(dto.Items, domain.LineItemDTO{
				Section:     string(section),
				Category:    it.Category,
				Name:        it.Name,
				Spec:        it.Spec,
				Unit:        it.Unit,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				SupplyPrice: it.SupplyPrice(),
				Remarks:     it.Remarks,
				SortOrder:   len(dto.Items),
			})
		}
	}
	return dto, nil
}

// ToQuotationSummaryDTO converts a list row
func ToQuotationSummaryDTO(s *domain.QuotationSummary) domain.QuotationSummaryDTO {
	return domain.QuotationSummaryDTO{
		ID:            s.ID,
		Title:         s.Title,
		CustomerName:  s.CustomerName,
		CustomerRef:   s.CustomerRef,
		QuotationDate: formatDate(s.QuotationDate),
		GrandTotal:    s.GrandTotal,
		EditorName:    s.EditorName,
		CreatedAt:     s.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:     s.UpdatedAt.UTC().Format(timestampLayout),
	}
}

// ToSessionUserDTO converts a user to the session payload
func ToSessionUserDTO(u *domain.User) domain.SessionUserDTO {
	return domain.SessionUserDTO{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		IsApproved: u.IsApproved,
	}
}

// DocumentFromRequest builds a document from a create/update payload.
// The memo is migrated first so item section tags can refer to extra detail sheets.
func DocumentFromRequest(req *domain.SaveQuotationRequest) (*domain.Document, error) {
	fields := map[string]string{}

	doc := &domain.Document{
		Header: domain.Header{
			Title:        req.Title,
			CustomerName: req.CustomerName,
			CustomerRef:  req.CustomerRef,
		},
		Main:   []domain.Item{},
		Detail: []domain.Item{},
	}

	if req.QuotationDate != "" {
		date, err := time.Parse(domain.DateLayout, req.QuotationDate)
		if err != nil {
			fields["quotationDate"] = domain.GetValidationMessage("datetime")
		} else {
			doc.QuotationDate = &date
		}
	}

	doc.ApplyMemo(domain.ParseMemo(req.Memo, domain.LegacyImages{
		Layout:      req.ImageLayout,
		Component:   req.ImageComponent,
		Maintenance: req.ImageMaintenance,
		Schedule:    req.ImageSchedule,
	}))

	placer := domain.NewItemPlacer(doc)
	for i, it := range req.Items {
		item := domain.Item{
			Category:  it.Category,
			Name:      it.Name,
			Spec:      it.Spec,
			Unit:      it.Unit,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Remarks:   it.Remarks,
		}
		if !placer.Place(it.Section, item) {
			fields[fmt.Sprintf("items[%d].section", i)] = "Unknown section: " + it.Section
		}
	}

	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}
	return doc, nil
}

// ToSaveRequest converts a document to the create/update payload sent by API clients
func ToSaveRequest(doc *domain.Document) (*domain.SaveQuotationRequest, error) {
	dto, err := ToQuotationDTO(doc)
	if err != nil {
		return nil, err
	}
	req := requestFromDTO(&dto)
	req.TotalAmount = dto.TotalAmount
	req.VAT = dto.VAT
	req.GrandTotal = dto.GrandTotal
	return req, nil
}

// DocumentFromDTO rebuilds a document from a read response
func DocumentFromDTO(dto *domain.QuotationDTO) (*domain.Document, error) {
	doc, err := DocumentFromRequest(requestFromDTO(dto))
	if err != nil {
		return nil, err
	}
	doc.ID = dto.ID
	doc.EditorID = dto.EditorID
	doc.EditorName = dto.EditorName
	if t, err := time.Parse(timestampLayout, dto.CreatedAt); err == nil {
		doc.CreatedAt = t
	}
	if t, err := time.Parse(timestampLayout, dto.UpdatedAt); err == nil {
		doc.UpdatedAt = t
	}
	return doc, nil
}

func requestFromDTO(dto *domain.QuotationDTO) *domain.SaveQuotationRequest {
	req := &domain.SaveQuotationRequest{
		Title:            dto.Title,
		CustomerName:     dto.CustomerName,
		CustomerRef:      dto.CustomerRef,
		ImageLayout:      dto.ImageLayout,
		ImageComponent:   dto.ImageComponent,
		ImageMaintenance: dto.ImageMaintenance,
		ImageSchedule:    dto.ImageSchedule,
		Memo:             dto.Memo,
		Items:            make([]domain.LineItemRequest, len(dto.Items)),
	}
	if dto.QuotationDate != nil {
		req.QuotationDate = *dto.QuotationDate
	}
	for i, it := range dto.Items {
		req.Items[i] = domain.LineItemRequest{
			Section:   it.Section,
			Category:  it.Category,
			Name:      it.Name,
			Spec:      it.Spec,
			Unit:      it.Unit,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Remarks:   it.Remarks,
		}
	}
	return req
}
