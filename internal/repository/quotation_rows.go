package repository

import (
	"github.com/straye-as/quotation-api/internal/domain"
)

// toRows flattens a document into its header row and the main+detail item rows.
// sort_order is the position in the concatenated list and supply_price is always recomputed.
func toRows(doc *domain.Document) (*domain.Quotation, []domain.QuotationItem, error) {
	memo, err := doc.Memo().Encode()
	if err != nil {
		return nil, nil, err
	}
	totals := doc.Totals()
	images := doc.Tabs.LegacyImages()

	row := &domain.Quotation{
		Title:            doc.Title,
		CustomerName:     doc.CustomerName,
		CustomerRef:      doc.CustomerRef,
		QuotationDate:    doc.QuotationDate,
		TotalAmount:      totals.Subtotal.InexactFloat64(),
		VAT:              totals.VAT.InexactFloat64(),
		GrandTotal:       totals.GrandTotal.InexactFloat64(),
		Memo:             memo,
		ImageLayout:      images.Layout,
		ImageComponent:   images.Component,
		ImageMaintenance: images.Maintenance,
		ImageSchedule:    images.Schedule,
	}
	row.ID = doc.ID

	items := make([]domain.QuotationItem, 0, len(doc.Main)+len(doc.Detail))
	appendSection := func(section domain.SectionID, src []domain.Item) {
		for _, it := range src {
			if it.ReadOnly {
				continue
			}
			items = append(items, domain.QuotationItem{
				Section:     string(section),
				Category:    it.Category,
				Name:        it.Name,
				Spec:        it.Spec,
				Unit:        it.Unit,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				SupplyPrice: it.SupplyPrice(),
				Remarks:     it.Remarks,
				SortOrder:   len(items),
			})
		}
	}
	appendSection(domain.SectionMain, doc.Main)
	appendSection(domain.SectionDetail, doc.Detail)

	return row, items, nil
}

// fromRows rebuilds a document from a header row with its items preloaded in sort order
func fromRows(row *domain.Quotation) *domain.Document {
	doc := &domain.Document{
		ID: row.ID,
		Header: domain.Header{
			Title:         row.Title,
			CustomerName:  row.CustomerName,
			CustomerRef:   row.CustomerRef,
			QuotationDate: row.QuotationDate,
		},
		EditorID:  row.EditorID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		Main:      []domain.Item{},
		Detail:    []domain.Item{},
	}
	if row.Editor != nil {
		doc.EditorName = row.Editor.Name
	}
	doc.ApplyMemo(domain.ParseMemo(row.Memo, row.LegacyImages()))

	placer := domain.NewItemPlacer(doc)
	for _, it := range row.Items {
		item := domain.Item{
			Category:  it.Category,
			Name:      it.Name,
			Spec:      it.Spec,
			Unit:      it.Unit,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Remarks:   it.Remarks,
		}
		// Unknown tags are kept on the main table rather than dropped
		if !placer.Place(it.Section, item) {
			doc.Main = append(doc.Main, item)
		}
	}
	return doc
}
