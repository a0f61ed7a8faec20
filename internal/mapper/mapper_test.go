package mapper_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/mapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc() *domain.Document {
	date := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	return &domain.Document{
		ID:     uuid.New(),
		Header: domain.Header{Title: "Roof", CustomerName: "ACME", CustomerRef: "Mr. Lee", QuotationDate: &date},
		Terms:  domain.Terms{ExpiryDate: "30 days", Conditions: "net 30"},
		Main:   []domain.Item{{Name: "Panel", Quantity: 2, UnitPrice: 100}, {Name: "Labour", Quantity: 1, UnitPrice: 50}},
		Detail: []domain.Item{{Name: "Screw", Quantity: 100, UnitPrice: 1}},
		Tabs: domain.TabConfig{
			CoverLabel: "Cover", DetailLabel: "Detail",
			Tabs: []domain.Tab{
				{ID: "layout", Kind: domain.TabKindImage, Label: "Layout", ImageURL: "/uploads/1_l.png"},
				{ID: "sheet-1", Kind: domain.TabKindDetail, Label: "Electrical", Items: []domain.Item{{Name: "Cable", Quantity: 10, UnitPrice: 3}}},
			},
		},
		CreatedAt: time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 5, 3, 9, 0, 0, 0, time.UTC),
	}
}

func TestToQuotationDTO(t *testing.T) {
	dto, err := mapper.ToQuotationDTO(sampleDoc())
	require.NoError(t, err)

	assert.Equal(t, "Roof", dto.Title)
	require.NotNil(t, dto.QuotationDate)
	assert.Equal(t, "2026-05-02", *dto.QuotationDate)
	assert.Equal(t, float64(280), dto.TotalAmount)
	assert.Equal(t, float64(28), dto.VAT)
	assert.Equal(t, float64(308), dto.GrandTotal)
	assert.Equal(t, "/uploads/1_l.png", dto.ImageLayout)
	assert.Equal(t, "2026-05-02T09:00:00Z", dto.CreatedAt)

	require.Len(t, dto.Items, 3)
	for i, it := range dto.Items {
		assert.Equal(t, i, it.SortOrder)
	}
	assert.Equal(t, "main", dto.Items[0].Section)
	assert.Equal(t, "detail", dto.Items[2].Section)
	assert.Equal(t, float64(200), dto.Items[0].SupplyPrice)
}

func TestDocumentRoundTripThroughRequest(t *testing.T) {
	doc := sampleDoc()

	req, err := mapper.ToSaveRequest(doc)
	require.NoError(t, err)
	assert.Equal(t, float64(308), req.GrandTotal)

	back, err := mapper.DocumentFromRequest(req)
	require.NoError(t, err)

	assert.Equal(t, doc.Header, back.Header)
	assert.Equal(t, doc.Terms, back.Terms)
	assert.Equal(t, doc.Main, back.Main)
	assert.Equal(t, doc.Detail, back.Detail)
	assert.Equal(t, doc.Tabs, back.Tabs)
	assert.True(t, doc.Totals().GrandTotal.Equal(back.Totals().GrandTotal))
}

func TestDocumentFromDTO_KeepsIdentity(t *testing.T) {
	doc := sampleDoc()
	dto, err := mapper.ToQuotationDTO(doc)
	require.NoError(t, err)

	back, err := mapper.DocumentFromDTO(&dto)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, back.ID)
	assert.Equal(t, doc.CreatedAt, back.CreatedAt)
	assert.Len(t, back.Tabs.Tabs, 2)
}

func TestDocumentFromRequest_LegacyPayload(t *testing.T) {
	req := &domain.SaveQuotationRequest{
		Title:        "Old client",
		CustomerName: "C",
		Memo:         `{"expiryDate":"7 days","conditions":"cash"}`,
		ImageLayout:  "/uploads/9_layout.png",
		Items: []domain.LineItemRequest{
			{Quantity: 1, UnitPrice: 10},
			{Section: "detail", Quantity: 2, UnitPrice: 3},
		},
	}

	doc, err := mapper.DocumentFromRequest(req)
	require.NoError(t, err)
	assert.Len(t, doc.Main, 1)
	assert.Len(t, doc.Detail, 1)
	require.Len(t, doc.Tabs.Tabs, 4)
	assert.Equal(t, "/uploads/9_layout.png", doc.Tabs.Tabs[0].ImageURL)
	assert.Equal(t, "7 days", doc.ExpiryDate)
}

func TestDocumentFromRequest_RejectsUnknownSectionAndBadDate(t *testing.T) {
	req := &domain.SaveQuotationRequest{
		Title:         "T",
		CustomerName:  "C",
		QuotationDate: "02/05/2026",
		Items:         []domain.LineItemRequest{{Section: "nowhere"}},
	}

	_, err := mapper.DocumentFromRequest(req)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "quotationDate")
	assert.Contains(t, ve.Fields, "items[0].section")
}

func TestToQuotationSummaryDTO(t *testing.T) {
	s := &domain.QuotationSummary{ID: uuid.New(), Title: "T", GrandTotal: 110, EditorName: "Kim"}
	dto := mapper.ToQuotationSummaryDTO(s)
	assert.Equal(t, "Kim", dto.EditorName)
	assert.Nil(t, dto.QuotationDate)
}
