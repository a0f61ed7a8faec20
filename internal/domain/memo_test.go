package domain_test

import (
	"testing"

	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMemo_LegacyWithoutTabConfig(t *testing.T) {
	images := domain.LegacyImages{Layout: "/uploads/1_layout.png", Schedule: "/uploads/2_plan.png"}
	memo := domain.ParseMemo(`{"expiryDate":"30 days","conditions":"cash"}`, images)

	assert.Equal(t, domain.MemoVersion, memo.Version)
	assert.Equal(t, "30 days", memo.ExpiryDate)
	assert.Equal(t, "cash", memo.Conditions)
	require.NotNil(t, memo.TabConfig)
	require.Len(t, memo.TabConfig.Tabs, 4)

	ids := []string{}
	for _, tab := range memo.TabConfig.Tabs {
		ids = append(ids, tab.ID)
		assert.Equal(t, domain.TabKindImage, tab.Kind)
	}
	assert.Equal(t, []string{"layout", "component", "maintenance", "schedule"}, ids)
	assert.Equal(t, "/uploads/1_layout.png", memo.TabConfig.Tabs[0].ImageURL)
	assert.Equal(t, "/uploads/2_plan.png", memo.TabConfig.Tabs[3].ImageURL)
}

func TestParseMemo_EmptyUsesDefaults(t *testing.T) {
	memo := domain.ParseMemo("", domain.LegacyImages{})
	assert.Equal(t, domain.DefaultExpiryTerms, memo.ExpiryDate)
	assert.Equal(t, domain.DefaultConditions, memo.Conditions)
	require.NotNil(t, memo.TabConfig)
	assert.Equal(t, domain.DefaultCoverLabel, memo.TabConfig.CoverLabel)
}

func TestParseMemo_PlainTextKeptAsConditions(t *testing.T) {
	memo := domain.ParseMemo("call before delivery", domain.LegacyImages{})
	assert.Equal(t, "call before delivery", memo.Conditions)
	assert.NotNil(t, memo.TabConfig)
}

func TestParseMemo_DropsDuplicateAndFixedTabIDs(t *testing.T) {
	raw := `{"tabConfig":{"coverLabel":"Cover","tabs":[
		{"id":"a","kind":"image","label":"A"},
		{"id":"a","kind":"image","label":"A again"},
		{"id":"cover","kind":"image","label":"Shadow"},
		{"id":"b","kind":"detail","label":"B","items":[{"quantity":1,"unitPrice":2}]}
	]}}`
	memo := domain.ParseMemo(raw, domain.LegacyImages{})

	require.NotNil(t, memo.TabConfig)
	assert.Equal(t, "Cover", memo.TabConfig.CoverLabel)
	assert.Equal(t, domain.DefaultDetailLabel, memo.TabConfig.DetailLabel)
	require.Len(t, memo.TabConfig.Tabs, 2)
	assert.Equal(t, "A", memo.TabConfig.Tabs[0].Label)
	assert.Len(t, memo.TabConfig.Tabs[1].Items, 1)
}

func TestMemo_EncodeRoundTripKeepsTabs(t *testing.T) {
	doc := &domain.Document{
		Terms: domain.Terms{ExpiryDate: "14 days", DeliveryDate: "June"},
		Tabs: domain.TabConfig{CoverLabel: "C", DetailLabel: "D", Tabs: []domain.Tab{
			{ID: "s", Kind: domain.TabKindDetail, Label: "Sheet", Items: []domain.Item{
				{Name: "cable", Quantity: 3, UnitPrice: 7},
				{Name: "summary", ReadOnly: true},
			}},
		}},
	}

	raw, err := doc.Memo().Encode()
	require.NoError(t, err)

	back := domain.ParseMemo(raw, domain.LegacyImages{})
	assert.Equal(t, "14 days", back.ExpiryDate)
	assert.Equal(t, "June", back.DeliveryDate)
	require.Len(t, back.TabConfig.Tabs, 1)
	require.Len(t, back.TabConfig.Tabs[0].Items, 1, "read-only lines are never persisted")
	assert.Equal(t, "cable", back.TabConfig.Tabs[0].Items[0].Name)
}

func TestTabConfig_LegacyImagesProjection(t *testing.T) {
	cfg := domain.LegacyTabConfig(domain.LegacyImages{Component: "/uploads/c.png"})
	cfg.Tabs = append(cfg.Tabs, domain.Tab{ID: "extra", Kind: domain.TabKindImage, ImageURL: "/uploads/e.png"})

	images := cfg.LegacyImages()
	assert.Equal(t, "/uploads/c.png", images.Component)
	assert.Empty(t, images.Layout)
	assert.ElementsMatch(t, []string{"/uploads/c.png", "/uploads/e.png"}, cfg.ImageURLs())
}
