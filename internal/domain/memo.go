package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MemoVersion is written into every memo this service produces.
// Version 1 memos only carried expiryDate and conditions.
const MemoVersion = 2

// TabKind distinguishes the two kinds of configurable tab
type TabKind string

const (
	TabKindImage  TabKind = "image"
	TabKindDetail TabKind = "detail"
)

// Ids of the two tabs every quotation has
const (
	TabCover  = "cover"
	TabDetail = "detail"
)

// Ids used for the tabs synthesized from the legacy image columns
const (
	LegacyTabLayout      = "layout"
	LegacyTabComponent   = "component"
	LegacyTabMaintenance = "maintenance"
	LegacyTabSchedule    = "schedule"
)

const (
	DefaultCoverLabel  = "1. Quotation (cover)"
	DefaultDetailLabel = "2. Cost breakdown"
)

// Tab is one extra page of the document after the cover and primary detail sheet
type Tab struct {
	ID       string  `json:"id"`
	Kind     TabKind `json:"kind"`
	Label    string  `json:"label"`
	ImageURL string  `json:"imageUrl,omitempty"`
	Items    []Item  `json:"items,omitempty"`
	Print    bool    `json:"print"`
}

// TabConfig is the layout of a quotation: labels of the fixed tabs plus ordered extra tabs
type TabConfig struct {
	CoverLabel  string `json:"coverLabel"`
	DetailLabel string `json:"detailLabel"`
	CoverPrint  bool   `json:"coverPrint"`
	DetailPrint bool   `json:"detailPrint"`
	Tabs        []Tab  `json:"tabs"`
}

// Memo is the structured value stored in the quotation memo column
type Memo struct {
	Version      int        `json:"version,omitempty"`
	ExpiryDate   string     `json:"expiryDate"`
	Conditions   string     `json:"conditions"`
	DeliveryDate string     `json:"deliveryDate"`
	TabConfig    *TabConfig `json:"tabConfig,omitempty"`
}

// LegacyImages are the image URLs of the four pre-tab image columns
type LegacyImages struct {
	Layout      string
	Component   string
	Maintenance string
	Schedule    string
}

// legacyTabs lists the legacy tabs in display order with the column each one maps to
func (l LegacyImages) legacyTabs() []Tab {
	return []Tab{
		{ID: LegacyTabLayout, Kind: TabKindImage, Label: "Layout", ImageURL: l.Layout, Print: true},
		{ID: LegacyTabComponent, Kind: TabKindImage, Label: "Main components", ImageURL: l.Component, Print: true},
		{ID: LegacyTabMaintenance, Kind: TabKindImage, Label: "Maintenance", ImageURL: l.Maintenance, Print: true},
		{ID: LegacyTabSchedule, Kind: TabKindImage, Label: "Schedule", ImageURL: l.Schedule, Print: true},
	}
}

// DefaultTabConfig returns the layout of a brand new quotation
func DefaultTabConfig() TabConfig {
	return TabConfig{
		CoverLabel:  DefaultCoverLabel,
		DetailLabel: DefaultDetailLabel,
		CoverPrint:  true,
		DetailPrint: true,
		Tabs:        []Tab{},
	}
}

// LegacyTabConfig rebuilds the four-image layout used before tabs were configurable
func LegacyTabConfig(images LegacyImages) TabConfig {
	cfg := DefaultTabConfig()
	cfg.Tabs = images.legacyTabs()
	return cfg
}

// ParseMemo decodes a stored memo and migrates it to the current version.
// An empty memo yields the defaults. Text that is not JSON is kept as conditions.
// A memo without tabConfig gets the legacy layout built from images.
func ParseMemo(raw string, images LegacyImages) Memo {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		tabs := LegacyTabConfig(images)
		return Memo{
			Version:    MemoVersion,
			ExpiryDate: DefaultExpiryTerms,
			Conditions: DefaultConditions,
			TabConfig:  &tabs,
		}
	}

	var memo Memo
	if err := json.Unmarshal([]byte(raw), &memo); err != nil {
		tabs := LegacyTabConfig(images)
		return Memo{Version: MemoVersion, Conditions: raw, TabConfig: &tabs}
	}

	if memo.TabConfig == nil {
		tabs := LegacyTabConfig(images)
		memo.TabConfig = &tabs
	}
	memo.TabConfig.normalize()
	memo.Version = MemoVersion
	return memo
}

// Encode serializes the memo at the current version
func (m Memo) Encode() (string, error) {
	m.Version = MemoVersion
	if m.TabConfig != nil {
		m.TabConfig.normalize()
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode memo: %w", err)
	}
	return string(data), nil
}

// normalize fills fixed-tab labels and drops tabs with duplicate or empty ids
func (c *TabConfig) normalize() {
	if c.CoverLabel == "" {
		c.CoverLabel = DefaultCoverLabel
	}
	if c.DetailLabel == "" {
		c.DetailLabel = DefaultDetailLabel
	}
	seen := map[string]bool{TabCover: true, TabDetail: true}
	tabs := make([]Tab, 0, len(c.Tabs))
	for _, t := range c.Tabs {
		if t.ID == "" || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		if t.Kind != TabKindDetail {
			t.Kind = TabKindImage
			t.Items = nil
		}
		tabs = append(tabs, t)
	}
	c.Tabs = tabs
}

// Find returns the extra tab with the given id
func (c *TabConfig) Find(id string) (*Tab, bool) {
	for i := range c.Tabs {
		if c.Tabs[i].ID == id {
			return &c.Tabs[i], true
		}
	}
	return nil, false
}

// ImageURLs returns every image URL referenced by the tabs
func (c *TabConfig) ImageURLs() []string {
	var urls []string
	for _, t := range c.Tabs {
		if t.Kind == TabKindImage && t.ImageURL != "" {
			urls = append(urls, t.ImageURL)
		}
	}
	return urls
}

// LegacyImages projects the legacy-id image tabs back onto the four image columns
func (c *TabConfig) LegacyImages() LegacyImages {
	var images LegacyImages
	for _, t := range c.Tabs {
		if t.Kind != TabKindImage {
			continue
		}
		switch t.ID {
		case LegacyTabLayout:
			images.Layout = t.ImageURL
		case LegacyTabComponent:
			images.Component = t.ImageURL
		case LegacyTabMaintenance:
			images.Maintenance = t.ImageURL
		case LegacyTabSchedule:
			images.Schedule = t.ImageURL
		}
	}
	return images
}
