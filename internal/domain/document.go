package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultExpiryTerms = "30 days from the quotation date"
	DefaultConditions  = "1. Payment: 50% on contract, 50% on completion (VAT excluded)\n" +
		"2. Construction period: to be agreed after contract\n" +
		"3. Notes: subject to change depending on site conditions"
)

var vatRate = decimal.New(1, -1)

// SectionID identifies one ordered item list of a document.
// The fixed sections are main and detail; extra detail sheets use their tab id.
type SectionID string

const (
	SectionMain   SectionID = "main"
	SectionDetail SectionID = "detail"
)

// Item is one line of a section
type Item struct {
	Category  string  `json:"category"`
	Name      string  `json:"name"`
	Spec      string  `json:"spec"`
	Unit      string  `json:"unit"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Remarks   string  `json:"remarks"`
	// ReadOnly marks synthesized summary lines; they are never persisted
	ReadOnly bool `json:"readOnly,omitempty"`
}

// Amount returns quantity × unit price
func (i Item) Amount() decimal.Decimal {
	return decimal.NewFromFloat(i.Quantity).Mul(decimal.NewFromFloat(i.UnitPrice))
}

// SupplyPrice is Amount as the float stored in the supply_price column
func (i Item) SupplyPrice() float64 {
	return i.Amount().Round(2).InexactFloat64()
}

// Header holds the identifying fields of a quotation
type Header struct {
	Title         string
	CustomerName  string
	CustomerRef   string
	QuotationDate *time.Time
}

// Terms are the free-text commercial terms kept in the memo
type Terms struct {
	ExpiryDate   string
	Conditions   string
	DeliveryDate string
}

// Totals are the derived money values of a document
type Totals struct {
	Subtotal   decimal.Decimal
	VAT        decimal.Decimal
	GrandTotal decimal.Decimal
}

// ComputeTotals applies VAT = floor(subtotal × 0.1) and grand total = subtotal + VAT
func ComputeTotals(subtotal decimal.Decimal) Totals {
	vat := subtotal.Mul(vatRate).Floor()
	return Totals{Subtotal: subtotal, VAT: vat, GrandTotal: subtotal.Add(vat)}
}

// Document is the in-memory form of one quotation
type Document struct {
	ID uuid.UUID
	Header
	Terms

	// Main is the cover table, Detail the primary detail sheet.
	// Extra detail sheets keep their items on their tab in Tabs.
	Main   []Item
	Detail []Item
	Tabs   TabConfig

	EditorID   *uuid.UUID
	EditorName string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewDocument returns an empty document with default terms and one blank row per section
func NewDocument(now time.Time) *Document {
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return &Document{
		Header: Header{QuotationDate: &date},
		Terms: Terms{
			ExpiryDate: DefaultExpiryTerms,
			Conditions: DefaultConditions,
		},
		Main:   []Item{{}},
		Detail: []Item{{}},
		Tabs:   DefaultTabConfig(),
	}
}

// IsNew reports whether the document has not been persisted yet
func (d *Document) IsNew() bool {
	return d.ID == uuid.Nil
}

// Section returns a pointer to the item list for id.
// Image tabs and unknown ids have no section.
func (d *Document) Section(id SectionID) (*[]Item, bool) {
	switch id {
	case SectionMain:
		return &d.Main, true
	case SectionDetail:
		return &d.Detail, true
	}
	tab, ok := d.Tabs.Find(string(id))
	if !ok || tab.Kind != TabKindDetail {
		return nil, false
	}
	return &tab.Items, true
}

// SectionIDs lists every editable section in display order
func (d *Document) SectionIDs() []SectionID {
	ids := []SectionID{SectionMain, SectionDetail}
	for _, t := range d.Tabs.Tabs {
		if t.Kind == TabKindDetail {
			ids = append(ids, SectionID(t.ID))
		}
	}
	return ids
}

func sum(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if it.ReadOnly {
			continue
		}
		total = total.Add(it.Amount())
	}
	return total
}

// Totals sums the main section and every extra detail sheet.
// The primary detail sheet breaks down the main table and is not added again.
func (d *Document) Totals() Totals {
	subtotal := sum(d.Main)
	for _, t := range d.Tabs.Tabs {
		if t.Kind == TabKindDetail {
			subtotal = subtotal.Add(sum(t.Items))
		}
	}
	return ComputeTotals(subtotal)
}

// SummaryLines returns one read-only line per extra detail sheet for display under the main table
func (d *Document) SummaryLines() []Item {
	var lines []Item
	for _, t := range d.Tabs.Tabs {
		if t.Kind != TabKindDetail {
			continue
		}
		lines = append(lines, Item{
			Name:      t.Label,
			Unit:      "lot",
			Quantity:  1,
			UnitPrice: sum(t.Items).InexactFloat64(),
			ReadOnly:  true,
		})
	}
	return lines
}

// DisplayMain is the main table followed by the detail sheet summary lines
func (d *Document) DisplayMain() []Item {
	out := make([]Item, 0, len(d.Main)+len(d.Tabs.Tabs))
	out = append(out, d.Main...)
	return append(out, d.SummaryLines()...)
}

// Memo builds the memo value persisted with the document
func (d *Document) Memo() Memo {
	tabs := d.Tabs
	tabs.Tabs = make([]Tab, len(d.Tabs.Tabs))
	for i, t := range d.Tabs.Tabs {
		t.Items = stripReadOnly(t.Items)
		tabs.Tabs[i] = t
	}
	return Memo{
		Version:      MemoVersion,
		ExpiryDate:   d.ExpiryDate,
		Conditions:   d.Conditions,
		DeliveryDate: d.DeliveryDate,
		TabConfig:    &tabs,
	}
}

// ApplyMemo copies terms and tab configuration from a parsed memo
func (d *Document) ApplyMemo(m Memo) {
	d.ExpiryDate = m.ExpiryDate
	d.Conditions = m.Conditions
	d.DeliveryDate = m.DeliveryDate
	if m.TabConfig != nil {
		d.Tabs = *m.TabConfig
	} else {
		d.Tabs = DefaultTabConfig()
	}
}

// Clone returns a deep copy without identity or timestamps
func (d *Document) Clone() *Document {
	c := &Document{
		Header:   d.Header,
		Terms:    d.Terms,
		Main:     append([]Item(nil), d.Main...),
		Detail:   append([]Item(nil), d.Detail...),
		Tabs:     d.Tabs,
		EditorID: d.EditorID,
	}
	if d.QuotationDate != nil {
		date := *d.QuotationDate
		c.QuotationDate = &date
	}
	c.Tabs.Tabs = make([]Tab, len(d.Tabs.Tabs))
	for i, t := range d.Tabs.Tabs {
		t.Items = append([]Item(nil), t.Items...)
		c.Tabs.Tabs[i] = t
	}
	return c
}

// Validate checks the fields required before a document may be persisted
func (d *Document) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(d.Title) == "" {
		fields["title"] = "title is required"
	}
	if strings.TrimSpace(d.CustomerName) == "" {
		fields["customerName"] = "customerName is required"
	}
	for _, id := range d.SectionIDs() {
		items, _ := d.Section(id)
		for i, it := range *items {
			if it.Quantity < 0 {
				fields[fmt.Sprintf("%s[%d].quantity", id, i)] = "Must be greater than or equal to 0"
			}
			if it.UnitPrice < 0 {
				fields[fmt.Sprintf("%s[%d].unitPrice", id, i)] = "Must be greater than or equal to 0"
			}
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func stripReadOnly(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if !it.ReadOnly {
			out = append(out, it)
		}
	}
	return out
}

// ItemPlacer distributes flat tagged items into the sections of a document.
// Items tagged with an extra sheet id only fill sheets that had no items of their own
// when the placer was created, so the copy kept in the memo wins.
type ItemPlacer struct {
	doc    *Document
	locked map[string]bool
}

func NewItemPlacer(doc *Document) *ItemPlacer {
	locked := make(map[string]bool, len(doc.Tabs.Tabs))
	for _, t := range doc.Tabs.Tabs {
		locked[t.ID] = len(t.Items) > 0
	}
	return &ItemPlacer{doc: doc, locked: locked}
}

// Place appends it to the section named by tag and reports whether the tag is known
func (p *ItemPlacer) Place(tag string, it Item) bool {
	switch SectionID(tag) {
	case SectionMain, "":
		p.doc.Main = append(p.doc.Main, it)
		return true
	case SectionDetail:
		p.doc.Detail = append(p.doc.Detail, it)
		return true
	}
	section, ok := p.doc.Section(SectionID(tag))
	if !ok {
		return false
	}
	if !p.locked[tag] {
		*section = append(*section, it)
	}
	return true
}
