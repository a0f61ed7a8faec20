package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	maxSheetNameLength = 31
	maxEmbeddedImage   = 10 << 20
)

var itemColumns = []string{"No", "Category", "Name", "Spec", "Unit", "Quantity", "Unit price", "Amount", "Remarks"}

var pictureExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".tif": true, ".tiff": true, ".svg": true,
}

// ImageSource opens uploaded images referenced by image tabs
type ImageSource interface {
	ObjectName(publicPath string) (string, bool)
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
}

// ExportFile is a rendered workbook
type ExportFile struct {
	Filename string
	Data     []byte
}

// ExportService renders quotations as printable xlsx workbooks, one sheet per printable tab
type ExportService struct {
	quotations *QuotationService
	images     ImageSource
	logger     *zap.Logger
}

// NewExportService creates an ExportService. images may be nil, in which case image tabs list their URL only.
func NewExportService(quotations *QuotationService, images ImageSource, logger *zap.Logger) *ExportService {
	return &ExportService{quotations: quotations, images: images, logger: logger}
}

// Export renders quotation id
func (s *ExportService) Export(ctx context.Context, id uuid.UUID) (*ExportFile, error) {
	doc, err := s.quotations.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	f, err := s.Render(ctx, doc)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return &ExportFile{Filename: exportFilename(doc), Data: buf.Bytes()}, nil
}

// Render builds the workbook for doc. Tabs whose print flag is off are left out.
func (s *ExportService) Render(ctx context.Context, doc *domain.Document) (*excelize.File, error) {
	r := &renderer{f: excelize.NewFile(), used: map[string]bool{}}

	bold, err := r.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	money, err := r.f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	r.bold, r.money = bold, money

	if doc.Tabs.CoverPrint {
		if err := r.cover(doc); err != nil {
			return nil, err
		}
	}
	if doc.Tabs.DetailPrint {
		if err := r.itemSheet(doc.Tabs.DetailLabel, doc.Detail); err != nil {
			return nil, err
		}
	}
	for _, tab := range doc.Tabs.Tabs {
		if !tab.Print {
			continue
		}
		switch tab.Kind {
		case domain.TabKindDetail:
			err = r.itemSheet(tab.Label, tab.Items)
		default:
			err = r.imageSheet(tab, s.loadImage(ctx, tab.ImageURL))
		}
		if err != nil {
			return nil, err
		}
	}

	if len(r.used) == 0 {
		_ = r.f.Close()
		return nil, &domain.ValidationError{Fields: map[string]string{"tabConfig": "Select at least one tab to print"}}
	}
	// NewFile starts with Sheet1; drop it once real sheets exist
	if !r.used[strings.ToLower("Sheet1")] {
		if err := r.f.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("failed to remove default sheet: %w", err)
		}
	}
	r.f.SetActiveSheet(0)
	return r.f, nil
}

// loadImage returns the picture bytes and extension for an uploaded image, or nil
func (s *ExportService) loadImage(ctx context.Context, url string) *excelize.Picture {
	if s.images == nil || url == "" {
		return nil
	}
	ext := strings.ToLower(path.Ext(url))
	if !pictureExtensions[ext] {
		return nil
	}
	name, ok := s.images.ObjectName(url)
	if !ok {
		return nil
	}
	rc, _, err := s.images.Open(ctx, name)
	if err != nil {
		s.logger.Warn("image not embedded in export", zap.String("url", url), zap.Error(err))
		return nil
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxEmbeddedImage+1))
	if err != nil || len(data) > maxEmbeddedImage {
		s.logger.Warn("image not embedded in export", zap.String("url", url), zap.Error(err))
		return nil
	}
	return &excelize.Picture{
		Extension: ext,
		File:      data,
		Format:    &excelize.GraphicOptions{AutoFit: true, LockAspectRatio: true},
	}
}

type renderer struct {
	f     *excelize.File
	used  map[string]bool
	bold  int
	money int
}

// sheet creates a uniquely named sheet for label and returns its name
func (r *renderer) sheet(label string) (string, error) {
	base := sheetName(label)
	name := base
	for i := 2; r.used[strings.ToLower(name)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		name = truncateRunes(base, maxSheetNameLength-len(suffix)) + suffix
	}
	r.used[strings.ToLower(name)] = true

	if name == "Sheet1" {
		return name, nil
	}
	if _, err := r.f.NewSheet(name); err != nil {
		return "", fmt.Errorf("failed to create sheet %q: %w", name, err)
	}
	return name, nil
}

func (r *renderer) cover(doc *domain.Document) error {
	sh, err := r.sheet(doc.Tabs.CoverLabel)
	if err != nil {
		return err
	}

	date := ""
	if doc.QuotationDate != nil {
		date = doc.QuotationDate.Format(domain.DateLayout)
	}
	header := [][]interface{}{
		{"Quotation", doc.Title},
		{"Customer", doc.CustomerName},
		{"Attention", doc.CustomerRef},
		{"Date", date},
	}
	row := 1
	for _, line := range header {
		if err := r.f.SetSheetRow(sh, cell(1, row), &line); err != nil {
			return err
		}
		_ = r.f.SetCellStyle(sh, cell(1, row), cell(1, row), r.bold)
		row++
	}

	row++
	row, err = r.table(sh, row, doc.DisplayMain())
	if err != nil {
		return err
	}

	totals := doc.Totals()
	for _, line := range []struct {
		label string
		value float64
	}{
		{"Subtotal", totals.Subtotal.InexactFloat64()},
		{"VAT", totals.VAT.InexactFloat64()},
		{"Grand total", totals.GrandTotal.InexactFloat64()},
	} {
		_ = r.f.SetCellValue(sh, cell(7, row), line.label)
		_ = r.f.SetCellValue(sh, cell(8, row), line.value)
		_ = r.f.SetCellStyle(sh, cell(7, row), cell(7, row), r.bold)
		_ = r.f.SetCellStyle(sh, cell(8, row), cell(8, row), r.money)
		row++
	}

	row++
	for _, line := range [][2]string{
		{"Valid until", doc.ExpiryDate},
		{"Delivery", doc.DeliveryDate},
		{"Conditions", doc.Conditions},
	} {
		_ = r.f.SetCellValue(sh, cell(1, row), line[0])
		_ = r.f.SetCellValue(sh, cell(2, row), line[1])
		_ = r.f.SetCellStyle(sh, cell(1, row), cell(1, row), r.bold)
		row++
	}

	return r.widths(sh)
}

func (r *renderer) itemSheet(label string, items []domain.Item) error {
	sh, err := r.sheet(label)
	if err != nil {
		return err
	}
	_ = r.f.SetCellValue(sh, "A1", label)
	_ = r.f.SetCellStyle(sh, "A1", "A1", r.bold)

	row, err := r.table(sh, 3, items)
	if err != nil {
		return err
	}

	subtotal := 0.0
	for _, it := range items {
		subtotal += it.SupplyPrice()
	}
	_ = r.f.SetCellValue(sh, cell(7, row), "Subtotal")
	_ = r.f.SetCellValue(sh, cell(8, row), subtotal)
	_ = r.f.SetCellStyle(sh, cell(7, row), cell(7, row), r.bold)
	_ = r.f.SetCellStyle(sh, cell(8, row), cell(8, row), r.money)
	return r.widths(sh)
}

func (r *renderer) imageSheet(tab domain.Tab, pic *excelize.Picture) error {
	sh, err := r.sheet(tab.Label)
	if err != nil {
		return err
	}
	_ = r.f.SetCellValue(sh, "A1", tab.Label)
	_ = r.f.SetCellStyle(sh, "A1", "A1", r.bold)

	if pic == nil {
		_ = r.f.SetCellValue(sh, "A3", tab.ImageURL)
		return nil
	}
	if err := r.f.MergeCell(sh, "A3", "J40"); err != nil {
		return err
	}
	if err := r.f.AddPictureFromBytes(sh, "A3", pic); err != nil {
		_ = r.f.SetCellValue(sh, "A3", tab.ImageURL)
	}
	return nil
}

// table writes the item header at row and one line per item; it returns the next free row
func (r *renderer) table(sh string, row int, items []domain.Item) (int, error) {
	cols := make([]interface{}, len(itemColumns))
	for i, c := range itemColumns {
		cols[i] = c
	}
	if err := r.f.SetSheetRow(sh, cell(1, row), &cols); err != nil {
		return 0, err
	}
	_ = r.f.SetCellStyle(sh, cell(1, row), cell(len(itemColumns), row), r.bold)
	row++

	for i, it := range items {
		line := []interface{}{
			i + 1, it.Category, it.Name, it.Spec, it.Unit,
			it.Quantity, it.UnitPrice, it.SupplyPrice(), it.Remarks,
		}
		if err := r.f.SetSheetRow(sh, cell(1, row), &line); err != nil {
			return 0, err
		}
		_ = r.f.SetCellStyle(sh, cell(7, row), cell(8, row), r.money)
		row++
	}
	return row, nil
}

func (r *renderer) widths(sh string) error {
	for col, width := range map[string]float64{"A": 12, "B": 16, "C": 30, "D": 24, "E": 8, "F": 10, "G": 14, "H": 16, "I": 24} {
		if err := r.f.SetColWidth(sh, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// sheetName strips the characters Excel forbids in sheet names and caps the length
func sheetName(label string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(label))
	clean = strings.Trim(clean, "'")
	if clean == "" {
		clean = "Sheet"
	}
	return truncateRunes(clean, maxSheetNameLength)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func exportFilename(doc *domain.Document) string {
	base := SanitizeFilename(strings.NewReplacer("/", "_", `\`, "_").Replace(doc.Title))
	if base == "" {
		base = "quotation"
	}
	return base + ".xlsx"
}
