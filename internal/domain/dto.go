package domain

import (
	"github.com/google/uuid"
)

// DateLayout is the wire format of quotation dates
const DateLayout = "2006-01-02"

// Request DTOs

// SaveQuotationRequest is the payload of both create and update.
// Totals sent by the client are accepted for compatibility but recomputed server-side.
type SaveQuotationRequest struct {
	Title            string            `json:"title" validate:"required,max=255"`
	CustomerName     string            `json:"customerName" validate:"required,max=255"`
	CustomerRef      string            `json:"customerRef,omitempty" validate:"max=255"`
	QuotationDate    string            `json:"quotationDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Items            []LineItemRequest `json:"items" validate:"dive"`
	TotalAmount      float64           `json:"totalAmount,omitempty"`
	VAT              float64           `json:"vat,omitempty"`
	GrandTotal       float64           `json:"grandTotal,omitempty"`
	ImageLayout      string            `json:"imageLayout,omitempty" validate:"max=500"`
	ImageComponent   string            `json:"imageComponent,omitempty" validate:"max=500"`
	ImageMaintenance string            `json:"imageMaintenance,omitempty" validate:"max=500"`
	ImageSchedule    string            `json:"imageSchedule,omitempty" validate:"max=500"`
	// Memo is the serialized Memo value built by the client
	Memo string `json:"memo,omitempty"`
}

type LineItemRequest struct {
	Section   string  `json:"section,omitempty" validate:"max=64"`
	Category  string  `json:"category,omitempty" validate:"max=200"`
	Name      string  `json:"name,omitempty" validate:"max=500"`
	Spec      string  `json:"spec,omitempty" validate:"max=500"`
	Unit      string  `json:"unit,omitempty" validate:"max=50"`
	Quantity  float64 `json:"quantity" validate:"gte=0"`
	UnitPrice float64 `json:"unitPrice" validate:"gte=0"`
	Remarks   string  `json:"remarks,omitempty"`
}

type AuthCallbackRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// Response DTOs

type QuotationDTO struct {
	ID               uuid.UUID     `json:"id"`
	Title            string        `json:"title"`
	CustomerName     string        `json:"customerName"`
	CustomerRef      string        `json:"customerRef"`
	QuotationDate    *string       `json:"quotationDate,omitempty"`
	TotalAmount      float64       `json:"totalAmount"`
	VAT              float64       `json:"vat"`
	GrandTotal       float64       `json:"grandTotal"`
	Memo             string        `json:"memo"`
	ImageLayout      string        `json:"imageLayout"`
	ImageComponent   string        `json:"imageComponent"`
	ImageMaintenance string        `json:"imageMaintenance"`
	ImageSchedule    string        `json:"imageSchedule"`
	EditorID         *uuid.UUID    `json:"editorId,omitempty"`
	EditorName       string        `json:"editorName,omitempty"`
	Items            []LineItemDTO `json:"items"`
	CreatedAt        string        `json:"createdAt"` // ISO 8601
	UpdatedAt        string        `json:"updatedAt"` // ISO 8601
}

type LineItemDTO struct {
	Section     string  `json:"section"`
	Category    string  `json:"category"`
	Name        string  `json:"name"`
	Spec        string  `json:"spec"`
	Unit        string  `json:"unit"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	SupplyPrice float64 `json:"supplyPrice"`
	Remarks     string  `json:"remarks"`
	SortOrder   int     `json:"sortOrder"`
}

type QuotationSummaryDTO struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	CustomerName  string    `json:"customerName"`
	CustomerRef   string    `json:"customerRef,omitempty"`
	QuotationDate *string   `json:"quotationDate,omitempty"`
	GrandTotal    float64   `json:"grandTotal"`
	EditorName    string    `json:"editorName,omitempty"`
	CreatedAt     string    `json:"createdAt"`
	UpdatedAt     string    `json:"updatedAt"`
}

type IDResponse struct {
	ID uuid.UUID `json:"id"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type UploadResponse struct {
	Path string `json:"path"`
}

type SessionUserDTO struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       UserRole  `json:"role"`
	IsApproved bool      `json:"isApproved"`
}
