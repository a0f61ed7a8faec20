package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an id so inserts do not depend on a database-side uuid default
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// UserRole is the coarse role stored on a user row
type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN"
)

// User is a person allowed to sign in once approved
type User struct {
	BaseModel
	Email       string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	Name        string     `gorm:"type:varchar(200);not null"`
	Role        UserRole   `gorm:"type:varchar(50);not null"`
	IsApproved  bool       `gorm:"not null;default:false;column:is_approved"`
	LastLoginAt *time.Time `gorm:"column:last_login_at"`
}

// Quotation is the persisted header row of a quotation document
type Quotation struct {
	BaseModel
	Title         string     `gorm:"type:varchar(255);not null"`
	CustomerName  string     `gorm:"type:varchar(255);not null;column:customer_name"`
	CustomerRef   string     `gorm:"type:varchar(255);column:customer_ref"`
	QuotationDate *time.Time `gorm:"type:date;column:quotation_date"`
	TotalAmount   float64    `gorm:"type:decimal(15,2);not null;column:total_amount"`
	VAT           float64    `gorm:"type:decimal(15,2);not null;column:vat"`
	GrandTotal    float64    `gorm:"type:decimal(15,2);not null;column:grand_total"`
	Memo          string     `gorm:"type:text"`

	// Single-purpose image columns written before tabs were configurable
	ImageLayout      string `gorm:"type:varchar(500);column:image_layout"`
	ImageComponent   string `gorm:"type:varchar(500);column:image_component"`
	ImageMaintenance string `gorm:"type:varchar(500);column:image_maintenance"`
	ImageSchedule    string `gorm:"type:varchar(500);column:image_schedule"`

	EditorID *uuid.UUID      `gorm:"type:uuid;column:editor_id;index"`
	Editor   *User           `gorm:"foreignKey:EditorID;constraint:OnDelete:SET NULL"`
	Items    []QuotationItem `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE"`
}

// QuotationItem is one persisted line of the main or detail table
type QuotationItem struct {
	BaseModel
	QuotationID uuid.UUID `gorm:"type:uuid;not null;index"`
	Section     string    `gorm:"type:varchar(64);not null"`
	Category    string    `gorm:"type:varchar(200)"`
	Name        string    `gorm:"type:varchar(500)"`
	Spec        string    `gorm:"type:varchar(500)"`
	Unit        string    `gorm:"type:varchar(50)"`
	Quantity    float64   `gorm:"type:decimal(15,3);not null"`
	UnitPrice   float64   `gorm:"type:decimal(15,2);not null;column:unit_price"`
	SupplyPrice float64   `gorm:"type:decimal(15,2);not null;column:supply_price"`
	Remarks     string    `gorm:"type:text"`
	SortOrder   int       `gorm:"not null;column:sort_order"`
}

// LegacyImages holds the four image columns in their fixed order
func (q *Quotation) LegacyImages() LegacyImages {
	return LegacyImages{
		Layout:      q.ImageLayout,
		Component:   q.ImageComponent,
		Maintenance: q.ImageMaintenance,
		Schedule:    q.ImageSchedule,
	}
}

// QuotationSummary is one row of the quotation list
type QuotationSummary struct {
	ID            uuid.UUID
	Title         string
	CustomerName  string
	CustomerRef   string
	QuotationDate *time.Time
	GrandTotal    float64
	EditorName    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
