// internal/domain/catalog/entity.go
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Brand represents an auto-parts brand
type Brand struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;size:100;index" json:"name"`
	Country   string    `gorm:"size:50" json:"country"`
	Site      string    `gorm:"size:255" json:"site"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Parts []Part `gorm:"foreignKey:BrandID" json:"parts,omitempty"`
}

// Warehouse represents a storage location
type Warehouse struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;size:200" json:"name"`
	Address   string    `gorm:"type:text" json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Parts []Part `gorm:"foreignKey:WarehouseID" json:"parts,omitempty"`
}

// Part represents an auto part in the catalog.
//
// stock, reserve and available form the inventory ledger: available is always
// derived as max(0, stock - reserve) and never written independently.
type Part struct {
	ID                 uint   `gorm:"primaryKey" json:"id"`
	IsActive           bool   `gorm:"default:true" json:"is_active"`
	Title              string `gorm:"not null;size:200" json:"title"`
	Label              string `gorm:"size:100" json:"label"`
	OriginalNumber     string `gorm:"size:50;index" json:"original_number"`
	ManufacturerNumber string `gorm:"size:50;index" json:"manufacturer_number"`

	BrandID     uint `gorm:"not null;index" json:"brand_id"`
	WarehouseID uint `gorm:"not null;index" json:"warehouse_id"`

	Quantity  int `gorm:"default:0" json:"quantity"`
	Stock     int `gorm:"default:0" json:"stock"`
	Reserve   int `gorm:"default:0" json:"reserve"`
	Available int `gorm:"default:0;index" json:"available"`

	PriceOpt    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_opt"`
	CostPrice   decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"cost_price"`
	Description string          `gorm:"type:text" json:"description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Brand     Brand       `gorm:"foreignKey:BrandID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"brand"`
	Warehouse Warehouse   `gorm:"foreignKey:WarehouseID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"warehouse"`
	Images    []PartImage `gorm:"foreignKey:PartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images,omitempty"`
}

// PartImage represents an image attached to a part
type PartImage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PartID     uint      `gorm:"not null;index" json:"part_id"`
	ImageURL   string    `gorm:"size:500" json:"image_url"`
	AltText    string    `gorm:"size:200" json:"alt_text"`
	OrderIndex int       `gorm:"default:0" json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName overrides
func (Brand) TableName() string     { return "brands" }
func (Warehouse) TableName() string { return "warehouses" }
func (Part) TableName() string      { return "parts" }
func (PartImage) TableName() string { return "part_images" }

// RecalculateAvailable derives the sellable quantity from stock and reserve.
// Clamped at zero: reserve can exceed stock when concurrent writers race.
func (p *Part) RecalculateAvailable() {
	available := p.Stock - p.Reserve
	if available < 0 {
		available = 0
	}
	p.Available = available
}

// BeforeSave hook keeps available consistent on every persistence path
func (p *Part) BeforeSave(tx *gorm.DB) error {
	p.RecalculateAvailable()
	return nil
}

// IsLowStock reports whether the part is at or below the given threshold
func (p *Part) IsLowStock(threshold int) bool {
	return p.Available <= threshold
}

// IsOutOfStock reports whether nothing is left to sell
func (p *Part) IsOutOfStock() bool {
	return p.Available <= 0
}

// CanFulfill reports whether an order line of the given quantity is coverable
func (p *Part) CanFulfill(quantity int) bool {
	return quantity > 0 && p.Available >= quantity
}
