// internal/domain/crm/entity.go
package crm

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Customer category constants
const (
	CategoryNew      = "new"
	CategoryRegular  = "regular"
	CategoryVIP      = "vip"
	CategoryInactive = "inactive"
)

// Classification thresholds
var (
	vipOrdersThreshold   = 10
	vipSpentThreshold    = decimal.NewFromInt(100000)
	regularOrdersMinimum = 3
	inactiveAfter        = 180 * 24 * time.Hour
)

// ValidCategories lists every accepted customer category
var ValidCategories = []string{CategoryNew, CategoryRegular, CategoryVIP, CategoryInactive}

// IsValidCategory reports whether c is a member of the category enum
func IsValidCategory(c string) bool {
	for _, valid := range ValidCategories {
		if c == valid {
			return true
		}
	}
	return false
}

// Customer is the aggregated view of everyone who ever placed an order.
// Statistics fields are derived from delivered orders and recomputed, never
// edited by hand.
type Customer struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"not null;size:200" json:"name"`
	Phone   string `gorm:"uniqueIndex;not null;size:20" json:"phone"`
	Email   string `gorm:"size:255" json:"email"`
	City    string `gorm:"size:100" json:"city"`
	Address string `gorm:"type:text" json:"address"`

	Category      string          `gorm:"not null;size:20;default:'new';index" json:"category"`
	TotalOrders   int             `gorm:"default:0" json:"total_orders"`
	TotalSpent    decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"total_spent"`
	AverageOrder  decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"average_order"`
	LastOrderDate *time.Time      `json:"last_order_date"`

	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	NoteEntries []CustomerNote `gorm:"foreignKey:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"note_entries,omitempty"`
}

// CustomerNote is a dated remark an admin left on a customer
type CustomerNote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CustomerID uint      `gorm:"not null;index" json:"customer_id"`
	Note       string    `gorm:"type:text;not null" json:"note"`
	CreatedBy  *uint     `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName overrides
func (Customer) TableName() string     { return "customers" }
func (CustomerNote) TableName() string { return "customer_notes" }

// PlaceholderName is the stand-in used when an order arrives without a usable
// customer name. It is replaced as soon as a real name shows up.
func PlaceholderName(phone string) string {
	return "Customer " + phone
}

// HasPlaceholderName reports whether the stored name is still the stand-in
func (c *Customer) HasPlaceholderName() bool {
	return c.Name == "" || c.Name == PlaceholderName(c.Phone)
}

// MergeContactInfo fills gaps from order data without clobbering anything an
// admin already curated. Returns true when a field actually changed.
func (c *Customer) MergeContactInfo(name, email, city string) bool {
	changed := false

	name = strings.TrimSpace(name)
	if name != "" && c.HasPlaceholderName() && name != c.Name {
		c.Name = name
		changed = true
	}
	email = strings.TrimSpace(email)
	if email != "" && c.Email == "" {
		c.Email = email
		changed = true
	}
	city = strings.TrimSpace(city)
	if city != "" && c.City == "" {
		c.City = city
		changed = true
	}
	return changed
}

// ClassifyCategory derives the customer category from the recomputed
// statistics. Rules are checked in priority order; when none applies the
// current category is kept.
func ClassifyCategory(current string, totalOrders int, totalSpent decimal.Decimal, lastOrder *time.Time, now time.Time) string {
	if totalOrders == 0 {
		return CategoryNew
	}
	if totalOrders >= vipOrdersThreshold || totalSpent.GreaterThanOrEqual(vipSpentThreshold) {
		return CategoryVIP
	}
	if totalOrders >= regularOrdersMinimum {
		return CategoryRegular
	}
	if lastOrder != nil && now.Sub(*lastOrder) > inactiveAfter {
		return CategoryInactive
	}
	return current
}
