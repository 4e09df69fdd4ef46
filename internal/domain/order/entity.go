// internal/domain/order/entity.go
package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gooddrive/autoparts-backend/internal/domain/catalog"
)

// Order status constants
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// ValidStatuses lists every accepted order status
var ValidStatuses = []string{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// IsValidStatus reports whether s is a member of the status enum
func IsValidStatus(s string) bool {
	for _, valid := range ValidStatuses {
		if s == valid {
			return true
		}
	}
	return false
}

// Order represents a customer order. Customer contact fields are denormalized
// so the order survives CRM edits; order_number and total_amount are frozen at
// creation.
type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderNumber string `gorm:"uniqueIndex;not null;size:30" json:"order_number"`

	CustomerName  string `gorm:"not null;size:200" json:"customer_name"`
	CustomerPhone string `gorm:"not null;size:20;index" json:"customer_phone"`
	CustomerEmail string `gorm:"size:255" json:"customer_email"`

	DeliveryAddress    string `gorm:"type:text" json:"delivery_address"`
	DeliveryCity       string `gorm:"size:100" json:"delivery_city"`
	DeliveryPostalCode string `gorm:"size:20" json:"delivery_postal_code"`

	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Status      string          `gorm:"not null;size:20;default:'pending';index" json:"status"`
	Notes       string          `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items,omitempty"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem represents a single order line. unit_price snapshots the part's
// wholesale price at order time; total_price is derived in BeforeSave.
type OrderItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderID    uint            `gorm:"not null;index" json:"order_id"`
	PartID     uint            `gorm:"not null;index" json:"part_id"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`

	Part catalog.Part `gorm:"foreignKey:PartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"part,omitempty"`
}

// OrderStatusHistory is an append-only record of status changes
type OrderStatusHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	Status    string    `gorm:"not null;size:20" json:"status"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedBy *uint     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// GenerateOrderNumber builds a unique order number: "GD" + timestamp +
// 8-char random suffix, e.g. GD20250901142233A1B2C3D4.
func GenerateOrderNumber() string {
	timestamp := time.Now().Format("20060102150405")
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return "GD" + timestamp + suffix
}

// BeforeCreate assigns the order number once; it is never regenerated
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.OrderNumber == "" {
		o.OrderNumber = GenerateOrderNumber()
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	return nil
}

// BeforeSave derives the line total from quantity and the price snapshot
func (i *OrderItem) BeforeSave(tx *gorm.DB) error {
	i.TotalPrice = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
	return nil
}

// IsTerminal reports whether the order finished its lifecycle
func (o *Order) IsTerminal() bool {
	return o.Status == StatusDelivered || o.Status == StatusCancelled
}

// HoldsReservation reports whether the order still holds inventory reserve.
// Cancelled orders released it, delivered orders consumed it, deleted orders
// release it on the way out.
func (o *Order) HoldsReservation() bool {
	return !o.IsTerminal()
}
