// internal/domain/notification/entity.go
package notification

import "time"

// Notification type constants
const (
	TypeNewOrder   = "new_order"
	TypeLowStock   = "low_stock"
	TypeZeroStock  = "zero_stock"
	TypeStuckOrder = "stuck_order"
	TypeSystem     = "system"
)

// Priority constants
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Notification is one admin-facing alert. Email delivery is best-effort and
// only recorded on success.
type Notification struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Type     string `gorm:"not null;size:20;index" json:"type"`
	Priority string `gorm:"not null;size:10;default:'medium'" json:"priority"`
	Title    string `gorm:"not null;size:200" json:"title"`
	Message  string `gorm:"type:text" json:"message"`
	Link     string `gorm:"size:255" json:"link"`

	IsRead      bool `gorm:"default:false;index" json:"is_read"`
	IsSentEmail bool `gorm:"default:false" json:"is_sent_email"`

	RelatedOrderID *uint `json:"related_order_id"`
	RelatedPartID  *uint `json:"related_part_id"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName override
func (Notification) TableName() string { return "notifications" }

// NeedsEmail reports whether the alert is urgent enough for email delivery
func (n *Notification) NeedsEmail() bool {
	return n.Priority == PriorityHigh || n.Priority == PriorityCritical
}
