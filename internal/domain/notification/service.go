// internal/domain/notification/service.go
package notification

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/gooddrive/autoparts-backend/internal/config"
	"github.com/gooddrive/autoparts-backend/internal/domain/catalog"
	"github.com/gooddrive/autoparts-backend/internal/domain/order"
	"github.com/gooddrive/autoparts-backend/internal/pkg/email"
)

// ErrNotificationNotFound is returned when a notification lookup misses
var ErrNotificationNotFound = errors.New("notification not found")

// Service creates, lists and delivers admin notifications
type Service struct {
	db     *gorm.DB
	config *config.Config
	log    *logrus.Logger
	mailer email.Sender
}

// NewService creates a new notification service. mailer may be nil when email
// delivery is disabled.
func NewService(db *gorm.DB, cfg *config.Config, log *logrus.Logger, mailer email.Sender) *Service {
	return &Service{
		db:     db,
		config: cfg,
		log:    log,
		mailer: mailer,
	}
}

// ListRequest represents notification list query parameters
type ListRequest struct {
	Page       int  `form:"page,default=1"`
	Limit      int  `form:"limit,default=50"`
	UnreadOnly bool `form:"unread_only"`
}

// CheckResult summarizes one run of the alert sweeps
type CheckResult struct {
	StuckOrders int `json:"stuck_orders"`
	LowStock    int `json:"low_stock"`
	ZeroStock   int `json:"zero_stock"`
}

// Create stores a notification and attempts email delivery for urgent ones
func (s *Service) Create(n *Notification) error {
	if n.Priority == "" {
		n.Priority = PriorityMedium
	}
	if err := s.db.Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	if n.NeedsEmail() {
		s.deliverEmail(n)
	}
	return nil
}

// deliverEmail sends the alert to the admin address. Failures are logged and
// is_sent_email stays false.
func (s *Service) deliverEmail(n *Notification) {
	if s.mailer == nil || !s.config.Notification.EmailEnabled || s.config.Notification.AdminEmail == "" {
		return
	}

	err := s.mailer.Send(s.config.Notification.AdminEmail, n.Title, n.Message)
	if err != nil {
		s.log.WithError(err).WithField("notification_id", n.ID).Warn("notification email delivery failed")
		return
	}

	if err := s.db.Model(n).Update("is_sent_email", true).Error; err != nil {
		s.log.WithError(err).WithField("notification_id", n.ID).Warn("failed to mark notification as emailed")
		return
	}
	n.IsSentEmail = true
}

// NotifyNewOrder records a high-priority alert for a freshly created order.
// Implements order.NewOrderNotifier.
func (s *Service) NotifyNewOrder(o *order.Order) error {
	n := &Notification{
		Type:     TypeNewOrder,
		Priority: PriorityHigh,
		Title:    fmt.Sprintf("New order %s", o.OrderNumber),
		Message: fmt.Sprintf("Order %s from %s (%s) for %s",
			o.OrderNumber, o.CustomerName, o.CustomerPhone, o.TotalAmount.StringFixed(2)),
		Link:           fmt.Sprintf("/orders/%d", o.ID),
		RelatedOrderID: &o.ID,
	}
	return s.Create(n)
}

// NotifyStockLevel records a low or zero stock alert for the part when its
// availability warrants one
func (s *Service) NotifyStockLevel(part *catalog.Part) error {
	switch {
	case part.IsOutOfStock():
		n := &Notification{
			Type:     TypeZeroStock,
			Priority: PriorityCritical,
			Title:    fmt.Sprintf("Out of stock: %s", part.Title),
			Message: fmt.Sprintf("Part %q (id %d) has no available units left (stock %d, reserve %d)",
				part.Title, part.ID, part.Stock, part.Reserve),
			Link:          fmt.Sprintf("/parts/%d", part.ID),
			RelatedPartID: &part.ID,
		}
		return s.Create(n)
	case part.IsLowStock(s.config.Notification.LowStockLevel):
		n := &Notification{
			Type:     TypeLowStock,
			Priority: PriorityMedium,
			Title:    fmt.Sprintf("Low stock: %s", part.Title),
			Message: fmt.Sprintf("Part %q (id %d) is down to %d available units",
				part.Title, part.ID, part.Available),
			Link:          fmt.Sprintf("/parts/%d", part.ID),
			RelatedPartID: &part.ID,
		}
		return s.Create(n)
	}
	return nil
}

// RunChecks executes the stuck-order and stock sweeps
func (s *Service) RunChecks() (*CheckResult, error) {
	result := &CheckResult{}

	stuck, err := s.checkStuckOrders()
	if err != nil {
		return nil, err
	}
	result.StuckOrders = stuck

	low, zero, err := s.checkStockLevels()
	if err != nil {
		return nil, err
	}
	result.LowStock = low
	result.ZeroStock = zero

	s.log.WithFields(logrus.Fields{
		"stuck_orders": result.StuckOrders,
		"low_stock":    result.LowStock,
		"zero_stock":   result.ZeroStock,
	}).Info("notification checks finished")
	return result, nil
}

// checkStuckOrders alerts on orders sitting in pending or processing for too
// long. An order is only reported once per stuck episode: an unread alert for
// the same order suppresses a duplicate.
func (s *Service) checkStuckOrders() (int, error) {
	cutoff := time.Now().Add(-s.config.Notification.StuckOrderAfter)

	var orders []order.Order
	err := s.db.
		Where("status IN ? AND updated_at < ?", []string{order.StatusPending, order.StatusProcessing}, cutoff).
		Find(&orders).Error
	if err != nil {
		return 0, fmt.Errorf("failed to find stuck orders: %w", err)
	}

	created := 0
	for i := range orders {
		o := &orders[i]

		var existing int64
		err := s.db.Model(&Notification{}).
			Where("type = ? AND related_order_id = ? AND is_read = ?", TypeStuckOrder, o.ID, false).
			Count(&existing).Error
		if err != nil {
			return created, fmt.Errorf("failed to check existing alerts: %w", err)
		}
		if existing > 0 {
			continue
		}

		n := &Notification{
			Type:     TypeStuckOrder,
			Priority: PriorityHigh,
			Title:    fmt.Sprintf("Order %s is stuck", o.OrderNumber),
			Message: fmt.Sprintf("Order %s has been %s since %s",
				o.OrderNumber, o.Status, o.UpdatedAt.Format("2006-01-02 15:04")),
			Link:           fmt.Sprintf("/orders/%d", o.ID),
			RelatedOrderID: &o.ID,
		}
		if err := s.Create(n); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// checkStockLevels sweeps active parts for low and zero availability
func (s *Service) checkStockLevels() (low, zero int, err error) {
	var parts []catalog.Part
	err = s.db.
		Where("is_active = ? AND available <= ?", true, s.config.Notification.LowStockLevel).
		Find(&parts).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to find low stock parts: %w", err)
	}

	for i := range parts {
		p := &parts[i]

		alertType := TypeLowStock
		if p.IsOutOfStock() {
			alertType = TypeZeroStock
		}

		var existing int64
		err = s.db.Model(&Notification{}).
			Where("type = ? AND related_part_id = ? AND is_read = ?", alertType, p.ID, false).
			Count(&existing).Error
		if err != nil {
			return low, zero, fmt.Errorf("failed to check existing alerts: %w", err)
		}
		if existing > 0 {
			continue
		}

		if err = s.NotifyStockLevel(p); err != nil {
			return low, zero, err
		}
		if p.IsOutOfStock() {
			zero++
		} else {
			low++
		}
	}
	return low, zero, nil
}

// List retrieves notifications, newest first
func (s *Service) List(req *ListRequest) ([]Notification, int64, error) {
	query := s.db.Model(&Notification{})
	if req.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	var notifications []Notification
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(req.Limit).Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve notifications: %w", err)
	}
	return notifications, total, nil
}

// MarkRead marks a single notification as read
func (s *Service) MarkRead(id uint) error {
	result := s.db.Model(&Notification{}).Where("id = ?", id).Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification as read, returning the count
func (s *Service) MarkAllRead() (int64, error) {
	result := s.db.Model(&Notification{}).Where("is_read = ?", false).Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", result.Error)
	}
	return result.RowsAffected, nil
}
