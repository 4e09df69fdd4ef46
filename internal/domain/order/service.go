// internal/domain/order/service.go
package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gooddrive/autoparts-backend/internal/config"
	"github.com/gooddrive/autoparts-backend/internal/domain/catalog"
)

// Sentinel errors mapped to HTTP statuses by the handlers
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrPartNotFound      = errors.New("part not found")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// CustomerSyncer receives best-effort CRM side effects after order mutations
type CustomerSyncer interface {
	UpsertFromOrder(name, phone, email, city string) error
	RecomputeByPhone(phone string) error
}

// NewOrderNotifier receives a best-effort alert after order creation
type NewOrderNotifier interface {
	NotifyNewOrder(o *Order) error
}

// ReportRefresher refreshes the daily profit cache after a delivery
type ReportRefresher interface {
	RefreshDaily(date time.Time) error
}

// Service handles order business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
	log    *logrus.Logger

	customers CustomerSyncer
	notifier  NewOrderNotifier
	reports   ReportRefresher
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, log *logrus.Logger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		log:    log,
	}
}

// AttachHooks wires the best-effort side-effect receivers. Any of them may be
// nil; missing hooks are simply skipped.
func (s *Service) AttachHooks(customers CustomerSyncer, notifier NewOrderNotifier, reports ReportRefresher) {
	s.customers = customers
	s.notifier = notifier
	s.reports = reports
}

// OrderItemRequest is one requested order line
type OrderItemRequest struct {
	PartID   uint `json:"part_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest represents the public order creation payload
type CreateOrderRequest struct {
	CustomerName       string             `json:"customer_name" binding:"required"`
	CustomerPhone      string             `json:"customer_phone" binding:"required"`
	CustomerEmail      string             `json:"customer_email" binding:"omitempty,email"`
	DeliveryAddress    string             `json:"delivery_address"`
	DeliveryCity       string             `json:"delivery_city"`
	DeliveryPostalCode string             `json:"delivery_postal_code"`
	Notes              string             `json:"notes"`
	Items              []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateStatusRequest represents a status change payload
type UpdateStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	Status    string `form:"status"`
	Search    string `form:"search"`
	SortBy    string `form:"sort_by,default=created_at"`
	SortOrder string `form:"sort_order,default=desc"`
}

// OrderListResponse represents orders with pagination
type OrderListResponse struct {
	Orders     []Order            `json:"orders"`
	Pagination catalog.Pagination `json:"pagination"`
}

// CreateOrder validates availability, snapshots prices, reserves inventory and
// persists the order with its items and the initial history row in one
// transaction. CRM sync and the new-order notification run after commit and
// never fail the order.
func (s *Service) CreateOrder(req *CreateOrderRequest) (*Order, error) {
	var created Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		totalAmount := decimal.Zero
		items := make([]OrderItem, 0, len(req.Items))

		for _, line := range req.Items {
			var part catalog.Part
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&part, line.PartID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("part %d: %w", line.PartID, ErrPartNotFound)
				}
				return fmt.Errorf("failed to load part %d: %w", line.PartID, err)
			}

			if !part.IsActive {
				return fmt.Errorf("%w: %q is not available for order", ErrInsufficientStock, part.Title)
			}
			if !part.CanFulfill(line.Quantity) {
				return fmt.Errorf("%w: %q has %d available, %d requested",
					ErrInsufficientStock, part.Title, part.Available, line.Quantity)
			}

			part.Reserve += line.Quantity
			if err := tx.Save(&part).Error; err != nil {
				return fmt.Errorf("failed to reserve part %d: %w", part.ID, err)
			}

			lineTotal := part.PriceOpt.Mul(decimal.NewFromInt(int64(line.Quantity)))
			totalAmount = totalAmount.Add(lineTotal)
			items = append(items, OrderItem{
				PartID:    part.ID,
				Quantity:  line.Quantity,
				UnitPrice: part.PriceOpt,
			})
		}

		created = Order{
			CustomerName:       strings.TrimSpace(req.CustomerName),
			CustomerPhone:      strings.TrimSpace(req.CustomerPhone),
			CustomerEmail:      strings.TrimSpace(req.CustomerEmail),
			DeliveryAddress:    req.DeliveryAddress,
			DeliveryCity:       req.DeliveryCity,
			DeliveryPostalCode: req.DeliveryPostalCode,
			TotalAmount:        totalAmount,
			Status:             StatusPending,
			Notes:              req.Notes,
			Items:              items,
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		history := OrderStatusHistory{
			OrderID: created.ID,
			Status:  StatusPending,
			Comment: "Order created",
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record order status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.runPostCreateHooks(&created)

	return s.GetOrder(created.ID)
}

func (s *Service) runPostCreateHooks(o *Order) {
	if s.customers != nil {
		if err := s.customers.UpsertFromOrder(o.CustomerName, o.CustomerPhone, o.CustomerEmail, o.DeliveryCity); err != nil {
			s.log.WithError(err).WithField("order_id", o.ID).Warn("customer sync after order creation failed")
		} else if err := s.customers.RecomputeByPhone(o.CustomerPhone); err != nil {
			s.log.WithError(err).WithField("order_id", o.ID).Warn("customer stats recompute after order creation failed")
		}
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyNewOrder(o); err != nil {
			s.log.WithError(err).WithField("order_id", o.ID).Warn("new order notification failed")
		}
	}
}

// UpdateStatus changes the order status and appends a history row in one
// transaction. Entering cancelled releases the inventory reservation; entering
// delivered consumes it. Transitions are otherwise unrestricted.
func (s *Service) UpdateStatus(id uint, req *UpdateStatusRequest, changedBy *uint) (*Order, error) {
	if !IsValidStatus(req.Status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}

	var previous string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var ord Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Items").First(&ord, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to load order: %w", err)
		}
		previous = ord.Status

		wasTerminal := ord.IsTerminal()
		if req.Status == StatusCancelled && !wasTerminal {
			if err := s.releaseReservation(tx, ord.Items); err != nil {
				return err
			}
		}
		if req.Status == StatusDelivered && !wasTerminal {
			if err := s.consumeReservation(tx, ord.Items); err != nil {
				return err
			}
		}

		if err := tx.Model(&ord).Update("status", req.Status).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		history := OrderStatusHistory{
			OrderID:   ord.ID,
			Status:    req.Status,
			Comment:   req.Comment,
			CreatedBy: changedBy,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}

	s.runPostStatusHooks(updated, previous)
	return updated, nil
}

func (s *Service) runPostStatusHooks(o *Order, previous string) {
	if s.customers != nil && o.Status != previous {
		if err := s.customers.RecomputeByPhone(o.CustomerPhone); err != nil {
			s.log.WithError(err).WithField("order_id", o.ID).Warn("customer stats recompute after status change failed")
		}
	}
	if s.reports != nil && o.Status == StatusDelivered && previous != StatusDelivered {
		if err := s.reports.RefreshDaily(time.Now()); err != nil {
			s.log.WithError(err).WithField("order_id", o.ID).Warn("profit report refresh after delivery failed")
		}
	}
}

// CancelOrder is a shorthand for moving the order to cancelled
func (s *Service) CancelOrder(id uint, comment string, changedBy *uint) (*Order, error) {
	if comment == "" {
		comment = "Order cancelled"
	}
	return s.UpdateStatus(id, &UpdateStatusRequest{Status: StatusCancelled, Comment: comment}, changedBy)
}

// DeleteOrder removes the order with its items and history. An outstanding
// reservation is released inside the same transaction; the CRM recompute for
// the customer's phone runs afterwards and never rolls the delete back.
func (s *Service) DeleteOrder(id uint) error {
	var phone string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var ord Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Items").First(&ord, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to load order: %w", err)
		}
		phone = ord.CustomerPhone

		if ord.HoldsReservation() {
			if err := s.releaseReservation(tx, ord.Items); err != nil {
				return err
			}
		}

		if err := tx.Select(clause.Associations).Delete(&ord).Error; err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.customers != nil {
		if err := s.customers.RecomputeByPhone(phone); err != nil {
			s.log.WithError(err).WithField("order_id", id).Warn("customer stats recompute after order delete failed")
		}
	}
	return nil
}

// releaseReservation gives the reserved quantities back to the parts
func (s *Service) releaseReservation(tx *gorm.DB, items []OrderItem) error {
	for _, item := range items {
		var part catalog.Part
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&part, item.PartID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue // part deleted since ordering; nothing to release
			}
			return fmt.Errorf("failed to load part %d: %w", item.PartID, err)
		}
		part.Reserve -= item.Quantity
		if part.Reserve < 0 {
			part.Reserve = 0
		}
		if err := tx.Save(&part).Error; err != nil {
			return fmt.Errorf("failed to release reservation on part %d: %w", part.ID, err)
		}
	}
	return nil
}

// consumeReservation turns the reservation into an actual stock decrease
func (s *Service) consumeReservation(tx *gorm.DB, items []OrderItem) error {
	for _, item := range items {
		var part catalog.Part
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&part, item.PartID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return fmt.Errorf("failed to load part %d: %w", item.PartID, err)
		}
		part.Stock -= item.Quantity
		if part.Stock < 0 {
			part.Stock = 0
		}
		part.Reserve -= item.Quantity
		if part.Reserve < 0 {
			part.Reserve = 0
		}
		if err := tx.Save(&part).Error; err != nil {
			return fmt.Errorf("failed to consume reservation on part %d: %w", part.ID, err)
		}
	}
	return nil
}

// GetOrders retrieves orders with filtering and pagination
func (s *Service) GetOrders(req *OrderListRequest) (*OrderListResponse, error) {
	var orders []Order
	var total int64

	query := s.db.Model(&Order{}).Preload("Items").Preload("Items.Part")

	if req.Status != "" {
		if !IsValidStatus(req.Status) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
		}
		query = query.Where("status = ?", req.Status)
	}
	if req.Search != "" {
		term := "%" + strings.TrimSpace(req.Search) + "%"
		query = query.Where(
			"order_number ILIKE ? OR customer_name ILIKE ? OR customer_phone ILIKE ? OR customer_email ILIKE ?",
			term, term, term, term,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	query = query.Order(s.buildOrderClause(req.SortBy, req.SortOrder))

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &OrderListResponse{
		Orders: orders,
		Pagination: catalog.Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// GetOrder retrieves a single order with items and history
func (s *Service) GetOrder(id uint) (*Order, error) {
	var ord Order
	result := s.db.
		Preload("Items").
		Preload("Items.Part").
		Preload("Items.Part.Brand").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&ord, id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}
	return &ord, nil
}

// GetStatusHistory retrieves the append-only history for an order
func (s *Service) GetStatusHistory(orderID uint) ([]OrderStatusHistory, error) {
	var count int64
	if err := s.db.Model(&Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check order: %w", err)
	}
	if count == 0 {
		return nil, ErrOrderNotFound
	}

	var history []OrderStatusHistory
	err := s.db.
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve status history: %w", err)
	}
	return history, nil
}

// GetOrdersByPhone retrieves all orders placed under a phone number
func (s *Service) GetOrdersByPhone(phone string) ([]Order, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, fmt.Errorf("phone is required")
	}

	var orders []Order
	err := s.db.
		Preload("Items").
		Preload("Items.Part").
		Where("customer_phone = ?", phone).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders by phone: %w", err)
	}
	return orders, nil
}

// Statistics summarizes order volume and revenue
type Statistics struct {
	TotalOrders       int64            `json:"total_orders"`
	StatusCounts      map[string]int64 `json:"status_counts"`
	TotalRevenue      decimal.Decimal  `json:"total_revenue"`
	AverageOrderValue decimal.Decimal  `json:"average_order_value"`
	Last30DaysOrders  int64            `json:"last_30_days_orders"`
	Last30DaysRevenue decimal.Decimal  `json:"last_30_days_revenue"`
}

// GetStatistics computes order totals. Revenue figures only count delivered
// orders; the 30-day window is by creation time.
func (s *Service) GetStatistics() (*Statistics, error) {
	stats := &Statistics{
		StatusCounts:      make(map[string]int64),
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		Last30DaysRevenue: decimal.Zero,
	}

	if err := s.db.Model(&Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := s.db.Model(&Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	for _, c := range counts {
		stats.StatusCounts[c.Status] = c.Count
	}

	type revenueRow struct {
		Total  decimal.Decimal
		Orders int64
	}
	var delivered revenueRow
	if err := s.db.Model(&Order{}).
		Select("COALESCE(SUM(total_amount), 0) AS total, COUNT(*) AS orders").
		Where("status = ?", StatusDelivered).
		Scan(&delivered).Error; err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	stats.TotalRevenue = delivered.Total
	if delivered.Orders > 0 {
		stats.AverageOrderValue = delivered.Total.Div(decimal.NewFromInt(delivered.Orders)).Round(2)
	}

	since := time.Now().AddDate(0, 0, -30)
	var recent revenueRow
	if err := s.db.Model(&Order{}).
		Select("COALESCE(SUM(total_amount), 0) AS total, COUNT(*) AS orders").
		Where("status = ? AND created_at >= ?", StatusDelivered, since).
		Scan(&recent).Error; err != nil {
		return nil, fmt.Errorf("failed to sum recent revenue: %w", err)
	}
	stats.Last30DaysRevenue = recent.Total
	if err := s.db.Model(&Order{}).Where("created_at >= ?", since).Count(&stats.Last30DaysOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count recent orders: %w", err)
	}

	return stats, nil
}

func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at":   true,
		"updated_at":   true,
		"total_amount": true,
		"status":       true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}
	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}
