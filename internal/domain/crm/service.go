// internal/domain/crm/service.go
package crm

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
	"github.com/gooddrive/autoparts-backend/internal/domain/order"
)

// Sentinel errors mapped to HTTP statuses by the handlers
var (
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrCustomerHasOrders = errors.New("customer has orders; pass force to delete anyway")
)

// Service handles customer aggregation and statistics
type Service struct {
	db     *gorm.DB
	config *config.Config
	log    *logrus.Logger
}

// NewService creates a new CRM service
func NewService(db *gorm.DB, cfg *config.Config, log *logrus.Logger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		log:    log,
	}
}

// CustomerListRequest represents customer list query parameters
type CustomerListRequest struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	Category  string `form:"category"`
	Search    string `form:"search"`
	SortBy    string `form:"sort_by,default=created_at"`
	SortOrder string `form:"sort_order,default=desc"`
}

// CustomerListResponse represents customers with pagination
type CustomerListResponse struct {
	Customers  []Customer         `json:"customers"`
	Pagination catalog.Pagination `json:"pagination"`
}

// UpdateCustomerRequest represents editable customer fields
type UpdateCustomerRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email" binding:"omitempty,email"`
	City    *string `json:"city"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

// CreateNoteRequest represents a new customer note
type CreateNoteRequest struct {
	Note string `json:"note" binding:"required"`
}

// UpsertFromOrder creates or updates the customer record for a phone number
// using the fill-gaps merge. Implements order.CustomerSyncer.
func (s *Service) UpsertFromOrder(name, phone, email, city string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return fmt.Errorf("phone is required")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var customer Customer
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("phone = ?", phone).
			First(&customer).Error

		switch {
		case err == nil:
			if customer.MergeContactInfo(name, email, city) {
				if err := tx.Save(&customer).Error; err != nil {
					return fmt.Errorf("failed to update customer: %w", err)
				}
			}
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			displayName := strings.TrimSpace(name)
			if displayName == "" {
				displayName = PlaceholderName(phone)
			}
			customer = Customer{
				Name:     displayName,
				Phone:    phone,
				Email:    strings.TrimSpace(email),
				City:     strings.TrimSpace(city),
				Category: CategoryNew,
			}
			if err := tx.Create(&customer).Error; err != nil {
				return fmt.Errorf("failed to create customer: %w", err)
			}
			return nil
		default:
			return fmt.Errorf("customer lookup failed: %w", err)
		}
	})
}

// RecomputeByPhone recomputes a customer's statistics from delivered orders.
// Implements order.CustomerSyncer. Idempotent; a missing customer is not an
// error so order hooks stay quiet for walk-in phones.
func (s *Service) RecomputeByPhone(phone string) error {
	var customer Customer
	err := s.db.Where("phone = ?", strings.TrimSpace(phone)).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("customer lookup failed: %w", err)
	}
	return s.recompute(&customer)
}

// RecomputeStatistics recomputes statistics for a customer by id
func (s *Service) RecomputeStatistics(id uint) (*Customer, error) {
	customer, err := s.GetCustomer(id)
	if err != nil {
		return nil, err
	}
	if err := s.recompute(customer); err != nil {
		return nil, err
	}
	return s.GetCustomer(id)
}

func (s *Service) recompute(customer *Customer) error {
	type aggregateRow struct {
		Orders int64
		Spent  decimal.Decimal
		Last   *time.Time
	}
	var agg aggregateRow
	err := s.db.Model(&order.Order{}).
		Select("COUNT(*) AS orders, COALESCE(SUM(total_amount), 0) AS spent, MAX(created_at) AS last").
		Where("customer_phone = ? AND status = ?", customer.Phone, order.StatusDelivered).
		Scan(&agg).Error
	if err != nil {
		return fmt.Errorf("failed to aggregate orders for customer %d: %w", customer.ID, err)
	}

	customer.TotalOrders = int(agg.Orders)
	customer.TotalSpent = agg.Spent
	customer.LastOrderDate = agg.Last
	if agg.Orders > 0 {
		customer.AverageOrder = agg.Spent.Div(decimal.NewFromInt(agg.Orders)).Round(2)
	} else {
		customer.AverageOrder = decimal.Zero
	}
	customer.Category = ClassifyCategory(customer.Category, customer.TotalOrders, customer.TotalSpent, customer.LastOrderDate, time.Now())

	if err := s.db.Save(customer).Error; err != nil {
		return fmt.Errorf("failed to save customer %d statistics: %w", customer.ID, err)
	}
	return nil
}

// SyncFromOrders bulk-upserts customers from every distinct order phone and
// recomputes each. Returns how many customers were processed.
func (s *Service) SyncFromOrders() (int, error) {
	type phoneRow struct {
		CustomerPhone string
		CustomerName  string
		CustomerEmail string
		DeliveryCity  string
	}
	var rows []phoneRow
	err := s.db.Model(&order.Order{}).
		Select("DISTINCT ON (customer_phone) customer_phone, customer_name, customer_email, delivery_city").
		Order("customer_phone, created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("failed to collect order phones: %w", err)
	}

	processed := 0
	for _, row := range rows {
		if err := s.UpsertFromOrder(row.CustomerName, row.CustomerPhone, row.CustomerEmail, row.DeliveryCity); err != nil {
			s.log.WithError(err).WithField("phone", row.CustomerPhone).Warn("customer sync skipped")
			continue
		}
		if err := s.RecomputeByPhone(row.CustomerPhone); err != nil {
			s.log.WithError(err).WithField("phone", row.CustomerPhone).Warn("customer recompute failed during sync")
			continue
		}
		processed++
	}

	s.log.WithField("processed", processed).Info("customer sync from orders finished")
	return processed, nil
}

// GetCustomers retrieves customers with filtering and pagination
func (s *Service) GetCustomers(req *CustomerListRequest) (*CustomerListResponse, error) {
	var customers []Customer
	var total int64

	query := s.db.Model(&Customer{})

	if req.Category != "" {
		if !IsValidCategory(req.Category) {
			return nil, fmt.Errorf("invalid category %q", req.Category)
		}
		query = query.Where("category = ?", req.Category)
	}
	if req.Search != "" {
		term := "%" + strings.TrimSpace(req.Search) + "%"
		query = query.Where("name ILIKE ? OR phone ILIKE ? OR email ILIKE ? OR city ILIKE ?",
			term, term, term, term)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	query = query.Order(s.buildOrderClause(req.SortBy, req.SortOrder))

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve customers: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &CustomerListResponse{
		Customers: customers,
		Pagination: catalog.Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// GetCustomer retrieves a single customer with notes
func (s *Service) GetCustomer(id uint) (*Customer, error) {
	var customer Customer
	result := s.db.
		Preload("NoteEntries", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&customer, id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to retrieve customer: %w", result.Error)
	}
	return &customer, nil
}

// UpdateCustomer applies admin edits to contact fields
func (s *Service) UpdateCustomer(id uint, req *UpdateCustomerRequest) (*Customer, error) {
	customer, err := s.GetCustomer(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.City != nil {
		customer.City = *req.City
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}

	if err := s.db.Save(customer).Error; err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return s.GetCustomer(id)
}

// GetOrdersHistory retrieves every order placed under the customer's phone
func (s *Service) GetOrdersHistory(id uint) ([]order.Order, error) {
	customer, err := s.GetCustomer(id)
	if err != nil {
		return nil, err
	}

	var orders []order.Order
	err = s.db.
		Preload("Items").
		Preload("Items.Part").
		Where("customer_phone = ?", customer.Phone).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve order history: %w", err)
	}
	return orders, nil
}

// DeleteCustomer removes a customer. When the customer has orders the delete
// is refused unless force is set; orders are left in place either way.
func (s *Service) DeleteCustomer(id uint, force bool) error {
	customer, err := s.GetCustomer(id)
	if err != nil {
		return err
	}

	var orderCount int64
	if err := s.db.Model(&order.Order{}).Where("customer_phone = ?", customer.Phone).Count(&orderCount).Error; err != nil {
		return fmt.Errorf("failed to count customer orders: %w", err)
	}
	if orderCount > 0 && !force {
		return fmt.Errorf("%w: %d orders", ErrCustomerHasOrders, orderCount)
	}

	if err := s.db.Select(clause.Associations).Delete(customer).Error; err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return nil
}

// AddNote appends a note to a customer
func (s *Service) AddNote(customerID uint, req *CreateNoteRequest, createdBy *uint) (*CustomerNote, error) {
	if _, err := s.GetCustomer(customerID); err != nil {
		return nil, err
	}

	note := CustomerNote{
		CustomerID: customerID,
		Note:       req.Note,
		CreatedBy:  createdBy,
	}
	if err := s.db.Create(&note).Error; err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return &note, nil
}

// DeleteNote removes a customer note
func (s *Service) DeleteNote(noteID uint) error {
	result := s.db.Delete(&CustomerNote{}, noteID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete note: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("note not found")
	}
	return nil
}

func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at":      true,
		"name":            true,
		"total_orders":    true,
		"total_spent":     true,
		"last_order_date": true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}
	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}
