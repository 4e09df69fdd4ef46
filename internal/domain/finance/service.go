// internal/domain/finance/service.go
package finance

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gooddrive/autoparts-backend/internal/config"
	"github.com/gooddrive/autoparts-backend/internal/domain/order"
)

// Sentinel errors mapped to HTTP statuses by the handlers
var (
	ErrExpenseNotFound     = errors.New("expense not found")
	ErrCategoryNotFound    = errors.New("expense category not found")
	ErrTransactionNotFound = errors.New("cash transaction not found")
)

// Service handles the financial ledger and profit reporting
type Service struct {
	db     *gorm.DB
	config *config.Config
	log    *logrus.Logger
}

// NewService creates a new finance service
func NewService(db *gorm.DB, cfg *config.Config, log *logrus.Logger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		log:    log,
	}
}

// CreateCategoryRequest represents a new expense category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateExpenseRequest represents a new expense entry
type CreateExpenseRequest struct {
	CategoryID  uint            `json:"category_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}

// CreateTransactionRequest represents a new cash ledger entry
type CreateTransactionRequest struct {
	Type          string          `json:"type" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaymentMethod string          `json:"payment_method" binding:"required"`
	Description   string          `json:"description"`
	OrderID       *uint           `json:"order_id"`
	ExpenseID     *uint           `json:"expense_id"`
	Date          time.Time       `json:"date"`
}

// TransactionListRequest represents cash transaction query parameters
type TransactionListRequest struct {
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit,default=50"`
	Type     string `form:"type"`
	Method   string `form:"method"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
}

// Balance is the all-time cash position
type Balance struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// ProfitSummary is the on-demand profit view over a trailing window
type ProfitSummary struct {
	PeriodDays        int             `json:"period_days"`
	Revenue           decimal.Decimal `json:"revenue"`
	CostOfGoods       decimal.Decimal `json:"cost_of_goods"`
	GrossProfit       decimal.Decimal `json:"gross_profit"`
	OperatingExpenses decimal.Decimal `json:"operating_expenses"`
	NetProfit         decimal.Decimal `json:"net_profit"`
	OrdersCount       int             `json:"orders_count"`
	AverageOrder      decimal.Decimal `json:"average_order"`
	MarginPercent     decimal.Decimal `json:"margin_percent"`
}

// CreateCategory creates an expense category
func (s *Service) CreateCategory(req *CreateCategoryRequest) (*ExpenseCategory, error) {
	category := ExpenseCategory{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to create expense category: %w", err)
	}
	return &category, nil
}

// GetCategories retrieves expense categories, active first
func (s *Service) GetCategories() ([]ExpenseCategory, error) {
	var categories []ExpenseCategory
	if err := s.db.Order("is_active DESC, name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve expense categories: %w", err)
	}
	return categories, nil
}

// CreateExpense records an operating expense
func (s *Service) CreateExpense(req *CreateExpenseRequest, createdBy *uint) (*Expense, error) {
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("amount must not be negative")
	}

	var category ExpenseCategory
	if err := s.db.First(&category, req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}

	expense := Expense{
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
		CreatedBy:   createdBy,
	}
	if err := s.db.Create(&expense).Error; err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	return s.GetExpense(expense.ID)
}

// GetExpense retrieves one expense with its category
func (s *Service) GetExpense(id uint) (*Expense, error) {
	var expense Expense
	if err := s.db.Preload("Category").First(&expense, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("failed to retrieve expense: %w", err)
	}
	return &expense, nil
}

// GetExpenses retrieves expenses, newest first, optionally by category
func (s *Service) GetExpenses(categoryID uint) ([]Expense, error) {
	query := s.db.Preload("Category").Order("date DESC, id DESC")
	if categoryID > 0 {
		query = query.Where("category_id = ?", categoryID)
	}

	var expenses []Expense
	if err := query.Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve expenses: %w", err)
	}
	return expenses, nil
}

// DeleteExpense removes an expense entry
func (s *Service) DeleteExpense(id uint) error {
	result := s.db.Delete(&Expense{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete expense: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

// CreateTransaction records a cash ledger movement
func (s *Service) CreateTransaction(req *CreateTransactionRequest, createdBy *uint) (*CashTransaction, error) {
	if !IsValidTransactionType(req.Type) {
		return nil, fmt.Errorf("invalid transaction type %q", req.Type)
	}
	if !IsValidPaymentMethod(req.PaymentMethod) {
		return nil, fmt.Errorf("invalid payment method %q", req.PaymentMethod)
	}
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("amount must not be negative")
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}

	txn := CashTransaction{
		Type:          req.Type,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Description:   req.Description,
		OrderID:       req.OrderID,
		ExpenseID:     req.ExpenseID,
		Date:          date,
		CreatedBy:     createdBy,
	}
	if err := s.db.Create(&txn).Error; err != nil {
		return nil, fmt.Errorf("failed to create cash transaction: %w", err)
	}
	return &txn, nil
}

// GetTransactions retrieves ledger entries with filters, newest first
func (s *Service) GetTransactions(req *TransactionListRequest) ([]CashTransaction, int64, error) {
	query := s.db.Model(&CashTransaction{})

	if req.Type != "" {
		if !IsValidTransactionType(req.Type) {
			return nil, 0, fmt.Errorf("invalid transaction type %q", req.Type)
		}
		query = query.Where("type = ?", req.Type)
	}
	if req.Method != "" {
		if !IsValidPaymentMethod(req.Method) {
			return nil, 0, fmt.Errorf("invalid payment method %q", req.Method)
		}
		query = query.Where("payment_method = ?", req.Method)
	}
	if req.DateFrom != "" {
		from, err := time.Parse("2006-01-02", req.DateFrom)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid date_from %q", req.DateFrom)
		}
		query = query.Where("date >= ?", from)
	}
	if req.DateTo != "" {
		to, err := time.Parse("2006-01-02", req.DateTo)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid date_to %q", req.DateTo)
		}
		query = query.Where("date < ?", to.AddDate(0, 0, 1))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	var txns []CashTransaction
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("date DESC, id DESC").Offset(offset).Limit(req.Limit).Find(&txns).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve transactions: %w", err)
	}
	return txns, total, nil
}

// DeleteTransaction removes a ledger entry
func (s *Service) DeleteTransaction(id uint) error {
	result := s.db.Delete(&CashTransaction{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// GetBalance sums the whole cash ledger
func (s *Service) GetBalance() (*Balance, error) {
	type sumRow struct {
		Type  string
		Total decimal.Decimal
	}
	var rows []sumRow
	err := s.db.Model(&CashTransaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum transactions: %w", err)
	}

	balance := &Balance{
		Income:  decimal.Zero,
		Expense: decimal.Zero,
	}
	for _, row := range rows {
		switch row.Type {
		case TransactionIncome:
			balance.Income = row.Total
		case TransactionExpense:
			balance.Expense = row.Total
		}
	}
	balance.Balance = balance.Income.Sub(balance.Expense)
	return balance, nil
}

// GetProfitSummary computes profit over the trailing window, always fresh.
// Cost of goods uses the parts' current cost price; historical cost is not
// snapshotted on order items.
func (s *Service) GetProfitSummary(periodDays int) (*ProfitSummary, error) {
	if periodDays <= 0 {
		periodDays = 30
	}
	since := time.Now().AddDate(0, 0, -periodDays)
	until := time.Now().AddDate(0, 0, 1)

	summary, err := s.computeProfit(since, until)
	if err != nil {
		return nil, err
	}
	summary.PeriodDays = periodDays
	return summary, nil
}

func (s *Service) computeProfit(from, to time.Time) (*ProfitSummary, error) {
	type revenueRow struct {
		Revenue decimal.Decimal
		Cost    decimal.Decimal
		Orders  int64
	}
	var rev revenueRow
	err := s.db.Model(&order.OrderItem{}).
		Select("COALESCE(SUM(order_items.unit_price * order_items.quantity), 0) AS revenue, "+
			"COALESCE(SUM(parts.cost_price * order_items.quantity), 0) AS cost, "+
			"COUNT(DISTINCT orders.id) AS orders").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN parts ON parts.id = order_items.part_id").
		Where("orders.status = ? AND orders.created_at >= ? AND orders.created_at < ?",
			order.StatusDelivered, from, to).
		Scan(&rev).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate delivered orders: %w", err)
	}

	var expenses decimal.Decimal
	err = s.db.Model(&Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("date >= ? AND date < ?", from, to).
		Scan(&expenses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum expenses: %w", err)
	}

	return buildProfitSummary(rev.Revenue, rev.Cost, expenses, int(rev.Orders)), nil
}

// buildProfitSummary derives the profit figures from the raw aggregates.
// Margin is gross profit over revenue; expenses only reduce net profit.
func buildProfitSummary(revenue, costOfGoods, expenses decimal.Decimal, ordersCount int) *ProfitSummary {
	grossProfit := revenue.Sub(costOfGoods)

	return &ProfitSummary{
		Revenue:           revenue,
		CostOfGoods:       costOfGoods,
		GrossProfit:       grossProfit,
		OperatingExpenses: expenses,
		NetProfit:         grossProfit.Sub(expenses),
		OrdersCount:       ordersCount,
		AverageOrder:      AverageOrder(revenue, ordersCount),
		MarginPercent:     MarginPercent(grossProfit, revenue),
	}
}

// RefreshDaily upserts the materialized profit row for the given day.
// Implements order.ReportRefresher for the post-delivery hook.
func (s *Service) RefreshDaily(date time.Time) error {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	next := day.AddDate(0, 0, 1)

	summary, err := s.computeProfit(day, next)
	if err != nil {
		return fmt.Errorf("failed to compute daily profit for %s: %w", day.Format("2006-01-02"), err)
	}

	report := ProfitReport{
		Date:              day,
		Revenue:           summary.Revenue,
		CostOfGoods:       summary.CostOfGoods,
		GrossProfit:       summary.GrossProfit,
		OperatingExpenses: summary.OperatingExpenses,
		NetProfit:         summary.NetProfit,
		OrdersCount:       summary.OrdersCount,
		AverageOrder:      summary.AverageOrder,
		MarginPercent:     summary.MarginPercent,
	}

	err = s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"revenue", "cost_of_goods", "gross_profit", "operating_expenses",
			"net_profit", "orders_count", "average_order", "margin_percent", "updated_at",
		}),
	}).Create(&report).Error
	if err != nil {
		return fmt.Errorf("failed to upsert profit report for %s: %w", day.Format("2006-01-02"), err)
	}

	s.log.WithFields(logrus.Fields{
		"date":       day.Format("2006-01-02"),
		"net_profit": report.NetProfit.String(),
	}).Debug("daily profit report refreshed")
	return nil
}

// GetProfitReports lists the cached daily rows, newest first
func (s *Service) GetProfitReports(limit int) ([]ProfitReport, error) {
	if limit <= 0 || limit > 365 {
		limit = 90
	}
	var reports []ProfitReport
	if err := s.db.Order("date DESC").Limit(limit).Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve profit reports: %w", err)
	}
	return reports, nil
}
