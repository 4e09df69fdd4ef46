// internal/domain/finance/entity.go
package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cash transaction type constants
const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

// Payment method constants
const (
	PaymentCash         = "cash"
	PaymentCard         = "card"
	PaymentBankTransfer = "bank_transfer"
	PaymentOnline       = "online"
)

// ValidTransactionTypes lists the accepted cash transaction types
var ValidTransactionTypes = []string{TransactionIncome, TransactionExpense}

// ValidPaymentMethods lists the accepted payment methods
var ValidPaymentMethods = []string{PaymentCash, PaymentCard, PaymentBankTransfer, PaymentOnline}

// IsValidTransactionType reports whether t is a member of the type enum
func IsValidTransactionType(t string) bool {
	return t == TransactionIncome || t == TransactionExpense
}

// IsValidPaymentMethod reports whether m is a member of the method enum
func IsValidPaymentMethod(m string) bool {
	for _, valid := range ValidPaymentMethods {
		if m == valid {
			return true
		}
	}
	return false
}

// ExpenseCategory groups operating expenses
type ExpenseCategory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`

	Expenses []Expense `gorm:"foreignKey:CategoryID" json:"expenses,omitempty"`
}

// Expense is a single operating expense entry
type Expense struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CategoryID  uint            `gorm:"not null;index" json:"category_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description string          `gorm:"type:text" json:"description"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	CreatedBy   *uint           `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`

	Category ExpenseCategory `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category,omitempty"`
}

// CashTransaction is one movement in the cash ledger. order_id and expense_id
// are optional back-references that survive deletion of their targets.
type CashTransaction struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Type          string          `gorm:"not null;size:10;index" json:"type"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentMethod string          `gorm:"not null;size:20" json:"payment_method"`
	Description   string          `gorm:"type:text" json:"description"`
	OrderID       *uint           `gorm:"index" json:"order_id"`
	ExpenseID     *uint           `gorm:"index" json:"expense_id"`
	Date          time.Time       `gorm:"not null;index" json:"date"`
	CreatedBy     *uint           `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ProfitReport is the materialized daily profit cache, refreshed explicitly
// or best-effort when an order is delivered
type ProfitReport struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	Date              time.Time       `gorm:"uniqueIndex;not null" json:"date"`
	Revenue           decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"revenue"`
	CostOfGoods       decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"cost_of_goods"`
	GrossProfit       decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"gross_profit"`
	OperatingExpenses decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"operating_expenses"`
	NetProfit         decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"net_profit"`
	OrdersCount       int             `gorm:"default:0" json:"orders_count"`
	AverageOrder      decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"average_order"`
	MarginPercent     decimal.Decimal `gorm:"type:decimal(6,2);default:0" json:"margin_percent"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TableName overrides
func (ExpenseCategory) TableName() string { return "expense_categories" }
func (Expense) TableName() string         { return "expenses" }
func (CashTransaction) TableName() string { return "cash_transactions" }
func (ProfitReport) TableName() string    { return "profit_reports" }

// MarginPercent computes gross profit as a percentage of revenue, returning
// zero for zero revenue instead of dividing by it. Operating expenses do not
// reduce the margin; they only affect net profit.
func MarginPercent(grossProfit, revenue decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return grossProfit.Div(revenue).Mul(decimal.NewFromInt(100)).Round(2)
}

// AverageOrder computes revenue per order, zero when there are no orders
func AverageOrder(revenue decimal.Decimal, ordersCount int) decimal.Decimal {
	if ordersCount <= 0 {
		return decimal.Zero
	}
	return revenue.Div(decimal.NewFromInt(int64(ordersCount))).Round(2)
}
