// internal/interfaces/http/handlers/finance.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gooddrive/autoparts-backend/internal/domain/finance"
	"github.com/gooddrive/autoparts-backend/internal/interfaces/http/middleware"
)

// FinanceHandler handles expense, cash ledger and profit report requests
type FinanceHandler struct {
	service *finance.Service
	log     *logrus.Logger
}

// NewFinanceHandler creates a new finance handler
func NewFinanceHandler(service *finance.Service, log *logrus.Logger) *FinanceHandler {
	return &FinanceHandler{
		service: service,
		log:     log,
	}
}

// GetCategories handles GET /expense-categories
func (h *FinanceHandler) GetCategories(c *gin.Context) {
	categories, err := h.service.GetCategories()
	if err != nil {
		h.log.WithError(err).Error("failed to list expense categories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory handles POST /expense-categories
func (h *FinanceHandler) CreateCategory(c *gin.Context) {
	var req finance.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.service.CreateCategory(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Category created successfully", "data": category})
}

// GetExpenses handles GET /expenses?category_id=
func (h *FinanceHandler) GetExpenses(c *gin.Context) {
	categoryID, _ := strconv.ParseUint(c.DefaultQuery("category_id", "0"), 10, 32)

	expenses, err := h.service.GetExpenses(uint(categoryID))
	if err != nil {
		h.log.WithError(err).Error("failed to list expenses")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve expenses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

// CreateExpense handles POST /expenses
func (h *FinanceHandler) CreateExpense(c *gin.Context) {
	var req finance.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expense, err := h.service.CreateExpense(&req, middleware.GetUserIDFromContext(c))
	if err != nil {
		if errors.Is(err, finance.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Expense category not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Expense created successfully", "data": expense})
}

// DeleteExpense handles DELETE /expenses/:id
func (h *FinanceHandler) DeleteExpense(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expense ID"})
		return
	}

	if err := h.service.DeleteExpense(id); err != nil {
		if errors.Is(err, finance.ErrExpenseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
			return
		}
		h.log.WithError(err).WithField("expense_id", id).Error("failed to delete expense")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete expense"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}

// GetTransactions handles GET /cash-transactions
func (h *FinanceHandler) GetTransactions(c *gin.Context) {
	var req finance.TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txns, total, err := h.service.GetTransactions(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns, "total": total})
}

// CreateTransaction handles POST /cash-transactions
func (h *FinanceHandler) CreateTransaction(c *gin.Context) {
	var req finance.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txn, err := h.service.CreateTransaction(&req, middleware.GetUserIDFromContext(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Transaction recorded", "data": txn})
}

// DeleteTransaction handles DELETE /cash-transactions/:id
func (h *FinanceHandler) DeleteTransaction(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction ID"})
		return
	}

	if err := h.service.DeleteTransaction(id); err != nil {
		if errors.Is(err, finance.ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		h.log.WithError(err).WithField("transaction_id", id).Error("failed to delete transaction")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete transaction"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted"})
}

// GetBalance handles GET /cash-transactions/balance
func (h *FinanceHandler) GetBalance(c *gin.Context) {
	balance, err := h.service.GetBalance()
	if err != nil {
		h.log.WithError(err).Error("failed to compute balance")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute balance"})
		return
	}
	c.JSON(http.StatusOK, balance)
}

// GetProfitSummary handles GET /profit-reports/summary?period=
func (h *FinanceHandler) GetProfitSummary(c *gin.Context) {
	period, err := strconv.Atoi(c.DefaultQuery("period", "30"))
	if err != nil || period <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period must be a positive number of days"})
		return
	}

	summary, err := h.service.GetProfitSummary(period)
	if err != nil {
		h.log.WithError(err).Error("failed to compute profit summary")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute profit summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetProfitReports handles GET /profit-reports?limit=
func (h *FinanceHandler) GetProfitReports(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "90"))

	reports, err := h.service.GetProfitReports(limit)
	if err != nil {
		h.log.WithError(err).Error("failed to list profit reports")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve profit reports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// RefreshProfitReport handles POST /profit-reports/refresh?date=
func (h *FinanceHandler) RefreshProfitReport(c *gin.Context) {
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	if err := h.service.RefreshDaily(date); err != nil {
		h.log.WithError(err).Error("failed to refresh profit report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh profit report"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profit report refreshed", "date": date.Format("2006-01-02")})
}
