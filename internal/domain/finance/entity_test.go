// internal/domain/finance/entity_test.go
package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMarginPercent(t *testing.T) {
	// Gross profit over revenue: 6000 / 10000 -> 60%
	margin := MarginPercent(decimal.RequireFromString("6000"), decimal.RequireFromString("10000"))
	assert.True(t, margin.Equal(decimal.RequireFromString("60")), "got %s", margin)

	negative := MarginPercent(decimal.RequireFromString("-500"), decimal.RequireFromString("10000"))
	assert.True(t, negative.Equal(decimal.RequireFromString("-5")), "got %s", negative)
}

func TestMarginPercentZeroRevenue(t *testing.T) {
	margin := MarginPercent(decimal.RequireFromString("-300"), decimal.Zero)
	assert.True(t, margin.IsZero(), "zero revenue must yield zero margin, got %s", margin)
}

func TestAverageOrder(t *testing.T) {
	avg := AverageOrder(decimal.RequireFromString("1000.50"), 3)
	assert.True(t, avg.Equal(decimal.RequireFromString("333.50")), "got %s", avg)

	assert.True(t, AverageOrder(decimal.RequireFromString("500"), 0).IsZero())
	assert.True(t, AverageOrder(decimal.Zero, 5).IsZero())
}

func TestIsValidTransactionType(t *testing.T) {
	assert.True(t, IsValidTransactionType(TransactionIncome))
	assert.True(t, IsValidTransactionType(TransactionExpense))
	assert.False(t, IsValidTransactionType("transfer"))
	assert.False(t, IsValidTransactionType(""))
}

func TestIsValidPaymentMethod(t *testing.T) {
	for _, m := range ValidPaymentMethods {
		assert.True(t, IsValidPaymentMethod(m), m)
	}
	assert.False(t, IsValidPaymentMethod("crypto"))
	assert.False(t, IsValidPaymentMethod(""))
}
