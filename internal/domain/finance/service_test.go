// internal/domain/finance/service_test.go
package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBuildProfitSummary(t *testing.T) {
	summary := buildProfitSummary(
		decimal.RequireFromString("10000"),
		decimal.RequireFromString("4000"),
		decimal.RequireFromString("1000"),
		4,
	)

	assert.True(t, summary.GrossProfit.Equal(decimal.RequireFromString("6000")), "gross: got %s", summary.GrossProfit)
	assert.True(t, summary.NetProfit.Equal(decimal.RequireFromString("5000")), "net: got %s", summary.NetProfit)
	assert.True(t, summary.AverageOrder.Equal(decimal.RequireFromString("2500")), "average: got %s", summary.AverageOrder)

	// Margin comes from gross profit, not net: 6000/10000, not 5000/10000.
	assert.True(t, summary.MarginPercent.Equal(decimal.RequireFromString("60")), "margin: got %s", summary.MarginPercent)
}

func TestBuildProfitSummaryNoSales(t *testing.T) {
	summary := buildProfitSummary(decimal.Zero, decimal.Zero, decimal.RequireFromString("750"), 0)

	assert.True(t, summary.GrossProfit.IsZero())
	assert.True(t, summary.NetProfit.Equal(decimal.RequireFromString("-750")), "net: got %s", summary.NetProfit)
	assert.True(t, summary.MarginPercent.IsZero(), "margin must stay zero without revenue")
	assert.True(t, summary.AverageOrder.IsZero())
}
