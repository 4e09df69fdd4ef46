// internal/domain/order/entity_test.go
package order

import (
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOrderNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^GD\d{14}[0-9A-F]{8}$`)

	num := GenerateOrderNumber()
	assert.True(t, pattern.MatchString(num), "unexpected order number format: %s", num)
}

func TestGenerateOrderNumberUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		num := GenerateOrderNumber()
		require.False(t, seen[num], "duplicate order number %s", num)
		seen[num] = true
	}
}

func TestBeforeCreateAssignsNumberOnce(t *testing.T) {
	o := Order{}
	require.NoError(t, o.BeforeCreate(nil))
	assert.NotEmpty(t, o.OrderNumber)
	assert.Equal(t, StatusPending, o.Status)

	// An already assigned number is never regenerated
	existing := Order{OrderNumber: "GD20250101000000DEADBEEF", Status: StatusShipped}
	require.NoError(t, existing.BeforeCreate(nil))
	assert.Equal(t, "GD20250101000000DEADBEEF", existing.OrderNumber)
	assert.Equal(t, StatusShipped, existing.Status)
}

func TestIsValidStatus(t *testing.T) {
	for _, status := range ValidStatuses {
		assert.True(t, IsValidStatus(status), status)
	}
	assert.False(t, IsValidStatus("returned"))
	assert.False(t, IsValidStatus(""))
	assert.False(t, IsValidStatus("Pending"))
}

func TestOrderItemBeforeSaveDerivesTotal(t *testing.T) {
	item := OrderItem{
		Quantity:  3,
		UnitPrice: decimal.RequireFromString("149.90"),
	}

	require.NoError(t, item.BeforeSave(nil))
	assert.True(t, item.TotalPrice.Equal(decimal.RequireFromString("449.70")),
		"got %s", item.TotalPrice)
}

func TestIsTerminalAndHoldsReservation(t *testing.T) {
	tests := []struct {
		status   string
		terminal bool
	}{
		{StatusPending, false},
		{StatusProcessing, false},
		{StatusShipped, false},
		{StatusDelivered, true},
		{StatusCancelled, true},
	}

	for _, tt := range tests {
		o := Order{Status: tt.status}
		assert.Equal(t, tt.terminal, o.IsTerminal(), tt.status)
		assert.Equal(t, !tt.terminal, o.HoldsReservation(), tt.status)
	}
}
