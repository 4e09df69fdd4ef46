// internal/domain/crm/entity_test.go
package crm

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClassifyCategory(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	recent := now.AddDate(0, 0, -30)
	stale := now.AddDate(0, 0, -200)

	tests := []struct {
		name     string
		current  string
		orders   int
		spent    string
		last     *time.Time
		expected string
	}{
		{"no orders stays new", CategoryRegular, 0, "0", nil, CategoryNew},
		{"ten orders makes vip", CategoryNew, 10, "500", &recent, CategoryVIP},
		{"big spender makes vip", CategoryNew, 2, "100000", &recent, CategoryVIP},
		{"spend just under threshold is not vip", CategoryNew, 2, "99999.99", &recent, CategoryNew},
		{"three orders makes regular", CategoryNew, 3, "1500", &recent, CategoryRegular},
		{"regular beats inactive when both apply", CategoryNew, 5, "2500", &stale, CategoryRegular},
		{"stale one-off customer goes inactive", CategoryNew, 1, "500", &stale, CategoryInactive},
		{"active one-off customer keeps category", CategoryNew, 1, "500", &recent, CategoryNew},
		{"vip with stale orders stays vip", CategoryVIP, 12, "300000", &stale, CategoryVIP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyCategory(tt.current, tt.orders, decimal.RequireFromString(tt.spent), tt.last, now)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestClassifyCategoryIdempotent(t *testing.T) {
	now := time.Now()
	last := now.AddDate(0, 0, -10)
	spent := decimal.NewFromInt(4500)

	first := ClassifyCategory(CategoryNew, 4, spent, &last, now)
	second := ClassifyCategory(first, 4, spent, &last, now)

	assert.Equal(t, first, second)
}

func TestMergeContactInfoFillsGapsOnly(t *testing.T) {
	c := Customer{
		Name:  "Anna K",
		Phone: "+79990001122",
		Email: "",
		City:  "Moscow",
	}

	changed := c.MergeContactInfo("Other Name", "anna@example.com", "Kazan")

	assert.True(t, changed)
	assert.Equal(t, "Anna K", c.Name, "populated name must not be clobbered")
	assert.Equal(t, "anna@example.com", c.Email)
	assert.Equal(t, "Moscow", c.City, "populated city must not be clobbered")
}

func TestMergeContactInfoReplacesPlaceholderName(t *testing.T) {
	c := Customer{
		Phone: "+79990001122",
		Name:  PlaceholderName("+79990001122"),
	}

	changed := c.MergeContactInfo("Ivan Petrov", "", "")

	assert.True(t, changed)
	assert.Equal(t, "Ivan Petrov", c.Name)
}

func TestMergeContactInfoNoChanges(t *testing.T) {
	c := Customer{
		Name:  "Anna K",
		Phone: "+79990001122",
		Email: "anna@example.com",
		City:  "Moscow",
	}

	changed := c.MergeContactInfo("  ", "", "")

	assert.False(t, changed)
	assert.Equal(t, "Anna K", c.Name)
}

func TestHasPlaceholderName(t *testing.T) {
	c := Customer{Phone: "+70000000000"}
	assert.True(t, c.HasPlaceholderName())

	c.Name = PlaceholderName(c.Phone)
	assert.True(t, c.HasPlaceholderName())

	c.Name = "Real Name"
	assert.False(t, c.HasPlaceholderName())
}
