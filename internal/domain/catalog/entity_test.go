// internal/domain/catalog/entity_test.go
package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecalculateAvailable(t *testing.T) {
	tests := []struct {
		name     string
		stock    int
		reserve  int
		expected int
	}{
		{"no reserve", 10, 0, 10},
		{"partial reserve", 10, 4, 6},
		{"fully reserved", 5, 5, 0},
		{"reserve exceeds stock clamps to zero", 3, 7, 0},
		{"empty part", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Part{Stock: tt.stock, Reserve: tt.reserve, Available: 999}
			p.RecalculateAvailable()
			assert.Equal(t, tt.expected, p.Available)
		})
	}
}

func TestBeforeSaveRecomputesAvailable(t *testing.T) {
	p := Part{Stock: 12, Reserve: 3, Available: 0}

	err := p.BeforeSave(nil)

	assert.NoError(t, err)
	assert.Equal(t, 9, p.Available)
}

func TestIsLowStock(t *testing.T) {
	p := Part{Stock: 10, Reserve: 6}
	p.RecalculateAvailable()

	assert.True(t, p.IsLowStock(5))
	assert.True(t, p.IsLowStock(4))
	assert.False(t, p.IsLowStock(3))
}

func TestIsOutOfStock(t *testing.T) {
	p := Part{Stock: 4, Reserve: 4}
	p.RecalculateAvailable()
	assert.True(t, p.IsOutOfStock())

	p.Stock = 5
	p.RecalculateAvailable()
	assert.False(t, p.IsOutOfStock())
}

func TestCanFulfill(t *testing.T) {
	p := Part{Stock: 10, Reserve: 2}
	p.RecalculateAvailable()

	assert.True(t, p.CanFulfill(8))
	assert.True(t, p.CanFulfill(1))
	assert.False(t, p.CanFulfill(9))
	assert.False(t, p.CanFulfill(0))
	assert.False(t, p.CanFulfill(-1))
}
