// internal/domain/catalog/import_test.go
package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveImportHeader(t *testing.T) {
	header := []string{"Title", " brand ", "WAREHOUSE", "stock", "price_opt", "ignored_extra"}

	index, err := resolveImportHeader(header)

	require.NoError(t, err)
	assert.Equal(t, 0, index["title"])
	assert.Equal(t, 1, index["brand"])
	assert.Equal(t, 2, index["warehouse"])
	assert.Equal(t, 3, index["stock"])
	assert.Equal(t, 4, index["price_opt"])
	// Unknown columns are kept in the index but never consulted
	assert.Equal(t, 5, index["ignored_extra"])
}

func TestResolveImportHeaderMissingRequired(t *testing.T) {
	_, err := resolveImportHeader([]string{"title", "stock", "price_opt"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "brand")
	assert.Contains(t, err.Error(), "warehouse")
}

func TestResolveImportHeaderDuplicateColumn(t *testing.T) {
	_, err := resolveImportHeader([]string{"title", "brand", "warehouse", "Brand"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate column")
}

func TestParseIntCell(t *testing.T) {
	n, err := parseIntCell("42")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	n, err = parseIntCell("")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = parseIntCell("abc")
	assert.Error(t, err)

	_, err = parseIntCell("-3")
	assert.Error(t, err)
}

func TestParseDecimalCell(t *testing.T) {
	d, err := parseDecimalCell("199.90")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("199.90")))

	// Comma separator exports are tolerated
	d, err = parseDecimalCell("12,50")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("12.50")))

	d, err = parseDecimalCell("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = parseDecimalCell("-1.00")
	assert.Error(t, err)

	_, err = parseDecimalCell("not-a-number")
	assert.Error(t, err)
}

func TestIsBlankRow(t *testing.T) {
	assert.True(t, isBlankRow([]string{}))
	assert.True(t, isBlankRow([]string{"", "  ", ""}))
	assert.False(t, isBlankRow([]string{"", "x"}))
}
