// internal/domain/catalog/import.go
package catalog

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// importColumn declares one spreadsheet column the importer understands.
// The whole mapping is validated against the header row before any part
// row is processed.
type importColumn struct {
	Header   string
	Required bool
}

// importColumns is the declared column -> field mapping for part imports.
// Headers are matched case-insensitively after trimming.
var importColumns = []importColumn{
	{Header: "title", Required: true},
	{Header: "brand", Required: true},
	{Header: "warehouse", Required: true},
	{Header: "label", Required: false},
	{Header: "original_number", Required: false},
	{Header: "manufacturer_number", Required: false},
	{Header: "quantity", Required: false},
	{Header: "stock", Required: false},
	{Header: "reserve", Required: false},
	{Header: "price_opt", Required: false},
	{Header: "cost_price", Required: false},
	{Header: "description", Required: false},
}

// ImportRowError describes a single rejected spreadsheet row
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarizes an Excel import run
type ImportResult struct {
	Created int              `json:"created"`
	Updated int              `json:"updated"`
	Skipped int              `json:"skipped"`
	Errors  []ImportRowError `json:"errors"`
}

// ImportPartsFromExcel reads an xlsx stream and upserts parts from its first
// sheet. The header row must satisfy the declared column mapping; rows are
// matched to existing parts by manufacturer number and title. Everything runs
// inside one transaction so a failed import leaves the catalog untouched.
func (s *Service) ImportPartsFromExcel(r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	colIndex, err := resolveImportHeader(rows[0])
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: []ImportRowError{}}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i, row := range rows[1:] {
			rowNum := i + 2 // 1-based, after the header
			if isBlankRow(row) {
				result.Skipped++
				continue
			}
			if err := s.importRow(tx, colIndex, row, rowNum, result); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("import transaction failed: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"created": result.Created,
		"updated": result.Updated,
		"skipped": result.Skipped,
		"errors":  len(result.Errors),
	}).Info("parts import finished")

	return result, nil
}

// resolveImportHeader validates the header row against the declared mapping
// and returns header name -> column index. Unknown columns are ignored.
func resolveImportHeader(header []string) (map[string]int, error) {
	index := make(map[string]int, len(importColumns))
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		if name == "" {
			continue
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q in header", name)
		}
		index[name] = i
	}

	var missing []string
	for _, col := range importColumns {
		if _, ok := index[col.Header]; !ok && col.Required {
			missing = append(missing, col.Header)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

func (s *Service) importRow(tx *gorm.DB, colIndex map[string]int, row []string, rowNum int, result *ImportResult) error {
	cell := func(name string) string {
		idx, ok := colIndex[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	title := cell("title")
	brandName := cell("brand")
	warehouseName := cell("warehouse")
	if title == "" || brandName == "" || warehouseName == "" {
		result.Errors = append(result.Errors, ImportRowError{
			Row:     rowNum,
			Message: "title, brand and warehouse must not be empty",
		})
		return nil
	}

	reject := func(err error) error {
		result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Message: err.Error()})
		return nil
	}

	quantity, err := parseIntCell(cell("quantity"))
	if err != nil {
		return reject(fmt.Errorf("quantity: %w", err))
	}
	stock, err := parseIntCell(cell("stock"))
	if err != nil {
		return reject(fmt.Errorf("stock: %w", err))
	}
	reserve, err := parseIntCell(cell("reserve"))
	if err != nil {
		return reject(fmt.Errorf("reserve: %w", err))
	}
	priceOpt, err := parseDecimalCell(cell("price_opt"))
	if err != nil {
		return reject(fmt.Errorf("price_opt: %w", err))
	}
	costPrice, err := parseDecimalCell(cell("cost_price"))
	if err != nil {
		return reject(fmt.Errorf("cost_price: %w", err))
	}

	return s.upsertImportedPart(tx, importedPart{
		Title:              title,
		Label:              cell("label"),
		OriginalNumber:     cell("original_number"),
		ManufacturerNumber: cell("manufacturer_number"),
		BrandName:          brandName,
		WarehouseName:      warehouseName,
		Quantity:           quantity,
		Stock:              stock,
		Reserve:            reserve,
		PriceOpt:           priceOpt,
		CostPrice:          costPrice,
		Description:        cell("description"),
	}, rowNum, result)
}

type importedPart struct {
	Title              string
	Label              string
	OriginalNumber     string
	ManufacturerNumber string
	BrandName          string
	WarehouseName      string
	Quantity           int
	Stock              int
	Reserve            int
	PriceOpt           decimal.Decimal
	CostPrice          decimal.Decimal
	Description        string
}

func (s *Service) upsertImportedPart(tx *gorm.DB, in importedPart, rowNum int, result *ImportResult) error {
	brand, err := getOrCreateBrand(tx, in.BrandName)
	if err != nil {
		return err
	}
	warehouse, err := getOrCreateWarehouse(tx, in.WarehouseName)
	if err != nil {
		return err
	}

	var part Part
	lookup := tx.Where("manufacturer_number = ? AND title = ?", in.ManufacturerNumber, in.Title)
	findErr := lookup.First(&part).Error

	switch {
	case findErr == nil:
		part.Label = in.Label
		part.OriginalNumber = in.OriginalNumber
		part.BrandID = brand.ID
		part.WarehouseID = warehouse.ID
		part.Quantity = in.Quantity
		part.Stock = in.Stock
		part.Reserve = in.Reserve
		part.PriceOpt = in.PriceOpt
		part.CostPrice = in.CostPrice
		if in.Description != "" {
			part.Description = in.Description
		}
		if err := tx.Save(&part).Error; err != nil {
			return fmt.Errorf("row %d: failed to update part: %w", rowNum, err)
		}
		result.Updated++
	case errors.Is(findErr, gorm.ErrRecordNotFound):
		part = Part{
			IsActive:           true,
			Title:              in.Title,
			Label:              in.Label,
			OriginalNumber:     in.OriginalNumber,
			ManufacturerNumber: in.ManufacturerNumber,
			BrandID:            brand.ID,
			WarehouseID:        warehouse.ID,
			Quantity:           in.Quantity,
			Stock:              in.Stock,
			Reserve:            in.Reserve,
			PriceOpt:           in.PriceOpt,
			CostPrice:          in.CostPrice,
			Description:        in.Description,
		}
		if err := tx.Create(&part).Error; err != nil {
			return fmt.Errorf("row %d: failed to create part: %w", rowNum, err)
		}
		result.Created++
	default:
		return fmt.Errorf("row %d: part lookup failed: %w", rowNum, findErr)
	}
	return nil
}

func getOrCreateBrand(tx *gorm.DB, name string) (*Brand, error) {
	var brand Brand
	err := tx.Where("name = ?", name).First(&brand).Error
	if err == nil {
		return &brand, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("brand lookup failed: %w", err)
	}
	brand = Brand{Name: name}
	if err := tx.Create(&brand).Error; err != nil {
		return nil, fmt.Errorf("failed to create brand %q: %w", name, err)
	}
	return &brand, nil
}

func getOrCreateWarehouse(tx *gorm.DB, name string) (*Warehouse, error) {
	var warehouse Warehouse
	err := tx.Where("name = ?", name).First(&warehouse).Error
	if err == nil {
		return &warehouse, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("warehouse lookup failed: %w", err)
	}
	warehouse = Warehouse{Name: name}
	if err := tx.Create(&warehouse).Error; err != nil {
		return nil, fmt.Errorf("failed to create warehouse %q: %w", name, err)
	}
	return &warehouse, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseIntCell(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", value)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %d", n)
	}
	return n, nil
}

func parseDecimalCell(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	// Tolerate spreadsheets exported with comma decimal separators.
	value = strings.ReplaceAll(value, ",", ".")
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", value)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative amount %s", d.String())
	}
	return d, nil
}
