// internal/domain/catalog/service.go
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gooddrive/autoparts-backend/internal/config"
)

// ErrPartNotFound is returned when a part lookup misses
var ErrPartNotFound = errors.New("part not found")

// Service handles catalog business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
	log    *logrus.Logger
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, cfg *config.Config, log *logrus.Logger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		log:    log,
	}
}

// PartListRequest represents part list query parameters
type PartListRequest struct {
	Page         int    `form:"page,default=1"`
	Limit        int    `form:"limit,default=20"`
	Search       string `form:"search"`
	BrandID      uint   `form:"brand_id"`
	WarehouseID  uint   `form:"warehouse_id"`
	ShowInactive bool   `form:"show_inactive"`
	SortBy       string `form:"sort_by,default=created_at"`
	SortOrder    string `form:"sort_order,default=desc"`
}

// CreatePartRequest represents part creation data
type CreatePartRequest struct {
	Title              string          `json:"title" binding:"required"`
	Label              string          `json:"label"`
	OriginalNumber     string          `json:"original_number"`
	ManufacturerNumber string          `json:"manufacturer_number"`
	BrandID            uint            `json:"brand_id" binding:"required"`
	WarehouseID        uint            `json:"warehouse_id" binding:"required"`
	Quantity           int             `json:"quantity" binding:"gte=0"`
	Stock              int             `json:"stock" binding:"gte=0"`
	Reserve            int             `json:"reserve" binding:"gte=0"`
	PriceOpt           decimal.Decimal `json:"price_opt"`
	CostPrice          decimal.Decimal `json:"cost_price"`
	Description        string          `json:"description"`
	IsActive           *bool           `json:"is_active"`
}

// UpdatePartRequest represents part update data; nil fields are left untouched
type UpdatePartRequest struct {
	Title              *string          `json:"title"`
	Label              *string          `json:"label"`
	OriginalNumber     *string          `json:"original_number"`
	ManufacturerNumber *string          `json:"manufacturer_number"`
	BrandID            *uint            `json:"brand_id"`
	WarehouseID        *uint            `json:"warehouse_id"`
	Quantity           *int             `json:"quantity" binding:"omitempty,gte=0"`
	Stock              *int             `json:"stock" binding:"omitempty,gte=0"`
	Reserve            *int             `json:"reserve" binding:"omitempty,gte=0"`
	PriceOpt           *decimal.Decimal `json:"price_opt"`
	CostPrice          *decimal.Decimal `json:"cost_price"`
	Description        *string          `json:"description"`
	IsActive           *bool            `json:"is_active"`
}

// PartListResponse represents parts with pagination
type PartListResponse struct {
	Parts      []Part     `json:"parts"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// GetParts retrieves parts with filtering and pagination. Inactive parts are
// hidden unless ShowInactive is set.
func (s *Service) GetParts(req *PartListRequest) (*PartListResponse, error) {
	var parts []Part
	var total int64

	query := s.db.Model(&Part{}).
		Preload("Brand").
		Preload("Warehouse").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC, id ASC")
		})

	if !req.ShowInactive {
		query = query.Where("is_active = ?", true)
	}
	if req.BrandID > 0 {
		query = query.Where("brand_id = ?", req.BrandID)
	}
	if req.WarehouseID > 0 {
		query = query.Where("warehouse_id = ?", req.WarehouseID)
	}
	if req.Search != "" {
		term := "%" + strings.TrimSpace(req.Search) + "%"
		query = query.Where(
			"title ILIKE ? OR label ILIKE ? OR original_number ILIKE ? OR manufacturer_number ILIKE ? OR description ILIKE ?",
			term, term, term, term, term,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count parts: %w", err)
	}

	query = query.Order(s.buildOrderClause(req.SortBy, req.SortOrder))

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&parts).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve parts: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &PartListResponse{
		Parts: parts,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// GetPart retrieves a single part by ID
func (s *Service) GetPart(id uint) (*Part, error) {
	var part Part
	result := s.db.
		Preload("Brand").
		Preload("Warehouse").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC, id ASC")
		}).
		First(&part, id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPartNotFound
		}
		return nil, fmt.Errorf("failed to retrieve part: %w", result.Error)
	}

	return &part, nil
}

// GetAvailableParts retrieves active parts with available > 0
func (s *Service) GetAvailableParts(req *PartListRequest) (*PartListResponse, error) {
	var parts []Part
	var total int64

	query := s.db.Model(&Part{}).
		Preload("Brand").
		Preload("Warehouse").
		Where("is_active = ? AND available > 0", true)

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count available parts: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&parts).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve available parts: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &PartListResponse{
		Parts: parts,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// GetLowStockParts retrieves active parts at or below the configured low-stock level
func (s *Service) GetLowStockParts() ([]Part, error) {
	var parts []Part
	err := s.db.
		Preload("Brand").
		Preload("Warehouse").
		Where("is_active = ? AND available <= ?", true, s.config.Notification.LowStockLevel).
		Order("available ASC").
		Find(&parts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve low stock parts: %w", err)
	}
	return parts, nil
}

// GetSimilarParts retrieves up to five other active parts of the same brand
func (s *Service) GetSimilarParts(partID uint) ([]Part, error) {
	part, err := s.GetPart(partID)
	if err != nil {
		return nil, err
	}

	var similar []Part
	err = s.db.
		Preload("Brand").
		Where("brand_id = ? AND is_active = ? AND id <> ?", part.BrandID, true, part.ID).
		Limit(5).
		Find(&similar).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve similar parts: %w", err)
	}
	return similar, nil
}

// CreatePart creates a new part. The available field is derived in the
// BeforeSave hook, never taken from input.
func (s *Service) CreatePart(req *CreatePartRequest) (*Part, error) {
	if req.PriceOpt.IsNegative() || req.CostPrice.IsNegative() {
		return nil, fmt.Errorf("prices must not be negative")
	}

	var brand Brand
	if err := s.db.First(&brand, req.BrandID).Error; err != nil {
		return nil, fmt.Errorf("brand %d not found", req.BrandID)
	}
	var warehouse Warehouse
	if err := s.db.First(&warehouse, req.WarehouseID).Error; err != nil {
		return nil, fmt.Errorf("warehouse %d not found", req.WarehouseID)
	}

	part := Part{
		Title:              req.Title,
		Label:              req.Label,
		OriginalNumber:     req.OriginalNumber,
		ManufacturerNumber: req.ManufacturerNumber,
		BrandID:            req.BrandID,
		WarehouseID:        req.WarehouseID,
		Quantity:           req.Quantity,
		Stock:              req.Stock,
		Reserve:            req.Reserve,
		PriceOpt:           req.PriceOpt,
		CostPrice:          req.CostPrice,
		Description:        req.Description,
		IsActive:           true,
	}
	if req.IsActive != nil {
		part.IsActive = *req.IsActive
	}

	if err := s.db.Create(&part).Error; err != nil {
		return nil, fmt.Errorf("failed to create part: %w", err)
	}

	return s.GetPart(part.ID)
}

// UpdatePart updates a part. Loading and saving the full record keeps the
// BeforeSave recompute of available on this path.
func (s *Service) UpdatePart(id uint, req *UpdatePartRequest) (*Part, error) {
	var part Part
	if err := s.db.First(&part, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartNotFound
		}
		return nil, fmt.Errorf("failed to retrieve part: %w", err)
	}

	if req.Title != nil {
		part.Title = *req.Title
	}
	if req.Label != nil {
		part.Label = *req.Label
	}
	if req.OriginalNumber != nil {
		part.OriginalNumber = *req.OriginalNumber
	}
	if req.ManufacturerNumber != nil {
		part.ManufacturerNumber = *req.ManufacturerNumber
	}
	if req.BrandID != nil {
		part.BrandID = *req.BrandID
	}
	if req.WarehouseID != nil {
		part.WarehouseID = *req.WarehouseID
	}
	if req.Quantity != nil {
		part.Quantity = *req.Quantity
	}
	if req.Stock != nil {
		part.Stock = *req.Stock
	}
	if req.Reserve != nil {
		part.Reserve = *req.Reserve
	}
	if req.PriceOpt != nil {
		if req.PriceOpt.IsNegative() {
			return nil, fmt.Errorf("price_opt must not be negative")
		}
		part.PriceOpt = *req.PriceOpt
	}
	if req.CostPrice != nil {
		if req.CostPrice.IsNegative() {
			return nil, fmt.Errorf("cost_price must not be negative")
		}
		part.CostPrice = *req.CostPrice
	}
	if req.Description != nil {
		part.Description = *req.Description
	}
	if req.IsActive != nil {
		part.IsActive = *req.IsActive
	}

	if err := s.db.Save(&part).Error; err != nil {
		return nil, fmt.Errorf("failed to update part: %w", err)
	}

	return s.GetPart(part.ID)
}

// AdjustStockRequest represents a relative stock correction
type AdjustStockRequest struct {
	StockDelta   int `json:"stock_delta"`
	ReserveDelta int `json:"reserve_delta"`
}

// AdjustStock applies deltas to stock and reserve, refusing to drive either
// below zero. Loading and saving the record keeps the available recompute in
// the BeforeSave hook.
func (s *Service) AdjustStock(id uint, req *AdjustStockRequest) (*Part, error) {
	var part Part

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&part, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPartNotFound
			}
			return fmt.Errorf("failed to retrieve part: %w", err)
		}

		newStock := part.Stock + req.StockDelta
		newReserve := part.Reserve + req.ReserveDelta
		if newStock < 0 {
			return fmt.Errorf("stock adjustment would make stock negative (%d)", newStock)
		}
		if newReserve < 0 {
			return fmt.Errorf("stock adjustment would make reserve negative (%d)", newReserve)
		}

		part.Stock = newStock
		part.Reserve = newReserve
		if err := tx.Save(&part).Error; err != nil {
			return fmt.Errorf("failed to adjust stock: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetPart(part.ID)
}

// DeletePart removes a part; order items referencing it cascade away
func (s *Service) DeletePart(id uint) error {
	result := s.db.Delete(&Part{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete part: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPartNotFound
	}
	return nil
}

// GetBrands retrieves all brands ordered by name
func (s *Service) GetBrands() ([]Brand, error) {
	var brands []Brand
	if err := s.db.Order("name ASC").Find(&brands).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve brands: %w", err)
	}
	return brands, nil
}

// GetWarehouses retrieves all warehouses ordered by name
func (s *Service) GetWarehouses() ([]Warehouse, error) {
	var warehouses []Warehouse
	if err := s.db.Order("name ASC").Find(&warehouses).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve warehouses: %w", err)
	}
	return warehouses, nil
}

// AddPartImage attaches an external image URL to a part
func (s *Service) AddPartImage(partID uint, imageURL, altText string) (*PartImage, error) {
	part, err := s.GetPart(partID)
	if err != nil {
		return nil, err
	}

	if altText == "" {
		altText = part.Title
	}

	image := PartImage{
		PartID:   part.ID,
		ImageURL: imageURL,
		AltText:  altText,
	}
	if err := s.db.Create(&image).Error; err != nil {
		return nil, fmt.Errorf("failed to create part image: %w", err)
	}
	return &image, nil
}

// DeletePartImage removes a part image
func (s *Service) DeletePartImage(imageID uint) error {
	result := s.db.Delete(&PartImage{}, imageID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete part image: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("part image not found")
	}
	return nil
}

func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"title":      true,
		"price_opt":  true,
		"available":  true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}
	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}
