// internal/interfaces/http/handlers/catalog.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gooddrive/autoparts-backend/internal/domain/catalog"
	"github.com/gooddrive/autoparts-backend/internal/domain/notification"
)

// CatalogHandler handles part, brand and warehouse requests
type CatalogHandler struct {
	service       *catalog.Service
	notifications *notification.Service
	log           *logrus.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service *catalog.Service, notifications *notification.Service, log *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{
		service:       service,
		notifications: notifications,
		log:           log,
	}
}

// GetParts handles GET /parts
func (h *CatalogHandler) GetParts(c *gin.Context) {
	var req catalog.PartListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.service.GetParts(&req)
	if err != nil {
		h.log.WithError(err).Error("failed to list parts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve parts"})
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetPart handles GET /parts/:id
func (h *CatalogHandler) GetPart(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid part ID"})
		return
	}

	part, err := h.service.GetPart(id)
	if err != nil {
		if errors.Is(err, catalog.ErrPartNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Part not found"})
			return
		}
		h.log.WithError(err).WithField("part_id", id).Error("failed to get part")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve part"})
		return
	}
	c.JSON(http.StatusOK, part)
}

// GetAvailableParts handles GET /parts/available
func (h *CatalogHandler) GetAvailableParts(c *gin.Context) {
	var req catalog.PartListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.service.GetAvailableParts(&req)
	if err != nil {
		h.log.WithError(err).Error("failed to list available parts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve parts"})
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetLowStockParts handles GET /parts/low_stock
func (h *CatalogHandler) GetLowStockParts(c *gin.Context) {
	parts, err := h.service.GetLowStockParts()
	if err != nil {
		h.log.WithError(err).Error("failed to list low stock parts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve parts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"parts": parts, "count": len(parts)})
}

// GetSimilarParts handles GET /parts/:id/similar
func (h *CatalogHandler) GetSimilarParts(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid part ID"})
		return
	}

	parts, err := h.service.GetSimilarParts(id)
	if err != nil {
		if errors.Is(err, catalog.ErrPartNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Part not found"})
			return
		}
		h.log.WithError(err).WithField("part_id", id).Error("failed to get similar parts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve parts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"parts": parts})
}

// CreatePart handles POST /parts
func (h *CatalogHandler) CreatePart(c *gin.Context) {
	var req catalog.CreatePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	part, err := h.service.CreatePart(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Part created successfully", "data": part})
}

// UpdatePart handles PUT /parts/:id
func (h *CatalogHandler) UpdatePart(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid part ID"})
		return
	}

	var req catalog.UpdatePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	part, err := h.service.UpdatePart(id, &req)
	if err != nil {
		if errors.Is(err, catalog.ErrPartNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Part not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Part updated successfully", "data": part})
}

// AdjustStock handles POST /parts/:id/adjust_stock
func (h *CatalogHandler) AdjustStock(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid part ID"})
		return
	}

	var req catalog.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	part, err := h.service.AdjustStock(id, &req)
	if err != nil {
		if errors.Is(err, catalog.ErrPartNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Part not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Stock alerts are best-effort and never fail the adjustment
	if h.notifications != nil {
		if err := h.notifications.NotifyStockLevel(part); err != nil {
			h.log.WithError(err).WithField("part_id", part.ID).Warn("stock alert after adjustment failed")
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Stock adjusted successfully", "data": part})
}

// DeletePart handles DELETE /parts/:id
func (h *CatalogHandler) DeletePart(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid part ID"})
		return
	}

	if err := h.service.DeletePart(id); err != nil {
		if errors.Is(err, catalog.ErrPartNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Part not found"})
			return
		}
		h.log.WithError(err).WithField("part_id", id).Error("failed to delete part")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete part"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Part deleted successfully"})
}

// ImportParts handles POST /parts/import with a multipart xlsx upload
func (h *CatalogHandler) ImportParts(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An xlsx file is required in the 'file' field"})
		return
	}
	defer file.Close()

	result, err := h.service.ImportPartsFromExcel(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Import finished", "data": result})
}

// GetBrands handles GET /brands
func (h *CatalogHandler) GetBrands(c *gin.Context) {
	brands, err := h.service.GetBrands()
	if err != nil {
		h.log.WithError(err).Error("failed to list brands")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve brands"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"brands": brands})
}

// GetWarehouses handles GET /warehouses
func (h *CatalogHandler) GetWarehouses(c *gin.Context) {
	warehouses, err := h.service.GetWarehouses()
	if err != nil {
		h.log.WithError(err).Error("failed to list warehouses")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve warehouses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"warehouses": warehouses})
}

// AddPartImage handles POST /parts/:id/images
func (h *CatalogHandler) AddPartImage(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid part ID"})
		return
	}

	var req struct {
		ImageURL string `json:"image_url" binding:"required,url"`
		AltText  string `json:"alt_text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	image, err := h.service.AddPartImage(id, req.ImageURL, req.AltText)
	if err != nil {
		if errors.Is(err, catalog.ErrPartNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Part not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Image added successfully", "data": image})
}

// DeletePartImage handles DELETE /parts/images/:image_id
func (h *CatalogHandler) DeletePartImage(c *gin.Context) {
	imageID, err := parseIDParam(c, "image_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image ID"})
		return
	}

	if err := h.service.DeletePartImage(imageID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image deleted successfully"})
}

// parseIDParam parses a positive uint path parameter
func parseIDParam(c *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}
