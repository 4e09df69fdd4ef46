// internal/interfaces/http/handlers/seo.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gooddrive/autoparts-backend/internal/domain/seo"
)

// SeoHandler handles SEO page and settings requests
type SeoHandler struct {
	service *seo.Service
	log     *logrus.Logger
}

// NewSeoHandler creates a new SEO handler
func NewSeoHandler(service *seo.Service, log *logrus.Logger) *SeoHandler {
	return &SeoHandler{
		service: service,
		log:     log,
	}
}

// GetPageBySlug handles GET /seo/pages/:slug (public, cached)
func (h *SeoHandler) GetPageBySlug(c *gin.Context) {
	page, err := h.service.GetPageBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, seo.ErrPageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
			return
		}
		h.log.WithError(err).Error("failed to get seo page")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve page"})
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetPages handles GET /seo/pages (admin)
func (h *SeoHandler) GetPages(c *gin.Context) {
	pages, err := h.service.GetPages()
	if err != nil {
		h.log.WithError(err).Error("failed to list seo pages")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve pages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pages": pages})
}

// CreatePage handles POST /seo/pages
func (h *SeoHandler) CreatePage(c *gin.Context) {
	var req seo.PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.service.CreatePage(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Page created successfully", "data": page})
}

// UpdatePage handles PUT /seo/pages/:id
func (h *SeoHandler) UpdatePage(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page ID"})
		return
	}

	var req seo.PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.service.UpdatePage(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, seo.ErrPageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Page updated successfully", "data": page})
}

// DeletePage handles DELETE /seo/pages/:id
func (h *SeoHandler) DeletePage(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page ID"})
		return
	}

	if err := h.service.DeletePage(c.Request.Context(), id); err != nil {
		if errors.Is(err, seo.ErrPageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
			return
		}
		h.log.WithError(err).WithField("page_id", id).Error("failed to delete seo page")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete page"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Page deleted successfully"})
}

// GetSettings handles GET /seo/settings
func (h *SeoHandler) GetSettings(c *gin.Context) {
	settings, err := h.service.Settings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "SEO settings are not loaded"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings handles PUT /seo/settings
func (h *SeoHandler) UpdateSettings(c *gin.Context) {
	var req seo.SeoSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.service.UpdateSettings(&req)
	if err != nil {
		h.log.WithError(err).Error("failed to update seo settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings updated successfully", "data": settings})
}
