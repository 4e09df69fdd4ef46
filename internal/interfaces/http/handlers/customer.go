// internal/interfaces/http/handlers/customer.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gooddrive/autoparts-backend/internal/domain/crm"
	"github.com/gooddrive/autoparts-backend/internal/interfaces/http/middleware"
)

// CustomerHandler handles CRM requests
type CustomerHandler struct {
	service *crm.Service
	log     *logrus.Logger
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(service *crm.Service, log *logrus.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: service,
		log:     log,
	}
}

// GetCustomers handles GET /customers
func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	var req crm.CustomerListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.service.GetCustomers(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetCustomer handles GET /customers/:id
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID"})
		return
	}

	customer, err := h.service.GetCustomer(id)
	if err != nil {
		if errors.Is(err, crm.ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		}
		h.log.WithError(err).WithField("customer_id", id).Error("failed to get customer")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve customer"})
		return
	}
	c.JSON(http.StatusOK, customer)
}

// UpdateCustomer handles PUT /customers/:id
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID"})
		return
	}

	var req crm.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.service.UpdateCustomer(id, &req)
	if err != nil {
		if errors.Is(err, crm.ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer updated successfully", "data": customer})
}

// GetOrdersHistory handles GET /customers/:id/orders_history
func (h *CustomerHandler) GetOrdersHistory(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID"})
		return
	}

	orders, err := h.service.GetOrdersHistory(id)
	if err != nil {
		if errors.Is(err, crm.ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		}
		h.log.WithError(err).WithField("customer_id", id).Error("failed to get order history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve order history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// UpdateStats handles POST /customers/:id/update_stats
func (h *CustomerHandler) UpdateStats(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID"})
		return
	}

	customer, err := h.service.RecomputeStatistics(id)
	if err != nil {
		if errors.Is(err, crm.ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		}
		h.log.WithError(err).WithField("customer_id", id).Error("failed to recompute statistics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to recompute statistics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Statistics recomputed", "data": customer})
}

// SyncFromOrders handles POST /customers/sync_from_orders
func (h *CustomerHandler) SyncFromOrders(c *gin.Context) {
	processed, err := h.service.SyncFromOrders()
	if err != nil {
		h.log.WithError(err).Error("customer sync from orders failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync customers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer sync finished", "processed": processed})
}

// DeleteCustomer handles DELETE /customers/:id?force=
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID"})
		return
	}

	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))

	if err := h.service.DeleteCustomer(id, force); err != nil {
		switch {
		case errors.Is(err, crm.ErrCustomerNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		case errors.Is(err, crm.ErrCustomerHasOrders):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.log.WithError(err).WithField("customer_id", id).Error("failed to delete customer")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete customer"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}

// AddNote handles POST /customers/:id/notes
func (h *CustomerHandler) AddNote(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID"})
		return
	}

	var req crm.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note, err := h.service.AddNote(id, &req, middleware.GetUserIDFromContext(c))
	if err != nil {
		if errors.Is(err, crm.ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Note added", "data": note})
}

// DeleteNote handles DELETE /customers/notes/:note_id
func (h *CustomerHandler) DeleteNote(c *gin.Context) {
	noteID, err := parseIDParam(c, "note_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid note ID"})
		return
	}

	if err := h.service.DeleteNote(noteID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Note deleted"})
}
