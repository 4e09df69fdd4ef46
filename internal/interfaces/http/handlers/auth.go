// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gooddrive/autoparts-backend/internal/domain/user"
	"github.com/gooddrive/autoparts-backend/internal/pkg/auth"
)

// AuthHandler handles admin authentication requests
type AuthHandler struct {
	service *user.Service
	log     *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service *user.Service, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log,
	}
}

// Login handles POST /admin/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.service.Login(&req)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrBadCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		case errors.Is(err, user.ErrNotStaff):
			c.JSON(http.StatusForbidden, gin.H{"error": "Account has no admin access"})
		default:
			h.log.WithError(err).Error("admin login failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		}
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetUsers handles GET /admin/users (superuser only)
func (h *AuthHandler) GetUsers(c *gin.Context) {
	users, err := h.service.GetUsers()
	if err != nil {
		h.log.WithError(err).Error("failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// CreateUser handles POST /admin/users (superuser only)
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req user.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateUser(req.Username, req.Email, req.Password, req.IsStaff, req.IsSuperuser)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrUsernameTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already taken"})
		default:
			h.log.WithError(err).Error("failed to create user")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "data": created})
}

// Verify handles POST /admin/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	tokenString, err := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	u, err := h.service.Verify(tokenString)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotStaff):
			c.JSON(http.StatusForbidden, gin.H{"error": "Account has no admin access"})
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "user": u})
}
