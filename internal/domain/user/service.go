// internal/domain/user/service.go
package user

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/gooddrive/autoparts-backend/internal/config"
	"github.com/gooddrive/autoparts-backend/internal/pkg/auth"
)

// Sentinel errors mapped to HTTP statuses by the handlers
var (
	ErrBadCredentials = errors.New("invalid username or password")
	ErrNotStaff       = errors.New("account has no admin access")
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameTaken  = errors.New("username already taken")
)

// Service handles admin authentication
type Service struct {
	db         *gorm.DB
	config     *config.Config
	log        *logrus.Logger
	jwtManager *auth.JWTManager
	passwords  *auth.PasswordManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config, log *logrus.Logger) *Service {
	return &Service{
		db:         db,
		config:     cfg,
		log:        log,
		jwtManager: auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TokenExpiry),
		passwords:  auth.NewPasswordManager(cfg.Security.BcryptCost),
	}
}

// JWTManager exposes the token manager for the auth middleware
func (s *Service) JWTManager() *auth.JWTManager {
	return s.jwtManager
}

// LoginRequest represents admin login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the session token and user payload
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

// Login verifies credentials and issues a session token. Bad credentials and
// unknown usernames are indistinguishable to the caller.
func (s *Service) Login(req *LoginRequest) (*LoginResponse, error) {
	var u User
	err := s.db.Where("username = ?", req.Username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.passwords.VerifyPassword(u.PasswordHash, req.Password) {
		s.log.WithField("username", req.Username).Warn("failed admin login attempt")
		return nil, ErrBadCredentials
	}
	if !u.CanAccessAdmin() {
		return nil, ErrNotStaff
	}

	token, err := s.jwtManager.GenerateToken(u.ID, u.Username, u.Email, u.IsStaff, u.IsSuperuser)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	now := time.Now()
	if err := s.db.Model(&u).Update("last_login", now).Error; err != nil {
		s.log.WithError(err).WithField("user_id", u.ID).Warn("failed to record last login")
	}
	u.LastLogin = &now

	return &LoginResponse{
		Token:     token,
		ExpiresAt: now.Add(s.config.JWT.TokenExpiry),
		User:      &u,
	}, nil
}

// Verify validates a bearer token and returns the current user payload
func (s *Service) Verify(tokenString string) (*User, error) {
	claims, err := s.jwtManager.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	var u User
	if err := s.db.First(&u, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !u.CanAccessAdmin() {
		return nil, ErrNotStaff
	}
	return &u, nil
}

// CreateUserRequest represents the superuser account-provisioning payload
type CreateUserRequest struct {
	Username    string `json:"username" binding:"required,min=3"`
	Email       string `json:"email" binding:"omitempty,email"`
	Password    string `json:"password" binding:"required"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// GetUsers lists admin accounts, superusers first
func (s *Service) GetUsers() ([]User, error) {
	var users []User
	if err := s.db.Order("is_superuser DESC, username ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}
	return users, nil
}

// CreateUser provisions an admin account; used by the seed and the superuser
// management endpoint
func (s *Service) CreateUser(username, email, password string, isStaff, isSuperuser bool) (*User, error) {
	var count int64
	if err := s.db.Model(&User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := s.passwords.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsStaff:      isStaff,
		IsSuperuser:  isSuperuser,
		IsActive:     true,
	}
	if err := s.db.Create(&u).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, nil
}
