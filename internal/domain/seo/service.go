// internal/domain/seo/service.go
package seo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/gooddrive/autoparts-backend/internal/config"
	redisdb "github.com/gooddrive/autoparts-backend/internal/infrastructure/database/redis"
)

// Sentinel errors mapped to HTTP statuses by the handlers
var (
	ErrPageNotFound     = errors.New("seo page not found")
	ErrSettingsNotFound = errors.New("seo settings not loaded")
)

const pageCacheTTL = 10 * time.Minute

// Service serves page metadata with a Redis read-through cache
type Service struct {
	db       *gorm.DB
	cache    *redisdb.Client
	config   *config.Config
	log      *logrus.Logger
	settings *SeoSettings
}

// NewService creates a new SEO service. cache may be nil; lookups then go
// straight to the database.
func NewService(db *gorm.DB, cache *redisdb.Client, cfg *config.Config, log *logrus.Logger) *Service {
	return &Service{
		db:     db,
		cache:  cache,
		config: cfg,
		log:    log,
	}
}

// PageRequest represents page create/update data
type PageRequest struct {
	Slug          string `json:"slug" binding:"required"`
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	Keywords      string `json:"keywords"`
	OgTitle       string `json:"og_title"`
	OgDescription string `json:"og_description"`
	OgImageURL    string `json:"og_image_url"`
	CanonicalURL  string `json:"canonical_url"`
	IsActive      *bool  `json:"is_active"`
}

// LoadSettings fetches the single settings row once, creating defaults on
// first run. Called at startup; the loaded row is then shared by reference.
func (s *Service) LoadSettings() (*SeoSettings, error) {
	var settings SeoSettings
	err := s.db.First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = SeoSettings{
			SiteName:         "GoodDrive",
			DefaultTitle:     "GoodDrive — auto parts",
			RobotsDirectives: "index, follow",
		}
		if err := s.db.Create(&settings).Error; err != nil {
			return nil, fmt.Errorf("failed to seed seo settings: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load seo settings: %w", err)
	}

	s.settings = &settings
	return s.settings, nil
}

// Settings returns the settings row loaded at startup
func (s *Service) Settings() (*SeoSettings, error) {
	if s.settings == nil {
		return nil, ErrSettingsNotFound
	}
	return s.settings, nil
}

func pageCacheKey(slug string) string {
	return "seo:page:" + slug
}

// GetPageBySlug retrieves an active page, trying the cache first
func (s *Service) GetPageBySlug(ctx context.Context, slug string) (*SeoPage, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, pageCacheKey(slug))
		if err == nil {
			var page SeoPage
			if err := json.Unmarshal([]byte(cached), &page); err == nil {
				return &page, nil
			}
			// Corrupt cache entry; fall through to the database
		} else if !redisdb.IsCacheMiss(err) {
			s.log.WithError(err).WithField("slug", slug).Warn("seo cache read failed")
		}
	}

	var page SeoPage
	err := s.db.Where("slug = ? AND is_active = ?", slug, true).First(&page).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve seo page: %w", err)
	}

	s.cachePage(ctx, &page)
	return &page, nil
}

func (s *Service) cachePage(ctx context.Context, page *SeoPage) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, pageCacheKey(page.Slug), payload, pageCacheTTL); err != nil {
		s.log.WithError(err).WithField("slug", page.Slug).Warn("seo cache write failed")
	}
}

func (s *Service) invalidatePage(ctx context.Context, slug string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, pageCacheKey(slug)); err != nil {
		s.log.WithError(err).WithField("slug", slug).Warn("seo cache invalidation failed")
	}
}

// GetPages lists every page for the admin panel
func (s *Service) GetPages() ([]SeoPage, error) {
	var pages []SeoPage
	if err := s.db.Order("slug ASC").Find(&pages).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve seo pages: %w", err)
	}
	return pages, nil
}

// CreatePage creates a page
func (s *Service) CreatePage(ctx context.Context, req *PageRequest) (*SeoPage, error) {
	page := SeoPage{
		Slug:          req.Slug,
		Title:         req.Title,
		Description:   req.Description,
		Keywords:      req.Keywords,
		OgTitle:       req.OgTitle,
		OgDescription: req.OgDescription,
		OgImageURL:    req.OgImageURL,
		CanonicalURL:  req.CanonicalURL,
		IsActive:      true,
	}
	if req.IsActive != nil {
		page.IsActive = *req.IsActive
	}

	if err := s.db.Create(&page).Error; err != nil {
		return nil, fmt.Errorf("failed to create seo page: %w", err)
	}
	s.invalidatePage(ctx, page.Slug)
	return &page, nil
}

// UpdatePage updates a page and drops its cache entry
func (s *Service) UpdatePage(ctx context.Context, id uint, req *PageRequest) (*SeoPage, error) {
	var page SeoPage
	if err := s.db.First(&page, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("failed to retrieve seo page: %w", err)
	}

	oldSlug := page.Slug
	page.Slug = req.Slug
	page.Title = req.Title
	page.Description = req.Description
	page.Keywords = req.Keywords
	page.OgTitle = req.OgTitle
	page.OgDescription = req.OgDescription
	page.OgImageURL = req.OgImageURL
	page.CanonicalURL = req.CanonicalURL
	if req.IsActive != nil {
		page.IsActive = *req.IsActive
	}

	if err := s.db.Save(&page).Error; err != nil {
		return nil, fmt.Errorf("failed to update seo page: %w", err)
	}

	s.invalidatePage(ctx, oldSlug)
	if page.Slug != oldSlug {
		s.invalidatePage(ctx, page.Slug)
	}
	return &page, nil
}

// DeletePage removes a page and drops its cache entry
func (s *Service) DeletePage(ctx context.Context, id uint) error {
	var page SeoPage
	if err := s.db.First(&page, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPageNotFound
		}
		return fmt.Errorf("failed to retrieve seo page: %w", err)
	}

	if err := s.db.Delete(&page).Error; err != nil {
		return fmt.Errorf("failed to delete seo page: %w", err)
	}
	s.invalidatePage(ctx, page.Slug)
	return nil
}

// UpdateSettings saves edits to the shared settings row
func (s *Service) UpdateSettings(req *SeoSettings) (*SeoSettings, error) {
	if s.settings == nil {
		return nil, ErrSettingsNotFound
	}

	s.settings.SiteName = req.SiteName
	s.settings.DefaultTitle = req.DefaultTitle
	s.settings.DefaultDescription = req.DefaultDescription
	s.settings.RobotsDirectives = req.RobotsDirectives

	if err := s.db.Save(s.settings).Error; err != nil {
		return nil, fmt.Errorf("failed to update seo settings: %w", err)
	}
	return s.settings, nil
}
