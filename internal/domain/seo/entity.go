// internal/domain/seo/entity.go
package seo

import "time"

// SeoPage holds the meta tags served for one storefront URL
type SeoPage struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Slug        string `gorm:"uniqueIndex;not null;size:200" json:"slug"`
	Title       string `gorm:"not null;size:200" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Keywords    string `gorm:"type:text" json:"keywords"`

	OgTitle       string `gorm:"size:200" json:"og_title"`
	OgDescription string `gorm:"type:text" json:"og_description"`
	OgImageURL    string `gorm:"size:500" json:"og_image_url"`
	CanonicalURL  string `gorm:"size:500" json:"canonical_url"`

	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SeoSettings is the single site-wide defaults row, loaded explicitly at
// startup and passed by reference
type SeoSettings struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	SiteName           string    `gorm:"size:200" json:"site_name"`
	DefaultTitle       string    `gorm:"size:200" json:"default_title"`
	DefaultDescription string    `gorm:"type:text" json:"default_description"`
	RobotsDirectives   string    `gorm:"type:text" json:"robots_directives"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName overrides
func (SeoPage) TableName() string     { return "seo_pages" }
func (SeoSettings) TableName() string { return "seo_settings" }
