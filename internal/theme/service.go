// Package theme manages the single global branding config. The SPA applies
// it to the live document; this side only stores and serves it.
package theme

import (
	"context"
	"errors"
	"log/slog"

	"github.com/infinityvet/infinityvet/internal/database/models"
	"gorm.io/gorm"
)

var (
	// ErrNotFound means no config row exists yet. Load treats this as a
	// normal outcome; Update treats it as a failure.
	ErrNotFound      = errors.New("theme config not found")
	ErrAlreadyExists = errors.New("theme config already exists")
)

type Service struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Defaults is the hardcoded fallback served while no row exists. It is never
// persisted implicitly; the superadmin design screen creates the row.
func Defaults() models.ThemeConfig {
	return models.ThemeConfig{
		PrimaryColor:    "#16a34a",
		SecondaryColor:  "#0f766e",
		BackgroundColor: "#f8fafc",
		Font:            "Inter",
		LayoutMode:      "sidebar",
		AppTitle:        "InfinityVet",
		AppSlogan:       "Gestão veterinária e agropecuária",
	}
}

// Load returns the singleton config row. When none exists it returns the
// defaults and persisted=false; that is a legitimate empty state, distinct
// from fetch errors.
func (s *Service) Load(ctx context.Context) (cfg models.ThemeConfig, persisted bool, err error) {
	var row models.ThemeConfig
	if err := s.db.WithContext(ctx).Order("created_at ASC").First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Defaults(), false, nil
		}
		return models.ThemeConfig{}, false, err
	}
	return row, true, nil
}

// Create persists the singleton. Fails if a row already exists.
func (s *Service) Create(ctx context.Context, cfg models.ThemeConfig) (*models.ThemeConfig, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.ThemeConfig{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyExists
	}
	if err := s.db.WithContext(ctx).Create(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpdateInput carries the fields of a partial update; nil means "keep".
type UpdateInput struct {
	PrimaryColor    *string `json:"primary_color"`
	SecondaryColor  *string `json:"secondary_color"`
	BackgroundColor *string `json:"background_color"`
	Font            *string `json:"font"`
	LayoutMode      *string `json:"layout_mode"`
	AppTitle        *string `json:"app_title"`
	AppSlogan       *string `json:"app_slogan"`
	LogoURL         *string `json:"logo_url"`
	FaviconURL      *string `json:"favicon_url"`
}

// Update merges the partial into the current row and persists the merge.
// Fails with ErrNotFound, mutating nothing, when no row exists.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*models.ThemeConfig, error) {
	var row models.ThemeConfig
	if err := s.db.WithContext(ctx).Order("created_at ASC").First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	apply(&row.PrimaryColor, input.PrimaryColor)
	apply(&row.SecondaryColor, input.SecondaryColor)
	apply(&row.BackgroundColor, input.BackgroundColor)
	apply(&row.Font, input.Font)
	apply(&row.LayoutMode, input.LayoutMode)
	apply(&row.AppTitle, input.AppTitle)
	apply(&row.AppSlogan, input.AppSlogan)
	apply(&row.LogoURL, input.LogoURL)
	apply(&row.FaviconURL, input.FaviconURL)

	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return nil, err
	}

	s.logger.Info("theme config updated", "id", row.ID)
	return &row, nil
}

func apply(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
