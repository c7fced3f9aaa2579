package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/infinityvet/infinityvet/internal/api/dto"
	"github.com/infinityvet/infinityvet/internal/api/validation"
	"github.com/infinityvet/infinityvet/internal/database/models"
	"github.com/infinityvet/infinityvet/internal/theme"
)

type ThemeHandler struct {
	service *theme.Service
}

func NewThemeHandler(service *theme.Service) *ThemeHandler {
	return &ThemeHandler{service: service}
}

type ThemeResponse struct {
	Config models.ThemeConfig `json:"config"`
	// False while no row exists; the SPA then renders defaults without
	// applying a persisted theme.
	Persisted bool `json:"persisted"`
}

// Get handles GET /api/v1/theme (public). A missing row is a normal empty
// state and yields the hardcoded defaults.
func (h *ThemeHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, persisted, err := h.service.Load(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load theme config"})
		return
	}

	writeJSON(w, http.StatusOK, ThemeResponse{Config: cfg, Persisted: persisted})
}

// Create handles POST /api/v1/theme (superadmin only).
func (h *ThemeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var cfg models.ThemeConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := validateColors(cfg.PrimaryColor, cfg.SecondaryColor, cfg.BackgroundColor); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	created, err := h.service.Create(r.Context(), cfg)
	if err != nil {
		if err == theme.ErrAlreadyExists {
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Theme config already exists"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create theme config"})
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/v1/theme (superadmin only). Fails without
// mutating anything when no config row exists yet.
func (h *ThemeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input theme.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	errs := make(map[string]string)
	for field, c := range map[string]*string{
		"primary_color":    input.PrimaryColor,
		"secondary_color":  input.SecondaryColor,
		"background_color": input.BackgroundColor,
	} {
		if c != nil && !validation.IsValidHexColor(*c) {
			errs[field] = "Invalid hex color"
		}
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	updated, err := h.service.Update(r.Context(), input)
	if err != nil {
		if err == theme.ErrNotFound {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "No theme config to update"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update theme config"})
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func validateColors(colors ...string) map[string]string {
	fields := []string{"primary_color", "secondary_color", "background_color"}
	errs := make(map[string]string)
	for i, c := range colors {
		if c != "" && !validation.IsValidHexColor(c) {
			errs[fields[i]] = "Invalid hex color"
		}
	}
	return errs
}
