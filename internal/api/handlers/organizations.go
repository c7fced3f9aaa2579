package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/infinityvet/infinityvet/internal/api/dto"
	"github.com/infinityvet/infinityvet/internal/api/middleware"
	"github.com/infinityvet/infinityvet/internal/api/validation"
	"github.com/infinityvet/infinityvet/internal/database/models"
	"github.com/infinityvet/infinityvet/internal/plan"
	"github.com/infinityvet/infinityvet/internal/tenant"
	"gorm.io/gorm"
)

type OrganizationHandler struct {
	db *gorm.DB
}

func NewOrganizationHandler(db *gorm.DB) *OrganizationHandler {
	return &OrganizationHandler{db: db}
}

// CreateOrganizationRequest is the setup wizard payload. Limit fields are
// deliberately absent: ceilings always come from the plan catalog.
type CreateOrganizationRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Plan string `json:"plan"`
}

func (r CreateOrganizationRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.Type == "" {
		errors["type"] = "Type is required"
	} else if !validation.IsValidOrgType(r.Type) {
		errors["type"] = "Invalid organization type"
	}
	if r.Plan == "" {
		errors["plan"] = "Plan is required"
	} else if !plan.IsValid(r.Plan) {
		errors["plan"] = "Invalid plan"
	}
	return errors
}

// Create handles POST /api/v1/organizations — the setup wizard. The caller
// must not belong to an organization yet; on success they are attached to
// the new one as admin.
func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	// Limit fields are not part of the request type; anything the client
	// submits for them is dropped by the decoder.
	var req CreateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Profile not found"})
		return
	}
	if user.OrganizationID != nil {
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "User already belongs to an organization"})
		return
	}

	limits, err := plan.LimitsFor(req.Plan)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid plan"})
		return
	}

	org := models.Organization{
		Name:               req.Name,
		Type:               models.OrganizationType(req.Type),
		Plan:               req.Plan,
		LimiteAnimais:      limits.Animais,
		LimiteFuncionarios: limits.Funcionarios,
		LimiteProdutos:     limits.Produtos,
	}

	// Transaction: create org and attach the caller as admin
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&org).Error; err != nil {
			return err
		}
		return tx.Model(&user).Updates(map[string]interface{}{
			"organization_id": org.ID,
			"role":            models.RoleAdmin,
		}).Error
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create organization"})
		return
	}

	writeJSON(w, http.StatusCreated, org)
}

// OrganizationUsage pairs each ceiling with its current record count so the
// SPA can gate forms client-side.
type OrganizationUsage struct {
	Animais      int64 `json:"animais"`
	Funcionarios int64 `json:"funcionarios"`
	Produtos     int64 `json:"produtos"`
}

type CurrentOrganizationResponse struct {
	Organization models.Organization `json:"organization"`
	Usage        OrganizationUsage   `json:"usage"`
}

// Current handles GET /api/v1/organizations/current
func (h *OrganizationHandler) Current(w http.ResponseWriter, r *http.Request) {
	orgID := tenant.OrganizationID(r.Context())
	if orgID == uuid.Nil {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "No organization"})
		return
	}

	var org models.Organization
	if err := h.db.First(&org, orgID).Error; err != nil {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Organization not found"})
		return
	}

	var usage OrganizationUsage
	scoped := tenant.Scope(orgID)
	h.db.Model(&models.Animal{}).Scopes(scoped).Count(&usage.Animais)
	h.db.Model(&models.User{}).Scopes(scoped).Count(&usage.Funcionarios)
	h.db.Model(&models.Product{}).Scopes(scoped).Count(&usage.Produtos)

	writeJSON(w, http.StatusOK, CurrentOrganizationResponse{
		Organization: org,
		Usage:        usage,
	})
}

type ChangePlanRequest struct {
	Plan string `json:"plan"`
}

// ChangePlan handles PUT /api/v1/organizations/current/plan (admin only).
// Ceilings are re-derived from the catalog.
func (h *OrganizationHandler) ChangePlan(w http.ResponseWriter, r *http.Request) {
	orgID := tenant.OrganizationID(r.Context())

	var req ChangePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	limits, err := plan.LimitsFor(req.Plan)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid plan"})
		return
	}

	var org models.Organization
	if err := h.db.First(&org, orgID).Error; err != nil {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Organization not found"})
		return
	}

	updates := map[string]interface{}{
		"plan":                req.Plan,
		"limite_animais":      limits.Animais,
		"limite_funcionarios": limits.Funcionarios,
		"limite_produtos":     limits.Produtos,
	}
	if err := h.db.Model(&org).Updates(updates).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to change plan"})
		return
	}

	writeJSON(w, http.StatusOK, org)
}
