package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/infinityvet/infinityvet/internal/api/dto"
	"github.com/infinityvet/infinityvet/internal/api/middleware"
	"github.com/infinityvet/infinityvet/internal/api/validation"
	"github.com/infinityvet/infinityvet/internal/auth"
	"github.com/infinityvet/infinityvet/internal/database/models"
	"github.com/infinityvet/infinityvet/internal/plan"
	"github.com/infinityvet/infinityvet/internal/tenant"
	"gorm.io/gorm"
)

type TeamHandler struct {
	db *gorm.DB
}

func NewTeamHandler(db *gorm.DB) *TeamHandler {
	return &TeamHandler{db: db}
}

// List handles GET /api/v1/team — all members of the caller's organization.
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	var users []models.User
	if err := h.db.Scopes(tenant.Scoped(r.Context())).
		Order("created_at ASC").
		Find(&users).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list team members"})
		return
	}

	members := make([]dto.UserDTO, len(users))
	for i := range users {
		members[i] = userToDTO(&users[i])
	}

	writeJSON(w, http.StatusOK, dto.ListResponse{Data: members, Total: int64(len(members))})
}

type InviteRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r InviteRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Invalid email format"
	}
	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if len(r.Password) < 8 {
		errors["password"] = "Password must be at least 8 characters"
	}
	if r.Role == "" {
		errors["role"] = "Role is required"
	} else if !validation.IsValidRole(r.Role) || r.Role == models.RoleSuperadmin {
		errors["role"] = "Invalid role"
	}
	return errors
}

// Invite handles POST /api/v1/team (admin only). Creates a member inside the
// caller's organization, enforcing the plan's staff ceiling.
func (h *TeamHandler) Invite(w http.ResponseWriter, r *http.Request) {
	orgID := tenant.OrganizationID(r.Context())

	var req InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	var org models.Organization
	if err := h.db.First(&org, orgID).Error; err != nil {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Organization not found"})
		return
	}

	var count int64
	if err := h.db.Model(&models.User{}).Scopes(tenant.Scope(orgID)).Count(&count).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to count team members"})
		return
	}
	if !plan.Allows(org.LimiteFuncionarios, count) {
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Staff limit reached for current plan"})
		return
	}

	var existing models.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Email already registered"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create team member"})
		return
	}

	member := models.User{
		Email:          req.Email,
		PasswordHash:   hash,
		Name:           req.Name,
		OrganizationID: &orgID,
		Role:           req.Role,
		IsActive:       true,
	}

	if err := h.db.Create(&member).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create team member"})
		return
	}

	writeJSON(w, http.StatusCreated, userToDTO(&member))
}

type UpdateMemberRequest struct {
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func (r UpdateMemberRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Role != nil && (!validation.IsValidRole(*r.Role) || *r.Role == models.RoleSuperadmin) {
		errors["role"] = "Invalid role"
	}
	return errors
}

// Update handles PUT /api/v1/team/{id} (admin only). Changes role and active
// state; admins cannot demote or deactivate themselves.
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	memberID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid member ID"})
		return
	}

	if memberID == middleware.GetUserID(r.Context()) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Cannot modify your own membership"})
		return
	}

	var req UpdateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	var member models.User
	if err := h.db.Scopes(tenant.Scoped(r.Context())).First(&member, memberID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Team member not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get team member"})
		return
	}

	if req.Role != nil {
		member.Role = *req.Role
	}
	if req.IsActive != nil {
		member.IsActive = *req.IsActive
	}

	if err := h.db.Save(&member).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update team member"})
		return
	}

	writeJSON(w, http.StatusOK, userToDTO(&member))
}

// Remove handles DELETE /api/v1/team/{id} (admin only). Deactivates the
// member rather than deleting the profile, so authored records keep a valid
// reference.
func (h *TeamHandler) Remove(w http.ResponseWriter, r *http.Request) {
	memberID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid member ID"})
		return
	}

	if memberID == middleware.GetUserID(r.Context()) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Cannot remove yourself"})
		return
	}

	result := h.db.Model(&models.User{}).
		Scopes(tenant.Scoped(r.Context())).
		Where("id = ?", memberID).
		Update("is_active", false)
	if result.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to remove team member"})
		return
	}
	if result.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Team member not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Team member deactivated"})
}
