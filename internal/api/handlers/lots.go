package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/infinityvet/infinityvet/internal/api/dto"
	"github.com/infinityvet/infinityvet/internal/database/models"
	"github.com/infinityvet/infinityvet/internal/tenant"
	"gorm.io/gorm"
)

type LotHandler struct {
	db *gorm.DB
}

func NewLotHandler(db *gorm.DB) *LotHandler {
	return &LotHandler{db: db}
}

type LotRequest struct {
	Nome              string `json:"nome"`
	Finalidade        string `json:"finalidade,omitempty"`
	QuantidadeAnimais int    `json:"quantidade_animais"`
}

func (r LotRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Nome == "" {
		errors["nome"] = "Nome is required"
	}
	if r.QuantidadeAnimais < 0 {
		errors["quantidade_animais"] = "Quantidade de animais cannot be negative"
	}
	return errors
}

// List handles GET /api/v1/lots
func (h *LotHandler) List(w http.ResponseWriter, r *http.Request) {
	query := h.db.Model(&models.Lot{}).Scopes(tenant.Scoped(r.Context()))

	if q := r.URL.Query().Get("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("nome LIKE ? OR finalidade LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to count lots"})
		return
	}

	var lots []models.Lot
	if err := query.Order("created_at DESC").Find(&lots).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list lots"})
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse{Data: lots, Total: total})
}

// Create handles POST /api/v1/lots
func (h *LotHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req LotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	lot := models.Lot{
		OrganizationID:    tenant.OrganizationID(r.Context()),
		Nome:              req.Nome,
		Finalidade:        req.Finalidade,
		QuantidadeAnimais: req.QuantidadeAnimais,
	}

	if err := h.db.Create(&lot).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create lot"})
		return
	}

	writeJSON(w, http.StatusCreated, lot)
}

// Get handles GET /api/v1/lots/{id}
func (h *LotHandler) Get(w http.ResponseWriter, r *http.Request) {
	lotID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid lot ID"})
		return
	}

	var lot models.Lot
	if err := h.db.Scopes(tenant.Scoped(r.Context())).First(&lot, lotID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Lot not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get lot"})
		return
	}

	writeJSON(w, http.StatusOK, lot)
}

// Update handles PUT /api/v1/lots/{id}
func (h *LotHandler) Update(w http.ResponseWriter, r *http.Request) {
	lotID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid lot ID"})
		return
	}

	var req LotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	var lot models.Lot
	if err := h.db.Scopes(tenant.Scoped(r.Context())).First(&lot, lotID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Lot not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get lot"})
		return
	}

	lot.Nome = req.Nome
	lot.Finalidade = req.Finalidade
	lot.QuantidadeAnimais = req.QuantidadeAnimais

	if err := h.db.Save(&lot).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update lot"})
		return
	}

	writeJSON(w, http.StatusOK, lot)
}

// Delete handles DELETE /api/v1/lots/{id}. Animals keep existing; their lot
// reference is cleared.
func (h *LotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	lotID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid lot ID"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Scopes(tenant.Scoped(r.Context())).Delete(&models.Lot{}, lotID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Animal{}).
			Scopes(tenant.Scoped(r.Context())).
			Where("lot_id = ?", lotID).
			Update("lot_id", nil).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Lot not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete lot"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Lot deleted"})
}
