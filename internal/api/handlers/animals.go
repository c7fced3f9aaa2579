package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/infinityvet/infinityvet/internal/api/dto"
	"github.com/infinityvet/infinityvet/internal/api/validation"
	"github.com/infinityvet/infinityvet/internal/database/models"
	"github.com/infinityvet/infinityvet/internal/plan"
	"github.com/infinityvet/infinityvet/internal/tenant"
	"github.com/infinityvet/infinityvet/internal/zootech"
	"gorm.io/gorm"
)

type AnimalHandler struct {
	db *gorm.DB
}

func NewAnimalHandler(db *gorm.DB) *AnimalHandler {
	return &AnimalHandler{db: db}
}

type AnimalRequest struct {
	Nome           string  `json:"nome"`
	Especie        string  `json:"especie"`
	Raca           string  `json:"raca"`
	Identificacao  string  `json:"identificacao"`
	Sexo           string  `json:"sexo"`
	DataNascimento string  `json:"data_nascimento"` // YYYY-MM-DD
	PesoAtual      float64 `json:"peso_atual"`
	Status         string  `json:"status"`
	LotID          *string `json:"lot_id"`
}

func (r AnimalRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Nome == "" {
		errors["nome"] = "Nome is required"
	}
	if r.Especie == "" {
		errors["especie"] = "Especie is required"
	}
	if r.DataNascimento != "" && !validation.IsValidDate(r.DataNascimento) {
		errors["data_nascimento"] = "Invalid date, expected YYYY-MM-DD"
	}
	if r.LotID != nil && *r.LotID != "" && !validation.IsValidUUID(*r.LotID) {
		errors["lot_id"] = "Invalid lot ID format"
	}
	return errors
}

// List handles GET /api/v1/animals. Optional ?q= filters on name,
// identification and species.
func (h *AnimalHandler) List(w http.ResponseWriter, r *http.Request) {
	query := h.db.Model(&models.Animal{}).Scopes(tenant.Scoped(r.Context()))

	if q := r.URL.Query().Get("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("nome LIKE ? OR identificacao LIKE ? OR especie LIKE ?", like, like, like)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to count animals"})
		return
	}

	var animals []models.Animal
	if err := query.Order("created_at DESC").Find(&animals).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list animals"})
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse{Data: animals, Total: total})
}

// Create handles POST /api/v1/animals. Enforces the plan's animal ceiling
// before inserting.
func (h *AnimalHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID := tenant.OrganizationID(r.Context())

	var req AnimalRequest
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
	if err := h.db.Model(&models.Animal{}).Scopes(tenant.Scope(orgID)).Count(&count).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to count animals"})
		return
	}
	if !plan.Allows(org.LimiteAnimais, count) {
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Animal limit reached for current plan"})
		return
	}

	animal := models.Animal{
		OrganizationID: orgID,
		Nome:           req.Nome,
		Especie:        req.Especie,
		Raca:           req.Raca,
		Identificacao:  req.Identificacao,
		Sexo:           req.Sexo,
		PesoAtual:      req.PesoAtual,
		Status:         models.AnimalStatusAtivo,
	}
	if req.Status != "" {
		animal.Status = models.AnimalStatus(req.Status)
	}
	if req.DataNascimento != "" {
		d, _ := validation.ParseDate(req.DataNascimento)
		animal.DataNascimento = &d
	}
	if req.LotID != nil && *req.LotID != "" {
		lotID, _ := uuid.Parse(*req.LotID)
		// Lot must exist in the same organization
		var lot models.Lot
		if err := h.db.Scopes(tenant.Scope(orgID)).First(&lot, lotID).Error; err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Lot not found"})
			return
		}
		animal.LotID = &lotID
	}

	if err := h.db.Create(&animal).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create animal"})
		return
	}

	writeJSON(w, http.StatusCreated, animal)
}

// Get handles GET /api/v1/animals/{id}
func (h *AnimalHandler) Get(w http.ResponseWriter, r *http.Request) {
	animalID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid animal ID"})
		return
	}

	var animal models.Animal
	if err := h.db.Scopes(tenant.Scoped(r.Context())).First(&animal, animalID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Animal not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get animal"})
		return
	}

	writeJSON(w, http.StatusOK, animal)
}

// Update handles PUT /api/v1/animals/{id}
func (h *AnimalHandler) Update(w http.ResponseWriter, r *http.Request) {
	animalID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid animal ID"})
		return
	}

	var req AnimalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	var animal models.Animal
	if err := h.db.Scopes(tenant.Scoped(r.Context())).First(&animal, animalID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Animal not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get animal"})
		return
	}

	animal.Nome = req.Nome
	animal.Especie = req.Especie
	animal.Raca = req.Raca
	animal.Identificacao = req.Identificacao
	animal.Sexo = req.Sexo
	animal.PesoAtual = req.PesoAtual
	if req.Status != "" {
		animal.Status = models.AnimalStatus(req.Status)
	}
	if req.DataNascimento != "" {
		d, _ := validation.ParseDate(req.DataNascimento)
		animal.DataNascimento = &d
	}

	if err := h.db.Save(&animal).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update animal"})
		return
	}

	writeJSON(w, http.StatusOK, animal)
}

// Delete handles DELETE /api/v1/animals/{id} (soft delete)
func (h *AnimalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	animalID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid animal ID"})
		return
	}

	result := h.db.Scopes(tenant.Scoped(r.Context())).Delete(&models.Animal{}, animalID)
	if result.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete animal"})
		return
	}
	if result.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Animal not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Animal deleted"})
}

// VaccinationCardEntry is one line of the printable vaccination card.
type VaccinationCardEntry struct {
	models.Vaccination
	ReforcoPendente bool `json:"reforco_pendente"`
}

type VaccinationCardResponse struct {
	Animal       models.Animal          `json:"animal"`
	Vaccinations []VaccinationCardEntry `json:"vaccinations"`
}

// Card handles GET /api/v1/animals/{id}/card — the full vaccination history
// the client renders into the host environment's print dialog.
func (h *AnimalHandler) Card(w http.ResponseWriter, r *http.Request) {
	animalID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid animal ID"})
		return
	}

	var animal models.Animal
	if err := h.db.Scopes(tenant.Scoped(r.Context())).First(&animal, animalID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Animal not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get animal"})
		return
	}

	var vaccinations []models.Vaccination
	if err := h.db.Scopes(tenant.Scoped(r.Context())).
		Where("animal_id = ?", animalID).
		Order("data_aplicacao DESC").
		Find(&vaccinations).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list vaccinations"})
		return
	}

	now := time.Now()
	entries := make([]VaccinationCardEntry, len(vaccinations))
	for i, v := range vaccinations {
		entries[i] = VaccinationCardEntry{
			Vaccination:     v,
			ReforcoPendente: v.ReforcoPrevisto != nil && zootech.BoosterDue(*v.ReforcoPrevisto, now),
		}
	}

	writeJSON(w, http.StatusOK, VaccinationCardResponse{Animal: animal, Vaccinations: entries})
}
