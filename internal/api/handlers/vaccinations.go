package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/infinityvet/infinityvet/internal/api/dto"
	"github.com/infinityvet/infinityvet/internal/api/middleware"
	"github.com/infinityvet/infinityvet/internal/api/validation"
	"github.com/infinityvet/infinityvet/internal/database/models"
	"github.com/infinityvet/infinityvet/internal/tenant"
	"github.com/infinityvet/infinityvet/internal/zootech"
	"gorm.io/gorm"
)

type VaccinationHandler struct {
	db *gorm.DB
}

func NewVaccinationHandler(db *gorm.DB) *VaccinationHandler {
	return &VaccinationHandler{db: db}
}

type VaccinationRequest struct {
	AnimalID        string `json:"animal_id"`
	Vacina          string `json:"vacina"`
	DataAplicacao   string `json:"data_aplicacao"`             // YYYY-MM-DD
	ReforcoPrevisto string `json:"reforco_previsto,omitempty"` // YYYY-MM-DD
	Veterinario     string `json:"veterinario,omitempty"`
	Observacoes     string `json:"observacoes,omitempty"`
}

func (r VaccinationRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.AnimalID == "" {
		errors["animal_id"] = "Animal ID is required"
	} else if !validation.IsValidUUID(r.AnimalID) {
		errors["animal_id"] = "Invalid animal ID format"
	}
	if r.Vacina == "" {
		errors["vacina"] = "Vacina is required"
	}
	if r.DataAplicacao == "" {
		errors["data_aplicacao"] = "Data de aplicacao is required"
	} else if !validation.IsValidDate(r.DataAplicacao) {
		errors["data_aplicacao"] = "Invalid date, expected YYYY-MM-DD"
	}
	if r.ReforcoPrevisto != "" && !validation.IsValidDate(r.ReforcoPrevisto) {
		errors["reforco_previsto"] = "Invalid date, expected YYYY-MM-DD"
	}
	return errors
}

// VaccinationResponse decorates a vaccination with the derived pending-booster
// flag. The flag is computed per request, never stored.
type VaccinationResponse struct {
	models.Vaccination
	ReforcoPendente bool `json:"reforco_pendente"`
}

func vaccinationToResponse(v models.Vaccination, now time.Time) VaccinationResponse {
	return VaccinationResponse{
		Vaccination:     v,
		ReforcoPendente: v.ReforcoPrevisto != nil && zootech.BoosterDue(*v.ReforcoPrevisto, now),
	}
}

// List handles GET /api/v1/vaccinations. Filters: ?animal_id=, ?due=true
// (only records with a booster due today or earlier).
func (h *VaccinationHandler) List(w http.ResponseWriter, r *http.Request) {
	query := h.db.Model(&models.Vaccination{}).
		Scopes(tenant.Scoped(r.Context())).
		Preload("Animal")

	if animalID := r.URL.Query().Get("animal_id"); animalID != "" {
		if !validation.IsValidUUID(animalID) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid animal ID"})
			return
		}
		query = query.Where("animal_id = ?", animalID)
	}
	if q := r.URL.Query().Get("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("vacina LIKE ? OR veterinario LIKE ?", like, like)
	}

	var vaccinations []models.Vaccination
	if err := query.Order("data_aplicacao DESC").Find(&vaccinations).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list vaccinations"})
		return
	}

	now := time.Now()
	dueOnly := r.URL.Query().Get("due") == "true"

	responses := make([]VaccinationResponse, 0, len(vaccinations))
	for _, v := range vaccinations {
		resp := vaccinationToResponse(v, now)
		if dueOnly && !resp.ReforcoPendente {
			continue
		}
		responses = append(responses, resp)
	}

	writeJSON(w, http.StatusOK, dto.ListResponse{Data: responses, Total: int64(len(responses))})
}

// Create handles POST /api/v1/vaccinations
func (h *VaccinationHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID := tenant.OrganizationID(r.Context())
	userID := middleware.GetUserID(r.Context())

	var req VaccinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	animalID, _ := uuid.Parse(req.AnimalID)

	// Animal must belong to the caller's organization
	var animal models.Animal
	if err := h.db.Scopes(tenant.Scope(orgID)).First(&animal, animalID).Error; err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Animal not found"})
		return
	}

	dataAplicacao, _ := validation.ParseDate(req.DataAplicacao)

	vaccination := models.Vaccination{
		OrganizationID: orgID,
		AnimalID:       animalID,
		AuthorID:       userID,
		Vacina:         req.Vacina,
		DataAplicacao:  dataAplicacao,
		Veterinario:    req.Veterinario,
		Observacoes:    req.Observacoes,
	}
	if req.ReforcoPrevisto != "" {
		d, _ := validation.ParseDate(req.ReforcoPrevisto)
		vaccination.ReforcoPrevisto = &d
	}

	if err := h.db.Create(&vaccination).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create vaccination"})
		return
	}

	writeJSON(w, http.StatusCreated, vaccinationToResponse(vaccination, time.Now()))
}

// Get handles GET /api/v1/vaccinations/{id}
func (h *VaccinationHandler) Get(w http.ResponseWriter, r *http.Request) {
	vaccinationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid vaccination ID"})
		return
	}

	var vaccination models.Vaccination
	if err := h.db.Scopes(tenant.Scoped(r.Context())).Preload("Animal").First(&vaccination, vaccinationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Vaccination not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get vaccination"})
		return
	}

	writeJSON(w, http.StatusOK, vaccinationToResponse(vaccination, time.Now()))
}

// Update handles PUT /api/v1/vaccinations/{id}
func (h *VaccinationHandler) Update(w http.ResponseWriter, r *http.Request) {
	vaccinationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid vaccination ID"})
		return
	}

	var req VaccinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	var vaccination models.Vaccination
	if err := h.db.Scopes(tenant.Scoped(r.Context())).First(&vaccination, vaccinationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Vaccination not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get vaccination"})
		return
	}

	vaccination.Vacina = req.Vacina
	vaccination.Veterinario = req.Veterinario
	vaccination.Observacoes = req.Observacoes
	vaccination.DataAplicacao, _ = validation.ParseDate(req.DataAplicacao)
	vaccination.ReforcoPrevisto = nil
	if req.ReforcoPrevisto != "" {
		d, _ := validation.ParseDate(req.ReforcoPrevisto)
		vaccination.ReforcoPrevisto = &d
	}

	if err := h.db.Save(&vaccination).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update vaccination"})
		return
	}

	writeJSON(w, http.StatusOK, vaccinationToResponse(vaccination, time.Now()))
}

// Delete handles DELETE /api/v1/vaccinations/{id}
func (h *VaccinationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vaccinationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid vaccination ID"})
		return
	}

	result := h.db.Scopes(tenant.Scoped(r.Context())).Delete(&models.Vaccination{}, vaccinationID)
	if result.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete vaccination"})
		return
	}
	if result.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Vaccination not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Vaccination deleted"})
}
