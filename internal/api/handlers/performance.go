package handlers

import (
	"encoding/json"
	"net/http"

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

type PerformanceHandler struct {
	db *gorm.DB
}

func NewPerformanceHandler(db *gorm.DB) *PerformanceHandler {
	return &PerformanceHandler{db: db}
}

type PerformanceTestRequest struct {
	AnimalID       *string `json:"animal_id,omitempty"`
	LotID          *string `json:"lot_id,omitempty"`
	PesoInicial    float64 `json:"peso_inicial"`
	PesoAtual      float64 `json:"peso_atual"`
	ConsumoRacaoKg float64 `json:"consumo_racao_kg"`
	PeriodoDias    int     `json:"periodo_dias"`
}

func (r PerformanceTestRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.PesoInicial <= 0 {
		errors["peso_inicial"] = "Peso inicial must be positive"
	}
	if r.PesoAtual <= 0 {
		errors["peso_atual"] = "Peso atual must be positive"
	}
	if r.ConsumoRacaoKg < 0 {
		errors["consumo_racao_kg"] = "Consumo de racao cannot be negative"
	}
	if r.PeriodoDias <= 0 {
		errors["periodo_dias"] = "Periodo must be at least one day"
	}
	if r.AnimalID != nil && *r.AnimalID != "" && !validation.IsValidUUID(*r.AnimalID) {
		errors["animal_id"] = "Invalid animal ID format"
	}
	if r.LotID != nil && *r.LotID != "" && !validation.IsValidUUID(*r.LotID) {
		errors["lot_id"] = "Invalid lot ID format"
	}
	return errors
}

// apply copies the inputs onto the record and recomputes the derived fields.
// The client never supplies ganho_peso_dia or conversao_alimentar; whatever it
// sends for them is ignored.
func (r PerformanceTestRequest) apply(t *models.PerformanceTest) {
	t.PesoInicial = r.PesoInicial
	t.PesoAtual = r.PesoAtual
	t.ConsumoRacaoKg = r.ConsumoRacaoKg
	t.PeriodoDias = r.PeriodoDias
	t.GanhoPesoDia = zootech.DailyGain(r.PesoInicial, r.PesoAtual, r.PeriodoDias)
	t.ConversaoAlimentar = zootech.FeedConversion(r.ConsumoRacaoKg, r.PesoInicial, r.PesoAtual)
}

// List handles GET /api/v1/performance-tests. Filters: ?animal_id=, ?lot_id=.
func (h *PerformanceHandler) List(w http.ResponseWriter, r *http.Request) {
	query := h.db.Model(&models.PerformanceTest{}).
		Scopes(tenant.Scoped(r.Context())).
		Preload("Animal").
		Preload("Lot")

	if animalID := r.URL.Query().Get("animal_id"); animalID != "" {
		if !validation.IsValidUUID(animalID) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid animal ID"})
			return
		}
		query = query.Where("animal_id = ?", animalID)
	}
	if lotID := r.URL.Query().Get("lot_id"); lotID != "" {
		if !validation.IsValidUUID(lotID) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid lot ID"})
			return
		}
		query = query.Where("lot_id = ?", lotID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to count performance tests"})
		return
	}

	var tests []models.PerformanceTest
	if err := query.Order("created_at DESC").Find(&tests).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list performance tests"})
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse{Data: tests, Total: total})
}

// Create handles POST /api/v1/performance-tests
func (h *PerformanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID := tenant.OrganizationID(r.Context())
	userID := middleware.GetUserID(r.Context())

	var req PerformanceTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	test := models.PerformanceTest{
		OrganizationID: orgID,
		AuthorID:       userID,
	}
	if req.AnimalID != nil && *req.AnimalID != "" {
		animalID, _ := uuid.Parse(*req.AnimalID)
		var animal models.Animal
		if err := h.db.Scopes(tenant.Scope(orgID)).First(&animal, animalID).Error; err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Animal not found"})
			return
		}
		test.AnimalID = &animalID
	}
	if req.LotID != nil && *req.LotID != "" {
		lotID, _ := uuid.Parse(*req.LotID)
		var lot models.Lot
		if err := h.db.Scopes(tenant.Scope(orgID)).First(&lot, lotID).Error; err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Lot not found"})
			return
		}
		test.LotID = &lotID
	}
	req.apply(&test)

	if err := h.db.Create(&test).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create performance test"})
		return
	}

	writeJSON(w, http.StatusCreated, test)
}

// Get handles GET /api/v1/performance-tests/{id}
func (h *PerformanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	testID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid performance test ID"})
		return
	}

	var test models.PerformanceTest
	if err := h.db.Scopes(tenant.Scoped(r.Context())).
		Preload("Animal").Preload("Lot").
		First(&test, testID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Performance test not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get performance test"})
		return
	}

	writeJSON(w, http.StatusOK, test)
}

// Update handles PUT /api/v1/performance-tests/{id}. Derived fields are
// recomputed from the submitted inputs.
func (h *PerformanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	testID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid performance test ID"})
		return
	}

	var req PerformanceTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	var test models.PerformanceTest
	if err := h.db.Scopes(tenant.Scoped(r.Context())).First(&test, testID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Performance test not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get performance test"})
		return
	}

	req.apply(&test)

	if err := h.db.Save(&test).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update performance test"})
		return
	}

	writeJSON(w, http.StatusOK, test)
}

// Delete handles DELETE /api/v1/performance-tests/{id}
func (h *PerformanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	testID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid performance test ID"})
		return
	}

	result := h.db.Scopes(tenant.Scoped(r.Context())).Delete(&models.PerformanceTest{}, testID)
	if result.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete performance test"})
		return
	}
	if result.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Performance test not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Performance test deleted"})
}
