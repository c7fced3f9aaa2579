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
	"gorm.io/gorm"
)

type EventHandler struct {
	db *gorm.DB
}

func NewEventHandler(db *gorm.DB) *EventHandler {
	return &EventHandler{db: db}
}

type EventRequest struct {
	Tipo      string  `json:"tipo"`
	Data      string  `json:"data"` // YYYY-MM-DD
	Descricao string  `json:"descricao,omitempty"`
	AnimalID  *string `json:"animal_id,omitempty"`
}

func validEventType(t string) bool {
	switch models.EventType(t) {
	case models.EventTypeParto, models.EventTypeDesmame, models.EventTypePesagem,
		models.EventTypeCobertura, models.EventTypeOutro:
		return true
	}
	return false
}

func (r EventRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Tipo == "" {
		errors["tipo"] = "Tipo is required"
	} else if !validEventType(r.Tipo) {
		errors["tipo"] = "Invalid event type"
	}
	if r.Data == "" {
		errors["data"] = "Data is required"
	} else if !validation.IsValidDate(r.Data) {
		errors["data"] = "Invalid date, expected YYYY-MM-DD"
	}
	if r.AnimalID != nil && *r.AnimalID != "" && !validation.IsValidUUID(*r.AnimalID) {
		errors["animal_id"] = "Invalid animal ID format"
	}
	return errors
}

// List handles GET /api/v1/events. Filters: ?tipo=, ?animal_id=.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	query := h.db.Model(&models.Event{}).
		Scopes(tenant.Scoped(r.Context())).
		Preload("Animal")

	if tipo := r.URL.Query().Get("tipo"); tipo != "" {
		query = query.Where("tipo = ?", tipo)
	}
	if animalID := r.URL.Query().Get("animal_id"); animalID != "" {
		if !validation.IsValidUUID(animalID) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid animal ID"})
			return
		}
		query = query.Where("animal_id = ?", animalID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to count events"})
		return
	}

	var events []models.Event
	if err := query.Order("data DESC").Find(&events).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list events"})
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse{Data: events, Total: total})
}

// Create handles POST /api/v1/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID := tenant.OrganizationID(r.Context())
	userID := middleware.GetUserID(r.Context())

	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	data, _ := validation.ParseDate(req.Data)

	event := models.Event{
		OrganizationID: orgID,
		AuthorID:       userID,
		Tipo:           models.EventType(req.Tipo),
		Data:           data,
		Descricao:      req.Descricao,
	}
	if req.AnimalID != nil && *req.AnimalID != "" {
		animalID, _ := uuid.Parse(*req.AnimalID)
		var animal models.Animal
		if err := h.db.Scopes(tenant.Scope(orgID)).First(&animal, animalID).Error; err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Animal not found"})
			return
		}
		event.AnimalID = &animalID
	}

	if err := h.db.Create(&event).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create event"})
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// Get handles GET /api/v1/events/{id}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid event ID"})
		return
	}

	var event models.Event
	if err := h.db.Scopes(tenant.Scoped(r.Context())).Preload("Animal").First(&event, eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Event not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get event"})
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// Update handles PUT /api/v1/events/{id}
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid event ID"})
		return
	}

	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	var event models.Event
	if err := h.db.Scopes(tenant.Scoped(r.Context())).First(&event, eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Event not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get event"})
		return
	}

	event.Tipo = models.EventType(req.Tipo)
	event.Data, _ = validation.ParseDate(req.Data)
	event.Descricao = req.Descricao

	if err := h.db.Save(&event).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update event"})
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// Delete handles DELETE /api/v1/events/{id}
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid event ID"})
		return
	}

	result := h.db.Scopes(tenant.Scoped(r.Context())).Delete(&models.Event{}, eventID)
	if result.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete event"})
		return
	}
	if result.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Event not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Event deleted"})
}
