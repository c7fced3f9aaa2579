package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/infinityvet/infinityvet/internal/api/dto"
	"github.com/infinityvet/infinityvet/internal/database/models"
	"github.com/infinityvet/infinityvet/internal/tenant"
	"github.com/infinityvet/infinityvet/pkg/util"
	"gorm.io/gorm"
)

type ReminderHandler struct {
	db *gorm.DB
}

func NewReminderHandler(db *gorm.DB) *ReminderHandler {
	return &ReminderHandler{db: db}
}

type ReminderScheduleRequest struct {
	Name      string `json:"name"`
	CronExpr  string `json:"cron_expr"`
	IsEnabled *bool  `json:"is_enabled,omitempty"`
}

func (r ReminderScheduleRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.CronExpr == "" {
		errors["cron_expr"] = "Cron expression is required"
	} else if err := util.ValidateCronExpr(r.CronExpr); err != nil {
		errors["cron_expr"] = "Invalid cron expression"
	}
	return errors
}

// List handles GET /api/v1/reminders
func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	var schedules []models.ReminderSchedule
	if err := h.db.Scopes(tenant.Scoped(r.Context())).
		Order("created_at DESC").
		Find(&schedules).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list reminder schedules"})
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse{Data: schedules, Total: int64(len(schedules))})
}

// Create handles POST /api/v1/reminders
func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ReminderScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	next, err := util.NextCronTime(req.CronExpr, time.Now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid cron expression"})
		return
	}

	schedule := models.ReminderSchedule{
		OrganizationID: tenant.OrganizationID(r.Context()),
		Name:           req.Name,
		CronExpr:       req.CronExpr,
		IsEnabled:      true,
		NextRunAt:      next.Unix(),
	}
	if req.IsEnabled != nil {
		schedule.IsEnabled = *req.IsEnabled
	}

	if err := h.db.Create(&schedule).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create reminder schedule"})
		return
	}

	writeJSON(w, http.StatusCreated, schedule)
}

// Update handles PUT /api/v1/reminders/{id}. Changing the cron expression
// recomputes the next run.
func (h *ReminderHandler) Update(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid schedule ID"})
		return
	}

	var req ReminderScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	var schedule models.ReminderSchedule
	if err := h.db.Scopes(tenant.Scoped(r.Context())).First(&schedule, scheduleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Reminder schedule not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get reminder schedule"})
		return
	}

	if req.CronExpr != schedule.CronExpr {
		next, err := util.NextCronTime(req.CronExpr, time.Now())
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid cron expression"})
			return
		}
		schedule.CronExpr = req.CronExpr
		schedule.NextRunAt = next.Unix()
	}
	schedule.Name = req.Name
	if req.IsEnabled != nil {
		schedule.IsEnabled = *req.IsEnabled
	}

	if err := h.db.Save(&schedule).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update reminder schedule"})
		return
	}

	writeJSON(w, http.StatusOK, schedule)
}

// Delete handles DELETE /api/v1/reminders/{id}
func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid schedule ID"})
		return
	}

	result := h.db.Scopes(tenant.Scoped(r.Context())).Delete(&models.ReminderSchedule{}, scheduleID)
	if result.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete reminder schedule"})
		return
	}
	if result.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Reminder schedule not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Reminder schedule deleted"})
}
