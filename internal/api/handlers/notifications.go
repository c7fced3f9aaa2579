package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/infinityvet/infinityvet/internal/api/dto"
	"github.com/infinityvet/infinityvet/internal/database/models"
	"github.com/infinityvet/infinityvet/internal/tasks"
	"github.com/infinityvet/infinityvet/internal/tenant"
	"gorm.io/gorm"
)

// TaskEnqueuer is the slice of the asynq client the handler needs.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type NotificationHandler struct {
	db    *gorm.DB
	queue TaskEnqueuer
}

func NewNotificationHandler(db *gorm.DB, queue TaskEnqueuer) *NotificationHandler {
	return &NotificationHandler{db: db, queue: queue}
}

// List handles GET /api/v1/notifications. Filters: ?lida=false, ?tipo=.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	query := h.db.Model(&models.Notification{}).Scopes(tenant.Scoped(r.Context()))

	if lida := r.URL.Query().Get("lida"); lida != "" {
		query = query.Where("lida = ?", lida == "true")
	}
	if tipo := r.URL.Query().Get("tipo"); tipo != "" {
		query = query.Where("tipo = ?", tipo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to count notifications"})
		return
	}

	var notifications []models.Notification
	if err := query.Order("lida ASC, created_at DESC").Find(&notifications).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list notifications"})
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse{Data: notifications, Total: total})
}

// MarkRead handles PUT /api/v1/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	notificationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid notification ID"})
		return
	}

	result := h.db.Model(&models.Notification{}).
		Scopes(tenant.Scoped(r.Context())).
		Where("id = ?", notificationID).
		Update("lida", true)
	if result.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to mark notification read"})
		return
	}
	if result.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Notification not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Notification marked read"})
}

// MarkAllRead handles PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Model(&models.Notification{}).
		Scopes(tenant.Scoped(r.Context())).
		Where("lida = ?", false).
		Update("lida", true).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to mark notifications read"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "All notifications marked read"})
}

// NotificationSummary is the header aggregate polled by the SPA. The counts
// are computed live from the source tables, not from notification rows, so
// the payload is current even before any sweep has run.
type NotificationSummary struct {
	ReforcosPendentes int64 `json:"reforcos_pendentes"`
	EstoqueBaixo      int64 `json:"estoque_baixo"`
	EventosProximos   int64 `json:"eventos_proximos"`
	Total             int64 `json:"total"`
}

// Summary handles GET /api/v1/notifications/summary. Due boosters, low-stock
// products, and events inside the next seven days, all at day granularity.
func (h *NotificationHandler) Summary(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var summary NotificationSummary

	if err := h.db.Model(&models.Vaccination{}).
		Scopes(tenant.Scoped(r.Context())).
		Where("reforco_previsto IS NOT NULL AND reforco_previsto < ?", today.AddDate(0, 0, 1)).
		Count(&summary.ReforcosPendentes).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to summarize notifications"})
		return
	}

	if err := h.db.Model(&models.Product{}).
		Scopes(tenant.Scoped(r.Context())).
		Where("quantidade <= estoque_minimo").
		Count(&summary.EstoqueBaixo).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to summarize notifications"})
		return
	}

	if err := h.db.Model(&models.Event{}).
		Scopes(tenant.Scoped(r.Context())).
		Where("data >= ? AND data < ?", today, today.AddDate(0, 0, 8)).
		Count(&summary.EventosProximos).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to summarize notifications"})
		return
	}

	summary.Total = summary.ReforcosPendentes + summary.EstoqueBaixo + summary.EventosProximos

	writeJSON(w, http.StatusOK, summary)
}

// Sweep handles POST /api/v1/notifications/sweep (admin only). Enqueues both
// worker sweeps for the caller's organization without waiting for a reminder
// schedule to fire.
func (h *NotificationHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	orgID := tenant.OrganizationID(r.Context())

	booster, err := tasks.NewBoosterCheckTask(tasks.BoosterCheckPayload{OrganizationID: orgID})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to enqueue sweep"})
		return
	}
	stock, err := tasks.NewStockCheckTask(tasks.StockCheckPayload{OrganizationID: orgID})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to enqueue sweep"})
		return
	}

	if _, err := h.queue.Enqueue(booster); err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to enqueue sweep"})
		return
	}
	if _, err := h.queue.Enqueue(stock); err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to enqueue sweep"})
		return
	}

	writeJSON(w, http.StatusAccepted, dto.SuccessResponse{Message: "Sweep enqueued"})
}

// Delete handles DELETE /api/v1/notifications/{id}
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	notificationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid notification ID"})
		return
	}

	result := h.db.Scopes(tenant.Scoped(r.Context())).Delete(&models.Notification{}, notificationID)
	if result.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete notification"})
		return
	}
	if result.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Notification not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Notification deleted"})
}
