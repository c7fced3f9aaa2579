package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/infinityvet/infinityvet/internal/database/models"
	"github.com/infinityvet/infinityvet/internal/tenant"
	"github.com/infinityvet/infinityvet/internal/zootech"
	"github.com/infinityvet/infinityvet/pkg/util"
	"gorm.io/gorm"
)

type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	client *asynq.Client
}

func NewHandler(db *gorm.DB, logger *slog.Logger, client *asynq.Client) *Handler {
	return &Handler{
		db:     db,
		logger: logger,
		client: client,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeBoosterCheck, h.HandleBoosterCheck)
	mux.HandleFunc(TypeStockCheck, h.HandleStockCheck)
	mux.HandleFunc(TypeSchedulerTick, h.HandleSchedulerTick)
}

// HandleBoosterCheck sweeps one organization's vaccinations and creates a
// notification for each booster that has come due. A sweep is idempotent:
// while an unread notification for the same vaccination exists, no duplicate
// is created.
func (h *Handler) HandleBoosterCheck(ctx context.Context, t *asynq.Task) error {
	var payload BoosterCheckPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	h.logger.Info("starting booster check", "org_id", payload.OrganizationID)

	now := time.Now()

	var vaccinations []models.Vaccination
	if err := h.db.Scopes(tenant.Scope(payload.OrganizationID)).
		Preload("Animal").
		Where("reforco_previsto IS NOT NULL").
		Find(&vaccinations).Error; err != nil {
		return fmt.Errorf("load vaccinations: %w", err)
	}

	created := 0
	for _, v := range vaccinations {
		if !zootech.BoosterDue(*v.ReforcoPrevisto, now) {
			continue
		}

		exists, err := h.unreadNotificationExists(payload.OrganizationID, models.NotificationReforcoVacina, v.ID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		animalName := "animal"
		if v.Animal != nil {
			animalName = v.Animal.Nome
		}
		refID := v.ID
		notification := models.Notification{
			OrganizationID: payload.OrganizationID,
			Tipo:           models.NotificationReforcoVacina,
			Titulo:         fmt.Sprintf("Reforço de %s pendente", v.Vacina),
			Mensagem:       fmt.Sprintf("O reforço da vacina %s para %s venceu em %s.", v.Vacina, animalName, v.ReforcoPrevisto.Format("2006-01-02")),
			RefID:          &refID,
		}
		if err := h.db.Create(&notification).Error; err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
		created++
	}

	h.logger.Info("completed booster check",
		"org_id", payload.OrganizationID,
		"due", created,
	)
	return nil
}

// HandleStockCheck sweeps one organization's inventory and notifies on every
// product at or below its minimum stock level. Same idempotency rule as the
// booster sweep.
func (h *Handler) HandleStockCheck(ctx context.Context, t *asynq.Task) error {
	var payload StockCheckPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	h.logger.Info("starting stock check", "org_id", payload.OrganizationID)

	var products []models.Product
	if err := h.db.Scopes(tenant.Scope(payload.OrganizationID)).
		Where("quantidade <= estoque_minimo").
		Find(&products).Error; err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	created := 0
	for _, p := range products {
		exists, err := h.unreadNotificationExists(payload.OrganizationID, models.NotificationEstoqueBaixo, p.ID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		refID := p.ID
		notification := models.Notification{
			OrganizationID: payload.OrganizationID,
			Tipo:           models.NotificationEstoqueBaixo,
			Titulo:         fmt.Sprintf("Estoque baixo: %s", p.Nome),
			Mensagem:       fmt.Sprintf("%s está com %.1f %s em estoque (mínimo %.1f).", p.Nome, p.Quantidade, p.Unidade, p.EstoqueMinimo),
			RefID:          &refID,
		}
		if err := h.db.Create(&notification).Error; err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
		created++
	}

	h.logger.Info("completed stock check",
		"org_id", payload.OrganizationID,
		"low_stock", created,
	)
	return nil
}

// HandleSchedulerTick walks every enabled schedule whose next run has been
// reached, enqueues both sweeps for its organization, and advances the
// schedule to the next cron occurrence.
func (h *Handler) HandleSchedulerTick(ctx context.Context, t *asynq.Task) error {
	now := time.Now()

	var schedules []models.ReminderSchedule
	if err := h.db.
		Where("is_enabled = ?", true).
		Where("next_run_at <= ?", now.Unix()).
		Find(&schedules).Error; err != nil {
		return fmt.Errorf("load schedules: %w", err)
	}

	for _, schedule := range schedules {
		if err := h.enqueueSweeps(schedule.OrganizationID); err != nil {
			h.logger.Error("failed to enqueue sweeps",
				"schedule_id", schedule.ID,
				"org_id", schedule.OrganizationID,
				"error", err,
			)
			continue
		}

		next, err := util.NextCronTime(schedule.CronExpr, now)
		if err != nil {
			// A schedule with a broken expression would fire every tick;
			// disable it instead.
			h.logger.Error("invalid cron expression, disabling schedule",
				"schedule_id", schedule.ID,
				"cron_expr", schedule.CronExpr,
			)
			h.db.Model(&schedule).Update("is_enabled", false)
			continue
		}

		lastRun := now.Unix()
		if err := h.db.Model(&schedule).Updates(map[string]interface{}{
			"next_run_at": next.Unix(),
			"last_run_at": lastRun,
		}).Error; err != nil {
			h.logger.Error("failed to advance schedule", "schedule_id", schedule.ID, "error", err)
		}
	}

	if len(schedules) > 0 {
		h.logger.Info("scheduler tick", "due_schedules", len(schedules))
	}
	return nil
}

func (h *Handler) enqueueSweeps(orgID uuid.UUID) error {
	boosterTask, err := NewBoosterCheckTask(BoosterCheckPayload{OrganizationID: orgID})
	if err != nil {
		return err
	}
	if _, err := h.client.Enqueue(boosterTask); err != nil {
		return err
	}

	stockTask, err := NewStockCheckTask(StockCheckPayload{OrganizationID: orgID})
	if err != nil {
		return err
	}
	if _, err := h.client.Enqueue(stockTask); err != nil {
		return err
	}
	return nil
}

func (h *Handler) unreadNotificationExists(orgID uuid.UUID, tipo models.NotificationType, refID uuid.UUID) (bool, error) {
	var count int64
	err := h.db.Model(&models.Notification{}).
		Scopes(tenant.Scope(orgID)).
		Where("tipo = ? AND ref_id = ? AND lida = ?", tipo, refID, false).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check existing notification: %w", err)
	}
	return count > 0, nil
}
