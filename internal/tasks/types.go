package tasks

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeBoosterCheck  = "notify:booster_check"
	TypeStockCheck    = "notify:stock_check"
	TypeSchedulerTick = "scheduler:tick"
)

// BoosterCheckPayload scopes a booster sweep to one organization.
type BoosterCheckPayload struct {
	OrganizationID uuid.UUID `json:"organization_id"`
}

func NewBoosterCheckTask(payload BoosterCheckPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBoosterCheck, data), nil
}

// StockCheckPayload scopes a low-stock sweep to one organization.
type StockCheckPayload struct {
	OrganizationID uuid.UUID `json:"organization_id"`
}

func NewStockCheckTask(payload StockCheckPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeStockCheck, data), nil
}

// SchedulerTickPayload is empty - the tick walks every due schedule
type SchedulerTickPayload struct{}

func NewSchedulerTickTask() *asynq.Task {
	return asynq.NewTask(TypeSchedulerTick, nil)
}
