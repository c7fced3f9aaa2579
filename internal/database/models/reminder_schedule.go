package models

import "github.com/google/uuid"

// ReminderSchedule drives recurring notification sweeps (booster due dates,
// low stock) for one organization.
type ReminderSchedule struct {
	Base
	OrganizationID uuid.UUID `gorm:"type:uuid;index;not null" json:"organization_id"`

	Name      string `gorm:"size:255;not null" json:"name"`
	CronExpr  string `gorm:"size:100;not null" json:"cron_expr"` // e.g. "0 7 * * *" (7 AM daily)
	IsEnabled bool   `gorm:"default:true;index" json:"is_enabled"`

	// Timing (Unix timestamps, UTC)
	NextRunAt int64  `gorm:"index" json:"next_run_at"`
	LastRunAt *int64 `json:"last_run_at,omitempty"`

	// Relationships
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
}

func (ReminderSchedule) TableName() string {
	return "reminder_schedules"
}
