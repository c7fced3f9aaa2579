package models

import "github.com/google/uuid"

type NotificationType string

const (
	NotificationReforcoVacina NotificationType = "reforco_vacina"
	NotificationEstoqueBaixo  NotificationType = "estoque_baixo"
	NotificationEvento        NotificationType = "evento"
)

type Notification struct {
	Base
	OrganizationID uuid.UUID `gorm:"type:uuid;index;not null" json:"organization_id"`

	Tipo     NotificationType `gorm:"not null;index" json:"tipo"`
	Titulo   string           `gorm:"size:255;not null" json:"titulo"`
	Mensagem string           `gorm:"type:text" json:"mensagem,omitempty"`
	Lida     bool             `gorm:"default:false;index" json:"lida"`

	// Row that triggered the notification (vaccination, product, event).
	RefID *uuid.UUID `gorm:"type:uuid;index" json:"ref_id,omitempty"`

	// Relationships
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}
