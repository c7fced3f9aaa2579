package models

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeParto     EventType = "parto"
	EventTypeDesmame   EventType = "desmame"
	EventTypePesagem   EventType = "pesagem"
	EventTypeCobertura EventType = "cobertura"
	EventTypeOutro     EventType = "outro"
)

// Event is a zootechnical occurrence (birth, weaning, weighing, ...).
type Event struct {
	Base
	OrganizationID uuid.UUID  `gorm:"type:uuid;index;not null" json:"organization_id"`
	AnimalID       *uuid.UUID `gorm:"type:uuid;index" json:"animal_id,omitempty"`
	AuthorID       uuid.UUID  `gorm:"type:uuid" json:"author_id"`

	Tipo      EventType `gorm:"not null" json:"tipo"`
	Data      time.Time `gorm:"not null;index" json:"data"`
	Descricao string    `gorm:"type:text" json:"descricao,omitempty"`

	// Relationships
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	Animal       *Animal       `gorm:"foreignKey:AnimalID" json:"animal,omitempty"`
}

func (Event) TableName() string {
	return "events"
}
