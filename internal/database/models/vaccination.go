package models

import (
	"time"

	"github.com/google/uuid"
)

type Vaccination struct {
	Base
	OrganizationID uuid.UUID `gorm:"type:uuid;index;not null" json:"organization_id"`
	AnimalID       uuid.UUID `gorm:"type:uuid;index;not null" json:"animal_id"`
	AuthorID       uuid.UUID `gorm:"type:uuid" json:"author_id"`

	Vacina        string     `gorm:"size:255;not null" json:"vacina"`
	DataAplicacao time.Time  `gorm:"not null" json:"data_aplicacao"`
	// Scheduled booster dose; due once the date is reached.
	ReforcoPrevisto *time.Time `json:"reforco_previsto,omitempty"`
	Veterinario     string     `gorm:"size:255" json:"veterinario,omitempty"`
	Observacoes     string     `gorm:"type:text" json:"observacoes,omitempty"`

	// Relationships
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	Animal       *Animal       `gorm:"foreignKey:AnimalID" json:"animal,omitempty"`
}

func (Vaccination) TableName() string {
	return "vaccinations"
}
