package models

import (
	"time"

	"github.com/google/uuid"
)

type AnimalStatus string

const (
	AnimalStatusAtivo    AnimalStatus = "ativo"
	AnimalStatusVendido  AnimalStatus = "vendido"
	AnimalStatusObito    AnimalStatus = "obito"
	AnimalStatusDescarte AnimalStatus = "descarte"
)

type Animal struct {
	Base
	OrganizationID uuid.UUID `gorm:"type:uuid;index;not null" json:"organization_id"`

	Nome           string       `gorm:"size:255;not null" json:"nome"`
	Especie        string       `gorm:"size:100" json:"especie"`
	Raca           string       `gorm:"size:100" json:"raca,omitempty"`
	Identificacao  string       `gorm:"size:100;index" json:"identificacao,omitempty"` // ear-tag / QR code value
	Sexo           string       `gorm:"size:10" json:"sexo,omitempty"`
	DataNascimento *time.Time   `json:"data_nascimento,omitempty"`
	PesoAtual      float64      `json:"peso_atual,omitempty"`
	Status         AnimalStatus `gorm:"default:'ativo'" json:"status"`

	LotID *uuid.UUID `gorm:"type:uuid;index" json:"lot_id,omitempty"`

	// Relationships
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	Lot          *Lot          `gorm:"foreignKey:LotID" json:"-"`
	Vaccinations []Vaccination `gorm:"foreignKey:AnimalID" json:"-"`
}

func (Animal) TableName() string {
	return "animals"
}
