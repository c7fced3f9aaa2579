package models

import "github.com/google/uuid"

// PerformanceTest records a feed-performance measurement period. The derived
// fields (daily weight gain, feed conversion ratio) are recomputed server-side
// on every write and stored alongside their inputs; this is the one screen
// that persists computed values.
type PerformanceTest struct {
	Base
	OrganizationID uuid.UUID  `gorm:"type:uuid;index;not null" json:"organization_id"`
	AnimalID       *uuid.UUID `gorm:"type:uuid;index" json:"animal_id,omitempty"`
	LotID          *uuid.UUID `gorm:"type:uuid;index" json:"lot_id,omitempty"`
	AuthorID       uuid.UUID  `gorm:"type:uuid" json:"author_id"`

	// Inputs
	PesoInicial    float64 `gorm:"not null" json:"peso_inicial"`
	PesoAtual      float64 `gorm:"not null" json:"peso_atual"`
	ConsumoRacaoKg float64 `gorm:"not null" json:"consumo_racao_kg"`
	PeriodoDias    int     `gorm:"not null" json:"periodo_dias"`

	// Derived, persisted
	GanhoPesoDia       float64 `json:"ganho_peso_dia"`
	ConversaoAlimentar float64 `json:"conversao_alimentar"`

	// Relationships
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	Animal       *Animal       `gorm:"foreignKey:AnimalID" json:"animal,omitempty"`
	Lot          *Lot          `gorm:"foreignKey:LotID" json:"lot,omitempty"`
}

func (PerformanceTest) TableName() string {
	return "performance_tests"
}
