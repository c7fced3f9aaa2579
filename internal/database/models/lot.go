package models

import "github.com/google/uuid"

type Lot struct {
	Base
	OrganizationID uuid.UUID `gorm:"type:uuid;index;not null" json:"organization_id"`

	Nome              string `gorm:"size:255;not null" json:"nome"`
	Finalidade        string `gorm:"size:100" json:"finalidade,omitempty"` // engorda, cria, recria, lactacao
	QuantidadeAnimais int    `gorm:"default:0" json:"quantidade_animais"`

	// Relationships
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	Animals      []Animal      `gorm:"foreignKey:LotID" json:"-"`
}

func (Lot) TableName() string {
	return "lots"
}
