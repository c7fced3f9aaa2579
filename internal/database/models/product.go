package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	Base
	OrganizationID uuid.UUID `gorm:"type:uuid;index;not null" json:"organization_id"`

	Nome          string     `gorm:"size:255;not null" json:"nome"`
	Categoria     string     `gorm:"size:100" json:"categoria,omitempty"` // vacina, medicamento, racao, suplemento
	Quantidade    float64    `gorm:"default:0" json:"quantidade"`
	Unidade       string     `gorm:"size:20" json:"unidade,omitempty"` // un, kg, l, dose
	EstoqueMinimo float64    `gorm:"default:0" json:"estoque_minimo"`
	Validade      *time.Time `json:"validade,omitempty"`
	Fabricante    string     `gorm:"size:255" json:"fabricante,omitempty"`
	Indicacoes    string     `gorm:"type:text" json:"indicacoes,omitempty"`

	// Relationships
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// EstoqueBaixo reports whether the stock level has reached the minimum.
// Computed at read time, never persisted.
func (p *Product) EstoqueBaixo() bool {
	return p.Quantidade <= p.EstoqueMinimo
}
