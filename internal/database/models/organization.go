package models

type OrganizationType string

const (
	OrgTypeClinicaVeterinaria  OrganizationType = "clinica_veterinaria"
	OrgTypeEmpresaAlimentos    OrganizationType = "empresa_alimentos"
	OrgTypeEmpresaMedicamentos OrganizationType = "empresa_medicamentos"
	OrgTypeFazenda             OrganizationType = "fazenda"
)

type Organization struct {
	Base
	Name string           `gorm:"not null" json:"name"`
	Type OrganizationType `gorm:"not null" json:"type"`
	Plan string           `gorm:"default:'free'" json:"plan"` // free, pro, enterprise

	// Plan ceilings, always derived from the plan catalog. -1 means unlimited.
	LimiteAnimais      int `gorm:"not null" json:"limite_animais"`
	LimiteFuncionarios int `gorm:"not null" json:"limite_funcionarios"`
	LimiteProdutos     int `gorm:"not null" json:"limite_produtos"`

	// Relationships
	Users    []User    `gorm:"foreignKey:OrganizationID" json:"-"`
	Animals  []Animal  `gorm:"foreignKey:OrganizationID" json:"-"`
	Products []Product `gorm:"foreignKey:OrganizationID" json:"-"`
}

func (Organization) TableName() string {
	return "organizations"
}
