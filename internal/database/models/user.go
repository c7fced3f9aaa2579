package models

import "github.com/google/uuid"

const (
	RoleSuperadmin     = "superadmin"
	RoleAdmin          = "admin"
	RoleVeterinario    = "veterinario"
	RoleColaborador    = "colaborador"
	RoleVendedor       = "vendedor"
	RoleGerenteProduto = "gerente_produto"
)

// ValidRoles is the single role enumeration used everywhere. Organization
// types are a separate enum and are never written into the role column.
var ValidRoles = map[string]bool{
	RoleSuperadmin:     true,
	RoleAdmin:          true,
	RoleVeterinario:    true,
	RoleColaborador:    true,
	RoleVendedor:       true,
	RoleGerenteProduto: true,
}

type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`

	// Null until the setup wizard attaches an organization.
	OrganizationID *uuid.UUID `gorm:"type:uuid;index" json:"organization_id,omitempty"`
	Role           string     `gorm:"default:'colaborador'" json:"role"`
	IsActive       bool       `gorm:"default:true" json:"is_active"`

	// Relationships
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

func (User) TableName() string {
	return "users"
}
