package handlers

import (
	"github.com/infinityvet/infinityvet/internal/api/dto"
	"github.com/infinityvet/infinityvet/internal/database/models"
)

func userToDTO(u *models.User) dto.UserDTO {
	d := dto.UserDTO{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
	if u.OrganizationID != nil {
		d.OrganizationID = u.OrganizationID.String()
	}
	if u.Organization != nil {
		d.OrgName = u.Organization.Name
	}
	return d
}
