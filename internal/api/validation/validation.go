package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/infinityvet/infinityvet/internal/database/models"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

	hexColorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// IsValidEmail checks if the string is a valid email format
func IsValidEmail(email string) bool {
	if len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}

// IsValidUUID checks if the string is a valid UUID format
func IsValidUUID(id string) bool {
	return uuidRegex.MatchString(id)
}

// IsValidHexColor checks CSS hex color notation (#abc or #aabbcc)
func IsValidHexColor(color string) bool {
	return hexColorRegex.MatchString(color)
}

// IsValidRole checks the profile role enumeration. Organization types are a
// separate enum and never valid here.
func IsValidRole(role string) bool {
	return models.ValidRoles[role]
}

// IsValidOrgType checks the organization type enumeration.
func IsValidOrgType(t string) bool {
	switch models.OrganizationType(t) {
	case models.OrgTypeClinicaVeterinaria,
		models.OrgTypeEmpresaAlimentos,
		models.OrgTypeEmpresaMedicamentos,
		models.OrgTypeFazenda:
		return true
	}
	return false
}

// IsValidDate checks a YYYY-MM-DD date string.
func IsValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// ParseDate parses a YYYY-MM-DD date string as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// SanitizeString removes potentially dangerous characters for display
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")

	var result strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// TruncateString truncates a string to maxLen characters
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
