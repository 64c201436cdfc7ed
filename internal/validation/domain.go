package validation

import (
	"fmt"
	"strings"

	"capstonehub/internal/models"
)

const (
	studentEmailDomain = "@mail.ugm.ac.id"
	staffEmailDomain   = "@ugm.ac.id"
)

// AllowedRolesForEmail maps a campus email domain to the roles an account may
// claim. Student-domain addresses belong to students and alumni, the staff
// domain to lecturers and admins; anything else stays a guest.
func AllowedRolesForEmail(email string) []models.Role {
	lower := strings.ToLower(email)
	switch {
	case strings.HasSuffix(lower, studentEmailDomain):
		return []models.Role{models.RoleMahasiswa, models.RoleAlumni}
	case strings.HasSuffix(lower, staffEmailDomain):
		return []models.Role{models.RoleDosen, models.RoleAdmin}
	default:
		return []models.Role{models.RoleGuest}
	}
}

// RoleAllowedForEmail reports whether the role may be claimed with the email.
func RoleAllowedForEmail(email string, role models.Role) bool {
	for _, allowed := range AllowedRolesForEmail(email) {
		if allowed == role {
			return true
		}
	}
	return false
}

// DefaultRoleForEmail returns the role a fresh signup receives.
func DefaultRoleForEmail(email string) models.Role {
	return AllowedRolesForEmail(email)[0]
}

// ValidateGroupSize enforces the team size cap, leader included.
func ValidateGroupSize(size int) error {
	if size < 1 {
		return fmt.Errorf("group must have at least a leader")
	}
	if size > models.MaxGroupSize {
		return fmt.Errorf("group size cannot exceed %d members including the leader", models.MaxGroupSize)
	}
	return nil
}
