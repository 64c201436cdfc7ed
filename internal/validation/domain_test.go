package validation

import (
	"testing"

	"capstonehub/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAllowedRolesForEmail(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		email string
		want  []models.Role
	}{
		{"student domain", "budi@mail.ugm.ac.id", []models.Role{models.RoleMahasiswa, models.RoleAlumni}},
		{"student domain uppercase", "BUDI@MAIL.UGM.AC.ID", []models.Role{models.RoleMahasiswa, models.RoleAlumni}},
		{"staff domain", "pak.dosen@ugm.ac.id", []models.Role{models.RoleDosen, models.RoleAdmin}},
		{"external domain", "someone@gmail.com", []models.Role{models.RoleGuest}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AllowedRolesForEmail(tt.email))
		})
	}
}

func TestRoleAllowedForEmail(t *testing.T) {
	t.Parallel()
	assert.True(t, RoleAllowedForEmail("budi@mail.ugm.ac.id", models.RoleAlumni))
	assert.False(t, RoleAllowedForEmail("budi@mail.ugm.ac.id", models.RoleDosen))
	assert.True(t, RoleAllowedForEmail("dosen@ugm.ac.id", models.RoleAdmin))
	assert.False(t, RoleAllowedForEmail("someone@gmail.com", models.RoleMahasiswa))
}

func TestValidateGroupSize(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateGroupSize(1))
	assert.NoError(t, ValidateGroupSize(models.MaxGroupSize))
	assert.Error(t, ValidateGroupSize(0))
	assert.Error(t, ValidateGroupSize(models.MaxGroupSize+1))
}
