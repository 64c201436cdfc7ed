package service

import (
	"context"
	"fmt"
	"testing"

	"capstonehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(f *fixture) *UserService {
	return NewUserService(f.users)
}

func TestUserService_Precreate(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)
	ctx := context.Background()

	t.Run("provisions an unclaimed account", func(t *testing.T) {
		user, err := svc.Precreate(ctx, PrecreateUserInput{
			Name:  "Budi Santoso",
			Email: fmt.Sprintf("budi%d@mail.ugm.ac.id", seq),
			Role:  models.RoleMahasiswa,
			NIM:   "21/480001/TK/52999",
		})
		require.NoError(t, err)
		assert.Empty(t, user.Password)
		assert.Equal(t, models.RoleMahasiswa, user.Role)
	})

	t.Run("role must match email domain", func(t *testing.T) {
		_, err := svc.Precreate(ctx, PrecreateUserInput{
			Name:  "Pak Dosen",
			Email: "dosen@mail.ugm.ac.id",
			Role:  models.RoleDosen,
		})
		assert.Equal(t, "VALIDATION_ERROR", appCode(t, err))
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		_, err := svc.Precreate(ctx, PrecreateUserInput{
			Name:  "Siapa",
			Email: "siapa@ugm.ac.id",
			Role:  models.Role("rektor"),
		})
		assert.Equal(t, "VALIDATION_ERROR", appCode(t, err))
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		existing := f.user(t, models.RoleMahasiswa)
		_, err := svc.Precreate(ctx, PrecreateUserInput{
			Name:  "Kembar",
			Email: existing.Email,
			Role:  models.RoleMahasiswa,
		})
		assert.Equal(t, "CONFLICT", appCode(t, err))
	})

	t.Run("malformed email rejected", func(t *testing.T) {
		_, err := svc.Precreate(ctx, PrecreateUserInput{
			Name:  "Tanpa Domain",
			Email: "not-an-email",
			Role:  models.RoleGuest,
		})
		assert.Equal(t, "VALIDATION_ERROR", appCode(t, err))
	})
}

func TestUserService_UpdateRole(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)
	ctx := context.Background()

	t.Run("mahasiswa can become alumni", func(t *testing.T) {
		student := f.user(t, models.RoleMahasiswa)
		updated, err := svc.UpdateRole(ctx, student.ID, models.RoleAlumni)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAlumni, updated.Role)
	})

	t.Run("student domain cannot become dosen", func(t *testing.T) {
		student := f.user(t, models.RoleMahasiswa)
		_, err := svc.UpdateRole(ctx, student.ID, models.RoleDosen)
		assert.Equal(t, "VALIDATION_ERROR", appCode(t, err))
	})

	t.Run("staff domain can become admin", func(t *testing.T) {
		dosen := f.user(t, models.RoleDosen)
		updated, err := svc.UpdateRole(ctx, dosen.ID, models.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, updated.Role)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.UpdateRole(ctx, 999999, models.RoleAlumni)
		assert.Equal(t, "NOT_FOUND", appCode(t, err))
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)
	ctx := context.Background()

	user := f.user(t, models.RoleMahasiswa)
	updated, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{
		Name:  "Nama Lengkap",
		Prodi: "Teknologi Informasi",
	})
	require.NoError(t, err)
	assert.Equal(t, "Nama Lengkap", updated.Name)
	assert.Equal(t, "Teknologi Informasi", updated.Prodi)
	// Fields left blank in the input keep their stored values.
	assert.Equal(t, user.Email, updated.Email)
}

func TestUserService_Delete(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)
	ctx := context.Background()

	user := f.user(t, models.RoleGuest)
	require.NoError(t, svc.Delete(ctx, user.ID))

	err := svc.Delete(ctx, user.ID)
	assert.Equal(t, "NOT_FOUND", appCode(t, err))
}
