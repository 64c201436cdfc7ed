package seed

import (
	"testing"

	"capstonehub/internal/database"
	"capstonehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func TestSeed_PopulatesAllEntities(t *testing.T) {
	db := newSeedDB(t)

	opts := Options{
		NumStudents:  12,
		NumAlumni:    4,
		NumDosen:     3,
		NumCapstones: 6,
		ShouldClean:  false,
	}
	require.NoError(t, Seed(db, opts))

	var students, alumni, dosen, admins int64
	db.Model(&models.User{}).Where("role = ?", models.RoleMahasiswa).Count(&students)
	db.Model(&models.User{}).Where("role = ?", models.RoleAlumni).Count(&alumni)
	db.Model(&models.User{}).Where("role = ?", models.RoleDosen).Count(&dosen)
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins)

	assert.EqualValues(t, opts.NumStudents, students)
	assert.EqualValues(t, opts.NumAlumni, alumni)
	assert.EqualValues(t, opts.NumDosen, dosen)
	assert.EqualValues(t, 1, admins)

	var capstones int64
	db.Model(&models.Capstone{}).Count(&capstones)
	assert.EqualValues(t, opts.NumCapstones, capstones)

	var groups []models.Group
	require.NoError(t, db.Preload("Members").Find(&groups).Error)
	assert.NotEmpty(t, groups)
	for _, g := range groups {
		assert.GreaterOrEqual(t, g.Size(), 2, "group %q too small", g.Name)
		assert.LessOrEqual(t, g.Size(), models.MaxGroupSize, "group %q too large", g.Name)
	}
}

func TestSeed_RequestsHonorCapacityRules(t *testing.T) {
	db := newSeedDB(t)

	require.NoError(t, Seed(db, Options{
		NumStudents:  20,
		NumAlumni:    3,
		NumDosen:     2,
		NumCapstones: 4,
	}))

	var requests []models.Request
	require.NoError(t, db.Find(&requests).Error)

	perGroup := make(map[uint]int)
	perCapstone := make(map[uint]int)
	pairs := make(map[[2]uint]bool)
	for _, r := range requests {
		assert.Equal(t, models.RequestStatusPending, r.Status)
		perGroup[r.GroupID]++
		perCapstone[r.CapstoneID]++

		pair := [2]uint{r.GroupID, r.CapstoneID}
		assert.False(t, pairs[pair], "duplicate request for group %d / capstone %d", r.GroupID, r.CapstoneID)
		pairs[pair] = true
	}
	for groupID, n := range perGroup {
		assert.LessOrEqual(t, n, 2, "group %d exceeds active request cap", groupID)
	}
	for capstoneID, n := range perCapstone {
		assert.LessOrEqual(t, n, 3, "capstone %d exceeds pending request cap", capstoneID)
	}
}

func TestSeed_CleanIsIdempotent(t *testing.T) {
	db := newSeedDB(t)

	opts := Options{NumStudents: 6, NumAlumni: 2, NumDosen: 1, NumCapstones: 3, ShouldClean: true}
	require.NoError(t, Seed(db, opts))
	require.NoError(t, Seed(db, opts))

	var users int64
	db.Model(&models.User{}).Count(&users)
	assert.EqualValues(t, 6+2+1+1, users)
}

func TestFactory_EmailDomainsMatchRoles(t *testing.T) {
	db := newSeedDB(t)
	f := NewFactory(db, SeedOptions{SkipBcrypt: true})

	student, err := f.CreateUser(models.RoleMahasiswa)
	require.NoError(t, err)
	assert.Contains(t, student.Email, "@mail.ugm.ac.id")
	assert.NotEmpty(t, student.NIM)
	assert.NotEmpty(t, student.Prodi)

	lecturer, err := f.CreateUser(models.RoleDosen)
	require.NoError(t, err)
	assert.Contains(t, lecturer.Email, "@ugm.ac.id")
	assert.NotContains(t, lecturer.Email, "@mail.ugm.ac.id")
}

func TestFactory_DryRunWritesNothing(t *testing.T) {
	db := newSeedDB(t)
	f := NewFactory(db, SeedOptions{DryRun: true, SkipBcrypt: true})

	u, err := f.CreateUser(models.RoleAlumni)
	require.NoError(t, err)
	assert.NotZero(t, u.ID)

	c, err := f.CreateCapstone(u)
	require.NoError(t, err)
	assert.NotZero(t, c.ID)

	var users, capstones int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Capstone{}).Count(&capstones)
	assert.Zero(t, users)
	assert.Zero(t, capstones)
}
