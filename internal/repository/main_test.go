package repository

import (
	"fmt"
	"os"
	"testing"
	"time"

	"capstonehub/internal/database"
	"capstonehub/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

// newTestDB opens a fresh in-memory database with the full schema applied.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

var userSeq int

func seedUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()
	userSeq++
	user := &models.User{
		Name:  fmt.Sprintf("User %d", userSeq),
		Email: fmt.Sprintf("user%d_%d@mail.ugm.ac.id", userSeq, time.Now().UnixNano()),
		Role:  role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedGroup(t *testing.T, db *gorm.DB, leader *models.User) *models.Group {
	t.Helper()
	group := &models.Group{
		Name:     fmt.Sprintf("Group %d-%d", leader.ID, time.Now().UnixNano()),
		LeaderID: leader.ID,
	}
	require.NoError(t, db.Create(group).Error)
	return group
}

func seedCapstone(t *testing.T, db *gorm.DB, owner *models.User) *models.Capstone {
	t.Helper()
	capstone := &models.Capstone{
		Title:    fmt.Sprintf("Capstone %d-%d", owner.ID, time.Now().UnixNano()),
		Category: "IoT",
		OwnerID:  owner.ID,
		Status:   models.CapstoneStatusAvailable,
	}
	require.NoError(t, db.Create(capstone).Error)
	return capstone
}
