package database

import "capstonehub/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Group{},
		&models.Capstone{},
		&models.Request{},
		&models.Notification{},
	}
}
