// Package models contains data structures for the application's domain models.
package models

import "time"

// Role represents an account role within the campus platform.
type Role string

const (
	// RoleAdmin has full administrative access.
	RoleAdmin Role = "admin"
	// RoleDosen is a lecturer who supervises capstone proposals.
	RoleDosen Role = "dosen"
	// RoleAlumni publishes capstone proposals for student groups to take over.
	RoleAlumni Role = "alumni"
	// RoleMahasiswa is an active student who can join a group.
	RoleMahasiswa Role = "mahasiswa"
	// RoleGuest can browse but not participate.
	RoleGuest Role = "guest"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDosen, RoleAlumni, RoleMahasiswa, RoleGuest:
		return true
	}
	return false
}

// User represents a platform account.
// Accounts may be pre-created by an admin (password empty) and claimed later
// through signup.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:120;not null" json:"name"`
	Email      string    `gorm:"size:160;uniqueIndex;not null" json:"email"`
	Password   string    `gorm:"size:255" json:"-"`
	Role       Role      `gorm:"type:varchar(20);not null;default:'guest';index" json:"role"`
	NIM        string    `gorm:"size:32;index" json:"nim,omitempty"`
	Prodi      string    `gorm:"size:120" json:"prodi,omitempty"`
	IsVerified bool      `gorm:"default:false" json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// UserSummary is the compact user representation embedded in other payloads.
type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Summary returns the compact representation of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
