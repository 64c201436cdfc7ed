package models

import "time"

// MaxGroupSize is the maximum team size including the leader.
const MaxGroupSize = 4

// Group represents a student team that can request capstone proposals.
// The leader is stored separately and is never repeated in Members.
type Group struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;uniqueIndex;not null" json:"name"`
	LeaderID  uint      `gorm:"not null;uniqueIndex" json:"leader_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Leader  User   `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`
	Members []User `gorm:"many2many:group_members" json:"members,omitempty"`
}

// TableName specifies the table name for GORM
func (Group) TableName() string {
	return "groups"
}

// Size returns the team size including the leader.
func (g *Group) Size() int {
	return 1 + len(g.Members)
}

// HasMember reports whether the user is the leader or a member of the group.
func (g *Group) HasMember(userID uint) bool {
	if g.LeaderID == userID {
		return true
	}
	for _, m := range g.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}
