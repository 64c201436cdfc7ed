package models

import "time"

// CapstoneStatus represents the availability of a capstone proposal.
// The status is derived from the requests against it and is never set
// directly by clients.
type CapstoneStatus string

const (
	// CapstoneStatusAvailable means the proposal can receive new requests.
	CapstoneStatusAvailable CapstoneStatus = "Tersedia"
	// CapstoneStatusUnavailable means the proposal is closed to new requests,
	// either because it is fully requested or because a request was accepted.
	CapstoneStatusUnavailable CapstoneStatus = "Tidak Tersedia"
)

// Capstone represents a capstone proposal published by an alumni.
type Capstone struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Title          string         `gorm:"size:200;not null;index" json:"title"`
	Category       string         `gorm:"size:80;index" json:"category"`
	Abstract       string         `gorm:"type:text" json:"abstract"`
	OwnerID        uint           `gorm:"not null;index" json:"owner_id"`
	DosenID        *uint          `gorm:"index" json:"dosen_id,omitempty"`
	Status         CapstoneStatus `gorm:"type:varchar(20);not null;default:'Tersedia';index" json:"status"`
	ProposalURL    string         `gorm:"size:500" json:"-"`
	ProposalFileID string         `gorm:"size:120" json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	// Relationships
	Owner     User   `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Dosen     *User  `gorm:"foreignKey:DosenID" json:"dosen,omitempty"`
	CoAuthors []User `gorm:"many2many:capstone_co_authors" json:"co_authors,omitempty"`
}

// TableName specifies the table name for GORM
func (Capstone) TableName() string {
	return "capstones"
}

// GroupSummary is the compact group representation used in capstone views.
type GroupSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// CapstoneView is a capstone decorated for list and detail responses.
// ProposalURL is only populated when the viewer is allowed to see it.
type CapstoneView struct {
	Capstone
	TakenBy            *GroupSummary `json:"taken_by,omitempty"`
	PendingGroupsCount int64         `json:"pending_groups_count"`
	ProposalURL        string        `json:"proposal_url,omitempty"`
}
