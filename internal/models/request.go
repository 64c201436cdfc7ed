package models

import "time"

// RequestStatus represents the review state of a capstone request.
// The values are the Indonesian strings used on the wire and in the database.
type RequestStatus string

const (
	// RequestStatusPending indicates a request awaiting review by the capstone owner.
	RequestStatusPending RequestStatus = "Menunggu Review"
	// RequestStatusAccepted indicates the owner accepted the request.
	RequestStatusAccepted RequestStatus = "Diterima"
	// RequestStatusRejected indicates the request was rejected, either by the
	// owner, by auto-rejection when a sibling was accepted, or by expiry.
	RequestStatusRejected RequestStatus = "Ditolak"
)

// Active reports whether the status still occupies group and capstone capacity.
// Pending and accepted requests are active; rejected requests are not.
func (s RequestStatus) Active() bool {
	return s == RequestStatusPending || s == RequestStatusAccepted
}

// Request represents a group's request to take over a capstone proposal.
// Requests are never deleted; rejection is a terminal status and a group
// re-requesting the same capstone creates a new row. CreatedAt is the expiry
// anchor and is immutable after insert.
type Request struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	GroupID    uint          `gorm:"not null;index" json:"group_id"`
	CapstoneID uint          `gorm:"not null;index" json:"capstone_id"`
	Status     RequestStatus `gorm:"type:varchar(20);not null;default:'Menunggu Review';index" json:"status"`
	Reason     string        `gorm:"type:text" json:"reason"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`

	// Relationships
	Group    Group    `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Capstone Capstone `gorm:"foreignKey:CapstoneID" json:"capstone,omitempty"`
}

// TableName specifies the table name for GORM
func (Request) TableName() string {
	return "requests"
}

// RequestView is a request decorated for list responses. ProposalURL is only
// populated when this request has been accepted.
type RequestView struct {
	Request
	ProposalURL string `json:"proposal_url,omitempty"`
}
