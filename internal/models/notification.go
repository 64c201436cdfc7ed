package models

import "time"

// NotificationType identifies the kind of event a notification describes.
type NotificationType string

const (
	// NotificationTypeRequest is sent when a group submits a capstone request.
	NotificationTypeRequest NotificationType = "capstone_request"
	// NotificationTypeAccepted is sent when a request is accepted.
	NotificationTypeAccepted NotificationType = "capstone_terima"
	// NotificationTypeRejected is sent when a request is rejected, including
	// auto-rejection on acceptance of a sibling and expiry rejection.
	NotificationTypeRejected NotificationType = "capstone_tolak"
)

// Notification is a stored notification for a user. Delivery to other
// channels (Redis pub/sub, email) is best-effort; the row is the record.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	RequestID *uint            `gorm:"index" json:"request_id,omitempty"`
	Type      NotificationType `gorm:"type:varchar(32);not null;index" json:"type"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}
