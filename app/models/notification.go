package models

import "time"

// Notification is one workflow event queued for delivery. Created pending by
// request handlers, flipped to sent only by the background dispatcher.
type Notification struct {
	ID            string             `json:"id" gorm:"primaryKey;type:uuid" validate:"required,uuid"`
	InstitutionID string             `json:"institution_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	Type          NotificationType   `json:"type" gorm:"not null;index"`
	Status        NotificationStatus `json:"status" gorm:"not null;default:'pending';index"`
	Payload       string             `json:"payload" gorm:"type:text"` // JSON string
	CreatedAt     time.Time          `json:"created_at" gorm:"autoCreateTime"`
	SentAt        *time.Time         `json:"sent_at,omitempty"`
}
