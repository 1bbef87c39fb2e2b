package models

import (
	"time"
)

// NotificationType tags the event a notification describes
type NotificationType string

const (
	NotifyAppointmentRequested   NotificationType = "appointment_requested"
	NotifyAppointmentConfirmed   NotificationType = "appointment_confirmed"
	NotifyAppointmentRejected    NotificationType = "appointment_rejected"
	NotifyAppointmentCancelled   NotificationType = "appointment_cancelled"
	NotifyAppointmentRescheduled NotificationType = "appointment_rescheduled"
	NotifyDocumentShared         NotificationType = "document_shared"
	NotifyNewMessage             NotificationType = "new_message"
)

// Notification is an in-app notification with a pointer back to the entity
// that produced it.
type Notification struct {
	BaseModel
	UserID      string           `gorm:"size:36;index" json:"userId"`
	Type        NotificationType `gorm:"size:40" json:"type"`
	Title       string           `gorm:"size:255" json:"title"`
	Body        string           `gorm:"type:text" json:"body"`
	EntityTable string           `gorm:"size:40" json:"entityTable,omitempty"`
	EntityID    string           `gorm:"size:36" json:"entityId,omitempty"`
	ReadAt      *time.Time       `json:"readAt,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
