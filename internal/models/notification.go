package models

import (
	"encoding/json"
	"time"
)

// NotificationType represents the kind of event a notification reports
type NotificationType string

const (
	NotificationAppointmentAccepted NotificationType = "APPOINTMENT_ACCEPTED"
	NotificationAppointmentRejected NotificationType = "APPOINTMENT_REJECTED"
	NotificationAppointmentReminder NotificationType = "APPOINTMENT_REMINDER"
)

// Notification represents an in-app notification for a patient or doctor.
// It references its appointment loosely by id; archiving an appointment must
// not remove its notifications, they are a history record.
type Notification struct {
	BaseModel
	RecipientID   string           `gorm:"size:36;index" json:"recipientId"`
	AppointmentID *string          `gorm:"size:36;index" json:"appointmentId,omitempty"`
	Type          NotificationType `gorm:"size:40" json:"type"`
	Title         string           `gorm:"size:255" json:"title"`
	Message       string           `gorm:"type:text" json:"message"`
	Data          json.RawMessage  `gorm:"type:json" json:"data,omitempty"`
	IsRead        bool             `gorm:"default:false" json:"isRead"`
	ReadAt        *time.Time       `json:"readAt,omitempty"`

	// Relations
	Recipient User `gorm:"foreignKey:RecipientID" json:"-"`
}
