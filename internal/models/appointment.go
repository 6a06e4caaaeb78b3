package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusRejected  AppointmentStatus = "rejected"
)

// Terminal reports whether no further transitions are allowed from this status.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusRejected
}

// AppointmentType represents how the consultation takes place
type AppointmentType string

const (
	TypeOnline  AppointmentType = "online"
	TypeOffline AppointmentType = "offline"
)

// Appointment represents a requested or booked consultation between one
// patient and one doctor. Records are never deleted, only transitioned.
type Appointment struct {
	BaseModel
	PatientID string `gorm:"size:36;index" json:"patientId"`
	DoctorID  string `gorm:"size:36;index" json:"doctorId"`

	// Date is the calendar date; TimeSlot is the local time of day at the
	// doctor's clinic in "15:04" form. They are stored separately because the
	// clinic timezone is not known server-side.
	Date     time.Time `gorm:"type:date" json:"date"`
	TimeSlot string    `gorm:"size:5" json:"time"`

	AppointmentType AppointmentType   `gorm:"size:10;default:'offline'" json:"appointmentType"`
	Status          AppointmentStatus `gorm:"size:20;default:'pending'" json:"status"`
	Notes           string            `gorm:"type:text" json:"notes,omitempty"`
	RejectionReason *string           `gorm:"type:text" json:"rejectionReason,omitempty"`

	// ConsultationFee is copied from the doctor's rate at booking time and
	// never updated afterwards.
	ConsultationFee float64 `json:"consultationFee"`

	// PrescriptionID is set only once the appointment is completed.
	PrescriptionID *string `gorm:"size:36" json:"prescriptionId,omitempty"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}
