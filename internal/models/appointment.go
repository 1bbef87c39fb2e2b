package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusRequested AppointmentStatus = "requested"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusRejected  AppointmentStatus = "rejected"
	StatusNoShow    AppointmentStatus = "no_show"
)

// AppointmentMode represents how the encounter takes place
type AppointmentMode string

const (
	ModeInPerson AppointmentMode = "in_person"
	ModeVideo    AppointmentMode = "video"
	ModePhone    AppointmentMode = "phone"
)

// Appointment represents a scheduled encounter between a doctor and a patient
type Appointment struct {
	BaseModel
	PatientID    string            `gorm:"size:36;index" json:"patientId"`
	DoctorID     string            `gorm:"size:36;index" json:"doctorId"`
	StartTime    time.Time         `gorm:"index" json:"startTime"`
	EndTime      time.Time         `json:"endTime"`
	Status       AppointmentStatus `gorm:"size:20;default:'requested'" json:"status"`
	Mode         AppointmentMode   `gorm:"size:20;default:'in_person'" json:"mode"`
	Reason       string            `gorm:"size:255" json:"reason"`
	Symptoms     string            `gorm:"type:text" json:"symptoms,omitempty"`
	LocationText string            `gorm:"size:255" json:"locationText,omitempty"`
	CreatedBy    string            `gorm:"size:36" json:"createdBy"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"patient"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"doctor"`
}
