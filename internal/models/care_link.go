package models

// CareLinkSource records how a patient and doctor became linked
type CareLinkSource string

const (
	CareLinkFromChat        CareLinkSource = "chat"
	CareLinkFromAppointment CareLinkSource = "appointment"
)

// CareLink associates a patient with a doctor outside of appointment history,
// e.g. when a conversation is started before any appointment exists.
type CareLink struct {
	BaseModel
	PatientID string         `gorm:"size:36;index;uniqueIndex:idx_care_pair" json:"patientId"`
	DoctorID  string         `gorm:"size:36;index;uniqueIndex:idx_care_pair" json:"doctorId"`
	Source    CareLinkSource `gorm:"size:20" json:"source"`

	Patient User `gorm:"foreignKey:PatientID" json:"patient"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"doctor"`
}
