package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// OnboardingStep is a named checkpoint in the onboarding wizard. Dashboard
// access is gated until the step reaches StepDone.
type OnboardingStep string

const (
	StepBasic   OnboardingStep = "basic"
	StepContact OnboardingStep = "contact"
	StepDetails OnboardingStep = "details"
	StepDone    OnboardingStep = "done"
)

// NextOnboardingStep returns the step that follows s, or s itself when the
// wizard is already finished.
func NextOnboardingStep(s OnboardingStep) OnboardingStep {
	switch s {
	case StepBasic:
		return StepContact
	case StepContact:
		return StepDetails
	case StepDetails:
		return StepDone
	default:
		return s
	}
}

// User represents a user profile in the system
type User struct {
	BaseModel
	Email               string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password            string         `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FirstName           string         `gorm:"size:100" json:"firstName"`
	LastName            string         `gorm:"size:100" json:"lastName"`
	Role                Role           `gorm:"size:20;default:'patient'" json:"role"`
	DateOfBirth         *time.Time     `json:"dateOfBirth,omitempty"`
	PhoneNumber         string         `json:"phoneNumber,omitempty"`
	Address             string         `json:"address,omitempty"`
	AvatarURL           string         `json:"avatarUrl,omitempty"`
	OnboardingStep      OnboardingStep `gorm:"size:20;default:'basic'" json:"onboardingStep"`
	OnboardingCompleted bool           `gorm:"default:false" json:"onboardingCompleted"`
	ResetToken          string         `gorm:"size:512" json:"-"`
	ResetTokenExpiry    *time.Time     `json:"-"`

	// Relations (not always preloaded)
	RefreshTokens       []RefreshToken `gorm:"foreignKey:UserID" json:"-"`
	DoctorAppointments  []Appointment  `gorm:"foreignKey:DoctorID" json:"-"`
	PatientAppointments []Appointment  `gorm:"foreignKey:PatientID" json:"-"`
	Documents           []Document     `gorm:"foreignKey:OwnerID" json:"-"`
	Notifications       []Notification `gorm:"foreignKey:UserID" json:"-"`
}

// PatientProfile holds the patient-specific details collected during the
// onboarding wizard's details step.
type PatientProfile struct {
	BaseModel
	UserID           string `gorm:"size:36;uniqueIndex" json:"userId"`
	InsuranceNumber  string `gorm:"size:100" json:"insuranceNumber,omitempty"`
	Allergies        string `gorm:"type:text" json:"allergies,omitempty"`
	ChronicCondition string `gorm:"type:text" json:"chronicCondition,omitempty"`
	EmergencyContact string `gorm:"size:255" json:"emergencyContact,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// DoctorProfile holds the doctor-specific details collected during onboarding.
type DoctorProfile struct {
	BaseModel
	UserID        string `gorm:"size:36;uniqueIndex" json:"userId"`
	Specialty     string `gorm:"size:100" json:"specialty,omitempty"`
	LicenseNumber string `gorm:"size:100" json:"licenseNumber,omitempty"`
	Bio           string `gorm:"type:text" json:"bio,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID                  string         `json:"id"`
	Email               string         `json:"email"`
	FirstName           string         `json:"firstName"`
	LastName            string         `json:"lastName"`
	Role                Role           `json:"role"`
	DateOfBirth         *time.Time     `json:"dateOfBirth,omitempty"`
	PhoneNumber         string         `json:"phoneNumber,omitempty"`
	Address             string         `json:"address,omitempty"`
	AvatarURL           string         `json:"avatarUrl,omitempty"`
	OnboardingStep      OnboardingStep `json:"onboardingStep"`
	OnboardingCompleted bool           `json:"onboardingCompleted"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:                  u.ID,
		Email:               u.Email,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Role:                u.Role,
		DateOfBirth:         u.DateOfBirth,
		PhoneNumber:         u.PhoneNumber,
		Address:             u.Address,
		AvatarURL:           u.AvatarURL,
		OnboardingStep:      u.OnboardingStep,
		OnboardingCompleted: u.OnboardingCompleted,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

// FullName returns the display name used in calendar blocks and conversation
// previews. Falls back to "?" when the profile has no name yet.
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return "?"
	}
	if u.LastName == "" {
		return u.FirstName
	}
	if u.FirstName == "" {
		return u.LastName
	}
	return u.FirstName + " " + u.LastName
}
