package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"care-portal-server/internal/models"
)

// UserStore is the data access layer for profiles, onboarding and presence
// timestamps.
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a new UserStore.
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// GetByID fetches a user by id.
func (s *UserStore) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("user not found")
		}
		return nil, InternalError("failed to fetch user", err)
	}
	return &user, nil
}

// GetByEmail fetches a user by email.
func (s *UserStore) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("user not found")
		}
		return nil, InternalError("failed to fetch user", err)
	}
	return &user, nil
}

// ListDoctors returns every doctor profile with its specialty details for the
// directory view.
func (s *UserStore) ListDoctors() ([]models.User, error) {
	doctors := []models.User{}
	if err := s.db.Where("role = ?", models.RoleDoctor).
		Order("last_name asc").
		Find(&doctors).Error; err != nil {
		return nil, InternalError("failed to list doctors", err)
	}
	return doctors, nil
}

// ListPatientsForDoctor returns the patients connected to a doctor through
// care links or appointment history.
func (s *UserStore) ListPatientsForDoctor(doctorID string) ([]models.User, error) {
	patients := []models.User{}
	err := s.db.Raw(`
		SELECT DISTINCT u.* FROM users u
		WHERE u.id IN (
			SELECT patient_id FROM care_links WHERE doctor_id = ?
			UNION
			SELECT patient_id FROM appointments WHERE doctor_id = ?
		)
	`, doctorID, doctorID).Scan(&patients).Error
	if err != nil {
		return nil, InternalError("failed to list patients", err)
	}
	return patients, nil
}

// UpdateProfile applies a partial patch to the user's profile fields.
func (s *UserStore) UpdateProfile(id string, fields map[string]interface{}) error {
	res := s.db.Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return InternalError("failed to update profile", res.Error)
	}
	if res.RowsAffected == 0 {
		return NotFoundError("user not found")
	}
	return nil
}

// UpsertPatientProfile writes the patient details collected by the onboarding
// wizard.
func (s *UserStore) UpsertPatientProfile(profile *models.PatientProfile) error {
	var existing models.PatientProfile
	err := s.db.First(&existing, "user_id = ?", profile.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.db.Create(profile).Error; err != nil {
			return InternalError("failed to create patient profile", err)
		}
		return nil
	}
	if err != nil {
		return InternalError("failed to look up patient profile", err)
	}
	profile.ID = existing.ID
	if err := s.db.Model(&existing).Updates(profile).Error; err != nil {
		return InternalError("failed to update patient profile", err)
	}
	return nil
}

// UpsertDoctorProfile writes the doctor details collected by the onboarding
// wizard.
func (s *UserStore) UpsertDoctorProfile(profile *models.DoctorProfile) error {
	var existing models.DoctorProfile
	err := s.db.First(&existing, "user_id = ?", profile.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.db.Create(profile).Error; err != nil {
			return InternalError("failed to create doctor profile", err)
		}
		return nil
	}
	if err != nil {
		return InternalError("failed to look up doctor profile", err)
	}
	profile.ID = existing.ID
	if err := s.db.Model(&existing).Updates(profile).Error; err != nil {
		return InternalError("failed to update doctor profile", err)
	}
	return nil
}

// TouchLastSeen upserts the user's last-seen timestamp. Called by the
// presence hub when a connection drops.
func (s *UserStore) TouchLastSeen(userID string, at time.Time) error {
	var status models.UserStatus
	err := s.db.First(&status, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		status = models.UserStatus{UserID: userID, LastSeen: at}
		if err := s.db.Create(&status).Error; err != nil {
			return InternalError("failed to create user status", err)
		}
		return nil
	}
	if err != nil {
		return InternalError("failed to look up user status", err)
	}
	if err := s.db.Model(&status).Update("last_seen", at).Error; err != nil {
		return InternalError("failed to update last seen", err)
	}
	return nil
}

// LastSeen returns the stored last-seen time, or nil when the user has never
// connected.
func (s *UserStore) LastSeen(userID string) (*time.Time, error) {
	var status models.UserStatus
	err := s.db.First(&status, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, InternalError("failed to fetch user status", err)
	}
	return &status.LastSeen, nil
}
