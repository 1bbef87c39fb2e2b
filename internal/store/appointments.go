package store

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"care-portal-server/internal/models"
)

// AppointmentStore is the data access layer for appointments. Reads shape
// joined results (embedded doctor/patient profiles); expected failures come
// back as typed errors, never as raw driver errors.
type AppointmentStore struct {
	db *gorm.DB
}

// NewAppointmentStore creates a new AppointmentStore.
func NewAppointmentStore(db *gorm.DB) *AppointmentStore {
	return &AppointmentStore{db: db}
}

// ListInRange returns the user's appointments with start_time within
// [from, to), ordered ascending. Patients see appointments where they are the
// patient, doctors where they are the doctor, admins see all. Query failures
// are logged and produce an empty list so calendar views degrade to an empty
// state instead of an error page.
func (s *AppointmentStore) ListInRange(userID string, role models.Role, from, to time.Time) []models.Appointment {
	appointments := []models.Appointment{}

	query := s.db.Preload("Patient").Preload("Doctor").
		Where("start_time >= ? AND start_time < ?", from, to).
		Order("start_time asc")

	switch role {
	case models.RolePatient:
		query = query.Where("patient_id = ?", userID)
	case models.RoleDoctor:
		query = query.Where("doctor_id = ?", userID)
	case models.RoleAdmin:
		// no participant filter
	default:
		return appointments
	}

	if err := query.Find(&appointments).Error; err != nil {
		log.Error().Err(err).Str("role", string(role)).Msg("listing appointments in range failed")
		return []models.Appointment{}
	}
	return appointments
}

// GetByID fetches one appointment with both participant profiles embedded.
func (s *AppointmentStore) GetByID(id string) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := s.db.Preload("Patient").Preload("Doctor").First(&appointment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("appointment not found")
		}
		return nil, InternalError("failed to fetch appointment", err)
	}
	return &appointment, nil
}

// Create inserts a new appointment.
func (s *AppointmentStore) Create(appointment *models.Appointment) error {
	if err := s.db.Create(appointment).Error; err != nil {
		return InternalError("failed to create appointment", err)
	}
	return nil
}

// UpdateStatus sets the appointment's status.
func (s *AppointmentStore) UpdateStatus(id string, status models.AppointmentStatus) error {
	res := s.db.Model(&models.Appointment{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return InternalError("failed to update appointment status", res.Error)
	}
	if res.RowsAffected == 0 {
		return NotFoundError("appointment not found")
	}
	return nil
}

// Update applies a partial patch, used by reschedule to change start/end/mode
// and status together.
func (s *AppointmentStore) Update(id string, fields map[string]interface{}) error {
	res := s.db.Model(&models.Appointment{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return InternalError("failed to update appointment", res.Error)
	}
	if res.RowsAffected == 0 {
		return NotFoundError("appointment not found")
	}
	return nil
}
