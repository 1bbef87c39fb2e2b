package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"care-portal-server/internal/middleware"
	"care-portal-server/internal/models"
	"care-portal-server/internal/store"
	"care-portal-server/internal/utils"
)

// UserHandler serves the doctor directory and care relationships.
type UserHandler struct {
	DB    *gorm.DB
	Users *store.UserStore
	Chat  *store.ChatStore
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db, Users: store.NewUserStore(db), Chat: store.NewChatStore(db)}
}

// DoctorEntry is a directory row: the doctor plus their specialty profile.
type DoctorEntry struct {
	models.UserSanitized
	Specialty string `json:"specialty,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// ListDoctors returns the doctor directory patients book from.
func (h *UserHandler) ListDoctors(c *gin.Context) {
	doctors, err := h.Users.ListDoctors()
	if err != nil {
		utils.StoreError(c, err)
		return
	}

	entries := make([]DoctorEntry, 0, len(doctors))
	for _, doctor := range doctors {
		entry := DoctorEntry{UserSanitized: doctor.Sanitize()}
		var profile models.DoctorProfile
		if err := h.DB.First(&profile, "user_id = ?", doctor.ID).Error; err == nil {
			entry.Specialty = profile.Specialty
			entry.Bio = profile.Bio
		}
		entries = append(entries, entry)
	}

	utils.Success(c, "Doctors fetched", entries)
}

// GetDoctor returns one doctor's public profile.
func (h *UserHandler) GetDoctor(c *gin.Context) {
	doctor, err := h.Users.GetByID(c.Param("id"))
	if err != nil {
		utils.StoreError(c, err)
		return
	}
	if doctor.Role != models.RoleDoctor {
		utils.NotFound(c, "Doctor not found")
		return
	}

	entry := DoctorEntry{UserSanitized: doctor.Sanitize()}
	var profile models.DoctorProfile
	if err := h.DB.First(&profile, "user_id = ?", doctor.ID).Error; err == nil {
		entry.Specialty = profile.Specialty
		entry.Bio = profile.Bio
	}
	utils.Success(c, "Doctor fetched", entry)
}

// ListMyPatients returns the patients connected to the calling doctor through
// care links or appointment history.
func (h *UserHandler) ListMyPatients(c *gin.Context) {
	doctorID, _ := middleware.GetUserIDFromContext(c)

	patients, err := h.Users.ListPatientsForDoctor(doctorID)
	if err != nil {
		utils.StoreError(c, err)
		return
	}

	sanitized := make([]models.UserSanitized, 0, len(patients))
	for _, patient := range patients {
		sanitized = append(sanitized, patient.Sanitize())
	}
	utils.Success(c, "Patients fetched", sanitized)
}

// GetPatient returns one patient with their medical profile. Doctors may only
// look up patients they are connected to.
func (h *UserHandler) GetPatient(c *gin.Context) {
	doctorID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)
	patientID := c.Param("id")

	patient, err := h.Users.GetByID(patientID)
	if err != nil {
		utils.StoreError(c, err)
		return
	}
	if patient.Role != models.RolePatient {
		utils.NotFound(c, "Patient not found")
		return
	}

	if role == models.RoleDoctor {
		linked, err := h.Users.ListPatientsForDoctor(doctorID)
		if err != nil {
			utils.StoreError(c, err)
			return
		}
		found := false
		for _, p := range linked {
			if p.ID == patientID {
				found = true
				break
			}
		}
		if !found {
			utils.Forbidden(c, "This patient is not under your care")
			return
		}
	}

	payload := gin.H{"user": patient.Sanitize()}
	var profile models.PatientProfile
	if err := h.DB.First(&profile, "user_id = ?", patientID).Error; err == nil {
		payload["profile"] = profile
	}
	utils.Success(c, "Patient fetched", payload)
}

// ListUsers is the admin view of every account.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users := []models.User{}
	query := h.DB.Order("created_at desc")
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if err := query.Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to list users")
		return
	}

	sanitized := make([]models.UserSanitized, 0, len(users))
	for _, user := range users {
		sanitized = append(sanitized, user.Sanitize())
	}
	utils.Success(c, "Users fetched", sanitized)
}
