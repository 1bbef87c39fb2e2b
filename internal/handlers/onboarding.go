package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"care-portal-server/internal/middleware"
	"care-portal-server/internal/models"
	"care-portal-server/internal/store"
	"care-portal-server/internal/utils"
)

// OnboardingHandler drives the post-registration wizard. Each step saves its
// fields and advances the user's checkpoint; finishing the details step
// unlocks the dashboard.
type OnboardingHandler struct {
	Users *store.UserStore
}

// NewOnboardingHandler creates a new OnboardingHandler.
func NewOnboardingHandler(db *gorm.DB) *OnboardingHandler {
	return &OnboardingHandler{Users: store.NewUserStore(db)}
}

// OnboardingStatus is the wizard state returned to the client.
type OnboardingStatus struct {
	Step      models.OnboardingStep `json:"step"`
	Completed bool                  `json:"completed"`
}

// GetStatus returns the user's current onboarding checkpoint.
func (h *OnboardingHandler) GetStatus(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	user, err := h.Users.GetByID(userID)
	if err != nil {
		utils.StoreError(c, err)
		return
	}

	utils.Success(c, "Onboarding status fetched", OnboardingStatus{
		Step:      user.OnboardingStep,
		Completed: user.OnboardingCompleted,
	})
}

// BasicStepRequest carries the fields of the first wizard step.
type BasicStepRequest struct {
	FirstName   string     `json:"firstName" binding:"required"`
	LastName    string     `json:"lastName" binding:"required"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
}

// SubmitBasic saves the identity fields and advances past the basic step.
func (h *OnboardingHandler) SubmitBasic(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req BasicStepRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	fields := map[string]interface{}{
		"first_name": req.FirstName,
		"last_name":  req.LastName,
	}
	if req.DateOfBirth != nil {
		fields["date_of_birth"] = req.DateOfBirth
	}
	h.advance(c, userID, models.StepBasic, fields)
}

// ContactStepRequest carries the fields of the contact step.
type ContactStepRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Address     string `json:"address" binding:"required"`
}

// SubmitContact saves contact details and advances past the contact step.
func (h *OnboardingHandler) SubmitContact(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req ContactStepRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	h.advance(c, userID, models.StepContact, map[string]interface{}{
		"phone_number": req.PhoneNumber,
		"address":      req.Address,
	})
}

// DetailsStepRequest carries the role-specific fields of the final step.
// Patient fields and doctor fields are both optional at the binding level;
// the handler picks the set matching the user's role.
type DetailsStepRequest struct {
	// Patient
	InsuranceNumber  string `json:"insuranceNumber"`
	Allergies        string `json:"allergies"`
	ChronicCondition string `json:"chronicCondition"`
	EmergencyContact string `json:"emergencyContact"`
	// Doctor
	Specialty     string `json:"specialty"`
	LicenseNumber string `json:"licenseNumber"`
	Bio           string `json:"bio"`
}

// SubmitDetails saves the role-specific profile and completes onboarding.
func (h *OnboardingHandler) SubmitDetails(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req DetailsStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	user, err := h.Users.GetByID(userID)
	if err != nil {
		utils.StoreError(c, err)
		return
	}

	switch user.Role {
	case models.RoleDoctor:
		if req.Specialty == "" {
			utils.BadRequest(c, "Specialty is required for doctors")
			return
		}
		profile := &models.DoctorProfile{
			UserID:        userID,
			Specialty:     req.Specialty,
			LicenseNumber: req.LicenseNumber,
			Bio:           req.Bio,
		}
		if err := h.Users.UpsertDoctorProfile(profile); err != nil {
			utils.StoreError(c, err)
			return
		}
	default:
		profile := &models.PatientProfile{
			UserID:           userID,
			InsuranceNumber:  req.InsuranceNumber,
			Allergies:        req.Allergies,
			ChronicCondition: req.ChronicCondition,
			EmergencyContact: req.EmergencyContact,
		}
		if err := h.Users.UpsertPatientProfile(profile); err != nil {
			utils.StoreError(c, err)
			return
		}
	}

	h.advance(c, userID, models.StepDetails, nil)
}

// advance validates that the user is on the expected step, applies the step's
// fields and moves the checkpoint forward. Reaching StepDone also flips the
// completed flag.
func (h *OnboardingHandler) advance(c *gin.Context, userID string, expected models.OnboardingStep, fields map[string]interface{}) {
	user, err := h.Users.GetByID(userID)
	if err != nil {
		utils.StoreError(c, err)
		return
	}
	if user.OnboardingCompleted {
		utils.Conflict(c, "Onboarding is already complete")
		return
	}
	if user.OnboardingStep != expected {
		utils.Conflict(c, "Onboarding steps must be completed in order")
		return
	}

	next := models.NextOnboardingStep(expected)
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["onboarding_step"] = next
	if next == models.StepDone {
		fields["onboarding_completed"] = true
	}

	if err := h.Users.UpdateProfile(userID, fields); err != nil {
		utils.StoreError(c, err)
		return
	}

	utils.Success(c, "Onboarding step saved", OnboardingStatus{
		Step:      next,
		Completed: next == models.StepDone,
	})
}
