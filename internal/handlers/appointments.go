package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"care-portal-server/internal/middleware"
	"care-portal-server/internal/models"
	"care-portal-server/internal/presence"
	"care-portal-server/internal/scheduling"
	"care-portal-server/internal/store"
	"care-portal-server/internal/utils"
)

// AppointmentRepo is the slice of the appointment store the handler needs.
type AppointmentRepo interface {
	ListInRange(userID string, role models.Role, from, to time.Time) []models.Appointment
	GetByID(id string) (*models.Appointment, error)
	Create(appointment *models.Appointment) error
	UpdateStatus(id string, status models.AppointmentStatus) error
	Update(id string, fields map[string]interface{}) error
}

// Notifier records an in-app notification for a user.
type Notifier interface {
	Notify(userID string, notifType models.NotificationType, title, body, entityTable, entityID string)
}

// RealtimePusher delivers events to a user's live connections.
type RealtimePusher interface {
	SendToUser(userID string, event presence.Event)
}

// AppointmentHandler handles appointment scheduling, lifecycle and calendar
// requests.
type AppointmentHandler struct {
	Appointments  AppointmentRepo
	Notifications Notifier
	Hub           RealtimePusher
	Now           func() time.Time
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, hub *presence.Hub) *AppointmentHandler {
	return &AppointmentHandler{
		Appointments:  store.NewAppointmentStore(db),
		Notifications: store.NewNotificationStore(db),
		Hub:           hub,
		Now:           time.Now,
	}
}

// CreateAppointmentRequest represents the request body for booking.
type CreateAppointmentRequest struct {
	DoctorID  string    `json:"doctorId"`
	PatientID string    `json:"patientId"`
	StartTime time.Time `json:"startTime" binding:"required"`
	Mode      string    `json:"mode" binding:"omitempty,oneof=in_person video phone"`
	Reason    string    `json:"reason" binding:"required"`
	Symptoms  string    `json:"symptoms"`
	Location  string    `json:"location"`
}

// Create books an appointment. A patient's booking starts as a request to the
// chosen doctor; a doctor booking on a patient's behalf is confirmed
// immediately.
func (h *AppointmentHandler) Create(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if !req.StartTime.After(h.Now()) {
		utils.BadRequest(c, "Start time must be in the future")
		return
	}

	appointment := models.Appointment{
		StartTime:    req.StartTime,
		EndTime:      req.StartTime.Add(scheduling.DefaultDuration),
		Mode:         models.AppointmentMode(req.Mode),
		Reason:       req.Reason,
		Symptoms:     req.Symptoms,
		LocationText: req.Location,
		CreatedBy:    userID,
	}
	if appointment.Mode == "" {
		appointment.Mode = models.ModeInPerson
	}

	switch role {
	case models.RolePatient:
		if req.DoctorID == "" {
			utils.BadRequest(c, "doctorId is required")
			return
		}
		appointment.PatientID = userID
		appointment.DoctorID = req.DoctorID
		appointment.Status = models.StatusRequested
	case models.RoleDoctor:
		if req.PatientID == "" {
			utils.BadRequest(c, "patientId is required")
			return
		}
		appointment.DoctorID = userID
		appointment.PatientID = req.PatientID
		appointment.Status = models.StatusConfirmed
	default:
		utils.Forbidden(c, "Only patients and doctors can book appointments")
		return
	}

	if err := h.Appointments.Create(&appointment); err != nil {
		utils.StoreError(c, err)
		return
	}

	counterpart := scheduling.CounterpartID(&appointment, userID)
	notifType := models.NotifyAppointmentRequested
	title := "New appointment request"
	if appointment.Status == models.StatusConfirmed {
		notifType = models.NotifyAppointmentConfirmed
		title = "Appointment scheduled"
	}
	h.notify(counterpart, notifType, title,
		fmt.Sprintf("Appointment on %s", appointment.StartTime.Format("Jan 2, 2006 at 15:04")),
		appointment.ID)

	utils.Created(c, "Appointment created", appointment)
}

// List returns the caller's appointments in an optional time range.
func (h *AppointmentHandler) List(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	from, to, err := parseRange(c, h.Now())
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	appointments := h.Appointments.ListInRange(userID, role, from, to)
	utils.Success(c, "Appointments fetched", appointments)
}

// Get returns one appointment. Only its participants (or an admin) may see it.
func (h *AppointmentHandler) Get(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	appointment, err := h.Appointments.GetByID(c.Param("id"))
	if err != nil {
		utils.StoreError(c, err)
		return
	}
	if role != models.RoleAdmin && userID != appointment.PatientID && userID != appointment.DoctorID {
		utils.Forbidden(c, "You are not a participant of this appointment")
		return
	}

	utils.Success(c, "Appointment fetched", appointment)
}

// UpdateStatusRequest represents the request body for a status change.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=requested confirmed completed cancelled rejected no_show"`
}

// UpdateStatus moves an appointment through its lifecycle. Repeating the
// current status is a harmless no-op; a real change notifies the other
// participant.
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	var req UpdateStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	target := models.AppointmentStatus(req.Status)

	appointment, err := h.Appointments.GetByID(c.Param("id"))
	if err != nil {
		utils.StoreError(c, err)
		return
	}

	if err := scheduling.ValidateTransition(appointment, target, userID, role, h.Now()); err != nil {
		if errors.Is(err, scheduling.ErrNoop) {
			utils.Success(c, "Appointment status unchanged", appointment)
			return
		}
		transitionError(c, err)
		return
	}

	if err := h.Appointments.UpdateStatus(appointment.ID, target); err != nil {
		utils.StoreError(c, err)
		return
	}
	appointment.Status = target

	counterpart := scheduling.CounterpartID(appointment, userID)
	if notifType, title, ok := statusNotification(target); ok {
		h.notify(counterpart, notifType, title,
			fmt.Sprintf("Appointment on %s", appointment.StartTime.Format("Jan 2, 2006 at 15:04")),
			appointment.ID)
	}

	utils.Success(c, "Appointment status updated", appointment)
}

// RescheduleRequest represents the request body for moving an appointment.
type RescheduleRequest struct {
	StartTime time.Time `json:"startTime" binding:"required"`
	Mode      string    `json:"mode" binding:"omitempty,oneof=in_person video phone"`
}

// Reschedule moves an appointment to a new start time. The end time always
// follows the fixed duration; who moved it decides the resulting status.
func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	var req RescheduleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Appointments.GetByID(c.Param("id"))
	if err != nil {
		utils.StoreError(c, err)
		return
	}

	plan, err := scheduling.PlanReschedule(appointment, req.StartTime, models.AppointmentMode(req.Mode), userID, role, h.Now())
	if err != nil {
		transitionError(c, err)
		return
	}

	if err := h.Appointments.Update(appointment.ID, map[string]interface{}{
		"start_time": plan.Start,
		"end_time":   plan.End,
		"mode":       plan.Mode,
		"status":     plan.Status,
	}); err != nil {
		utils.StoreError(c, err)
		return
	}
	appointment.StartTime = plan.Start
	appointment.EndTime = plan.End
	appointment.Mode = plan.Mode
	appointment.Status = plan.Status

	counterpart := scheduling.CounterpartID(appointment, userID)
	h.notify(counterpart, models.NotifyAppointmentRescheduled, "Appointment rescheduled",
		fmt.Sprintf("Moved to %s", plan.Start.Format("Jan 2, 2006 at 15:04")),
		appointment.ID)

	utils.Success(c, "Appointment rescheduled", appointment)
}

// Calendar returns the laid-out calendar for a day, week or month view.
func (h *AppointmentHandler) Calendar(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	view := c.DefaultQuery("view", "week")
	anchor := h.Now()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dateStr, anchor.Location())
		if err != nil {
			utils.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		anchor = parsed
	}

	var from, to time.Time
	switch view {
	case "day":
		from = startOfDay(anchor)
		to = from.AddDate(0, 0, 1)
	case "week":
		from = startOfWeek(anchor)
		to = from.AddDate(0, 0, 7)
	case "month":
		from = time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
		to = from.AddDate(0, 1, 0)
	default:
		utils.BadRequest(c, "Invalid view, expected day, week or month")
		return
	}

	appointments := h.Appointments.ListInRange(userID, role, from, to)

	if view == "month" {
		utils.Success(c, "Calendar fetched", gin.H{
			"view":  view,
			"cells": scheduling.LayoutMonth(appointments, from, to),
		})
		return
	}
	utils.Success(c, "Calendar fetched", gin.H{
		"view": view,
		"days": scheduling.LayoutDays(appointments, from, to, h.Now()),
	})
}

func (h *AppointmentHandler) notify(userID string, notifType models.NotificationType, title, body, appointmentID string) {
	h.Notifications.Notify(userID, notifType, title, body, "appointments", appointmentID)
	if h.Hub != nil {
		h.Hub.SendToUser(userID, presence.Event{
			Type:      presence.EventNotification,
			Timestamp: h.Now(),
			Data: gin.H{
				"type":          notifType,
				"title":         title,
				"appointmentId": appointmentID,
			},
		})
	}
}

// statusNotification maps a lifecycle change to the notification the other
// participant receives. Completion and no-show are bookkeeping, not news.
func statusNotification(status models.AppointmentStatus) (models.NotificationType, string, bool) {
	switch status {
	case models.StatusConfirmed:
		return models.NotifyAppointmentConfirmed, "Appointment confirmed", true
	case models.StatusRejected:
		return models.NotifyAppointmentRejected, "Appointment declined", true
	case models.StatusCancelled:
		return models.NotifyAppointmentCancelled, "Appointment cancelled", true
	}
	return "", "", false
}

// transitionError maps lifecycle rule violations onto HTTP responses.
func transitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, scheduling.ErrNotParticipant),
		errors.Is(err, scheduling.ErrDoctorOnly),
		errors.Is(err, scheduling.ErrPatientOnly):
		utils.Forbidden(c, err.Error())
	case errors.Is(err, scheduling.ErrClosed),
		errors.Is(err, scheduling.ErrBadTransition):
		utils.Conflict(c, err.Error())
	default:
		utils.BadRequest(c, err.Error())
	}
}

func parseRange(c *gin.Context, now time.Time) (time.Time, time.Time, error) {
	from := startOfDay(now).AddDate(0, -1, 0)
	to := startOfDay(now).AddDate(0, 3, 0)

	if fromStr := c.Query("from"); fromStr != "" {
		parsed, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return from, to, fmt.Errorf("invalid from, expected RFC3339")
		}
		from = parsed
	}
	if toStr := c.Query("to"); toStr != "" {
		parsed, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			return from, to, fmt.Errorf("invalid to, expected RFC3339")
		}
		to = parsed
	}
	if !to.After(from) {
		return from, to, fmt.Errorf("to must be after from")
	}
	return from, to, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
