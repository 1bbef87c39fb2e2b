// Package scheduling holds the appointment lifecycle rules and the calendar
// layout math. Everything here is pure: callers pass the clock in, and the
// data access layer applies whatever these functions decide.
package scheduling

import (
	"errors"
	"time"

	"care-portal-server/internal/models"
)

// DefaultDuration is the fixed appointment length. Reschedules always derive
// end = start + DefaultDuration, which keeps end > start by construction.
const DefaultDuration = 60 * time.Minute

var (
	// ErrNoop signals that the requested status equals the current one. The
	// transition is idempotent: callers treat it as success and skip the
	// notification side effect.
	ErrNoop = errors.New("appointment already has this status")

	ErrNotParticipant = errors.New("only the appointment's participants may modify it")
	ErrClosed         = errors.New("appointment is in a terminal state")
	ErrDoctorOnly     = errors.New("only the doctor can perform this transition")
	ErrPatientOnly    = errors.New("only the patient can cancel an appointment")
	ErrNotUpcoming    = errors.New("appointment has already started")
	ErrPastStart      = errors.New("new start time must be in the future")
	ErrBadTransition  = errors.New("status transition not allowed")
)

// IsTerminal reports whether no further transitions are offered from s.
func IsTerminal(s models.AppointmentStatus) bool {
	switch s {
	case models.StatusCancelled, models.StatusRejected, models.StatusCompleted, models.StatusNoShow:
		return true
	}
	return false
}

// isDoctorParty reports whether the actor acts as the appointment's doctor.
// Admins operate with doctor-side authority.
func isDoctorParty(a *models.Appointment, actorID string, role models.Role) bool {
	if role == models.RoleAdmin {
		return true
	}
	return role == models.RoleDoctor && actorID == a.DoctorID
}

func isPatientParty(a *models.Appointment, actorID string, role models.Role) bool {
	if role == models.RoleAdmin {
		return true
	}
	return role == models.RolePatient && actorID == a.PatientID
}

func isParticipant(a *models.Appointment, actorID string, role models.Role) bool {
	return role == models.RoleAdmin || actorID == a.DoctorID || actorID == a.PatientID
}

// ValidateTransition checks whether the actor may move the appointment to the
// target status at the given time. It returns ErrNoop for a repeat of the
// current status so double submits stay harmless.
func ValidateTransition(a *models.Appointment, to models.AppointmentStatus, actorID string, role models.Role, now time.Time) error {
	if !isParticipant(a, actorID, role) {
		return ErrNotParticipant
	}
	if to == a.Status {
		return ErrNoop
	}
	if IsTerminal(a.Status) {
		return ErrClosed
	}

	switch to {
	case models.StatusConfirmed, models.StatusRejected:
		if a.Status != models.StatusRequested {
			return ErrBadTransition
		}
		if !isDoctorParty(a, actorID, role) {
			return ErrDoctorOnly
		}
	case models.StatusCancelled:
		if a.Status != models.StatusRequested && a.Status != models.StatusConfirmed {
			return ErrBadTransition
		}
		if !isPatientParty(a, actorID, role) {
			return ErrPatientOnly
		}
		if !a.StartTime.After(now) {
			return ErrNotUpcoming
		}
	case models.StatusCompleted, models.StatusNoShow:
		if a.Status != models.StatusConfirmed {
			return ErrBadTransition
		}
		if !isDoctorParty(a, actorID, role) {
			return ErrDoctorOnly
		}
	default:
		// requested is only reachable through a patient reschedule
		return ErrBadTransition
	}
	return nil
}

// ReschedulePlan is the outcome of a validated reschedule: the fields the
// data access layer should patch onto the appointment.
type ReschedulePlan struct {
	Start  time.Time
	End    time.Time
	Mode   models.AppointmentMode
	Status models.AppointmentStatus
}

// PlanReschedule validates a reschedule request and computes the resulting
// time range and status. The acting party's role determines the status: a
// doctor's edit confirms the appointment, a patient's edit sends it back to
// requested.
func PlanReschedule(a *models.Appointment, newStart time.Time, mode models.AppointmentMode, actorID string, role models.Role, now time.Time) (ReschedulePlan, error) {
	if !isParticipant(a, actorID, role) {
		return ReschedulePlan{}, ErrNotParticipant
	}
	if a.Status != models.StatusRequested && a.Status != models.StatusConfirmed {
		return ReschedulePlan{}, ErrClosed
	}
	if !newStart.After(now) {
		return ReschedulePlan{}, ErrPastStart
	}

	if mode == "" {
		mode = a.Mode
	}

	status := models.StatusRequested
	if isDoctorParty(a, actorID, role) {
		status = models.StatusConfirmed
	}

	return ReschedulePlan{
		Start:  newStart,
		End:    newStart.Add(DefaultDuration),
		Mode:   mode,
		Status: status,
	}, nil
}

// CounterpartID returns the participant who did not perform the action, i.e.
// the one to notify after a status-changing mutation.
func CounterpartID(a *models.Appointment, actorID string) string {
	if actorID == a.PatientID {
		return a.DoctorID
	}
	return a.PatientID
}
