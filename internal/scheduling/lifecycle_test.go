package scheduling

import (
	"errors"
	"testing"
	"time"

	"care-portal-server/internal/models"
)

const (
	doctorID  = "d0000000-0000-0000-0000-000000000001"
	patientID = "p0000000-0000-0000-0000-000000000002"
	otherID   = "x0000000-0000-0000-0000-000000000003"
)

func newAppointment(status models.AppointmentStatus, start time.Time) *models.Appointment {
	return &models.Appointment{
		PatientID: patientID,
		DoctorID:  doctorID,
		StartTime: start,
		EndTime:   start.Add(DefaultDuration),
		Status:    status,
	}
}

func TestValidateTransition(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)

	cases := []struct {
		name    string
		status  models.AppointmentStatus
		to      models.AppointmentStatus
		actorID string
		role    models.Role
		want    error
	}{
		{"doctor confirms requested", models.StatusRequested, models.StatusConfirmed, doctorID, models.RoleDoctor, nil},
		{"doctor rejects requested", models.StatusRequested, models.StatusRejected, doctorID, models.RoleDoctor, nil},
		{"patient cannot confirm", models.StatusRequested, models.StatusConfirmed, patientID, models.RolePatient, ErrDoctorOnly},
		{"patient cancels requested", models.StatusRequested, models.StatusCancelled, patientID, models.RolePatient, nil},
		{"patient cancels confirmed", models.StatusConfirmed, models.StatusCancelled, patientID, models.RolePatient, nil},
		{"doctor cannot cancel", models.StatusConfirmed, models.StatusCancelled, doctorID, models.RoleDoctor, ErrPatientOnly},
		{"doctor completes confirmed", models.StatusConfirmed, models.StatusCompleted, doctorID, models.RoleDoctor, nil},
		{"doctor marks no-show", models.StatusConfirmed, models.StatusNoShow, doctorID, models.RoleDoctor, nil},
		{"cannot complete requested", models.StatusRequested, models.StatusCompleted, doctorID, models.RoleDoctor, ErrBadTransition},
		{"cannot confirm confirmed twice is noop", models.StatusConfirmed, models.StatusConfirmed, doctorID, models.RoleDoctor, ErrNoop},
		{"rejected is terminal", models.StatusRejected, models.StatusConfirmed, doctorID, models.RoleDoctor, ErrClosed},
		{"cancelled is terminal", models.StatusCancelled, models.StatusConfirmed, doctorID, models.RoleDoctor, ErrClosed},
		{"completed is terminal", models.StatusCompleted, models.StatusCancelled, patientID, models.RolePatient, ErrClosed},
		{"stranger cannot touch it", models.StatusRequested, models.StatusConfirmed, otherID, models.RoleDoctor, ErrNotParticipant},
		{"admin confirms", models.StatusRequested, models.StatusConfirmed, otherID, models.RoleAdmin, nil},
		{"requested not settable directly", models.StatusConfirmed, models.StatusRequested, patientID, models.RolePatient, ErrBadTransition},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a := newAppointment(c.status, future)
			err := ValidateTransition(a, c.to, c.actorID, c.role, now)
			if !errors.Is(err, c.want) && err != c.want {
				t.Fatalf("got %v, want %v", err, c.want)
			}
		})
	}
}

func TestValidateTransition_CancelRequiresUpcoming(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	a := newAppointment(models.StatusConfirmed, now.Add(-time.Hour))

	err := ValidateTransition(a, models.StatusCancelled, patientID, models.RolePatient, now)
	if !errors.Is(err, ErrNotUpcoming) {
		t.Fatalf("expected ErrNotUpcoming for a past appointment, got %v", err)
	}
}

func TestPlanReschedule_DoctorConfirms(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	a := newAppointment(models.StatusRequested, now.Add(48*time.Hour))
	newStart := now.Add(72 * time.Hour)

	plan, err := PlanReschedule(a, newStart, models.ModeVideo, doctorID, models.RoleDoctor, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Status != models.StatusConfirmed {
		t.Fatalf("doctor reschedule must confirm, got %s", plan.Status)
	}
	if !plan.End.Equal(newStart.Add(DefaultDuration)) {
		t.Fatalf("end must be start + 60m, got %v", plan.End)
	}
	if !plan.End.After(plan.Start) {
		t.Fatal("end must be after start")
	}
	if plan.Mode != models.ModeVideo {
		t.Fatalf("mode not carried through, got %s", plan.Mode)
	}
}

func TestPlanReschedule_PatientGoesBackToRequested(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	a := newAppointment(models.StatusConfirmed, now.Add(48*time.Hour))

	plan, err := PlanReschedule(a, now.Add(24*time.Hour), "", patientID, models.RolePatient, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Status != models.StatusRequested {
		t.Fatalf("patient reschedule must go back to requested, got %s", plan.Status)
	}
	if plan.Mode != a.Mode {
		t.Fatalf("empty mode must keep the current one, got %s", plan.Mode)
	}
}

func TestPlanReschedule_RejectsPastStart(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	a := newAppointment(models.StatusConfirmed, now.Add(48*time.Hour))

	for _, start := range []time.Time{now.Add(-time.Minute), now} {
		if _, err := PlanReschedule(a, start, "", patientID, models.RolePatient, now); !errors.Is(err, ErrPastStart) {
			t.Fatalf("start %v: expected ErrPastStart, got %v", start, err)
		}
	}
}

func TestPlanReschedule_TerminalBlocked(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	for _, status := range []models.AppointmentStatus{
		models.StatusCancelled, models.StatusRejected, models.StatusCompleted, models.StatusNoShow,
	} {
		a := newAppointment(status, now.Add(48*time.Hour))
		if _, err := PlanReschedule(a, now.Add(24*time.Hour), "", doctorID, models.RoleDoctor, now); !errors.Is(err, ErrClosed) {
			t.Fatalf("status %s: expected ErrClosed, got %v", status, err)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []models.AppointmentStatus{
		models.StatusCancelled, models.StatusRejected, models.StatusCompleted, models.StatusNoShow,
	}
	for _, s := range terminal {
		if !IsTerminal(s) {
			t.Fatalf("%s should be terminal", s)
		}
	}
	if IsTerminal(models.StatusRequested) || IsTerminal(models.StatusConfirmed) {
		t.Fatal("requested/confirmed must not be terminal")
	}
}

func TestCounterpartID(t *testing.T) {
	a := newAppointment(models.StatusRequested, time.Now())
	if got := CounterpartID(a, patientID); got != doctorID {
		t.Fatalf("counterpart of patient should be doctor, got %s", got)
	}
	if got := CounterpartID(a, doctorID); got != patientID {
		t.Fatalf("counterpart of doctor should be patient, got %s", got)
	}
}
