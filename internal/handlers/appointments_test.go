package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"care-portal-server/internal/models"
	"care-portal-server/internal/presence"
)

const (
	testDoctorID  = "11111111-1111-1111-1111-111111111111"
	testPatientID = "22222222-2222-2222-2222-222222222222"
)

var testNow = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

type stubAppointments struct {
	appointment   *models.Appointment
	created       *models.Appointment
	statusUpdates []models.AppointmentStatus
	fieldUpdates  []map[string]interface{}
}

func (s *stubAppointments) ListInRange(userID string, role models.Role, from, to time.Time) []models.Appointment {
	if s.appointment == nil {
		return []models.Appointment{}
	}
	return []models.Appointment{*s.appointment}
}

func (s *stubAppointments) GetByID(id string) (*models.Appointment, error) {
	clone := *s.appointment
	return &clone, nil
}

func (s *stubAppointments) Create(appointment *models.Appointment) error {
	appointment.ID = "33333333-3333-3333-3333-333333333333"
	s.created = appointment
	return nil
}

func (s *stubAppointments) UpdateStatus(id string, status models.AppointmentStatus) error {
	s.statusUpdates = append(s.statusUpdates, status)
	s.appointment.Status = status
	return nil
}

func (s *stubAppointments) Update(id string, fields map[string]interface{}) error {
	s.fieldUpdates = append(s.fieldUpdates, fields)
	return nil
}

type notified struct {
	userID    string
	notifType models.NotificationType
}

type stubNotifier struct {
	sent []notified
}

func (s *stubNotifier) Notify(userID string, notifType models.NotificationType, title, body, entityTable, entityID string) {
	s.sent = append(s.sent, notified{userID: userID, notifType: notifType})
}

type stubPusher struct {
	events []presence.Event
}

func (s *stubPusher) SendToUser(userID string, event presence.Event) {
	s.events = append(s.events, event)
}

func requestedAppointment() *models.Appointment {
	start := testNow.Add(48 * time.Hour)
	a := &models.Appointment{
		PatientID: testPatientID,
		DoctorID:  testDoctorID,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    models.StatusRequested,
		Mode:      models.ModeInPerson,
	}
	a.ID = "33333333-3333-3333-3333-333333333333"
	return a
}

func newTestSetup(appointment *models.Appointment) (*AppointmentHandler, *stubAppointments, *stubNotifier) {
	repo := &stubAppointments{appointment: appointment}
	notifier := &stubNotifier{}
	h := &AppointmentHandler{
		Appointments:  repo,
		Notifications: notifier,
		Hub:           &stubPusher{},
		Now:           func() time.Time { return testNow },
	}
	return h, repo, notifier
}

func newTestRouter(h *AppointmentHandler, userID string, role models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("userRole", role)
	})
	r.POST("/appointments", h.Create)
	r.PATCH("/appointments/:id/status", h.UpdateStatus)
	r.PATCH("/appointments/:id/reschedule", h.Reschedule)
	return r
}

func patchJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPatch, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDoctorConfirmsRequestedAppointment(t *testing.T) {
	h, repo, notifier := newTestSetup(requestedAppointment())
	r := newTestRouter(h, testDoctorID, models.RoleDoctor)

	w := patchJSON(r, "/appointments/"+repo.appointment.ID+"/status", gin.H{"status": "confirmed"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(repo.statusUpdates) != 1 || repo.statusUpdates[0] != models.StatusConfirmed {
		t.Fatalf("expected one confirmed update, got %v", repo.statusUpdates)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.sent))
	}
	if notifier.sent[0].userID != testPatientID {
		t.Errorf("notification went to %s, want the patient", notifier.sent[0].userID)
	}
	if notifier.sent[0].notifType != models.NotifyAppointmentConfirmed {
		t.Errorf("notification type = %s, want %s", notifier.sent[0].notifType, models.NotifyAppointmentConfirmed)
	}
}

func TestRepeatedStatusIsNoop(t *testing.T) {
	appointment := requestedAppointment()
	appointment.Status = models.StatusConfirmed
	h, repo, notifier := newTestSetup(appointment)
	r := newTestRouter(h, testDoctorID, models.RoleDoctor)

	w := patchJSON(r, "/appointments/"+appointment.ID+"/status", gin.H{"status": "confirmed"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for a repeated status, got %d", w.Code)
	}
	if len(repo.statusUpdates) != 0 {
		t.Errorf("repeat should not write, got updates %v", repo.statusUpdates)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("repeat should not notify, got %d notifications", len(notifier.sent))
	}
}

func TestPatientCannotConfirm(t *testing.T) {
	h, repo, _ := newTestSetup(requestedAppointment())
	r := newTestRouter(h, testPatientID, models.RolePatient)

	w := patchJSON(r, "/appointments/"+repo.appointment.ID+"/status", gin.H{"status": "confirmed"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
	if len(repo.statusUpdates) != 0 {
		t.Errorf("rejected transition must not write, got %v", repo.statusUpdates)
	}
}

func TestRescheduleToPastIsBlocked(t *testing.T) {
	h, repo, notifier := newTestSetup(requestedAppointment())
	r := newTestRouter(h, testPatientID, models.RolePatient)

	w := patchJSON(r, "/appointments/"+repo.appointment.ID+"/reschedule", gin.H{
		"startTime": testNow.Add(-time.Hour).Format(time.RFC3339),
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if len(repo.fieldUpdates) != 0 {
		t.Errorf("blocked reschedule must leave the record unchanged, got %v", repo.fieldUpdates)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("blocked reschedule must not notify")
	}
}

func TestDoctorRescheduleConfirms(t *testing.T) {
	h, repo, notifier := newTestSetup(requestedAppointment())
	r := newTestRouter(h, testDoctorID, models.RoleDoctor)

	newStart := testNow.Add(72 * time.Hour)
	w := patchJSON(r, "/appointments/"+repo.appointment.ID+"/reschedule", gin.H{
		"startTime": newStart.Format(time.RFC3339),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(repo.fieldUpdates) != 1 {
		t.Fatalf("expected one update, got %d", len(repo.fieldUpdates))
	}
	fields := repo.fieldUpdates[0]
	if fields["status"] != models.StatusConfirmed {
		t.Errorf("doctor reschedule should confirm, got %v", fields["status"])
	}
	end, ok := fields["end_time"].(time.Time)
	if !ok || !end.Equal(newStart.Add(time.Hour)) {
		t.Errorf("end_time = %v, want %v", fields["end_time"], newStart.Add(time.Hour))
	}
	if len(notifier.sent) != 1 || notifier.sent[0].notifType != models.NotifyAppointmentRescheduled {
		t.Errorf("expected a reschedule notification, got %v", notifier.sent)
	}
}

func TestRejectedAppointmentIsTerminal(t *testing.T) {
	h, repo, _ := newTestSetup(requestedAppointment())
	r := newTestRouter(h, testDoctorID, models.RoleDoctor)

	w := patchJSON(r, "/appointments/"+repo.appointment.ID+"/status", gin.H{"status": "rejected"})
	if w.Code != http.StatusOK {
		t.Fatalf("reject: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = patchJSON(r, "/appointments/"+repo.appointment.ID+"/status", gin.H{"status": "confirmed"})
	if w.Code != http.StatusConflict {
		t.Fatalf("confirm after reject: expected 409, got %d: %s", w.Code, w.Body.String())
	}
	if len(repo.statusUpdates) != 1 {
		t.Errorf("only the reject should have written, got %v", repo.statusUpdates)
	}
}

func TestPatientBookingStartsRequested(t *testing.T) {
	h, repo, notifier := newTestSetup(requestedAppointment())
	r := newTestRouter(h, testPatientID, models.RolePatient)

	payload, _ := json.Marshal(gin.H{
		"doctorId":  testDoctorID,
		"startTime": testNow.Add(24 * time.Hour).Format(time.RFC3339),
		"reason":    "Annual checkup",
	})
	req := httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if repo.created == nil {
		t.Fatal("expected an appointment to be created")
	}
	if repo.created.Status != models.StatusRequested {
		t.Errorf("patient booking status = %s, want requested", repo.created.Status)
	}
	if !repo.created.EndTime.Equal(repo.created.StartTime.Add(time.Hour)) {
		t.Errorf("end time should be start + 1h, got %v", repo.created.EndTime)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].userID != testDoctorID {
		t.Errorf("the doctor should be notified of the request, got %v", notifier.sent)
	}
}
