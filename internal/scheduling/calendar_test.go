package scheduling

import (
	"testing"
	"time"

	"care-portal-server/internal/models"
)

func dayAppointment(start time.Time, dur time.Duration, status models.AppointmentStatus) models.Appointment {
	return models.Appointment{
		BaseModel: models.BaseModel{ID: "a-" + start.Format("150405")},
		PatientID: patientID,
		DoctorID:  doctorID,
		StartTime: start,
		EndTime:   start.Add(dur),
		Status:    status,
	}
}

func TestLayoutBlock_OffsetAndMinimumHeight(t *testing.T) {
	// 09:00-09:30 -> top is 2h past grid start (07:00), height clamps to floor
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	a := dayAppointment(start, 30*time.Minute, models.StatusConfirmed)

	block := LayoutBlock(&a)
	if block.TopPx != 2*RowHeightPx {
		t.Fatalf("top = %dpx, want %dpx", block.TopPx, 2*RowHeightPx)
	}
	if block.HeightPx != MinBlockHeightPx {
		t.Fatalf("height = %dpx, want minimum %dpx", block.HeightPx, MinBlockHeightPx)
	}
}

func TestLayoutBlock_FullHourHeight(t *testing.T) {
	start := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	a := dayAppointment(start, time.Hour, models.StatusConfirmed)

	block := LayoutBlock(&a)
	if block.TopPx != int(7.5*float64(RowHeightPx)) {
		t.Fatalf("top = %dpx, want %dpx", block.TopPx, int(7.5*float64(RowHeightPx)))
	}
	if block.HeightPx != RowHeightPx {
		t.Fatalf("height = %dpx, want %dpx", block.HeightPx, RowHeightPx)
	}
}

func TestLayoutBlock_MutedStatuses(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	for _, status := range []models.AppointmentStatus{models.StatusCancelled, models.StatusRejected} {
		a := dayAppointment(start, time.Hour, status)
		if !LayoutBlock(&a).Muted {
			t.Fatalf("%s should render muted", status)
		}
	}
	a := dayAppointment(start, time.Hour, models.StatusConfirmed)
	if LayoutBlock(&a).Muted {
		t.Fatal("confirmed should not be muted")
	}
}

func TestLayoutBlock_FallbackTitle(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	a := dayAppointment(start, time.Hour, models.StatusConfirmed)
	// no participant names loaded
	if got := LayoutBlock(&a).Title; got != "?" {
		t.Fatalf("expected fallback title ?, got %q", got)
	}

	a.Doctor = models.User{FirstName: "Ada", LastName: "Lovelace"}
	if got := LayoutBlock(&a).Title; got != "Ada Lovelace" {
		t.Fatalf("expected doctor name, got %q", got)
	}
}

func TestNowIndicator(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	// 09:00 today -> 120px, visible
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	offset, visible := NowIndicator(day, now)
	if !visible || offset != 2*RowHeightPx {
		t.Fatalf("got offset=%d visible=%v, want %d/true", offset, visible, 2*RowHeightPx)
	}

	// before grid start -> hidden
	if _, visible := NowIndicator(day, time.Date(2026, 3, 10, 6, 30, 0, 0, time.UTC)); visible {
		t.Fatal("indicator should hide before 07:00")
	}

	// another day -> hidden
	if _, visible := NowIndicator(day.AddDate(0, 0, 1), now); visible {
		t.Fatal("indicator should only show on today's column")
	}
}

func TestLayoutDays_BucketsByDate(t *testing.T) {
	from := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	appointments := []models.Appointment{
		dayAppointment(time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC), time.Hour, models.StatusConfirmed),
		dayAppointment(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), time.Hour, models.StatusRequested),
		dayAppointment(time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC), time.Hour, models.StatusConfirmed),
	}

	columns := LayoutDays(appointments, from, to, now)
	if len(columns) != 7 {
		t.Fatalf("expected 7 columns, got %d", len(columns))
	}
	if len(columns[0].Blocks) != 1 || len(columns[1].Blocks) != 2 {
		t.Fatalf("bad bucketing: %d/%d", len(columns[0].Blocks), len(columns[1].Blocks))
	}
	if columns[0].NowVisible {
		t.Fatal("now indicator must only appear on today's column")
	}
	if !columns[1].NowVisible {
		t.Fatal("now indicator missing on today's column")
	}
	// empty days still render as empty columns
	if len(columns[2].Blocks) != 0 {
		t.Fatal("expected empty column")
	}
}

func TestLayoutMonth_Overflow(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	day := time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC)
	appointments := []models.Appointment{
		dayAppointment(day, time.Hour, models.StatusConfirmed),
		dayAppointment(day.Add(2*time.Hour), time.Hour, models.StatusConfirmed),
		dayAppointment(day.Add(4*time.Hour), time.Hour, models.StatusConfirmed),
		dayAppointment(day.Add(6*time.Hour), time.Hour, models.StatusConfirmed),
	}

	cells := LayoutMonth(appointments, from, to)
	if len(cells) != 31 {
		t.Fatalf("expected 31 cells for March, got %d", len(cells))
	}

	cell := cells[4] // March 5th
	if cell.Total != 4 {
		t.Fatalf("total = %d, want 4", cell.Total)
	}
	if len(cell.Inline) != MonthCellMaxInline {
		t.Fatalf("inline = %d, want %d", len(cell.Inline), MonthCellMaxInline)
	}
	if cell.Overflow != 2 {
		t.Fatalf("overflow = %d, want 2", cell.Overflow)
	}
}
