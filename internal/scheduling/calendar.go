package scheduling

import (
	"time"

	"care-portal-server/internal/models"
)

// Calendar grid constants. The day/week grid spans 07:00-23:00 in 16 rows of
// 60px, i.e. one pixel per minute.
const (
	GridStartHour = 7
	GridEndHour   = 23
	RowHeightPx   = 60
	GridHeightPx  = (GridEndHour - GridStartHour) * RowHeightPx

	// MinBlockHeightPx keeps short appointments clickable and legible.
	MinBlockHeightPx = 45

	// MonthCellMaxInline is how many appointments render inline in a month
	// cell before the overflow indicator takes over.
	MonthCellMaxInline = 2
)

// pixelsPerMinute for the fixed grid above.
const pixelsPerMinute = float64(RowHeightPx) / 60.0

// Block is the layout of one appointment on the day/week grid.
type Block struct {
	AppointmentID string `json:"appointmentId"`
	Title         string `json:"title"`
	TopPx         int    `json:"topPx"`
	HeightPx      int    `json:"heightPx"`
	Muted         bool   `json:"muted"`
}

// LayoutBlock positions a single appointment on the grid of the day it
// starts. Cancelled and rejected appointments stay visible but muted.
func LayoutBlock(a *models.Appointment) Block {
	gridStart := time.Date(a.StartTime.Year(), a.StartTime.Month(), a.StartTime.Day(),
		GridStartHour, 0, 0, 0, a.StartTime.Location())

	top := int(a.StartTime.Sub(gridStart).Minutes() * pixelsPerMinute)

	height := int(a.EndTime.Sub(a.StartTime).Minutes() * pixelsPerMinute)
	if height < MinBlockHeightPx {
		height = MinBlockHeightPx
	}

	title := a.Doctor.FullName()
	if title == "?" {
		title = a.Patient.FullName()
	}

	return Block{
		AppointmentID: a.ID,
		Title:         title,
		TopPx:         top,
		HeightPx:      height,
		Muted:         a.Status == models.StatusCancelled || a.Status == models.StatusRejected,
	}
}

// DayColumn is one day's worth of laid-out blocks plus the now indicator.
type DayColumn struct {
	Date         string  `json:"date"` // YYYY-MM-DD
	Blocks       []Block `json:"blocks"`
	NowOffsetPx  int     `json:"nowOffsetPx"`
	NowVisible   bool    `json:"nowVisible"`
}

// NowIndicator computes the vertical offset of the current-time line for a
// day column. The line only renders when the column is today and the offset
// falls inside the visible grid.
func NowIndicator(day, now time.Time) (int, bool) {
	sameDay := day.Year() == now.Year() && day.Month() == now.Month() && day.Day() == now.Day()
	if !sameDay {
		return 0, false
	}
	gridStart := time.Date(now.Year(), now.Month(), now.Day(), GridStartHour, 0, 0, 0, now.Location())
	offset := int(now.Sub(gridStart).Minutes() * pixelsPerMinute)
	if offset < 0 || offset > GridHeightPx {
		return 0, false
	}
	return offset, true
}

// LayoutDays buckets appointments into per-day columns over [from, to) and
// lays each out on the grid. Used for both the day view (one column) and the
// week view (seven).
func LayoutDays(appointments []models.Appointment, from, to, now time.Time) []DayColumn {
	columns := []DayColumn{}
	for day := startOfDay(from); day.Before(to); day = day.AddDate(0, 0, 1) {
		column := DayColumn{Date: day.Format("2006-01-02"), Blocks: []Block{}}
		for i := range appointments {
			if sameDate(appointments[i].StartTime, day) {
				column.Blocks = append(column.Blocks, LayoutBlock(&appointments[i]))
			}
		}
		column.NowOffsetPx, column.NowVisible = NowIndicator(day, now)
		columns = append(columns, column)
	}
	return columns
}

// MonthCell is one day of the month view: up to MonthCellMaxInline inline
// entries and an overflow count for the rest.
type MonthCell struct {
	Date     string  `json:"date"`
	Inline   []Block `json:"inline"`
	Overflow int     `json:"overflow"`
	Total    int     `json:"total"`
}

// LayoutMonth buckets appointments by calendar day (date equality, time
// ignored) over [from, to).
func LayoutMonth(appointments []models.Appointment, from, to time.Time) []MonthCell {
	cells := []MonthCell{}
	for day := startOfDay(from); day.Before(to); day = day.AddDate(0, 0, 1) {
		cell := MonthCell{Date: day.Format("2006-01-02"), Inline: []Block{}}
		for i := range appointments {
			if !sameDate(appointments[i].StartTime, day) {
				continue
			}
			cell.Total++
			if len(cell.Inline) < MonthCellMaxInline {
				cell.Inline = append(cell.Inline, LayoutBlock(&appointments[i]))
			}
		}
		cell.Overflow = cell.Total - len(cell.Inline)
		cells = append(cells, cell)
	}
	return cells
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
