package schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindFixed    Kind = "fixed"
	KindRotating Kind = "rotating"
)

// WorkSchedule - hours-per-day scheme referenced by an employment
type WorkSchedule struct {
	ID              string
	TenantID        string
	Code            string
	Name            string
	Kind            Kind
	HoursPerDay     decimal.Decimal
	ShiftScheduleID *string // set for rotating schedules
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ShiftDefinition - one shift of a rotation
type ShiftDefinition struct {
	Index      int
	Name       string
	StartTime  string // HH:MM
	EndTime    string // HH:MM, may be on the next day
	TotalHours decimal.Decimal
	NightHours decimal.Decimal
}

// ShiftSchedule - a named rotation of shift definitions accounted over a
// reference period of summed working time.
type ShiftSchedule struct {
	ID              string
	TenantID        string
	Code            string
	Name            string
	ReferenceMonths int
	Shifts          []ShiftDefinition
	Rotation        []RotationSlot
	RotationStart   time.Time // date on which Rotation[0] applies
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Shift returns the definition with the given index.
func (s ShiftSchedule) Shift(index int) (ShiftDefinition, bool) {
	for _, d := range s.Shifts {
		if d.Index == index {
			return d, true
		}
	}
	return ShiftDefinition{}, false
}

// SlotOn returns the rotation slot that applies on date. Dates before
// RotationStart wrap backwards through the pattern.
func (s ShiftSchedule) SlotOn(date time.Time) RotationSlot {
	n := len(s.Rotation)
	if n == 0 {
		return Rest()
	}
	days := daysBetween(s.RotationStart, date)
	pos := days % n
	if pos < 0 {
		pos += n
	}
	return s.Rotation[pos]
}

func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
