package attendance

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/valstrz/payroll-engine/internal/domain/schedule"
)

type AbsenceStatus string

const (
	AbsenceStatusPending   AbsenceStatus = "pending"
	AbsenceStatusApproved  AbsenceStatus = "approved"
	AbsenceStatusActive    AbsenceStatus = "active"
	AbsenceStatusCompleted AbsenceStatus = "completed"
	AbsenceStatusRejected  AbsenceStatus = "rejected"
)

// Counts reports whether the absence affects attendance.
func (s AbsenceStatus) Counts() bool {
	return s == AbsenceStatusApproved || s == AbsenceStatusActive || s == AbsenceStatusCompleted
}

type AbsenceKind string

const (
	AbsenceKindPaidLeave AbsenceKind = "paid_leave"
	AbsenceKindSick      AbsenceKind = "sick"
	AbsenceKindUnpaid    AbsenceKind = "unpaid"
	AbsenceKindOther     AbsenceKind = "other"
)

// KindOf classifies an absence code: 321-329 paid leave, 3516xx sickness,
// 351305/351306 unpaid leave.
func KindOf(code string) AbsenceKind {
	switch {
	case code == "351305" || code == "351306":
		return AbsenceKindUnpaid
	case strings.HasPrefix(code, "3516"):
		return AbsenceKindSick
	case len(code) == 3 && code >= "321" && code <= "329":
		return AbsenceKindPaidLeave
	default:
		return AbsenceKindOther
	}
}

// Absence - recorded non-work period
type Absence struct {
	ID          string
	TenantID    string
	EmployeeID  string
	Code        string
	FromDate    time.Time
	ToDate      time.Time
	Status      AbsenceStatus
	OrderNumber string
	CreatedAt   time.Time
}

func (a Absence) Kind() AbsenceKind {
	return KindOf(a.Code)
}

// Covers reports whether d falls inside the absence, inclusive.
func (a Absence) Covers(d time.Time) bool {
	day := truncate(d)
	return !day.Before(truncate(a.FromDate)) && !day.After(truncate(a.ToDate))
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type DayType string

const (
	DayTypeWork    DayType = "work"
	DayTypeRest    DayType = "rest"
	DayTypeHoliday DayType = "holiday"
	DayTypeAbsence DayType = "absence"
)

type OvertimeKind string

const (
	OvertimeWeekday OvertimeKind = "weekday"
	OvertimeWeekend OvertimeKind = "weekend"
	OvertimeHoliday OvertimeKind = "holiday"
)

// DailyEntry - realized attendance of one day
type DailyEntry struct {
	Date          time.Time
	Type          DayType
	Hours         decimal.Decimal
	NightHours    decimal.Decimal
	OvertimeHours decimal.Decimal
	OvertimeKind  OvertimeKind
	AbsenceCode   string
}

// MonthlyTimesheet - realized attendance of an employee for a month
type MonthlyTimesheet struct {
	ID         string
	TenantID   string
	EmployeeID string
	Year       int
	Month      int
	Days       []DailyEntry
	UpdatedAt  time.Time
}

// OvertimeHours sums realized overtime of the given kind.
func (t MonthlyTimesheet) OvertimeHours(kind OvertimeKind) decimal.Decimal {
	sum := decimal.Zero
	for _, d := range t.Days {
		if d.OvertimeKind == kind {
			sum = sum.Add(d.OvertimeHours)
		}
	}
	return sum
}

// Summary - derived attendance consumed by the payroll calculator
type Summary struct {
	ScheduledDays  int
	ScheduledHours decimal.Decimal
	WorkedDays     int
	WorkedHours    decimal.Decimal
	NightHours     decimal.Decimal

	PaidLeaveDays int
	SickDays      int
	UnpaidDays    int
	OtherDays     int

	OvertimeWeekdayHours decimal.Decimal
	OvertimeWeekendHours decimal.Decimal
	OvertimeHolidayHours decimal.Decimal

	// HoursRatio is schedule hours per day over the standard full-time day.
	HoursRatio decimal.Decimal

	// Reference is set for rotating schedules only.
	Reference *ReferenceTotals
}

func (s Summary) TotalOvertimeHours() decimal.Decimal {
	return s.OvertimeWeekdayHours.Add(s.OvertimeWeekendHours).Add(s.OvertimeHolidayHours)
}

// MonthBalance - one month's contribution to a reference period
type MonthBalance struct {
	TenantID       string
	EmployeeID     string
	Year           int
	Month          int
	NormHours      decimal.Decimal // calendar norm for the month
	ScheduledHours decimal.Decimal // hours the rotation scheduled, net of absences
	WorkedHours    decimal.Decimal // realized hours
	UpdatedAt      time.Time
}

// ReferenceTotals - running totals of the open reference period
type ReferenceTotals struct {
	Period         schedule.ReferencePeriod
	NormHours      decimal.Decimal
	ScheduledHours decimal.Decimal
	WorkedHours    decimal.Decimal
	Closing        bool
	Overtime       decimal.Decimal // set when Closing
	Deficit        decimal.Decimal // set when Closing
	Current        MonthBalance    // this month's contribution, to be stored
}
