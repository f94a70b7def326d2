package attendance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/valstrz/payroll-engine/internal/domain/attendance"
	"github.com/valstrz/payroll-engine/internal/domain/calendar"
	"github.com/valstrz/payroll-engine/internal/domain/schedule"
	"github.com/valstrz/payroll-engine/internal/pkg/apperror"
	"github.com/valstrz/payroll-engine/internal/pkg/money"
	calendarsvc "github.com/valstrz/payroll-engine/internal/service/calendar"
)

// Input is everything the deriver needs for one employee-month. Absences must
// belong to the employee; Prior holds balances of earlier months of the same
// reference period.
type Input struct {
	TenantID   string
	EmployeeID string
	Year       int
	Month      int

	Calendar calendar.MonthlyCalendar
	Annual   calendar.AnnualCalendar

	Schedule schedule.WorkSchedule
	Shifts   *schedule.ShiftSchedule

	EmploymentStart time.Time
	EmploymentEnd   *time.Time

	Absences  []attendance.Absence
	Timesheet *attendance.MonthlyTimesheet
	Prior     []attendance.MonthBalance
}

type Deriver struct {
	StandardHoursPerDay decimal.Decimal
	Ledger              ReferenceLedger
}

func NewDeriver(standardHoursPerDay int) Deriver {
	if standardHoursPerDay <= 0 {
		standardHoursPerDay = 8
	}
	return Deriver{StandardHoursPerDay: decimal.NewFromInt(int64(standardHoursPerDay))}
}

// Derive converts schedule, calendar and absence data into attendance figures.
func (d Deriver) Derive(in Input) (attendance.Summary, error) {
	if in.Month < 1 || in.Month > 12 {
		return attendance.Summary{}, apperror.InvalidInput("month", "must be between 1 and 12")
	}

	hoursPerDay := in.Schedule.HoursPerDay
	if !hoursPerDay.IsPositive() {
		hoursPerDay = decimal.NewFromInt(int64(in.Calendar.HoursPerDay))
	}
	if !hoursPerDay.IsPositive() {
		hoursPerDay = d.StandardHoursPerDay
	}

	var (
		s   attendance.Summary
		err error
	)
	switch in.Schedule.Kind {
	case schedule.KindRotating:
		s, err = d.deriveRotating(in, hoursPerDay)
	default:
		s, err = d.deriveFixed(in, hoursPerDay)
	}
	if err != nil {
		return attendance.Summary{}, err
	}

	s.HoursRatio = money.Divide(hoursPerDay, d.StandardHoursPerDay)
	if in.Timesheet != nil {
		s.OvertimeWeekdayHours = in.Timesheet.OvertimeHours(attendance.OvertimeWeekday)
		s.OvertimeWeekendHours = in.Timesheet.OvertimeHours(attendance.OvertimeWeekend)
		s.OvertimeHolidayHours = in.Timesheet.OvertimeHours(attendance.OvertimeHoliday)
	}

	if s.Reference != nil {
		// Summed working time: weekday overtime is only known when the period closes.
		s.OvertimeWeekdayHours = decimal.Zero
		if s.Reference.Closing {
			s.OvertimeWeekdayHours = s.Reference.Overtime
		}
	}
	return s, nil
}

func (d Deriver) deriveFixed(in Input, hoursPerDay decimal.Decimal) (attendance.Summary, error) {
	var s attendance.Summary
	first, last, ok := employedRange(in)
	if !ok {
		return zeroSummary(), nil
	}

	fullMonth := first.Day() == 1 && last.Day() == calendar.DaysIn(in.Year, in.Month)
	absentDays := 0
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if !calendarsvc.IsWorkingDay(in.Annual, day) {
			continue
		}
		s.ScheduledDays++
		if abs, ok := absenceOn(in.Absences, day); ok {
			countAbsence(&s, abs.Kind())
			absentDays++
		}
	}
	if fullMonth && in.Calendar.WorkingDays > 0 {
		s.ScheduledDays = in.Calendar.WorkingDays
	}

	s.WorkedDays = max(s.ScheduledDays-absentDays, 0)
	s.ScheduledHours = hoursPerDay.Mul(decimal.NewFromInt(int64(s.ScheduledDays)))
	s.WorkedHours = hoursPerDay.Mul(decimal.NewFromInt(int64(s.WorkedDays)))
	s.NightHours = decimal.Zero
	if in.Timesheet != nil {
		for _, e := range in.Timesheet.Days {
			s.NightHours = s.NightHours.Add(e.NightHours)
		}
	}
	return s, nil
}

func (d Deriver) deriveRotating(in Input, hoursPerDay decimal.Decimal) (attendance.Summary, error) {
	if in.Shifts == nil {
		return attendance.Summary{}, apperror.InvalidInput("shiftScheduleId", fmt.Sprintf("rotating schedule %s has no shift schedule", in.Schedule.Code)).Wrap(attendance.ErrScheduleMismatch)
	}
	if err := in.Shifts.Validate(); err != nil {
		return attendance.Summary{}, err
	}

	s := zeroSummary()
	normDays := 0
	first, last, ok := employedRange(in)
	if ok {
		for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
			abs, absent := absenceOn(in.Absences, day)
			if calendarsvc.IsWorkingDay(in.Annual, day) && !absent {
				normDays++
			}

			idx, isShift := in.Shifts.SlotOn(day).ShiftIndex()
			if !isShift {
				continue
			}
			shift, _ := in.Shifts.Shift(idx)
			if absent {
				countAbsence(&s, abs.Kind())
				continue
			}
			s.ScheduledDays++
			s.WorkedDays++
			s.ScheduledHours = s.ScheduledHours.Add(shift.TotalHours)
			s.NightHours = s.NightHours.Add(shift.NightHours)
		}
	}

	s.WorkedHours = s.ScheduledHours
	if realized, ok := realizedHours(in.Timesheet); ok {
		s.WorkedHours = realized
	}

	current := attendance.MonthBalance{
		TenantID:       in.TenantID,
		EmployeeID:     in.EmployeeID,
		Year:           in.Year,
		Month:          in.Month,
		NormHours:      hoursPerDay.Mul(decimal.NewFromInt(int64(normDays))),
		ScheduledHours: s.ScheduledHours,
		WorkedHours:    s.WorkedHours,
	}
	period := schedule.PeriodFor(in.Year, in.Month, in.Shifts.ReferenceMonths)
	totals := d.Ledger.Accumulate(period, in.Prior, current)
	s.Reference = &totals
	return s, nil
}

func zeroSummary() attendance.Summary {
	return attendance.Summary{
		ScheduledHours: decimal.Zero,
		WorkedHours:    decimal.Zero,
		NightHours:     decimal.Zero,
	}
}

// employedRange clips the month to the employment dates.
func employedRange(in Input) (time.Time, time.Time, bool) {
	first := calendar.Date(in.Year, in.Month, 1)
	last := calendar.Date(in.Year, in.Month, calendar.DaysIn(in.Year, in.Month))

	if !in.EmploymentStart.IsZero() {
		start := calendar.Date(in.EmploymentStart.Year(), int(in.EmploymentStart.Month()), in.EmploymentStart.Day())
		if start.After(first) {
			first = start
		}
	}
	if in.EmploymentEnd != nil {
		end := calendar.Date(in.EmploymentEnd.Year(), int(in.EmploymentEnd.Month()), in.EmploymentEnd.Day())
		if end.Before(last) {
			last = end
		}
	}
	return first, last, !first.After(last)
}

func absenceOn(absences []attendance.Absence, day time.Time) (attendance.Absence, bool) {
	for _, a := range absences {
		if a.Status.Counts() && a.Covers(day) {
			return a, true
		}
	}
	return attendance.Absence{}, false
}

func countAbsence(s *attendance.Summary, kind attendance.AbsenceKind) {
	switch kind {
	case attendance.AbsenceKindPaidLeave:
		s.PaidLeaveDays++
	case attendance.AbsenceKindSick:
		s.SickDays++
	case attendance.AbsenceKindUnpaid:
		s.UnpaidDays++
	default:
		s.OtherDays++
	}
}

// realizedHours sums hours of timesheet work days; ok is false when the
// timesheet has no work entries.
func realizedHours(ts *attendance.MonthlyTimesheet) (decimal.Decimal, bool) {
	if ts == nil {
		return decimal.Zero, false
	}
	sum := decimal.Zero
	found := false
	for _, e := range ts.Days {
		if e.Type == attendance.DayTypeWork {
			sum = sum.Add(e.Hours)
			found = true
		}
	}
	return sum, found
}
