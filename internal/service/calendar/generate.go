package calendar

import (
	"time"

	"github.com/valstrz/payroll-engine/internal/domain/calendar"
)

const (
	AdvancePaymentDay = 10
	SalaryPaymentDay  = 25
)

// IsWorkingDay is true for a weekday that is not a listed holiday.
func IsWorkingDay(annual calendar.AnnualCalendar, d time.Time) bool {
	return !calendar.IsWeekend(d) && !annual.IsHoliday(d)
}

// Generate derives the month's working-time counts from the holiday list.
// Holidays that fall on a weekend are not counted again.
func Generate(annual calendar.AnnualCalendar, year, month, hoursPerDay int) calendar.MonthlyCalendar {
	days := calendar.DaysIn(year, month)
	cal := calendar.MonthlyCalendar{
		TenantID:     annual.TenantID,
		Year:         year,
		Month:        month,
		CalendarDays: days,
		HoursPerDay:  hoursPerDay,
	}

	for day := 1; day <= days; day++ {
		d := calendar.Date(year, month, day)
		switch {
		case calendar.IsWeekend(d):
			cal.WeekendDays++
		case annual.IsHoliday(d):
			cal.HolidayCount++
		default:
			cal.WorkingDays++
		}
	}
	cal.WorkingHours = cal.WorkingDays * hoursPerDay
	cal.AdvancePaymentDate = paymentDate(annual, year, month, AdvancePaymentDay)
	cal.SalaryPaymentDate = paymentDate(annual, year, month, SalaryPaymentDay)
	return cal
}

// paymentDate moves day back to the closest working day of the same month.
func paymentDate(annual calendar.AnnualCalendar, year, month, day int) time.Time {
	d := calendar.Date(year, month, day)
	for d.Day() > 1 && !IsWorkingDay(annual, d) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
