package calendar

import "time"

// HolidayEntry - one non-working date of the year
type HolidayEntry struct {
	Date     time.Time
	Name     string
	Official bool // false for company-specific days off
}

// AnnualCalendar - holiday list per (tenant, year)
type AnnualCalendar struct {
	ID       string
	TenantID string
	Year     int
	Holidays []HolidayEntry
}

// IsHoliday reports whether d (compared by calendar date) is listed.
func (a AnnualCalendar) IsHoliday(d time.Time) bool {
	_, ok := a.Holiday(d)
	return ok
}

func (a AnnualCalendar) Holiday(d time.Time) (HolidayEntry, bool) {
	y, m, day := d.Date()
	for _, h := range a.Holidays {
		hy, hm, hd := h.Date.Date()
		if hy == y && hm == m && hd == day {
			return h, true
		}
	}
	return HolidayEntry{}, false
}

// MonthlyCalendar - authoritative working-time counts for (tenant, year, month)
type MonthlyCalendar struct {
	ID                 string
	TenantID           string
	Year               int
	Month              int
	CalendarDays       int
	WorkingDays        int
	WorkingHours       int
	HoursPerDay        int
	HolidayCount       int
	WeekendDays        int
	AdvancePaymentDate time.Time
	SalaryPaymentDate  time.Time
	CreatedAt          time.Time
}

// IsWeekend is true for Saturday and Sunday.
func IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DaysIn returns the number of days in the month.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Date builds a UTC calendar date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
