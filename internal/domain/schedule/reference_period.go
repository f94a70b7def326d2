package schedule

import "fmt"

// AllowedReferenceMonths are the lengths permitted for summed working-time accounting.
var AllowedReferenceMonths = []int{1, 2, 3, 4, 6}

func IsAllowedReferenceMonths(n int) bool {
	for _, m := range AllowedReferenceMonths {
		if m == n {
			return true
		}
	}
	return false
}

// ReferencePeriod is a window of Months consecutive months inside one year.
// Every allowed length divides 12, so windows are aligned to January.
type ReferencePeriod struct {
	Year       int
	StartMonth int
	Months     int
}

// PeriodFor returns the window containing (year, month).
func PeriodFor(year, month, months int) ReferencePeriod {
	if months < 1 {
		months = 1
	}
	start := ((month-1)/months)*months + 1
	return ReferencePeriod{Year: year, StartMonth: start, Months: months}
}

func (p ReferencePeriod) EndMonth() int {
	return p.StartMonth + p.Months - 1
}

func (p ReferencePeriod) Contains(year, month int) bool {
	return year == p.Year && month >= p.StartMonth && month <= p.EndMonth()
}

// IsClosingMonth reports whether month is the last month of the window.
func (p ReferencePeriod) IsClosingMonth(month int) bool {
	return month == p.EndMonth()
}

func (p ReferencePeriod) String() string {
	return fmt.Sprintf("%d-%02d..%02d", p.Year, p.StartMonth, p.EndMonth())
}
