package attendance

import (
	"github.com/shopspring/decimal"
	"github.com/valstrz/payroll-engine/internal/domain/attendance"
	"github.com/valstrz/payroll-engine/internal/domain/schedule"
)

// ReferenceLedger sums month balances over a reference period. Overtime and
// deficit are evaluated only in the closing month of the period.
type ReferenceLedger struct{}

// Accumulate adds current to the prior balances of the same period. Prior rows
// outside the period, or at or after the current month, are ignored.
func (ReferenceLedger) Accumulate(period schedule.ReferencePeriod, prior []attendance.MonthBalance, current attendance.MonthBalance) attendance.ReferenceTotals {
	t := attendance.ReferenceTotals{
		Period:         period,
		NormHours:      current.NormHours,
		ScheduledHours: current.ScheduledHours,
		WorkedHours:    current.WorkedHours,
		Overtime:       decimal.Zero,
		Deficit:        decimal.Zero,
		Current:        current,
	}
	for _, b := range prior {
		if !period.Contains(b.Year, b.Month) || b.Month >= current.Month {
			continue
		}
		t.NormHours = t.NormHours.Add(b.NormHours)
		t.ScheduledHours = t.ScheduledHours.Add(b.ScheduledHours)
		t.WorkedHours = t.WorkedHours.Add(b.WorkedHours)
	}

	if period.IsClosingMonth(current.Month) {
		t.Closing = true
		diff := t.WorkedHours.Sub(t.NormHours)
		if diff.IsPositive() {
			t.Overtime = diff
		} else {
			t.Deficit = diff.Neg()
		}
	}
	return t
}
