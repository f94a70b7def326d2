package attendance

import "context"

// AttendanceRepository reads absences and timesheets and stores reference-period
// balances. All methods are scoped by tenantID.
type AttendanceRepository interface {
	ListAbsences(ctx context.Context, tenantID string, year, month int) ([]Absence, error)
	ListTimesheets(ctx context.Context, tenantID string, year, month int) ([]MonthlyTimesheet, error)
	ListBalances(ctx context.Context, tenantID, employeeID string, year, fromMonth, toMonth int) ([]MonthBalance, error)
	UpsertBalance(ctx context.Context, balance MonthBalance) error
}
