package payroll

import (
	"context"

	"github.com/shopspring/decimal"
)

// PayrollRepository defines data access for working payroll records and their results.
// All methods take tenantID so a caller can never read another tenant's rows.
type PayrollRepository interface {
	Create(ctx context.Context, p Payroll) (Payroll, error)
	// GetByPeriod returns the highest revision for the month.
	GetByPeriod(ctx context.Context, tenantID string, year, month int) (Payroll, error)
	// LockForUpdate re-reads a payroll and holds its row lock until the
	// surrounding transaction ends.
	LockForUpdate(ctx context.Context, tenantID, id string) (Payroll, error)
	// UpdateStatus never overwrites a closed payroll except to reopen it;
	// that case returns ErrPayrollClosed.
	UpdateStatus(ctx context.Context, p Payroll) error

	UpsertResult(ctx context.Context, calc Calculation) error
	GetResult(ctx context.Context, tenantID, payrollID, employeeID string) (Calculation, error)
	ListResults(ctx context.Context, tenantID, payrollID string) ([]Calculation, error)
}

// ItemRepository reads employee-specific pay items, deductions and garnishments.
type ItemRepository interface {
	ListPayItems(ctx context.Context, tenantID string, year, month int) ([]EmployeePayItem, error)
	ListDeductions(ctx context.Context, tenantID string, year, month int) ([]EmployeeDeduction, error)
	ListActiveGarnishments(ctx context.Context, tenantID string) ([]Garnishment, error)
	// ApplyGarnishment adds delta (negative to reverse) to PaidAmount and
	// deactivates the garnishment once the total is reached.
	ApplyGarnishment(ctx context.Context, tenantID, garnishmentID string, delta decimal.Decimal) error
	// CarryForwardDeduction stores the deferred part of a deduction as a new
	// one-period deduction.
	CarryForwardDeduction(ctx context.Context, d EmployeeDeduction) error
	// DeleteCarriedDeductions removes everything carried forward by a payroll.
	DeleteCarriedDeductions(ctx context.Context, tenantID, payrollID string) error
}

// SnapshotRepository is insert-only. There is no update or delete.
type SnapshotRepository interface {
	NextVersion(ctx context.Context, tenantID, employeeID string, year, month int) (int, error)
	Insert(ctx context.Context, s PayrollSnapshot) error
	InsertMonthClosing(ctx context.Context, m MonthClosingSnapshot) error

	ListLatest(ctx context.Context, tenantID string, year, month int) ([]PayrollSnapshot, error)
	GetLatest(ctx context.Context, tenantID, employeeID string, year, month int) (PayrollSnapshot, error)
	History(ctx context.Context, tenantID, employeeID string, year, month int) ([]PayrollSnapshot, error)
	ListByIDs(ctx context.Context, tenantID string, ids []string) ([]PayrollSnapshot, error)
	LatestMonthClosing(ctx context.Context, tenantID string, year, month int) (MonthClosingSnapshot, error)
}
