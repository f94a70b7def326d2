package payroll

import (
	"context"

	"github.com/valstrz/payroll-engine/internal/domain/audit"
)

type PayrollService interface {
	StartMonth(ctx context.Context, tenantID string, year, month int, actor string) (Payroll, error)
	CalculateMonth(ctx context.Context, tenantID string, year, month int, actor string) (BatchResult, error)
	CalculateEmployee(ctx context.Context, tenantID, employeeID string, year, month int) (Calculation, error)
	Result(ctx context.Context, tenantID, employeeID string, year, month int) (Calculation, error)
	AuditTrail(ctx context.Context, tenantID string, year, month int) ([]audit.Entry, error)
}

type ClosingService interface {
	Close(ctx context.Context, tenantID string, year, month int, actor string) (MonthClosingSnapshot, error)
	Reopen(ctx context.Context, tenantID string, year, month int, actor, reason string) (Payroll, error)
	Snapshots(ctx context.Context, tenantID string, year, month int) ([]PayrollSnapshot, error)
	SnapshotHistory(ctx context.Context, tenantID, employeeID string, year, month int) ([]PayrollSnapshot, error)
	// Payslip renders the latest snapshot of an employee-month as PDF.
	Payslip(ctx context.Context, tenantID, employeeID string, year, month int) ([]byte, error)
}
