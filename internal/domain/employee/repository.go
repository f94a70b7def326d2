package employee

import "context"

// EmployeeRepository defines data access methods for employees and their contracts.
// All methods include tenantID to prevent cross-tenant access.
type EmployeeRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (Employee, error)
	// ListStaff returns active employees with the employment that overlaps the month.
	// Employees without such employment are omitted.
	ListStaff(ctx context.Context, tenantID string, year, month int) ([]Staff, error)
}
