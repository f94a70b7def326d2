package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/valstrz/payroll-engine/internal/domain/employee"
	"github.com/valstrz/payroll-engine/internal/pkg/database"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	e.id, e.tenant_id, e.egn, e.first_name, e.middle_name, e.last_name, e.birth_date,
	e.children_count, e.iban, e.bic, e.active, e.created_at, e.updated_at`

const employmentColumns = `
	m.id, m.tenant_id, m.employee_id, m.contract_number, m.start_date, m.end_date, m.base_salary,
	m.insured_type, m.occupation_group, m.occupation_code, m.economic_activity_code,
	m.work_schedule_code, m.seniority_bonus_pct, m.disability_50_plus, m.is_current,
	m.created_at, m.updated_at`

func employeeDest(e *employee.Employee) []any {
	return []any{
		&e.ID, &e.TenantID, &e.EGN, &e.FirstName, &e.MiddleName, &e.LastName, &e.BirthDate,
		&e.ChildrenCount, &e.IBAN, &e.BIC, &e.Active, &e.CreatedAt, &e.UpdatedAt,
	}
}

func employmentDest(m *employee.Employment) []any {
	return []any{
		&m.ID, &m.TenantID, &m.EmployeeID, &m.ContractNumber, &m.StartDate, &m.EndDate, &m.BaseSalary,
		&m.InsuredType, &m.OccupationGroup, &m.OccupationCode, &m.EconomicActivityCode,
		&m.WorkScheduleCode, &m.SeniorityBonusPct, &m.Disability50Plus, &m.Current,
		&m.CreatedAt, &m.UpdatedAt,
	}
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, tenantID, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + `
		FROM employees e
		WHERE e.id = $1 AND e.tenant_id = $2
	`

	var found employee.Employee
	if err := q.QueryRow(ctx, query, id, tenantID).Scan(employeeDest(&found)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee %s: %w", id, err)
	}
	return found, nil
}

// ListStaff implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListStaff(ctx context.Context, tenantID string, year, month int) ([]employee.Staff, error) {
	q := GetQuerier(ctx, e.db)

	// The latest employment overlapping the month wins when a contract was
	// replaced mid-month.
	query := `SELECT DISTINCT ON (e.id) ` + employeeColumns + `, ` + employmentColumns + `
		FROM employees e
		JOIN employments m ON m.employee_id = e.id AND m.tenant_id = e.tenant_id
		WHERE e.tenant_id = $1
			AND e.active = TRUE
			AND m.start_date < make_date($2, $3, 1) + INTERVAL '1 month'
			AND (m.end_date IS NULL OR m.end_date >= make_date($2, $3, 1))
		ORDER BY e.id, m.start_date DESC
	`

	rows, err := q.Query(ctx, query, tenantID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	defer rows.Close()

	var staff []employee.Staff
	for rows.Next() {
		var s employee.Staff
		dest := append(employeeDest(&s.Employee), employmentDest(&s.Employment)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan staff: %w", err)
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}
