package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/valstrz/payroll-engine/internal/domain/payroll"
	"github.com/valstrz/payroll-engine/internal/pkg/database"
)

// snapshotRepositoryImpl only ever inserts. Corrections are new versions.
type snapshotRepositoryImpl struct {
	db *database.DB
}

func NewSnapshotRepository(db *database.DB) payroll.SnapshotRepository {
	return &snapshotRepositoryImpl{db: db}
}

const snapshotColumns = `
	id, tenant_id, payroll_id, employee_id, year, month, version, status,
	gross_salary, insurable_income, insurance_base, tax_base, income_tax,
	total_employee_insurance, total_employer_insurance, total_deductions, net_salary, total_employer_cost,
	lines, deductions, employee_data, legislation_params, timesheet_data,
	calculated_at, created_by, created_at`

func scanSnapshot(row pgx.Row) (payroll.PayrollSnapshot, error) {
	var (
		s                                    payroll.PayrollSnapshot
		lines, deductions, emp, params, sheet []byte
	)
	err := row.Scan(
		&s.ID, &s.TenantID, &s.PayrollID, &s.EmployeeID, &s.Year, &s.Month, &s.Version, &s.Status,
		&s.GrossSalary, &s.InsurableIncome, &s.InsuranceBase, &s.TaxBase, &s.IncomeTax,
		&s.TotalEmployeeInsurance, &s.TotalEmployerInsurance, &s.TotalDeductions, &s.NetSalary, &s.TotalEmployerCost,
		&lines, &deductions, &emp, &params, &sheet,
		&s.CalculatedAt, &s.CreatedBy, &s.CreatedAt,
	)
	if err != nil {
		return payroll.PayrollSnapshot{}, err
	}
	err = unmarshalDocuments(
		[][]byte{lines, deductions, emp, params, sheet},
		[]any{&s.Lines, &s.Deductions, &s.EmployeeData, &s.LegislationParams, &s.TimesheetData},
	)
	if err != nil {
		return payroll.PayrollSnapshot{}, fmt.Errorf("failed to decode snapshot %s: %w", s.ID, err)
	}
	return s, nil
}

func (r *snapshotRepositoryImpl) list(ctx context.Context, query string, args ...any) ([]payroll.PayrollSnapshot, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []payroll.PayrollSnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// NextVersion implements payroll.SnapshotRepository.
func (r *snapshotRepositoryImpl) NextVersion(ctx context.Context, tenantID, employeeID string, year, month int) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(MAX(version), 0) + 1
		FROM payroll_snapshots
		WHERE tenant_id = $1 AND employee_id = $2 AND year = $3 AND month = $4
	`

	var next int
	if err := q.QueryRow(ctx, query, tenantID, employeeID, year, month).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to get next snapshot version of %s: %w", employeeID, err)
	}
	return next, nil
}

// Insert implements payroll.SnapshotRepository.
func (r *snapshotRepositoryImpl) Insert(ctx context.Context, s payroll.PayrollSnapshot) error {
	q := GetQuerier(ctx, r.db)

	docs, err := marshalDocuments(s.Lines, s.Deductions, s.EmployeeData, s.LegislationParams, s.TimesheetData)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot of %s: %w", s.EmployeeID, err)
	}

	query := `
		INSERT INTO payroll_snapshots (` + snapshotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
	`

	_, err = q.Exec(ctx, query,
		s.ID, s.TenantID, s.PayrollID, s.EmployeeID, s.Year, s.Month, s.Version, s.Status,
		s.GrossSalary, s.InsurableIncome, s.InsuranceBase, s.TaxBase, s.IncomeTax,
		s.TotalEmployeeInsurance, s.TotalEmployerInsurance, s.TotalDeductions, s.NetSalary, s.TotalEmployerCost,
		docs[0], docs[1], docs[2], docs[3], docs[4],
		s.CalculatedAt, s.CreatedBy, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot v%d of %s: %w", s.Version, s.EmployeeID, err)
	}
	return nil
}

// InsertMonthClosing implements payroll.SnapshotRepository.
func (r *snapshotRepositoryImpl) InsertMonthClosing(ctx context.Context, m payroll.MonthClosingSnapshot) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO month_closing_snapshots (
			id, tenant_id, payroll_id, year, month, revision, employee_count,
			total_gross, total_net, total_employer_cost, total_income_tax,
			total_employee_insurance, total_employer_insurance, total_deductions,
			snapshot_ids, closed_by, closed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := q.Exec(ctx, query,
		m.ID, m.TenantID, m.PayrollID, m.Year, m.Month, m.Revision, m.EmployeeCount,
		m.TotalGross, m.TotalNet, m.TotalEmployerCost, m.TotalIncomeTax,
		m.TotalEmployeeInsurance, m.TotalEmployerInsurance, m.TotalDeductions,
		m.SnapshotIDs, m.ClosedBy, m.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert month closing %d-%02d: %w", m.Year, m.Month, err)
	}
	return nil
}

// ListLatest implements payroll.SnapshotRepository.
func (r *snapshotRepositoryImpl) ListLatest(ctx context.Context, tenantID string, year, month int) ([]payroll.PayrollSnapshot, error) {
	query := `SELECT DISTINCT ON (employee_id) ` + snapshotColumns + `
		FROM payroll_snapshots
		WHERE tenant_id = $1 AND year = $2 AND month = $3
		ORDER BY employee_id, version DESC
	`

	list, err := r.list(ctx, query, tenantID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots %d-%02d: %w", year, month, err)
	}
	return list, nil
}

// GetLatest implements payroll.SnapshotRepository.
func (r *snapshotRepositoryImpl) GetLatest(ctx context.Context, tenantID, employeeID string, year, month int) (payroll.PayrollSnapshot, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + snapshotColumns + `
		FROM payroll_snapshots
		WHERE tenant_id = $1 AND employee_id = $2 AND year = $3 AND month = $4
		ORDER BY version DESC
		LIMIT 1
	`

	s, err := scanSnapshot(q.QueryRow(ctx, query, tenantID, employeeID, year, month))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollSnapshot{}, payroll.ErrSnapshotNotFound
		}
		return payroll.PayrollSnapshot{}, fmt.Errorf("failed to get snapshot of %s: %w", employeeID, err)
	}
	return s, nil
}

// History implements payroll.SnapshotRepository.
func (r *snapshotRepositoryImpl) History(ctx context.Context, tenantID, employeeID string, year, month int) ([]payroll.PayrollSnapshot, error) {
	query := `SELECT ` + snapshotColumns + `
		FROM payroll_snapshots
		WHERE tenant_id = $1 AND employee_id = $2 AND year = $3 AND month = $4
		ORDER BY version
	`

	list, err := r.list(ctx, query, tenantID, employeeID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot history of %s: %w", employeeID, err)
	}
	return list, nil
}

// ListByIDs implements payroll.SnapshotRepository.
func (r *snapshotRepositoryImpl) ListByIDs(ctx context.Context, tenantID string, ids []string) ([]payroll.PayrollSnapshot, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + snapshotColumns + `
		FROM payroll_snapshots
		WHERE tenant_id = $1 AND id = ANY($2)
		ORDER BY employee_id
	`

	list, err := r.list(ctx, query, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots by id: %w", err)
	}
	return list, nil
}

// LatestMonthClosing implements payroll.SnapshotRepository.
func (r *snapshotRepositoryImpl) LatestMonthClosing(ctx context.Context, tenantID string, year, month int) (payroll.MonthClosingSnapshot, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, tenant_id, payroll_id, year, month, revision, employee_count,
			total_gross, total_net, total_employer_cost, total_income_tax,
			total_employee_insurance, total_employer_insurance, total_deductions,
			snapshot_ids, closed_by, closed_at
		FROM month_closing_snapshots
		WHERE tenant_id = $1 AND year = $2 AND month = $3
		ORDER BY revision DESC, closed_at DESC
		LIMIT 1
	`

	var m payroll.MonthClosingSnapshot
	err := q.QueryRow(ctx, query, tenantID, year, month).Scan(
		&m.ID, &m.TenantID, &m.PayrollID, &m.Year, &m.Month, &m.Revision, &m.EmployeeCount,
		&m.TotalGross, &m.TotalNet, &m.TotalEmployerCost, &m.TotalIncomeTax,
		&m.TotalEmployeeInsurance, &m.TotalEmployerInsurance, &m.TotalDeductions,
		&m.SnapshotIDs, &m.ClosedBy, &m.ClosedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.MonthClosingSnapshot{}, payroll.ErrSnapshotNotFound
		}
		return payroll.MonthClosingSnapshot{}, fmt.Errorf("failed to get month closing %d-%02d: %w", year, month, err)
	}
	return m, nil
}
