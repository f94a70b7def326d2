package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/valstrz/payroll-engine/internal/domain/payroll"
	"github.com/valstrz/payroll-engine/internal/pkg/apperror"
	"github.com/valstrz/payroll-engine/internal/pkg/database"
)

// ========== Payroll ==========

type payrollRepositoryImpl struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepositoryImpl{db: db}
}

const payrollColumns = `
	id, tenant_id, year, month, revision, status, previous_id, calculated_at,
	closed_at, closed_by, reopened_at, reopened_by, reopen_reason, created_at, updated_at`

func payrollDest(p *payroll.Payroll) []any {
	return []any{
		&p.ID, &p.TenantID, &p.Year, &p.Month, &p.Revision, &p.Status, &p.PreviousID, &p.CalculatedAt,
		&p.ClosedAt, &p.ClosedBy, &p.ReopenedAt, &p.ReopenedBy, &p.ReopenReason, &p.CreatedAt, &p.UpdatedAt,
	}
}

// Create implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) Create(ctx context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payrolls (id, tenant_id, year, month, revision, status, previous_id)
		VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7)
		RETURNING ` + payrollColumns

	var created payroll.Payroll
	err := q.QueryRow(ctx, query, p.ID, p.TenantID, p.Year, p.Month, p.Revision, p.Status, p.PreviousID).Scan(payrollDest(&created)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return payroll.Payroll{}, payroll.ErrPayrollAlreadyExists
		}
		return payroll.Payroll{}, fmt.Errorf("failed to create payroll %d-%02d: %w", p.Year, p.Month, err)
	}
	return created, nil
}

// GetByPeriod implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) GetByPeriod(ctx context.Context, tenantID string, year, month int) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollColumns + `
		FROM payrolls
		WHERE tenant_id = $1 AND year = $2 AND month = $3
		ORDER BY revision DESC
		LIMIT 1
	`

	var p payroll.Payroll
	if err := q.QueryRow(ctx, query, tenantID, year, month).Scan(payrollDest(&p)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payroll{}, payroll.ErrPayrollNotFound
		}
		return payroll.Payroll{}, fmt.Errorf("failed to get payroll %d-%02d: %w", year, month, err)
	}
	return p, nil
}

// LockForUpdate implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) LockForUpdate(ctx context.Context, tenantID, id string) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollColumns + `
		FROM payrolls
		WHERE id = $1 AND tenant_id = $2
		FOR UPDATE
	`

	var p payroll.Payroll
	if err := q.QueryRow(ctx, query, id, tenantID).Scan(payrollDest(&p)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payroll{}, payroll.ErrPayrollNotFound
		}
		return payroll.Payroll{}, fmt.Errorf("failed to lock payroll %s: %w", id, err)
	}
	return p, nil
}

// UpdateStatus implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) UpdateStatus(ctx context.Context, p payroll.Payroll) error {
	q := GetQuerier(ctx, r.db)

	// A closed row only moves on through reopen.
	query := `
		UPDATE payrolls
		SET status = $1, calculated_at = $2, closed_at = $3, closed_by = $4,
			reopened_at = $5, reopened_by = $6, reopen_reason = $7, updated_at = NOW()
		WHERE id = $8 AND tenant_id = $9 AND (status <> 'closed' OR $10)
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query,
		p.Status, p.CalculatedAt, p.ClosedAt, p.ClosedBy,
		p.ReopenedAt, p.ReopenedBy, p.ReopenReason, p.ID, p.TenantID,
		p.Status == payroll.PayrollStatusReopened,
	).Scan(&updatedID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to update payroll %s: %w", p.ID, err)
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM payrolls WHERE id = $1 AND tenant_id = $2)`, p.ID, p.TenantID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check payroll %s: %w", p.ID, err)
	}
	if !exists {
		return payroll.ErrPayrollNotFound
	}
	return apperror.ClosedPeriod("payroll %02d/%d is closed", p.Month, p.Year)
}

const resultColumns = `
	tenant_id, payroll_id, employee_id, year, month, lines, deductions,
	gross_salary, insurable_income, insurance_base, tax_base, income_tax,
	total_employee_insurance, total_employer_insurance, total_deductions, net_salary, total_employer_cost,
	employee_data, legislation_params, timesheet_data, calculated_at`

// UpsertResult implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) UpsertResult(ctx context.Context, c payroll.Calculation) error {
	q := GetQuerier(ctx, r.db)

	docs, err := marshalDocuments(c.Lines, c.Deductions, c.EmployeeData, c.LegislationParams, c.TimesheetData)
	if err != nil {
		return fmt.Errorf("failed to encode result of %s: %w", c.EmployeeID, err)
	}

	query := `
		INSERT INTO payroll_results (` + resultColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (payroll_id, employee_id) DO UPDATE SET
			lines = EXCLUDED.lines,
			deductions = EXCLUDED.deductions,
			gross_salary = EXCLUDED.gross_salary,
			insurable_income = EXCLUDED.insurable_income,
			insurance_base = EXCLUDED.insurance_base,
			tax_base = EXCLUDED.tax_base,
			income_tax = EXCLUDED.income_tax,
			total_employee_insurance = EXCLUDED.total_employee_insurance,
			total_employer_insurance = EXCLUDED.total_employer_insurance,
			total_deductions = EXCLUDED.total_deductions,
			net_salary = EXCLUDED.net_salary,
			total_employer_cost = EXCLUDED.total_employer_cost,
			employee_data = EXCLUDED.employee_data,
			legislation_params = EXCLUDED.legislation_params,
			timesheet_data = EXCLUDED.timesheet_data,
			calculated_at = EXCLUDED.calculated_at
	`

	_, err = q.Exec(ctx, query,
		c.TenantID, c.PayrollID, c.EmployeeID, c.Year, c.Month, docs[0], docs[1],
		c.GrossSalary, c.InsurableIncome, c.InsuranceBase, c.TaxBase, c.IncomeTax,
		c.TotalEmployeeInsurance, c.TotalEmployerInsurance, c.TotalDeductions, c.NetSalary, c.TotalEmployerCost,
		docs[2], docs[3], docs[4], c.CalculatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save result of %s: %w", c.EmployeeID, err)
	}
	return nil
}

func scanResult(row pgx.Row) (payroll.Calculation, error) {
	var (
		c                                    payroll.Calculation
		lines, deductions, emp, params, sheet []byte
	)
	err := row.Scan(
		&c.TenantID, &c.PayrollID, &c.EmployeeID, &c.Year, &c.Month, &lines, &deductions,
		&c.GrossSalary, &c.InsurableIncome, &c.InsuranceBase, &c.TaxBase, &c.IncomeTax,
		&c.TotalEmployeeInsurance, &c.TotalEmployerInsurance, &c.TotalDeductions, &c.NetSalary, &c.TotalEmployerCost,
		&emp, &params, &sheet, &c.CalculatedAt,
	)
	if err != nil {
		return payroll.Calculation{}, err
	}
	err = unmarshalDocuments(
		[][]byte{lines, deductions, emp, params, sheet},
		[]any{&c.Lines, &c.Deductions, &c.EmployeeData, &c.LegislationParams, &c.TimesheetData},
	)
	if err != nil {
		return payroll.Calculation{}, fmt.Errorf("failed to decode result of %s: %w", c.EmployeeID, err)
	}
	return c, nil
}

// GetResult implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) GetResult(ctx context.Context, tenantID, payrollID, employeeID string) (payroll.Calculation, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + resultColumns + `
		FROM payroll_results
		WHERE tenant_id = $1 AND payroll_id = $2 AND employee_id = $3
	`

	c, err := scanResult(q.QueryRow(ctx, query, tenantID, payrollID, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Calculation{}, payroll.ErrResultNotFound
		}
		return payroll.Calculation{}, fmt.Errorf("failed to get result of %s: %w", employeeID, err)
	}
	return c, nil
}

// ListResults implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) ListResults(ctx context.Context, tenantID, payrollID string) ([]payroll.Calculation, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + resultColumns + `
		FROM payroll_results
		WHERE tenant_id = $1 AND payroll_id = $2
		ORDER BY employee_id
	`

	rows, err := q.Query(ctx, query, tenantID, payrollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var list []payroll.Calculation
	for rows.Next() {
		c, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// ========== Items ==========

type itemRepositoryImpl struct {
	db *database.DB
}

func NewItemRepository(db *database.DB) payroll.ItemRepository {
	return &itemRepositoryImpl{db: db}
}

// ListPayItems implements payroll.ItemRepository.
func (r *itemRepositoryImpl) ListPayItems(ctx context.Context, tenantID string, year, month int) ([]payroll.EmployeePayItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT i.id, i.tenant_id, i.employee_id, i.code, c.name, i.amount, i.from_period, i.to_period,
			c.insurable, c.taxable, c.social_expense
		FROM employee_pay_items i
		JOIN pay_items c ON c.tenant_id = i.tenant_id AND c.code = i.code
		WHERE i.tenant_id = $1 AND i.from_period <= $2 AND (i.to_period = 0 OR i.to_period >= $2)
		ORDER BY i.employee_id, i.code
	`

	rows, err := q.Query(ctx, query, tenantID, payroll.Period(year, month))
	if err != nil {
		return nil, fmt.Errorf("failed to list pay items: %w", err)
	}
	defer rows.Close()

	var list []payroll.EmployeePayItem
	for rows.Next() {
		var i payroll.EmployeePayItem
		if err := rows.Scan(&i.ID, &i.TenantID, &i.EmployeeID, &i.Code, &i.Name, &i.Amount, &i.FromPeriod, &i.ToPeriod, &i.Insurable, &i.Taxable, &i.SocialExpense); err != nil {
			return nil, fmt.Errorf("failed to scan pay item: %w", err)
		}
		list = append(list, i)
	}
	return list, rows.Err()
}

// ListDeductions implements payroll.ItemRepository.
func (r *itemRepositoryImpl) ListDeductions(ctx context.Context, tenantID string, year, month int) ([]payroll.EmployeeDeduction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT d.id, d.tenant_id, d.employee_id, d.code, c.name, c.kind, d.amount, d.priority, d.from_period, d.to_period,
			COALESCE(d.carried_from::text, '')
		FROM employee_deductions d
		JOIN deduction_items c ON c.tenant_id = d.tenant_id AND c.code = d.code
		WHERE d.tenant_id = $1 AND d.from_period <= $2 AND (d.to_period = 0 OR d.to_period >= $2)
		ORDER BY d.employee_id, d.priority, d.from_period
	`

	rows, err := q.Query(ctx, query, tenantID, payroll.Period(year, month))
	if err != nil {
		return nil, fmt.Errorf("failed to list deductions: %w", err)
	}
	defer rows.Close()

	var list []payroll.EmployeeDeduction
	for rows.Next() {
		var d payroll.EmployeeDeduction
		if err := rows.Scan(&d.ID, &d.TenantID, &d.EmployeeID, &d.Code, &d.Name, &d.Kind, &d.Amount, &d.Priority, &d.FromPeriod, &d.ToPeriod, &d.CarriedFrom); err != nil {
			return nil, fmt.Errorf("failed to scan deduction: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// ListActiveGarnishments implements payroll.ItemRepository.
func (r *itemRepositoryImpl) ListActiveGarnishments(ctx context.Context, tenantID string) ([]payroll.Garnishment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, tenant_id, employee_id, type, description, priority, has_children,
			total_amount, paid_amount, monthly_amount, active, updated_at
		FROM garnishments
		WHERE tenant_id = $1 AND active = TRUE
		ORDER BY employee_id, priority
	`

	rows, err := q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list garnishments: %w", err)
	}
	defer rows.Close()

	var list []payroll.Garnishment
	for rows.Next() {
		var g payroll.Garnishment
		if err := rows.Scan(
			&g.ID, &g.TenantID, &g.EmployeeID, &g.Type, &g.Description, &g.Priority, &g.HasChildren,
			&g.TotalAmount, &g.PaidAmount, &g.MonthlyAmount, &g.Active, &g.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan garnishment: %w", err)
		}
		list = append(list, g)
	}
	return list, rows.Err()
}

// ApplyGarnishment implements payroll.ItemRepository.
func (r *itemRepositoryImpl) ApplyGarnishment(ctx context.Context, tenantID, garnishmentID string, delta decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	// A zero total marks an open-ended garnishment that never completes.
	query := `
		UPDATE garnishments
		SET paid_amount = paid_amount + $1,
			active = NOT (total_amount > 0 AND paid_amount + $1 >= total_amount),
			updated_at = NOW()
		WHERE id = $2 AND tenant_id = $3
		RETURNING id
	`

	var updatedID string
	if err := q.QueryRow(ctx, query, delta, garnishmentID, tenantID).Scan(&updatedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.ErrGarnishmentNotFound
		}
		return fmt.Errorf("failed to apply garnishment %s: %w", garnishmentID, err)
	}
	return nil
}

// CarryForwardDeduction implements payroll.ItemRepository.
func (r *itemRepositoryImpl) CarryForwardDeduction(ctx context.Context, d payroll.EmployeeDeduction) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employee_deductions (tenant_id, employee_id, code, amount, priority, from_period, to_period, carried_from)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if _, err := q.Exec(ctx, query, d.TenantID, d.EmployeeID, d.Code, d.Amount, d.Priority, d.FromPeriod, d.ToPeriod, d.CarriedFrom); err != nil {
		return fmt.Errorf("failed to carry forward deduction %s of employee %s: %w", d.Code, d.EmployeeID, err)
	}
	return nil
}

// DeleteCarriedDeductions implements payroll.ItemRepository.
func (r *itemRepositoryImpl) DeleteCarriedDeductions(ctx context.Context, tenantID, payrollID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM employee_deductions WHERE tenant_id = $1 AND carried_from = $2`, tenantID, payrollID); err != nil {
		return fmt.Errorf("failed to delete deductions carried from payroll %s: %w", payrollID, err)
	}
	return nil
}

// marshalDocuments encodes the jsonb columns of a result or snapshot in order.
func marshalDocuments(values ...any) ([][]byte, error) {
	docs := make([][]byte, len(values))
	for i, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		docs[i] = b
	}
	return docs, nil
}

func unmarshalDocuments(docs [][]byte, targets []any) error {
	for i, doc := range docs {
		if len(doc) == 0 {
			continue
		}
		if err := json.Unmarshal(doc, targets[i]); err != nil {
			return err
		}
	}
	return nil
}
