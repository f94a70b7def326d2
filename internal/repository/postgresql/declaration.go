package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/valstrz/payroll-engine/internal/domain/declaration"
	"github.com/valstrz/payroll-engine/internal/pkg/database"
)

type declarationRepositoryImpl struct {
	db *database.DB
}

func NewDeclarationRepository(db *database.DB) declaration.DeclarationRepository {
	return &declarationRepositoryImpl{db: db}
}

// ========== Submissions ==========

const submissionColumns = `
	id, tenant_id, year, month, type, correction_code, employee_ids, snapshot_ids,
	status, record_count, file_name, content, errors, created_by, created_at`

func scanSubmission(row pgx.Row) (declaration.NapSubmission, error) {
	var (
		s    declaration.NapSubmission
		errs []byte
		code int
	)
	err := row.Scan(
		&s.ID, &s.TenantID, &s.Year, &s.Month, &s.Type, &code, &s.EmployeeIDs, &s.SnapshotIDs,
		&s.Status, &s.RecordCount, &s.FileName, &s.Content, &errs, &s.CreatedBy, &s.CreatedAt,
	)
	if err != nil {
		return declaration.NapSubmission{}, err
	}
	s.CorrectionCode = declaration.CorrectionCode(code)
	if len(errs) > 0 {
		if err := json.Unmarshal(errs, &s.Errors); err != nil {
			return declaration.NapSubmission{}, fmt.Errorf("failed to decode submission errors: %w", err)
		}
	}
	return s, nil
}

// CreateSubmission implements declaration.DeclarationRepository.
func (d *declarationRepositoryImpl) CreateSubmission(ctx context.Context, s declaration.NapSubmission) (declaration.NapSubmission, error) {
	q := GetQuerier(ctx, d.db)

	errs, err := json.Marshal(s.Errors)
	if err != nil {
		return declaration.NapSubmission{}, fmt.Errorf("failed to encode submission errors: %w", err)
	}

	query := `
		INSERT INTO nap_submissions (
			id, tenant_id, year, month, type, correction_code, employee_ids, snapshot_ids,
			status, record_count, file_name, content, errors, created_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + submissionColumns

	created, err := scanSubmission(q.QueryRow(ctx, query,
		s.ID, s.TenantID, s.Year, s.Month, s.Type, int(s.CorrectionCode), s.EmployeeIDs, s.SnapshotIDs,
		s.Status, s.RecordCount, s.FileName, s.Content, errs, s.CreatedBy, s.CreatedAt,
	))
	if err != nil {
		return declaration.NapSubmission{}, fmt.Errorf("failed to create %s submission: %w", s.Type, err)
	}
	return created, nil
}

// ListSubmissions implements declaration.DeclarationRepository.
func (d *declarationRepositoryImpl) ListSubmissions(ctx context.Context, tenantID string, year, month int) ([]declaration.NapSubmission, error) {
	q := GetQuerier(ctx, d.db)

	query := `SELECT ` + submissionColumns + `
		FROM nap_submissions
		WHERE tenant_id = $1 AND year = $2 AND month = $3
		ORDER BY created_at DESC
	`

	rows, err := q.Query(ctx, query, tenantID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var list []declaration.NapSubmission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// ========== Accounting ==========

// ReplaceAccountingEntries implements declaration.DeclarationRepository.
func (d *declarationRepositoryImpl) ReplaceAccountingEntries(ctx context.Context, tenantID string, year, month int, entries []declaration.AccountingEntry) error {
	q := GetQuerier(ctx, d.db)

	if _, err := q.Exec(ctx, `DELETE FROM accounting_entries WHERE tenant_id = $1 AND year = $2 AND month = $3`, tenantID, year, month); err != nil {
		return fmt.Errorf("failed to clear accounting entries %d-%02d: %w", year, month, err)
	}

	query := `
		INSERT INTO accounting_entries (
			id, tenant_id, year, month, month_closing_id, type,
			debit_account, credit_account, amount, description, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for _, e := range entries {
		_, err := q.Exec(ctx, query,
			e.ID, tenantID, year, month, e.MonthClosingID, e.Type,
			e.DebitAccount, e.CreditAccount, e.Amount, e.Description, e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert %s accounting entry: %w", e.Type, err)
		}
	}
	return nil
}

// ListAccountingEntries implements declaration.DeclarationRepository.
func (d *declarationRepositoryImpl) ListAccountingEntries(ctx context.Context, tenantID string, year, month int) ([]declaration.AccountingEntry, error) {
	q := GetQuerier(ctx, d.db)

	query := `
		SELECT id, tenant_id, year, month, month_closing_id, type,
			debit_account, credit_account, amount, description, created_at
		FROM accounting_entries
		WHERE tenant_id = $1 AND year = $2 AND month = $3
		ORDER BY debit_account, credit_account
	`

	rows, err := q.Query(ctx, query, tenantID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounting entries: %w", err)
	}
	defer rows.Close()

	var list []declaration.AccountingEntry
	for rows.Next() {
		var e declaration.AccountingEntry
		if err := rows.Scan(
			&e.ID, &e.TenantID, &e.Year, &e.Month, &e.MonthClosingID, &e.Type,
			&e.DebitAccount, &e.CreditAccount, &e.Amount, &e.Description, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan accounting entry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// HasDownstream implements declaration.DeclarationRepository.
func (d *declarationRepositoryImpl) HasDownstream(ctx context.Context, tenantID string, year, month int) (bool, error) {
	q := GetQuerier(ctx, d.db)

	query := `
		SELECT EXISTS(SELECT 1 FROM nap_submissions WHERE tenant_id = $1 AND year = $2 AND month = $3)
			OR EXISTS(SELECT 1 FROM accounting_entries WHERE tenant_id = $1 AND year = $2 AND month = $3)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, tenantID, year, month).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check downstream records %d-%02d: %w", year, month, err)
	}
	return exists, nil
}
