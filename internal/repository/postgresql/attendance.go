package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/valstrz/payroll-engine/internal/domain/attendance"
	"github.com/valstrz/payroll-engine/internal/pkg/database"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

// ListAbsences implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) ListAbsences(ctx context.Context, tenantID string, year, month int) ([]attendance.Absence, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, tenant_id, employee_id, code, from_date, to_date, status, order_number, created_at
		FROM absences
		WHERE tenant_id = $1
			AND from_date < make_date($2, $3, 1) + INTERVAL '1 month'
			AND to_date >= make_date($2, $3, 1)
		ORDER BY employee_id, from_date
	`

	rows, err := q.Query(ctx, query, tenantID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list absences: %w", err)
	}
	defer rows.Close()

	var list []attendance.Absence
	for rows.Next() {
		var ab attendance.Absence
		if err := rows.Scan(&ab.ID, &ab.TenantID, &ab.EmployeeID, &ab.Code, &ab.FromDate, &ab.ToDate, &ab.Status, &ab.OrderNumber, &ab.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan absence: %w", err)
		}
		list = append(list, ab)
	}
	return list, rows.Err()
}

// dayRow is the jsonb shape of one timesheet day.
type dayRow struct {
	Date          string          `json:"date"`
	Type          string          `json:"type"`
	Hours         decimal.Decimal `json:"hours"`
	NightHours    decimal.Decimal `json:"night_hours"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	OvertimeKind  string          `json:"overtime_kind,omitempty"`
	AbsenceCode   string          `json:"absence_code,omitempty"`
}

func decodeDays(data []byte) ([]attendance.DailyEntry, error) {
	var rows []dayRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	days := make([]attendance.DailyEntry, len(rows))
	for i, r := range rows {
		date, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid day %q: %w", r.Date, err)
		}
		days[i] = attendance.DailyEntry{
			Date:          date,
			Type:          attendance.DayType(r.Type),
			Hours:         r.Hours,
			NightHours:    r.NightHours,
			OvertimeHours: r.OvertimeHours,
			OvertimeKind:  attendance.OvertimeKind(r.OvertimeKind),
			AbsenceCode:   r.AbsenceCode,
		}
	}
	return days, nil
}

// ListTimesheets implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) ListTimesheets(ctx context.Context, tenantID string, year, month int) ([]attendance.MonthlyTimesheet, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, tenant_id, employee_id, year, month, days, updated_at
		FROM monthly_timesheets
		WHERE tenant_id = $1 AND year = $2 AND month = $3
	`

	rows, err := q.Query(ctx, query, tenantID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheets: %w", err)
	}
	defer rows.Close()

	var list []attendance.MonthlyTimesheet
	for rows.Next() {
		var (
			ts   attendance.MonthlyTimesheet
			days []byte
		)
		if err := rows.Scan(&ts.ID, &ts.TenantID, &ts.EmployeeID, &ts.Year, &ts.Month, &days, &ts.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan timesheet: %w", err)
		}
		if ts.Days, err = decodeDays(days); err != nil {
			return nil, fmt.Errorf("failed to decode timesheet of %s: %w", ts.EmployeeID, err)
		}
		list = append(list, ts)
	}
	return list, rows.Err()
}

// ListBalances implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) ListBalances(ctx context.Context, tenantID, employeeID string, year, fromMonth, toMonth int) ([]attendance.MonthBalance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT tenant_id, employee_id, year, month, norm_hours, scheduled_hours, worked_hours, updated_at
		FROM reference_balances
		WHERE tenant_id = $1 AND employee_id = $2 AND year = $3 AND month BETWEEN $4 AND $5
		ORDER BY month
	`

	rows, err := q.Query(ctx, query, tenantID, employeeID, year, fromMonth, toMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to list reference balances: %w", err)
	}
	defer rows.Close()

	var list []attendance.MonthBalance
	for rows.Next() {
		var b attendance.MonthBalance
		if err := rows.Scan(&b.TenantID, &b.EmployeeID, &b.Year, &b.Month, &b.NormHours, &b.ScheduledHours, &b.WorkedHours, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reference balance: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// UpsertBalance implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) UpsertBalance(ctx context.Context, b attendance.MonthBalance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO reference_balances (tenant_id, employee_id, year, month, norm_hours, scheduled_hours, worked_hours, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (tenant_id, employee_id, year, month) DO UPDATE SET
			norm_hours = EXCLUDED.norm_hours,
			scheduled_hours = EXCLUDED.scheduled_hours,
			worked_hours = EXCLUDED.worked_hours,
			updated_at = NOW()
	`

	if _, err := q.Exec(ctx, query, b.TenantID, b.EmployeeID, b.Year, b.Month, b.NormHours, b.ScheduledHours, b.WorkedHours); err != nil {
		return fmt.Errorf("failed to save reference balance %d-%02d of %s: %w", b.Year, b.Month, b.EmployeeID, err)
	}
	return nil
}
