package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/valstrz/payroll-engine/internal/domain/schedule"
	"github.com/valstrz/payroll-engine/internal/pkg/database"
)

type scheduleRepositoryImpl struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) schedule.ScheduleRepository {
	return &scheduleRepositoryImpl{db: db}
}

// ========== Work schedules ==========

const workScheduleColumns = `id, tenant_id, code, name, kind, hours_per_day, shift_schedule_id, created_at, updated_at`

func workScheduleDest(w *schedule.WorkSchedule) []any {
	return []any{&w.ID, &w.TenantID, &w.Code, &w.Name, &w.Kind, &w.HoursPerDay, &w.ShiftScheduleID, &w.CreatedAt, &w.UpdatedAt}
}

// ListWorkSchedules implements schedule.ScheduleRepository.
func (s *scheduleRepositoryImpl) ListWorkSchedules(ctx context.Context, tenantID string) ([]schedule.WorkSchedule, error) {
	q := GetQuerier(ctx, s.db)

	query := `SELECT ` + workScheduleColumns + `
		FROM work_schedules
		WHERE tenant_id = $1
		ORDER BY code
	`

	rows, err := q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list work schedules: %w", err)
	}
	defer rows.Close()

	var list []schedule.WorkSchedule
	for rows.Next() {
		var ws schedule.WorkSchedule
		if err := rows.Scan(workScheduleDest(&ws)...); err != nil {
			return nil, fmt.Errorf("failed to scan work schedule: %w", err)
		}
		list = append(list, ws)
	}
	return list, rows.Err()
}

// ========== Shift schedules ==========

// shiftRow is the jsonb shape of one shift definition.
type shiftRow struct {
	Index      int             `json:"index"`
	Name       string          `json:"name"`
	StartTime  string          `json:"start_time"`
	EndTime    string          `json:"end_time"`
	TotalHours decimal.Decimal `json:"total_hours"`
	NightHours decimal.Decimal `json:"night_hours"`
}

func encodeShifts(shifts []schedule.ShiftDefinition) ([]byte, error) {
	rows := make([]shiftRow, len(shifts))
	for i, d := range shifts {
		rows[i] = shiftRow{Index: d.Index, Name: d.Name, StartTime: d.StartTime, EndTime: d.EndTime, TotalHours: d.TotalHours, NightHours: d.NightHours}
	}
	return json.Marshal(rows)
}

func decodeShifts(data []byte) ([]schedule.ShiftDefinition, error) {
	var rows []shiftRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	shifts := make([]schedule.ShiftDefinition, len(rows))
	for i, r := range rows {
		shifts[i] = schedule.ShiftDefinition{Index: r.Index, Name: r.Name, StartTime: r.StartTime, EndTime: r.EndTime, TotalHours: r.TotalHours, NightHours: r.NightHours}
	}
	return shifts, nil
}

const shiftScheduleColumns = `id, tenant_id, code, name, reference_months, shifts, rotation, rotation_start, active, created_at, updated_at`

func scanShiftSchedule(row pgx.Row) (schedule.ShiftSchedule, error) {
	var (
		ss       schedule.ShiftSchedule
		shifts   []byte
		rotation []int
	)
	if err := row.Scan(&ss.ID, &ss.TenantID, &ss.Code, &ss.Name, &ss.ReferenceMonths, &shifts, &rotation, &ss.RotationStart, &ss.Active, &ss.CreatedAt, &ss.UpdatedAt); err != nil {
		return schedule.ShiftSchedule{}, err
	}
	defs, err := decodeShifts(shifts)
	if err != nil {
		return schedule.ShiftSchedule{}, fmt.Errorf("failed to decode shifts of %s: %w", ss.Code, err)
	}
	ss.Shifts = defs
	ss.Rotation = schedule.ParseRotation(rotation)
	return ss, nil
}

// GetShiftSchedule implements schedule.ScheduleRepository.
func (s *scheduleRepositoryImpl) GetShiftSchedule(ctx context.Context, tenantID, id string) (schedule.ShiftSchedule, error) {
	q := GetQuerier(ctx, s.db)

	query := `SELECT ` + shiftScheduleColumns + `
		FROM shift_schedules
		WHERE tenant_id = $1 AND id = $2
	`

	ss, err := scanShiftSchedule(q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.ShiftSchedule{}, schedule.ErrShiftScheduleNotFound
		}
		return schedule.ShiftSchedule{}, fmt.Errorf("failed to get shift schedule %s: %w", id, err)
	}
	return ss, nil
}

// ListShiftSchedules implements schedule.ScheduleRepository.
func (s *scheduleRepositoryImpl) ListShiftSchedules(ctx context.Context, tenantID string) ([]schedule.ShiftSchedule, error) {
	q := GetQuerier(ctx, s.db)

	query := `SELECT ` + shiftScheduleColumns + `
		FROM shift_schedules
		WHERE tenant_id = $1
		ORDER BY code
	`

	rows, err := q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shift schedules: %w", err)
	}
	defer rows.Close()

	var list []schedule.ShiftSchedule
	for rows.Next() {
		ss, err := scanShiftSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift schedule: %w", err)
		}
		list = append(list, ss)
	}
	return list, rows.Err()
}

// CreateShiftSchedule implements schedule.ScheduleRepository.
func (s *scheduleRepositoryImpl) CreateShiftSchedule(ctx context.Context, ss schedule.ShiftSchedule) (schedule.ShiftSchedule, error) {
	q := GetQuerier(ctx, s.db)

	shifts, err := encodeShifts(ss.Shifts)
	if err != nil {
		return schedule.ShiftSchedule{}, fmt.Errorf("failed to encode shifts: %w", err)
	}

	query := `
		INSERT INTO shift_schedules (tenant_id, code, name, reference_months, shifts, rotation, rotation_start, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + shiftScheduleColumns

	created, err := scanShiftSchedule(q.QueryRow(ctx, query,
		ss.TenantID, ss.Code, ss.Name, ss.ReferenceMonths, shifts, schedule.EncodeRotation(ss.Rotation), ss.RotationStart, ss.Active,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return schedule.ShiftSchedule{}, schedule.ErrShiftScheduleExists
		}
		return schedule.ShiftSchedule{}, fmt.Errorf("failed to create shift schedule %s: %w", ss.Code, err)
	}
	return created, nil
}
