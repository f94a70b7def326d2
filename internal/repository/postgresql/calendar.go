package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/valstrz/payroll-engine/internal/domain/calendar"
	"github.com/valstrz/payroll-engine/internal/pkg/database"
)

type calendarRepositoryImpl struct {
	db *database.DB
}

func NewCalendarRepository(db *database.DB) calendar.CalendarRepository {
	return &calendarRepositoryImpl{db: db}
}

// holidayRow is the jsonb shape of one holiday.
type holidayRow struct {
	Date     string `json:"date"`
	Name     string `json:"name"`
	Official bool   `json:"official"`
}

// GetAnnual implements calendar.CalendarRepository.
func (c *calendarRepositoryImpl) GetAnnual(ctx context.Context, tenantID string, year int) (calendar.AnnualCalendar, error) {
	q := GetQuerier(ctx, c.db)

	query := `
		SELECT id, tenant_id, year, holidays
		FROM annual_calendars
		WHERE tenant_id = $1 AND year = $2
	`

	var (
		cal      calendar.AnnualCalendar
		holidays []byte
	)
	if err := q.QueryRow(ctx, query, tenantID, year).Scan(&cal.ID, &cal.TenantID, &cal.Year, &holidays); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return calendar.AnnualCalendar{}, calendar.ErrAnnualCalendarNotFound
		}
		return calendar.AnnualCalendar{}, fmt.Errorf("failed to get annual calendar %d: %w", year, err)
	}

	var rows []holidayRow
	if err := json.Unmarshal(holidays, &rows); err != nil {
		return calendar.AnnualCalendar{}, fmt.Errorf("failed to decode holidays of %d: %w", year, err)
	}
	for _, r := range rows {
		date, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			return calendar.AnnualCalendar{}, fmt.Errorf("invalid holiday date %q: %w", r.Date, err)
		}
		cal.Holidays = append(cal.Holidays, calendar.HolidayEntry{Date: date, Name: r.Name, Official: r.Official})
	}
	return cal, nil
}

const monthlyCalendarColumns = `
	id, tenant_id, year, month, calendar_days, working_days, working_hours, hours_per_day,
	holiday_count, weekend_days, advance_payment_date, salary_payment_date, created_at`

func monthlyCalendarDest(m *calendar.MonthlyCalendar) []any {
	return []any{
		&m.ID, &m.TenantID, &m.Year, &m.Month, &m.CalendarDays, &m.WorkingDays, &m.WorkingHours, &m.HoursPerDay,
		&m.HolidayCount, &m.WeekendDays, &m.AdvancePaymentDate, &m.SalaryPaymentDate, &m.CreatedAt,
	}
}

// GetMonthly implements calendar.CalendarRepository.
func (c *calendarRepositoryImpl) GetMonthly(ctx context.Context, tenantID string, year, month int) (calendar.MonthlyCalendar, error) {
	q := GetQuerier(ctx, c.db)

	query := `SELECT ` + monthlyCalendarColumns + `
		FROM monthly_calendars
		WHERE tenant_id = $1 AND year = $2 AND month = $3
	`

	var cal calendar.MonthlyCalendar
	if err := q.QueryRow(ctx, query, tenantID, year, month).Scan(monthlyCalendarDest(&cal)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return calendar.MonthlyCalendar{}, calendar.ErrMonthlyCalendarNotFound
		}
		return calendar.MonthlyCalendar{}, fmt.Errorf("failed to get monthly calendar %d-%02d: %w", year, month, err)
	}
	return cal, nil
}

// UpsertMonthly implements calendar.CalendarRepository.
func (c *calendarRepositoryImpl) UpsertMonthly(ctx context.Context, cal calendar.MonthlyCalendar) (calendar.MonthlyCalendar, error) {
	q := GetQuerier(ctx, c.db)

	query := `
		INSERT INTO monthly_calendars (
			tenant_id, year, month, calendar_days, working_days, working_hours, hours_per_day,
			holiday_count, weekend_days, advance_payment_date, salary_payment_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (tenant_id, year, month) DO UPDATE SET
			calendar_days = EXCLUDED.calendar_days,
			working_days = EXCLUDED.working_days,
			working_hours = EXCLUDED.working_hours,
			hours_per_day = EXCLUDED.hours_per_day,
			holiday_count = EXCLUDED.holiday_count,
			weekend_days = EXCLUDED.weekend_days,
			advance_payment_date = EXCLUDED.advance_payment_date,
			salary_payment_date = EXCLUDED.salary_payment_date
		RETURNING ` + monthlyCalendarColumns

	var saved calendar.MonthlyCalendar
	err := q.QueryRow(ctx, query,
		cal.TenantID, cal.Year, cal.Month, cal.CalendarDays, cal.WorkingDays, cal.WorkingHours, cal.HoursPerDay,
		cal.HolidayCount, cal.WeekendDays, cal.AdvancePaymentDate, cal.SalaryPaymentDate,
	).Scan(monthlyCalendarDest(&saved)...)
	if err != nil {
		return calendar.MonthlyCalendar{}, fmt.Errorf("failed to save monthly calendar %d-%02d: %w", cal.Year, cal.Month, err)
	}
	return saved, nil
}
