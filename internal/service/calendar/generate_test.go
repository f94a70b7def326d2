package calendar

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valstrz/payroll-engine/internal/domain/calendar"
	"github.com/valstrz/payroll-engine/internal/pkg/apperror"
)

func march2025() calendar.AnnualCalendar {
	return calendar.AnnualCalendar{
		TenantID: "tenant-1",
		Year:     2025,
		Holidays: []calendar.HolidayEntry{
			{Date: calendar.Date(2025, 3, 3), Name: "Liberation Day", Official: true},
			{Date: calendar.Date(2025, 3, 8), Name: "Saturday holiday", Official: false},
			{Date: calendar.Date(2025, 3, 25), Name: "Company day", Official: false},
		},
	}
}

func TestGenerate_March2025(t *testing.T) {
	// Act
	cal := Generate(march2025(), 2025, 3, 8)

	// Assert
	assert.Equal(t, 31, cal.CalendarDays)
	assert.Equal(t, 10, cal.WeekendDays)
	assert.Equal(t, 2, cal.HolidayCount)
	assert.Equal(t, 19, cal.WorkingDays)
	assert.Equal(t, 152, cal.WorkingHours)
	assert.Equal(t, calendar.Date(2025, 3, 10), cal.AdvancePaymentDate)
	// 25th is a holiday, 24th is a Monday.
	assert.Equal(t, calendar.Date(2025, 3, 24), cal.SalaryPaymentDate)
}

func TestGenerate_PaymentDateOnWeekendMovesBack(t *testing.T) {
	// 2025-05-25 is a Sunday, 2025-05-10 a Saturday.
	cal := Generate(calendar.AnnualCalendar{Year: 2025}, 2025, 5, 8)

	assert.Equal(t, calendar.Date(2025, 5, 23), cal.SalaryPaymentDate)
	assert.Equal(t, calendar.Date(2025, 5, 9), cal.AdvancePaymentDate)
}

func TestIsWorkingDay(t *testing.T) {
	annual := march2025()

	assert.False(t, IsWorkingDay(annual, calendar.Date(2025, 3, 3)))
	assert.False(t, IsWorkingDay(annual, calendar.Date(2025, 3, 2)))
	assert.True(t, IsWorkingDay(annual, calendar.Date(2025, 3, 4)))
}

type memCalendarRepo struct {
	annual  map[int]calendar.AnnualCalendar
	monthly map[int]calendar.MonthlyCalendar
	upserts int
}

func (m *memCalendarRepo) GetAnnual(ctx context.Context, tenantID string, year int) (calendar.AnnualCalendar, error) {
	a, ok := m.annual[year]
	if !ok {
		return calendar.AnnualCalendar{}, calendar.ErrAnnualCalendarNotFound
	}
	return a, nil
}

func (m *memCalendarRepo) GetMonthly(ctx context.Context, tenantID string, year, month int) (calendar.MonthlyCalendar, error) {
	c, ok := m.monthly[year*100+month]
	if !ok {
		return calendar.MonthlyCalendar{}, calendar.ErrMonthlyCalendarNotFound
	}
	return c, nil
}

func (m *memCalendarRepo) UpsertMonthly(ctx context.Context, cal calendar.MonthlyCalendar) (calendar.MonthlyCalendar, error) {
	m.upserts++
	cal.ID = "cal-1"
	m.monthly[cal.Year*100+cal.Month] = cal
	return cal, nil
}

func TestEnsureMonth_GeneratesOnce(t *testing.T) {
	// Setup
	repo := &memCalendarRepo{
		annual:  map[int]calendar.AnnualCalendar{2025: march2025()},
		monthly: map[int]calendar.MonthlyCalendar{},
	}
	svc := NewCalendarService(repo, 8)

	// Act
	first, err := svc.EnsureMonth(context.Background(), "tenant-1", 2025, 3)
	require.NoError(t, err)
	second, err := svc.EnsureMonth(context.Background(), "tenant-1", 2025, 3)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 1, repo.upserts)
	assert.Equal(t, first, second)
	assert.Equal(t, 19, second.WorkingDays)
}

func TestEnsureMonth_MissingAnnualCalendar(t *testing.T) {
	repo := &memCalendarRepo{annual: map[int]calendar.AnnualCalendar{}, monthly: map[int]calendar.MonthlyCalendar{}}
	svc := NewCalendarService(repo, 8)

	_, err := svc.EnsureMonth(context.Background(), "tenant-1", 2025, 3)

	assert.ErrorIs(t, err, apperror.ErrConfigurationMissing)
}
