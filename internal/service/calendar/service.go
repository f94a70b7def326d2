package calendar

import (
	"context"
	"errors"
	"log/slog"

	"github.com/valstrz/payroll-engine/internal/domain/calendar"
	"github.com/valstrz/payroll-engine/internal/pkg/apperror"
)

type CalendarServiceImpl struct {
	repo        calendar.CalendarRepository
	hoursPerDay int
}

func NewCalendarService(repo calendar.CalendarRepository, hoursPerDay int) *CalendarServiceImpl {
	if hoursPerDay <= 0 {
		hoursPerDay = 8
	}
	return &CalendarServiceImpl{repo: repo, hoursPerDay: hoursPerDay}
}

// Annual returns the tenant's holiday list for year.
func (s *CalendarServiceImpl) Annual(ctx context.Context, tenantID string, year int) (calendar.AnnualCalendar, error) {
	annual, err := s.repo.GetAnnual(ctx, tenantID, year)
	if err != nil {
		if errors.Is(err, calendar.ErrAnnualCalendarNotFound) {
			return calendar.AnnualCalendar{}, apperror.ConfigurationMissing("annual calendar for %d", year).Wrap(err)
		}
		return calendar.AnnualCalendar{}, err
	}
	return annual, nil
}

// EnsureMonth loads the stored monthly calendar, generating and storing it on
// first use.
func (s *CalendarServiceImpl) EnsureMonth(ctx context.Context, tenantID string, year, month int) (calendar.MonthlyCalendar, error) {
	if month < 1 || month > 12 {
		return calendar.MonthlyCalendar{}, apperror.InvalidInput("month", "must be between 1 and 12")
	}

	cal, err := s.repo.GetMonthly(ctx, tenantID, year, month)
	if err == nil {
		return cal, nil
	}
	if !errors.Is(err, calendar.ErrMonthlyCalendarNotFound) {
		return calendar.MonthlyCalendar{}, err
	}

	annual, err := s.Annual(ctx, tenantID, year)
	if err != nil {
		return calendar.MonthlyCalendar{}, err
	}

	cal = Generate(annual, year, month, s.hoursPerDay)
	cal, err = s.repo.UpsertMonthly(ctx, cal)
	if err != nil {
		return calendar.MonthlyCalendar{}, err
	}

	slog.Info("monthly calendar generated",
		"tenant_id", tenantID,
		"year", year,
		"month", month,
		"working_days", cal.WorkingDays,
		"holidays", cal.HolidayCount,
	)
	return cal, nil
}
