package calendar

import "context"

type CalendarRepository interface {
	GetAnnual(ctx context.Context, tenantID string, year int) (AnnualCalendar, error)
	GetMonthly(ctx context.Context, tenantID string, year, month int) (MonthlyCalendar, error)
	UpsertMonthly(ctx context.Context, cal MonthlyCalendar) (MonthlyCalendar, error)
}
