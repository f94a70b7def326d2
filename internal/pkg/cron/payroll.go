package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/valstrz/payroll-engine/internal/domain/audit"
	"github.com/valstrz/payroll-engine/internal/domain/company"
	"github.com/valstrz/payroll-engine/internal/domain/payroll"
)

// MonthStarter opens the draft payroll of a month; it must be idempotent.
type MonthStarter interface {
	StartMonth(ctx context.Context, tenantID string, year, month int, actor string) (payroll.Payroll, error)
}

// PayrollJobs holds the periodic payroll jobs.
type PayrollJobs struct {
	companies company.CompanyRepository
	starter   MonthStarter
	now       func() time.Time
}

func NewPayrollJobs(companies company.CompanyRepository, starter MonthStarter) *PayrollJobs {
	return &PayrollJobs{
		companies: companies,
		starter:   starter,
		now:       time.Now,
	}
}

// RegisterJobs adds the payroll jobs to the scheduler.
func (j *PayrollJobs) RegisterJobs(s *Scheduler, interval time.Duration) {
	s.AddJob(Job{
		Name:     "open_next_month",
		Interval: interval,
		Timeout:  interval,
		Fn:       j.OpenNextMonth,
	})
}

// OpenNextMonth starts the current month's payroll for every active company.
// Outside the first day of the month it does nothing. A failing company is
// logged and skipped.
func (j *PayrollJobs) OpenNextMonth(ctx context.Context) error {
	today := j.now().UTC()
	if today.Day() != 1 {
		return nil
	}
	return j.openMonth(ctx, today.Year(), int(today.Month()))
}

func (j *PayrollJobs) openMonth(ctx context.Context, year, month int) error {
	companies, err := j.companies.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active companies: %w", err)
	}

	var errs []error
	opened := 0
	for _, c := range companies {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		p, err := j.starter.StartMonth(ctx, c.ID, year, month, audit.SystemActor)
		if err != nil {
			slog.Warn("failed to open payroll month", "tenant_id", c.ID, "year", year, "month", month, "error", err)
			errs = append(errs, fmt.Errorf("company %s: %w", c.ID, err))
			continue
		}
		opened++
		slog.Debug("payroll month open", "tenant_id", c.ID, "payroll_id", p.ID, "status", p.Status)
	}

	slog.Info("open_next_month finished", "year", year, "month", month, "companies", len(companies), "opened", opened)
	return errors.Join(errs...)
}
