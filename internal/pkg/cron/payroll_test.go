package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valstrz/payroll-engine/internal/domain/audit"
	"github.com/valstrz/payroll-engine/internal/domain/company"
	"github.com/valstrz/payroll-engine/internal/domain/payroll"
)

type stubCompanies struct {
	company.CompanyRepository
	active []company.Company
	err    error
}

func (s stubCompanies) ListActive(ctx context.Context) ([]company.Company, error) {
	return s.active, s.err
}

type call struct {
	tenant      string
	year, month int
	actor       string
}

type recordingStarter struct {
	mu    sync.Mutex
	calls []call
	fail  map[string]error
}

func (r *recordingStarter) StartMonth(ctx context.Context, tenantID string, year, month int, actor string) (payroll.Payroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{tenantID, year, month, actor})
	if err := r.fail[tenantID]; err != nil {
		return payroll.Payroll{}, err
	}
	return payroll.Payroll{ID: "p-" + tenantID, TenantID: tenantID, Year: year, Month: month, Status: payroll.PayrollStatusDraft}, nil
}

func fixedClock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time { return time.Date(year, month, day, 0, 30, 0, 0, time.UTC) }
}

func TestOpenNextMonth_FirstDayStartsEveryActiveCompany(t *testing.T) {
	starter := &recordingStarter{}
	jobs := NewPayrollJobs(stubCompanies{active: []company.Company{{ID: "a"}, {ID: "b"}}}, starter)
	jobs.now = fixedClock(2025, time.April, 1)

	require.NoError(t, jobs.OpenNextMonth(context.Background()))
	assert.Equal(t, []call{
		{"a", 2025, 4, audit.SystemActor},
		{"b", 2025, 4, audit.SystemActor},
	}, starter.calls)
}

func TestOpenNextMonth_OtherDaysDoNothing(t *testing.T) {
	starter := &recordingStarter{}
	jobs := NewPayrollJobs(stubCompanies{active: []company.Company{{ID: "a"}}}, starter)
	jobs.now = fixedClock(2025, time.April, 2)

	require.NoError(t, jobs.OpenNextMonth(context.Background()))
	assert.Empty(t, starter.calls)
}

func TestOpenNextMonth_FailureDoesNotStopOtherCompanies(t *testing.T) {
	missing := errors.New("annual calendar missing")
	starter := &recordingStarter{fail: map[string]error{"a": missing}}
	jobs := NewPayrollJobs(stubCompanies{active: []company.Company{{ID: "a"}, {ID: "b"}}}, starter)
	jobs.now = fixedClock(2025, time.January, 1)

	err := jobs.OpenNextMonth(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, missing)
	assert.Len(t, starter.calls, 2)
}

func TestOpenNextMonth_ListError(t *testing.T) {
	jobs := NewPayrollJobs(stubCompanies{err: errors.New("db down")}, &recordingStarter{})
	jobs.now = fixedClock(2025, time.January, 1)

	assert.ErrorContains(t, jobs.OpenNextMonth(context.Background()), "failed to list active companies")
}

func TestScheduler_RunOnceRegisteredJobs(t *testing.T) {
	starter := &recordingStarter{}
	jobs := NewPayrollJobs(stubCompanies{active: []company.Company{{ID: "a"}}}, starter)
	jobs.now = fixedClock(2025, time.June, 1)

	s := NewScheduler()
	jobs.RegisterJobs(s, time.Hour)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Len(t, starter.calls, 1)
}

func TestScheduler_RunOnceRecoversPanics(t *testing.T) {
	s := NewScheduler()
	s.AddJob(Job{Name: "boom", Interval: time.Minute, Fn: func(ctx context.Context) error { panic("boom") }})
	ran := false
	s.AddJob(Job{Name: "after", Interval: time.Minute, Fn: func(ctx context.Context) error { ran = true; return nil }})

	err := s.RunOnce(context.Background())
	assert.ErrorContains(t, err, "boom: panic: boom")
	assert.True(t, ran)
}

func TestScheduler_TimeoutCancelsJob(t *testing.T) {
	s := NewScheduler()
	s.AddJob(Job{Name: "slow", Interval: time.Minute, Timeout: 10 * time.Millisecond, Fn: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}})

	assert.ErrorIs(t, s.RunOnce(context.Background()), context.DeadlineExceeded)
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler()
	done := make(chan struct{}, 1)
	s.AddJob(Job{Name: "tick", Interval: time.Hour, Fn: func(ctx context.Context) error {
		select {
		case done <- struct{}{}:
		default:
		}
		return nil
	}})

	s.Start()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()
}
