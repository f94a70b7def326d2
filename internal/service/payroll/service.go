package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/valstrz/payroll-engine/internal/domain/attendance"
	"github.com/valstrz/payroll-engine/internal/domain/audit"
	"github.com/valstrz/payroll-engine/internal/domain/calendar"
	"github.com/valstrz/payroll-engine/internal/domain/employee"
	"github.com/valstrz/payroll-engine/internal/domain/payroll"
	"github.com/valstrz/payroll-engine/internal/domain/schedule"
	"github.com/valstrz/payroll-engine/internal/pkg/apperror"
	"github.com/valstrz/payroll-engine/internal/pkg/database"
	attendancesvc "github.com/valstrz/payroll-engine/internal/service/attendance"
	auditsvc "github.com/valstrz/payroll-engine/internal/service/audit"
	"github.com/valstrz/payroll-engine/internal/service/rules"
	"golang.org/x/sync/errgroup"
)

// ConfigLoader returns the statutory configuration of a tenant-year.
type ConfigLoader interface {
	Load(ctx context.Context, tenantID string, year int) (*rules.ConfigSet, error)
}

// CalendarProvider returns the month's calendar, generating it on first use.
type CalendarProvider interface {
	EnsureMonth(ctx context.Context, tenantID string, year, month int) (calendar.MonthlyCalendar, error)
	Annual(ctx context.Context, tenantID string, year int) (calendar.AnnualCalendar, error)
}

// Repositories groups the data sources of a calculation pass.
type Repositories struct {
	Payroll    payroll.PayrollRepository
	Items      payroll.ItemRepository
	Employees  employee.EmployeeRepository
	Schedules  schedule.ScheduleRepository
	Attendance attendance.AttendanceRepository
}

type PayrollServiceImpl struct {
	tx        database.TxManager
	repos     Repositories
	calendars CalendarProvider
	loader    ConfigLoader
	audit     *auditsvc.Recorder
	deriver   attendancesvc.Deriver
	calc      Calculator
	workers   int
	now       func() time.Time
}

func NewPayrollService(
	tx database.TxManager,
	repos Repositories,
	calendars CalendarProvider,
	loader ConfigLoader,
	recorder *auditsvc.Recorder,
	standardHoursPerDay int,
	workers int,
) *PayrollServiceImpl {
	if workers < 1 {
		workers = 1
	}
	return &PayrollServiceImpl{
		tx:        tx,
		repos:     repos,
		calendars: calendars,
		loader:    loader,
		audit:     recorder,
		deriver:   attendancesvc.NewDeriver(standardHoursPerDay),
		workers:   workers,
		now:       time.Now,
	}
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ========== MONTH LIFECYCLE ==========

// StartMonth creates the draft payroll of a month. Calling it again returns the
// existing payroll unchanged.
func (s *PayrollServiceImpl) StartMonth(ctx context.Context, tenantID string, year, month int, actor string) (payroll.Payroll, error) {
	if month < 1 || month > 12 {
		return payroll.Payroll{}, apperror.InvalidInput("month", "must be between 1 and 12")
	}
	if _, err := s.calendars.EnsureMonth(ctx, tenantID, year, month); err != nil {
		return payroll.Payroll{}, err
	}

	existing, err := s.repos.Payroll.GetByPeriod(ctx, tenantID, year, month)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, payroll.ErrPayrollNotFound) {
		return payroll.Payroll{}, err
	}

	now := s.now().UTC()
	p := payroll.Payroll{
		ID:        newID(),
		TenantID:  tenantID,
		Year:      year,
		Month:     month,
		Revision:  1,
		Status:    payroll.PayrollStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		created, err := s.repos.Payroll.Create(txCtx, p)
		if err != nil {
			return err
		}
		p = created
		return s.audit.Record(txCtx, audit.Entry{
			TenantID:    tenantID,
			Action:      audit.ActionMonthStart,
			EntityType:  "payroll",
			EntityID:    p.ID,
			Description: fmt.Sprintf("Payroll %02d/%d started", month, year),
			PerformedBy: actor,
		})
	})
	if err != nil {
		return payroll.Payroll{}, err
	}

	slog.Info("payroll month started", "tenant_id", tenantID, "year", year, "month", month, "payroll_id", p.ID)
	return p, nil
}

// CalculateMonth calculates every employee of the month and stores the working
// results. Recoverable per-employee errors are collected in the result.
func (s *PayrollServiceImpl) CalculateMonth(ctx context.Context, tenantID string, year, month int, actor string) (payroll.BatchResult, error) {
	started := time.Now()
	p, err := s.StartMonth(ctx, tenantID, year, month, actor)
	if err != nil {
		return payroll.BatchResult{}, err
	}
	if p.IsClosed() {
		return payroll.BatchResult{}, apperror.ClosedPeriod("payroll %02d/%d is closed", month, year)
	}
	if !payroll.CanTransition(p.Status, payroll.PayrollStatusCalculated) {
		return payroll.BatchResult{}, fmt.Errorf("%w: %s to %s", payroll.ErrInvalidTransition, p.Status, payroll.PayrollStatusCalculated)
	}

	pass, err := s.compute(ctx, p, "")
	if err != nil {
		return payroll.BatchResult{}, err
	}
	result := pass.result

	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		// The pass ran outside the transaction; a close may have landed since.
		current, err := s.repos.Payroll.LockForUpdate(txCtx, tenantID, p.ID)
		if err != nil {
			return err
		}
		if current.IsClosed() {
			return apperror.ClosedPeriod("payroll %02d/%d was closed during calculation", month, year)
		}
		if !payroll.CanTransition(current.Status, payroll.PayrollStatusCalculated) {
			return fmt.Errorf("%w: %s to %s", payroll.ErrInvalidTransition, current.Status, payroll.PayrollStatusCalculated)
		}
		p = current

		for _, c := range result.Calculations {
			if err := s.repos.Payroll.UpsertResult(txCtx, c); err != nil {
				return err
			}
		}
		for _, b := range pass.balances {
			if err := s.repos.Attendance.UpsertBalance(txCtx, b); err != nil {
				return err
			}
		}

		now := s.now().UTC()
		p.Status = payroll.PayrollStatusCalculated
		p.CalculatedAt = &now
		p.UpdatedAt = now
		if err := s.repos.Payroll.UpdateStatus(txCtx, p); err != nil {
			return err
		}

		return s.audit.Record(txCtx, audit.Entry{
			TenantID:    tenantID,
			Action:      audit.ActionMonthRecalculate,
			EntityType:  "payroll",
			EntityID:    p.ID,
			Description: fmt.Sprintf("Payroll %02d/%d calculated", month, year),
			Details: map[string]any{
				"calculated": len(result.Calculations),
				"failed":     len(result.Failures),
			},
			PerformedBy: actor,
		})
	})
	if err != nil {
		return payroll.BatchResult{}, err
	}

	slog.Info("payroll month calculated",
		"tenant_id", tenantID,
		"year", year,
		"month", month,
		"calculated", len(result.Calculations),
		"failed", len(result.Failures),
		"duration", time.Since(started),
	)
	return result, nil
}

// CalculateEmployee previews one employee without storing anything.
func (s *PayrollServiceImpl) CalculateEmployee(ctx context.Context, tenantID, employeeID string, year, month int) (payroll.Calculation, error) {
	if _, err := s.repos.Employees.GetByID(ctx, tenantID, employeeID); err != nil {
		return payroll.Calculation{}, err
	}

	p, err := s.repos.Payroll.GetByPeriod(ctx, tenantID, year, month)
	switch {
	case err == nil:
		if p.IsClosed() {
			return payroll.Calculation{}, apperror.ClosedPeriod("payroll %02d/%d is closed", month, year)
		}
	case errors.Is(err, payroll.ErrPayrollNotFound):
		p = payroll.Payroll{TenantID: tenantID, Year: year, Month: month}
	default:
		return payroll.Calculation{}, err
	}

	pass, err := s.compute(ctx, p, employeeID)
	if err != nil {
		return payroll.Calculation{}, err
	}
	if err, ok := pass.errs[employeeID]; ok {
		return payroll.Calculation{}, err
	}
	if len(pass.result.Calculations) == 0 {
		return payroll.Calculation{}, employee.ErrEmploymentNotFound
	}
	return pass.result.Calculations[0], nil
}

// Result returns the stored working result of an employee for the month's
// current payroll revision.
func (s *PayrollServiceImpl) Result(ctx context.Context, tenantID, employeeID string, year, month int) (payroll.Calculation, error) {
	p, err := s.repos.Payroll.GetByPeriod(ctx, tenantID, year, month)
	if err != nil {
		return payroll.Calculation{}, err
	}
	return s.repos.Payroll.GetResult(ctx, tenantID, p.ID, employeeID)
}

// AuditTrail lists what happened to the current revision of the month.
func (s *PayrollServiceImpl) AuditTrail(ctx context.Context, tenantID string, year, month int) ([]audit.Entry, error) {
	p, err := s.repos.Payroll.GetByPeriod(ctx, tenantID, year, month)
	if err != nil {
		return nil, err
	}
	return s.audit.History(ctx, tenantID, "payroll", p.ID)
}

// Recalculate computes the month one final time for closing. Stored results are
// not touched; the results and reference-period balances are returned for the
// caller to persist. Any employee failure is returned as an error carrying the
// first failure's kind, together with the full result.
func (s *PayrollServiceImpl) Recalculate(ctx context.Context, p payroll.Payroll) (payroll.BatchResult, []attendance.MonthBalance, error) {
	pass, err := s.compute(ctx, p, "")
	if err != nil {
		return payroll.BatchResult{}, nil, err
	}
	result := pass.result
	if len(result.Failures) > 0 {
		first := result.Failures[0]
		return result, nil, fmt.Errorf("%d of %d employees failed, employee %s: %w",
			len(result.Failures), len(result.Failures)+len(result.Calculations), first.EmployeeID, pass.errs[first.EmployeeID])
	}
	return result, pass.balances, nil
}

// ========== CALCULATION PASS ==========

// monthContext is everything loaded once per pass. It is read-only while
// employees are calculated in parallel.
type monthContext struct {
	cfg          *rules.ConfigSet
	cal          calendar.MonthlyCalendar
	annual       calendar.AnnualCalendar
	staff        []employee.Staff
	schedules    map[string]schedule.WorkSchedule
	shifts       map[string]schedule.ShiftSchedule
	absences     map[string][]attendance.Absence
	timesheets   map[string]*attendance.MonthlyTimesheet
	payItems     map[string][]payroll.EmployeePayItem
	deductions   map[string][]payroll.EmployeeDeduction
	garnishments map[string][]payroll.Garnishment
}

type outcome struct {
	calc    payroll.Calculation
	balance *attendance.MonthBalance
	err     error
}

// passResult is the outcome of one calculation pass. errs holds the recoverable
// per-employee errors behind result.Failures.
type passResult struct {
	result   payroll.BatchResult
	balances []attendance.MonthBalance
	errs     map[string]error
}

func (s *PayrollServiceImpl) compute(ctx context.Context, p payroll.Payroll, onlyEmployeeID string) (passResult, error) {
	mc, err := s.loadMonth(ctx, p.TenantID, p.Year, p.Month)
	if err != nil {
		return passResult{}, err
	}

	staff := mc.staff
	if onlyEmployeeID != "" {
		staff = nil
		for _, st := range mc.staff {
			if st.Employee.ID == onlyEmployeeID {
				staff = append(staff, st)
			}
		}
	}

	outcomes := make([]outcome, len(staff))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, st := range staff {
		i, st := i, st
		g.Go(func() error {
			calc, balance, err := s.calculateOne(gctx, mc, p, st)
			if err != nil {
				if !apperror.Recoverable(err) {
					return fmt.Errorf("failed to calculate employee %s: %w", st.Employee.ID, err)
				}
				outcomes[i] = outcome{err: err}
				return nil
			}
			outcomes[i] = outcome{calc: calc, balance: balance}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return passResult{}, err
	}

	out := passResult{
		result: payroll.BatchResult{PayrollID: p.ID, Year: p.Year, Month: p.Month},
		errs:   make(map[string]error),
	}
	for i, o := range outcomes {
		if o.err != nil {
			out.errs[staff[i].Employee.ID] = o.err
			out.result.Failures = append(out.result.Failures, payroll.EmployeeFailure{
				EmployeeID: staff[i].Employee.ID,
				Code:       apperror.Code(o.err),
				Field:      apperror.FieldOf(o.err),
				Message:    o.err.Error(),
			})
			continue
		}
		out.result.Calculations = append(out.result.Calculations, o.calc)
		if o.balance != nil {
			out.balances = append(out.balances, *o.balance)
		}
	}
	return out, nil
}

func (s *PayrollServiceImpl) calculateOne(ctx context.Context, mc *monthContext, p payroll.Payroll, st employee.Staff) (payroll.Calculation, *attendance.MonthBalance, error) {
	job := st.Employment
	if err := job.Validate(); err != nil {
		return payroll.Calculation{}, nil, err
	}
	st.Employee = st.Employee.WithBirthDateFromEGN()
	if err := st.Employee.Validate(); err != nil {
		return payroll.Calculation{}, nil, err
	}

	rs, err := mc.cfg.Resolve(rules.RuleQuery{
		BirthDate:            st.Employee.BirthDate,
		InsuredType:          job.InsuredType,
		EconomicActivityCode: job.EconomicActivityCode,
		OccupationGroup:      job.OccupationGroup,
		OccupationCode:       job.OccupationCode,
	})
	if err != nil {
		return payroll.Calculation{}, nil, err
	}

	ws, shifts, err := mc.scheduleFor(job)
	if err != nil {
		return payroll.Calculation{}, nil, err
	}

	in := attendancesvc.Input{
		TenantID:        p.TenantID,
		EmployeeID:      st.Employee.ID,
		Year:            p.Year,
		Month:           p.Month,
		Calendar:        mc.cal,
		Annual:          mc.annual,
		Schedule:        ws,
		Shifts:          shifts,
		EmploymentStart: job.StartDate,
		EmploymentEnd:   job.EndDate,
		Absences:        mc.absences[st.Employee.ID],
		Timesheet:       mc.timesheets[st.Employee.ID],
	}
	if shifts != nil {
		period := schedule.PeriodFor(p.Year, p.Month, shifts.ReferenceMonths)
		if period.StartMonth < p.Month {
			in.Prior, err = s.repos.Attendance.ListBalances(ctx, p.TenantID, st.Employee.ID, p.Year, period.StartMonth, p.Month-1)
			if err != nil {
				return payroll.Calculation{}, nil, err
			}
		}
	}

	summary, err := s.deriver.Derive(in)
	if err != nil {
		return payroll.Calculation{}, nil, err
	}

	calc, err := s.calc.Calculate(CalcInput{
		TenantID:     p.TenantID,
		PayrollID:    p.ID,
		Year:         p.Year,
		Month:        p.Month,
		Staff:        st,
		Calendar:     mc.cal,
		Attendance:   summary,
		Rules:        rs,
		PayItems:     mc.payItems[st.Employee.ID],
		Deductions:   mc.deductions[st.Employee.ID],
		Garnishments: mc.garnishments[st.Employee.ID],
		Now:          s.now().UTC(),
	})
	if err != nil {
		return payroll.Calculation{}, nil, err
	}

	var balance *attendance.MonthBalance
	if summary.Reference != nil {
		b := summary.Reference.Current
		balance = &b
	}
	return calc, balance, nil
}

func (mc *monthContext) scheduleFor(job employee.Employment) (schedule.WorkSchedule, *schedule.ShiftSchedule, error) {
	if job.WorkScheduleCode == "" {
		return schedule.WorkSchedule{Kind: schedule.KindFixed}, nil, nil
	}
	ws, ok := mc.schedules[job.WorkScheduleCode]
	if !ok {
		return schedule.WorkSchedule{}, nil, apperror.ConfigurationMissing("work schedule %s", job.WorkScheduleCode).Wrap(schedule.ErrWorkScheduleNotFound)
	}
	if err := ws.Validate(); err != nil {
		return schedule.WorkSchedule{}, nil, err
	}
	if ws.Kind != schedule.KindRotating {
		return ws, nil, nil
	}
	shifts, ok := mc.shifts[*ws.ShiftScheduleID]
	if !ok {
		return schedule.WorkSchedule{}, nil, apperror.ConfigurationMissing("shift schedule %s", *ws.ShiftScheduleID).Wrap(schedule.ErrShiftScheduleNotFound)
	}
	return ws, &shifts, nil
}

// loadMonth reads all inputs of the month up front so that edits made while the
// pass runs are not observed.
func (s *PayrollServiceImpl) loadMonth(ctx context.Context, tenantID string, year, month int) (*monthContext, error) {
	cfg, err := s.loader.Load(ctx, tenantID, year)
	if err != nil {
		return nil, err
	}
	cal, err := s.calendars.EnsureMonth(ctx, tenantID, year, month)
	if err != nil {
		return nil, err
	}
	annual, err := s.calendars.Annual(ctx, tenantID, year)
	if err != nil {
		return nil, err
	}

	mc := &monthContext{
		cfg:          cfg,
		cal:          cal,
		annual:       annual,
		schedules:    make(map[string]schedule.WorkSchedule),
		shifts:       make(map[string]schedule.ShiftSchedule),
		absences:     make(map[string][]attendance.Absence),
		timesheets:   make(map[string]*attendance.MonthlyTimesheet),
		payItems:     make(map[string][]payroll.EmployeePayItem),
		deductions:   make(map[string][]payroll.EmployeeDeduction),
		garnishments: make(map[string][]payroll.Garnishment),
	}

	if mc.staff, err = s.repos.Employees.ListStaff(ctx, tenantID, year, month); err != nil {
		return nil, err
	}

	workSchedules, err := s.repos.Schedules.ListWorkSchedules(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for _, ws := range workSchedules {
		mc.schedules[ws.Code] = ws
	}
	shiftSchedules, err := s.repos.Schedules.ListShiftSchedules(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for _, ss := range shiftSchedules {
		mc.shifts[ss.ID] = ss
	}

	absences, err := s.repos.Attendance.ListAbsences(ctx, tenantID, year, month)
	if err != nil {
		return nil, err
	}
	for _, a := range absences {
		mc.absences[a.EmployeeID] = append(mc.absences[a.EmployeeID], a)
	}
	timesheets, err := s.repos.Attendance.ListTimesheets(ctx, tenantID, year, month)
	if err != nil {
		return nil, err
	}
	for i := range timesheets {
		mc.timesheets[timesheets[i].EmployeeID] = &timesheets[i]
	}

	items, err := s.repos.Items.ListPayItems(ctx, tenantID, year, month)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		mc.payItems[it.EmployeeID] = append(mc.payItems[it.EmployeeID], it)
	}
	deductions, err := s.repos.Items.ListDeductions(ctx, tenantID, year, month)
	if err != nil {
		return nil, err
	}
	for _, d := range deductions {
		mc.deductions[d.EmployeeID] = append(mc.deductions[d.EmployeeID], d)
	}
	garnishments, err := s.repos.Items.ListActiveGarnishments(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for _, g := range garnishments {
		mc.garnishments[g.EmployeeID] = append(mc.garnishments[g.EmployeeID], g)
	}

	return mc, nil
}
