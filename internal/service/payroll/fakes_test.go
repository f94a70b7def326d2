package payroll

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/valstrz/payroll-engine/internal/domain/attendance"
	"github.com/valstrz/payroll-engine/internal/domain/audit"
	"github.com/valstrz/payroll-engine/internal/domain/calendar"
	"github.com/valstrz/payroll-engine/internal/domain/employee"
	"github.com/valstrz/payroll-engine/internal/domain/insurance"
	"github.com/valstrz/payroll-engine/internal/domain/payroll"
	"github.com/valstrz/payroll-engine/internal/domain/schedule"
	"github.com/valstrz/payroll-engine/internal/pkg/apperror"
	"github.com/valstrz/payroll-engine/internal/service/rules"
)

type passTx struct{}

func (passTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memPayrollRepo struct {
	mu       sync.Mutex
	payrolls []payroll.Payroll
	results  map[string]payroll.Calculation
}

func newMemPayrollRepo() *memPayrollRepo {
	return &memPayrollRepo{results: make(map[string]payroll.Calculation)}
}

func (m *memPayrollRepo) Create(ctx context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payrolls = append(m.payrolls, p)
	return p, nil
}

func (m *memPayrollRepo) GetByPeriod(ctx context.Context, tenantID string, year, month int) (payroll.Payroll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *payroll.Payroll
	for i := range m.payrolls {
		p := &m.payrolls[i]
		if p.TenantID == tenantID && p.Year == year && p.Month == month && (found == nil || p.Revision > found.Revision) {
			found = p
		}
	}
	if found == nil {
		return payroll.Payroll{}, payroll.ErrPayrollNotFound
	}
	return *found, nil
}

func (m *memPayrollRepo) LockForUpdate(ctx context.Context, tenantID, id string) (payroll.Payroll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payrolls {
		if p.ID == id && p.TenantID == tenantID {
			return p, nil
		}
	}
	return payroll.Payroll{}, payroll.ErrPayrollNotFound
}

// setStatus changes a stored payroll as a concurrent writer would.
func (m *memPayrollRepo) setStatus(id string, status payroll.PayrollStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.payrolls {
		if m.payrolls[i].ID == id {
			m.payrolls[i].Status = status
		}
	}
}

func (m *memPayrollRepo) UpdateStatus(ctx context.Context, p payroll.Payroll) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.payrolls {
		if m.payrolls[i].ID == p.ID {
			if m.payrolls[i].IsClosed() && p.Status != payroll.PayrollStatusReopened {
				return apperror.ClosedPeriod("payroll %s is closed", p.ID)
			}
			m.payrolls[i] = p
			return nil
		}
	}
	return payroll.ErrPayrollNotFound
}

func (m *memPayrollRepo) UpsertResult(ctx context.Context, calc payroll.Calculation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[calc.PayrollID+"/"+calc.EmployeeID] = calc
	return nil
}

func (m *memPayrollRepo) GetResult(ctx context.Context, tenantID, payrollID, employeeID string) (payroll.Calculation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.results[payrollID+"/"+employeeID]
	if !ok {
		return payroll.Calculation{}, payroll.ErrResultNotFound
	}
	return c, nil
}

func (m *memPayrollRepo) ListResults(ctx context.Context, tenantID, payrollID string) ([]payroll.Calculation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []payroll.Calculation
	for _, c := range m.results {
		if c.PayrollID == payrollID {
			out = append(out, c)
		}
	}
	return out, nil
}

type memItemRepo struct {
	items        []payroll.EmployeePayItem
	deductions   []payroll.EmployeeDeduction
	garnishments []payroll.Garnishment
}

func (m *memItemRepo) ListPayItems(ctx context.Context, tenantID string, year, month int) ([]payroll.EmployeePayItem, error) {
	return m.items, nil
}

func (m *memItemRepo) ListDeductions(ctx context.Context, tenantID string, year, month int) ([]payroll.EmployeeDeduction, error) {
	return m.deductions, nil
}

func (m *memItemRepo) ListActiveGarnishments(ctx context.Context, tenantID string) ([]payroll.Garnishment, error) {
	return m.garnishments, nil
}

func (m *memItemRepo) ApplyGarnishment(ctx context.Context, tenantID, garnishmentID string, delta decimal.Decimal) error {
	return nil
}

func (m *memItemRepo) CarryForwardDeduction(ctx context.Context, d payroll.EmployeeDeduction) error {
	m.deductions = append(m.deductions, d)
	return nil
}

func (m *memItemRepo) DeleteCarriedDeductions(ctx context.Context, tenantID, payrollID string) error {
	return nil
}

type memEmployeeRepo struct {
	staff []employee.Staff
}

func (m *memEmployeeRepo) GetByID(ctx context.Context, tenantID, id string) (employee.Employee, error) {
	for _, s := range m.staff {
		if s.Employee.ID == id {
			return s.Employee, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (m *memEmployeeRepo) ListStaff(ctx context.Context, tenantID string, year, month int) ([]employee.Staff, error) {
	return m.staff, nil
}

type memScheduleRepo struct {
	work   []schedule.WorkSchedule
	shifts []schedule.ShiftSchedule
}

func (m *memScheduleRepo) ListWorkSchedules(ctx context.Context, tenantID string) ([]schedule.WorkSchedule, error) {
	return m.work, nil
}

func (m *memScheduleRepo) GetShiftSchedule(ctx context.Context, tenantID, id string) (schedule.ShiftSchedule, error) {
	for _, s := range m.shifts {
		if s.ID == id {
			return s, nil
		}
	}
	return schedule.ShiftSchedule{}, schedule.ErrShiftScheduleNotFound
}

func (m *memScheduleRepo) ListShiftSchedules(ctx context.Context, tenantID string) ([]schedule.ShiftSchedule, error) {
	return m.shifts, nil
}

func (m *memScheduleRepo) CreateShiftSchedule(ctx context.Context, s schedule.ShiftSchedule) (schedule.ShiftSchedule, error) {
	m.shifts = append(m.shifts, s)
	return s, nil
}

type memAttendanceRepo struct {
	mu       sync.Mutex
	absences []attendance.Absence
	balances []attendance.MonthBalance
}

func (m *memAttendanceRepo) ListAbsences(ctx context.Context, tenantID string, year, month int) ([]attendance.Absence, error) {
	return m.absences, nil
}

func (m *memAttendanceRepo) ListTimesheets(ctx context.Context, tenantID string, year, month int) ([]attendance.MonthlyTimesheet, error) {
	return nil, nil
}

func (m *memAttendanceRepo) ListBalances(ctx context.Context, tenantID, employeeID string, year, fromMonth, toMonth int) ([]attendance.MonthBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.MonthBalance
	for _, b := range m.balances {
		if b.EmployeeID == employeeID && b.Year == year && b.Month >= fromMonth && b.Month <= toMonth {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memAttendanceRepo) UpsertBalance(ctx context.Context, balance attendance.MonthBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, b := range m.balances {
		if b.EmployeeID == balance.EmployeeID && b.Year == balance.Year && b.Month == balance.Month {
			m.balances[i] = balance
			return nil
		}
	}
	m.balances = append(m.balances, balance)
	return nil
}

type memAuditRepo struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (m *memAuditRepo) Create(ctx context.Context, e audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memAuditRepo) List(ctx context.Context, tenantID, entityType, entityID string) ([]audit.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []audit.Entry
	for _, e := range m.entries {
		if e.TenantID == tenantID && e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

type staticCalendars struct {
	cal    calendar.MonthlyCalendar
	annual calendar.AnnualCalendar
}

func (s staticCalendars) EnsureMonth(ctx context.Context, tenantID string, year, month int) (calendar.MonthlyCalendar, error) {
	return s.cal, nil
}

func (s staticCalendars) Annual(ctx context.Context, tenantID string, year int) (calendar.AnnualCalendar, error) {
	return s.annual, nil
}

type staticLoader struct {
	rates         insurance.Rates
	contributions []insurance.Contributions
}

func (s staticLoader) Load(ctx context.Context, tenantID string, year int) (*rules.ConfigSet, error) {
	return rules.NewConfigSet(s.rates, s.contributions, nil, nil), nil
}

// closeDuringLoad closes the payroll while the pass is still loading its
// configuration, as a concurrent Close would.
type closeDuringLoad struct {
	ConfigLoader
	payrolls  *memPayrollRepo
	payrollID string
}

func (c closeDuringLoad) Load(ctx context.Context, tenantID string, year int) (*rules.ConfigSet, error) {
	c.payrolls.setStatus(c.payrollID, payroll.PayrollStatusClosed)
	return c.ConfigLoader.Load(ctx, tenantID, year)
}
