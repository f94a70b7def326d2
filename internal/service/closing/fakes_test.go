package closing

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/valstrz/payroll-engine/internal/domain/attendance"
	"github.com/valstrz/payroll-engine/internal/domain/audit"
	"github.com/valstrz/payroll-engine/internal/domain/company"
	"github.com/valstrz/payroll-engine/internal/domain/payroll"
	"github.com/valstrz/payroll-engine/internal/pkg/apperror"
	"github.com/valstrz/payroll-engine/internal/pkg/events"
)

// memDB keeps every table in memory. WithinTx restores the previous state when
// fn fails so tests can observe rollbacks.
type memDB struct {
	mu        sync.Mutex
	payrolls  []payroll.Payroll
	results   []payroll.Calculation
	snapshots []payroll.PayrollSnapshot
	closings  []payroll.MonthClosingSnapshot
	paid      map[string]decimal.Decimal
	audits    []audit.Entry
	carried   []payroll.EmployeeDeduction
	balances  []attendance.MonthBalance

	failOn string // name of the operation that fails
}

var errInjected = errors.New("injected failure")

func newMemDB() *memDB {
	return &memDB{paid: make(map[string]decimal.Decimal)}
}

type memState struct {
	payrolls  []payroll.Payroll
	results   []payroll.Calculation
	snapshots []payroll.PayrollSnapshot
	closings  []payroll.MonthClosingSnapshot
	paid      map[string]decimal.Decimal
	audits    []audit.Entry
	carried   []payroll.EmployeeDeduction
	balances  []attendance.MonthBalance
}

func (m *memDB) save() memState {
	m.mu.Lock()
	defer m.mu.Unlock()
	paid := make(map[string]decimal.Decimal, len(m.paid))
	for k, v := range m.paid {
		paid[k] = v
	}
	return memState{
		payrolls:  slices.Clone(m.payrolls),
		results:   slices.Clone(m.results),
		snapshots: slices.Clone(m.snapshots),
		closings:  slices.Clone(m.closings),
		paid:      paid,
		audits:    slices.Clone(m.audits),
		carried:   slices.Clone(m.carried),
		balances:  slices.Clone(m.balances),
	}
}

func (m *memDB) restore(s memState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payrolls, m.results, m.snapshots, m.closings, m.paid, m.audits = s.payrolls, s.results, s.snapshots, s.closings, s.paid, s.audits
	m.carried, m.balances = s.carried, s.balances
}

func (m *memDB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	saved := m.save()
	if err := fn(ctx); err != nil {
		m.restore(saved)
		return err
	}
	return nil
}

func (m *memDB) fail(op string) error {
	if m.failOn == op {
		return errInjected
	}
	return nil
}

// ---- payroll.PayrollRepository

type payrollRepo struct{ db *memDB }

func (r payrollRepo) Create(ctx context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.payrolls = append(r.db.payrolls, p)
	return p, nil
}

func (r payrollRepo) GetByPeriod(ctx context.Context, tenantID string, year, month int) (payroll.Payroll, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var found *payroll.Payroll
	for i := range r.db.payrolls {
		p := &r.db.payrolls[i]
		if p.TenantID == tenantID && p.Year == year && p.Month == month && (found == nil || p.Revision > found.Revision) {
			found = p
		}
	}
	if found == nil {
		return payroll.Payroll{}, payroll.ErrPayrollNotFound
	}
	return *found, nil
}

func (r payrollRepo) LockForUpdate(ctx context.Context, tenantID, id string) (payroll.Payroll, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.payrolls {
		if p.ID == id && p.TenantID == tenantID {
			return p, nil
		}
	}
	return payroll.Payroll{}, payroll.ErrPayrollNotFound
}

func (r payrollRepo) UpdateStatus(ctx context.Context, p payroll.Payroll) error {
	if err := r.db.fail("UpdateStatus"); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range r.db.payrolls {
		if r.db.payrolls[i].ID == p.ID {
			if r.db.payrolls[i].IsClosed() && p.Status != payroll.PayrollStatusReopened {
				return apperror.ClosedPeriod("payroll %s is closed", p.ID)
			}
			r.db.payrolls[i] = p
			return nil
		}
	}
	return payroll.ErrPayrollNotFound
}

func (r payrollRepo) UpsertResult(ctx context.Context, calc payroll.Calculation) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.results = append(r.db.results, calc)
	return nil
}

func (r payrollRepo) GetResult(ctx context.Context, tenantID, payrollID, employeeID string) (payroll.Calculation, error) {
	return payroll.Calculation{}, payroll.ErrResultNotFound
}

func (r payrollRepo) ListResults(ctx context.Context, tenantID, payrollID string) ([]payroll.Calculation, error) {
	return nil, nil
}

// ---- payroll.SnapshotRepository

type snapshotRepo struct{ db *memDB }

func (r snapshotRepo) NextVersion(ctx context.Context, tenantID, employeeID string, year, month int) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	version := 0
	for _, s := range r.db.snapshots {
		if s.TenantID == tenantID && s.EmployeeID == employeeID && s.Year == year && s.Month == month {
			version = max(version, s.Version)
		}
	}
	return version + 1, nil
}

func (r snapshotRepo) Insert(ctx context.Context, s payroll.PayrollSnapshot) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.snapshots = append(r.db.snapshots, s)
	return nil
}

func (r snapshotRepo) InsertMonthClosing(ctx context.Context, m payroll.MonthClosingSnapshot) error {
	if err := r.db.fail("InsertMonthClosing"); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.closings = append(r.db.closings, m)
	return nil
}

func (r snapshotRepo) ListLatest(ctx context.Context, tenantID string, year, month int) ([]payroll.PayrollSnapshot, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	latest := make(map[string]payroll.PayrollSnapshot)
	var order []string
	for _, s := range r.db.snapshots {
		if s.TenantID != tenantID || s.Year != year || s.Month != month {
			continue
		}
		prev, ok := latest[s.EmployeeID]
		if !ok {
			order = append(order, s.EmployeeID)
		}
		if !ok || s.Version > prev.Version {
			latest[s.EmployeeID] = s
		}
	}
	out := make([]payroll.PayrollSnapshot, 0, len(order))
	for _, id := range order {
		out = append(out, latest[id])
	}
	return out, nil
}

func (r snapshotRepo) GetLatest(ctx context.Context, tenantID, employeeID string, year, month int) (payroll.PayrollSnapshot, error) {
	history, _ := r.History(ctx, tenantID, employeeID, year, month)
	if len(history) == 0 {
		return payroll.PayrollSnapshot{}, payroll.ErrSnapshotNotFound
	}
	return history[len(history)-1], nil
}

func (r snapshotRepo) History(ctx context.Context, tenantID, employeeID string, year, month int) ([]payroll.PayrollSnapshot, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []payroll.PayrollSnapshot
	for _, s := range r.db.snapshots {
		if s.TenantID == tenantID && s.EmployeeID == employeeID && s.Year == year && s.Month == month {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r snapshotRepo) ListByIDs(ctx context.Context, tenantID string, ids []string) ([]payroll.PayrollSnapshot, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []payroll.PayrollSnapshot
	for _, s := range r.db.snapshots {
		if s.TenantID == tenantID && slices.Contains(ids, s.ID) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r snapshotRepo) LatestMonthClosing(ctx context.Context, tenantID string, year, month int) (payroll.MonthClosingSnapshot, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := len(r.db.closings) - 1; i >= 0; i-- {
		c := r.db.closings[i]
		if c.TenantID == tenantID && c.Year == year && c.Month == month {
			return c, nil
		}
	}
	return payroll.MonthClosingSnapshot{}, payroll.ErrSnapshotNotFound
}

// ---- payroll.ItemRepository

type itemRepo struct{ db *memDB }

func (r itemRepo) ListPayItems(ctx context.Context, tenantID string, year, month int) ([]payroll.EmployeePayItem, error) {
	return nil, nil
}

func (r itemRepo) ListDeductions(ctx context.Context, tenantID string, year, month int) ([]payroll.EmployeeDeduction, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []payroll.EmployeeDeduction
	for _, d := range r.db.carried {
		if d.TenantID == tenantID && d.IsValidFor(year, month) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r itemRepo) ListActiveGarnishments(ctx context.Context, tenantID string) ([]payroll.Garnishment, error) {
	return nil, nil
}

func (r itemRepo) ApplyGarnishment(ctx context.Context, tenantID, garnishmentID string, delta decimal.Decimal) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.paid[garnishmentID] = r.db.paid[garnishmentID].Add(delta)
	return nil
}

func (r itemRepo) CarryForwardDeduction(ctx context.Context, d payroll.EmployeeDeduction) error {
	if err := r.db.fail("CarryForwardDeduction"); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.carried = append(r.db.carried, d)
	return nil
}

func (r itemRepo) DeleteCarriedDeductions(ctx context.Context, tenantID, payrollID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.carried = slices.DeleteFunc(r.db.carried, func(d payroll.EmployeeDeduction) bool {
		return d.TenantID == tenantID && d.CarriedFrom == payrollID
	})
	return nil
}

// ---- attendance.AttendanceRepository

type balanceRepo struct {
	attendance.AttendanceRepository
	db *memDB
}

func (r balanceRepo) UpsertBalance(ctx context.Context, b attendance.MonthBalance) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, existing := range r.db.balances {
		if existing.TenantID == b.TenantID && existing.EmployeeID == b.EmployeeID && existing.Year == b.Year && existing.Month == b.Month {
			r.db.balances[i] = b
			return nil
		}
	}
	r.db.balances = append(r.db.balances, b)
	return nil
}

// ---- audit.AuditRepository

type auditRepo struct{ db *memDB }

func (r auditRepo) Create(ctx context.Context, e audit.Entry) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.audits = append(r.db.audits, e)
	return nil
}

func (r auditRepo) List(ctx context.Context, tenantID, entityType, entityID string) ([]audit.Entry, error) {
	return r.db.audits, nil
}

type companyRepo struct{}

func (companyRepo) GetByID(ctx context.Context, id string) (company.Company, error) {
	return company.Company{ID: id, Name: "Acme Ltd", Bulstat: "123456789", Active: true}, nil
}

func (companyRepo) ListActive(ctx context.Context) ([]company.Company, error) {
	return nil, nil
}

// ---- collaborators

type fixedRecalc struct {
	mu       sync.Mutex
	result   payroll.BatchResult
	balances []attendance.MonthBalance
	err      error
	calls  int
	// gate, when set, blocks Recalculate until it is closed
	gate    chan struct{}
	entered chan struct{}
}

func (f *fixedRecalc) Recalculate(ctx context.Context, p payroll.Payroll) (payroll.BatchResult, []attendance.MonthBalance, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.gate != nil {
		close(f.entered)
		<-f.gate
	}
	result := f.result
	result.PayrollID = p.ID
	calcs := make([]payroll.Calculation, len(result.Calculations))
	for i, c := range result.Calculations {
		c.PayrollID = p.ID
		calcs[i] = c
	}
	result.Calculations = calcs
	if f.err != nil {
		return result, nil, f.err
	}
	return result, f.balances, nil
}

type staticGuard bool

func (g staticGuard) HasDownstream(ctx context.Context, tenantID string, year, month int) (bool, error) {
	return bool(g), nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	closed   int
	reopened int
}

func (p *recordingPublisher) PublishMonthClosed(context.Context, events.MonthClosedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

func (p *recordingPublisher) PublishMonthReopened(context.Context, events.MonthReopenedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reopened++
	return nil
}
