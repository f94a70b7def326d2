package closing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valstrz/payroll-engine/internal/domain/attendance"
	"github.com/valstrz/payroll-engine/internal/domain/audit"
	"github.com/valstrz/payroll-engine/internal/domain/company"
	"github.com/valstrz/payroll-engine/internal/domain/payroll"
	"github.com/valstrz/payroll-engine/internal/pkg/apperror"
	"github.com/valstrz/payroll-engine/internal/pkg/database"
	"github.com/valstrz/payroll-engine/internal/pkg/events"
	"github.com/valstrz/payroll-engine/internal/pkg/lock"
	"github.com/valstrz/payroll-engine/internal/pkg/payslip"
	auditsvc "github.com/valstrz/payroll-engine/internal/service/audit"
)

// Recalculator runs the final calculation pass of a month and returns the
// reference-period balances it derived alongside the results.
type Recalculator interface {
	Recalculate(ctx context.Context, p payroll.Payroll) (payroll.BatchResult, []attendance.MonthBalance, error)
}

// DownstreamGuard reports whether regulator submissions or accounting entries
// were generated from a closed month.
type DownstreamGuard interface {
	HasDownstream(ctx context.Context, tenantID string, year, month int) (bool, error)
}

type Repositories struct {
	Payroll    payroll.PayrollRepository
	Snapshots  payroll.SnapshotRepository
	Items      payroll.ItemRepository
	Attendance attendance.AttendanceRepository
	Companies  company.CompanyRepository
}

type ClosingServiceImpl struct {
	tx        database.TxManager
	repos     Repositories
	recalc    Recalculator
	guard     DownstreamGuard
	locker    lock.Locker
	publisher events.Publisher
	audit     *auditsvc.Recorder
	now       func() time.Time
}

func NewClosingService(
	tx database.TxManager,
	repos Repositories,
	recalc Recalculator,
	guard DownstreamGuard,
	locker lock.Locker,
	publisher events.Publisher,
	recorder *auditsvc.Recorder,
) *ClosingServiceImpl {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &ClosingServiceImpl{
		tx:        tx,
		repos:     repos,
		recalc:    recalc,
		guard:     guard,
		locker:    locker,
		publisher: publisher,
		audit:     recorder,
		now:       time.Now,
	}
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func periodKey(tenantID string, year, month int) string {
	return fmt.Sprintf("%s:%d-%02d", tenantID, year, month)
}

// ========== CLOSE ==========

// Close freezes the month: every employee is recalculated, one snapshot per
// employee and the month roll-up are written together with the status change.
// Nothing is written when any employee fails.
func (s *ClosingServiceImpl) Close(ctx context.Context, tenantID string, year, month int, actor string) (payroll.MonthClosingSnapshot, error) {
	started := time.Now()
	key := periodKey(tenantID, year, month)

	release, err := s.locker.TryLock(ctx, key)
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			return payroll.MonthClosingSnapshot{}, apperror.ConcurrentClose(key)
		}
		return payroll.MonthClosingSnapshot{}, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("failed to release close lock", "key", key, "error", err)
		}
	}()

	p, err := s.repos.Payroll.GetByPeriod(ctx, tenantID, year, month)
	if err != nil {
		return payroll.MonthClosingSnapshot{}, err
	}
	if p.IsClosed() {
		return payroll.MonthClosingSnapshot{}, apperror.ClosedPeriod("payroll %02d/%d is already closed", month, year)
	}
	if !payroll.CanTransition(p.Status, payroll.PayrollStatusClosed) {
		return payroll.MonthClosingSnapshot{}, fmt.Errorf("%w: %s to %s", payroll.ErrInvalidTransition, p.Status, payroll.PayrollStatusClosed)
	}

	result, balances, err := s.recalc.Recalculate(ctx, p)
	if err != nil {
		return payroll.MonthClosingSnapshot{}, fmt.Errorf("close blocked: %w", err)
	}
	if len(result.Calculations) == 0 {
		return payroll.MonthClosingSnapshot{}, payroll.ErrNoEmployees
	}

	now := s.now().UTC()
	var closing payroll.MonthClosingSnapshot
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		current, err := s.repos.Payroll.LockForUpdate(txCtx, tenantID, p.ID)
		if err != nil {
			return err
		}
		if current.IsClosed() {
			return apperror.ClosedPeriod("payroll %02d/%d is already closed", month, year)
		}
		p = current

		snapshots := make([]payroll.PayrollSnapshot, 0, len(result.Calculations))
		for i := range result.Calculations {
			calc := &result.Calculations[i]
			if err := s.repos.Payroll.UpsertResult(txCtx, *calc); err != nil {
				return err
			}

			version, err := s.repos.Snapshots.NextVersion(txCtx, tenantID, calc.EmployeeID, year, month)
			if err != nil {
				return err
			}
			snap := calc.Freeze(payroll.SnapshotMeta{
				ID:        newID(),
				PayrollID: p.ID,
				Version:   version,
				CreatedBy: actor,
				CreatedAt: now,
			})
			if err := s.repos.Snapshots.Insert(txCtx, snap); err != nil {
				return err
			}
			snapshots = append(snapshots, snap)
		}

		closing = payroll.NewMonthClosing(newID(), p, snapshots, actor, now)
		if err := s.repos.Snapshots.InsertMonthClosing(txCtx, closing); err != nil {
			return err
		}

		if err := s.applyGarnishments(txCtx, tenantID, snapshots, false); err != nil {
			return err
		}
		if err := s.carryDeferred(txCtx, p, snapshots); err != nil {
			return err
		}
		for _, b := range balances {
			if err := s.repos.Attendance.UpsertBalance(txCtx, b); err != nil {
				return err
			}
		}

		p.Status = payroll.PayrollStatusClosed
		p.ClosedAt = &now
		p.ClosedBy = &actor
		p.UpdatedAt = now
		if err := s.repos.Payroll.UpdateStatus(txCtx, p); err != nil {
			return err
		}

		return s.audit.Record(txCtx, audit.Entry{
			TenantID:    tenantID,
			Action:      audit.ActionMonthClose,
			EntityType:  "payroll",
			EntityID:    p.ID,
			Description: fmt.Sprintf("Payroll %02d/%d closed", month, year),
			Details: map[string]any{
				"revision":         p.Revision,
				"month_closing_id": closing.ID,
				"employee_count":   closing.EmployeeCount,
				"total_net":        closing.TotalNet.String(),
			},
			PerformedBy: actor,
		})
	})
	if err != nil {
		return payroll.MonthClosingSnapshot{}, err
	}

	if err := s.publisher.PublishMonthClosed(ctx, events.MonthClosedEvent{
		TenantID:       tenantID,
		PayrollID:      p.ID,
		MonthClosingID: closing.ID,
		Year:           year,
		Month:          month,
		Revision:       p.Revision,
		EmployeeCount:  closing.EmployeeCount,
		TotalNet:       closing.TotalNet.StringFixed(2),
		ClosedBy:       actor,
		OccurredAt:     now,
	}); err != nil {
		slog.Warn("failed to publish month closed", "tenant_id", tenantID, "year", year, "month", month, "error", err)
	}

	slog.Info("payroll month closed",
		"tenant_id", tenantID,
		"year", year,
		"month", month,
		"revision", p.Revision,
		"employees", closing.EmployeeCount,
		"duration", time.Since(started),
	)
	return closing, nil
}

// applyGarnishments moves the paid amount of every garnishment taken in the
// snapshots forward, or back when reverse is set.
func (s *ClosingServiceImpl) applyGarnishments(ctx context.Context, tenantID string, snapshots []payroll.PayrollSnapshot, reverse bool) error {
	for _, snap := range snapshots {
		for _, d := range snap.Deductions {
			if !d.Garnish || !d.Applied.IsPositive() {
				continue
			}
			delta := d.Applied
			if reverse {
				delta = delta.Neg()
			}
			if err := s.repos.Items.ApplyGarnishment(ctx, tenantID, d.SourceID, delta); err != nil {
				return err
			}
		}
	}
	return nil
}

// carryDeferred stores the unpaid part of every deduction as a deduction of the
// following month, tagged with the closing payroll. Garnishments are skipped:
// their outstanding debt already carries over.
func (s *ClosingServiceImpl) carryDeferred(ctx context.Context, p payroll.Payroll, snapshots []payroll.PayrollSnapshot) error {
	year, month := p.Year, p.Month+1
	if month > 12 {
		year, month = year+1, 1
	}
	next := payroll.Period(year, month)

	for _, snap := range snapshots {
		for _, d := range snap.Deductions {
			if d.Garnish || !d.Deferred.IsPositive() {
				continue
			}
			err := s.repos.Items.CarryForwardDeduction(ctx, payroll.EmployeeDeduction{
				TenantID:    p.TenantID,
				EmployeeID:  snap.EmployeeID,
				Code:        d.Code,
				Name:        d.Name,
				Amount:      d.Deferred,
				Priority:    d.Priority,
				FromPeriod:  next,
				ToPeriod:    next,
				CarriedFrom: p.ID,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// ========== REOPEN ==========

// Reopen starts a new revision of a closed month. Snapshots of the closed
// revision are kept; the next close writes new versions.
func (s *ClosingServiceImpl) Reopen(ctx context.Context, tenantID string, year, month int, actor, reason string) (payroll.Payroll, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return payroll.Payroll{}, apperror.InvalidInput("reason", "is required")
	}

	key := periodKey(tenantID, year, month)
	release, err := s.locker.TryLock(ctx, key)
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			return payroll.Payroll{}, apperror.ConcurrentClose(key)
		}
		return payroll.Payroll{}, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("failed to release close lock", "key", key, "error", err)
		}
	}()

	old, err := s.repos.Payroll.GetByPeriod(ctx, tenantID, year, month)
	if err != nil {
		return payroll.Payroll{}, err
	}
	if !old.IsClosed() {
		return payroll.Payroll{}, payroll.ErrMonthNotClosed
	}

	downstream, err := s.guard.HasDownstream(ctx, tenantID, year, month)
	if err != nil {
		return payroll.Payroll{}, err
	}
	if downstream {
		return payroll.Payroll{}, payroll.ErrDownstreamExists
	}

	now := s.now().UTC()
	next := payroll.Payroll{
		ID:         newID(),
		TenantID:   tenantID,
		Year:       year,
		Month:      month,
		Revision:   old.Revision + 1,
		Status:     payroll.PayrollStatusDraft,
		PreviousID: &old.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		old.Status = payroll.PayrollStatusReopened
		old.ReopenedAt = &now
		old.ReopenedBy = &actor
		old.ReopenReason = &reason
		old.UpdatedAt = now
		if err := s.repos.Payroll.UpdateStatus(txCtx, old); err != nil {
			return err
		}

		created, err := s.repos.Payroll.Create(txCtx, next)
		if err != nil {
			return err
		}
		next = created

		closing, err := s.repos.Snapshots.LatestMonthClosing(txCtx, tenantID, year, month)
		if err != nil && !errors.Is(err, payroll.ErrSnapshotNotFound) {
			return err
		}
		if err == nil && len(closing.SnapshotIDs) > 0 {
			closed, err := s.repos.Snapshots.ListByIDs(txCtx, tenantID, closing.SnapshotIDs)
			if err != nil {
				return err
			}
			if err := s.applyGarnishments(txCtx, tenantID, closed, true); err != nil {
				return err
			}
		}
		if err := s.repos.Items.DeleteCarriedDeductions(txCtx, tenantID, old.ID); err != nil {
			return err
		}

		return s.audit.Record(txCtx, audit.Entry{
			TenantID:    tenantID,
			Action:      audit.ActionMonthReopen,
			EntityType:  "payroll",
			EntityID:    old.ID,
			Description: fmt.Sprintf("Payroll %02d/%d reopened", month, year),
			Details: map[string]any{
				"reason":          reason,
				"new_payroll_id":  next.ID,
				"new_revision":    next.Revision,
				"closed_revision": old.Revision,
			},
			PerformedBy: actor,
		})
	})
	if err != nil {
		return payroll.Payroll{}, err
	}

	if err := s.publisher.PublishMonthReopened(ctx, events.MonthReopenedEvent{
		TenantID:          tenantID,
		PreviousPayrollID: old.ID,
		PayrollID:         next.ID,
		Year:              year,
		Month:             month,
		Revision:          next.Revision,
		Reason:            reason,
		ReopenedBy:        actor,
		OccurredAt:        now,
	}); err != nil {
		slog.Warn("failed to publish month reopened", "tenant_id", tenantID, "year", year, "month", month, "error", err)
	}

	slog.Info("payroll month reopened", "tenant_id", tenantID, "year", year, "month", month, "revision", next.Revision)
	return next, nil
}

// ========== SNAPSHOTS ==========

// Snapshots returns the latest version per employee.
func (s *ClosingServiceImpl) Snapshots(ctx context.Context, tenantID string, year, month int) ([]payroll.PayrollSnapshot, error) {
	return s.repos.Snapshots.ListLatest(ctx, tenantID, year, month)
}

// SnapshotHistory returns every version of an employee-month, oldest first.
func (s *ClosingServiceImpl) SnapshotHistory(ctx context.Context, tenantID, employeeID string, year, month int) ([]payroll.PayrollSnapshot, error) {
	history, err := s.repos.Snapshots.History(ctx, tenantID, employeeID, year, month)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, payroll.ErrSnapshotNotFound
	}
	return history, nil
}

func (s *ClosingServiceImpl) Payslip(ctx context.Context, tenantID, employeeID string, year, month int) ([]byte, error) {
	snap, err := s.repos.Snapshots.GetLatest(ctx, tenantID, employeeID, year, month)
	if err != nil {
		return nil, err
	}
	employer, err := s.repos.Companies.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return payslip.Render(payslip.Header{EmployerName: employer.Name, EmployerBulstat: employer.Bulstat}, snap)
}
