package declaration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/valstrz/payroll-engine/internal/domain/audit"
	"github.com/valstrz/payroll-engine/internal/domain/company"
	"github.com/valstrz/payroll-engine/internal/domain/declaration"
	"github.com/valstrz/payroll-engine/internal/domain/payroll"
	"github.com/valstrz/payroll-engine/internal/pkg/apperror"
	"github.com/valstrz/payroll-engine/internal/pkg/database"
	"github.com/valstrz/payroll-engine/internal/pkg/money"
	auditsvc "github.com/valstrz/payroll-engine/internal/service/audit"
)

type Repositories struct {
	Declarations declaration.DeclarationRepository
	Payroll      payroll.PayrollRepository
	Snapshots    payroll.SnapshotRepository
	Companies    company.CompanyRepository
}

type DeclarationServiceImpl struct {
	tx    database.TxManager
	repos Repositories
	audit *auditsvc.Recorder
	now   func() time.Time
}

func NewDeclarationService(tx database.TxManager, repos Repositories, recorder *auditsvc.Recorder) *DeclarationServiceImpl {
	return &DeclarationServiceImpl{tx: tx, repos: repos, audit: recorder, now: time.Now}
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// closedSnapshots returns the latest snapshots of a closed month.
func (s *DeclarationServiceImpl) closedSnapshots(ctx context.Context, tenantID string, year, month int) ([]payroll.PayrollSnapshot, error) {
	p, err := s.repos.Payroll.GetByPeriod(ctx, tenantID, year, month)
	if err != nil {
		return nil, err
	}
	if !p.IsClosed() {
		return nil, payroll.ErrMonthNotClosed
	}
	snapshots, err := s.repos.Snapshots.ListLatest(ctx, tenantID, year, month)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, declaration.ErrNothingToSubmit
	}
	return snapshots, nil
}

// ========== SUBMISSIONS ==========

// PrepareSubmission builds a regulator submission from the closed snapshots of
// the month and stores it as a draft.
func (s *DeclarationServiceImpl) PrepareSubmission(ctx context.Context, tenantID string, year, month int, typ declaration.SubmissionType, code declaration.CorrectionCode, actor string) (declaration.NapSubmission, error) {
	if !code.Valid() {
		return declaration.NapSubmission{}, apperror.InvalidInput("correction_code", "must be one of: 0 1 8").Wrap(declaration.ErrInvalidCorrectionCode)
	}

	snapshots, err := s.closedSnapshots(ctx, tenantID, year, month)
	if err != nil {
		return declaration.NapSubmission{}, err
	}
	employer, err := s.repos.Companies.GetByID(ctx, tenantID)
	if err != nil {
		return declaration.NapSubmission{}, err
	}

	sub := declaration.NapSubmission{
		ID:             newID(),
		TenantID:       tenantID,
		Year:           year,
		Month:          month,
		Type:           typ,
		CorrectionCode: code,
		Status:         declaration.SubmissionStatusDraft,
		RecordCount:    len(snapshots),
		CreatedBy:      actor,
		CreatedAt:      s.now().UTC(),
	}
	for _, snap := range snapshots {
		sub.EmployeeIDs = append(sub.EmployeeIDs, snap.EmployeeID)
		sub.SnapshotIDs = append(sub.SnapshotIDs, snap.ID)
	}

	switch typ {
	case declaration.SubmissionTypeD1:
		err = fillD1(&sub, employer, snapshots, code)
	case declaration.SubmissionTypeD6Ins, declaration.SubmissionTypeD6Tax:
		err = s.fillD6(ctx, &sub, employer)
	case declaration.SubmissionTypeArt62:
		// contract notifications carry no payroll figures
	default:
		return declaration.NapSubmission{}, apperror.InvalidInput("type", "must be one of: D1 D6_INS D6_TAX ART62")
	}
	if err != nil {
		return declaration.NapSubmission{}, err
	}

	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		created, err := s.repos.Declarations.CreateSubmission(txCtx, sub)
		if err != nil {
			return err
		}
		sub = created
		return s.audit.Record(txCtx, audit.Entry{
			TenantID:    tenantID,
			Action:      audit.ActionSubmissionGenerate,
			EntityType:  "nap_submission",
			EntityID:    sub.ID,
			Description: fmt.Sprintf("%s %02d/%d generated", typ, month, year),
			Details: map[string]any{
				"correction_code": int(code),
				"records":         sub.RecordCount,
				"errors":          len(sub.Errors),
			},
			PerformedBy: actor,
		})
	})
	if err != nil {
		return declaration.NapSubmission{}, err
	}

	slog.Info("submission generated",
		"tenant_id", tenantID,
		"year", year,
		"month", month,
		"type", typ,
		"records", sub.RecordCount,
		"errors", len(sub.Errors),
	)
	return sub, nil
}

func fillD1(sub *declaration.NapSubmission, employer company.Company, snapshots []payroll.PayrollSnapshot, code declaration.CorrectionCode) error {
	lines := make([]string, 0, len(snapshots))
	for _, snap := range snapshots {
		r := buildD1(employer, snap, code)
		lines = append(lines, r.line())
		sub.Errors = append(sub.Errors, r.errs...)
	}
	content, err := encodeLines(lines)
	if err != nil {
		return err
	}
	sub.Content = content
	sub.FileName = d1FileName(sub.Year, employer.Bulstat, sub.Month)
	return nil
}

// fillD6 writes the single payment record of the month: insurance or tax due.
func (s *DeclarationServiceImpl) fillD6(ctx context.Context, sub *declaration.NapSubmission, employer company.Company) error {
	closing, err := s.repos.Snapshots.LatestMonthClosing(ctx, sub.TenantID, sub.Year, sub.Month)
	if err != nil {
		return err
	}
	due := closing.TotalIncomeTax
	if sub.Type == declaration.SubmissionTypeD6Ins {
		due = closing.TotalEmployeeInsurance.Add(closing.TotalEmployerInsurance)
	}
	line := fmt.Sprintf(`%d,%d,"%s",%d,%s`, sub.Month, sub.Year, employer.Bulstat, sub.CorrectionCode, money.Format(due))
	content, err := encodeLines([]string{line})
	if err != nil {
		return err
	}
	sub.Content = content
	sub.FileName = fmt.Sprintf("%s%d_%s_%02d.TXT", sub.Type, sub.Year, employer.Bulstat, sub.Month)
	return nil
}

// PreviewD1 builds the D1 records without storing anything. Before the month is
// closed the working results are used.
func (s *DeclarationServiceImpl) PreviewD1(ctx context.Context, tenantID string, year, month int) (declaration.NapSubmission, error) {
	p, err := s.repos.Payroll.GetByPeriod(ctx, tenantID, year, month)
	if err != nil {
		return declaration.NapSubmission{}, err
	}
	employer, err := s.repos.Companies.GetByID(ctx, tenantID)
	if err != nil {
		return declaration.NapSubmission{}, err
	}

	var snapshots []payroll.PayrollSnapshot
	if p.IsClosed() {
		snapshots, err = s.repos.Snapshots.ListLatest(ctx, tenantID, year, month)
		if err != nil {
			return declaration.NapSubmission{}, err
		}
	} else {
		results, err := s.repos.Payroll.ListResults(ctx, tenantID, p.ID)
		if err != nil {
			return declaration.NapSubmission{}, err
		}
		for i := range results {
			snapshots = append(snapshots, results[i].Freeze(payroll.SnapshotMeta{PayrollID: p.ID}))
		}
	}
	if len(snapshots) == 0 {
		return declaration.NapSubmission{}, declaration.ErrNothingToSubmit
	}

	sub := declaration.NapSubmission{
		TenantID:    tenantID,
		Year:        year,
		Month:       month,
		Type:        declaration.SubmissionTypeD1,
		Status:      declaration.SubmissionStatusDraft,
		RecordCount: len(snapshots),
	}
	for _, snap := range snapshots {
		sub.EmployeeIDs = append(sub.EmployeeIDs, snap.EmployeeID)
	}
	if err := fillD1(&sub, employer, snapshots, declaration.CorrectionRegular); err != nil {
		return declaration.NapSubmission{}, err
	}
	return sub, nil
}

// Submissions lists the generated files of a month, newest first as stored.
func (s *DeclarationServiceImpl) Submissions(ctx context.Context, tenantID string, year, month int) ([]declaration.NapSubmission, error) {
	return s.repos.Declarations.ListSubmissions(ctx, tenantID, year, month)
}

// ========== ACCOUNTING ==========

// GenerateAccounting posts the closed month. Running it again replaces the
// entries of the period.
func (s *DeclarationServiceImpl) GenerateAccounting(ctx context.Context, tenantID string, year, month int, actor string) ([]declaration.AccountingEntry, error) {
	p, err := s.repos.Payroll.GetByPeriod(ctx, tenantID, year, month)
	if err != nil {
		return nil, err
	}
	if !p.IsClosed() {
		return nil, payroll.ErrMonthNotClosed
	}
	closing, err := s.repos.Snapshots.LatestMonthClosing(ctx, tenantID, year, month)
	if err != nil {
		return nil, err
	}

	entries := accountingEntries(closing, newID, s.now().UTC())
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Declarations.ReplaceAccountingEntries(txCtx, tenantID, year, month, entries); err != nil {
			return err
		}
		return s.audit.Record(txCtx, audit.Entry{
			TenantID:    tenantID,
			Action:      audit.ActionAccountingGenerate,
			EntityType:  "month_closing",
			EntityID:    closing.ID,
			Description: fmt.Sprintf("Accounting entries %02d/%d generated", month, year),
			Details:     map[string]any{"entries": len(entries)},
			PerformedBy: actor,
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *DeclarationServiceImpl) AccountingEntries(ctx context.Context, tenantID string, year, month int) ([]declaration.AccountingEntry, error) {
	return s.repos.Declarations.ListAccountingEntries(ctx, tenantID, year, month)
}

// ========== BANK PAYMENTS ==========

func (s *DeclarationServiceImpl) BankPaymentFile(ctx context.Context, tenantID string, year, month int) (declaration.BankFile, error) {
	snapshots, err := s.closedSnapshots(ctx, tenantID, year, month)
	if err != nil {
		if errors.Is(err, declaration.ErrNothingToSubmit) {
			return declaration.BankFile{}, payroll.ErrSnapshotNotFound
		}
		return declaration.BankFile{}, err
	}
	return bankFile(year, month, snapshots)
}

// HasDownstream reports whether the month fed a submission or accounting.
func (s *DeclarationServiceImpl) HasDownstream(ctx context.Context, tenantID string, year, month int) (bool, error) {
	return s.repos.Declarations.HasDownstream(ctx, tenantID, year, month)
}
