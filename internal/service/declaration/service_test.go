package declaration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valstrz/payroll-engine/internal/domain/audit"
	"github.com/valstrz/payroll-engine/internal/domain/company"
	"github.com/valstrz/payroll-engine/internal/domain/declaration"
	"github.com/valstrz/payroll-engine/internal/domain/payroll"
	"github.com/valstrz/payroll-engine/internal/pkg/apperror"
	auditsvc "github.com/valstrz/payroll-engine/internal/service/audit"
)

type passTx struct{}

func (passTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeDeclarations struct {
	submissions []declaration.NapSubmission
	entries     []declaration.AccountingEntry
	replaced    int
}

func (f *fakeDeclarations) CreateSubmission(ctx context.Context, s declaration.NapSubmission) (declaration.NapSubmission, error) {
	f.submissions = append(f.submissions, s)
	return s, nil
}

func (f *fakeDeclarations) ListSubmissions(ctx context.Context, tenantID string, year, month int) ([]declaration.NapSubmission, error) {
	return f.submissions, nil
}

func (f *fakeDeclarations) ReplaceAccountingEntries(ctx context.Context, tenantID string, year, month int, entries []declaration.AccountingEntry) error {
	f.entries = entries
	f.replaced++
	return nil
}

func (f *fakeDeclarations) ListAccountingEntries(ctx context.Context, tenantID string, year, month int) ([]declaration.AccountingEntry, error) {
	return f.entries, nil
}

func (f *fakeDeclarations) HasDownstream(ctx context.Context, tenantID string, year, month int) (bool, error) {
	return len(f.submissions) > 0 || len(f.entries) > 0, nil
}

type fakePayrolls struct {
	payroll.PayrollRepository
	p       payroll.Payroll
	results []payroll.Calculation
}

func (f *fakePayrolls) GetByPeriod(ctx context.Context, tenantID string, year, month int) (payroll.Payroll, error) {
	if f.p.ID == "" {
		return payroll.Payroll{}, payroll.ErrPayrollNotFound
	}
	return f.p, nil
}

func (f *fakePayrolls) ListResults(ctx context.Context, tenantID, payrollID string) ([]payroll.Calculation, error) {
	return f.results, nil
}

type fakeSnapshots struct {
	payroll.SnapshotRepository
	latest  []payroll.PayrollSnapshot
	closing payroll.MonthClosingSnapshot
}

func (f *fakeSnapshots) ListLatest(ctx context.Context, tenantID string, year, month int) ([]payroll.PayrollSnapshot, error) {
	return f.latest, nil
}

func (f *fakeSnapshots) LatestMonthClosing(ctx context.Context, tenantID string, year, month int) (payroll.MonthClosingSnapshot, error) {
	if f.closing.ID == "" {
		return payroll.MonthClosingSnapshot{}, payroll.ErrSnapshotNotFound
	}
	return f.closing, nil
}

type fakeCompanies struct{}

func (fakeCompanies) GetByID(ctx context.Context, id string) (company.Company, error) {
	return acme, nil
}

func (fakeCompanies) ListActive(ctx context.Context) ([]company.Company, error) {
	return []company.Company{acme}, nil
}

type fakeAudit struct{ entries []audit.Entry }

func (f *fakeAudit) Create(ctx context.Context, e audit.Entry) error {
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeAudit) List(ctx context.Context, tenantID, entityType, entityID string) ([]audit.Entry, error) {
	return f.entries, nil
}

type declFixture struct {
	svc          *DeclarationServiceImpl
	declarations *fakeDeclarations
	payrolls     *fakePayrolls
	snapshots    *fakeSnapshots
	audits       *fakeAudit
}

func newDeclFixture(status payroll.PayrollStatus) declFixture {
	f := declFixture{
		declarations: &fakeDeclarations{},
		payrolls:     &fakePayrolls{p: payroll.Payroll{ID: "payroll-1", TenantID: "tenant-1", Year: 2025, Month: 4, Revision: 1, Status: status}},
		snapshots: &fakeSnapshots{
			latest: []payroll.PayrollSnapshot{snapshot("emp-1"), snapshot("emp-2")},
			closing: payroll.MonthClosingSnapshot{
				ID: "mc-1", TenantID: "tenant-1", Year: 2025, Month: 4,
				TotalGross: d("2400"), TotalNet: d("1862.36"), TotalIncomeTax: d("206.92"),
				TotalEmployeeInsurance: d("330.72"), TotalEmployerInsurance: d("454.08"),
			},
		},
		audits: &fakeAudit{},
	}
	f.svc = NewDeclarationService(passTx{}, Repositories{
		Declarations: f.declarations,
		Payroll:      f.payrolls,
		Snapshots:    f.snapshots,
		Companies:    fakeCompanies{},
	}, auditsvc.NewRecorder(f.audits))
	f.svc.now = func() time.Time { return time.Date(2025, 5, 5, 9, 0, 0, 0, time.UTC) }
	return f
}

func TestPrepareSubmission_D1(t *testing.T) {
	// Setup
	f := newDeclFixture(payroll.PayrollStatusClosed)

	// Act
	sub, err := f.svc.PrepareSubmission(context.Background(), "tenant-1", 2025, 4, declaration.SubmissionTypeD1, declaration.CorrectionRegular, "user-1")

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, declaration.SubmissionStatusDraft, sub.Status)
	assert.Equal(t, 2, sub.RecordCount)
	assert.Equal(t, []string{"emp-1", "emp-2"}, sub.EmployeeIDs)
	assert.Equal(t, []string{"snap-emp-1", "snap-emp-2"}, sub.SnapshotIDs)
	assert.Equal(t, "EMPL2025_123456789_04.TXT", sub.FileName)
	assert.NotEmpty(t, sub.Content)
	assert.Len(t, f.declarations.submissions, 1)
	require.Len(t, f.audits.entries, 1)
	assert.Equal(t, audit.ActionSubmissionGenerate, f.audits.entries[0].Action)
}

func TestPrepareSubmission_D6Insurance(t *testing.T) {
	f := newDeclFixture(payroll.PayrollStatusClosed)

	sub, err := f.svc.PrepareSubmission(context.Background(), "tenant-1", 2025, 4, declaration.SubmissionTypeD6Ins, declaration.CorrectionRegular, "user-1")

	require.NoError(t, err)
	assert.Equal(t, "4,2025,\"123456789\",0,784.80\r\n", string(sub.Content))
}

func TestPrepareSubmission_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("month not closed", func(t *testing.T) {
		f := newDeclFixture(payroll.PayrollStatusCalculated)
		_, err := f.svc.PrepareSubmission(ctx, "tenant-1", 2025, 4, declaration.SubmissionTypeD1, declaration.CorrectionRegular, "")
		assert.ErrorIs(t, err, payroll.ErrMonthNotClosed)
		assert.Empty(t, f.declarations.submissions)
	})

	t.Run("invalid correction code", func(t *testing.T) {
		f := newDeclFixture(payroll.PayrollStatusClosed)
		_, err := f.svc.PrepareSubmission(ctx, "tenant-1", 2025, 4, declaration.SubmissionTypeD1, declaration.CorrectionCode(5), "")
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
		assert.ErrorIs(t, err, declaration.ErrInvalidCorrectionCode)
	})

	t.Run("unknown type", func(t *testing.T) {
		f := newDeclFixture(payroll.PayrollStatusClosed)
		_, err := f.svc.PrepareSubmission(ctx, "tenant-1", 2025, 4, declaration.SubmissionType("D9"), declaration.CorrectionRegular, "")
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})

	t.Run("no snapshots", func(t *testing.T) {
		f := newDeclFixture(payroll.PayrollStatusClosed)
		f.snapshots.latest = nil
		_, err := f.svc.PrepareSubmission(ctx, "tenant-1", 2025, 4, declaration.SubmissionTypeD1, declaration.CorrectionRegular, "")
		assert.ErrorIs(t, err, declaration.ErrNothingToSubmit)
	})
}

func TestPreviewD1_UsesWorkingResultsBeforeClose(t *testing.T) {
	f := newDeclFixture(payroll.PayrollStatusCalculated)
	f.payrolls.results = []payroll.Calculation{{
		TenantID:      "tenant-1",
		EmployeeID:    "emp-7",
		Year:          2025,
		Month:         4,
		NetSalary:     d("1000"),
		EmployeeData:  map[string]string{"egn": "9001010000", "insuredType": "01"},
		TimesheetData: map[string]string{"workedDays": "22"},
	}}

	sub, err := f.svc.PreviewD1(context.Background(), "tenant-1", 2025, 4)

	require.NoError(t, err)
	assert.Empty(t, sub.ID)
	assert.Equal(t, []string{"emp-7"}, sub.EmployeeIDs)
	assert.Empty(t, f.declarations.submissions)
}

func TestGenerateAccounting_ReplacesEntries(t *testing.T) {
	f := newDeclFixture(payroll.PayrollStatusClosed)
	ctx := context.Background()

	_, err := f.svc.GenerateAccounting(ctx, "tenant-1", 2025, 4, "user-1")
	require.NoError(t, err)
	entries, err := f.svc.GenerateAccounting(ctx, "tenant-1", 2025, 4, "user-1")
	require.NoError(t, err)

	assert.Len(t, entries, 5)
	assert.Equal(t, 2, f.declarations.replaced)
	downstream, err := f.svc.HasDownstream(ctx, "tenant-1", 2025, 4)
	require.NoError(t, err)
	assert.True(t, downstream)
}

func TestSubmissionsAndAccountingEntries_ListStored(t *testing.T) {
	f := newDeclFixture(payroll.PayrollStatusClosed)
	ctx := context.Background()

	_, err := f.svc.PrepareSubmission(ctx, "tenant-1", 2025, 4, declaration.SubmissionTypeD1, declaration.CorrectionRegular, "user-1")
	require.NoError(t, err)
	_, err = f.svc.GenerateAccounting(ctx, "tenant-1", 2025, 4, "user-1")
	require.NoError(t, err)

	submissions, err := f.svc.Submissions(ctx, "tenant-1", 2025, 4)
	require.NoError(t, err)
	entries, err := f.svc.AccountingEntries(ctx, "tenant-1", 2025, 4)
	require.NoError(t, err)

	require.Len(t, submissions, 1)
	assert.Equal(t, declaration.SubmissionTypeD1, submissions[0].Type)
	assert.Len(t, entries, 5)
}

func TestBankPaymentFile_RequiresClosedMonth(t *testing.T) {
	f := newDeclFixture(payroll.PayrollStatusDraft)

	_, err := f.svc.BankPaymentFile(context.Background(), "tenant-1", 2025, 4)

	assert.ErrorIs(t, err, payroll.ErrMonthNotClosed)
}
