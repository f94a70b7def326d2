package declaration

import "context"

type DeclarationService interface {
	PrepareSubmission(ctx context.Context, tenantID string, year, month int, typ SubmissionType, code CorrectionCode, actor string) (NapSubmission, error)
	PreviewD1(ctx context.Context, tenantID string, year, month int) (NapSubmission, error)
	Submissions(ctx context.Context, tenantID string, year, month int) ([]NapSubmission, error)
	GenerateAccounting(ctx context.Context, tenantID string, year, month int, actor string) ([]AccountingEntry, error)
	AccountingEntries(ctx context.Context, tenantID string, year, month int) ([]AccountingEntry, error)
	BankPaymentFile(ctx context.Context, tenantID string, year, month int) (BankFile, error)
	HasDownstream(ctx context.Context, tenantID string, year, month int) (bool, error)
}
