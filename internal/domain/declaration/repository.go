package declaration

import "context"

type DeclarationRepository interface {
	CreateSubmission(ctx context.Context, s NapSubmission) (NapSubmission, error)
	ListSubmissions(ctx context.Context, tenantID string, year, month int) ([]NapSubmission, error)

	// ReplaceAccountingEntries deletes the period's entries and inserts entries.
	ReplaceAccountingEntries(ctx context.Context, tenantID string, year, month int, entries []AccountingEntry) error
	ListAccountingEntries(ctx context.Context, tenantID string, year, month int) ([]AccountingEntry, error)

	// HasDownstream reports whether any submission or accounting entry exists for the period.
	HasDownstream(ctx context.Context, tenantID string, year, month int) (bool, error)
}
