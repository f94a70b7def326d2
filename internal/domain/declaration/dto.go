package declaration

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/valstrz/payroll-engine/internal/pkg/validator"
)

type PrepareSubmissionRequest struct {
	Type           string `json:"type" validate:"required,oneof=D1 D6_INS D6_TAX ART62"`
	CorrectionCode int    `json:"correction_code" validate:"oneof=0 1 8"`
}

func (r *PrepareSubmissionRequest) Validate() error {
	return validator.Struct(r)
}

type SubmissionResponse struct {
	ID             string        `json:"id"`
	Year           int           `json:"year"`
	Month          int           `json:"month"`
	Type           string        `json:"type"`
	CorrectionCode int           `json:"correction_code"`
	Status         string        `json:"status"`
	RecordCount    int           `json:"record_count"`
	FileName       string        `json:"file_name"`
	EmployeeIDs    []string      `json:"employee_ids"`
	Errors         []RecordError `json:"errors"`
	CreatedAt      time.Time     `json:"created_at"`
}

func NewSubmissionResponse(s NapSubmission) SubmissionResponse {
	errs := s.Errors
	if errs == nil {
		errs = []RecordError{}
	}
	return SubmissionResponse{
		ID:             s.ID,
		Year:           s.Year,
		Month:          s.Month,
		Type:           string(s.Type),
		CorrectionCode: int(s.CorrectionCode),
		Status:         string(s.Status),
		RecordCount:    s.RecordCount,
		FileName:       s.FileName,
		EmployeeIDs:    s.EmployeeIDs,
		Errors:         errs,
		CreatedAt:      s.CreatedAt,
	}
}

type AccountingEntryResponse struct {
	Type          string          `json:"type"`
	DebitAccount  string          `json:"debit_account"`
	CreditAccount string          `json:"credit_account"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
}

func NewAccountingEntryResponses(entries []AccountingEntry) []AccountingEntryResponse {
	out := make([]AccountingEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AccountingEntryResponse{
			Type:          string(e.Type),
			DebitAccount:  e.DebitAccount,
			CreditAccount: e.CreditAccount,
			Amount:        e.Amount,
			Description:   e.Description,
		})
	}
	return out
}

type BankPaymentResponse struct {
	EmployeeID string          `json:"employee_id"`
	Name       string          `json:"name"`
	IBAN       string          `json:"iban"`
	BIC        string          `json:"bic"`
	Amount     decimal.Decimal `json:"amount"`
}

type BankFileResponse struct {
	FileName string                `json:"file_name"`
	Total    decimal.Decimal       `json:"total"`
	Payments []BankPaymentResponse `json:"payments"`
	Warnings []string              `json:"warnings"`
}

func NewBankFileResponse(f BankFile) BankFileResponse {
	payments := make([]BankPaymentResponse, 0, len(f.Payments))
	for _, p := range f.Payments {
		payments = append(payments, BankPaymentResponse{EmployeeID: p.EmployeeID, Name: p.Name, IBAN: p.IBAN, BIC: p.BIC, Amount: p.Amount})
	}
	warnings := f.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return BankFileResponse{FileName: f.FileName, Total: f.Total, Payments: payments, Warnings: warnings}
}
