package declaration

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubmissionType enum
type SubmissionType string

const (
	SubmissionTypeD1    SubmissionType = "D1"
	SubmissionTypeD6Ins SubmissionType = "D6_INS"
	SubmissionTypeD6Tax SubmissionType = "D6_TAX"
	SubmissionTypeArt62 SubmissionType = "ART62"
)

// CorrectionCode of a regulator submission.
type CorrectionCode int

const (
	CorrectionRegular    CorrectionCode = 0
	CorrectionCorrecting CorrectionCode = 1
	CorrectionVoiding    CorrectionCode = 8
)

func (c CorrectionCode) Valid() bool {
	return c == CorrectionRegular || c == CorrectionCorrecting || c == CorrectionVoiding
}

type SubmissionStatus string

const (
	SubmissionStatusDraft     SubmissionStatus = "draft"
	SubmissionStatusGenerated SubmissionStatus = "generated"
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
)

// RecordError - a per-employee problem found while building records
type RecordError struct {
	EmployeeID string `json:"employee_id,omitempty"`
	Field      string `json:"field"`
	Message    string `json:"message"`
}

// NapSubmission - a generated regulator file bound to the snapshots it was built from
type NapSubmission struct {
	ID             string
	TenantID       string
	Year           int
	Month          int
	Type           SubmissionType
	CorrectionCode CorrectionCode
	EmployeeIDs    []string
	SnapshotIDs    []string
	Status         SubmissionStatus
	RecordCount    int
	FileName       string
	Content        []byte // encoded file body
	Errors         []RecordError
	CreatedBy      string
	CreatedAt      time.Time
}

// EntryType of a generated accounting entry.
type EntryType string

const (
	EntryTypeSalary            EntryType = "SALARY"
	EntryTypeInsuranceEmployer EntryType = "INSURANCE_EMPLOYER"
	EntryTypeInsuranceEmployee EntryType = "INSURANCE_EMPLOYEE"
	EntryTypeTax               EntryType = "TAX"
	EntryTypeNetPay            EntryType = "NET_PAY"
)

// AccountingEntry - one debit/credit pair generated from a MonthClosingSnapshot
type AccountingEntry struct {
	ID             string
	TenantID       string
	Year           int
	Month          int
	MonthClosingID string
	Type           EntryType
	DebitAccount   string
	CreditAccount  string
	Amount         decimal.Decimal
	Description    string
	CreatedAt      time.Time
}

// BankPayment - one transfer line of a salary payment file
type BankPayment struct {
	EmployeeID  string
	Name        string
	IBAN        string
	BIC         string
	Amount      decimal.Decimal
	Description string
}

type BankFile struct {
	FileName string
	Content  []byte
	Payments []BankPayment
	Total    decimal.Decimal
	Warnings []string
}
