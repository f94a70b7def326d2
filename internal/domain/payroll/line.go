package payroll

import "github.com/shopspring/decimal"

type LineType string

const (
	LineTypeEarning           LineType = "earning"
	LineTypeEmployeeInsurance LineType = "insurance_employee"
	LineTypeEmployerInsurance LineType = "insurance_employer"
	LineTypeTax               LineType = "tax"
	LineTypeDeduction         LineType = "deduction"
)

// Payslip line codes.
const (
	CodeBaseSalary      = "101"
	CodeSeniority       = "201"
	CodeOvertimeWeekday = "211"
	CodeOvertimeWeekend = "212"
	CodeOvertimeHoliday = "213"
	CodeNightWork       = "214"
	CodePaidLeave       = "321"
	CodeSickEmployer    = "160"

	CodePensionEmployee      = "221"
	CodeSicknessEmployee     = "255"
	CodeUnemploymentEmployee = "261"
	CodeSupplementaryEmp     = "281"
	CodeHealthEmployee       = "201"

	CodeIncomeTax   = "500"
	CodeGarnishment = "451"

	CodePensionEmployer      = "621"
	CodeSicknessEmployer     = "655"
	CodeUnemploymentEmployer = "661"
	CodeSupplementaryEmpr    = "687"
	CodeHealthEmployer       = "601"
	CodeWorkAccident         = "685"
	CodeProfessionalPension  = "688"
	CodeTeacherPension       = "791"
)

// PayrollLine - one payslip line. Amount is final at money scale.
type PayrollLine struct {
	Code      string            `json:"code"`
	Name      string            `json:"name"`
	Type      LineType          `json:"type"`
	Base      decimal.Decimal   `json:"base"`
	Rate      decimal.Decimal   `json:"rate"`
	Quantity  decimal.Decimal   `json:"quantity"`
	Amount    decimal.Decimal   `json:"amount"`
	Insurable bool              `json:"insurable"`
	Taxable   bool              `json:"taxable"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AppliedDeduction records how much of a requested deduction was taken this
// period and how much was deferred to the next open period.
type AppliedDeduction struct {
	SourceID  string          `json:"source_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Requested decimal.Decimal `json:"requested"`
	Applied   decimal.Decimal `json:"applied"`
	Deferred  decimal.Decimal `json:"deferred"`
	Priority  int             `json:"priority,omitempty"`
	Garnish   bool            `json:"garnishment"`
}
