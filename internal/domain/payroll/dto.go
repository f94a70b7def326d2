package payroll

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/valstrz/payroll-engine/internal/pkg/validator"
)

// ========== PERIOD ==========

type PeriodRequest struct {
	Year  int `json:"year" validate:"required,min=2000,max=2100"`
	Month int `json:"month" validate:"required,min=1,max=12"`
}

func (r *PeriodRequest) Validate() error {
	return validator.Struct(r)
}

type ReopenRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

func (r *ReopenRequest) Validate() error {
	return validator.Struct(r)
}

// ========== RESPONSES ==========

type PayrollResponse struct {
	ID           string     `json:"id"`
	Year         int        `json:"year"`
	Month        int        `json:"month"`
	Revision     int        `json:"revision"`
	Status       string     `json:"status"`
	CalculatedAt *time.Time `json:"calculated_at,omitempty"`
	ClosedAt     *time.Time `json:"closed_at,omitempty"`
	ClosedBy     *string    `json:"closed_by,omitempty"`
}

func NewPayrollResponse(p Payroll) PayrollResponse {
	return PayrollResponse{
		ID:           p.ID,
		Year:         p.Year,
		Month:        p.Month,
		Revision:     p.Revision,
		Status:       string(p.Status),
		CalculatedAt: p.CalculatedAt,
		ClosedAt:     p.ClosedAt,
		ClosedBy:     p.ClosedBy,
	}
}

type TotalsResponse struct {
	GrossSalary            decimal.Decimal `json:"gross_salary"`
	InsuranceBase          decimal.Decimal `json:"insurance_base"`
	TaxBase                decimal.Decimal `json:"tax_base"`
	IncomeTax              decimal.Decimal `json:"income_tax"`
	TotalEmployeeInsurance decimal.Decimal `json:"total_employee_insurance"`
	TotalEmployerInsurance decimal.Decimal `json:"total_employer_insurance"`
	TotalDeductions        decimal.Decimal `json:"total_deductions"`
	NetSalary              decimal.Decimal `json:"net_salary"`
	TotalEmployerCost      decimal.Decimal `json:"total_employer_cost"`
}

type CalculationResponse struct {
	EmployeeID string             `json:"employee_id"`
	Year       int                `json:"year"`
	Month      int                `json:"month"`
	Version    int                `json:"version,omitempty"`
	Totals     TotalsResponse     `json:"totals"`
	Lines      []PayrollLine      `json:"lines"`
	Deductions []AppliedDeduction `json:"deductions,omitempty"`
}

func NewCalculationResponse(c Calculation) CalculationResponse {
	return CalculationResponse{
		EmployeeID: c.EmployeeID,
		Year:       c.Year,
		Month:      c.Month,
		Totals: TotalsResponse{
			GrossSalary:            c.GrossSalary,
			InsuranceBase:          c.InsuranceBase,
			TaxBase:                c.TaxBase,
			IncomeTax:              c.IncomeTax,
			TotalEmployeeInsurance: c.TotalEmployeeInsurance,
			TotalEmployerInsurance: c.TotalEmployerInsurance,
			TotalDeductions:        c.TotalDeductions,
			NetSalary:              c.NetSalary,
			TotalEmployerCost:      c.TotalEmployerCost,
		},
		Lines:      c.Lines,
		Deductions: c.Deductions,
	}
}

func NewSnapshotResponse(s PayrollSnapshot) CalculationResponse {
	return CalculationResponse{
		EmployeeID: s.EmployeeID,
		Year:       s.Year,
		Month:      s.Month,
		Version:    s.Version,
		Totals: TotalsResponse{
			GrossSalary:            s.GrossSalary,
			InsuranceBase:          s.InsuranceBase,
			TaxBase:                s.TaxBase,
			IncomeTax:              s.IncomeTax,
			TotalEmployeeInsurance: s.TotalEmployeeInsurance,
			TotalEmployerInsurance: s.TotalEmployerInsurance,
			TotalDeductions:        s.TotalDeductions,
			NetSalary:              s.NetSalary,
			TotalEmployerCost:      s.TotalEmployerCost,
		},
		Lines:      s.Lines,
		Deductions: s.Deductions,
	}
}

type BatchResponse struct {
	PayrollID string                `json:"payroll_id"`
	Year      int                   `json:"year"`
	Month     int                   `json:"month"`
	Partial   bool                  `json:"partial"`
	Results   []CalculationResponse `json:"results"`
	Failures  []EmployeeFailure     `json:"failures"`
}

func NewBatchResponse(b BatchResult) BatchResponse {
	results := make([]CalculationResponse, 0, len(b.Calculations))
	for _, c := range b.Calculations {
		results = append(results, NewCalculationResponse(c))
	}
	failures := b.Failures
	if failures == nil {
		failures = []EmployeeFailure{}
	}
	return BatchResponse{
		PayrollID: b.PayrollID,
		Year:      b.Year,
		Month:     b.Month,
		Partial:   b.Partial(),
		Results:   results,
		Failures:  failures,
	}
}

type MonthClosingResponse struct {
	ID                     string          `json:"id"`
	PayrollID              string          `json:"payroll_id"`
	Year                   int             `json:"year"`
	Month                  int             `json:"month"`
	Revision               int             `json:"revision"`
	EmployeeCount          int             `json:"employee_count"`
	TotalGross             decimal.Decimal `json:"total_gross"`
	TotalNet               decimal.Decimal `json:"total_net"`
	TotalEmployerCost      decimal.Decimal `json:"total_employer_cost"`
	TotalIncomeTax         decimal.Decimal `json:"total_income_tax"`
	TotalEmployeeInsurance decimal.Decimal `json:"total_employee_insurance"`
	TotalEmployerInsurance decimal.Decimal `json:"total_employer_insurance"`
	TotalDeductions        decimal.Decimal `json:"total_deductions"`
	ClosedBy               string          `json:"closed_by"`
	ClosedAt               time.Time       `json:"closed_at"`
}

func NewMonthClosingResponse(m MonthClosingSnapshot) MonthClosingResponse {
	return MonthClosingResponse{
		ID:                     m.ID,
		PayrollID:              m.PayrollID,
		Year:                   m.Year,
		Month:                  m.Month,
		Revision:               m.Revision,
		EmployeeCount:          m.EmployeeCount,
		TotalGross:             m.TotalGross,
		TotalNet:               m.TotalNet,
		TotalEmployerCost:      m.TotalEmployerCost,
		TotalIncomeTax:         m.TotalIncomeTax,
		TotalEmployeeInsurance: m.TotalEmployeeInsurance,
		TotalEmployerInsurance: m.TotalEmployerInsurance,
		TotalDeductions:        m.TotalDeductions,
		ClosedBy:               m.ClosedBy,
		ClosedAt:               m.ClosedAt,
	}
}
