package payroll

import (
	"maps"
	"time"

	"github.com/shopspring/decimal"
)

// Calculation is the mutable working result of one employee-month. It is frozen
// into a PayrollSnapshot when the month closes.
type Calculation struct {
	TenantID   string
	PayrollID  string
	EmployeeID string
	Year       int
	Month      int

	Lines      []PayrollLine
	Deductions []AppliedDeduction

	GrossSalary            decimal.Decimal
	InsurableIncome        decimal.Decimal // insurable part of gross before clamping
	InsuranceBase          decimal.Decimal // clamped to [floor, ceiling]
	TaxBase                decimal.Decimal
	IncomeTax              decimal.Decimal
	TotalEmployeeInsurance decimal.Decimal
	TotalEmployerInsurance decimal.Decimal
	TotalDeductions        decimal.Decimal
	NetSalary              decimal.Decimal
	TotalEmployerCost      decimal.Decimal

	EmployeeData      map[string]string
	LegislationParams map[string]string
	TimesheetData     map[string]string

	CalculatedAt time.Time
}

func (c *Calculation) AddLine(l PayrollLine) {
	c.Lines = append(c.Lines, l)
}

// LinesOf returns the lines of one type in insertion order.
func (c *Calculation) LinesOf(t LineType) []PayrollLine {
	var out []PayrollLine
	for _, l := range c.Lines {
		if l.Type == t {
			out = append(out, l)
		}
	}
	return out
}

// Sum adds the amounts of all lines of type t.
func (c *Calculation) Sum(t LineType) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		if l.Type == t {
			sum = sum.Add(l.Amount)
		}
	}
	return sum
}

// Deferred is the total of deduction amounts carried to the next period.
func (c *Calculation) Deferred() decimal.Decimal {
	sum := decimal.Zero
	for _, d := range c.Deductions {
		sum = sum.Add(d.Deferred)
	}
	return sum
}

// SnapshotMeta identifies a snapshot being frozen.
type SnapshotMeta struct {
	ID        string
	PayrollID string
	Version   int
	CreatedBy string
	CreatedAt time.Time
}

// Freeze produces an immutable copy. Nothing in the returned value aliases c.
func (c *Calculation) Freeze(meta SnapshotMeta) PayrollSnapshot {
	lines := make([]PayrollLine, len(c.Lines))
	for i, l := range c.Lines {
		l.Metadata = maps.Clone(l.Metadata)
		lines[i] = l
	}
	deductions := make([]AppliedDeduction, len(c.Deductions))
	copy(deductions, c.Deductions)

	return PayrollSnapshot{
		ID:                     meta.ID,
		TenantID:               c.TenantID,
		PayrollID:              meta.PayrollID,
		EmployeeID:             c.EmployeeID,
		Year:                   c.Year,
		Month:                  c.Month,
		Version:                meta.Version,
		Status:                 SnapshotStatusClosed,
		GrossSalary:            c.GrossSalary,
		InsurableIncome:        c.InsurableIncome,
		InsuranceBase:          c.InsuranceBase,
		TaxBase:                c.TaxBase,
		IncomeTax:              c.IncomeTax,
		TotalEmployeeInsurance: c.TotalEmployeeInsurance,
		TotalEmployerInsurance: c.TotalEmployerInsurance,
		TotalDeductions:        c.TotalDeductions,
		NetSalary:              c.NetSalary,
		TotalEmployerCost:      c.TotalEmployerCost,
		Lines:                  lines,
		Deductions:             deductions,
		EmployeeData:           maps.Clone(c.EmployeeData),
		LegislationParams:      maps.Clone(c.LegislationParams),
		TimesheetData:          maps.Clone(c.TimesheetData),
		CalculatedAt:           c.CalculatedAt,
		CreatedBy:              meta.CreatedBy,
		CreatedAt:              meta.CreatedAt,
	}
}

// EmployeeFailure - a recoverable per-employee error collected during a batch run
type EmployeeFailure struct {
	EmployeeID string `json:"employee_id"`
	Code       string `json:"code"`
	Field      string `json:"field,omitempty"`
	Message    string `json:"message"`
}

// BatchResult - outcome of calculating a month; partial when Failures is non-empty
type BatchResult struct {
	PayrollID    string
	Year         int
	Month        int
	Calculations []Calculation
	Failures     []EmployeeFailure
}

func (b BatchResult) Partial() bool {
	return len(b.Failures) > 0
}
