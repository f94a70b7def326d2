package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayrollStatus enum
type PayrollStatus string

const (
	PayrollStatusDraft      PayrollStatus = "draft"
	PayrollStatusCalculated PayrollStatus = "calculated"
	PayrollStatusClosed     PayrollStatus = "closed"
	PayrollStatusReopened   PayrollStatus = "reopened"
)

var transitions = map[PayrollStatus][]PayrollStatus{
	PayrollStatusDraft:      {PayrollStatusCalculated, PayrollStatusClosed},
	PayrollStatusCalculated: {PayrollStatusCalculated, PayrollStatusClosed},
	PayrollStatusClosed:     {PayrollStatusReopened},
	PayrollStatusReopened:   {PayrollStatusDraft},
}

// CanTransition reports whether a payroll may move from one status to another.
func CanTransition(from, to PayrollStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Payroll - working calculation record for (tenant, year, month). A reopened
// month gets a new Payroll with Revision+1; the old one stays as history.
type Payroll struct {
	ID           string
	TenantID     string
	Year         int
	Month        int
	Revision     int
	Status       PayrollStatus
	PreviousID   *string
	CalculatedAt *time.Time
	ClosedAt     *time.Time
	ClosedBy     *string
	ReopenedAt   *time.Time
	ReopenedBy   *string
	ReopenReason *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p Payroll) IsClosed() bool {
	return p.Status == PayrollStatusClosed
}

// Period formats yyyymm as used by item validity ranges.
func Period(year, month int) int {
	return year*100 + month
}

// PayItem - catalog entry for an addition to gross pay
type PayItem struct {
	Code      string
	Name      string
	Insurable bool
	Taxable   bool
	// SocialExpense items count towards the social-expense tax exemption.
	SocialExpense bool
}

// DeductionKind orders deductions: statutory before voluntary.
type DeductionKind string

const (
	DeductionKindStatutory DeductionKind = "statutory"
	DeductionKindAdvance   DeductionKind = "advance"
	DeductionKindVoluntary DeductionKind = "voluntary"
)

// DeductionItem - catalog entry for a subtraction from net pay
type DeductionItem struct {
	Code string
	Name string
	Kind DeductionKind
}

// EmployeePayItem - an employee-specific addition valid for a yyyymm range
type EmployeePayItem struct {
	ID         string
	TenantID   string
	EmployeeID string
	Code       string
	Name       string
	Amount     decimal.Decimal
	FromPeriod int // yyyymm
	ToPeriod   int // yyyymm, 0 = open-ended
	Insurable  bool
	Taxable    bool

	SocialExpense bool
}

func (i EmployeePayItem) IsValidFor(year, month int) bool {
	p := Period(year, month)
	return p >= i.FromPeriod && (i.ToPeriod == 0 || p <= i.ToPeriod)
}

// EmployeeDeduction - an employee-specific deduction valid for a yyyymm range
type EmployeeDeduction struct {
	ID         string
	TenantID   string
	EmployeeID string
	Code       string
	Name       string
	Kind       DeductionKind
	Amount     decimal.Decimal
	Priority   int
	FromPeriod int
	ToPeriod   int
	// CarriedFrom is the payroll whose close deferred this amount; empty for
	// deductions entered by hand.
	CarriedFrom string
}

func (d EmployeeDeduction) IsValidFor(year, month int) bool {
	p := Period(year, month)
	return p >= d.FromPeriod && (d.ToPeriod == 0 || p <= d.ToPeriod)
}

type GarnishmentType string

const (
	GarnishmentTypeAlimony GarnishmentType = "ALIMONY"
	GarnishmentTypeCHSI    GarnishmentType = "CHSI"   // private enforcement agent
	GarnishmentTypePublic  GarnishmentType = "PUBLIC" // public receivables
)

// Garnishment - court or public enforcement order against salary
type Garnishment struct {
	ID            string
	TenantID      string
	EmployeeID    string
	Type          GarnishmentType
	Description   string
	Priority      int
	HasChildren   bool
	TotalAmount   decimal.Decimal // zero for open-ended alimony
	PaidAmount    decimal.Decimal
	MonthlyAmount decimal.Decimal
	Active        bool
	UpdatedAt     time.Time
}

// Remaining is the unpaid debt; zero TotalAmount means no limit.
func (g Garnishment) Remaining() (decimal.Decimal, bool) {
	if g.TotalAmount.IsZero() {
		return decimal.Zero, false
	}
	rem := g.TotalAmount.Sub(g.PaidAmount)
	if rem.IsNegative() {
		rem = decimal.Zero
	}
	return rem, true
}
