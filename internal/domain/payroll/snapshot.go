package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

type SnapshotStatus string

const SnapshotStatusClosed SnapshotStatus = "closed"

// PayrollSnapshot - immutable, versioned payslip of one employee-month. Rows are
// only ever inserted; a correction is a new Version.
type PayrollSnapshot struct {
	ID         string
	TenantID   string
	PayrollID  string
	EmployeeID string
	Year       int
	Month      int
	Version    int
	Status     SnapshotStatus

	GrossSalary            decimal.Decimal
	InsurableIncome        decimal.Decimal
	InsuranceBase          decimal.Decimal
	TaxBase                decimal.Decimal
	IncomeTax              decimal.Decimal
	TotalEmployeeInsurance decimal.Decimal
	TotalEmployerInsurance decimal.Decimal
	TotalDeductions        decimal.Decimal
	NetSalary              decimal.Decimal
	TotalEmployerCost      decimal.Decimal

	Lines             []PayrollLine
	Deductions        []AppliedDeduction
	EmployeeData      map[string]string
	LegislationParams map[string]string
	TimesheetData     map[string]string

	CalculatedAt time.Time
	CreatedBy    string
	CreatedAt    time.Time
}

// MonthClosingSnapshot - immutable roll-up of a closed month
type MonthClosingSnapshot struct {
	ID        string
	TenantID  string
	PayrollID string
	Year      int
	Month     int
	Revision  int

	EmployeeCount          int
	TotalGross             decimal.Decimal
	TotalNet               decimal.Decimal
	TotalEmployerCost      decimal.Decimal
	TotalIncomeTax         decimal.Decimal
	TotalEmployeeInsurance decimal.Decimal
	TotalEmployerInsurance decimal.Decimal
	TotalDeductions        decimal.Decimal
	SnapshotIDs            []string

	ClosedBy string
	ClosedAt time.Time
}

// NewMonthClosing rolls up the snapshots of a month.
func NewMonthClosing(id string, p Payroll, snapshots []PayrollSnapshot, closedBy string, closedAt time.Time) MonthClosingSnapshot {
	m := MonthClosingSnapshot{
		ID:                     id,
		TenantID:               p.TenantID,
		PayrollID:              p.ID,
		Year:                   p.Year,
		Month:                  p.Month,
		Revision:               p.Revision,
		EmployeeCount:          len(snapshots),
		TotalGross:             decimal.Zero,
		TotalNet:               decimal.Zero,
		TotalEmployerCost:      decimal.Zero,
		TotalIncomeTax:         decimal.Zero,
		TotalEmployeeInsurance: decimal.Zero,
		TotalEmployerInsurance: decimal.Zero,
		TotalDeductions:        decimal.Zero,
		SnapshotIDs:            make([]string, 0, len(snapshots)),
		ClosedBy:               closedBy,
		ClosedAt:               closedAt,
	}
	for _, s := range snapshots {
		m.TotalGross = m.TotalGross.Add(s.GrossSalary)
		m.TotalNet = m.TotalNet.Add(s.NetSalary)
		m.TotalEmployerCost = m.TotalEmployerCost.Add(s.TotalEmployerCost)
		m.TotalIncomeTax = m.TotalIncomeTax.Add(s.IncomeTax)
		m.TotalEmployeeInsurance = m.TotalEmployeeInsurance.Add(s.TotalEmployeeInsurance)
		m.TotalEmployerInsurance = m.TotalEmployerInsurance.Add(s.TotalEmployerInsurance)
		m.TotalDeductions = m.TotalDeductions.Add(s.TotalDeductions)
		m.SnapshotIDs = append(m.SnapshotIDs, s.ID)
	}
	return m
}
