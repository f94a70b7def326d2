package declaration

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/valstrz/payroll-engine/internal/domain/declaration"
	"github.com/valstrz/payroll-engine/internal/domain/payroll"
)

// Chart of accounts used for salary postings.
const (
	accountPayrollExpense = "604"
	accountPayables       = "421"
	accountInsurance      = "461"
	accountIncomeTax      = "454"
	accountCash           = "501"
)

// accountingEntries posts the month roll-up as five debit/credit pairs.
func accountingEntries(c payroll.MonthClosingSnapshot, newID func() string, now time.Time) []declaration.AccountingEntry {
	period := fmt.Sprintf("%02d/%d", c.Month, c.Year)
	pairs := []struct {
		typ           declaration.EntryType
		debit, credit string
		amount        decimal.Decimal
		description   string
	}{
		{declaration.EntryTypeSalary, accountPayrollExpense, accountPayables, c.TotalGross, "Accrued salaries " + period},
		{declaration.EntryTypeInsuranceEmployer, accountPayrollExpense, accountInsurance, c.TotalEmployerInsurance, "Employer insurance " + period},
		{declaration.EntryTypeInsuranceEmployee, accountPayables, accountInsurance, c.TotalEmployeeInsurance, "Employee insurance withheld " + period},
		{declaration.EntryTypeTax, accountPayables, accountIncomeTax, c.TotalIncomeTax, "Income tax withheld " + period},
		{declaration.EntryTypeNetPay, accountPayables, accountCash, c.TotalNet, "Net salaries paid " + period},
	}

	entries := make([]declaration.AccountingEntry, 0, len(pairs))
	for _, p := range pairs {
		entries = append(entries, declaration.AccountingEntry{
			ID:             newID(),
			TenantID:       c.TenantID,
			Year:           c.Year,
			Month:          c.Month,
			MonthClosingID: c.ID,
			Type:           p.typ,
			DebitAccount:   p.debit,
			CreditAccount:  p.credit,
			Amount:         p.amount,
			Description:    p.description,
			CreatedAt:      now,
		})
	}
	return entries
}
