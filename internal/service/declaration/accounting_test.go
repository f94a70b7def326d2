package declaration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valstrz/payroll-engine/internal/domain/declaration"
	"github.com/valstrz/payroll-engine/internal/domain/payroll"
)

func TestAccountingEntries_FivePairs(t *testing.T) {
	closing := payroll.MonthClosingSnapshot{
		ID:                     "mc-1",
		TenantID:               "tenant-1",
		Year:                   2025,
		Month:                  4,
		TotalGross:             d("2400"),
		TotalEmployerInsurance: d("454.08"),
		TotalEmployeeInsurance: d("330.72"),
		TotalIncomeTax:         d("206.92"),
		TotalNet:               d("1862.36"),
	}
	n := 0
	newID := func() string { n++; return "e" + string(rune('0'+n)) }

	entries := accountingEntries(closing, newID, time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC))

	require.Len(t, entries, 5)
	want := []struct {
		typ           declaration.EntryType
		debit, credit string
		amount        string
	}{
		{declaration.EntryTypeSalary, "604", "421", "2400"},
		{declaration.EntryTypeInsuranceEmployer, "604", "461", "454.08"},
		{declaration.EntryTypeInsuranceEmployee, "421", "461", "330.72"},
		{declaration.EntryTypeTax, "421", "454", "206.92"},
		{declaration.EntryTypeNetPay, "421", "501", "1862.36"},
	}
	for i, w := range want {
		assert.Equal(t, w.typ, entries[i].Type)
		assert.Equal(t, w.debit, entries[i].DebitAccount)
		assert.Equal(t, w.credit, entries[i].CreditAccount)
		assert.Equal(t, w.amount, entries[i].Amount.String())
		assert.Equal(t, "mc-1", entries[i].MonthClosingID)
	}
	assert.Equal(t, "e1", entries[0].ID)
}
