package payslip

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valstrz/payroll-engine/internal/domain/payroll"
	"github.com/valstrz/payroll-engine/internal/pkg/money"
)

func TestRender_ProducesPDF(t *testing.T) {
	s := payroll.PayrollSnapshot{
		EmployeeID:  "emp-1",
		Year:        2025,
		Month:       4,
		Version:     2,
		GrossSalary: money.MustParse("1200"),
		NetSalary:   money.MustParse("931.18"),
		Lines: []payroll.PayrollLine{
			{Type: payroll.LineTypeEarning, Code: payroll.CodeBaseSalary, Name: "Base salary", Amount: money.MustParse("1200")},
			{Type: payroll.LineTypeTax, Code: payroll.CodeIncomeTax, Name: "Income tax", Amount: money.MustParse("103.46")},
		},
		EmployeeData:  map[string]string{"fullName": "Ivan Petrov"},
		TimesheetData: map[string]string{"workedDays": "21", "workingDays": "21"},
	}

	out, err := Render(Header{EmployerName: "Acme Ltd", EmployerBulstat: "123456789"}, s)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
