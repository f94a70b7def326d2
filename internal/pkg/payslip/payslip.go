// Package payslip renders a closed payroll snapshot as a PDF payslip.
package payslip

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/valstrz/payroll-engine/internal/domain/payroll"
	"github.com/valstrz/payroll-engine/internal/pkg/money"
)

type Header struct {
	EmployerName    string
	EmployerBulstat string
}

var sections = []struct {
	title string
	typ   payroll.LineType
}{
	{"Earnings", payroll.LineTypeEarning},
	{"Employee insurance", payroll.LineTypeEmployeeInsurance},
	{"Tax", payroll.LineTypeTax},
	{"Deductions", payroll.LineTypeDeduction},
	{"Employer insurance", payroll.LineTypeEmployerInsurance},
}

// Render builds the payslip from the snapshot only, so a reprint always shows
// what was closed.
func Render(h Header, s payroll.PayrollSnapshot) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("Payslip %02d/%d", s.Month, s.Year), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Payslip %02d/%d", s.Month, s.Year))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Employer: %s (%s)", h.EmployerName, h.EmployerBulstat)))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr("Employee: "+s.EmployeeData["fullName"]))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Worked days: %s of %s, version %d", s.TimesheetData["workedDays"], s.TimesheetData["workingDays"], s.Version))
	pdf.Ln(10)

	for _, sec := range sections {
		lines := linesOf(s.Lines, sec.typ)
		if len(lines) == 0 {
			continue
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 7, sec.title)
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 10)
		for _, l := range lines {
			pdf.CellFormat(20, 6, l.Code, "", 0, "L", false, 0, "")
			pdf.CellFormat(120, 6, tr(l.Name), "", 0, "L", false, 0, "")
			pdf.CellFormat(40, 6, money.Format(l.Amount), "", 1, "R", false, 0, "")
		}
		pdf.Ln(3)
	}

	pdf.SetFont("Helvetica", "B", 11)
	for _, row := range []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Gross salary", s.GrossSalary},
		{"Insurance base", s.InsuranceBase},
		{"Net salary", s.NetSalary},
	} {
		pdf.CellFormat(140, 7, row.label, "T", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, money.Format(row.amount), "T", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render payslip: %w", err)
	}
	return buf.Bytes(), nil
}

func linesOf(lines []payroll.PayrollLine, t payroll.LineType) []payroll.PayrollLine {
	var out []payroll.PayrollLine
	for _, l := range lines {
		if l.Type == t {
			out = append(out, l)
		}
	}
	return out
}
