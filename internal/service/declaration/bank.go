package declaration

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/valstrz/payroll-engine/internal/domain/declaration"
	"github.com/valstrz/payroll-engine/internal/domain/payroll"
	"github.com/valstrz/payroll-engine/internal/pkg/money"
	"golang.org/x/text/encoding/charmap"
)

var bankHeader = []string{"IBAN", "BIC", "Сума", "Получател", "Основание"}

// bankFile lists one transfer per employee with a positive net salary and an
// IBAN. Skipped employees are reported as warnings.
func bankFile(year, month int, snapshots []payroll.PayrollSnapshot) (declaration.BankFile, error) {
	out := declaration.BankFile{
		FileName: fmt.Sprintf("salaries_%d_%02d.csv", year, month),
		Total:    decimal.Zero,
	}
	description := fmt.Sprintf("Salary %02d/%d", month, year)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'
	w.UseCRLF = true
	if err := w.Write(bankHeader); err != nil {
		return declaration.BankFile{}, err
	}

	for _, s := range snapshots {
		name := s.EmployeeData["fullName"]
		iban := strings.ReplaceAll(s.EmployeeData["iban"], " ", "")
		if iban == "" {
			out.Warnings = append(out.Warnings, fmt.Sprintf("%s: no IBAN", name))
			continue
		}
		if !s.NetSalary.IsPositive() {
			out.Warnings = append(out.Warnings, fmt.Sprintf("%s: net salary is not positive", name))
			continue
		}

		p := declaration.BankPayment{
			EmployeeID:  s.EmployeeID,
			Name:        name,
			IBAN:        iban,
			BIC:         s.EmployeeData["bic"],
			Amount:      money.Round(s.NetSalary),
			Description: description,
		}
		if err := w.Write([]string{p.IBAN, p.BIC, money.Format(p.Amount), p.Name, p.Description}); err != nil {
			return declaration.BankFile{}, err
		}
		out.Payments = append(out.Payments, p)
		out.Total = out.Total.Add(p.Amount)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return declaration.BankFile{}, fmt.Errorf("failed to write bank file: %w", err)
	}
	content, err := charmap.Windows1251.NewEncoder().Bytes(buf.Bytes())
	if err != nil {
		return declaration.BankFile{}, fmt.Errorf("failed to encode bank file: %w", err)
	}
	out.Content = content
	return out, nil
}
