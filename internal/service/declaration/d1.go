package declaration

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/valstrz/payroll-engine/internal/domain/calendar"
	"github.com/valstrz/payroll-engine/internal/domain/company"
	"github.com/valstrz/payroll-engine/internal/domain/declaration"
	"github.com/valstrz/payroll-engine/internal/domain/payroll"
	"github.com/valstrz/payroll-engine/internal/pkg/money"
	"golang.org/x/text/encoding/charmap"
)

const (
	d1FieldCount    = 53
	d1FundCode      = "000"
	maxSurnameLen   = 25
	employerSickCap = 3
)

// Text fields of the D1 record are quoted; numbers are not.
var d1Quoted = map[int]bool{2: true, 3: true, 5: true, 6: true, 27: true, 28: true, 29: true, 30: true, 50: true, 52: true}

type d1Record struct {
	employeeID string
	fields     []string
	errs       []declaration.RecordError
}

func (r d1Record) line() string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		if d1Quoted[i] {
			f = `"` + f + `"`
		}
		out[i] = f
	}
	return strings.Join(out, ",")
}

// buildD1 fills the 53 fields of one insured person from a snapshot. Only the
// snapshot is read so the file always matches what was closed.
func buildD1(employer company.Company, s payroll.PayrollSnapshot, code declaration.CorrectionCode) d1Record {
	r := d1Record{employeeID: s.EmployeeID, fields: make([]string, d1FieldCount)}
	f := r.fields
	emp, params, ts := s.EmployeeData, s.LegislationParams, s.TimesheetData

	invalid := func(field, msg string) {
		r.errs = append(r.errs, declaration.RecordError{EmployeeID: s.EmployeeID, Field: field, Message: msg})
	}

	f[0] = strconv.Itoa(s.Month)
	f[1] = strconv.Itoa(s.Year)
	f[2] = employer.Bulstat
	if employer.Bulstat == "" {
		invalid("bulstat", "employer identification code is missing")
	}
	f[3] = emp["egn"]
	if f[3] == "" {
		invalid("egn", "personal number is missing")
	}
	f[4] = "0"
	f[5] = truncateRunes(emp["lastName"], maxSurnameLen)
	f[6] = emp["initials"]
	f[7] = emp["insuredType"]
	if f[7] == "" {
		invalid("insuredType", "insured type is missing")
	}

	first, last := insuredDays(s.Year, s.Month, emp["startDate"], emp["endDate"])
	f[8] = strconv.Itoa(first)
	f[9] = strconv.Itoa(last)

	worked := atoi(ts["workedDays"])
	sick := atoi(ts["sickDays"])
	unpaid := atoi(ts["unpaidDays"])
	absent := atoi(ts["paidLeaveDays"]) + sick + unpaid + atoi(ts["otherDays"])
	f[18] = fmt.Sprintf("%04d", worked+absent)
	f[19] = strconv.Itoa(worked)
	f[20] = strconv.Itoa(sick)
	f[21] = "0"
	f[22] = "0"
	f[23] = strconv.Itoa(unpaid)
	f[24] = strconv.Itoa(min(sick, employerSickCap))
	f[25] = decimalOf(ts["workedHours"]).Truncate(0).String()
	f[26] = decimalOf(ts["overtimeWeekdayHours"]).
		Add(decimalOf(ts["overtimeWeekendHours"])).
		Add(decimalOf(ts["overtimeHolidayHours"])).
		Truncate(0).String()

	f[27] = qualificationGroup(emp["occupationCode"], emp["occupationGroup"])
	f[28] = emp["economicActivityCode"]
	if len(f[28]) >= 2 {
		f[29] = f[28][:2]
	}
	f[30] = emp["workScheduleCode"]

	insurable := money.Format(s.InsurableIncome)
	f[31] = insurable
	f[32] = percent(params, "healthEmployee", "healthEmployer")
	f[33] = insurable
	f[34] = percent(params, "pensionEmployee")
	f[35] = percent(params, "pensionEmployer")
	f[36] = percent(params, "sicknessEmployee")
	f[37] = percent(params, "sicknessEmployer")
	f[38] = percent(params, "unemploymentEmployee")
	f[39] = percent(params, "unemploymentEmployer")
	if params["insuranceCategory"] == "after1960" {
		f[40] = insurable
		f[41] = percent(params, "supplementary_pensionEmployee")
		f[42] = percent(params, "supplementary_pensionEmployer")
	}

	f[45] = money.Format(s.GrossSalary)
	f[46] = percent(params, "work_accidentEmployer")
	f[47] = money.Format(s.TaxBase)
	f[48] = money.Format(s.IncomeTax)
	f[49] = money.Format(s.NetSalary)
	f[50] = d1FundCode
	f[51] = strconv.Itoa(int(code))
	f[52] = employer.Bulstat
	return r
}

// insuredDays returns the first and last insured day of the month.
func insuredDays(year, month int, start, end string) (int, int) {
	first, last := 1, calendar.DaysIn(year, month)
	if t, err := time.Parse("2006-01-02", start); err == nil && t.Year() == year && int(t.Month()) == month {
		first = t.Day()
	}
	if t, err := time.Parse("2006-01-02", end); err == nil && t.Year() == year && int(t.Month()) == month {
		last = t.Day()
	}
	return first, last
}

func qualificationGroup(occupationCode, occupationGroup string) string {
	if occupationCode != "" {
		return occupationCode[:1]
	}
	if occupationGroup != "" {
		return occupationGroup
	}
	return "0"
}

func percent(params map[string]string, keys ...string) string {
	sum := decimal.Zero
	for _, k := range keys {
		sum = sum.Add(decimalOf(params[k]))
	}
	return money.Format(sum)
}

func decimalOf(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return v
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

// encodeLines joins lines with CRLF and encodes them as Windows-1251.
func encodeLines(lines []string) ([]byte, error) {
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteString("\r\n")
	}
	out, err := charmap.Windows1251.NewEncoder().Bytes(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to encode as windows-1251: %w", err)
	}
	return out, nil
}

func d1FileName(year int, bulstat string, month int) string {
	return fmt.Sprintf("EMPL%d_%s_%02d.TXT", year, bulstat, month)
}
