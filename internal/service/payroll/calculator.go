package payroll

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/valstrz/payroll-engine/internal/domain/attendance"
	"github.com/valstrz/payroll-engine/internal/domain/calendar"
	"github.com/valstrz/payroll-engine/internal/domain/employee"
	"github.com/valstrz/payroll-engine/internal/domain/insurance"
	"github.com/valstrz/payroll-engine/internal/domain/payroll"
	"github.com/valstrz/payroll-engine/internal/pkg/apperror"
	"github.com/valstrz/payroll-engine/internal/pkg/money"
)

var (
	overtimeWeekdayPremium = decimal.RequireFromString("0.50")
	overtimeWeekendPremium = decimal.RequireFromString("0.75")
	overtimeHolidayPremium = decimal.RequireFromString("1.00")
	nightWorkPremium       = decimal.RequireFromString("0.143")
	sickPayPercent         = decimal.RequireFromString("70")

	// Employer-paid sick days per absence month; the rest is paid by the insurer.
	employerSickDays = 3
)

// CalcInput is one employee-month with all of its configuration resolved.
type CalcInput struct {
	TenantID  string
	PayrollID string
	Year      int
	Month     int

	Staff      employee.Staff
	Calendar   calendar.MonthlyCalendar
	Attendance attendance.Summary
	Rules      insurance.RuleSet

	PayItems     []payroll.EmployeePayItem
	Deductions   []payroll.EmployeeDeduction
	Garnishments []payroll.Garnishment

	Now time.Time
}

type fundCodes struct {
	fund     insurance.Fund
	name     string
	employee string
	employer string
}

var fundLines = []fundCodes{
	{insurance.FundPension, "Pension", payroll.CodePensionEmployee, payroll.CodePensionEmployer},
	{insurance.FundSickness, "Sickness and maternity", payroll.CodeSicknessEmployee, payroll.CodeSicknessEmployer},
	{insurance.FundUnemployment, "Unemployment", payroll.CodeUnemploymentEmployee, payroll.CodeUnemploymentEmployer},
	{insurance.FundSupplementaryPension, "Supplementary pension", payroll.CodeSupplementaryEmp, payroll.CodeSupplementaryEmpr},
	{insurance.FundHealth, "Health insurance", payroll.CodeHealthEmployee, payroll.CodeHealthEmployer},
	{insurance.FundWorkAccident, "Work accident and occupational disease", "", payroll.CodeWorkAccident},
	{insurance.FundProfessionalPension, "Professional pension", "", payroll.CodeProfessionalPension},
	{insurance.FundTeacherPension, "Teacher pension", "", payroll.CodeTeacherPension},
}

// Calculator derives every figure of one payslip. It holds no state.
type Calculator struct{}

func (Calculator) Calculate(in CalcInput) (payroll.Calculation, error) {
	emp, job := in.Staff.Employee, in.Staff.Employment
	if job.BaseSalary.IsNegative() {
		return payroll.Calculation{}, apperror.InvalidInput("baseSalary", "must not be negative")
	}
	for i, item := range in.PayItems {
		if item.Amount.IsNegative() {
			return payroll.Calculation{}, apperror.InvalidInput(fmt.Sprintf("payItems[%d].amount", i), "must not be negative")
		}
	}

	c := payroll.Calculation{
		TenantID:     in.TenantID,
		PayrollID:    in.PayrollID,
		EmployeeID:   emp.ID,
		Year:         in.Year,
		Month:        in.Month,
		CalculatedAt: in.Now,
	}

	addEarnings(&c, in)

	insurable, taxable := decimal.Zero, decimal.Zero
	for _, l := range c.LinesOf(payroll.LineTypeEarning) {
		if l.Insurable {
			insurable = insurable.Add(l.Amount)
		}
		if l.Taxable {
			taxable = taxable.Add(l.Amount)
		}
	}
	c.GrossSalary = c.Sum(payroll.LineTypeEarning)
	if c.GrossSalary.IsNegative() {
		return payroll.Calculation{}, apperror.InvalidInput("grossSalary", "must not be negative")
	}
	c.InsurableIncome = insurable

	c.InsuranceBase = in.Rules.Clamp(insurable)
	addInsurance(&c, in.Rules)
	c.TotalEmployeeInsurance = c.Sum(payroll.LineTypeEmployeeInsurance)
	c.TotalEmployerInsurance = c.Sum(payroll.LineTypeEmployerInsurance)

	taxBase := taxable.Sub(c.TotalEmployeeInsurance).
		Sub(voluntaryRelief(in, taxable)).
		Sub(socialExpenseRelief(in))
	if job.Disability50Plus {
		taxBase = taxBase.Sub(in.Rules.DisabilityExemption)
	}
	c.TaxBase = money.NonNegative(taxBase)
	c.IncomeTax = money.PercentOfRounded(c.TaxBase, in.Rules.FlatTaxRate)
	c.AddLine(payroll.PayrollLine{
		Code:   payroll.CodeIncomeTax,
		Name:   "Income tax",
		Type:   payroll.LineTypeTax,
		Base:   c.TaxBase,
		Rate:   in.Rules.FlatTaxRate,
		Amount: c.IncomeTax,
	})

	netBefore := c.GrossSalary.Sub(c.TotalEmployeeInsurance).Sub(c.IncomeTax)
	c.Deductions = applyDeductions(netBefore, in.Rules.MinimumWage, in.Garnishments, in.Deductions)
	c.TotalDeductions = decimal.Zero
	for _, d := range c.Deductions {
		c.TotalDeductions = c.TotalDeductions.Add(d.Applied)
		if d.Applied.IsZero() {
			continue
		}
		c.AddLine(payroll.PayrollLine{
			Code:     d.Code,
			Name:     d.Name,
			Type:     payroll.LineTypeDeduction,
			Base:     d.Requested,
			Amount:   d.Applied,
			Metadata: map[string]string{"sourceId": d.SourceID, "deferred": d.Deferred.String()},
		})
	}

	c.NetSalary = money.NonNegative(netBefore.Sub(c.TotalDeductions))
	c.TotalEmployerCost = c.GrossSalary.Add(c.TotalEmployerInsurance)

	c.EmployeeData = employeeData(in.Staff)
	c.LegislationParams = in.Rules.Params()
	c.TimesheetData = timesheetData(in.Calendar, in.Attendance)
	return c, nil
}

// voluntaryRelief is the voluntary contributions withheld this month, limited
// to the statutory percentage of taxable income.
func voluntaryRelief(in CalcInput, taxable decimal.Decimal) decimal.Decimal {
	paid := decimal.Zero
	for _, d := range in.Deductions {
		if d.Kind == payroll.DeductionKindVoluntary && d.IsValidFor(in.Year, in.Month) && d.Amount.IsPositive() {
			paid = paid.Add(d.Amount)
		}
	}
	return decimal.Min(money.Round(paid), money.PercentOfRounded(taxable, in.Rules.VoluntaryDeductionPct))
}

// socialExpenseRelief is the taxable social-expense pay of the month, up to the
// monthly exemption.
func socialExpenseRelief(in CalcInput) decimal.Decimal {
	paid := decimal.Zero
	for _, item := range in.PayItems {
		if item.SocialExpense && item.Taxable && item.IsValidFor(in.Year, in.Month) {
			paid = paid.Add(money.Round(item.Amount))
		}
	}
	return decimal.Min(paid, money.NonNegative(in.Rules.SocialExpenseExemption))
}

func addEarnings(c *payroll.Calculation, in CalcInput) {
	job := in.Staff.Employment
	att := in.Attendance
	workingDays := decimal.NewFromInt(int64(in.Calendar.WorkingDays))
	workingHours := decimal.NewFromInt(int64(in.Calendar.WorkingHours))

	base := job.BaseSalary
	if att.WorkedDays != in.Calendar.WorkingDays {
		base = money.Divide(job.BaseSalary.Mul(decimal.NewFromInt(int64(att.WorkedDays))), workingDays)
	}
	base = money.Round(base)
	c.AddLine(payroll.PayrollLine{
		Code:      payroll.CodeBaseSalary,
		Name:      "Base salary",
		Type:      payroll.LineTypeEarning,
		Base:      job.BaseSalary,
		Rate:      money.Ratio(att.WorkedDays, in.Calendar.WorkingDays),
		Quantity:  decimal.NewFromInt(int64(att.WorkedDays)),
		Amount:    base,
		Insurable: true,
		Taxable:   true,
	})

	if job.SeniorityBonusPct.IsPositive() && base.IsPositive() {
		c.AddLine(payroll.PayrollLine{
			Code:      payroll.CodeSeniority,
			Name:      "Seniority bonus",
			Type:      payroll.LineTypeEarning,
			Base:      base,
			Rate:      job.SeniorityBonusPct,
			Amount:    money.PercentOfRounded(base, job.SeniorityBonusPct),
			Insurable: true,
			Taxable:   true,
		})
	}

	// A part-time salary pays the reduced schedule, so its hours are scaled too.
	scheduledHours := workingHours
	if att.HoursRatio.IsPositive() && !att.HoursRatio.Equal(decimal.NewFromInt(1)) {
		scheduledHours = money.RoundCalc(workingHours.Mul(att.HoursRatio))
	}
	hourly := money.HourlyRate(job.BaseSalary, scheduledHours)
	overtime := []struct {
		code    string
		name    string
		hours   decimal.Decimal
		premium decimal.Decimal
	}{
		{payroll.CodeOvertimeWeekday, "Overtime on working days", att.OvertimeWeekdayHours, overtimeWeekdayPremium},
		{payroll.CodeOvertimeWeekend, "Overtime on rest days", att.OvertimeWeekendHours, overtimeWeekendPremium},
		{payroll.CodeOvertimeHoliday, "Overtime on holidays", att.OvertimeHolidayHours, overtimeHolidayPremium},
	}
	for _, o := range overtime {
		if !o.hours.IsPositive() {
			continue
		}
		rate := decimal.NewFromInt(1).Add(o.premium)
		c.AddLine(payroll.PayrollLine{
			Code:      o.code,
			Name:      o.name,
			Type:      payroll.LineTypeEarning,
			Base:      hourly,
			Rate:      rate,
			Quantity:  o.hours,
			Amount:    money.Round(money.RoundCalc(hourly.Mul(o.hours)).Mul(rate)),
			Insurable: true,
			Taxable:   true,
		})
	}

	if att.NightHours.IsPositive() {
		c.AddLine(payroll.PayrollLine{
			Code:      payroll.CodeNightWork,
			Name:      "Night work",
			Type:      payroll.LineTypeEarning,
			Base:      hourly,
			Rate:      nightWorkPremium,
			Quantity:  att.NightHours,
			Amount:    money.Round(money.RoundCalc(hourly.Mul(att.NightHours)).Mul(nightWorkPremium)),
			Insurable: true,
			Taxable:   true,
		})
	}

	daily := money.DailyRate(job.BaseSalary, in.Calendar.WorkingDays)
	if att.PaidLeaveDays > 0 {
		days := decimal.NewFromInt(int64(att.PaidLeaveDays))
		c.AddLine(payroll.PayrollLine{
			Code:      payroll.CodePaidLeave,
			Name:      "Paid annual leave",
			Type:      payroll.LineTypeEarning,
			Base:      daily,
			Quantity:  days,
			Amount:    money.Round(daily.Mul(days)),
			Insurable: true,
			Taxable:   true,
		})
	}
	if att.SickDays > 0 {
		days := decimal.NewFromInt(int64(min(att.SickDays, employerSickDays)))
		c.AddLine(payroll.PayrollLine{
			Code:     payroll.CodeSickEmployer,
			Name:     "Sick leave paid by employer",
			Type:     payroll.LineTypeEarning,
			Base:     daily,
			Rate:     sickPayPercent,
			Quantity: days,
			Amount:   money.PercentOfRounded(daily.Mul(days), sickPayPercent),
			Taxable:  true,
		})
	}

	for _, item := range in.PayItems {
		if !item.IsValidFor(in.Year, in.Month) || item.Amount.IsZero() {
			continue
		}
		c.AddLine(payroll.PayrollLine{
			Code:      item.Code,
			Name:      item.Name,
			Type:      payroll.LineTypeEarning,
			Amount:    money.Round(item.Amount),
			Insurable: item.Insurable,
			Taxable:   item.Taxable,
			Metadata:  map[string]string{"sourceId": item.ID},
		})
	}
}

func addInsurance(c *payroll.Calculation, rules insurance.RuleSet) {
	if !c.InsuranceBase.IsPositive() {
		return
	}
	for _, f := range fundLines {
		if f.fund == insurance.FundSupplementaryPension && !rules.SupplementaryPensionApplies() {
			continue
		}
		rate := rules.Rate(f.fund)
		if f.employee != "" && rate.Employee.IsPositive() {
			c.AddLine(payroll.PayrollLine{
				Code:   f.employee,
				Name:   f.name,
				Type:   payroll.LineTypeEmployeeInsurance,
				Base:   c.InsuranceBase,
				Rate:   rate.Employee,
				Amount: money.PercentOfRounded(c.InsuranceBase, rate.Employee),
			})
		}
		if rate.Employer.IsPositive() {
			c.AddLine(payroll.PayrollLine{
				Code:   f.employer,
				Name:   f.name,
				Type:   payroll.LineTypeEmployerInsurance,
				Base:   c.InsuranceBase,
				Rate:   rate.Employer,
				Amount: money.PercentOfRounded(c.InsuranceBase, rate.Employer),
			})
		}
	}
}

func employeeData(s employee.Staff) map[string]string {
	data := map[string]string{
		"egn":                  s.Employee.EGN,
		"fullName":             s.Employee.FullName(),
		"lastName":             s.Employee.LastName,
		"initials":             s.Employee.Initials(),
		"bic":                  s.Employee.BIC,
		"startDate":            s.Employment.StartDate.Format("2006-01-02"),
		"birthDate":            s.Employee.BirthDate.Format("2006-01-02"),
		"childrenCount":        strconv.Itoa(s.Employee.ChildrenCount),
		"iban":                 s.Employee.IBAN,
		"contractNumber":       s.Employment.ContractNumber,
		"baseSalary":           s.Employment.BaseSalary.String(),
		"insuredType":          s.Employment.InsuredType,
		"occupationGroup":      strconv.Itoa(s.Employment.OccupationGroup),
		"occupationCode":       s.Employment.OccupationCode,
		"economicActivityCode": s.Employment.EconomicActivityCode,
		"workScheduleCode":     s.Employment.WorkScheduleCode,
		"disability50Plus":     strconv.FormatBool(s.Employment.Disability50Plus),
	}
	if s.Employment.EndDate != nil {
		data["endDate"] = s.Employment.EndDate.Format("2006-01-02")
	}
	return data
}

func timesheetData(cal calendar.MonthlyCalendar, a attendance.Summary) map[string]string {
	data := map[string]string{
		"workingDays":          strconv.Itoa(cal.WorkingDays),
		"workingHours":         strconv.Itoa(cal.WorkingHours),
		"scheduledDays":        strconv.Itoa(a.ScheduledDays),
		"scheduledHours":       a.ScheduledHours.String(),
		"workedDays":           strconv.Itoa(a.WorkedDays),
		"workedHours":          a.WorkedHours.String(),
		"nightHours":           a.NightHours.String(),
		"paidLeaveDays":        strconv.Itoa(a.PaidLeaveDays),
		"sickDays":             strconv.Itoa(a.SickDays),
		"unpaidDays":           strconv.Itoa(a.UnpaidDays),
		"otherDays":            strconv.Itoa(a.OtherDays),
		"overtimeWeekdayHours": a.OvertimeWeekdayHours.String(),
		"overtimeWeekendHours": a.OvertimeWeekendHours.String(),
		"overtimeHolidayHours": a.OvertimeHolidayHours.String(),
		"overtimeHours":        a.TotalOvertimeHours().String(),
	}
	if a.HoursRatio.IsPositive() {
		data["hoursRatio"] = a.HoursRatio.String()
	}
	if a.Reference != nil {
		data["referencePeriod"] = a.Reference.Period.String()
		data["referenceNormHours"] = a.Reference.NormHours.String()
		data["referenceWorkedHours"] = a.Reference.WorkedHours.String()
		data["referenceClosing"] = strconv.FormatBool(a.Reference.Closing)
	}
	return data
}
