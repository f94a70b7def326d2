package insurance

import (
	"github.com/shopspring/decimal"
	"github.com/valstrz/payroll-engine/internal/pkg/money"
)

// Fund identifies a statutory insurance fund.
type Fund string

const (
	FundPension              Fund = "pension"
	FundSickness             Fund = "sickness"
	FundUnemployment         Fund = "unemployment"
	FundSupplementaryPension Fund = "supplementary_pension"
	FundHealth               Fund = "health"
	FundWorkAccident         Fund = "work_accident"
	FundProfessionalPension  Fund = "professional_pension"
	FundTeacherPension       Fund = "teacher_pension"
)

// FundRate is one fund's employee and employer percentages.
type FundRate struct {
	Fund     Fund
	Employee decimal.Decimal
	Employer decimal.Decimal
}

// RuleSet is the resolved, immutable rule bundle for one employee-month.
type RuleSet struct {
	Year        int
	Category    Category
	InsuredType string

	Floor   decimal.Decimal
	Ceiling decimal.Decimal
	Funds   []FundRate

	MinimumWage            decimal.Decimal
	FlatTaxRate            decimal.Decimal
	DisabilityExemption    decimal.Decimal
	VoluntaryDeductionPct  decimal.Decimal
	SocialExpenseExemption decimal.Decimal

	// EconomicActivityCode is the activity whose work-accident rate was applied.
	EconomicActivityCode string
}

// Clamp returns the insurance base for an insurable gross amount.
func (r RuleSet) Clamp(gross decimal.Decimal) decimal.Decimal {
	return money.Clamp(gross, r.Floor, r.Ceiling)
}

// Rate returns the percentages for fund, zero when the fund does not apply.
func (r RuleSet) Rate(f Fund) FundRate {
	for _, fr := range r.Funds {
		if fr.Fund == f {
			return fr
		}
	}
	return FundRate{Fund: f, Employee: money.Zero, Employer: money.Zero}
}

// SupplementaryPensionApplies is true only for the later birth cohort.
func (r RuleSet) SupplementaryPensionApplies() bool {
	return r.Category == CategoryAfter1960
}

// Params flattens the rule set for storage inside a snapshot.
func (r RuleSet) Params() map[string]string {
	p := map[string]string{
		"year":                   itoa(r.Year),
		"insuranceCategory":      string(r.Category),
		"insuredType":            r.InsuredType,
		"floor":                  r.Floor.String(),
		"ceiling":                r.Ceiling.String(),
		"minimumWage":            r.MinimumWage.String(),
		"flatTaxRate":            r.FlatTaxRate.String(),
		"disabilityExemption":    r.DisabilityExemption.String(),
		"voluntaryDeductionPct":  r.VoluntaryDeductionPct.String(),
		"socialExpenseExemption": r.SocialExpenseExemption.String(),
		"economicActivityCode":   r.EconomicActivityCode,
	}
	for _, fr := range r.Funds {
		p[string(fr.Fund)+"Employee"] = money.RoundRate(fr.Employee).String()
		p[string(fr.Fund)+"Employer"] = money.RoundRate(fr.Employer).String()
	}
	return p
}

func itoa(i int) string {
	return decimal.NewFromInt(int64(i)).String()
}
