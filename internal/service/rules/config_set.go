package rules

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/valstrz/payroll-engine/internal/domain/insurance"
	"github.com/valstrz/payroll-engine/internal/pkg/apperror"
)

// RuleQuery carries the employee facts that select a RuleSet.
type RuleQuery struct {
	BirthDate            time.Time
	InsuredType          string
	EconomicActivityCode string
	OccupationGroup      int
	OccupationCode       string
}

type contributionKey struct {
	category    insurance.Category
	insuredType string
}

// ConfigSet is an immutable, indexed copy of one tenant-year's statutory
// configuration. It is safe for concurrent use.
type ConfigSet struct {
	TenantID string
	Year     int

	rates         insurance.Rates
	contributions map[contributionKey]insurance.Contributions
	duplicated    map[contributionKey]bool
	thresholds    map[int][]insurance.Threshold
	active        []insurance.EconomicActivity
}

// NewConfigSet indexes the rows of one tenant-year. Rows of other years are ignored.
func NewConfigSet(rates insurance.Rates, contributions []insurance.Contributions, thresholds []insurance.Threshold, activities []insurance.EconomicActivity) *ConfigSet {
	cs := &ConfigSet{
		TenantID:      rates.TenantID,
		Year:          rates.Year,
		rates:         rates,
		contributions: make(map[contributionKey]insurance.Contributions, len(contributions)),
		duplicated:    make(map[contributionKey]bool),
		thresholds:    make(map[int][]insurance.Threshold),
	}
	for _, c := range contributions {
		if c.Year != rates.Year {
			continue
		}
		key := contributionKey{category: c.Category, insuredType: c.InsuredType}
		if _, ok := cs.contributions[key]; ok {
			cs.duplicated[key] = true
		}
		cs.contributions[key] = c
	}
	for _, t := range thresholds {
		if t.Year != rates.Year {
			continue
		}
		cs.thresholds[t.OccupationGroup] = append(cs.thresholds[t.OccupationGroup], t)
	}
	for _, a := range activities {
		if a.Year == rates.Year && a.Active {
			cs.active = append(cs.active, a)
		}
	}
	return cs
}

// Rates returns the tenant-year singleton.
func (c *ConfigSet) Rates() insurance.Rates {
	return c.rates
}

// Resolve selects the rule bundle for one employee.
func (c *ConfigSet) Resolve(q RuleQuery) (insurance.RuleSet, error) {
	if q.BirthDate.IsZero() {
		return insurance.RuleSet{}, apperror.InvalidInput("birthDate", "is required")
	}
	if q.InsuredType == "" {
		return insurance.RuleSet{}, apperror.InvalidInput("insuredType", "is required")
	}
	if q.OccupationGroup < 1 || q.OccupationGroup > 9 {
		return insurance.RuleSet{}, apperror.InvalidInput("occupationGroup", "must be between 1 and 9")
	}
	if !c.rates.MinimumWage.IsPositive() {
		return insurance.RuleSet{}, apperror.ConfigurationMissing("minimum wage for %d", c.Year).Wrap(insurance.ErrRatesNotFound)
	}
	if !c.rates.MaxInsurableIncome.IsPositive() {
		return insurance.RuleSet{}, apperror.ConfigurationMissing("max insurable income for %d", c.Year).Wrap(insurance.ErrRatesNotFound)
	}

	category := insurance.CategoryFor(q.BirthDate)
	key := contributionKey{category: category, insuredType: q.InsuredType}
	if c.duplicated[key] {
		return insurance.RuleSet{}, apperror.ConfigurationInconsistency("duplicate contributions for %d/%s/%s", c.Year, category, q.InsuredType)
	}
	contrib, ok := c.contributions[key]
	if !ok {
		return insurance.RuleSet{}, apperror.ConfigurationMissing("contributions for %d/%s/%s", c.Year, category, q.InsuredType).Wrap(insurance.ErrContributionsNotFound)
	}

	floor, err := c.floor(q)
	if err != nil {
		return insurance.RuleSet{}, err
	}

	workAccident := contrib.WorkAccidentEmployer
	activityCode := ""
	switch len(c.active) {
	case 0:
	case 1:
		workAccident = c.active[0].WorkAccidentPercent
		activityCode = c.active[0].Code
	default:
		return insurance.RuleSet{}, apperror.ConfigurationInconsistency("%d active economic activities in %d", len(c.active), c.Year).Wrap(insurance.ErrMultipleActivities)
	}

	funds := []insurance.FundRate{
		{Fund: insurance.FundPension, Employee: contrib.PensionEmployee, Employer: contrib.PensionEmployer},
		{Fund: insurance.FundSickness, Employee: contrib.SicknessEmployee, Employer: contrib.SicknessEmployer},
		{Fund: insurance.FundUnemployment, Employee: contrib.UnemploymentEmployee, Employer: contrib.UnemploymentEmployer},
	}
	if category == insurance.CategoryAfter1960 {
		funds = append(funds, insurance.FundRate{
			Fund:     insurance.FundSupplementaryPension,
			Employee: contrib.SupplementaryPensionEmployee,
			Employer: contrib.SupplementaryPensionEmployer,
		})
	}
	funds = append(funds,
		insurance.FundRate{Fund: insurance.FundHealth, Employee: contrib.HealthEmployee, Employer: contrib.HealthEmployer},
		insurance.FundRate{Fund: insurance.FundWorkAccident, Employee: decimal.Zero, Employer: workAccident},
		insurance.FundRate{Fund: insurance.FundProfessionalPension, Employee: decimal.Zero, Employer: contrib.ProfessionalPensionEmployer},
		insurance.FundRate{Fund: insurance.FundTeacherPension, Employee: decimal.Zero, Employer: contrib.TeacherPensionEmployer},
	)

	return insurance.RuleSet{
		Year:                   c.Year,
		Category:               category,
		InsuredType:            q.InsuredType,
		Floor:                  floor,
		Ceiling:                c.rates.MaxInsurableIncome,
		Funds:                  funds,
		MinimumWage:            c.rates.MinimumWage,
		FlatTaxRate:            c.rates.FlatTaxRate,
		DisabilityExemption:    c.rates.DisabilityExemption,
		VoluntaryDeductionPct:  c.rates.VoluntaryDeductionPct,
		SocialExpenseExemption: c.rates.SocialExpenseExemption,
		EconomicActivityCode:   activityCode,
	}, nil
}

// floor picks the most specific threshold of the occupation group. A row whose
// KID or NKPD code is set must match the query to be eligible.
func (c *ConfigSet) floor(q RuleQuery) (decimal.Decimal, error) {
	best := -1
	var floor decimal.Decimal
	tie := false

	for _, t := range c.thresholds[q.OccupationGroup] {
		score := 0
		if t.EconomicActivityCode != "" {
			if t.EconomicActivityCode != q.EconomicActivityCode {
				continue
			}
			score++
		}
		if t.OccupationCode != "" {
			if t.OccupationCode != q.OccupationCode {
				continue
			}
			score++
		}

		switch {
		case score > best:
			best, floor, tie = score, t.MinInsurableIncome, false
		case score == best && !t.MinInsurableIncome.Equal(floor):
			tie = true
		}
	}

	if best < 0 {
		return c.rates.MinimumWage, nil
	}
	if tie {
		return decimal.Zero, apperror.ConfigurationInconsistency("thresholds for group %d tie at equal specificity", q.OccupationGroup).Wrap(insurance.ErrAmbiguousThreshold)
	}
	return floor, nil
}
