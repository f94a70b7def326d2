package insurance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category partitions insured persons by birth cohort. Supplementary pension
// contributions apply only to the later cohort.
type Category string

const (
	CategoryBefore1960 Category = "before1960"
	CategoryAfter1960  Category = "after1960"
)

// CohortCutoffYear is the last birth year of the earlier cohort.
const CohortCutoffYear = 1960

func CategoryFor(birthDate time.Time) Category {
	if birthDate.Year() <= CohortCutoffYear {
		return CategoryBefore1960
	}
	return CategoryAfter1960
}

// Rates - per (tenant, year) statutory singleton
type Rates struct {
	ID                     string
	TenantID               string
	Year                   int
	MinimumWage            decimal.Decimal
	MaxInsurableIncome     decimal.Decimal
	FlatTaxRate            decimal.Decimal
	DisabilityExemption    decimal.Decimal
	VoluntaryDeductionPct  decimal.Decimal
	SocialExpenseExemption decimal.Decimal
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Contributions - fund-by-fund split for one (year, category, insured type)
type Contributions struct {
	ID          string
	TenantID    string
	Year        int
	Category    Category
	InsuredType string

	PensionEmployee              decimal.Decimal
	PensionEmployer              decimal.Decimal
	SicknessEmployee             decimal.Decimal
	SicknessEmployer             decimal.Decimal
	UnemploymentEmployee         decimal.Decimal
	UnemploymentEmployer         decimal.Decimal
	SupplementaryPensionEmployee decimal.Decimal
	SupplementaryPensionEmployer decimal.Decimal
	HealthEmployee               decimal.Decimal
	HealthEmployer               decimal.Decimal
	WorkAccidentEmployer         decimal.Decimal
	ProfessionalPensionEmployer  decimal.Decimal
	TeacherPensionEmployer       decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Threshold - minimum insurable income for an occupation group, optionally narrowed
// by economic activity (KID) and detailed occupation (NKPD) codes.
type Threshold struct {
	ID                   string
	TenantID             string
	Year                 int
	EconomicActivityCode string
	OccupationGroup      int
	OccupationCode       string
	MinInsurableIncome   decimal.Decimal
}

// EconomicActivity - an activity of the company; the active one selects the
// work-accident fund rate.
type EconomicActivity struct {
	ID                  string
	TenantID            string
	Year                int
	Code                string
	Name                string
	BaseAmount          decimal.Decimal
	WorkAccidentPercent decimal.Decimal
	Active              bool
}
