package employee

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/valstrz/payroll-engine/internal/pkg/validator"
)

type Employee struct {
	ID            string
	TenantID      string
	EGN           string
	FirstName     string
	MiddleName    string
	LastName      string
	BirthDate     time.Time
	ChildrenCount int
	IBAN          string
	BIC           string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (e Employee) FullName() string {
	name := e.FirstName
	for _, part := range []string{e.MiddleName, e.LastName} {
		if part != "" {
			name += " " + part
		}
	}
	return name
}

// WithBirthDateFromEGN fills a missing birth date from a valid EGN.
func (e Employee) WithBirthDateFromEGN() Employee {
	if !e.BirthDate.IsZero() {
		return e
	}
	if date, ok := validator.EGNBirthDate(e.EGN); ok && validator.IsValidEGN(e.EGN) {
		e.BirthDate = date
	}
	return e
}

// Initials are the first letters of the first and middle names.
func (e Employee) Initials() string {
	var out []rune
	for _, part := range []string{e.FirstName, e.MiddleName} {
		for _, r := range part {
			out = append(out, r)
			break
		}
	}
	return string(out)
}

// Employment - contract facts consumed by the engine
type Employment struct {
	ID                   string
	TenantID             string
	EmployeeID           string
	ContractNumber       string
	StartDate            time.Time
	EndDate              *time.Time // termination date, nil while open
	BaseSalary           decimal.Decimal
	InsuredType          string // statutory insured-person type, e.g. "01"
	OccupationGroup      int    // 1-9
	OccupationCode       string // NKPD
	EconomicActivityCode string // KID
	WorkScheduleCode     string
	SeniorityBonusPct    decimal.Decimal
	Disability50Plus     bool
	Current              bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ActiveIn reports whether the employment overlaps the given month.
func (e Employment) ActiveIn(year, month int) bool {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	if e.StartDate.After(last) {
		return false
	}
	return e.EndDate == nil || !e.EndDate.Before(first)
}

// Staff pairs an employee with the employment used for the month.
type Staff struct {
	Employee   Employee
	Employment Employment
}
