package employee

import (
	"github.com/valstrz/payroll-engine/internal/pkg/apperror"
	"github.com/valstrz/payroll-engine/internal/pkg/validator"
)

// Validate checks the employment facts the engine depends on.
func (e Employment) Validate() error {
	var errs validator.ValidationErrors

	if e.BaseSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "baseSalary", Message: "must not be negative"})
	}
	if e.InsuredType == "" {
		errs = append(errs, validator.ValidationError{Field: "insuredType", Message: "is required"})
	}
	if e.OccupationGroup < 1 || e.OccupationGroup > 9 {
		errs = append(errs, validator.ValidationError{Field: "occupationGroup", Message: "must be between 1 and 9"})
	}
	if e.OccupationCode != "" && !validator.IsValidNKPD(e.OccupationCode) {
		errs = append(errs, validator.ValidationError{Field: "occupationCode", Message: "is not a valid NKPD code"})
	}
	if e.EconomicActivityCode != "" && !validator.IsValidKID(e.EconomicActivityCode) {
		errs = append(errs, validator.ValidationError{Field: "economicActivityCode", Message: "is not a valid KID code"})
	}
	if e.SeniorityBonusPct.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "seniorityBonusPct", Message: "must not be negative"})
	}
	if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
		errs = append(errs, validator.ValidationError{Field: "endDate", Message: "must not be before startDate"})
	}

	if len(errs) > 0 {
		return apperror.Invalid(errs)
	}
	return nil
}

// Validate checks the personal data used for the insurance category. A missing
// EGN is reported by the regulator export, not here.
func (e Employee) Validate() error {
	if e.EGN != "" && !validator.IsValidEGN(e.EGN) {
		return apperror.InvalidInput("egn", "is not a valid personal number")
	}
	if e.BirthDate.IsZero() {
		return apperror.InvalidInput("birthDate", "is required")
	}
	if e.ChildrenCount < 0 {
		return apperror.InvalidInput("childrenCount", "must not be negative")
	}
	return nil
}
