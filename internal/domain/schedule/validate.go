package schedule

import (
	"fmt"

	"github.com/valstrz/payroll-engine/internal/pkg/apperror"
	"github.com/valstrz/payroll-engine/internal/pkg/validator"
)

// Validate rejects rotations that reference undefined shifts and reference
// periods outside the allowed lengths.
func (s ShiftSchedule) Validate() error {
	var errs validator.ValidationErrors

	if !IsAllowedReferenceMonths(s.ReferenceMonths) {
		errs = append(errs, validator.ValidationError{Field: "referenceMonths", Message: "must be one of 1, 2, 3, 4, 6"})
	}
	if len(s.Rotation) == 0 {
		errs = append(errs, validator.ValidationError{Field: "rotation", Message: "must not be empty"})
	}

	seen := make(map[int]bool, len(s.Shifts))
	for i, d := range s.Shifts {
		if d.Index <= 0 {
			errs = append(errs, validator.ValidationError{Field: fmt.Sprintf("shifts[%d].index", i), Message: "must be positive"})
		}
		if seen[d.Index] {
			errs = append(errs, validator.ValidationError{Field: fmt.Sprintf("shifts[%d].index", i), Message: "duplicate shift index"})
		}
		seen[d.Index] = true
		if d.TotalHours.IsNegative() || d.NightHours.IsNegative() || d.NightHours.GreaterThan(d.TotalHours) {
			errs = append(errs, validator.ValidationError{Field: fmt.Sprintf("shifts[%d].nightHours", i), Message: "must be between 0 and totalHours"})
		}
	}

	for i, slot := range s.Rotation {
		if idx, ok := slot.ShiftIndex(); ok && !seen[idx] {
			errs = append(errs, validator.ValidationError{Field: fmt.Sprintf("rotation[%d]", i), Message: fmt.Sprintf("references undefined shift %d", idx)})
		}
	}

	if len(errs) > 0 {
		return apperror.Invalid(errs)
	}
	return nil
}

func (w WorkSchedule) Validate() error {
	if !w.HoursPerDay.IsPositive() {
		return apperror.InvalidInput("hoursPerDay", "must be positive")
	}
	if w.Kind == KindRotating && (w.ShiftScheduleID == nil || *w.ShiftScheduleID == "") {
		return apperror.InvalidInput("shiftScheduleId", "is required for rotating schedules")
	}
	return nil
}
