package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/valstrz/payroll-engine/internal/domain/company"
	"github.com/valstrz/payroll-engine/internal/domain/declaration"
	"github.com/valstrz/payroll-engine/internal/domain/employee"
	"github.com/valstrz/payroll-engine/internal/domain/payroll"
	"github.com/valstrz/payroll-engine/internal/domain/schedule"
	"github.com/valstrz/payroll-engine/internal/pkg/apperror"
	"github.com/valstrz/payroll-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Engine error kinds
	case errors.Is(err, apperror.ErrInvalidInput):
		var details map[string]string
		if field := apperror.FieldOf(err); field != "" {
			details = map[string]string{field: err.Error()}
		}
		Error(w, http.StatusUnprocessableEntity, apperror.CodeInvalidInput, err.Error(), details)
	case errors.Is(err, apperror.ErrConfigurationMissing):
		Error(w, http.StatusUnprocessableEntity, apperror.CodeConfigurationMissing, err.Error(), nil)
	case errors.Is(err, apperror.ErrConfigurationInconsistency):
		Error(w, http.StatusConflict, apperror.CodeConfigurationInconsistency, err.Error(), nil)
	case errors.Is(err, apperror.ErrConcurrentCloseConflict):
		w.Header().Set("Retry-After", "5")
		Error(w, http.StatusConflict, apperror.CodeConcurrentCloseConflict, "Month is being closed by another request", nil)
	case errors.Is(err, apperror.ErrClosedPeriodImmutable):
		Error(w, http.StatusConflict, apperror.CodeClosedPeriodImmutable, err.Error(), nil)

	// Payroll domain errors
	case errors.Is(err, payroll.ErrPayrollNotFound):
		NotFound(w, "Payroll not found for this period")
	case errors.Is(err, payroll.ErrSnapshotNotFound):
		NotFound(w, "Payroll snapshot not found")
	case errors.Is(err, payroll.ErrResultNotFound):
		NotFound(w, "Payroll result not found")
	case errors.Is(err, payroll.ErrPayrollAlreadyExists):
		Conflict(w, "Payroll already exists for this period")
	case errors.Is(err, payroll.ErrInvalidTransition):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrMonthNotClosed):
		Conflict(w, "Payroll month is not closed")
	case errors.Is(err, payroll.ErrDownstreamExists):
		Conflict(w, "Month has generated submissions or accounting entries")
	case errors.Is(err, payroll.ErrNoEmployees):
		Error(w, http.StatusUnprocessableEntity, "NO_EMPLOYEES", err.Error(), nil)

	// Employee / company errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmploymentNotFound):
		NotFound(w, "Employee has no employment in this period")
	case errors.Is(err, company.ErrCompanyNotFound):
		NotFound(w, "Company not found")

	// Schedule errors
	case errors.Is(err, schedule.ErrShiftScheduleNotFound):
		NotFound(w, "Shift schedule not found")
	case errors.Is(err, schedule.ErrShiftScheduleExists):
		Conflict(w, "Shift schedule with this code already exists")

	// Declaration errors
	case errors.Is(err, declaration.ErrNothingToSubmit):
		Error(w, http.StatusUnprocessableEntity, "NOTHING_TO_SUBMIT", err.Error(), nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
