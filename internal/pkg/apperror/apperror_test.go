package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsKindAndCause(t *testing.T) {
	cause := errors.New("row missing")
	err := fmt.Errorf("resolve: %w", &Error{Kind: ErrConfigurationMissing, Message: "rates 2025", Err: cause})

	assert.ErrorIs(t, err, ErrConfigurationMissing)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, CodeConfigurationMissing, Code(err))
}

func TestInvalidInput_CarriesField(t *testing.T) {
	err := fmt.Errorf("employee 7: %w", InvalidInput("baseSalary", "must not be negative"))

	assert.Equal(t, "baseSalary", FieldOf(err))
	assert.Equal(t, CodeInvalidInput, Code(err))
	assert.True(t, Recoverable(err))
	assert.Contains(t, err.Error(), "baseSalary: must not be negative")
}

func TestRecoverable_CloseConflictsAreNot(t *testing.T) {
	assert.False(t, Recoverable(ConcurrentClose("t1:2025-01")))
	assert.False(t, Recoverable(ClosedPeriod("2025-01")))
	assert.Equal(t, CodeInternal, Code(errors.New("boom")))
}
