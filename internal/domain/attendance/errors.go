package attendance

import "errors"

var (
	ErrTimesheetNotFound = errors.New("monthly timesheet not found")
	ErrScheduleMismatch  = errors.New("schedule kind does not match input")
)
