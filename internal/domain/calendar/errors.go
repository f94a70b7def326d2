package calendar

import "errors"

var (
	ErrAnnualCalendarNotFound  = errors.New("annual calendar not found")
	ErrMonthlyCalendarNotFound = errors.New("monthly calendar not found")
)
