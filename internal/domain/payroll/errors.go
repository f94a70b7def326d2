package payroll

import "errors"

var (
	ErrPayrollNotFound      = errors.New("payroll not found for this period")
	ErrPayrollAlreadyExists = errors.New("payroll already exists for this period")
	ErrInvalidTransition    = errors.New("invalid payroll status transition")
	ErrMonthNotClosed       = errors.New("payroll month is not closed")
	ErrDownstreamExists     = errors.New("month has generated submissions or accounting entries")
	ErrSnapshotNotFound     = errors.New("payroll snapshot not found")
	ErrResultNotFound       = errors.New("payroll result not found")
	ErrGarnishmentNotFound  = errors.New("garnishment not found")
	ErrNoEmployees          = errors.New("no employees with an active employment in this period")
)
