package employee

import "errors"

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrEmploymentNotFound = errors.New("no employment in the period")
)
