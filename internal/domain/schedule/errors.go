package schedule

import "errors"

var (
	ErrWorkScheduleNotFound  = errors.New("work schedule not found")
	ErrShiftScheduleNotFound = errors.New("shift schedule not found")
	ErrShiftScheduleExists   = errors.New("shift schedule with this code already exists")
)
