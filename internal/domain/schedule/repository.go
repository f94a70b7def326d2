package schedule

import "context"

// ScheduleRepository reads schedule reference data. All methods are scoped by tenantID.
type ScheduleRepository interface {
	ListWorkSchedules(ctx context.Context, tenantID string) ([]WorkSchedule, error)
	GetShiftSchedule(ctx context.Context, tenantID, id string) (ShiftSchedule, error)
	ListShiftSchedules(ctx context.Context, tenantID string) ([]ShiftSchedule, error)
	CreateShiftSchedule(ctx context.Context, s ShiftSchedule) (ShiftSchedule, error)
}
