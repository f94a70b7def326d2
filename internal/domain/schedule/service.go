package schedule

import "context"

type ScheduleService interface {
	WorkSchedules(ctx context.Context, tenantID string) ([]WorkSchedule, error)
	ShiftSchedules(ctx context.Context, tenantID string) ([]ShiftSchedule, error)
	ShiftSchedule(ctx context.Context, tenantID, id string) (ShiftSchedule, error)
	SeedTemplates(ctx context.Context, tenantID, actor string) ([]ShiftSchedule, error)
}
