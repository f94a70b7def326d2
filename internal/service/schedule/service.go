package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/valstrz/payroll-engine/internal/domain/audit"
	"github.com/valstrz/payroll-engine/internal/domain/schedule"
	"github.com/valstrz/payroll-engine/internal/pkg/database"
	auditsvc "github.com/valstrz/payroll-engine/internal/service/audit"
)

type ScheduleServiceImpl struct {
	tx    database.TxManager
	repo  schedule.ScheduleRepository
	audit *auditsvc.Recorder
	now   func() time.Time
}

func NewScheduleService(tx database.TxManager, repo schedule.ScheduleRepository, recorder *auditsvc.Recorder) *ScheduleServiceImpl {
	return &ScheduleServiceImpl{tx: tx, repo: repo, audit: recorder, now: time.Now}
}

func (s *ScheduleServiceImpl) WorkSchedules(ctx context.Context, tenantID string) ([]schedule.WorkSchedule, error) {
	return s.repo.ListWorkSchedules(ctx, tenantID)
}

func (s *ScheduleServiceImpl) ShiftSchedules(ctx context.Context, tenantID string) ([]schedule.ShiftSchedule, error) {
	return s.repo.ListShiftSchedules(ctx, tenantID)
}

func (s *ScheduleServiceImpl) ShiftSchedule(ctx context.Context, tenantID, id string) (schedule.ShiftSchedule, error) {
	return s.repo.GetShiftSchedule(ctx, tenantID, id)
}

// SeedTemplates stores the predefined rotations the tenant does not have yet
// and returns the ones it created. Existing codes are left untouched.
func (s *ScheduleServiceImpl) SeedTemplates(ctx context.Context, tenantID, actor string) ([]schedule.ShiftSchedule, error) {
	now := s.now().UTC()
	rotationStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	templates := schedule.Templates(tenantID)
	for i := range templates {
		if err := templates[i].Validate(); err != nil {
			return nil, fmt.Errorf("template %s: %w", templates[i].Code, err)
		}
		templates[i].RotationStart = rotationStart
	}

	var created []schedule.ShiftSchedule
	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.ListShiftSchedules(txCtx, tenantID)
		if err != nil {
			return err
		}
		have := make(map[string]bool, len(existing))
		for _, e := range existing {
			have[e.Code] = true
		}

		for _, t := range templates {
			if have[t.Code] {
				continue
			}
			stored, err := s.repo.CreateShiftSchedule(txCtx, t)
			if err != nil {
				return err
			}
			created = append(created, stored)
		}
		if len(created) == 0 {
			return nil
		}

		codes := make([]string, 0, len(created))
		for _, c := range created {
			codes = append(codes, c.Code)
		}
		return s.audit.Record(txCtx, audit.Entry{
			TenantID:    tenantID,
			Action:      audit.ActionScheduleSeed,
			EntityType:  "shift_schedule",
			EntityID:    created[0].ID,
			Description: fmt.Sprintf("%d shift schedule templates created", len(created)),
			Details:     map[string]any{"codes": codes},
			PerformedBy: actor,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("shift schedule templates seeded", "tenant", tenantID, "created", len(created))
	return created, nil
}
