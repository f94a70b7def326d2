package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valstrz/payroll-engine/internal/domain/audit"
	"github.com/valstrz/payroll-engine/internal/domain/schedule"
	auditsvc "github.com/valstrz/payroll-engine/internal/service/audit"
)

type passTx struct{}

func (passTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memSchedules struct {
	shifts    []schedule.ShiftSchedule
	createErr error
}

func (m *memSchedules) ListWorkSchedules(ctx context.Context, tenantID string) ([]schedule.WorkSchedule, error) {
	return nil, nil
}

func (m *memSchedules) GetShiftSchedule(ctx context.Context, tenantID, id string) (schedule.ShiftSchedule, error) {
	for _, s := range m.shifts {
		if s.ID == id && s.TenantID == tenantID {
			return s, nil
		}
	}
	return schedule.ShiftSchedule{}, schedule.ErrShiftScheduleNotFound
}

func (m *memSchedules) ListShiftSchedules(ctx context.Context, tenantID string) ([]schedule.ShiftSchedule, error) {
	var out []schedule.ShiftSchedule
	for _, s := range m.shifts {
		if s.TenantID == tenantID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSchedules) CreateShiftSchedule(ctx context.Context, s schedule.ShiftSchedule) (schedule.ShiftSchedule, error) {
	if m.createErr != nil {
		return schedule.ShiftSchedule{}, m.createErr
	}
	s.ID = "ss-" + s.Code
	m.shifts = append(m.shifts, s)
	return s, nil
}

type memAudit struct{ entries []audit.Entry }

func (m *memAudit) Create(ctx context.Context, e audit.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memAudit) List(ctx context.Context, tenantID, entityType, entityID string) ([]audit.Entry, error) {
	return m.entries, nil
}

func newTestService(repo *memSchedules, audits *memAudit) *ScheduleServiceImpl {
	svc := NewScheduleService(passTx{}, repo, auditsvc.NewRecorder(audits))
	svc.now = func() time.Time { return time.Date(2025, 3, 17, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestSeedTemplates_CreatesMissingOnly(t *testing.T) {
	// Setup
	repo := &memSchedules{shifts: []schedule.ShiftSchedule{{ID: "own", TenantID: "tenant-1", Code: "SHIFT_12_24"}}}
	audits := &memAudit{}
	svc := newTestService(repo, audits)

	// Act
	created, err := svc.SeedTemplates(context.Background(), "tenant-1", "user-1")

	// Assert
	require.NoError(t, err)
	require.Len(t, created, len(schedule.Templates("tenant-1"))-1)
	for _, c := range created {
		assert.NotEqual(t, "SHIFT_12_24", c.Code)
		assert.Equal(t, "tenant-1", c.TenantID)
		assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), c.RotationStart)
	}
	require.Len(t, audits.entries, 1)
	assert.Equal(t, audit.ActionScheduleSeed, audits.entries[0].Action)
	assert.Equal(t, "user-1", audits.entries[0].PerformedBy)
}

func TestSeedTemplates_SecondRunIsNoop(t *testing.T) {
	repo := &memSchedules{}
	audits := &memAudit{}
	svc := newTestService(repo, audits)
	ctx := context.Background()

	_, err := svc.SeedTemplates(ctx, "tenant-1", "user-1")
	require.NoError(t, err)
	created, err := svc.SeedTemplates(ctx, "tenant-1", "user-1")

	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Len(t, audits.entries, 1)
}

func TestSeedTemplates_PropagatesCreateError(t *testing.T) {
	boom := errors.New("insert failed")
	repo := &memSchedules{createErr: boom}
	audits := &memAudit{}
	svc := newTestService(repo, audits)

	_, err := svc.SeedTemplates(context.Background(), "tenant-1", "")

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, audits.entries)
}

func TestShiftSchedule_TenantScoped(t *testing.T) {
	repo := &memSchedules{shifts: []schedule.ShiftSchedule{{ID: "ss-1", TenantID: "tenant-1", Code: "X"}}}
	svc := newTestService(repo, &memAudit{})
	ctx := context.Background()

	got, err := svc.ShiftSchedule(ctx, "tenant-1", "ss-1")
	require.NoError(t, err)
	assert.Equal(t, "X", got.Code)

	_, err = svc.ShiftSchedule(ctx, "tenant-2", "ss-1")
	assert.ErrorIs(t, err, schedule.ErrShiftScheduleNotFound)
}
