package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valstrz/payroll-engine/internal/domain/audit"
)

type memAuditRepo struct {
	entries []audit.Entry
}

func (m *memAuditRepo) Create(ctx context.Context, e audit.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memAuditRepo) List(ctx context.Context, tenantID, entityType, entityID string) ([]audit.Entry, error) {
	var out []audit.Entry
	for _, e := range m.entries {
		if e.TenantID == tenantID && e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestRecorder_Record_Defaults(t *testing.T) {
	// Setup
	repo := &memAuditRepo{}
	rec := NewRecorder(repo)
	fixed := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	rec.now = func() time.Time { return fixed }

	// Act
	err := rec.Record(context.Background(), audit.Entry{
		TenantID:   "tenant-1",
		Action:     audit.ActionMonthClose,
		EntityType: "payroll",
		EntityID:   "p-1",
	})

	// Assert
	require.NoError(t, err)
	require.Len(t, repo.entries, 1)
	e := repo.entries[0]
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, audit.SystemActor, e.PerformedBy)
	assert.Equal(t, fixed, e.PerformedAt)
}

func TestRecorder_History_FiltersByEntity(t *testing.T) {
	repo := &memAuditRepo{}
	rec := NewRecorder(repo)
	ctx := context.Background()

	require.NoError(t, rec.Record(ctx, audit.Entry{TenantID: "tenant-1", Action: audit.ActionMonthStart, EntityType: "payroll", EntityID: "p-1"}))
	require.NoError(t, rec.Record(ctx, audit.Entry{TenantID: "tenant-1", Action: audit.ActionMonthStart, EntityType: "payroll", EntityID: "p-2"}))
	require.NoError(t, rec.Record(ctx, audit.Entry{TenantID: "tenant-2", Action: audit.ActionMonthStart, EntityType: "payroll", EntityID: "p-1"}))

	got, err := rec.History(ctx, "tenant-1", "payroll", "p-1")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p-1", got[0].EntityID)
}
