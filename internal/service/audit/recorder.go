package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/valstrz/payroll-engine/internal/domain/audit"
)

// Recorder writes audit entries. Call it with the transaction context of the
// action being recorded so both commit together.
type Recorder struct {
	repo audit.AuditRepository
	now  func() time.Time
}

func NewRecorder(repo audit.AuditRepository) *Recorder {
	return &Recorder{repo: repo, now: time.Now}
}

func (r *Recorder) Record(ctx context.Context, e audit.Entry) error {
	if e.ID == "" {
		e.ID = uuid.Must(uuid.NewV7()).String()
	}
	e.PerformedBy = e.Actor()
	if e.PerformedAt.IsZero() {
		e.PerformedAt = r.now().UTC()
	}
	if err := r.repo.Create(ctx, e); err != nil {
		return fmt.Errorf("failed to record %s: %w", e.Action, err)
	}
	return nil
}

// History lists the entries of one entity, oldest first.
func (r *Recorder) History(ctx context.Context, tenantID, entityType, entityID string) ([]audit.Entry, error) {
	return r.repo.List(ctx, tenantID, entityType, entityID)
}
