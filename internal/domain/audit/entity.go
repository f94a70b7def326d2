package audit

import (
	"context"
	"time"
)

type Action string

const (
	ActionMonthClose         Action = "MONTH_CLOSE"
	ActionMonthReopen        Action = "MONTH_REOPEN"
	ActionMonthRecalculate   Action = "MONTH_RECALCULATE"
	ActionMonthStart         Action = "MONTH_START"
	ActionSubmissionGenerate Action = "SUBMISSION_GENERATE"
	ActionAccountingGenerate Action = "ACCOUNTING_GENERATE"
	ActionScheduleSeed       Action = "SCHEDULE_SEED"
)

const SystemActor = "system"

// Entry records who did what to which payroll entity.
type Entry struct {
	ID          string
	TenantID    string
	Action      Action
	EntityType  string
	EntityID    string
	Description string
	Details     map[string]any
	PerformedBy string
	PerformedAt time.Time
}

// Actor returns PerformedBy, defaulting to the system actor.
func (e Entry) Actor() string {
	if e.PerformedBy == "" {
		return SystemActor
	}
	return e.PerformedBy
}

type AuditRepository interface {
	Create(ctx context.Context, e Entry) error
	List(ctx context.Context, tenantID, entityType, entityID string) ([]Entry, error)
}
