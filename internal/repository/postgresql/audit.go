package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/valstrz/payroll-engine/internal/domain/audit"
	"github.com/valstrz/payroll-engine/internal/pkg/database"
)

type auditRepositoryImpl struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) audit.AuditRepository {
	return &auditRepositoryImpl{db: db}
}

// Create implements audit.AuditRepository.
func (a *auditRepositoryImpl) Create(ctx context.Context, e audit.Entry) error {
	q := GetQuerier(ctx, a.db)

	details, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}

	query := `
		INSERT INTO audit_log (id, tenant_id, action, entity_type, entity_id, description, details, performed_by, performed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = q.Exec(ctx, query, e.ID, e.TenantID, e.Action, e.EntityType, e.EntityID, e.Description, details, e.PerformedBy, e.PerformedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry %s: %w", e.Action, err)
	}
	return nil
}

// List implements audit.AuditRepository.
func (a *auditRepositoryImpl) List(ctx context.Context, tenantID, entityType, entityID string) ([]audit.Entry, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, tenant_id, action, entity_type, entity_id, description, details, performed_by, performed_at
		FROM audit_log
		WHERE tenant_id = $1 AND entity_type = $2 AND entity_id = $3
		ORDER BY performed_at
	`

	rows, err := q.Query(ctx, query, tenantID, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var list []audit.Entry
	for rows.Next() {
		var (
			e       audit.Entry
			details []byte
		)
		if err := rows.Scan(&e.ID, &e.TenantID, &e.Action, &e.EntityType, &e.EntityID, &e.Description, &details, &e.PerformedBy, &e.PerformedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("failed to decode audit details: %w", err)
			}
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
