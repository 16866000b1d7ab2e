package repositories

import (
	"context"
	"fmt"
	"time"

	"elevate2/internal/models"

	"github.com/google/uuid"
)

type PermissionAuditRepository interface {
	Create(ctx context.Context, audit *models.PermissionAudit) error
	List(ctx context.Context, tenantID uuid.UUID, filters *models.PermissionAuditFilters) ([]*models.PermissionAudit, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type permissionAuditRepo struct {
	db Database
}

func NewPermissionAuditRepo(db Database) PermissionAuditRepository {
	return &permissionAuditRepo{db: db}
}

func (r *permissionAuditRepo) Create(ctx context.Context, audit *models.PermissionAudit) error {
	query := `
		INSERT INTO enrollment_state_audit (id, tenant_id, user_id, event_type, attempted_action, current_state, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := r.db.Exec(ctx, query, audit.ID, audit.TenantID, audit.UserID, audit.EventType,
		string(audit.AttemptedAction), audit.CurrentState, audit.Details)
	return err
}

func (r *permissionAuditRepo) List(ctx context.Context, tenantID uuid.UUID, filters *models.PermissionAuditFilters) ([]*models.PermissionAudit, error) {
	query := `
		SELECT id, tenant_id, user_id, event_type, attempted_action, current_state, details, created_at
		FROM enrollment_state_audit
		WHERE tenant_id = $1
	`
	args := []interface{}{tenantID}
	idx := 2

	if filters.UserID != nil {
		query += fmt.Sprintf(" AND user_id = $%d", idx)
		args = append(args, *filters.UserID)
		idx++
	}
	if filters.EventType != nil {
		query += fmt.Sprintf(" AND event_type = $%d", idx)
		args = append(args, *filters.EventType)
		idx++
	}
	if filters.Action != nil {
		query += fmt.Sprintf(" AND attempted_action = $%d", idx)
		args = append(args, string(*filters.Action))
		idx++
	}
	if filters.StartDate != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", idx)
		args = append(args, *filters.StartDate)
		idx++
	}
	if filters.EndDate != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", idx)
		args = append(args, *filters.EndDate)
		idx++
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var audits []*models.PermissionAudit
	for rows.Next() {
		audit := &models.PermissionAudit{}
		if err := rows.Scan(&audit.ID, &audit.TenantID, &audit.UserID, &audit.EventType,
			&audit.AttemptedAction, &audit.CurrentState, &audit.Details, &audit.CreatedAt); err != nil {
			return nil, err
		}
		audits = append(audits, audit)
	}
	return audits, rows.Err()
}

// DeleteOlderThan trims the audit trail; the retention job runs it nightly.
func (r *permissionAuditRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM enrollment_state_audit WHERE created_at < $1`
	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
