package models

import (
	"time"

	"github.com/google/uuid"
)

// JSONB is a free-form details column.
type JSONB map[string]interface{}

// Audit event types.
const (
	AuditPermissionGranted = "permission_granted"
	AuditPermissionDenied  = "permission_denied"
)

// PermissionAudit is a row in the enrollment_state_audit table. Every
// enforcement decision is recorded here, best effort: a failed audit write
// never blocks the request.
type PermissionAudit struct {
	ID              uuid.UUID        `json:"id" db:"id"`
	TenantID        uuid.UUID        `json:"tenant_id" db:"tenant_id"`
	UserID          uuid.UUID        `json:"user_id" db:"user_id"`
	EventType       string           `json:"event_type" db:"event_type"`
	AttemptedAction EnrollmentAction `json:"attempted_action" db:"attempted_action"`
	CurrentState    *EnrollmentState `json:"current_state" db:"current_state"`
	Details         JSONB            `json:"details" db:"details"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
}

// PermissionAuditFilters narrows audit queries.
type PermissionAuditFilters struct {
	UserID    *uuid.UUID        `json:"user_id"`
	EventType *string           `json:"event_type"`
	Action    *EnrollmentAction `json:"action"`
	StartDate *time.Time        `json:"start_date"`
	EndDate   *time.Time        `json:"end_date"`
	Limit     int               `json:"limit"`
	Offset    int               `json:"offset"`
}
