package models

import (
	"time"

	"github.com/google/uuid"
)

// EnrollmentOverride is an admin-issued, expiring exemption for a single
// (user, action) pair. Compliance-critical denials are never overridable;
// the enforcement service owns that list.
type EnrollmentOverride struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	TenantID  uuid.UUID        `json:"tenant_id" db:"tenant_id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	Action    EnrollmentAction `json:"action" db:"action"`
	Reason    string           `json:"reason" db:"reason"`
	Active    bool             `json:"active" db:"active"`
	IssuedBy  uuid.UUID        `json:"issued_by" db:"issued_by"`
	ExpiresAt time.Time        `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
