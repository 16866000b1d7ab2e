package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// License status values as stored in the licenses table.
const (
	LicenseStatusActive    = "active"
	LicenseStatusSuspended = "suspended"
	LicenseStatusExpired   = "expired"
	LicenseStatusRevoked   = "revoked"
)

// BillingAuthority identifies which system owns the expiry decision for a
// license. Subscription tiers are settled by Stripe webhooks; everything
// else (trial, lifetime, one-time purchases) is settled by the database row.
type BillingAuthority string

const (
	BillingAuthorityStripe   BillingAuthority = "stripe"
	BillingAuthorityDatabase BillingAuthority = "database"
)

// Limit types accepted by the guard's cap checks.
const (
	LimitUsers    = "users"
	LimitStudents = "students"
	LimitPrograms = "programs"
)

type License struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	TenantID             uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	Tier                 string          `json:"tier" db:"tier"`
	Status               string          `json:"status" db:"status"`
	ExpiresAt            *time.Time      `json:"expires_at" db:"expires_at"`
	CurrentPeriodEnd     *time.Time      `json:"current_period_end" db:"current_period_end"`
	StripeSubscriptionID *string         `json:"stripe_subscription_id" db:"stripe_subscription_id"`
	Features             map[string]bool `json:"features" db:"features"`
	MaxUsers             *int            `json:"max_users" db:"max_users"`
	MaxStudents          *int            `json:"max_students" db:"max_students"`
	MaxPrograms          *int            `json:"max_programs" db:"max_programs"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`
}

// BillingAuthority classifies the license by its tier string. Tiers ending
// in _monthly or _annual are Stripe subscriptions; their access window is
// current_period_end. All other tiers are governed by expires_at.
func (l *License) BillingAuthority() BillingAuthority {
	tier := strings.ToLower(l.Tier)
	if strings.HasSuffix(tier, "_monthly") || strings.HasSuffix(tier, "_annual") {
		return BillingAuthorityStripe
	}
	return BillingAuthorityDatabase
}

// AccessValid reports whether the license grants access at the given
// instant, using only the field its billing authority owns.
func (l *License) AccessValid(now time.Time) bool {
	switch l.BillingAuthority() {
	case BillingAuthorityStripe:
		return l.CurrentPeriodEnd != nil && l.CurrentPeriodEnd.After(now)
	default:
		return l.ExpiresAt == nil || l.ExpiresAt.After(now)
	}
}

// HasFeature is a plain membership check in the features map.
func (l *License) HasFeature(name string) bool {
	return l.Features[name]
}

// LimitFor returns the configured cap for a limit type. A nil cap means
// unlimited.
func (l *License) LimitFor(limitType string) *int {
	switch limitType {
	case LimitUsers:
		return l.MaxUsers
	case LimitStudents:
		return l.MaxStudents
	case LimitPrograms:
		return l.MaxPrograms
	}
	return nil
}
