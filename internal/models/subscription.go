package models

import (
	"time"

	"github.com/google/uuid"
)

// StudentSubscription tracks a student's tuition payment plan. The
// enforcement layer only reads past_due_since to compute the grace window;
// Stripe owns the rest of the lifecycle.
type StudentSubscription struct {
	ID                   uuid.UUID  `json:"id" db:"id"`
	TenantID             uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	UserID               uuid.UUID  `json:"user_id" db:"user_id"`
	StripeSubscriptionID *string    `json:"stripe_subscription_id" db:"stripe_subscription_id"`
	Status               string     `json:"status" db:"status"`
	PastDueSince         *time.Time `json:"past_due_since" db:"past_due_since"`
	CurrentPeriodEnd     *time.Time `json:"current_period_end" db:"current_period_end"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}

// PastDueDays returns whole days since the subscription went past due,
// zero when current.
func (s *StudentSubscription) PastDueDays(now time.Time) int {
	if s == nil || s.PastDueSince == nil {
		return 0
	}
	days := int(now.Sub(*s.PastDueSince).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
