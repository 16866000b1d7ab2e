package repositories

import (
	"context"
	"errors"

	"elevate2/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type SubscriptionRepository interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*models.StudentSubscription, error)
}

type subscriptionRepo struct {
	db Database
}

func NewSubscriptionRepo(db Database) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

// GetByUser returns the student's payment plan, or nil when the student
// has none (agency-funded students never do).
func (r *subscriptionRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*models.StudentSubscription, error) {
	subscription := &models.StudentSubscription{}
	query := `
		SELECT id, tenant_id, user_id, stripe_subscription_id, status, past_due_since, current_period_end, created_at, updated_at
		FROM student_subscriptions
		WHERE user_id = $1
	`
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&subscription.ID, &subscription.TenantID, &subscription.UserID,
		&subscription.StripeSubscriptionID, &subscription.Status, &subscription.PastDueSince,
		&subscription.CurrentPeriodEnd, &subscription.CreatedAt, &subscription.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return subscription, nil
}
