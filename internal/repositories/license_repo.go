package repositories

import (
	"context"
	"errors"

	"elevate2/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LicenseRepository interface {
	GetActive(ctx context.Context, tenantID uuid.UUID) (*models.License, error)
	Create(ctx context.Context, license *models.License) error
	Update(ctx context.Context, license *models.License) error
	ExpireStale(ctx context.Context) (int64, error)
}

type licenseRepo struct {
	db Database
}

func NewLicenseRepo(db Database) LicenseRepository {
	return &licenseRepo{db: db}
}

// GetActive calls the get_active_license stored function, which returns the
// tenant's current license row and auto-expires stale ones as a side
// effect. A nil license with nil error means the tenant has no license.
func (r *licenseRepo) GetActive(ctx context.Context, tenantID uuid.UUID) (*models.License, error) {
	license := &models.License{}
	query := `
		SELECT id, tenant_id, tier, status, expires_at, current_period_end,
		       stripe_subscription_id, features, max_users, max_students, max_programs,
		       created_at, updated_at
		FROM get_active_license($1)
	`
	err := r.db.QueryRow(ctx, query, tenantID).Scan(
		&license.ID, &license.TenantID, &license.Tier, &license.Status,
		&license.ExpiresAt, &license.CurrentPeriodEnd, &license.StripeSubscriptionID,
		&license.Features, &license.MaxUsers, &license.MaxStudents, &license.MaxPrograms,
		&license.CreatedAt, &license.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return license, nil
}

func (r *licenseRepo) Create(ctx context.Context, license *models.License) error {
	query := `
		INSERT INTO licenses (id, tenant_id, tier, status, expires_at, current_period_end,
		                      stripe_subscription_id, features, max_users, max_students, max_programs,
		                      created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, license.ID, license.TenantID, license.Tier, license.Status,
		license.ExpiresAt, license.CurrentPeriodEnd, license.StripeSubscriptionID,
		license.Features, license.MaxUsers, license.MaxStudents, license.MaxPrograms)
	return err
}

func (r *licenseRepo) Update(ctx context.Context, license *models.License) error {
	query := `
		UPDATE licenses
		SET tier = $1, status = $2, expires_at = $3, current_period_end = $4,
		    stripe_subscription_id = $5, features = $6,
		    max_users = $7, max_students = $8, max_programs = $9, updated_at = NOW()
		WHERE tenant_id = $10 AND id = $11
	`
	_, err := r.db.Exec(ctx, query, license.Tier, license.Status, license.ExpiresAt,
		license.CurrentPeriodEnd, license.StripeSubscriptionID, license.Features,
		license.MaxUsers, license.MaxStudents, license.MaxPrograms,
		license.TenantID, license.ID)
	return err
}

// ExpireStale flips DB-authoritative licenses whose expires_at has passed.
// The background sweep runs it; get_active_license does the same per-row.
func (r *licenseRepo) ExpireStale(ctx context.Context) (int64, error) {
	query := `
		UPDATE licenses
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'active'
		  AND tier NOT LIKE '%\_monthly' AND tier NOT LIKE '%\_annual'
		  AND expires_at IS NOT NULL AND expires_at < NOW()
	`
	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
