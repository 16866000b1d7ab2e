package repositories

import (
	"context"
	"errors"

	"elevate2/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OverrideRepository interface {
	FindActive(ctx context.Context, userID uuid.UUID, action models.EnrollmentAction) (*models.EnrollmentOverride, error)
	Create(ctx context.Context, override *models.EnrollmentOverride) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type overrideRepo struct {
	db Database
}

func NewOverrideRepo(db Database) OverrideRepository {
	return &overrideRepo{db: db}
}

// FindActive returns an unexpired active override for the (user, action)
// pair, or nil when none exists.
func (r *overrideRepo) FindActive(ctx context.Context, userID uuid.UUID, action models.EnrollmentAction) (*models.EnrollmentOverride, error) {
	override := &models.EnrollmentOverride{}
	query := `
		SELECT id, tenant_id, user_id, action, reason, active, issued_by, expires_at, created_at
		FROM enrollment_overrides
		WHERE user_id = $1 AND action = $2 AND active = true AND expires_at > NOW()
	`
	err := r.db.QueryRow(ctx, query, userID, string(action)).Scan(
		&override.ID, &override.TenantID, &override.UserID, &override.Action, &override.Reason,
		&override.Active, &override.IssuedBy, &override.ExpiresAt, &override.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return override, nil
}

func (r *overrideRepo) Create(ctx context.Context, override *models.EnrollmentOverride) error {
	query := `
		INSERT INTO enrollment_overrides (id, tenant_id, user_id, action, reason, active, issued_by, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	_, err := r.db.Exec(ctx, query, override.ID, override.TenantID, override.UserID,
		string(override.Action), override.Reason, override.Active, override.IssuedBy, override.ExpiresAt)
	return err
}

func (r *overrideRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE enrollment_overrides SET active = false WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
