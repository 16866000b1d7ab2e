package services

import (
	"context"
	"fmt"
	"time"

	"elevate2/internal/models"
	"elevate2/internal/repositories"

	"github.com/google/uuid"
)

const maxOverrideDuration = 30 * 24 * time.Hour

// GrantOverrideRequest creates an expiring exemption for one user and
// action. Reason is mandatory; it lands in the audit trail on every use.
type GrantOverrideRequest struct {
	TenantID  uuid.UUID
	UserID    uuid.UUID
	Action    models.EnrollmentAction
	Reason    string
	IssuedBy  uuid.UUID
	ExpiresAt time.Time
}

type OverrideService interface {
	Grant(ctx context.Context, req *GrantOverrideRequest) (*models.EnrollmentOverride, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	AuditTrail(ctx context.Context, tenantID uuid.UUID, filters *models.PermissionAuditFilters) ([]*models.PermissionAudit, error)
}

type overrideService struct {
	overrideRepo repositories.OverrideRepository
	auditRepo    repositories.PermissionAuditRepository
	now          func() time.Time
}

func NewOverrideService(overrideRepo repositories.OverrideRepository, auditRepo repositories.PermissionAuditRepository) OverrideService {
	return &overrideService{
		overrideRepo: overrideRepo,
		auditRepo:    auditRepo,
		now:          time.Now,
	}
}

func (s *overrideService) Grant(ctx context.Context, req *GrantOverrideRequest) (*models.EnrollmentOverride, error) {
	if req.Reason == "" {
		return nil, fmt.Errorf("a reason is required to grant an override")
	}
	now := s.now()
	if !req.ExpiresAt.After(now) {
		return nil, fmt.Errorf("expiry must be in the future")
	}
	if req.ExpiresAt.After(now.Add(maxOverrideDuration)) {
		return nil, fmt.Errorf("overrides cannot last longer than 30 days")
	}

	override := &models.EnrollmentOverride{
		ID:        uuid.New(),
		TenantID:  req.TenantID,
		UserID:    req.UserID,
		Action:    req.Action,
		Reason:    req.Reason,
		Active:    true,
		IssuedBy:  req.IssuedBy,
		ExpiresAt: req.ExpiresAt,
	}
	if err := s.overrideRepo.Create(ctx, override); err != nil {
		return nil, fmt.Errorf("failed to create override: %w", err)
	}
	return override, nil
}

func (s *overrideService) Revoke(ctx context.Context, id uuid.UUID) error {
	return s.overrideRepo.Deactivate(ctx, id)
}

func (s *overrideService) AuditTrail(ctx context.Context, tenantID uuid.UUID, filters *models.PermissionAuditFilters) ([]*models.PermissionAudit, error) {
	return s.auditRepo.List(ctx, tenantID, filters)
}
