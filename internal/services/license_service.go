package services

import (
	"context"
	"fmt"
	"time"

	"elevate2/internal/models"
	"elevate2/internal/repositories"

	"github.com/google/uuid"
)

// LicenseService is the entitlement guard. It only reads; billing webhooks
// and admin actions mutate licenses elsewhere. Every failure is terminal
// for the current request, so it is safe to call on every route.
type LicenseService interface {
	RequireActive(ctx context.Context, tenantID uuid.UUID) (*models.License, error)
	RequireFeature(license *models.License, feature string) error
	CheckLimit(license *models.License, limitType string, current int) error
}

type licenseService struct {
	licenseRepo repositories.LicenseRepository
	now         func() time.Time
}

func NewLicenseService(licenseRepo repositories.LicenseRepository) LicenseService {
	return &licenseService{
		licenseRepo: licenseRepo,
		now:         time.Now,
	}
}

// RequireActive fetches the tenant's license and validates access. The
// billing authority decides which expiry field counts: subscription tiers
// go by current_period_end, everything else by expires_at.
func (s *licenseService) RequireActive(ctx context.Context, tenantID uuid.UUID) (*models.License, error) {
	license, err := s.licenseRepo.GetActive(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch license: %w", err)
	}
	if license == nil {
		return nil, newLicenseError(LicenseMissing, models.BillingAuthorityDatabase,
			"No license found for this organization. Purchase a plan to continue.")
	}

	authority := license.BillingAuthority()

	switch license.Status {
	case models.LicenseStatusSuspended:
		return nil, newLicenseError(LicenseSuspended, authority,
			"License is suspended. Update your payment method to restore access.")
	case models.LicenseStatusRevoked:
		return nil, newLicenseError(LicenseRevoked, authority,
			"License has been revoked. Contact support.")
	}

	if !license.AccessValid(s.now()) {
		return nil, newLicenseError(LicenseExpired, authority,
			"License has expired. Renew your plan to continue.")
	}

	return license, nil
}

// RequireFeature checks the feature flag on an already-validated license.
func (s *licenseService) RequireFeature(license *models.License, feature string) error {
	if !license.HasFeature(feature) {
		return &FeatureNotEnabledError{Feature: feature}
	}
	return nil
}

// CheckLimit enforces a plan cap. A nil cap means unlimited.
func (s *licenseService) CheckLimit(license *models.License, limitType string, current int) error {
	max := license.LimitFor(limitType)
	if max == nil {
		return nil
	}
	if current >= *max {
		return &LimitExceededError{LimitType: limitType, Current: current, Max: *max}
	}
	return nil
}
