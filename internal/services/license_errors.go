package services

import (
	"fmt"
	"net/http"

	"elevate2/internal/models"
)

// License failure codes carried on LicenseError.
const (
	LicenseMissing   = "missing"
	LicenseSuspended = "suspended"
	LicenseExpired   = "expired"
	LicenseRevoked   = "revoked"
)

// LicenseError is a typed entitlement failure. StatusCode is the HTTP
// status the caller should answer with: 402 for recoverable states
// (missing, suspended, expired), 403 for revoked.
type LicenseError struct {
	Code       string
	StatusCode int
	Authority  models.BillingAuthority
	Message    string
}

func (e *LicenseError) Error() string {
	return e.Message
}

func newLicenseError(code string, authority models.BillingAuthority, message string) *LicenseError {
	status := http.StatusPaymentRequired
	if code == LicenseRevoked {
		status = http.StatusForbidden
	}
	return &LicenseError{
		Code:       code,
		StatusCode: status,
		Authority:  authority,
		Message:    message,
	}
}

// FeatureNotEnabledError means the feature flag is off for the tenant's
// plan. Always 403; recoverable by upgrade.
type FeatureNotEnabledError struct {
	Feature string
}

func (e *FeatureNotEnabledError) Error() string {
	return fmt.Sprintf("feature %q is not enabled for this plan", e.Feature)
}

// LimitExceededError means a numeric plan cap was reached. Always 403.
type LimitExceededError struct {
	LimitType string
	Current   int
	Max       int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("%s limit reached (%d of %d)", e.LimitType, e.Current, e.Max)
}
