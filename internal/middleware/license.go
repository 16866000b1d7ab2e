package middleware

import (
	"errors"
	"net/http"
	"time"

	"elevate2/internal/caching"
	"elevate2/internal/common"
	"elevate2/internal/models"
	"elevate2/internal/repositories"
	"elevate2/internal/services"

	"github.com/labstack/echo/v4"
)

// LicenseContextKey is where the guard parks the validated license for
// downstream handlers.
const LicenseContextKey = "license"

// licenseCacheTTL bounds how long a revoked or lapsed license can keep
// serving after the cached copy was validated.
const licenseCacheTTL = 30 * time.Second

// licenseErrorBody is the flat entitlement denial contract. Code is the
// discriminant clients branch on; the remaining optional fields carry the
// remediation detail for the matching code.
type licenseErrorBody struct {
	Error         string `json:"error"`
	Code          string `json:"code"`
	LicenseStatus string `json:"licenseStatus,omitempty"`
	Authority     string `json:"authority,omitempty"`
	Feature       string `json:"feature,omitempty"`
	LimitType     string `json:"limitType,omitempty"`
	Current       *int   `json:"current,omitempty"`
	Max           *int   `json:"max,omitempty"`
}

// LicenseGuard blocks tenant traffic without a valid license. It runs after
// JWT middleware, which establishes the tenant. License failures use 402 so
// clients can distinguish billing problems from permission problems.
// Validated licenses are cached briefly; denials are never cached.
func LicenseGuard(licenseService services.LicenseService, cache caching.CacheService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			tenantID, ok := common.GetTenantIDFromContext(ctx)
			if !ok {
				return common.SendUnauthorizedError(c)
			}

			if cached, err := cache.GetLicense(ctx, tenantID); err == nil && cached != nil {
				c.Set(LicenseContextKey, cached)
				return next(c)
			}

			license, err := licenseService.RequireActive(ctx, tenantID)
			if err != nil {
				var licErr *services.LicenseError
				if errors.As(err, &licErr) {
					return c.JSON(licErr.StatusCode, licenseErrorBody{
						Error:         licErr.Message,
						Code:          "LICENSE_REQUIRED",
						LicenseStatus: licErr.Code,
						Authority:     string(licErr.Authority),
					})
				}
				return common.SendServerError(c, "Failed to verify license")
			}

			_ = cache.SetLicense(ctx, tenantID, license, licenseCacheTTL)

			c.Set(LicenseContextKey, license)
			return next(c)
		}
	}
}

// RequireFeature gates a route on a plan feature flag. Must run after
// LicenseGuard.
func RequireFeature(licenseService services.LicenseService, feature string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			license := LicenseFromContext(c)
			if license == nil {
				return common.SendServerError(c, "License not loaded")
			}
			if err := licenseService.RequireFeature(license, feature); err != nil {
				return c.JSON(http.StatusForbidden, licenseErrorBody{
					Error:   err.Error(),
					Code:    "FEATURE_NOT_ENABLED",
					Feature: feature,
				})
			}
			return next(c)
		}
	}
}

// RequireStudentCapacity blocks new enrollments once the plan's student cap
// is reached. Must run after LicenseGuard.
func RequireStudentCapacity(licenseService services.LicenseService, enrollments repositories.ProgramEnrollmentRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			license := LicenseFromContext(c)
			if license == nil {
				return common.SendServerError(c, "License not loaded")
			}
			tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
			if !ok {
				return common.SendUnauthorizedError(c)
			}

			current, err := enrollments.CountActiveByTenant(c.Request().Context(), tenantID)
			if err != nil {
				return common.SendServerError(c, "Failed to check enrollment capacity")
			}
			if err := licenseService.CheckLimit(license, models.LimitStudents, current); err != nil {
				var limitErr *services.LimitExceededError
				if errors.As(err, &limitErr) {
					return c.JSON(http.StatusForbidden, licenseErrorBody{
						Error:     limitErr.Error(),
						Code:      "LIMIT_EXCEEDED",
						LimitType: limitErr.LimitType,
						Current:   &limitErr.Current,
						Max:       &limitErr.Max,
					})
				}
				return common.SendServerError(c, "Failed to check enrollment capacity")
			}
			return next(c)
		}
	}
}

// LicenseFromContext returns the license stored by LicenseGuard, nil when
// the guard has not run.
func LicenseFromContext(c echo.Context) *models.License {
	license, _ := c.Get(LicenseContextKey).(*models.License)
	return license
}
