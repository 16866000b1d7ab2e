package handlers

import (
	"net/http"

	"elevate2/internal/common"
	"elevate2/internal/middleware"
	"elevate2/internal/services"

	"github.com/labstack/echo/v4"
)

// LicenseHandlers handles license and entitlement HTTP requests
type LicenseHandlers struct {
	licenseService services.LicenseService
}

// NewLicenseHandlers creates a new license handlers instance
func NewLicenseHandlers(licenseService services.LicenseService) *LicenseHandlers {
	return &LicenseHandlers{licenseService: licenseService}
}

// GetLicense returns the tenant's validated license. The license guard has
// already run, so reaching this handler means the license is good.
func (h *LicenseHandlers) GetLicense(c echo.Context) error {
	license := middleware.LicenseFromContext(c)
	if license == nil {
		return common.SendServerError(c, "License not loaded")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"license":   license,
		"authority": license.BillingAuthority(),
	})
}

// CheckFeature reports whether a plan feature is enabled for the tenant
func (h *LicenseHandlers) CheckFeature(c echo.Context) error {
	license := middleware.LicenseFromContext(c)
	if license == nil {
		return common.SendServerError(c, "License not loaded")
	}

	feature := c.Param("feature")
	if err := common.ValidateRequiredString(feature, "feature"); err != nil {
		return common.SendValidationError(c, "feature", err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"feature": feature,
		"enabled": license.HasFeature(feature),
	})
}
