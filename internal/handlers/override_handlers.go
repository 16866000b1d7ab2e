package handlers

import (
	"net/http"
	"time"

	"elevate2/internal/common"
	"elevate2/internal/models"
	"elevate2/internal/services"

	"github.com/labstack/echo/v4"
)

// OverrideHandlers handles admin override and audit trail HTTP requests
type OverrideHandlers struct {
	overrideService services.OverrideService
}

// NewOverrideHandlers creates a new override handlers instance
func NewOverrideHandlers(overrideService services.OverrideService) *OverrideHandlers {
	return &OverrideHandlers{overrideService: overrideService}
}

// GrantOverrideRequest is the admin payload for creating an exemption
type GrantOverrideRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	Action    string `json:"action" validate:"required"`
	Reason    string `json:"reason" validate:"required"`
	ExpiresAt string `json:"expires_at" validate:"required"`
}

// GrantOverride handles creating an enforcement override (admin only)
func (h *OverrideHandlers) GrantOverride(c echo.Context) error {
	ctx := c.Request().Context()
	issuerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req GrantOverrideRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	userID, err := common.ValidateUUID(req.UserID, "user_id")
	if err != nil {
		return common.SendValidationError(c, "user_id", err.Error())
	}
	if err := common.ValidateRequiredString(req.Reason, "reason"); err != nil {
		return common.SendValidationError(c, "reason", err.Error())
	}
	expiresAt, err := time.Parse(time.RFC3339, req.ExpiresAt)
	if err != nil {
		return common.SendValidationError(c, "expires_at", "must be RFC3339 timestamp")
	}

	override, err := h.overrideService.Grant(ctx, &services.GrantOverrideRequest{
		TenantID:  tenantID,
		UserID:    userID,
		Action:    models.EnrollmentAction(req.Action),
		Reason:    req.Reason,
		IssuedBy:  issuerID,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, override)
}

// RevokeOverride handles deactivating an override (admin only)
func (h *OverrideHandlers) RevokeOverride(c echo.Context) error {
	overrideID, err := common.ValidateUUID(c.Param("id"), "override id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.overrideService.Revoke(c.Request().Context(), overrideID); err != nil {
		return common.SendServerError(c, "Failed to revoke override")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Override revoked"})
}

// ListAuditTrail handles querying the permission audit trail (staff only)
func (h *OverrideHandlers) ListAuditTrail(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	filters := &models.PermissionAuditFilters{}
	filters.Limit, filters.Offset = paginationParams(c, 50, 500)

	if v := c.QueryParam("user_id"); v != "" {
		userID, err := common.ValidateUUID(v, "user_id")
		if err != nil {
			return common.SendValidationError(c, "user_id", err.Error())
		}
		filters.UserID = &userID
	}
	if v := c.QueryParam("event_type"); v != "" {
		filters.EventType = &v
	}
	if v := c.QueryParam("action"); v != "" {
		action := models.EnrollmentAction(v)
		filters.Action = &action
	}

	audits, err := h.overrideService.AuditTrail(ctx, tenantID, filters)
	if err != nil {
		return common.SendServerError(c, "Failed to query audit trail")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"audits": audits,
		"limit":  filters.Limit,
		"offset": filters.Offset,
	})
}
