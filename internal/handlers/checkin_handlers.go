package handlers

import (
	"net/http"
	"time"

	"elevate2/internal/common"
	"elevate2/internal/services"

	"github.com/labstack/echo/v4"
)

// CheckinHandlers handles attendance code HTTP requests
type CheckinHandlers struct {
	checkinService services.CheckinService
}

// NewCheckinHandlers creates a new checkin handlers instance
func NewCheckinHandlers(checkinService services.CheckinService) *CheckinHandlers {
	return &CheckinHandlers{checkinService: checkinService}
}

// IssueCodeRequest is the staff payload for minting an attendance code
type IssueCodeRequest struct {
	ProgramID  string  `json:"program_id" validate:"required"`
	SiteID     *string `json:"site_id"`
	Hours      float64 `json:"hours" validate:"required"`
	TTLMinutes int     `json:"ttl_minutes"`
}

// IssueCode handles minting an attendance code (staff only)
func (h *CheckinHandlers) IssueCode(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req IssueCodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	programID, err := common.ValidateUUID(req.ProgramID, "program_id")
	if err != nil {
		return common.SendValidationError(c, "program_id", err.Error())
	}

	serviceReq := &services.IssueCodeRequest{
		TenantID:  tenantID,
		IssuedBy:  userID,
		ProgramID: programID,
		Hours:     req.Hours,
		TTL:       time.Duration(req.TTLMinutes) * time.Minute,
	}
	if req.SiteID != nil {
		siteID, err := common.ValidateUUID(*req.SiteID, "site_id")
		if err != nil {
			return common.SendValidationError(c, "site_id", err.Error())
		}
		serviceReq.SiteID = &siteID
	}

	code, err := h.checkinService.IssueCode(ctx, serviceReq)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, code)
}

// RedeemCodeRequest is the student payload for redeeming a code
type RedeemCodeRequest struct {
	Code        string `json:"code" validate:"required"`
	ProgramSlug string `json:"program_slug" validate:"required"`
}

// RedeemCode handles a student redeeming an attendance code for hours
func (h *CheckinHandlers) RedeemCode(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req RedeemCodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Code, "code"); err != nil {
		return common.SendValidationError(c, "code", err.Error())
	}
	if err := common.ValidateRequiredString(req.ProgramSlug, "program_slug"); err != nil {
		return common.SendValidationError(c, "program_slug", err.Error())
	}

	result, err := h.checkinService.RedeemCode(ctx, &services.RedeemCodeRequest{
		TenantID:    tenantID,
		UserID:      userID,
		ProgramSlug: req.ProgramSlug,
		Code:        req.Code,
	})
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	if !result.Decision.Allowed {
		return c.JSON(http.StatusForbidden, result.Decision)
	}
	return c.JSON(http.StatusCreated, result)
}
