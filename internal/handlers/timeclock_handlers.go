package handlers

import (
	"net/http"
	"time"

	"elevate2/internal/common"
	"elevate2/internal/services"

	"github.com/labstack/echo/v4"
)

// TimeclockHandlers handles timeclock and hours HTTP requests
type TimeclockHandlers struct {
	timeclockService services.TimeclockService
}

// NewTimeclockHandlers creates a new timeclock handlers instance
func NewTimeclockHandlers(timeclockService services.TimeclockService) *TimeclockHandlers {
	return &TimeclockHandlers{timeclockService: timeclockService}
}

// TimeclockActionRequest is a clock-in or clock-out attempt. The bypass
// field is accepted for backwards compatibility and deliberately ignored.
type TimeclockActionRequest struct {
	Action      string  `json:"action" validate:"required"`
	ProgramSlug string  `json:"program_slug" validate:"required"`
	PartnerID   *string `json:"partner_id"`
	SiteID      *string `json:"site_id"`
	Notes       *string `json:"notes"`
	Bypass      bool    `json:"bypass"`
}

// TimeclockAction handles clock_in and clock_out attempts
func (h *TimeclockHandlers) TimeclockAction(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req TimeclockActionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.ProgramSlug, "program_slug"); err != nil {
		return common.SendValidationError(c, "program_slug", err.Error())
	}

	serviceReq := &services.ClockRequest{
		TenantID:    tenantID,
		UserID:      userID,
		ProgramSlug: req.ProgramSlug,
		Notes:       req.Notes,
	}
	if req.PartnerID != nil {
		partnerID, err := common.ValidateUUID(*req.PartnerID, "partner_id")
		if err != nil {
			return common.SendValidationError(c, "partner_id", err.Error())
		}
		serviceReq.PartnerID = &partnerID
	}
	if req.SiteID != nil {
		siteID, err := common.ValidateUUID(*req.SiteID, "site_id")
		if err != nil {
			return common.SendValidationError(c, "site_id", err.Error())
		}
		serviceReq.SiteID = &siteID
	}

	var result *services.TimeclockResult
	var err error
	switch req.Action {
	case "clock_in":
		result, err = h.timeclockService.ClockIn(ctx, serviceReq)
	case "clock_out":
		result, err = h.timeclockService.ClockOut(ctx, serviceReq)
	default:
		return common.SendValidationError(c, "action", "action must be clock_in or clock_out")
	}
	if err != nil {
		return common.SendServerError(c, err.Error())
	}

	if !result.Decision.Allowed {
		return c.JSON(http.StatusForbidden, result.Decision)
	}
	return c.JSON(http.StatusOK, result)
}

// LogHoursRequest is a manual hours entry
type LogHoursRequest struct {
	ProgramSlug string  `json:"program_slug" validate:"required"`
	Hours       float64 `json:"hours" validate:"required"`
	Date        string  `json:"date"`
	PartnerID   *string `json:"partner_id"`
	SiteID      *string `json:"site_id"`
	Notes       *string `json:"notes"`
}

// LogHours handles manual apprenticeship hour entries
func (h *TimeclockHandlers) LogHours(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req LogHoursRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.ProgramSlug, "program_slug"); err != nil {
		return common.SendValidationError(c, "program_slug", err.Error())
	}
	if req.Hours <= 0 {
		return common.SendValidationError(c, "hours", "hours must be positive")
	}

	workedAt := time.Now()
	if req.Date != "" {
		if err := common.ValidateDateFormat(req.Date, "date"); err != nil {
			return common.SendValidationError(c, "date", err.Error())
		}
		if parsed, err := time.Parse("2006-01-02", req.Date); err == nil {
			workedAt = parsed
		}
	}

	serviceReq := &services.ManualHoursRequest{
		TenantID:    tenantID,
		UserID:      userID,
		ProgramSlug: req.ProgramSlug,
		Hours:       req.Hours,
		WorkedAt:    workedAt,
		Notes:       req.Notes,
	}
	if req.PartnerID != nil {
		partnerID, err := common.ValidateUUID(*req.PartnerID, "partner_id")
		if err != nil {
			return common.SendValidationError(c, "partner_id", err.Error())
		}
		serviceReq.PartnerID = &partnerID
	}
	if req.SiteID != nil {
		siteID, err := common.ValidateUUID(*req.SiteID, "site_id")
		if err != nil {
			return common.SendValidationError(c, "site_id", err.Error())
		}
		serviceReq.SiteID = &siteID
	}

	result, err := h.timeclockService.LogManualHours(ctx, serviceReq)
	if err != nil {
		return common.SendServerError(c, err.Error())
	}
	if !result.Decision.Allowed {
		return c.JSON(http.StatusForbidden, result.Decision)
	}
	return c.JSON(http.StatusCreated, result)
}

// GetSummary handles the hours progress summary
func (h *TimeclockHandlers) GetSummary(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	programSlug := c.QueryParam("program_slug")
	if err := common.ValidateRequiredString(programSlug, "program_slug"); err != nil {
		return common.SendValidationError(c, "program_slug", err.Error())
	}

	summary, err := h.timeclockService.Summary(ctx, userID, programSlug)
	if err != nil {
		return common.SendNotFoundError(c, "Enrollment")
	}
	return c.JSON(http.StatusOK, summary)
}

// ListEntries handles listing the caller's timeclock entries
func (h *TimeclockHandlers) ListEntries(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	programSlug := c.QueryParam("program_slug")
	if err := common.ValidateRequiredString(programSlug, "program_slug"); err != nil {
		return common.SendValidationError(c, "program_slug", err.Error())
	}

	limit, offset := paginationParams(c, 50, 200)
	entries, err := h.timeclockService.Entries(ctx, userID, programSlug, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list entries")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"entries": entries,
		"limit":   limit,
		"offset":  offset,
	})
}
