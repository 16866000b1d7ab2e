package handlers

import (
	"net/http"
	"time"

	"elevate2/internal/caching"
	"elevate2/internal/common"
	"elevate2/internal/models"
	"elevate2/internal/repositories"

	"github.com/labstack/echo/v4"
)

const programCacheTTL = 30 * time.Minute

// ProgramHandlers handles program catalog HTTP requests
type ProgramHandlers struct {
	programRepo repositories.ProgramRepository
	cacheSvc    caching.CacheService
}

// NewProgramHandlers creates a new program handlers instance
func NewProgramHandlers(programRepo repositories.ProgramRepository, cacheSvc caching.CacheService) *ProgramHandlers {
	return &ProgramHandlers{programRepo: programRepo, cacheSvc: cacheSvc}
}

// ListPrograms handles listing the tenant's program catalog
func (h *ProgramHandlers) ListPrograms(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := paginationParams(c, 50, 200)
	programs, err := h.programRepo.List(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list programs")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"programs": programs,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetProgram handles fetching one program by slug, cache first
func (h *ProgramHandlers) GetProgram(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	slug := c.Param("slug")
	if err := common.ValidateRequiredString(slug, "slug"); err != nil {
		return common.SendValidationError(c, "slug", err.Error())
	}

	if cached, err := h.cacheSvc.GetProgram(ctx, tenantID, slug); err == nil && cached != nil {
		return c.JSON(http.StatusOK, cached)
	}

	program, err := h.programRepo.GetBySlug(ctx, tenantID, slug)
	if err != nil {
		return common.SendServerError(c, "Failed to fetch program")
	}
	if program == nil {
		return common.SendNotFoundError(c, "Program")
	}

	// Best effort; a cache write failure is not the client's problem.
	_ = h.cacheSvc.SetProgram(ctx, tenantID, program, programCacheTTL)

	return c.JSON(http.StatusOK, program)
}

// GetProgramActions reports which enrollment actions the program type
// permits, so clients can hide controls instead of surfacing denials
func (h *ProgramHandlers) GetProgramActions(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	slug := c.Param("slug")
	program, err := h.programRepo.GetBySlug(ctx, tenantID, slug)
	if err != nil {
		return common.SendServerError(c, "Failed to fetch program")
	}
	if program == nil {
		return common.SendNotFoundError(c, "Program")
	}

	actions := map[models.EnrollmentAction]bool{}
	for _, action := range []models.EnrollmentAction{
		models.ActionClockIn, models.ActionClockOut, models.ActionLogHoursManual,
		models.ActionCheckinCode, models.ActionCourseAccess,
	} {
		actions[action] = program.Type.Allows(action)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"program_type": program.Type,
		"actions":      actions,
	})
}
