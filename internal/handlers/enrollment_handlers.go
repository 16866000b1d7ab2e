package handlers

import (
	"net/http"
	"time"

	"elevate2/internal/common"
	"elevate2/internal/models"
	"elevate2/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// EnrollmentHandlers handles enrollment routing HTTP requests
type EnrollmentHandlers struct {
	enrollmentService services.EnrollmentService
}

// NewEnrollmentHandlers creates a new enrollment handlers instance
func NewEnrollmentHandlers(enrollmentService services.EnrollmentService) *EnrollmentHandlers {
	return &EnrollmentHandlers{enrollmentService: enrollmentService}
}

// CreateEnrollmentRequest is the unified enrollment payload. Exactly which
// table it lands in is decided server side from the fields present.
type CreateEnrollmentRequest struct {
	CourseID         *string `json:"course_id"`
	ProgramID        *string `json:"program_id"`
	ProgramSlug      string  `json:"program_slug"`
	FundingSource    *string `json:"funding_source"`
	ProgramHolderID  *string `json:"program_holder_id"`
	CaseID           *string `json:"case_id"`
	StripeSessionID  *string `json:"stripe_session_id"`
	EnrollmentMethod *string `json:"enrollment_method"`
	StartDate        *string `json:"start_date"`
}

// CreateEnrollment handles creating an enrollment through the unified router
func (h *EnrollmentHandlers) CreateEnrollment(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CreateEnrollmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	serviceReq := &services.UnifiedEnrollmentRequest{
		UserID:           userID,
		ProgramSlug:      req.ProgramSlug,
		FundingSource:    req.FundingSource,
		CaseID:           req.CaseID,
		StripeSessionID:  req.StripeSessionID,
		EnrollmentMethod: req.EnrollmentMethod,
	}

	if req.CourseID != nil {
		courseID, err := common.ValidateUUID(*req.CourseID, "course_id")
		if err != nil {
			return common.SendValidationError(c, "course_id", err.Error())
		}
		serviceReq.CourseID = &courseID
	}
	if req.ProgramID != nil {
		programID, err := common.ValidateUUID(*req.ProgramID, "program_id")
		if err != nil {
			return common.SendValidationError(c, "program_id", err.Error())
		}
		serviceReq.ProgramID = &programID
	}
	if req.ProgramHolderID != nil {
		holderID, err := common.ValidateUUID(*req.ProgramHolderID, "program_holder_id")
		if err != nil {
			return common.SendValidationError(c, "program_holder_id", err.Error())
		}
		serviceReq.ProgramHolderID = &holderID
	}
	if req.StartDate != nil {
		if err := common.ValidateDateFormat(*req.StartDate, "start_date"); err != nil {
			return common.SendValidationError(c, "start_date", err.Error())
		}
		if start, err := time.Parse("2006-01-02", *req.StartDate); err == nil {
			serviceReq.StartDate = &start
		}
	}

	result, err := h.enrollmentService.CreateUnified(c.Request().Context(), serviceReq)
	if err != nil {
		return common.SendServerError(c, "Failed to create enrollment")
	}

	if !result.Success {
		if result.AlreadyEnrolled {
			return c.JSON(http.StatusConflict, result)
		}
		return c.JSON(http.StatusBadRequest, result)
	}
	return c.JSON(http.StatusCreated, result)
}

// ListEnrollments handles fetching all of the caller's enrollments across
// the three tables
func (h *EnrollmentHandlers) ListEnrollments(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	enrollments, err := h.enrollmentService.GetUserEnrollments(c.Request().Context(), userID)
	if err != nil {
		return common.SendServerError(c, "Failed to list enrollments")
	}
	return c.JSON(http.StatusOK, enrollments)
}

// CheckStatusRequest identifies the enrollment being queried
type CheckStatusRequest struct {
	CourseID    *string `json:"course_id"`
	ProgramID   *string `json:"program_id"`
	ProgramSlug string  `json:"program_slug"`
}

// CheckStatus handles the read-only enrollment status lookup
func (h *EnrollmentHandlers) CheckStatus(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CheckStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	serviceReq := &services.UnifiedEnrollmentRequest{
		UserID:      userID,
		ProgramSlug: req.ProgramSlug,
	}
	if req.CourseID != nil {
		courseID, err := uuid.Parse(*req.CourseID)
		if err != nil {
			return common.SendValidationError(c, "course_id", "invalid UUID format")
		}
		serviceReq.CourseID = &courseID
	}
	if req.ProgramID != nil {
		programID, err := uuid.Parse(*req.ProgramID)
		if err != nil {
			return common.SendValidationError(c, "program_id", "invalid UUID format")
		}
		serviceReq.ProgramID = &programID
	}

	status, err := h.enrollmentService.CheckStatus(c.Request().Context(), serviceReq)
	if err != nil {
		return common.SendServerError(c, "Failed to check enrollment status")
	}
	return c.JSON(http.StatusOK, status)
}

// CompleteOrientationRequest names the program whose orientation was done
type CompleteOrientationRequest struct {
	ProgramSlug string `json:"program_slug" validate:"required"`
}

// CompleteOrientation handles marking orientation complete for the caller
func (h *EnrollmentHandlers) CompleteOrientation(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CompleteOrientationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.ProgramSlug, "program_slug"); err != nil {
		return common.SendValidationError(c, "program_slug", err.Error())
	}

	if err := h.enrollmentService.CompleteOrientation(c.Request().Context(), userID, req.ProgramSlug); err != nil {
		return common.SendServerError(c, "Failed to complete orientation")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Orientation completed"})
}

// UpdateStateRequest carries the staff lifecycle decision
type UpdateStateRequest struct {
	State string `json:"state" validate:"required"`
}

// UpdateEnrollmentState handles staff suspending, reinstating or completing
// a program enrollment
func (h *EnrollmentHandlers) UpdateEnrollmentState(c echo.Context) error {
	enrollmentID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req UpdateStateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	state := models.EnrollmentState(req.State)
	if !state.Valid() {
		return common.SendValidationError(c, "state", "unknown enrollment state")
	}

	if err := h.enrollmentService.SetEnrollmentState(c.Request().Context(), enrollmentID, state); err != nil {
		return common.SendServerError(c, "Failed to update enrollment state")
	}
	return c.JSON(http.StatusOK, map[string]string{"state": req.State})
}
