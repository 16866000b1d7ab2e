package services

import (
	"context"
	"fmt"
	"time"

	"elevate2/internal/models"
	"elevate2/internal/repositories"

	"github.com/google/uuid"
)

// ClockRequest covers clock-in and clock-out attempts.
type ClockRequest struct {
	TenantID    uuid.UUID
	UserID      uuid.UUID
	ProgramSlug string
	PartnerID   *uuid.UUID
	SiteID      *uuid.UUID
	Notes       *string
}

// ManualHoursRequest logs a closed entry directly, staff-entered or
// self-reported depending on program policy.
type ManualHoursRequest struct {
	TenantID    uuid.UUID
	UserID      uuid.UUID
	ProgramSlug string
	Hours       float64
	WorkedAt    time.Time
	PartnerID   *uuid.UUID
	SiteID      *uuid.UUID
	Notes       *string
}

// TimeclockResult pairs the enforcement decision with the entry it produced.
// A denied decision has no entry and is not an error.
type TimeclockResult struct {
	Decision *Decision              `json:"decision"`
	Entry    *models.TimeclockEntry `json:"entry,omitempty"`
}

// HoursSummary reports accumulated hours against the program requirement.
type HoursSummary struct {
	EnrollmentID    uuid.UUID `json:"enrollment_id"`
	ProgramSlug     string    `json:"program_slug"`
	TotalHours      float64   `json:"total_hours"`
	RequiredHours   *int      `json:"required_hours,omitempty"`
	ProgressPercent *float64  `json:"progress_percent,omitempty"`
	OpenSession     bool      `json:"open_session"`
}

type TimeclockService interface {
	ClockIn(ctx context.Context, req *ClockRequest) (*TimeclockResult, error)
	ClockOut(ctx context.Context, req *ClockRequest) (*TimeclockResult, error)
	LogManualHours(ctx context.Context, req *ManualHoursRequest) (*TimeclockResult, error)
	Summary(ctx context.Context, userID uuid.UUID, programSlug string) (*HoursSummary, error)
	Entries(ctx context.Context, userID uuid.UUID, programSlug string, limit, offset int) ([]*models.TimeclockEntry, error)
}

type timeclockService struct {
	enforcement    EnforcementService
	timeclockRepo  repositories.TimeclockRepository
	enrollmentRepo repositories.ProgramEnrollmentRepository
	now            func() time.Time
}

func NewTimeclockService(
	enforcement EnforcementService,
	timeclockRepo repositories.TimeclockRepository,
	enrollmentRepo repositories.ProgramEnrollmentRepository,
) TimeclockService {
	return &timeclockService{
		enforcement:    enforcement,
		timeclockRepo:  timeclockRepo,
		enrollmentRepo: enrollmentRepo,
		now:            time.Now,
	}
}

func (s *timeclockService) ClockIn(ctx context.Context, req *ClockRequest) (*TimeclockResult, error) {
	decision, err := s.enforcement.AuthorizeWithOverride(ctx, &AuthorizeRequest{
		TenantID:    req.TenantID,
		UserID:      req.UserID,
		ProgramSlug: req.ProgramSlug,
		Action:      models.ActionClockIn,
		PartnerID:   req.PartnerID,
		SiteID:      req.SiteID,
	})
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return &TimeclockResult{Decision: decision}, nil
	}

	open, err := s.timeclockRepo.FindOpen(ctx, *decision.EnrollmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check open session: %w", err)
	}
	if open != nil {
		return nil, fmt.Errorf("an open session already exists, clock out first")
	}

	entry := &models.TimeclockEntry{
		ID:           uuid.New(),
		TenantID:     req.TenantID,
		EnrollmentID: *decision.EnrollmentID,
		UserID:       req.UserID,
		PartnerID:    req.PartnerID,
		SiteID:       req.SiteID,
		Method:       models.HoursMethodTimeclock,
		ClockIn:      s.now(),
		Notes:        req.Notes,
	}
	if err := s.timeclockRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create timeclock entry: %w", err)
	}
	return &TimeclockResult{Decision: decision, Entry: entry}, nil
}

func (s *timeclockService) ClockOut(ctx context.Context, req *ClockRequest) (*TimeclockResult, error) {
	decision, err := s.enforcement.AuthorizeWithOverride(ctx, &AuthorizeRequest{
		TenantID:    req.TenantID,
		UserID:      req.UserID,
		ProgramSlug: req.ProgramSlug,
		Action:      models.ActionClockOut,
		PartnerID:   req.PartnerID,
		SiteID:      req.SiteID,
	})
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return &TimeclockResult{Decision: decision}, nil
	}

	open, err := s.timeclockRepo.FindOpen(ctx, *decision.EnrollmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check open session: %w", err)
	}
	if open == nil {
		return nil, fmt.Errorf("no open session to clock out of")
	}

	closed, err := s.timeclockRepo.Close(ctx, open.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to close timeclock entry: %w", err)
	}
	return &TimeclockResult{Decision: decision, Entry: closed}, nil
}

func (s *timeclockService) LogManualHours(ctx context.Context, req *ManualHoursRequest) (*TimeclockResult, error) {
	if req.Hours <= 0 || req.Hours > 24 {
		return nil, fmt.Errorf("hours must be between 0 and 24")
	}

	decision, err := s.enforcement.AuthorizeWithOverride(ctx, &AuthorizeRequest{
		TenantID:    req.TenantID,
		UserID:      req.UserID,
		ProgramSlug: req.ProgramSlug,
		Action:      models.ActionLogHoursManual,
		PartnerID:   req.PartnerID,
		SiteID:      req.SiteID,
	})
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return &TimeclockResult{Decision: decision}, nil
	}

	clockIn := req.WorkedAt
	clockOut := clockIn.Add(time.Duration(req.Hours * float64(time.Hour)))
	hours := req.Hours
	entry := &models.TimeclockEntry{
		ID:           uuid.New(),
		TenantID:     req.TenantID,
		EnrollmentID: *decision.EnrollmentID,
		UserID:       req.UserID,
		PartnerID:    req.PartnerID,
		SiteID:       req.SiteID,
		Method:       models.HoursMethodManual,
		ClockIn:      clockIn,
		ClockOut:     &clockOut,
		Hours:        &hours,
		Notes:        req.Notes,
	}
	if err := s.timeclockRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to log manual hours: %w", err)
	}
	return &TimeclockResult{Decision: decision, Entry: entry}, nil
}

func (s *timeclockService) Summary(ctx context.Context, userID uuid.UUID, programSlug string) (*HoursSummary, error) {
	enrollment, program, err := s.enrollmentRepo.FindActiveWithProgram(ctx, userID, programSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to load enrollment: %w", err)
	}
	if enrollment == nil || program == nil {
		return nil, fmt.Errorf("no active enrollment for program %s", programSlug)
	}

	total, err := s.timeclockRepo.TotalHours(ctx, enrollment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum hours: %w", err)
	}
	open, err := s.timeclockRepo.FindOpen(ctx, enrollment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check open session: %w", err)
	}

	summary := &HoursSummary{
		EnrollmentID:  enrollment.ID,
		ProgramSlug:   program.Slug,
		TotalHours:    total,
		RequiredHours: program.TotalHours,
		OpenSession:   open != nil,
	}
	if program.TotalHours != nil && *program.TotalHours > 0 {
		pct := total / float64(*program.TotalHours) * 100
		if pct > 100 {
			pct = 100
		}
		summary.ProgressPercent = &pct
	}
	return summary, nil
}

func (s *timeclockService) Entries(ctx context.Context, userID uuid.UUID, programSlug string, limit, offset int) ([]*models.TimeclockEntry, error) {
	enrollment, err := s.enrollmentRepo.FindActive(ctx, userID, programSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to load enrollment: %w", err)
	}
	if enrollment == nil {
		return nil, fmt.Errorf("no active enrollment for program %s", programSlug)
	}
	return s.timeclockRepo.ListByEnrollment(ctx, enrollment.ID, limit, offset)
}
