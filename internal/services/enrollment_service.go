package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"elevate2/internal/models"
	"elevate2/internal/repositories"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// workforceFundingPattern marks funding sources routed to the workforce
// table regardless of other fields.
var workforceFundingPattern = regexp.MustCompile(`(?i)WIOA|WRG|JRI|workforce`)

// UnifiedEnrollmentRequest is the router input. UserID is required plus at
// least one of CourseID / ProgramID / ProgramSlug.
type UnifiedEnrollmentRequest struct {
	UserID           uuid.UUID  `json:"user_id"`
	CourseID         *uuid.UUID `json:"course_id,omitempty"`
	ProgramID        *uuid.UUID `json:"program_id,omitempty"`
	ProgramSlug      string     `json:"program_slug,omitempty"`
	FundingSource    *string    `json:"funding_source,omitempty"`
	ProgramHolderID  *uuid.UUID `json:"program_holder_id,omitempty"`
	CaseID           *string    `json:"case_id,omitempty"`
	StripeSessionID  *string    `json:"stripe_session_id,omitempty"`
	EnrollmentMethod *string    `json:"enrollment_method,omitempty"`
	StartDate        *time.Time `json:"start_date,omitempty"`
}

// UnifiedEnrollmentResult reports where the enrollment landed. A conflict
// with an existing active enrollment is Success=false with the existing id,
// not an error.
type UnifiedEnrollmentResult struct {
	Success         bool                  `json:"success"`
	EnrollmentID    *uuid.UUID            `json:"enrollment_id,omitempty"`
	EnrollmentType  models.EnrollmentType `json:"enrollment_type,omitempty"`
	Table           string                `json:"table,omitempty"`
	AlreadyEnrolled bool                  `json:"already_enrolled,omitempty"`
	Error           string                `json:"error,omitempty"`
}

// UserEnrollments is the fan-out read across all three tables.
type UserEnrollments struct {
	Courses   []*models.CourseEnrollment    `json:"courses"`
	Programs  []*models.ProgramEnrollment   `json:"programs"`
	Workforce []*models.WorkforceEnrollment `json:"workforce"`
	All       []models.UnifiedEnrollment    `json:"all"`
}

// EnrollmentStatus is the read-only status lookup result.
type EnrollmentStatus struct {
	Enrolled       bool                  `json:"enrolled"`
	EnrollmentID   *uuid.UUID            `json:"enrollment_id,omitempty"`
	EnrollmentType models.EnrollmentType `json:"enrollment_type,omitempty"`
	Status         string                `json:"status,omitempty"`
}

type EnrollmentService interface {
	CreateUnified(ctx context.Context, req *UnifiedEnrollmentRequest) (*UnifiedEnrollmentResult, error)
	GetUserEnrollments(ctx context.Context, userID uuid.UUID) (*UserEnrollments, error)
	CheckStatus(ctx context.Context, req *UnifiedEnrollmentRequest) (*EnrollmentStatus, error)
	CompleteOrientation(ctx context.Context, userID uuid.UUID, programSlug string) error
	SetEnrollmentState(ctx context.Context, enrollmentID uuid.UUID, state models.EnrollmentState) error
}

type enrollmentService struct {
	courseRepo    repositories.CourseEnrollmentRepository
	programRepo   repositories.ProgramEnrollmentRepository
	workforceRepo repositories.WorkforceEnrollmentRepository
	programs      repositories.ProgramRepository
}

func NewEnrollmentService(
	courseRepo repositories.CourseEnrollmentRepository,
	programRepo repositories.ProgramEnrollmentRepository,
	workforceRepo repositories.WorkforceEnrollmentRepository,
	programs repositories.ProgramRepository,
) EnrollmentService {
	return &enrollmentService{
		courseRepo:    courseRepo,
		programRepo:   programRepo,
		workforceRepo: workforceRepo,
		programs:      programs,
	}
}

// ClassifyEnrollment applies the routing rule, first match wins:
//  1. courseId alone (no program identifiers) -> course
//  2. programHolderId present, or workforce funding source -> workforce
//  3. everything else -> program
func ClassifyEnrollment(req *UnifiedEnrollmentRequest) models.EnrollmentType {
	if req.CourseID != nil && req.ProgramID == nil && req.ProgramSlug == "" {
		return models.EnrollmentTypeCourse
	}
	if req.ProgramHolderID != nil ||
		(req.FundingSource != nil && workforceFundingPattern.MatchString(*req.FundingSource)) {
		return models.EnrollmentTypeWorkforce
	}
	return models.EnrollmentTypeProgram
}

func (s *enrollmentService) CreateUnified(ctx context.Context, req *UnifiedEnrollmentRequest) (*UnifiedEnrollmentResult, error) {
	if req.UserID == uuid.Nil {
		return &UnifiedEnrollmentResult{Success: false, Error: "user_id is required"}, nil
	}
	if req.CourseID == nil && req.ProgramID == nil && req.ProgramSlug == "" {
		return &UnifiedEnrollmentResult{Success: false, Error: "one of course_id, program_id or program_slug is required"}, nil
	}

	switch ClassifyEnrollment(req) {
	case models.EnrollmentTypeCourse:
		return s.createCourse(ctx, req)
	case models.EnrollmentTypeWorkforce:
		return s.createWorkforce(ctx, req)
	default:
		return s.createProgram(ctx, req)
	}
}

func (s *enrollmentService) createCourse(ctx context.Context, req *UnifiedEnrollmentRequest) (*UnifiedEnrollmentResult, error) {
	existing, err := s.courseRepo.FindActive(ctx, req.UserID, *req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", models.TableCourseEnrollments, err)
	}
	if existing != nil {
		return alreadyEnrolled(existing.ID, models.EnrollmentTypeCourse, models.TableCourseEnrollments), nil
	}

	enrollment := &models.CourseEnrollment{
		ID:            uuid.New(),
		UserID:        req.UserID,
		CourseID:      *req.CourseID,
		Status:        models.EnrollmentStatusActive,
		FundingSource: req.FundingSource,
		PaymentID:     req.StripeSessionID,
	}
	if err := s.courseRepo.Create(ctx, enrollment); err != nil {
		if repositories.IsUniqueViolation(err) {
			return s.resolveCourseConflict(ctx, req)
		}
		return nil, fmt.Errorf("%s: %w", models.TableCourseEnrollments, err)
	}

	return created(enrollment.ID, models.EnrollmentTypeCourse, models.TableCourseEnrollments), nil
}

func (s *enrollmentService) createProgram(ctx context.Context, req *UnifiedEnrollmentRequest) (*UnifiedEnrollmentResult, error) {
	slug := req.ProgramSlug
	if slug == "" {
		// Only program_id was supplied; resolve the slug from the catalog.
		program, err := s.programs.GetByID(ctx, *req.ProgramID)
		if err != nil {
			return nil, fmt.Errorf("programs: %w", err)
		}
		if program == nil {
			return &UnifiedEnrollmentResult{Success: false, Error: "program not found"}, nil
		}
		slug = program.Slug
	}

	existing, err := s.programRepo.FindActive(ctx, req.UserID, slug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", models.TableProgramEnrollments, err)
	}
	if existing != nil {
		return alreadyEnrolled(existing.ID, models.EnrollmentTypeProgram, models.TableProgramEnrollments), nil
	}

	enrollment := &models.ProgramEnrollment{
		ID:               uuid.New(),
		StudentID:        req.UserID,
		ProgramID:        req.ProgramID,
		ProgramSlug:      slug,
		Status:           models.EnrollmentStatusActive,
		FundingSource:    req.FundingSource,
		CaseID:           req.CaseID,
		StripeSessionID:  req.StripeSessionID,
		EnrollmentMethod: req.EnrollmentMethod,
		StartDate:        req.StartDate,
	}
	if err := s.programRepo.Create(ctx, enrollment); err != nil {
		if repositories.IsUniqueViolation(err) {
			existing, lookupErr := s.programRepo.FindActive(ctx, req.UserID, slug)
			if lookupErr == nil && existing != nil {
				return alreadyEnrolled(existing.ID, models.EnrollmentTypeProgram, models.TableProgramEnrollments), nil
			}
		}
		return nil, fmt.Errorf("%s: %w", models.TableProgramEnrollments, err)
	}

	return created(enrollment.ID, models.EnrollmentTypeProgram, models.TableProgramEnrollments), nil
}

func (s *enrollmentService) createWorkforce(ctx context.Context, req *UnifiedEnrollmentRequest) (*UnifiedEnrollmentResult, error) {
	if req.ProgramID == nil {
		return &UnifiedEnrollmentResult{Success: false, Error: "program_id is required for workforce enrollments"}, nil
	}

	existing, err := s.workforceRepo.FindInProgress(ctx, req.UserID, *req.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", models.TableWorkforceEnrollments, err)
	}
	if existing != nil {
		return alreadyEnrolled(existing.ID, models.EnrollmentTypeWorkforce, models.TableWorkforceEnrollments), nil
	}

	enrollment := &models.WorkforceEnrollment{
		ID:              uuid.New(),
		StudentID:       req.UserID,
		ProgramID:       *req.ProgramID,
		ProgramHolderID: req.ProgramHolderID,
		FundingSource:   req.FundingSource,
		CaseID:          req.CaseID,
		Status:          models.EnrollmentStatusInProgress,
	}
	if err := s.workforceRepo.Create(ctx, enrollment); err != nil {
		if repositories.IsUniqueViolation(err) {
			existing, lookupErr := s.workforceRepo.FindInProgress(ctx, req.UserID, *req.ProgramID)
			if lookupErr == nil && existing != nil {
				return alreadyEnrolled(existing.ID, models.EnrollmentTypeWorkforce, models.TableWorkforceEnrollments), nil
			}
		}
		return nil, fmt.Errorf("%s: %w", models.TableWorkforceEnrollments, err)
	}

	return created(enrollment.ID, models.EnrollmentTypeWorkforce, models.TableWorkforceEnrollments), nil
}

// resolveCourseConflict handles the lost race: the pre-insert check passed
// but the partial unique index rejected the insert, so another request won.
func (s *enrollmentService) resolveCourseConflict(ctx context.Context, req *UnifiedEnrollmentRequest) (*UnifiedEnrollmentResult, error) {
	existing, err := s.courseRepo.FindActive(ctx, req.UserID, *req.CourseID)
	if err != nil || existing == nil {
		return nil, fmt.Errorf("%s: duplicate enrollment detected but existing row not found", models.TableCourseEnrollments)
	}
	return alreadyEnrolled(existing.ID, models.EnrollmentTypeCourse, models.TableCourseEnrollments), nil
}

// GetUserEnrollments fans out across all three tables concurrently and
// merges the rows into a single tagged list, newest first.
func (s *enrollmentService) GetUserEnrollments(ctx context.Context, userID uuid.UUID) (*UserEnrollments, error) {
	result := &UserEnrollments{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		courses, err := s.courseRepo.ListByUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("%s: %w", models.TableCourseEnrollments, err)
		}
		result.Courses = courses
		return nil
	})
	g.Go(func() error {
		programs, err := s.programRepo.ListByStudent(gctx, userID)
		if err != nil {
			return fmt.Errorf("%s: %w", models.TableProgramEnrollments, err)
		}
		result.Programs = programs
		return nil
	})
	g.Go(func() error {
		workforce, err := s.workforceRepo.ListByStudent(gctx, userID)
		if err != nil {
			return fmt.Errorf("%s: %w", models.TableWorkforceEnrollments, err)
		}
		result.Workforce = workforce
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, e := range result.Courses {
		courseID := e.CourseID
		result.All = append(result.All, models.UnifiedEnrollment{
			ID: e.ID, Type: models.EnrollmentTypeCourse, UserID: e.UserID,
			CourseID: &courseID, Status: e.Status, FundingSource: e.FundingSource,
			CreatedAt: e.CreatedAt,
		})
	}
	for _, e := range result.Programs {
		slug := e.ProgramSlug
		result.All = append(result.All, models.UnifiedEnrollment{
			ID: e.ID, Type: models.EnrollmentTypeProgram, UserID: e.StudentID,
			ProgramID: e.ProgramID, ProgramSlug: &slug, Status: e.Status,
			FundingSource: e.FundingSource, CreatedAt: e.CreatedAt,
		})
	}
	for _, e := range result.Workforce {
		programID := e.ProgramID
		result.All = append(result.All, models.UnifiedEnrollment{
			ID: e.ID, Type: models.EnrollmentTypeWorkforce, UserID: e.StudentID,
			ProgramID: &programID, Status: e.Status, FundingSource: e.FundingSource,
			CreatedAt: e.CreatedAt,
		})
	}
	sort.Slice(result.All, func(i, j int) bool {
		return result.All[i].CreatedAt.After(result.All[j].CreatedAt)
	})

	return result, nil
}

// CheckStatus mirrors the classification order: the course table is
// consulted first when a course id is given, otherwise the program table
// then the workforce table.
func (s *enrollmentService) CheckStatus(ctx context.Context, req *UnifiedEnrollmentRequest) (*EnrollmentStatus, error) {
	if req.CourseID != nil {
		existing, err := s.courseRepo.FindActive(ctx, req.UserID, *req.CourseID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", models.TableCourseEnrollments, err)
		}
		if existing != nil {
			return &EnrollmentStatus{Enrolled: true, EnrollmentID: &existing.ID,
				EnrollmentType: models.EnrollmentTypeCourse, Status: existing.Status}, nil
		}
		return &EnrollmentStatus{Enrolled: false}, nil
	}

	if req.ProgramSlug != "" {
		existing, err := s.programRepo.FindActive(ctx, req.UserID, req.ProgramSlug)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", models.TableProgramEnrollments, err)
		}
		if existing != nil {
			return &EnrollmentStatus{Enrolled: true, EnrollmentID: &existing.ID,
				EnrollmentType: models.EnrollmentTypeProgram, Status: existing.Status}, nil
		}
	}

	if req.ProgramID != nil {
		existing, err := s.workforceRepo.FindInProgress(ctx, req.UserID, *req.ProgramID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", models.TableWorkforceEnrollments, err)
		}
		if existing != nil {
			return &EnrollmentStatus{Enrolled: true, EnrollmentID: &existing.ID,
				EnrollmentType: models.EnrollmentTypeWorkforce, Status: existing.Status}, nil
		}
	}

	return &EnrollmentStatus{Enrolled: false}, nil
}

// CompleteOrientation stamps orientation_completed_at on the student's
// active program enrollment.
func (s *enrollmentService) CompleteOrientation(ctx context.Context, userID uuid.UUID, programSlug string) error {
	enrollment, err := s.programRepo.FindActive(ctx, userID, programSlug)
	if err != nil {
		return fmt.Errorf("%s: %w", models.TableProgramEnrollments, err)
	}
	if enrollment == nil {
		return fmt.Errorf("no active enrollment for program %s", programSlug)
	}
	return s.programRepo.MarkOrientationComplete(ctx, enrollment.ID)
}

// SetEnrollmentState stores a staff lifecycle decision (suspend, reinstate,
// complete) on a program enrollment. Stored terminal states win over the
// derived state on every subsequent enforcement check.
func (s *enrollmentService) SetEnrollmentState(ctx context.Context, enrollmentID uuid.UUID, state models.EnrollmentState) error {
	if !state.Valid() {
		return fmt.Errorf("unknown enrollment state %q", state)
	}
	return s.programRepo.UpdateState(ctx, enrollmentID, state)
}

func created(id uuid.UUID, enrollmentType models.EnrollmentType, table string) *UnifiedEnrollmentResult {
	return &UnifiedEnrollmentResult{
		Success:        true,
		EnrollmentID:   &id,
		EnrollmentType: enrollmentType,
		Table:          table,
	}
}

func alreadyEnrolled(id uuid.UUID, enrollmentType models.EnrollmentType, table string) *UnifiedEnrollmentResult {
	return &UnifiedEnrollmentResult{
		Success:         false,
		EnrollmentID:    &id,
		EnrollmentType:  enrollmentType,
		Table:           table,
		AlreadyEnrolled: true,
		Error:           "already enrolled",
	}
}
