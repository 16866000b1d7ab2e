package repositories

import (
	"context"
	"errors"

	"elevate2/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProgramEnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.ProgramEnrollment) error
	FindActive(ctx context.Context, studentID uuid.UUID, programSlug string) (*models.ProgramEnrollment, error)
	FindActiveWithProgram(ctx context.Context, studentID uuid.UUID, programSlug string) (*models.ProgramEnrollment, *models.Program, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.ProgramEnrollment, error)
	CountActiveByTenant(ctx context.Context, tenantID uuid.UUID) (int, error)
	UpdateState(ctx context.Context, id uuid.UUID, state models.EnrollmentState) error
	MarkDocumentsSubmitted(ctx context.Context, id uuid.UUID) error
	MarkOrientationComplete(ctx context.Context, id uuid.UUID) error
}

type programEnrollmentRepo struct {
	db Database
}

func NewProgramEnrollmentRepo(db Database) ProgramEnrollmentRepository {
	return &programEnrollmentRepo{db: db}
}

const programEnrollmentColumns = `id, student_id, program_id, program_slug, status, enrollment_state,
	       funding_source, case_id, stripe_checkout_session_id, enrollment_method,
	       orientation_completed_at, documents_submitted_at, program_start_date,
	       started_at, created_at, updated_at`

func scanProgramEnrollment(row pgx.Row) (*models.ProgramEnrollment, error) {
	enrollment := &models.ProgramEnrollment{}
	err := row.Scan(
		&enrollment.ID, &enrollment.StudentID, &enrollment.ProgramID, &enrollment.ProgramSlug,
		&enrollment.Status, &enrollment.State, &enrollment.FundingSource, &enrollment.CaseID,
		&enrollment.StripeSessionID, &enrollment.EnrollmentMethod,
		&enrollment.OrientationCompletedAt, &enrollment.DocumentsSubmittedAt, &enrollment.StartDate,
		&enrollment.StartedAt, &enrollment.CreatedAt, &enrollment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (r *programEnrollmentRepo) Create(ctx context.Context, enrollment *models.ProgramEnrollment) error {
	query := `
		INSERT INTO student_enrollments (id, student_id, program_id, program_slug, status, enrollment_state,
		                                 funding_source, case_id, stripe_checkout_session_id, enrollment_method,
		                                 program_start_date, started_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, enrollment.ID, enrollment.StudentID, enrollment.ProgramID,
		enrollment.ProgramSlug, enrollment.Status, enrollment.State, enrollment.FundingSource,
		enrollment.CaseID, enrollment.StripeSessionID, enrollment.EnrollmentMethod, enrollment.StartDate)
	return err
}

// FindActive returns the student's active enrollment for the program slug,
// or nil when none exists.
func (r *programEnrollmentRepo) FindActive(ctx context.Context, studentID uuid.UUID, programSlug string) (*models.ProgramEnrollment, error) {
	query := `
		SELECT ` + programEnrollmentColumns + `
		FROM student_enrollments
		WHERE student_id = $1 AND program_slug = $2 AND status = 'active'
	`
	enrollment, err := scanProgramEnrollment(r.db.QueryRow(ctx, query, studentID, programSlug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return enrollment, nil
}

// FindActiveWithProgram loads the enrollment joined with its program so the
// enforcement layer gets the program type in one round trip.
func (r *programEnrollmentRepo) FindActiveWithProgram(ctx context.Context, studentID uuid.UUID, programSlug string) (*models.ProgramEnrollment, *models.Program, error) {
	enrollment := &models.ProgramEnrollment{}
	program := &models.Program{}
	query := `
		SELECT e.id, e.student_id, e.program_id, e.program_slug, e.status, e.enrollment_state,
		       e.funding_source, e.case_id, e.stripe_checkout_session_id, e.enrollment_method,
		       e.orientation_completed_at, e.documents_submitted_at, e.program_start_date,
		       e.started_at, e.created_at, e.updated_at,
		       p.id, p.tenant_id, p.slug, p.name, p.program_type, p.credential, p.total_hours,
		       p.created_at, p.updated_at
		FROM student_enrollments e
		JOIN programs p ON p.id = e.program_id
		WHERE e.student_id = $1 AND e.program_slug = $2 AND e.status = 'active'
	`
	err := r.db.QueryRow(ctx, query, studentID, programSlug).Scan(
		&enrollment.ID, &enrollment.StudentID, &enrollment.ProgramID, &enrollment.ProgramSlug,
		&enrollment.Status, &enrollment.State, &enrollment.FundingSource, &enrollment.CaseID,
		&enrollment.StripeSessionID, &enrollment.EnrollmentMethod,
		&enrollment.OrientationCompletedAt, &enrollment.DocumentsSubmittedAt, &enrollment.StartDate,
		&enrollment.StartedAt, &enrollment.CreatedAt, &enrollment.UpdatedAt,
		&program.ID, &program.TenantID, &program.Slug, &program.Name, &program.Type,
		&program.Credential, &program.TotalHours, &program.CreatedAt, &program.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	return enrollment, program, nil
}

func (r *programEnrollmentRepo) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.ProgramEnrollment, error) {
	query := `
		SELECT ` + programEnrollmentColumns + `
		FROM student_enrollments
		WHERE student_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []*models.ProgramEnrollment
	for rows.Next() {
		enrollment, err := scanProgramEnrollment(rows)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, enrollment)
	}
	return enrollments, rows.Err()
}

// CountActiveByTenant counts distinct students with an active enrollment in
// any of the tenant's programs, the number the plan's student cap is
// checked against.
func (r *programEnrollmentRepo) CountActiveByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(DISTINCT e.student_id)
		FROM student_enrollments e
		JOIN programs p ON p.id = e.program_id
		WHERE p.tenant_id = $1 AND e.status = 'active'
	`
	var count int
	if err := r.db.QueryRow(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *programEnrollmentRepo) UpdateState(ctx context.Context, id uuid.UUID, state models.EnrollmentState) error {
	query := `UPDATE student_enrollments SET enrollment_state = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, string(state), id)
	return err
}

// MarkDocumentsSubmitted is idempotent; the first submission wins the
// timestamp.
func (r *programEnrollmentRepo) MarkDocumentsSubmitted(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE student_enrollments
		SET documents_submitted_at = COALESCE(documents_submitted_at, NOW()), updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *programEnrollmentRepo) MarkOrientationComplete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE student_enrollments
		SET orientation_completed_at = COALESCE(orientation_completed_at, NOW()), updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
