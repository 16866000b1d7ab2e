package repositories

import (
	"context"
	"errors"

	"elevate2/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type WorkforceEnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.WorkforceEnrollment) error
	FindInProgress(ctx context.Context, studentID, programID uuid.UUID) (*models.WorkforceEnrollment, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.WorkforceEnrollment, error)
}

type workforceEnrollmentRepo struct {
	db Database
}

func NewWorkforceEnrollmentRepo(db Database) WorkforceEnrollmentRepository {
	return &workforceEnrollmentRepo{db: db}
}

func (r *workforceEnrollmentRepo) Create(ctx context.Context, enrollment *models.WorkforceEnrollment) error {
	query := `
		INSERT INTO program_enrollments (id, student_id, program_id, program_holder_id, funding_source, case_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, enrollment.ID, enrollment.StudentID, enrollment.ProgramID,
		enrollment.ProgramHolderID, enrollment.FundingSource, enrollment.CaseID, enrollment.Status)
	return err
}

// FindInProgress returns the student's IN_PROGRESS enrollment for the
// program, or nil when none exists.
func (r *workforceEnrollmentRepo) FindInProgress(ctx context.Context, studentID, programID uuid.UUID) (*models.WorkforceEnrollment, error) {
	enrollment := &models.WorkforceEnrollment{}
	query := `
		SELECT id, student_id, program_id, program_holder_id, funding_source, case_id, status, created_at, updated_at
		FROM program_enrollments
		WHERE student_id = $1 AND program_id = $2 AND status = 'IN_PROGRESS'
	`
	err := r.db.QueryRow(ctx, query, studentID, programID).Scan(
		&enrollment.ID, &enrollment.StudentID, &enrollment.ProgramID, &enrollment.ProgramHolderID,
		&enrollment.FundingSource, &enrollment.CaseID, &enrollment.Status,
		&enrollment.CreatedAt, &enrollment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return enrollment, nil
}

func (r *workforceEnrollmentRepo) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.WorkforceEnrollment, error) {
	query := `
		SELECT id, student_id, program_id, program_holder_id, funding_source, case_id, status, created_at, updated_at
		FROM program_enrollments
		WHERE student_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []*models.WorkforceEnrollment
	for rows.Next() {
		enrollment := &models.WorkforceEnrollment{}
		if err := rows.Scan(&enrollment.ID, &enrollment.StudentID, &enrollment.ProgramID,
			&enrollment.ProgramHolderID, &enrollment.FundingSource, &enrollment.CaseID,
			&enrollment.Status, &enrollment.CreatedAt, &enrollment.UpdatedAt); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, enrollment)
	}
	return enrollments, rows.Err()
}
