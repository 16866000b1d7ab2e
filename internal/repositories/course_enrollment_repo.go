package repositories

import (
	"context"
	"errors"

	"elevate2/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CourseEnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.CourseEnrollment) error
	FindActive(ctx context.Context, userID, courseID uuid.UUID) (*models.CourseEnrollment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.CourseEnrollment, error)
}

type courseEnrollmentRepo struct {
	db Database
}

func NewCourseEnrollmentRepo(db Database) CourseEnrollmentRepository {
	return &courseEnrollmentRepo{db: db}
}

func (r *courseEnrollmentRepo) Create(ctx context.Context, enrollment *models.CourseEnrollment) error {
	query := `
		INSERT INTO enrollments (id, user_id, course_id, status, progress_percent, funding_source, payment_id, started_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, enrollment.ID, enrollment.UserID, enrollment.CourseID,
		enrollment.Status, enrollment.ProgressPercent, enrollment.FundingSource, enrollment.PaymentID)
	return err
}

// FindActive returns the user's active enrollment for the course, or nil
// when none exists.
func (r *courseEnrollmentRepo) FindActive(ctx context.Context, userID, courseID uuid.UUID) (*models.CourseEnrollment, error) {
	enrollment := &models.CourseEnrollment{}
	query := `
		SELECT id, user_id, course_id, status, progress_percent, funding_source, payment_id, started_at, created_at, updated_at
		FROM enrollments
		WHERE user_id = $1 AND course_id = $2 AND status = 'active'
	`
	err := r.db.QueryRow(ctx, query, userID, courseID).Scan(
		&enrollment.ID, &enrollment.UserID, &enrollment.CourseID, &enrollment.Status,
		&enrollment.ProgressPercent, &enrollment.FundingSource, &enrollment.PaymentID,
		&enrollment.StartedAt, &enrollment.CreatedAt, &enrollment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return enrollment, nil
}

func (r *courseEnrollmentRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.CourseEnrollment, error) {
	query := `
		SELECT id, user_id, course_id, status, progress_percent, funding_source, payment_id, started_at, created_at, updated_at
		FROM enrollments
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []*models.CourseEnrollment
	for rows.Next() {
		enrollment := &models.CourseEnrollment{}
		if err := rows.Scan(&enrollment.ID, &enrollment.UserID, &enrollment.CourseID, &enrollment.Status,
			&enrollment.ProgressPercent, &enrollment.FundingSource, &enrollment.PaymentID,
			&enrollment.StartedAt, &enrollment.CreatedAt, &enrollment.UpdatedAt); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, enrollment)
	}
	return enrollments, rows.Err()
}
