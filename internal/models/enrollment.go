package models

import (
	"time"

	"github.com/google/uuid"
)

// EnrollmentType tags which physical table an enrollment row lives in.
// Three tables model one logical concept; the router in
// services.EnrollmentService picks the table from the request shape.
type EnrollmentType string

const (
	EnrollmentTypeCourse    EnrollmentType = "course"
	EnrollmentTypeProgram   EnrollmentType = "program"
	EnrollmentTypeWorkforce EnrollmentType = "workforce"
)

// Table names, surfaced in router results and error messages.
const (
	TableCourseEnrollments    = "enrollments"
	TableProgramEnrollments   = "student_enrollments"
	TableWorkforceEnrollments = "program_enrollments"
)

// Workforce enrollment status uses a different vocabulary than the other
// two tables.
const (
	EnrollmentStatusActive     = "active"
	EnrollmentStatusInProgress = "IN_PROGRESS"
	EnrollmentStatusCompleted  = "completed"
	EnrollmentStatusDropped    = "dropped"
)

// CourseEnrollment is a row in the enrollments table, keyed by
// (user_id, course_id).
type CourseEnrollment struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	UserID          uuid.UUID  `json:"user_id" db:"user_id"`
	CourseID        uuid.UUID  `json:"course_id" db:"course_id"`
	Status          string     `json:"status" db:"status"`
	ProgressPercent float64    `json:"progress_percent" db:"progress_percent"`
	FundingSource   *string    `json:"funding_source" db:"funding_source"`
	PaymentID       *string    `json:"payment_id" db:"payment_id"`
	StartedAt       time.Time  `json:"started_at" db:"started_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// ProgramEnrollment is a student-managed row in the student_enrollments
// table. It carries the compliance timestamps the enforcement layer reads.
type ProgramEnrollment struct {
	ID                     uuid.UUID  `json:"id" db:"id"`
	StudentID              uuid.UUID  `json:"student_id" db:"student_id"`
	ProgramID              *uuid.UUID `json:"program_id" db:"program_id"`
	ProgramSlug            string     `json:"program_slug" db:"program_slug"`
	Status                 string     `json:"status" db:"status"`
	State                  *string    `json:"enrollment_state" db:"enrollment_state"`
	FundingSource          *string    `json:"funding_source" db:"funding_source"`
	CaseID                 *string    `json:"case_id" db:"case_id"`
	StripeSessionID        *string    `json:"stripe_checkout_session_id" db:"stripe_checkout_session_id"`
	EnrollmentMethod       *string    `json:"enrollment_method" db:"enrollment_method"`
	OrientationCompletedAt *time.Time `json:"orientation_completed_at" db:"orientation_completed_at"`
	DocumentsSubmittedAt   *time.Time `json:"documents_submitted_at" db:"documents_submitted_at"`
	StartDate              *time.Time `json:"program_start_date" db:"program_start_date"`
	StartedAt              time.Time  `json:"started_at" db:"started_at"`
	CreatedAt              time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at" db:"updated_at"`
}

// WorkforceEnrollment is a row in the program_enrollments table for
// agency-funded students (WIOA, WRG, JRI and similar).
type WorkforceEnrollment struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	StudentID       uuid.UUID  `json:"student_id" db:"student_id"`
	ProgramID       uuid.UUID  `json:"program_id" db:"program_id"`
	ProgramHolderID *uuid.UUID `json:"program_holder_id" db:"program_holder_id"`
	FundingSource   *string    `json:"funding_source" db:"funding_source"`
	CaseID          *string    `json:"case_id" db:"case_id"`
	Status          string     `json:"status" db:"status"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// UnifiedEnrollment is the merged read shape returned by the fan-out query,
// tagged with the table the row came from.
type UnifiedEnrollment struct {
	ID            uuid.UUID      `json:"id"`
	Type          EnrollmentType `json:"type"`
	UserID        uuid.UUID      `json:"user_id"`
	CourseID      *uuid.UUID     `json:"course_id,omitempty"`
	ProgramID     *uuid.UUID     `json:"program_id,omitempty"`
	ProgramSlug   *string        `json:"program_slug,omitempty"`
	Status        string         `json:"status"`
	FundingSource *string        `json:"funding_source,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}
