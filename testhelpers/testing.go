package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"elevate2/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// SetupTestDB creates a pooled connection for testing
func SetupTestDB(t *testing.T, connString string) *TestDB {
	t.Helper()

	if connString == "" {
		connString = os.Getenv("TEST_DATABASE_URL")
		if connString == "" {
			connString = "host=localhost port=5432 user=postgres password=postgres dbname=elevate2_test sslmode=disable"
		}
	}

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	return &TestDB{
		Pool: pool,
		Cleanup: func() error {
			pool.Close()
			return nil
		},
	}
}

// SetupTestTenant creates a test tenant for testing
func SetupTestTenant(t *testing.T, db *TestDB) uuid.UUID {
	t.Helper()

	tenantID := uuid.New()
	query := `
		INSERT INTO tenants (id, name, domain, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (domain) DO NOTHING
	`
	_, err := db.Pool.Exec(context.Background(), query, tenantID, "Test Tenant", "test-tenant.example.com", "active", time.Now())
	if err != nil {
		t.Fatalf("Failed to create test tenant: %v", err)
	}

	return tenantID
}

// SetupTestProgram creates a test program for testing
func SetupTestProgram(t *testing.T, db *TestDB, tenantID uuid.UUID, programType models.ProgramType) *models.Program {
	t.Helper()

	totalHours := 1500
	program := &models.Program{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Slug:       "barber-apprenticeship",
		Name:       "Barber Apprenticeship",
		Type:       programType,
		Credential: models.CredentialBarber,
		TotalHours: &totalHours,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	query := `
		INSERT INTO programs (id, tenant_id, slug, name, program_type, credential, total_hours, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := db.Pool.Exec(context.Background(), query,
		program.ID, program.TenantID, program.Slug, program.Name, program.Type,
		program.Credential, program.TotalHours, program.CreatedAt, program.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create test program: %v", err)
	}

	return program
}

// SetupTestEnrollment creates an active program enrollment for testing
func SetupTestEnrollment(t *testing.T, db *TestDB, studentID uuid.UUID, program *models.Program) *models.ProgramEnrollment {
	t.Helper()

	start := time.Now().Add(-24 * time.Hour)
	orientation := time.Now().Add(-48 * time.Hour)
	enrollment := &models.ProgramEnrollment{
		ID:                     uuid.New(),
		StudentID:              studentID,
		ProgramID:              &program.ID,
		ProgramSlug:            program.Slug,
		Status:                 models.EnrollmentStatusActive,
		OrientationCompletedAt: &orientation,
		StartDate:              &start,
	}

	query := `
		INSERT INTO student_enrollments (id, student_id, program_id, program_slug, status,
		                                 orientation_completed_at, program_start_date, started_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW(), NOW())
	`
	_, err := db.Pool.Exec(context.Background(), query,
		enrollment.ID, enrollment.StudentID, enrollment.ProgramID, enrollment.ProgramSlug,
		enrollment.Status, enrollment.OrientationCompletedAt, enrollment.StartDate)
	if err != nil {
		t.Fatalf("Failed to create test enrollment: %v", err)
	}

	return enrollment
}
