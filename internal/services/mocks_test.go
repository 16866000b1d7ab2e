package services

import (
	"context"
	"time"

	"elevate2/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Shared repository mocks for the service test suites.

type MockCourseEnrollmentRepository struct {
	mock.Mock
}

func (m *MockCourseEnrollmentRepository) Create(ctx context.Context, enrollment *models.CourseEnrollment) error {
	args := m.Called(ctx, enrollment)
	return args.Error(0)
}

func (m *MockCourseEnrollmentRepository) FindActive(ctx context.Context, userID, courseID uuid.UUID) (*models.CourseEnrollment, error) {
	args := m.Called(ctx, userID, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CourseEnrollment), args.Error(1)
}

func (m *MockCourseEnrollmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.CourseEnrollment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CourseEnrollment), args.Error(1)
}

type MockProgramEnrollmentRepository struct {
	mock.Mock
}

func (m *MockProgramEnrollmentRepository) Create(ctx context.Context, enrollment *models.ProgramEnrollment) error {
	args := m.Called(ctx, enrollment)
	return args.Error(0)
}

func (m *MockProgramEnrollmentRepository) FindActive(ctx context.Context, studentID uuid.UUID, programSlug string) (*models.ProgramEnrollment, error) {
	args := m.Called(ctx, studentID, programSlug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProgramEnrollment), args.Error(1)
}

func (m *MockProgramEnrollmentRepository) FindActiveWithProgram(ctx context.Context, studentID uuid.UUID, programSlug string) (*models.ProgramEnrollment, *models.Program, error) {
	args := m.Called(ctx, studentID, programSlug)
	var enrollment *models.ProgramEnrollment
	var program *models.Program
	if args.Get(0) != nil {
		enrollment = args.Get(0).(*models.ProgramEnrollment)
	}
	if args.Get(1) != nil {
		program = args.Get(1).(*models.Program)
	}
	return enrollment, program, args.Error(2)
}

func (m *MockProgramEnrollmentRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.ProgramEnrollment, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ProgramEnrollment), args.Error(1)
}

func (m *MockProgramEnrollmentRepository) CountActiveByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID)
	return args.Int(0), args.Error(1)
}

func (m *MockProgramEnrollmentRepository) UpdateState(ctx context.Context, id uuid.UUID, state models.EnrollmentState) error {
	args := m.Called(ctx, id, state)
	return args.Error(0)
}

func (m *MockProgramEnrollmentRepository) MarkDocumentsSubmitted(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProgramEnrollmentRepository) MarkOrientationComplete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockWorkforceEnrollmentRepository struct {
	mock.Mock
}

func (m *MockWorkforceEnrollmentRepository) Create(ctx context.Context, enrollment *models.WorkforceEnrollment) error {
	args := m.Called(ctx, enrollment)
	return args.Error(0)
}

func (m *MockWorkforceEnrollmentRepository) FindInProgress(ctx context.Context, studentID, programID uuid.UUID) (*models.WorkforceEnrollment, error) {
	args := m.Called(ctx, studentID, programID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkforceEnrollment), args.Error(1)
}

func (m *MockWorkforceEnrollmentRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.WorkforceEnrollment, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WorkforceEnrollment), args.Error(1)
}

type MockProgramRepository struct {
	mock.Mock
}

func (m *MockProgramRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Program, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Program), args.Error(1)
}

func (m *MockProgramRepository) GetBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*models.Program, error) {
	args := m.Called(ctx, tenantID, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Program), args.Error(1)
}

func (m *MockProgramRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Program, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Program), args.Error(1)
}

func (m *MockProgramRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID)
	return args.Int(0), args.Error(1)
}

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*models.StudentSubscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudentSubscription), args.Error(1)
}

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, document *models.Document) error {
	args := m.Called(ctx, document)
	return args.Error(0)
}

func (m *MockDocumentRepository) ListByEnrollment(ctx context.Context, tenantID, enrollmentID uuid.UUID) ([]*models.Document, error) {
	args := m.Called(ctx, tenantID, enrollmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Document), args.Error(1)
}

func (m *MockDocumentRepository) VerifiedTypes(ctx context.Context, enrollmentID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, enrollmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDocumentRepository) Verify(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type MockTimeclockRepository struct {
	mock.Mock
}

func (m *MockTimeclockRepository) Create(ctx context.Context, entry *models.TimeclockEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTimeclockRepository) FindOpen(ctx context.Context, enrollmentID uuid.UUID) (*models.TimeclockEntry, error) {
	args := m.Called(ctx, enrollmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TimeclockEntry), args.Error(1)
}

func (m *MockTimeclockRepository) Close(ctx context.Context, id uuid.UUID) (*models.TimeclockEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TimeclockEntry), args.Error(1)
}

func (m *MockTimeclockRepository) TotalHours(ctx context.Context, enrollmentID uuid.UUID) (float64, error) {
	args := m.Called(ctx, enrollmentID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockTimeclockRepository) ListByEnrollment(ctx context.Context, enrollmentID uuid.UUID, limit, offset int) ([]*models.TimeclockEntry, error) {
	args := m.Called(ctx, enrollmentID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TimeclockEntry), args.Error(1)
}

type MockPartnerRepository struct {
	mock.Mock
}

func (m *MockPartnerRepository) GetPartner(ctx context.Context, id uuid.UUID) (*models.Partner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Partner), args.Error(1)
}

func (m *MockPartnerRepository) GetSite(ctx context.Context, id uuid.UUID) (*models.Site, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Site), args.Error(1)
}

type MockOverrideRepository struct {
	mock.Mock
}

func (m *MockOverrideRepository) FindActive(ctx context.Context, userID uuid.UUID, action models.EnrollmentAction) (*models.EnrollmentOverride, error) {
	args := m.Called(ctx, userID, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EnrollmentOverride), args.Error(1)
}

func (m *MockOverrideRepository) Create(ctx context.Context, override *models.EnrollmentOverride) error {
	args := m.Called(ctx, override)
	return args.Error(0)
}

func (m *MockOverrideRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPermissionAuditRepository struct {
	mock.Mock
}

func (m *MockPermissionAuditRepository) Create(ctx context.Context, audit *models.PermissionAudit) error {
	args := m.Called(ctx, audit)
	return args.Error(0)
}

func (m *MockPermissionAuditRepository) List(ctx context.Context, tenantID uuid.UUID, filters *models.PermissionAuditFilters) ([]*models.PermissionAudit, error) {
	args := m.Called(ctx, tenantID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PermissionAudit), args.Error(1)
}

func (m *MockPermissionAuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
