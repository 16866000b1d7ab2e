package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"elevate2/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

func strPtr(s string) *string { return &s }

func TestClassifyEnrollment(t *testing.T) {
	courseID := uuid.New()
	programID := uuid.New()
	holderID := uuid.New()

	tests := []struct {
		name string
		req  *UnifiedEnrollmentRequest
		want models.EnrollmentType
	}{
		{
			name: "course id alone routes to course",
			req:  &UnifiedEnrollmentRequest{CourseID: &courseID},
			want: models.EnrollmentTypeCourse,
		},
		{
			name: "course id with program slug routes to program",
			req:  &UnifiedEnrollmentRequest{CourseID: &courseID, ProgramSlug: "cna-training"},
			want: models.EnrollmentTypeProgram,
		},
		{
			name: "program holder routes to workforce",
			req:  &UnifiedEnrollmentRequest{ProgramID: &programID, ProgramHolderID: &holderID},
			want: models.EnrollmentTypeWorkforce,
		},
		{
			name: "WIOA funding routes to workforce",
			req:  &UnifiedEnrollmentRequest{ProgramID: &programID, FundingSource: strPtr("WIOA Title I")},
			want: models.EnrollmentTypeWorkforce,
		},
		{
			name: "funding match is case insensitive",
			req:  &UnifiedEnrollmentRequest{ProgramID: &programID, FundingSource: strPtr("wrg grant")},
			want: models.EnrollmentTypeWorkforce,
		},
		{
			name: "jri substring matches",
			req:  &UnifiedEnrollmentRequest{ProgramSlug: "barber-apprenticeship", FundingSource: strPtr("State JRI pilot")},
			want: models.EnrollmentTypeWorkforce,
		},
		{
			name: "workforce keyword matches",
			req:  &UnifiedEnrollmentRequest{ProgramID: &programID, FundingSource: strPtr("Workforce Ready Grant")},
			want: models.EnrollmentTypeWorkforce,
		},
		{
			name: "self pay funding routes to program",
			req:  &UnifiedEnrollmentRequest{ProgramSlug: "hvac-cert", FundingSource: strPtr("self_pay")},
			want: models.EnrollmentTypeProgram,
		},
		{
			name: "program slug alone routes to program",
			req:  &UnifiedEnrollmentRequest{ProgramSlug: "cna-training"},
			want: models.EnrollmentTypeProgram,
		},
		{
			name: "course id with holder routes to workforce",
			req:  &UnifiedEnrollmentRequest{CourseID: &courseID, ProgramID: &programID, ProgramHolderID: &holderID},
			want: models.EnrollmentTypeWorkforce,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyEnrollment(tt.req))
		})
	}
}

type EnrollmentServiceTestSuite struct {
	suite.Suite
	courseRepo    *MockCourseEnrollmentRepository
	programRepo   *MockProgramEnrollmentRepository
	workforceRepo *MockWorkforceEnrollmentRepository
	programs      *MockProgramRepository
	service       EnrollmentService
	userID        uuid.UUID
}

func (suite *EnrollmentServiceTestSuite) SetupTest() {
	suite.courseRepo = &MockCourseEnrollmentRepository{}
	suite.programRepo = &MockProgramEnrollmentRepository{}
	suite.workforceRepo = &MockWorkforceEnrollmentRepository{}
	suite.programs = &MockProgramRepository{}
	suite.service = NewEnrollmentService(suite.courseRepo, suite.programRepo, suite.workforceRepo, suite.programs)
	suite.userID = uuid.New()

	suite.courseRepo.Test(suite.T())
	suite.programRepo.Test(suite.T())
	suite.workforceRepo.Test(suite.T())
	suite.programs.Test(suite.T())
}

func (suite *EnrollmentServiceTestSuite) TearDownTest() {
	suite.courseRepo.AssertExpectations(suite.T())
	suite.programRepo.AssertExpectations(suite.T())
	suite.workforceRepo.AssertExpectations(suite.T())
	suite.programs.AssertExpectations(suite.T())
}

func TestEnrollmentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EnrollmentServiceTestSuite))
}

func (suite *EnrollmentServiceTestSuite) TestCreateUnified_MissingUserID() {
	result, err := suite.service.CreateUnified(context.Background(), &UnifiedEnrollmentRequest{ProgramSlug: "cna-training"})

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.Success)
	assert.Contains(suite.T(), result.Error, "user_id")
}

func (suite *EnrollmentServiceTestSuite) TestCreateUnified_MissingTarget() {
	result, err := suite.service.CreateUnified(context.Background(), &UnifiedEnrollmentRequest{UserID: suite.userID})

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.Success)
	assert.Contains(suite.T(), result.Error, "course_id")
}

func (suite *EnrollmentServiceTestSuite) TestCreateUnified_CourseSuccess() {
	ctx := context.Background()
	courseID := uuid.New()
	suite.courseRepo.On("FindActive", ctx, suite.userID, courseID).Return(nil, nil)
	suite.courseRepo.On("Create", ctx, mock.MatchedBy(func(e *models.CourseEnrollment) bool {
		return e.UserID == suite.userID && e.CourseID == courseID && e.Status == models.EnrollmentStatusActive
	})).Return(nil)

	result, err := suite.service.CreateUnified(ctx, &UnifiedEnrollmentRequest{
		UserID:   suite.userID,
		CourseID: &courseID,
	})

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.Success)
	assert.Equal(suite.T(), models.EnrollmentTypeCourse, result.EnrollmentType)
	assert.Equal(suite.T(), models.TableCourseEnrollments, result.Table)
	assert.NotNil(suite.T(), result.EnrollmentID)
}

func (suite *EnrollmentServiceTestSuite) TestCreateUnified_CourseAlreadyEnrolled() {
	ctx := context.Background()
	courseID := uuid.New()
	existing := &models.CourseEnrollment{ID: uuid.New(), UserID: suite.userID, CourseID: courseID, Status: models.EnrollmentStatusActive}
	suite.courseRepo.On("FindActive", ctx, suite.userID, courseID).Return(existing, nil)

	result, err := suite.service.CreateUnified(ctx, &UnifiedEnrollmentRequest{
		UserID:   suite.userID,
		CourseID: &courseID,
	})

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.Success)
	assert.True(suite.T(), result.AlreadyEnrolled)
	assert.Equal(suite.T(), existing.ID, *result.EnrollmentID)
}

func (suite *EnrollmentServiceTestSuite) TestCreateUnified_CourseLosesInsertRace() {
	ctx := context.Background()
	courseID := uuid.New()
	winner := &models.CourseEnrollment{ID: uuid.New(), UserID: suite.userID, CourseID: courseID, Status: models.EnrollmentStatusActive}

	// Pre-insert check sees nothing, the insert hits the unique index, the
	// re-query finds the row the other request inserted.
	suite.courseRepo.On("FindActive", ctx, suite.userID, courseID).Return(nil, nil).Once()
	suite.courseRepo.On("Create", ctx, mock.Anything).Return(&pgconn.PgError{Code: "23505"})
	suite.courseRepo.On("FindActive", ctx, suite.userID, courseID).Return(winner, nil).Once()

	result, err := suite.service.CreateUnified(ctx, &UnifiedEnrollmentRequest{
		UserID:   suite.userID,
		CourseID: &courseID,
	})

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.Success)
	assert.True(suite.T(), result.AlreadyEnrolled)
	assert.Equal(suite.T(), winner.ID, *result.EnrollmentID)
}

func (suite *EnrollmentServiceTestSuite) TestCreateUnified_ProgramBySlug() {
	ctx := context.Background()
	stripeSession := "cs_test_123"
	suite.programRepo.On("FindActive", ctx, suite.userID, "cna-training").Return(nil, nil)
	suite.programRepo.On("Create", ctx, mock.MatchedBy(func(e *models.ProgramEnrollment) bool {
		return e.StudentID == suite.userID && e.ProgramSlug == "cna-training" &&
			e.StripeSessionID != nil && *e.StripeSessionID == stripeSession
	})).Return(nil)

	result, err := suite.service.CreateUnified(ctx, &UnifiedEnrollmentRequest{
		UserID:          suite.userID,
		ProgramSlug:     "cna-training",
		StripeSessionID: &stripeSession,
	})

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.Success)
	assert.Equal(suite.T(), models.EnrollmentTypeProgram, result.EnrollmentType)
	assert.Equal(suite.T(), models.TableProgramEnrollments, result.Table)
}

func (suite *EnrollmentServiceTestSuite) TestCreateUnified_ProgramByIDResolvesSlug() {
	ctx := context.Background()
	programID := uuid.New()
	program := &models.Program{ID: programID, Slug: "hvac-cert", Type: models.ProgramTypeInternalClock}
	suite.programs.On("GetByID", ctx, programID).Return(program, nil)
	suite.programRepo.On("FindActive", ctx, suite.userID, "hvac-cert").Return(nil, nil)
	suite.programRepo.On("Create", ctx, mock.MatchedBy(func(e *models.ProgramEnrollment) bool {
		return e.ProgramSlug == "hvac-cert" && e.ProgramID != nil && *e.ProgramID == programID
	})).Return(nil)

	result, err := suite.service.CreateUnified(ctx, &UnifiedEnrollmentRequest{
		UserID:    suite.userID,
		ProgramID: &programID,
	})

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.Success)
}

func (suite *EnrollmentServiceTestSuite) TestCreateUnified_ProgramNotFound() {
	ctx := context.Background()
	programID := uuid.New()
	suite.programs.On("GetByID", ctx, programID).Return(nil, nil)

	result, err := suite.service.CreateUnified(ctx, &UnifiedEnrollmentRequest{
		UserID:    suite.userID,
		ProgramID: &programID,
	})

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.Success)
	assert.Equal(suite.T(), "program not found", result.Error)
}

func (suite *EnrollmentServiceTestSuite) TestCreateUnified_WorkforceRequiresProgramID() {
	ctx := context.Background()
	holderID := uuid.New()

	result, err := suite.service.CreateUnified(ctx, &UnifiedEnrollmentRequest{
		UserID:          suite.userID,
		ProgramSlug:     "cna-training",
		ProgramHolderID: &holderID,
	})

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.Success)
	assert.Contains(suite.T(), result.Error, "program_id")
}

func (suite *EnrollmentServiceTestSuite) TestCreateUnified_WorkforceSuccess() {
	ctx := context.Background()
	programID := uuid.New()
	holderID := uuid.New()
	caseID := "WIOA-2026-0042"
	suite.workforceRepo.On("FindInProgress", ctx, suite.userID, programID).Return(nil, nil)
	suite.workforceRepo.On("Create", ctx, mock.MatchedBy(func(e *models.WorkforceEnrollment) bool {
		return e.StudentID == suite.userID && e.ProgramID == programID &&
			e.Status == models.EnrollmentStatusInProgress &&
			e.CaseID != nil && *e.CaseID == caseID
	})).Return(nil)

	result, err := suite.service.CreateUnified(ctx, &UnifiedEnrollmentRequest{
		UserID:          suite.userID,
		ProgramID:       &programID,
		ProgramHolderID: &holderID,
		FundingSource:   strPtr("WIOA"),
		CaseID:          &caseID,
	})

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.Success)
	assert.Equal(suite.T(), models.EnrollmentTypeWorkforce, result.EnrollmentType)
	assert.Equal(suite.T(), models.TableWorkforceEnrollments, result.Table)
}

func (suite *EnrollmentServiceTestSuite) TestCreateUnified_RepoErrorPropagates() {
	ctx := context.Background()
	courseID := uuid.New()
	suite.courseRepo.On("FindActive", ctx, suite.userID, courseID).Return(nil, errors.New("connection refused"))

	result, err := suite.service.CreateUnified(ctx, &UnifiedEnrollmentRequest{
		UserID:   suite.userID,
		CourseID: &courseID,
	})

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), result)
}

func (suite *EnrollmentServiceTestSuite) TestGetUserEnrollments_MergesNewestFirst() {
	ctx := context.Background()
	older := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	courseID := uuid.New()

	suite.courseRepo.On("ListByUser", mock.Anything, suite.userID).Return([]*models.CourseEnrollment{
		{ID: uuid.New(), UserID: suite.userID, CourseID: courseID, Status: models.EnrollmentStatusActive, CreatedAt: older},
	}, nil)
	suite.programRepo.On("ListByStudent", mock.Anything, suite.userID).Return([]*models.ProgramEnrollment{
		{ID: uuid.New(), StudentID: suite.userID, ProgramSlug: "cna-training", Status: models.EnrollmentStatusActive, CreatedAt: newer},
	}, nil)
	suite.workforceRepo.On("ListByStudent", mock.Anything, suite.userID).Return([]*models.WorkforceEnrollment{}, nil)

	result, err := suite.service.GetUserEnrollments(ctx, suite.userID)

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result.All, 2)
	assert.Equal(suite.T(), models.EnrollmentTypeProgram, result.All[0].Type)
	assert.Equal(suite.T(), models.EnrollmentTypeCourse, result.All[1].Type)
}

func (suite *EnrollmentServiceTestSuite) TestGetUserEnrollments_FanOutError() {
	ctx := context.Background()
	suite.courseRepo.On("ListByUser", mock.Anything, suite.userID).Return([]*models.CourseEnrollment{}, nil).Maybe()
	suite.programRepo.On("ListByStudent", mock.Anything, suite.userID).Return(nil, errors.New("timeout"))
	suite.workforceRepo.On("ListByStudent", mock.Anything, suite.userID).Return([]*models.WorkforceEnrollment{}, nil).Maybe()

	result, err := suite.service.GetUserEnrollments(ctx, suite.userID)

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), result)
}

func (suite *EnrollmentServiceTestSuite) TestCheckStatus_CourseFirst() {
	ctx := context.Background()
	courseID := uuid.New()
	existing := &models.CourseEnrollment{ID: uuid.New(), Status: models.EnrollmentStatusActive}
	suite.courseRepo.On("FindActive", ctx, suite.userID, courseID).Return(existing, nil)

	status, err := suite.service.CheckStatus(ctx, &UnifiedEnrollmentRequest{
		UserID:      suite.userID,
		CourseID:    &courseID,
		ProgramSlug: "cna-training",
	})

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), status.Enrolled)
	assert.Equal(suite.T(), models.EnrollmentTypeCourse, status.EnrollmentType)
}

func (suite *EnrollmentServiceTestSuite) TestCheckStatus_FallsThroughToWorkforce() {
	ctx := context.Background()
	programID := uuid.New()
	workforce := &models.WorkforceEnrollment{ID: uuid.New(), Status: models.EnrollmentStatusInProgress}
	suite.programRepo.On("FindActive", ctx, suite.userID, "cna-training").Return(nil, nil)
	suite.workforceRepo.On("FindInProgress", ctx, suite.userID, programID).Return(workforce, nil)

	status, err := suite.service.CheckStatus(ctx, &UnifiedEnrollmentRequest{
		UserID:      suite.userID,
		ProgramID:   &programID,
		ProgramSlug: "cna-training",
	})

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), status.Enrolled)
	assert.Equal(suite.T(), models.EnrollmentTypeWorkforce, status.EnrollmentType)
	assert.Equal(suite.T(), models.EnrollmentStatusInProgress, status.Status)
}

func (suite *EnrollmentServiceTestSuite) TestCheckStatus_NotEnrolled() {
	ctx := context.Background()
	suite.programRepo.On("FindActive", ctx, suite.userID, "cna-training").Return(nil, nil)

	status, err := suite.service.CheckStatus(ctx, &UnifiedEnrollmentRequest{
		UserID:      suite.userID,
		ProgramSlug: "cna-training",
	})

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), status.Enrolled)
}

func (suite *EnrollmentServiceTestSuite) TestCompleteOrientation() {
	ctx := context.Background()
	enrollment := &models.ProgramEnrollment{ID: uuid.New(), StudentID: suite.userID, ProgramSlug: "cna-training"}
	suite.programRepo.On("FindActive", ctx, suite.userID, "cna-training").Return(enrollment, nil)
	suite.programRepo.On("MarkOrientationComplete", ctx, enrollment.ID).Return(nil)

	err := suite.service.CompleteOrientation(ctx, suite.userID, "cna-training")

	assert.NoError(suite.T(), err)
}

func (suite *EnrollmentServiceTestSuite) TestCompleteOrientation_NoEnrollment() {
	ctx := context.Background()
	suite.programRepo.On("FindActive", ctx, suite.userID, "cna-training").Return(nil, nil)

	err := suite.service.CompleteOrientation(ctx, suite.userID, "cna-training")

	assert.Error(suite.T(), err)
}

func (suite *EnrollmentServiceTestSuite) TestSetEnrollmentState() {
	ctx := context.Background()
	enrollmentID := uuid.New()
	suite.programRepo.On("UpdateState", ctx, enrollmentID, models.StateSuspended).Return(nil)

	err := suite.service.SetEnrollmentState(ctx, enrollmentID, models.StateSuspended)

	assert.NoError(suite.T(), err)
}

func (suite *EnrollmentServiceTestSuite) TestSetEnrollmentState_RejectsUnknownState() {
	ctx := context.Background()

	err := suite.service.SetEnrollmentState(ctx, uuid.New(), models.EnrollmentState("banished"))

	assert.Error(suite.T(), err)
	suite.programRepo.AssertNotCalled(suite.T(), "UpdateState", mock.Anything, mock.Anything, mock.Anything)
}
