package services

import (
	"context"
	"testing"
	"time"

	"elevate2/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockEnforcementService struct {
	mock.Mock
}

func (m *MockEnforcementService) Authorize(ctx context.Context, req *AuthorizeRequest) (*Decision, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Decision), args.Error(1)
}

func (m *MockEnforcementService) AuthorizeWithOverride(ctx context.Context, req *AuthorizeRequest) (*Decision, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Decision), args.Error(1)
}

type TimeclockServiceTestSuite struct {
	suite.Suite
	enforcement    *MockEnforcementService
	timeclockRepo  *MockTimeclockRepository
	enrollmentRepo *MockProgramEnrollmentRepository
	service        *timeclockService
	tenantID       uuid.UUID
	userID         uuid.UUID
	enrollmentID   uuid.UUID
	now            time.Time
}

func (suite *TimeclockServiceTestSuite) SetupTest() {
	suite.enforcement = &MockEnforcementService{}
	suite.timeclockRepo = &MockTimeclockRepository{}
	suite.enrollmentRepo = &MockProgramEnrollmentRepository{}
	suite.now = time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	suite.service = &timeclockService{
		enforcement:    suite.enforcement,
		timeclockRepo:  suite.timeclockRepo,
		enrollmentRepo: suite.enrollmentRepo,
		now:            func() time.Time { return suite.now },
	}
	suite.tenantID = uuid.New()
	suite.userID = uuid.New()
	suite.enrollmentID = uuid.New()

	suite.enforcement.Test(suite.T())
	suite.timeclockRepo.Test(suite.T())
	suite.enrollmentRepo.Test(suite.T())
}

func (suite *TimeclockServiceTestSuite) TearDownTest() {
	suite.enforcement.AssertExpectations(suite.T())
	suite.timeclockRepo.AssertExpectations(suite.T())
	suite.enrollmentRepo.AssertExpectations(suite.T())
}

func TestTimeclockServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TimeclockServiceTestSuite))
}

func (suite *TimeclockServiceTestSuite) allowed() *Decision {
	return &Decision{Allowed: true, State: models.StateActiveEnrolled, EnrollmentID: &suite.enrollmentID}
}

func (suite *TimeclockServiceTestSuite) clockRequest() *ClockRequest {
	return &ClockRequest{
		TenantID:    suite.tenantID,
		UserID:      suite.userID,
		ProgramSlug: "barber-apprenticeship",
	}
}

func (suite *TimeclockServiceTestSuite) TestClockIn() {
	ctx := context.Background()
	suite.enforcement.On("AuthorizeWithOverride", ctx, mock.MatchedBy(func(r *AuthorizeRequest) bool {
		return r.Action == models.ActionClockIn && r.UserID == suite.userID
	})).Return(suite.allowed(), nil)
	suite.timeclockRepo.On("FindOpen", ctx, suite.enrollmentID).Return(nil, nil)
	suite.timeclockRepo.On("Create", ctx, mock.MatchedBy(func(e *models.TimeclockEntry) bool {
		return e.EnrollmentID == suite.enrollmentID && e.Method == models.HoursMethodTimeclock &&
			e.ClockIn.Equal(suite.now) && e.ClockOut == nil
	})).Return(nil)

	result, err := suite.service.ClockIn(ctx, suite.clockRequest())

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.Decision.Allowed)
	assert.NotNil(suite.T(), result.Entry)
}

func (suite *TimeclockServiceTestSuite) TestClockIn_Denied() {
	ctx := context.Background()
	denied := &Decision{Allowed: false, Code: DenyStartDateNotReached}
	suite.enforcement.On("AuthorizeWithOverride", ctx, mock.Anything).Return(denied, nil)

	result, err := suite.service.ClockIn(ctx, suite.clockRequest())

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.Decision.Allowed)
	assert.Nil(suite.T(), result.Entry)
}

func (suite *TimeclockServiceTestSuite) TestClockIn_OpenSessionExists() {
	ctx := context.Background()
	open := &models.TimeclockEntry{ID: uuid.New(), EnrollmentID: suite.enrollmentID}
	suite.enforcement.On("AuthorizeWithOverride", ctx, mock.Anything).Return(suite.allowed(), nil)
	suite.timeclockRepo.On("FindOpen", ctx, suite.enrollmentID).Return(open, nil)

	result, err := suite.service.ClockIn(ctx, suite.clockRequest())

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), result)
}

func (suite *TimeclockServiceTestSuite) TestClockOut() {
	ctx := context.Background()
	open := &models.TimeclockEntry{ID: uuid.New(), EnrollmentID: suite.enrollmentID, ClockIn: suite.now.Add(-3 * time.Hour)}
	hours := 3.0
	clockOut := suite.now
	closed := &models.TimeclockEntry{ID: open.ID, EnrollmentID: suite.enrollmentID, ClockIn: open.ClockIn, ClockOut: &clockOut, Hours: &hours}
	suite.enforcement.On("AuthorizeWithOverride", ctx, mock.MatchedBy(func(r *AuthorizeRequest) bool {
		return r.Action == models.ActionClockOut
	})).Return(suite.allowed(), nil)
	suite.timeclockRepo.On("FindOpen", ctx, suite.enrollmentID).Return(open, nil)
	suite.timeclockRepo.On("Close", ctx, open.ID).Return(closed, nil)

	result, err := suite.service.ClockOut(ctx, suite.clockRequest())

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), result.Entry.ClockOut)
	assert.Equal(suite.T(), 3.0, *result.Entry.Hours)
}

func (suite *TimeclockServiceTestSuite) TestClockOut_NoOpenSession() {
	ctx := context.Background()
	suite.enforcement.On("AuthorizeWithOverride", ctx, mock.Anything).Return(suite.allowed(), nil)
	suite.timeclockRepo.On("FindOpen", ctx, suite.enrollmentID).Return(nil, nil)

	result, err := suite.service.ClockOut(ctx, suite.clockRequest())

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), result)
}

func (suite *TimeclockServiceTestSuite) TestLogManualHours() {
	ctx := context.Background()
	workedAt := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	suite.enforcement.On("AuthorizeWithOverride", ctx, mock.MatchedBy(func(r *AuthorizeRequest) bool {
		return r.Action == models.ActionLogHoursManual
	})).Return(suite.allowed(), nil)
	suite.timeclockRepo.On("Create", ctx, mock.MatchedBy(func(e *models.TimeclockEntry) bool {
		return e.Method == models.HoursMethodManual && e.ClockOut != nil &&
			e.Hours != nil && *e.Hours == 6.5 &&
			e.ClockOut.Sub(e.ClockIn) == time.Duration(6.5*float64(time.Hour))
	})).Return(nil)

	result, err := suite.service.LogManualHours(ctx, &ManualHoursRequest{
		TenantID:    suite.tenantID,
		UserID:      suite.userID,
		ProgramSlug: "barber-apprenticeship",
		Hours:       6.5,
		WorkedAt:    workedAt,
	})

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), result.Entry)
}

func (suite *TimeclockServiceTestSuite) TestLogManualHours_RejectsOutOfRange() {
	ctx := context.Background()

	_, err := suite.service.LogManualHours(ctx, &ManualHoursRequest{Hours: 0})
	assert.Error(suite.T(), err)

	_, err = suite.service.LogManualHours(ctx, &ManualHoursRequest{Hours: 25})
	assert.Error(suite.T(), err)
}

func (suite *TimeclockServiceTestSuite) TestSummary() {
	ctx := context.Background()
	required := 1500
	enrollment := &models.ProgramEnrollment{ID: suite.enrollmentID, StudentID: suite.userID, ProgramSlug: "barber-apprenticeship"}
	program := &models.Program{Slug: "barber-apprenticeship", TotalHours: &required}
	suite.enrollmentRepo.On("FindActiveWithProgram", ctx, suite.userID, "barber-apprenticeship").Return(enrollment, program, nil)
	suite.timeclockRepo.On("TotalHours", ctx, suite.enrollmentID).Return(750.0, nil)
	suite.timeclockRepo.On("FindOpen", ctx, suite.enrollmentID).Return(nil, nil)

	summary, err := suite.service.Summary(ctx, suite.userID, "barber-apprenticeship")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 750.0, summary.TotalHours)
	assert.Equal(suite.T(), 50.0, *summary.ProgressPercent)
	assert.False(suite.T(), summary.OpenSession)
}

func (suite *TimeclockServiceTestSuite) TestSummary_ProgressCapsAtHundred() {
	ctx := context.Background()
	required := 100
	enrollment := &models.ProgramEnrollment{ID: suite.enrollmentID, StudentID: suite.userID, ProgramSlug: "barber-apprenticeship"}
	program := &models.Program{Slug: "barber-apprenticeship", TotalHours: &required}
	suite.enrollmentRepo.On("FindActiveWithProgram", ctx, suite.userID, "barber-apprenticeship").Return(enrollment, program, nil)
	suite.timeclockRepo.On("TotalHours", ctx, suite.enrollmentID).Return(130.0, nil)
	suite.timeclockRepo.On("FindOpen", ctx, suite.enrollmentID).Return(nil, nil)

	summary, err := suite.service.Summary(ctx, suite.userID, "barber-apprenticeship")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 100.0, *summary.ProgressPercent)
}

func (suite *TimeclockServiceTestSuite) TestEntries_NoEnrollment() {
	ctx := context.Background()
	suite.enrollmentRepo.On("FindActive", ctx, suite.userID, "barber-apprenticeship").Return(nil, nil)

	entries, err := suite.service.Entries(ctx, suite.userID, "barber-apprenticeship", 20, 0)

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), entries)
}
