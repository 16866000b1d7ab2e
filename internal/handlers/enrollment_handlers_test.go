package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"elevate2/internal/common"
	"elevate2/internal/models"
	"elevate2/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockEnrollmentService struct {
	mock.Mock
}

func (m *MockEnrollmentService) CreateUnified(ctx context.Context, req *services.UnifiedEnrollmentRequest) (*services.UnifiedEnrollmentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.UnifiedEnrollmentResult), args.Error(1)
}

func (m *MockEnrollmentService) GetUserEnrollments(ctx context.Context, userID uuid.UUID) (*services.UserEnrollments, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.UserEnrollments), args.Error(1)
}

func (m *MockEnrollmentService) CheckStatus(ctx context.Context, req *services.UnifiedEnrollmentRequest) (*services.EnrollmentStatus, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.EnrollmentStatus), args.Error(1)
}

func (m *MockEnrollmentService) CompleteOrientation(ctx context.Context, userID uuid.UUID, programSlug string) error {
	args := m.Called(ctx, userID, programSlug)
	return args.Error(0)
}

func (m *MockEnrollmentService) SetEnrollmentState(ctx context.Context, enrollmentID uuid.UUID, state models.EnrollmentState) error {
	args := m.Called(ctx, enrollmentID, state)
	return args.Error(0)
}

type EnrollmentHandlersTestSuite struct {
	suite.Suite
	service  *MockEnrollmentService
	handlers *EnrollmentHandlers
	userID   uuid.UUID
}

func (suite *EnrollmentHandlersTestSuite) SetupTest() {
	suite.service = &MockEnrollmentService{}
	suite.handlers = NewEnrollmentHandlers(suite.service)
	suite.userID = uuid.New()

	suite.service.Test(suite.T())
}

func (suite *EnrollmentHandlersTestSuite) TearDownTest() {
	suite.service.AssertExpectations(suite.T())
}

func TestEnrollmentHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(EnrollmentHandlersTestSuite))
}

func (suite *EnrollmentHandlersTestSuite) newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = req.WithContext(context.WithValue(req.Context(), common.UserIDKey, suite.userID))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func (suite *EnrollmentHandlersTestSuite) TestCreateEnrollment_BindsEnrollmentMethod() {
	enrollmentID := uuid.New()
	suite.service.On("CreateUnified", mock.Anything, mock.MatchedBy(func(r *services.UnifiedEnrollmentRequest) bool {
		return r.UserID == suite.userID &&
			r.ProgramSlug == "cna-training" &&
			r.EnrollmentMethod != nil && *r.EnrollmentMethod == "online" &&
			r.FundingSource != nil && *r.FundingSource == "self_pay"
	})).Return(&services.UnifiedEnrollmentResult{
		Success:        true,
		EnrollmentID:   &enrollmentID,
		EnrollmentType: models.EnrollmentTypeProgram,
		Table:          models.TableProgramEnrollments,
	}, nil)

	c, rec := suite.newContext(http.MethodPost, "/v1/enrollments",
		`{"program_slug":"cna-training","enrollment_method":"online","funding_source":"self_pay"}`)

	err := suite.handlers.CreateEnrollment(c)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusCreated, rec.Code)
}

func (suite *EnrollmentHandlersTestSuite) TestCreateEnrollment_ConflictOnDuplicate() {
	enrollmentID := uuid.New()
	suite.service.On("CreateUnified", mock.Anything, mock.Anything).Return(&services.UnifiedEnrollmentResult{
		Success:         false,
		EnrollmentID:    &enrollmentID,
		AlreadyEnrolled: true,
	}, nil)

	c, rec := suite.newContext(http.MethodPost, "/v1/enrollments", `{"program_slug":"cna-training"}`)

	err := suite.handlers.CreateEnrollment(c)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusConflict, rec.Code)
}

func (suite *EnrollmentHandlersTestSuite) TestUpdateEnrollmentState() {
	enrollmentID := uuid.New()
	suite.service.On("SetEnrollmentState", mock.Anything, enrollmentID, models.StateSuspended).Return(nil)

	c, rec := suite.newContext(http.MethodPut, "/v1/enrollments/"+enrollmentID.String()+"/state",
		`{"state":"suspended"}`)
	c.SetParamNames("id")
	c.SetParamValues(enrollmentID.String())

	err := suite.handlers.UpdateEnrollmentState(c)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
}

func (suite *EnrollmentHandlersTestSuite) TestUpdateEnrollmentState_RejectsUnknownState() {
	enrollmentID := uuid.New()

	c, rec := suite.newContext(http.MethodPut, "/v1/enrollments/"+enrollmentID.String()+"/state",
		`{"state":"banished"}`)
	c.SetParamNames("id")
	c.SetParamValues(enrollmentID.String())

	err := suite.handlers.UpdateEnrollmentState(c)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	suite.service.AssertNotCalled(suite.T(), "SetEnrollmentState", mock.Anything, mock.Anything, mock.Anything)
}
