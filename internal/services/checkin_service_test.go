package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"elevate2/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetProgram(ctx context.Context, tenantID uuid.UUID, slug string) (*models.Program, error) {
	args := m.Called(ctx, tenantID, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Program), args.Error(1)
}

func (m *MockCacheService) SetProgram(ctx context.Context, tenantID uuid.UUID, program *models.Program, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, program, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetLicense(ctx context.Context, tenantID uuid.UUID) (*models.License, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockCacheService) SetLicense(ctx context.Context, tenantID uuid.UUID, license *models.License, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, license, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteLicense(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockCacheService) SetCheckinCode(ctx context.Context, code *models.CheckinCode, ttl time.Duration) error {
	args := m.Called(ctx, code, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetCheckinCode(ctx context.Context, code string) (*models.CheckinCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CheckinCode), args.Error(1)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

type CheckinServiceTestSuite struct {
	suite.Suite
	cache         *MockCacheService
	enforcement   *MockEnforcementService
	timeclockRepo *MockTimeclockRepository
	service       *checkinService
	tenantID      uuid.UUID
	userID        uuid.UUID
	enrollmentID  uuid.UUID
	now           time.Time
}

func (suite *CheckinServiceTestSuite) SetupTest() {
	suite.cache = &MockCacheService{}
	suite.enforcement = &MockEnforcementService{}
	suite.timeclockRepo = &MockTimeclockRepository{}
	suite.now = time.Date(2026, 3, 15, 17, 0, 0, 0, time.UTC)
	suite.service = &checkinService{
		cache:         suite.cache,
		enforcement:   suite.enforcement,
		timeclockRepo: suite.timeclockRepo,
		codeTTL:       defaultCodeTTL,
		now:           func() time.Time { return suite.now },
	}
	suite.tenantID = uuid.New()
	suite.userID = uuid.New()
	suite.enrollmentID = uuid.New()

	suite.cache.Test(suite.T())
	suite.enforcement.Test(suite.T())
	suite.timeclockRepo.Test(suite.T())
}

func (suite *CheckinServiceTestSuite) TearDownTest() {
	suite.cache.AssertExpectations(suite.T())
	suite.enforcement.AssertExpectations(suite.T())
	suite.timeclockRepo.AssertExpectations(suite.T())
}

func TestCheckinServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CheckinServiceTestSuite))
}

func (suite *CheckinServiceTestSuite) TestIssueCode() {
	ctx := context.Background()
	programID := uuid.New()
	issuedBy := uuid.New()
	suite.cache.On("SetCheckinCode", ctx, mock.MatchedBy(func(c *models.CheckinCode) bool {
		return len(c.Code) == checkinCodeLength && c.Hours == 4 && c.ProgramID == programID
	}), defaultCodeTTL).Return(nil)

	code, err := suite.service.IssueCode(ctx, &IssueCodeRequest{
		TenantID:  suite.tenantID,
		IssuedBy:  issuedBy,
		ProgramID: programID,
		Hours:     4,
	})

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), code.Code, checkinCodeLength)
	assert.Equal(suite.T(), suite.now.Add(defaultCodeTTL), code.ExpiresAt)
}

func (suite *CheckinServiceTestSuite) TestIssueCode_RejectsBadHours() {
	ctx := context.Background()

	_, err := suite.service.IssueCode(ctx, &IssueCodeRequest{Hours: 0})
	assert.Error(suite.T(), err)

	_, err = suite.service.IssueCode(ctx, &IssueCodeRequest{Hours: 13})
	assert.Error(suite.T(), err)
}

func (suite *CheckinServiceTestSuite) TestIssueCode_ConfiguredTTL() {
	ctx := context.Background()
	suite.service.codeTTL = 90 * time.Minute
	suite.cache.On("SetCheckinCode", ctx, mock.Anything, 90*time.Minute).Return(nil)

	code, err := suite.service.IssueCode(ctx, &IssueCodeRequest{
		IssuedBy:  uuid.New(),
		ProgramID: uuid.New(),
		Hours:     2,
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.now.Add(90*time.Minute), code.ExpiresAt)
}

func (suite *CheckinServiceTestSuite) expectNotRateLimited(ctx context.Context) {
	suite.cache.On("IsRateLimited", ctx, "checkin:redeem:"+suite.userID.String(),
		redeemAttemptLimit, redeemAttemptWindow).Return(false, nil)
}

func (suite *CheckinServiceTestSuite) TestRedeemCode() {
	ctx := context.Background()
	code := &models.CheckinCode{
		Code:      "A1B2C3D4",
		ProgramID: uuid.New(),
		IssuedBy:  uuid.New(),
		Hours:     4,
		ExpiresAt: suite.now.Add(2 * time.Hour),
	}
	redeemedKey := fmt.Sprintf(redeemedKeyPattern, code.Code, suite.userID.String())
	decision := &Decision{Allowed: true, State: models.StateActiveEnrolled, EnrollmentID: &suite.enrollmentID}

	suite.expectNotRateLimited(ctx)
	suite.cache.On("GetCheckinCode", ctx, code.Code).Return(code, nil)
	suite.cache.On("GetString", ctx, redeemedKey).Return("", nil)
	suite.enforcement.On("AuthorizeWithOverride", ctx, mock.MatchedBy(func(r *AuthorizeRequest) bool {
		return r.Action == models.ActionCheckinCode && r.UserID == suite.userID
	})).Return(decision, nil)
	suite.timeclockRepo.On("Create", ctx, mock.MatchedBy(func(e *models.TimeclockEntry) bool {
		return e.Method == models.HoursMethodCheckin && e.Hours != nil && *e.Hours == 4 &&
			e.ClockOut != nil && e.ClockOut.Equal(suite.now)
	})).Return(nil)
	suite.cache.On("SetString", ctx, redeemedKey, "1", mock.Anything).Return(nil)

	result, err := suite.service.RedeemCode(ctx, &RedeemCodeRequest{
		TenantID:    suite.tenantID,
		UserID:      suite.userID,
		ProgramSlug: "barber-apprenticeship",
		Code:        code.Code,
	})

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), result.Entry)
}

func (suite *CheckinServiceTestSuite) TestRedeemCode_Expired() {
	ctx := context.Background()
	suite.expectNotRateLimited(ctx)
	suite.cache.On("GetCheckinCode", ctx, "GONE1234").Return(nil, nil)

	result, err := suite.service.RedeemCode(ctx, &RedeemCodeRequest{
		TenantID: suite.tenantID,
		UserID:   suite.userID,
		Code:     "GONE1234",
	})

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), result)
}

func (suite *CheckinServiceTestSuite) TestRedeemCode_AlreadyRedeemed() {
	ctx := context.Background()
	code := &models.CheckinCode{Code: "A1B2C3D4", Hours: 4, ExpiresAt: suite.now.Add(time.Hour)}
	redeemedKey := fmt.Sprintf(redeemedKeyPattern, code.Code, suite.userID.String())
	suite.expectNotRateLimited(ctx)
	suite.cache.On("GetCheckinCode", ctx, code.Code).Return(code, nil)
	suite.cache.On("GetString", ctx, redeemedKey).Return("1", nil)

	result, err := suite.service.RedeemCode(ctx, &RedeemCodeRequest{
		TenantID: suite.tenantID,
		UserID:   suite.userID,
		Code:     code.Code,
	})

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), result)
}

func (suite *CheckinServiceTestSuite) TestRedeemCode_DeniedByEnforcement() {
	ctx := context.Background()
	code := &models.CheckinCode{Code: "A1B2C3D4", Hours: 4, ExpiresAt: suite.now.Add(time.Hour)}
	redeemedKey := fmt.Sprintf(redeemedKeyPattern, code.Code, suite.userID.String())
	denied := &Decision{Allowed: false, Code: DenyActionNotAllowed}
	suite.expectNotRateLimited(ctx)
	suite.cache.On("GetCheckinCode", ctx, code.Code).Return(code, nil)
	suite.cache.On("GetString", ctx, redeemedKey).Return("", nil)
	suite.enforcement.On("AuthorizeWithOverride", ctx, mock.Anything).Return(denied, nil)

	result, err := suite.service.RedeemCode(ctx, &RedeemCodeRequest{
		TenantID: suite.tenantID,
		UserID:   suite.userID,
		Code:     code.Code,
	})

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.Decision.Allowed)
	assert.Nil(suite.T(), result.Entry)
}

func (suite *CheckinServiceTestSuite) TestRedeemCode_RateLimited() {
	ctx := context.Background()
	suite.cache.On("IsRateLimited", ctx, "checkin:redeem:"+suite.userID.String(),
		redeemAttemptLimit, redeemAttemptWindow).Return(true, nil)

	result, err := suite.service.RedeemCode(ctx, &RedeemCodeRequest{
		TenantID: suite.tenantID,
		UserID:   suite.userID,
		Code:     "GUESS123",
	})

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), result)
	suite.cache.AssertNotCalled(suite.T(), "GetCheckinCode", mock.Anything, mock.Anything)
}
