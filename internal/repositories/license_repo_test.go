package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"elevate2/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type LicenseRepoTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	repo     LicenseRepository
	tenantID uuid.UUID
	context  context.Context
}

func (suite *LicenseRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewLicenseRepo(mock)
	suite.tenantID = uuid.New()
	suite.context = context.Background()
}

func (suite *LicenseRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestLicenseRepoTestSuite(t *testing.T) {
	suite.Run(t, new(LicenseRepoTestSuite))
}

func (suite *LicenseRepoTestSuite) licenseColumns() []string {
	return []string{
		"id", "tenant_id", "tier", "status", "expires_at", "current_period_end",
		"stripe_subscription_id", "features", "max_users", "max_students", "max_programs",
		"created_at", "updated_at",
	}
}

func (suite *LicenseRepoTestSuite) TestGetActive_Success() {
	licenseID := uuid.New()
	now := time.Now()
	periodEnd := now.Add(30 * 24 * time.Hour)
	subID := "sub_123"
	maxStudents := 200
	features := map[string]bool{"timeclock": true}

	rows := pgxmock.NewRows(suite.licenseColumns()).
		AddRow(licenseID, suite.tenantID, "pro_monthly", "active", nil, &periodEnd,
			&subID, features, nil, &maxStudents, nil, now, now)

	suite.mock.ExpectQuery(`FROM get_active_license\(\$1\)`).
		WithArgs(suite.tenantID).
		WillReturnRows(rows)

	license, err := suite.repo.GetActive(suite.context, suite.tenantID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), licenseID, license.ID)
	assert.Equal(suite.T(), "pro_monthly", license.Tier)
	assert.Equal(suite.T(), models.BillingAuthorityStripe, license.BillingAuthority())
	assert.True(suite.T(), license.HasFeature("timeclock"))
	assert.Equal(suite.T(), 200, *license.MaxStudents)
}

func (suite *LicenseRepoTestSuite) TestGetActive_NoLicense() {
	suite.mock.ExpectQuery(`FROM get_active_license\(\$1\)`).
		WithArgs(suite.tenantID).
		WillReturnError(pgx.ErrNoRows)

	license, err := suite.repo.GetActive(suite.context, suite.tenantID)

	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), license)
}

func (suite *LicenseRepoTestSuite) TestGetActive_QueryError() {
	suite.mock.ExpectQuery(`FROM get_active_license\(\$1\)`).
		WithArgs(suite.tenantID).
		WillReturnError(errors.New("connection refused"))

	license, err := suite.repo.GetActive(suite.context, suite.tenantID)

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), license)
}

func (suite *LicenseRepoTestSuite) TestCreate_Success() {
	expires := time.Now().Add(90 * 24 * time.Hour)
	license := &models.License{
		ID:        uuid.New(),
		TenantID:  suite.tenantID,
		Tier:      "trial",
		Status:    models.LicenseStatusActive,
		ExpiresAt: &expires,
		Features:  map[string]bool{"timeclock": true},
	}

	suite.mock.ExpectExec(`INSERT INTO licenses`).
		WithArgs(license.ID, license.TenantID, license.Tier, license.Status,
			license.ExpiresAt, license.CurrentPeriodEnd, license.StripeSubscriptionID,
			license.Features, license.MaxUsers, license.MaxStudents, license.MaxPrograms).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, license)
	assert.NoError(suite.T(), err)
}

func (suite *LicenseRepoTestSuite) TestUpdate_Success() {
	license := &models.License{
		ID:       uuid.New(),
		TenantID: suite.tenantID,
		Tier:     "pro_monthly",
		Status:   models.LicenseStatusSuspended,
	}

	suite.mock.ExpectExec(`UPDATE licenses`).
		WithArgs(license.Tier, license.Status, license.ExpiresAt,
			license.CurrentPeriodEnd, license.StripeSubscriptionID, license.Features,
			license.MaxUsers, license.MaxStudents, license.MaxPrograms,
			license.TenantID, license.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.Update(suite.context, license)
	assert.NoError(suite.T(), err)
}

func (suite *LicenseRepoTestSuite) TestExpireStale() {
	suite.mock.ExpectExec(`UPDATE licenses`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	count, err := suite.repo.ExpireStale(suite.context)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), count)
}

func (suite *LicenseRepoTestSuite) TestIsUniqueViolation() {
	assert.True(suite.T(), IsUniqueViolation(&pgconn.PgError{Code: UniqueViolation}))
	assert.False(suite.T(), IsUniqueViolation(nil))
	assert.False(suite.T(), IsUniqueViolation(errors.New("other")))
}
