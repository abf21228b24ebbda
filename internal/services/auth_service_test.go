// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/verdantcare/wellness-backend/internal/apperrors"
	"github.com/verdantcare/wellness-backend/internal/models"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db   *gorm.DB
	auth *AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
	suite.auth = NewAuthService(suite.db, testConfig(suite.T()))
}

func (suite *AuthServiceTestSuite) TestRegisterAndLogin() {
	resp, err := suite.auth.Register(&RegisterRequest{
		Username: "newpatient",
		Email:    "newpatient@example.com",
		Password: "TestPass123!",
		UserType: models.UserTypePatient,
	})
	require.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), resp.AccessToken)
	assert.NotEmpty(suite.T(), resp.RefreshToken)
	assert.Equal(suite.T(), models.UserStatusActive, resp.User.Status)

	login, err := suite.auth.Login(&LoginRequest{
		Email:    "newpatient@example.com",
		Password: "TestPass123!",
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), resp.User.ID, login.User.ID)

	_, err = suite.auth.Login(&LoginRequest{
		Email:    "newpatient@example.com",
		Password: "WrongPass123!",
	})
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidCredentials)

	// Unknown emails fail with the same error as wrong passwords.
	_, err = suite.auth.Login(&LoginRequest{
		Email:    "nobody@example.com",
		Password: "TestPass123!",
	})
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestRegisterRejectsAdminRole() {
	_, err := suite.auth.Register(&RegisterRequest{
		Username: "sneaky",
		Email:    "sneaky@example.com",
		Password: "TestPass123!",
		UserType: models.UserTypeAdmin,
	})
	assert.Error(suite.T(), err)
}

func (suite *AuthServiceTestSuite) TestRegisterDuplicateEmail() {
	req := &RegisterRequest{
		Username: "original",
		Email:    "dup@example.com",
		Password: "TestPass123!",
		UserType: models.UserTypePatient,
	}
	_, err := suite.auth.Register(req)
	require.NoError(suite.T(), err)

	req.Username = "copycat"
	_, err = suite.auth.Register(req)
	assert.Error(suite.T(), err)
}

func (suite *AuthServiceTestSuite) TestSuspendedUserCannotLogin() {
	user := createTestUser(suite.T(), suite.db, "suspended", models.UserTypePatient)
	require.NoError(suite.T(), suite.db.Model(user).Update("status", models.UserStatusSuspended).Error)

	_, err := suite.auth.Login(&LoginRequest{
		Email:    "suspended@example.com",
		Password: "TestPass123!",
	})
	assert.ErrorIs(suite.T(), err, apperrors.ErrAccountSuspended)
}

func (suite *AuthServiceTestSuite) TestRefreshToken() {
	resp, err := suite.auth.Register(&RegisterRequest{
		Username: "refresher",
		Email:    "refresher@example.com",
		Password: "TestPass123!",
		UserType: models.UserTypePatient,
	})
	require.NoError(suite.T(), err)

	refreshed, err := suite.auth.RefreshToken(resp.RefreshToken)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), resp.User.ID, refreshed.User.ID)
	assert.NotEmpty(suite.T(), refreshed.AccessToken)

	_, err = suite.auth.RefreshToken("not-a-token")
	assert.Error(suite.T(), err)
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
