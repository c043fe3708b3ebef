package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/testutil"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceTestSuite struct {
	suite.Suite
	service *AuthService
	ctx     context.Context
}

func (suite *AuthServiceTestSuite) SetupTest() {
	db := testutil.NewTestDB(suite.T())
	suite.service = NewAuthService(repository.NewUserRepository(db), newTestIssuer())
	suite.service.passwordCost = bcrypt.MinCost
	suite.ctx = context.Background()
}

func (suite *AuthServiceTestSuite) register(username, email, password string) (*AuthResult, error) {
	return suite.service.Register(suite.ctx, RegisterInput{Username: username, Email: email, Password: password})
}

func (suite *AuthServiceTestSuite) TestRegister_Success() {
	result, err := suite.register("  alice ", "Alice@Example.com", "secret1")
	suite.Require().NoError(err)

	suite.NotZero(result.User.ID)
	suite.Equal("alice", result.User.Username)
	suite.Equal("alice@example.com", result.User.Email)
	suite.NotEqual("secret1", result.User.PasswordHash)
	suite.NotEmpty(result.Token)

	identity, err := suite.service.Authenticate(result.Token)
	suite.Require().NoError(err)
	suite.Equal(result.User.ID, identity.UserID)
}

func (suite *AuthServiceTestSuite) TestRegister_Validation() {
	cases := []struct {
		name     string
		username string
		email    string
		password string
		want     error
	}{
		{"missing username", "  ", "a@example.com", "secret1", ErrUsernameRequired},
		{"short username", "al", "a@example.com", "secret1", ErrUsernameLength},
		{"bad email", "alice", "alice.example.com", "secret1", ErrEmailInvalid},
		{"short password", "alice", "a@example.com", "12345", ErrPasswordTooShort},
	}

	for _, tc := range cases {
		suite.Run(tc.name, func() {
			_, err := suite.register(tc.username, tc.email, tc.password)
			suite.ErrorIs(err, tc.want)
			suite.ErrorIs(err, ErrValidation)
		})
	}
}

func (suite *AuthServiceTestSuite) TestRegister_Duplicate() {
	_, err := suite.register("alice", "alice@example.com", "secret1")
	suite.Require().NoError(err)

	_, err = suite.register("alice", "other@example.com", "secret1")
	suite.ErrorIs(err, ErrDuplicateIdentity)

	_, err = suite.register("alice2", "ALICE@example.com", "secret1")
	suite.ErrorIs(err, ErrDuplicateIdentity)
}

func (suite *AuthServiceTestSuite) TestLogin() {
	registered, err := suite.register("alice", "alice@example.com", "secret1")
	suite.Require().NoError(err)

	result, err := suite.service.Login(suite.ctx, LoginInput{Username: "alice", Password: "secret1"})
	suite.Require().NoError(err)
	suite.Equal(registered.User.ID, result.User.ID)
	suite.NotEmpty(result.Token)
}

func (suite *AuthServiceTestSuite) TestLogin_FailuresAreIndistinguishable() {
	_, err := suite.register("alice", "alice@example.com", "secret1")
	suite.Require().NoError(err)

	_, wrongPassword := suite.service.Login(suite.ctx, LoginInput{Username: "alice", Password: "wrong-password"})
	_, unknownUser := suite.service.Login(suite.ctx, LoginInput{Username: "nobody", Password: "secret1"})

	suite.ErrorIs(wrongPassword, ErrInvalidCredentials)
	suite.ErrorIs(unknownUser, ErrInvalidCredentials)
	suite.Equal(wrongPassword.Error(), unknownUser.Error())
}

func (suite *AuthServiceTestSuite) TestGetUser() {
	registered, err := suite.register("alice", "alice@example.com", "secret1")
	suite.Require().NoError(err)

	user, err := suite.service.GetUser(suite.ctx, registered.User.ID)
	suite.Require().NoError(err)
	suite.Equal("alice", user.Username)

	_, err = suite.service.GetUser(suite.ctx, 9999)
	suite.ErrorIs(err, ErrUnauthenticated)
}

func (suite *AuthServiceTestSuite) TestAuthenticate_Empty() {
	_, err := suite.service.Authenticate("")
	suite.ErrorIs(err, ErrUnauthenticated)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
