package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietart/artmarket/internal/auth"
	"github.com/vietart/artmarket/internal/domain"
)

func newUserFixture() (*UserService, *memUserStore) {
	store := newMemUserStore()
	tokens := auth.NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	return NewUserService(store, tokens, loggerForTest(), metricsForTest()), store
}

func registerParams() domain.CreateUserParams {
	return domain.CreateUserParams{
		Email:     "an.nguyen@example.com",
		Password:  "sufficiently-long",
		FirstName: "An",
		LastName:  "Nguyen",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newUserFixture()

	result, err := svc.Register(context.Background(), registerParams())
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, result.User.Role)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.NotEqual(t, "sufficiently-long", result.User.PasswordHash)

	login, err := svc.Login(context.Background(), "an.nguyen@example.com", "sufficiently-long")
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, login.User.ID)
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc, _ := newUserFixture()

	params := registerParams()
	params.Email = "  An.Nguyen@Example.com "
	result, err := svc.Register(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "an.nguyen@example.com", result.User.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newUserFixture()

	_, err := svc.Register(context.Background(), registerParams())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerParams())
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	svc, _ := newUserFixture()

	params := registerParams()
	params.Email = "not-an-email"
	_, err := svc.Register(context.Background(), params)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	params = registerParams()
	params.Password = "short"
	_, err = svc.Register(context.Background(), params)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestLoginWrongPasswordAndUnknownEmailIndistinguishable(t *testing.T) {
	svc, _ := newUserFixture()

	_, err := svc.Register(context.Background(), registerParams())
	require.NoError(t, err)

	_, wrongPass := svc.Login(context.Background(), "an.nguyen@example.com", "wrong-password")
	_, unknownEmail := svc.Login(context.Background(), "nobody@example.com", "whatever-pass")

	assert.ErrorIs(t, wrongPass, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, domain.ErrInvalidCredentials)
}

func TestRefreshHonorsRevocation(t *testing.T) {
	svc, _ := newUserFixture()

	result, err := svc.Register(context.Background(), registerParams())
	require.NoError(t, err)

	access, err := svc.Refresh(context.Background(), result.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	require.NoError(t, svc.Logout(context.Background(), result.User.ID, result.RefreshToken))

	// The token still verifies cryptographically but is no longer stored.
	_, err = svc.Refresh(context.Background(), result.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc, _ := newUserFixture()

	_, err := svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
