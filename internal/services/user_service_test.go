package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ManishSRawat/e-sell/internal/auth"
	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, f *fixture, email string) *domain.User {
	t.Helper()
	f.notifier.On("Send", mock.Anything, normalizeEmail(email), "Welcome to Our E-Commerce Store!", mock.Anything).Return(nil).Once()
	u, err := f.users.Register(context.Background(), RegisterInput{
		Email:     email,
		Password:  "s3cret-pw",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)
	return u
}

// sentBody returns the body of the last email sent with subject.
func sentBody(f *fixture, subject string) string {
	body := ""
	for _, c := range f.notifier.Calls {
		if c.Method == "Send" && c.Arguments.String(2) == subject {
			body = c.Arguments.String(3)
		}
	}
	return body
}

func linkToken(body, marker string) string {
	i := strings.Index(body, marker)
	if i < 0 {
		return ""
	}
	rest := body[i+len(marker):]
	if j := strings.IndexAny(rest, "\n "); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

func TestUserService_Register(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := register(t, f, "Ada@Example.com ")
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, domain.RoleBuyer, u.Role)
	assert.True(t, u.IsActive)
	assert.False(t, u.EmailVerified)
	assert.NotEqual(t, "s3cret-pw", u.PasswordHash)
	f.notifier.AssertExpectations(t)
	assert.Contains(t, sentBody(f, "Welcome to Our E-Commerce Store!"), "http://shop.test/verify-email/")

	_, err := f.users.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "another-pw", FirstName: "A", LastName: "L"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.users.Register(ctx, RegisterInput{Email: "x@example.com", Password: "pw123456"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.users.Register(ctx, RegisterInput{Email: "x@example.com", Password: "123", FirstName: "X", LastName: "Y"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUserService_RegisterSurvivesMailFailure(t *testing.T) {
	f := newFixture(t)
	f.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	_, err := f.users.Register(context.Background(), RegisterInput{
		Email: "grace@example.com", Password: "s3cret-pw", FirstName: "Grace", LastName: "Hopper",
	})
	assert.NoError(t, err)
}

func TestUserService_LoginAndRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := register(t, f, "ada@example.com")

	res, err := f.users.Login(ctx, "ADA@example.com", "s3cret-pw")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)
	require.NotEmpty(t, res.Tokens.AccessToken)

	access, err := f.users.Refresh(ctx, res.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	_, err = f.users.Refresh(ctx, res.Tokens.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated, "access tokens cannot refresh")

	_, err = f.users.Login(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = f.users.Login(ctx, "nobody@example.com", "s3cret-pw")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = f.users.Login(ctx, "", "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	u.IsActive = false
	require.NoError(t, f.store.Users().Update(ctx, u))
	_, err = f.users.Login(ctx, "ada@example.com", "s3cret-pw")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = f.users.Refresh(ctx, res.Tokens.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestUserService_UpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := register(t, f, "ada@example.com")

	got, err := f.users.UpdateProfile(ctx, u, ProfilePatch{FirstName: ptr("Augusta"), Password: ptr("new-password")})
	require.NoError(t, err)
	assert.Equal(t, "Augusta", got.FirstName)
	assert.Equal(t, "Lovelace", got.LastName)

	_, err = f.users.Login(ctx, "ada@example.com", "new-password")
	assert.NoError(t, err)

	_, err = f.users.UpdateProfile(ctx, u, ProfilePatch{LastName: ptr("  ")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	profile, err := f.users.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Augusta Lovelace", profile.FullName())
}

func TestUserService_VerifyEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := register(t, f, "ada@example.com")
	token := linkToken(sentBody(f, "Welcome to Our E-Commerce Store!"), "/verify-email/")
	require.NotEmpty(t, token)

	require.NoError(t, f.users.VerifyEmail(ctx, token))
	stored, err := f.users.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.EmailVerified)
	assert.Nil(t, stored.VerificationToken)

	assert.ErrorIs(t, f.users.VerifyEmail(ctx, token), domain.ErrValidation, "tokens are single use")
	assert.ErrorIs(t, f.users.VerifyEmail(ctx, ""), domain.ErrValidation)
}

func TestUserService_PasswordReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	register(t, f, "ada@example.com")

	require.NoError(t, f.users.ForgotPassword(ctx, "nobody@example.com"), "unknown emails are not revealed")

	f.notifier.On("Send", mock.Anything, "ada@example.com", "Password Reset Request", mock.Anything).Return(nil).Once()
	require.NoError(t, f.users.ForgotPassword(ctx, "ada@example.com"))
	token := linkToken(sentBody(f, "Password Reset Request"), "/reset-password/")
	require.NotEmpty(t, token)

	assert.ErrorIs(t, f.users.ResetPassword(ctx, token, ""), domain.ErrValidation)
	require.NoError(t, f.users.ResetPassword(ctx, token, "brand-new-pw"))
	_, err := f.users.Login(ctx, "ada@example.com", "brand-new-pw")
	assert.NoError(t, err)

	assert.ErrorIs(t, f.users.ResetPassword(ctx, token, "again-pw"), domain.ErrValidation, "token is cleared after use")
}

func TestUserService_ForgotPasswordMailFailure(t *testing.T) {
	f := newFixture(t)
	register(t, f, "ada@example.com")
	f.notifier.On("Send", mock.Anything, "ada@example.com", "Password Reset Request", mock.Anything).Return(errors.New("smtp down")).Once()

	err := f.users.ForgotPassword(context.Background(), "ada@example.com")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrValidation))
}

func TestUserService_ResetTokenExpiryAndPurge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := register(t, f, "ada@example.com")
	f.notifier.On("Send", mock.Anything, "ada@example.com", "Password Reset Request", mock.Anything).Return(nil)

	issued := time.Now()
	f.users.now = func() time.Time { return issued }
	require.NoError(t, f.users.ForgotPassword(ctx, "ada@example.com"))
	token := linkToken(sentBody(f, "Password Reset Request"), "/reset-password/")

	f.users.now = func() time.Time { return issued.Add(2 * time.Hour) }
	assert.ErrorIs(t, f.users.ResetPassword(ctx, token, "brand-new-pw"), domain.ErrValidation)

	n, err := f.users.PurgeExpiredResetTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	stored, err := f.users.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ResetToken)

	n, err = f.users.PurgeExpiredResetTokens(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUserService_TokensAuthenticateMiddlewareUsers(t *testing.T) {
	f := newFixture(t)
	u := register(t, f, "ada@example.com")
	res, err := f.users.Login(context.Background(), "ada@example.com", "s3cret-pw")
	require.NoError(t, err)

	id, err := f.users.tokens.Parse(res.Tokens.AccessToken, auth.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)
}
