package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/nitn/phd-admission/internal/app/models/dto"
	"github.com/nitn/phd-admission/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, s *AuthService, email string) *dto.AuthResponse {
	t.Helper()
	resp, err := s.Register(context.Background(), &dto.RegisterRequest{Email: email, FullName: "Test User", Password: "Secret#123"})
	require.NoError(t, err)
	return resp
}

func TestApplicationIDFormat(t *testing.T) {
	f := ApplicationIDFormat{Prefix: "NITN/Phd", Width: 6}
	assert.Equal(t, "NITN/Phd/000001", f.Format(1))
	assert.Equal(t, "NITN/Phd/123456", f.Format(123456))
	assert.Equal(t, "NITN/Phd/1234567", f.Format(1234567))
}

func TestRegister_SequentialCodes(t *testing.T) {
	env := newTestEnv(t)
	s := env.services.AuthService

	alice := register(t, s, "alice@x.com")
	bob := register(t, s, "Bob@Y.com")

	assert.Equal(t, "NITN/Phd/000001", alice.User.ApplicationID)
	assert.Equal(t, "NITN/Phd/000002", bob.User.ApplicationID)
	assert.Equal(t, "bob@y.com", bob.User.Email)
	assert.Empty(t, alice.User.Password)
	assert.NotEmpty(t, alice.AccessToken)
	assert.NotEmpty(t, alice.RefreshToken)
	assert.Equal(t, "Bearer", alice.TokenType)
	assert.Equal(t, int64(3600), alice.ExpiresIn)
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	env := newTestEnv(t)
	s := env.services.AuthService
	register(t, s, "alice@x.com")

	_, err := s.Register(context.Background(), &dto.RegisterRequest{Email: "ALICE@x.com", FullName: "Alice", Password: "Secret#123"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, int64(1), env.stores.Users.Counter("userid"))
}

func TestRegister_WeakPasswordRejected(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.services.AuthService.Register(context.Background(), &dto.RegisterRequest{Email: "a@x.com", FullName: "Al", Password: "password"})

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Errors, "password")
}

func TestRegister_ConcurrentCodesStrictlyIncrease(t *testing.T) {
	env := newTestEnv(t)
	s := env.services.AuthService

	const n = 20
	codes := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := s.Register(context.Background(), &dto.RegisterRequest{
				Email:    fmt.Sprintf("user%02d@x.com", i),
				FullName: "User",
				Password: "Secret#123",
			})
			if assert.NoError(t, err) {
				codes[i] = resp.User.ApplicationID
			}
		}(i)
	}
	wg.Wait()

	sort.Strings(codes)
	for i, code := range codes {
		assert.Equal(t, fmt.Sprintf("NITN/Phd/%06d", i+1), code)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	s := env.services.AuthService
	register(t, s, "alice@x.com")

	_, err := s.Login(context.Background(), &dto.LoginRequest{Email: "alice@x.com", Password: "Wrong#123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.EqualError(t, err, MsgInvalidCredentials)

	_, err = s.Login(context.Background(), &dto.LoginRequest{Email: "nobody@x.com", Password: "Secret#123"})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.EqualError(t, err, MsgUserNotFound)

	resp, err := s.Login(context.Background(), &dto.LoginRequest{Email: " Alice@X.com ", Password: "Secret#123"})
	require.NoError(t, err)
	assert.Equal(t, "NITN/Phd/000001", resp.User.ApplicationID)
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)
	s := env.services.AuthService
	ctx := context.Background()
	reg := register(t, s, "alice@x.com")

	out, err := s.Refresh(ctx, reg.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, out.AccessToken)

	user, err := s.Authenticate(ctx, out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, user.ID)

	_, err = s.Refresh(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = s.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	// an access token is not a refresh token
	_, err = s.Refresh(ctx, reg.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestRefresh_StaleAfterLoginAndLogout(t *testing.T) {
	env := newTestEnv(t)
	s := env.services.AuthService
	ctx := context.Background()
	first := register(t, s, "alice@x.com")

	second, err := s.Login(ctx, &dto.LoginRequest{Email: "alice@x.com", Password: "Secret#123"})
	require.NoError(t, err)

	_, err = s.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenStale)

	require.NoError(t, s.Logout(ctx, second.User.ID))
	require.NoError(t, s.Logout(ctx, second.User.ID))

	_, err = s.Refresh(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenStale)
	assert.EqualError(t, err, MsgStaleRefreshToken)
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	s := env.services.AuthService
	ctx := context.Background()
	reg := register(t, s, "alice@x.com")

	_, err := s.Authenticate(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = s.Authenticate(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	env.stores.Users.Delete(reg.User.ID)
	_, err = s.Authenticate(ctx, reg.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
