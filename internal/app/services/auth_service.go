package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nitn/phd-admission/internal/app/models"
	"github.com/nitn/phd-admission/internal/app/models/dto"
	"github.com/nitn/phd-admission/internal/pkg/apperrors"
	"github.com/nitn/phd-admission/internal/pkg/auth"
	"github.com/nitn/phd-admission/internal/pkg/metrics"
	"github.com/nitn/phd-admission/internal/pkg/validation"
	"github.com/rs/zerolog"
)

// Client-facing authentication messages
const (
	MsgUserNotFound        = "User does not exist"
	MsgInvalidCredentials  = "Invalid credentials"
	MsgUnauthorized        = "Unauthorized request"
	MsgInvalidRefreshToken = "Invalid refresh token"
	MsgStaleRefreshToken   = "Refresh token is expired or used"
	MsgInvalidAccessToken  = "Invalid access token"
	MsgAccountNotFound     = "Invalid access token: user not found"
)

// ApplicationIDFormat describes how registration codes are minted
type ApplicationIDFormat struct {
	Prefix  string // e.g. NITN/Phd
	Width   int    // zero-padded digits
	Counter string // sequence counter name
}

// Format renders n as a registration code such as NITN/Phd/000001
func (f ApplicationIDFormat) Format(n int64) string {
	return fmt.Sprintf("%s/%0*d", f.Prefix, f.Width, n)
}

// AuthService handles registration, login and token refresh
type AuthService struct {
	users      UserStore
	jwtService *auth.JWTService
	ids        ApplicationIDFormat
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserStore, jwtService *auth.JWTService, ids ApplicationIDFormat, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:      users,
		jwtService: jwtService,
		ids:        ids,
		logger:     logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account with the next registration code and signs the user in
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:    req.Email,
		FullName: req.FullName,
		Password: hashed,
	}
	if err := s.users.CreateWithApplicationID(ctx, user, s.ids.Counter, s.ids.Format); err != nil {
		return nil, err
	}
	metrics.RecordRegistration()
	s.logger.Info().Int64("userID", user.ID).Str("applicationId", user.ApplicationID).Msg("Applicant registered")

	return s.signIn(ctx, user)
}

// Login verifies credentials and replaces the stored refresh token
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewResourceNotFoundError(MsgUserNotFound)
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Warn().Int64("userID", user.ID).Msg("Login with wrong password")
		return nil, apperrors.NewUnauthorizedError(apperrors.ErrInvalidCredentials, MsgInvalidCredentials)
	}

	return s.signIn(ctx, user)
}

func (s *AuthService) signIn(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	sub := subjectOf(user)
	access, err := s.jwtService.IssueAccessToken(sub)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtService.IssueRefreshToken(sub)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, &refresh); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &dto.AuthResponse{
		User:         user.Sanitized(),
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.jwtService.AccessTokenTTL().Seconds()),
	}, nil
}

// Refresh issues a new access token for the stored refresh token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, apperrors.NewUnauthorizedError(apperrors.ErrUnauthorized, MsgUnauthorized)
	}

	claims, err := s.jwtService.Verify(refreshToken, auth.RefreshToken)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError(apperrors.ErrTokenInvalid, MsgInvalidRefreshToken)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewUnauthorizedError(apperrors.ErrTokenInvalid, MsgInvalidRefreshToken)
		}
		return nil, err
	}
	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		s.logger.Warn().Int64("userID", user.ID).Msg("Stale refresh token presented")
		return nil, apperrors.NewUnauthorizedError(apperrors.ErrTokenStale, MsgStaleRefreshToken)
	}

	access, err := s.jwtService.IssueAccessToken(subjectOf(user))
	if err != nil {
		return nil, err
	}
	return &dto.RefreshResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwtService.AccessTokenTTL().Seconds()),
	}, nil
}

// Logout clears the stored refresh token. Repeated calls succeed.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	err := s.users.SetRefreshToken(ctx, userID, nil)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return err
	}
	s.logger.Info().Int64("userID", userID).Msg("Applicant logged out")
	return nil
}

// Authenticate resolves an access token to its user
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	if accessToken == "" {
		return nil, apperrors.NewUnauthorizedError(apperrors.ErrUnauthorized, MsgUnauthorized)
	}

	claims, err := s.jwtService.Verify(accessToken, auth.AccessToken)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError(apperrors.ErrTokenInvalid, MsgInvalidAccessToken)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewUnauthorizedError(apperrors.ErrUserNotFound, MsgAccountNotFound)
		}
		return nil, err
	}
	return user.Sanitized(), nil
}

// CurrentUser returns the account without credential material
func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// AccessTokenTTL is the lifetime of issued access tokens
func (s *AuthService) AccessTokenTTL() int64 {
	return int64(s.jwtService.AccessTokenTTL().Seconds())
}

// RefreshTokenTTL is the lifetime of issued refresh tokens
func (s *AuthService) RefreshTokenTTL() int64 {
	return int64(s.jwtService.RefreshTokenTTL().Seconds())
}

func subjectOf(user *models.User) auth.Subject {
	return auth.Subject{
		UserID:        user.ID,
		Email:         user.Email,
		ApplicationID: user.ApplicationID,
	}
}
