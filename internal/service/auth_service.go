// Package service implements the business logic between handlers and
// repositories.
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/apsx/clinic-api/internal/auth"
	"github.com/apsx/clinic-api/internal/constants"
	"github.com/apsx/clinic-api/internal/models"
	"github.com/apsx/clinic-api/internal/repository"
	"github.com/apsx/clinic-api/internal/utils"
)

// AuthService handles authentication operations.
type AuthService struct {
	userRepo     repository.UserRepository
	loginLogRepo repository.LoginLogRepository
	tokenService *auth.TokenService
	passwordCfg  *auth.PasswordConfig
	otpVerifier  auth.OTPVerifier
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	userRepo repository.UserRepository,
	loginLogRepo repository.LoginLogRepository,
	tokenService *auth.TokenService,
	passwordCfg *auth.PasswordConfig,
	otpVerifier auth.OTPVerifier,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		loginLogRepo: loginLogRepo,
		tokenService: tokenService,
		passwordCfg:  passwordCfg,
		otpVerifier:  otpVerifier,
	}
}

// Login verifies credentials and returns both token classes. Unknown email
// and wrong password produce the same response so the endpoint does not leak
// which accounts exist. The active flag is checked only after a successful
// credential match.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest, remoteAddr string) (*models.LoginResponse, error) {
	user, err := s.userRepo.GetForLogin(ctx, req.Username)
	if err != nil {
		if utils.IsNotFoundError(err) {
			s.audit(ctx, 0, req.Username, constants.LogEventLogin, false, "user not found", remoteAddr)
			return nil, utils.NewInvalidCredentialsError()
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	match, err := auth.CheckPassword(req.Password, user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		s.audit(ctx, user.ID, user.Email, constants.LogEventLogin, false, "invalid password", remoteAddr)
		return nil, utils.NewInvalidCredentialsError()
	}

	if !user.IsActive {
		s.audit(ctx, user.ID, user.Email, constants.LogEventLogin, false, "account deactivated", remoteAddr)
		return nil, utils.NewAccountDeactivatedError()
	}

	if user.OTPURL != nil && *user.OTPURL != "" {
		if req.OTPCode == "" {
			s.audit(ctx, user.ID, user.Email, constants.LogEventLogin, false, "otp missing", remoteAddr)
			return nil, utils.NewUnauthorizedError(constants.MsgOTPRequired)
		}
		ok, err := s.otpVerifier.Verify(*user.OTPURL, req.OTPCode)
		if err != nil {
			return nil, fmt.Errorf("failed to verify OTP code: %w", err)
		}
		if !ok {
			s.audit(ctx, user.ID, user.Email, constants.LogEventLogin, false, "invalid otp", remoteAddr)
			return nil, utils.NewInvalidCredentialsError()
		}
	}

	memberships, err := s.userRepo.GetMemberships(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get memberships: %w", err)
	}
	if len(memberships) == 0 {
		s.audit(ctx, user.ID, user.Email, constants.LogEventLogin, false, "no shop membership", remoteAddr)
		return nil, utils.NewForbiddenError("User has no active shop membership")
	}

	identity := buildIdentity(user, memberships[0])

	accessToken, expiresAt, err := s.tokenService.GenerateAccessToken(identity)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, _, err := s.tokenService.GenerateRefreshToken(identity, models.UserTypeStaff)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	s.audit(ctx, user.ID, user.Email, constants.LogEventLogin, true, "", remoteAddr)
	utils.LogAuth(constants.LogEventLogin, user.ID, user.Email, true, "")

	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User:         user.Sanitize(),
		Shops:        memberships,
	}, nil
}

// Refresh exchanges a verified refresh token for a new access token and a
// rotated refresh token. The user is re-resolved so that deactivation and
// password changes made after issuance take effect here.
func (s *AuthService) Refresh(ctx context.Context, claims *auth.RefreshClaims, remoteAddr string) (*models.RefreshResponse, error) {
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if utils.IsNotFoundError(err) {
			s.audit(ctx, claims.UserID, claims.UserEmail, constants.LogEventRefresh, false, "user not found", remoteAddr)
			return nil, utils.NewInvalidTokenError()
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.IsActive {
		s.audit(ctx, user.ID, user.Email, constants.LogEventRefresh, false, "account deactivated", remoteAddr)
		return nil, utils.NewInvalidTokenError()
	}

	if user.PasswordVersion != claims.PasswordVersion {
		s.audit(ctx, user.ID, user.Email, constants.LogEventRefresh, false, "stale password version", remoteAddr)
		return nil, utils.NewInvalidTokenError()
	}

	identity := claims.Identity
	identity.UserEmail = user.Email
	identity.PasswordVersion = user.PasswordVersion

	accessToken, expiresAt, err := s.tokenService.GenerateAccessToken(identity)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, _, err := s.tokenService.GenerateRefreshToken(identity, claims.UserType)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	s.audit(ctx, user.ID, user.Email, constants.LogEventRefresh, true, "", remoteAddr)

	return &models.RefreshResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// ChangePassword verifies the current password, stores a new digest and
// bumps password_version so outstanding refresh tokens stop renewing.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req *models.ChangePasswordRequest, remoteAddr string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	match, err := auth.CheckPassword(req.CurrentPassword, user.Password)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		s.audit(ctx, user.ID, user.Email, constants.LogEventChangePassword, false, "invalid current password", remoteAddr)
		return utils.NewUnauthorizedError("Current password is incorrect")
	}

	digest, err := auth.HashPassword(req.NewPassword, s.passwordCfg)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.ChangePassword(ctx, user.ID, digest); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	s.audit(ctx, user.ID, user.Email, constants.LogEventChangePassword, true, "", remoteAddr)
	utils.LogAuth(constants.LogEventChangePassword, user.ID, user.Email, true, "")

	return nil
}

// EnrollOTP generates a fresh enrollment URL and stores it on the account.
// The URL is returned once so the user can load it into an authenticator;
// from the next login on the code is required.
func (s *AuthService) EnrollOTP(ctx context.Context, userID int64, remoteAddr string) (*models.EnrollOTPResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.OTPURL != nil && *user.OTPURL != "" {
		return nil, utils.NewBadRequestError("OTP is already enabled")
	}

	otpURL, err := auth.GenerateOTPURL(s.tokenService.Issuer(), user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP enrollment: %w", err)
	}

	if err := s.userRepo.UpdateOTPURL(ctx, user.ID, &otpURL); err != nil {
		return nil, fmt.Errorf("failed to store OTP enrollment: %w", err)
	}

	s.audit(ctx, user.ID, user.Email, constants.LogEventOTPEnroll, true, "", remoteAddr)
	utils.LogAuth(constants.LogEventOTPEnroll, user.ID, user.Email, true, "")

	return &models.EnrollOTPResponse{OTPURL: otpURL}, nil
}

// DisableOTP removes the second factor from the account after re-verifying
// the current password.
func (s *AuthService) DisableOTP(ctx context.Context, userID int64, req *models.DisableOTPRequest, remoteAddr string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	match, err := auth.CheckPassword(req.Password, user.Password)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		s.audit(ctx, user.ID, user.Email, constants.LogEventOTPDisable, false, "invalid current password", remoteAddr)
		return utils.NewUnauthorizedError("Current password is incorrect")
	}

	if user.OTPURL == nil || *user.OTPURL == "" {
		return utils.NewBadRequestError("OTP is not enabled")
	}

	if err := s.userRepo.UpdateOTPURL(ctx, user.ID, nil); err != nil {
		return fmt.Errorf("failed to clear OTP enrollment: %w", err)
	}

	s.audit(ctx, user.ID, user.Email, constants.LogEventOTPDisable, true, "", remoteAddr)
	utils.LogAuth(constants.LogEventOTPDisable, user.ID, user.Email, true, "")

	return nil
}

// audit records one authentication event in the logging database. Failures
// are logged but never block the authentication flow.
func (s *AuthService) audit(ctx context.Context, userID int64, email, event string, success bool, reason, remoteAddr string) {
	entry := &models.LoginLog{
		UserID:     userID,
		Email:      email,
		Event:      event,
		Success:    success,
		Reason:     reason,
		RemoteAddr: remoteAddr,
	}
	if err := s.loginLogRepo.Insert(ctx, entry); err != nil {
		log.Warn().
			Err(err).
			Str("event", event).
			Int64("user_id", userID).
			Msg("Failed to record login audit entry")
	}
}

// buildIdentity assembles the token claim set from a user and their primary
// shop membership.
func buildIdentity(user *models.User, m *models.Membership) auth.Identity {
	return auth.Identity{
		UserID:          user.ID,
		ShopID:          m.ShopID,
		ShopMotherID:    m.ShopMotherID,
		RoleID:          m.RoleID,
		ShopRoleID:      m.ShopRoleID,
		UserEmail:       user.Email,
		DiscountTypeID:  m.DiscountTypeID,
		Discount:        m.Discount,
		PasswordVersion: user.PasswordVersion,
	}
}
