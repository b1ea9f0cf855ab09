package service_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apsx/clinic-api/internal/auth"
	"github.com/apsx/clinic-api/internal/config"
	"github.com/apsx/clinic-api/internal/models"
	"github.com/apsx/clinic-api/internal/service"
	"github.com/apsx/clinic-api/internal/utils"
)

// fakeUserRepo is an in-memory UserRepository for service tests.
type fakeUserRepo struct {
	users       map[string]*models.User
	memberships map[int64][]*models.Membership
	changedTo   string
}

func (f *fakeUserRepo) GetForLogin(ctx context.Context, email string) (*models.User, error) {
	if user, ok := f.users[email]; ok {
		return user, nil
	}
	return nil, utils.NewNotFoundError("User", email)
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, utils.NewNotFoundError("User", id)
}

func (f *fakeUserRepo) ListByShop(ctx context.Context, shopID int64, p utils.PaginationParams) ([]*models.SanitizedUser, int64, error) {
	return nil, 0, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	return nil
}

func (f *fakeUserRepo) ChangePassword(ctx context.Context, id int64, digest string) error {
	f.changedTo = digest
	for _, user := range f.users {
		if user.ID == id {
			user.Password = digest
			user.PasswordVersion++
			return nil
		}
	}
	return utils.NewNotFoundError("User", id)
}

func (f *fakeUserRepo) UpdateOTPURL(ctx context.Context, id int64, otpURL *string) error {
	for _, user := range f.users {
		if user.ID == id {
			user.OTPURL = otpURL
			return nil
		}
	}
	return utils.NewNotFoundError("User", id)
}

func (f *fakeUserRepo) GetMemberships(ctx context.Context, userID int64) ([]*models.Membership, error) {
	return f.memberships[userID], nil
}

// fakeLoginLogRepo records audit entries in memory.
type fakeLoginLogRepo struct {
	entries []*models.LoginLog
}

func (f *fakeLoginLogRepo) Insert(ctx context.Context, entry *models.LoginLog) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLoginLogRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]*models.LoginLog, error) {
	return f.entries, nil
}

func (f *fakeLoginLogRepo) lastEntry() *models.LoginLog {
	if len(f.entries) == 0 {
		return nil
	}
	return f.entries[len(f.entries)-1]
}

// acceptAllOTP approves any code; rejectAllOTP approves none.
type acceptAllOTP struct{}

func (acceptAllOTP) Verify(otpURL, code string) (bool, error) { return true, nil }

type rejectAllOTP struct{}

func (rejectAllOTP) Verify(otpURL, code string) (bool, error) { return false, nil }

func testPasswordConfig() *auth.PasswordConfig {
	return &auth.PasswordConfig{Cost: 4}
}

func testJWTConfig() *config.JWTSettings {
	return &config.JWTSettings{
		AccessSecret:        "test-access-secret",
		RefreshSecret:       "test-refresh-secret",
		AccessExpiryMinutes: 90,
		RefreshExpiryHours:  720,
		Issuer:              "clinic-api-test",
	}
}

func newTestAuthService(t *testing.T, users *fakeUserRepo, logs *fakeLoginLogRepo, otp auth.OTPVerifier) *service.AuthService {
	t.Helper()
	tokenService := auth.NewTokenService(testJWTConfig())
	return service.NewAuthService(users, logs, tokenService, testPasswordConfig(), otp)
}

func seedUser(t *testing.T, password string, active bool, otpURL *string) *models.User {
	t.Helper()
	digest, err := auth.HashPassword(password, testPasswordConfig())
	require.NoError(t, err)
	return &models.User{
		ID:              42,
		Email:           "staff@clinic.test",
		Password:        digest,
		FirstName:       "Ann",
		LastName:        "Chan",
		IsActive:        active,
		OTPURL:          otpURL,
		PasswordVersion: 3,
	}
}

func seedMemberships() map[int64][]*models.Membership {
	return map[int64][]*models.Membership{
		42: {
			{ShopID: 7, ShopMotherID: 3, ShopName: "Main Branch", RoleID: 2, ShopRoleID: 5, ShopRoleName: "doctor", DiscountTypeID: 1, Discount: 10.5},
		},
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	users := &fakeUserRepo{
		users:       map[string]*models.User{"staff@clinic.test": seedUser(t, "correct-password", true, nil)},
		memberships: seedMemberships(),
	}
	logs := &fakeLoginLogRepo{}
	svc := newTestAuthService(t, users, logs, acceptAllOTP{})

	resp, err := svc.Login(context.Background(), &models.LoginRequest{
		Username: "staff@clinic.test",
		Password: "correct-password",
	}, "10.0.0.1:55555")

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEqual(t, resp.AccessToken, resp.RefreshToken)
	assert.Equal(t, "staff@clinic.test", resp.User.Email)
	require.Len(t, resp.Shops, 1)
	assert.Equal(t, int64(7), resp.Shops[0].ShopID)

	require.NotNil(t, logs.lastEntry())
	assert.True(t, logs.lastEntry().Success)
}

func TestAuthService_Login_WrongPasswordAndUnknownEmailIdentical(t *testing.T) {
	users := &fakeUserRepo{
		users:       map[string]*models.User{"staff@clinic.test": seedUser(t, "correct-password", true, nil)},
		memberships: seedMemberships(),
	}
	svc := newTestAuthService(t, users, &fakeLoginLogRepo{}, acceptAllOTP{})

	_, wrongPassErr := svc.Login(context.Background(), &models.LoginRequest{
		Username: "staff@clinic.test",
		Password: "wrong-password",
	}, "")

	_, unknownErr := svc.Login(context.Background(), &models.LoginRequest{
		Username: "nobody@clinic.test",
		Password: "whatever-password",
	}, "")

	require.Error(t, wrongPassErr)
	require.Error(t, unknownErr)

	wrongApp := utils.ParseError(wrongPassErr)
	unknownApp := utils.ParseError(unknownErr)

	// The two failures must be indistinguishable to the caller.
	assert.Equal(t, http.StatusUnauthorized, wrongApp.StatusCode)
	assert.Equal(t, wrongApp.StatusCode, unknownApp.StatusCode)
	assert.Equal(t, wrongApp.Message, unknownApp.Message)
}

func TestAuthService_Login_Deactivated(t *testing.T) {
	users := &fakeUserRepo{
		users:       map[string]*models.User{"staff@clinic.test": seedUser(t, "correct-password", false, nil)},
		memberships: seedMemberships(),
	}
	logs := &fakeLoginLogRepo{}
	svc := newTestAuthService(t, users, logs, acceptAllOTP{})

	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Username: "staff@clinic.test",
		Password: "correct-password",
	}, "")

	require.Error(t, err)
	appErr := utils.ParseError(err)
	assert.Equal(t, http.StatusForbidden, appErr.StatusCode)
	assert.Equal(t, "User account is deactivated", appErr.Message)
	assert.Equal(t, "account deactivated", logs.lastEntry().Reason)
}

func TestAuthService_Login_DeactivatedWithWrongPassword(t *testing.T) {
	users := &fakeUserRepo{
		users:       map[string]*models.User{"staff@clinic.test": seedUser(t, "correct-password", false, nil)},
		memberships: seedMemberships(),
	}
	svc := newTestAuthService(t, users, &fakeLoginLogRepo{}, acceptAllOTP{})

	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Username: "staff@clinic.test",
		Password: "wrong-password",
	}, "")

	// Wrong password wins over deactivation: the 403 only appears after a
	// successful credential match.
	require.Error(t, err)
	appErr := utils.ParseError(err)
	assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
}

func TestAuthService_Login_OTPRequired(t *testing.T) {
	otpURL := "otpauth://totp/x?secret=JBSWY3DPEHPK3PXP"
	users := &fakeUserRepo{
		users:       map[string]*models.User{"staff@clinic.test": seedUser(t, "correct-password", true, &otpURL)},
		memberships: seedMemberships(),
	}
	svc := newTestAuthService(t, users, &fakeLoginLogRepo{}, acceptAllOTP{})

	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Username: "staff@clinic.test",
		Password: "correct-password",
	}, "")

	require.Error(t, err)
	appErr := utils.ParseError(err)
	assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
	assert.Equal(t, "OTP code required", appErr.Message)
}

func TestAuthService_Login_OTPInvalid(t *testing.T) {
	otpURL := "otpauth://totp/x?secret=JBSWY3DPEHPK3PXP"
	users := &fakeUserRepo{
		users:       map[string]*models.User{"staff@clinic.test": seedUser(t, "correct-password", true, &otpURL)},
		memberships: seedMemberships(),
	}
	svc := newTestAuthService(t, users, &fakeLoginLogRepo{}, rejectAllOTP{})

	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Username: "staff@clinic.test",
		Password: "correct-password",
		OTPCode:  "000000",
	}, "")

	require.Error(t, err)
	appErr := utils.ParseError(err)
	assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
	assert.Equal(t, "Invalid username or password", appErr.Message)
}

func TestAuthService_Login_OTPAccepted(t *testing.T) {
	otpURL := "otpauth://totp/x?secret=JBSWY3DPEHPK3PXP"
	users := &fakeUserRepo{
		users:       map[string]*models.User{"staff@clinic.test": seedUser(t, "correct-password", true, &otpURL)},
		memberships: seedMemberships(),
	}
	svc := newTestAuthService(t, users, &fakeLoginLogRepo{}, acceptAllOTP{})

	resp, err := svc.Login(context.Background(), &models.LoginRequest{
		Username: "staff@clinic.test",
		Password: "correct-password",
		OTPCode:  "123456",
	}, "")

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestAuthService_Login_NoMembership(t *testing.T) {
	users := &fakeUserRepo{
		users:       map[string]*models.User{"staff@clinic.test": seedUser(t, "correct-password", true, nil)},
		memberships: map[int64][]*models.Membership{},
	}
	svc := newTestAuthService(t, users, &fakeLoginLogRepo{}, acceptAllOTP{})

	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Username: "staff@clinic.test",
		Password: "correct-password",
	}, "")

	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, utils.ParseError(err).StatusCode)
}

func TestAuthService_Refresh_Success(t *testing.T) {
	user := seedUser(t, "correct-password", true, nil)
	users := &fakeUserRepo{
		users:       map[string]*models.User{user.Email: user},
		memberships: seedMemberships(),
	}
	svc := newTestAuthService(t, users, &fakeLoginLogRepo{}, acceptAllOTP{})

	claims := &auth.RefreshClaims{
		Identity: auth.Identity{
			UserID:          user.ID,
			ShopID:          7,
			UserEmail:       user.Email,
			PasswordVersion: user.PasswordVersion,
		},
		UserType: models.UserTypeStaff,
	}

	resp, err := svc.Refresh(context.Background(), claims, "")

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEqual(t, resp.AccessToken, resp.RefreshToken)
}

func TestAuthService_Refresh_RotatesRefreshToken(t *testing.T) {
	user := seedUser(t, "correct-password", true, nil)
	users := &fakeUserRepo{
		users:       map[string]*models.User{user.Email: user},
		memberships: seedMemberships(),
	}
	svc := newTestAuthService(t, users, &fakeLoginLogRepo{}, acceptAllOTP{})

	claims := &auth.RefreshClaims{
		Identity: auth.Identity{
			UserID:          user.ID,
			ShopID:          7,
			UserEmail:       user.Email,
			PasswordVersion: user.PasswordVersion,
		},
		UserType: models.UserTypeStaff,
	}

	resp, err := svc.Refresh(context.Background(), claims, "")
	require.NoError(t, err)

	// The rotated token must pass refresh validation and keep the caller's
	// identity and user type.
	rotated, err := auth.NewTokenService(testJWTConfig()).ValidateRefreshToken(resp.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, rotated.UserID)
	assert.Equal(t, int64(7), rotated.ShopID)
	assert.Equal(t, models.UserTypeStaff, rotated.UserType)
}

func TestAuthService_Refresh_StalePasswordVersion(t *testing.T) {
	user := seedUser(t, "correct-password", true, nil)
	users := &fakeUserRepo{
		users:       map[string]*models.User{user.Email: user},
		memberships: seedMemberships(),
	}
	svc := newTestAuthService(t, users, &fakeLoginLogRepo{}, acceptAllOTP{})

	claims := &auth.RefreshClaims{
		Identity: auth.Identity{
			UserID:          user.ID,
			UserEmail:       user.Email,
			PasswordVersion: user.PasswordVersion - 1,
		},
	}

	_, err := svc.Refresh(context.Background(), claims, "")

	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, utils.ParseError(err).StatusCode)
}

func TestAuthService_Refresh_DeactivatedUser(t *testing.T) {
	user := seedUser(t, "correct-password", false, nil)
	users := &fakeUserRepo{
		users:       map[string]*models.User{user.Email: user},
		memberships: seedMemberships(),
	}
	svc := newTestAuthService(t, users, &fakeLoginLogRepo{}, acceptAllOTP{})

	claims := &auth.RefreshClaims{
		Identity: auth.Identity{UserID: user.ID, PasswordVersion: user.PasswordVersion},
	}

	_, err := svc.Refresh(context.Background(), claims, "")

	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, utils.ParseError(err).StatusCode)
}

func TestAuthService_ChangePassword(t *testing.T) {
	user := seedUser(t, "old-password", true, nil)
	users := &fakeUserRepo{
		users:       map[string]*models.User{user.Email: user},
		memberships: seedMemberships(),
	}
	svc := newTestAuthService(t, users, &fakeLoginLogRepo{}, acceptAllOTP{})

	oldVersion := user.PasswordVersion

	err := svc.ChangePassword(context.Background(), user.ID, &models.ChangePasswordRequest{
		CurrentPassword: "old-password",
		NewPassword:     "new-password",
	}, "")

	require.NoError(t, err)
	assert.NotEmpty(t, users.changedTo)
	assert.NotEqual(t, "new-password", users.changedTo)
	assert.Equal(t, oldVersion+1, user.PasswordVersion)

	match, err := auth.CheckPassword("new-password", user.Password)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestAuthService_ChangePassword_WrongCurrent(t *testing.T) {
	user := seedUser(t, "old-password", true, nil)
	users := &fakeUserRepo{
		users:       map[string]*models.User{user.Email: user},
		memberships: seedMemberships(),
	}
	svc := newTestAuthService(t, users, &fakeLoginLogRepo{}, acceptAllOTP{})

	err := svc.ChangePassword(context.Background(), user.ID, &models.ChangePasswordRequest{
		CurrentPassword: "not-the-password",
		NewPassword:     "new-password",
	}, "")

	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, utils.ParseError(err).StatusCode)
	assert.Empty(t, users.changedTo)
}

func TestAuthService_EnrollOTP(t *testing.T) {
	user := seedUser(t, "correct-password", true, nil)
	users := &fakeUserRepo{
		users:       map[string]*models.User{user.Email: user},
		memberships: seedMemberships(),
	}
	logs := &fakeLoginLogRepo{}
	svc := newTestAuthService(t, users, logs, acceptAllOTP{})

	resp, err := svc.EnrollOTP(context.Background(), user.ID, "10.0.0.1:55555")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.OTPURL, "otpauth://"))
	require.NotNil(t, user.OTPURL)
	assert.Equal(t, resp.OTPURL, *user.OTPURL)
	require.NotNil(t, logs.lastEntry())
	assert.Equal(t, "otp_enroll", logs.lastEntry().Event)
}

func TestAuthService_EnrollOTP_AlreadyEnabled(t *testing.T) {
	otpURL := "otpauth://totp/x?secret=JBSWY3DPEHPK3PXP"
	user := seedUser(t, "correct-password", true, &otpURL)
	users := &fakeUserRepo{
		users:       map[string]*models.User{user.Email: user},
		memberships: seedMemberships(),
	}
	svc := newTestAuthService(t, users, &fakeLoginLogRepo{}, acceptAllOTP{})

	_, err := svc.EnrollOTP(context.Background(), user.ID, "")

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, utils.ParseError(err).StatusCode)
	assert.Equal(t, otpURL, *user.OTPURL)
}

func TestAuthService_DisableOTP(t *testing.T) {
	otpURL := "otpauth://totp/x?secret=JBSWY3DPEHPK3PXP"
	user := seedUser(t, "correct-password", true, &otpURL)
	users := &fakeUserRepo{
		users:       map[string]*models.User{user.Email: user},
		memberships: seedMemberships(),
	}
	logs := &fakeLoginLogRepo{}
	svc := newTestAuthService(t, users, logs, acceptAllOTP{})

	err := svc.DisableOTP(context.Background(), user.ID, &models.DisableOTPRequest{
		Password: "correct-password",
	}, "")

	require.NoError(t, err)
	assert.Nil(t, user.OTPURL)
	require.NotNil(t, logs.lastEntry())
	assert.Equal(t, "otp_disable", logs.lastEntry().Event)
}

func TestAuthService_DisableOTP_WrongPassword(t *testing.T) {
	otpURL := "otpauth://totp/x?secret=JBSWY3DPEHPK3PXP"
	user := seedUser(t, "correct-password", true, &otpURL)
	users := &fakeUserRepo{
		users:       map[string]*models.User{user.Email: user},
		memberships: seedMemberships(),
	}
	svc := newTestAuthService(t, users, &fakeLoginLogRepo{}, acceptAllOTP{})

	err := svc.DisableOTP(context.Background(), user.ID, &models.DisableOTPRequest{
		Password: "not-the-password",
	}, "")

	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, utils.ParseError(err).StatusCode)
	require.NotNil(t, user.OTPURL)
}

func TestAuthService_DisableOTP_NotEnabled(t *testing.T) {
	user := seedUser(t, "correct-password", true, nil)
	users := &fakeUserRepo{
		users:       map[string]*models.User{user.Email: user},
		memberships: seedMemberships(),
	}
	svc := newTestAuthService(t, users, &fakeLoginLogRepo{}, acceptAllOTP{})

	err := svc.DisableOTP(context.Background(), user.ID, &models.DisableOTPRequest{
		Password: "correct-password",
	}, "")

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, utils.ParseError(err).StatusCode)
}
