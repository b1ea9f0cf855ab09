package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/apsx/clinic-api/internal/auth"
	"github.com/apsx/clinic-api/internal/config"
	"github.com/apsx/clinic-api/internal/utils"
)

func testJWTSettings() *config.JWTSettings {
	return &config.JWTSettings{
		AccessSecret:        "test-access-secret",
		RefreshSecret:       "test-refresh-secret",
		AccessExpiryMinutes: 90,
		RefreshExpiryHours:  720,
		Issuer:              "clinic-api-test",
	}
}

func testIdentity() auth.Identity {
	return auth.Identity{
		UserID:          42,
		ShopID:          7,
		ShopMotherID:    3,
		RoleID:          2,
		ShopRoleID:      5,
		UserEmail:       "staff@clinic.test",
		DiscountTypeID:  1,
		Discount:        10.5,
		PasswordVersion: 4,
	}
}

func TestTokenService_AccessTokenRoundTrip(t *testing.T) {
	ts := auth.NewTokenService(testJWTSettings())

	token, expiresAt, err := ts.GenerateAccessToken(testIdentity())
	if err != nil {
		t.Fatalf("GenerateAccessToken returned error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if !expiresAt.After(time.Now()) {
		t.Error("expected expiry in the future")
	}

	claims, err := ts.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken returned error: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("expected user_id 42, got %d", claims.UserID)
	}
	if claims.ShopID != 7 {
		t.Errorf("expected shop_id 7, got %d", claims.ShopID)
	}
	if claims.UserEmail != "staff@clinic.test" {
		t.Errorf("unexpected user_email %q", claims.UserEmail)
	}
	if claims.PasswordVersion != 4 {
		t.Errorf("expected password_version 4, got %d", claims.PasswordVersion)
	}
	if claims.Issuer != "clinic-api-test" {
		t.Errorf("unexpected issuer %q", claims.Issuer)
	}
}

func TestTokenService_RefreshTokenRoundTrip(t *testing.T) {
	ts := auth.NewTokenService(testJWTSettings())

	token, _, err := ts.GenerateRefreshToken(testIdentity(), 1)
	if err != nil {
		t.Fatalf("GenerateRefreshToken returned error: %v", err)
	}

	claims, err := ts.ValidateRefreshToken(token)
	if err != nil {
		t.Fatalf("ValidateRefreshToken returned error: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("expected user_id 42, got %d", claims.UserID)
	}
	if claims.UserType != 1 {
		t.Errorf("expected user_type 1, got %d", claims.UserType)
	}
}

func TestTokenService_CrossClassRejection(t *testing.T) {
	ts := auth.NewTokenService(testJWTSettings())

	accessToken, _, err := ts.GenerateAccessToken(testIdentity())
	if err != nil {
		t.Fatalf("GenerateAccessToken returned error: %v", err)
	}
	refreshToken, _, err := ts.GenerateRefreshToken(testIdentity(), 1)
	if err != nil {
		t.Fatalf("GenerateRefreshToken returned error: %v", err)
	}

	// Each class is signed with its own secret, so validation with the other
	// class must fail.
	if _, err := ts.ValidateRefreshToken(accessToken); err == nil {
		t.Error("access token must not pass refresh validation")
	}
	if _, err := ts.ValidateAccessToken(refreshToken); err == nil {
		t.Error("refresh token must not pass access validation")
	}
}

func TestTokenService_WrongSecret(t *testing.T) {
	ts := auth.NewTokenService(testJWTSettings())

	token, _, err := ts.GenerateAccessToken(testIdentity())
	if err != nil {
		t.Fatalf("GenerateAccessToken returned error: %v", err)
	}

	other := auth.NewTokenService(&config.JWTSettings{
		AccessSecret:        "different-secret",
		RefreshSecret:       "another-secret",
		AccessExpiryMinutes: 90,
		RefreshExpiryHours:  720,
		Issuer:              "clinic-api-test",
	})

	if _, err := other.ValidateAccessToken(token); err == nil {
		t.Error("token signed with a different secret must not validate")
	}
}

func TestTokenService_TamperedToken(t *testing.T) {
	ts := auth.NewTokenService(testJWTSettings())

	token, _, err := ts.GenerateAccessToken(testIdentity())
	if err != nil {
		t.Fatalf("GenerateAccessToken returned error: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected three token segments, got %d", len(parts))
	}
	tampered := parts[0] + ".eyJ1c2VyX2lkIjo5OTl9." + parts[2]

	if _, err := ts.ValidateAccessToken(tampered); err == nil {
		t.Error("tampered token must not validate")
	}
}

func TestTokenService_ExpiredToken(t *testing.T) {
	cfg := testJWTSettings()
	cfg.AccessExpiryMinutes = -1
	ts := auth.NewTokenService(cfg)

	token, _, err := ts.GenerateAccessToken(testIdentity())
	if err != nil {
		t.Fatalf("GenerateAccessToken returned error: %v", err)
	}

	_, err = ts.ValidateAccessToken(token)
	if err == nil {
		t.Fatal("expired token must not validate")
	}

	appErr := utils.ParseError(err)
	if appErr.Message != "Invalid or expired token" {
		t.Errorf("unexpected message %q", appErr.Message)
	}
}

func TestTokenService_EmptyToken(t *testing.T) {
	ts := auth.NewTokenService(testJWTSettings())

	if _, err := ts.ValidateAccessToken(""); err == nil {
		t.Error("empty token must not validate")
	}
}
