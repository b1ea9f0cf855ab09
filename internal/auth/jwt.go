package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/apsx/clinic-api/internal/config"
	"github.com/apsx/clinic-api/internal/constants"
	"github.com/apsx/clinic-api/internal/utils"
)

// Identity is the claim set shared by both token classes. It carries enough
// context for handlers to scope queries without a database round trip.
type Identity struct {
	UserID          int64   `json:"user_id"`
	ShopID          int64   `json:"shop_id"`
	ShopMotherID    int64   `json:"shop_mother_id"`
	RoleID          int64   `json:"role_id"`
	ShopRoleID      int64   `json:"shop_role_id"`
	UserEmail       string  `json:"user_email"`
	DiscountTypeID  int64   `json:"sr_discount_type_id"`
	Discount        float64 `json:"sr_discount"`
	PasswordVersion int64   `json:"password_version"`
}

// AccessClaims is the claim set of short-lived API tokens.
type AccessClaims struct {
	Identity
	jwt.RegisteredClaims
}

// RefreshClaims is the claim set of long-lived renewal tokens. UserType is
// carried only on the refresh class.
type RefreshClaims struct {
	Identity
	UserType int `json:"user_type"`
	jwt.RegisteredClaims
}

// TokenService issues and validates both token classes. The two classes are
// signed with distinct secrets so that a refresh token can never pass an
// access guard and vice versa.
type TokenService struct {
	config *config.JWTSettings
}

// NewTokenService creates a token service from the JWT configuration.
func NewTokenService(cfg *config.JWTSettings) *TokenService {
	return &TokenService{config: cfg}
}

// Issuer reports the configured token issuer. OTP enrollment reuses it as
// the authenticator label.
func (ts *TokenService) Issuer() string {
	return ts.config.Issuer
}

// GenerateAccessToken creates a signed access token for the given identity.
// It returns the token string and its expiry time.
func (ts *TokenService) GenerateAccessToken(identity Identity) (string, time.Time, error) {
	return ts.generate(identity, 0, constants.TokenTypeAccess)
}

// GenerateRefreshToken creates a signed refresh token for the given identity.
func (ts *TokenService) GenerateRefreshToken(identity Identity, userType int) (string, time.Time, error) {
	return ts.generate(identity, userType, constants.TokenTypeRefresh)
}

func (ts *TokenService) generate(identity Identity, userType int, tokenType string) (string, time.Time, error) {
	now := time.Now()

	var secret string
	var expiry time.Duration
	if tokenType == constants.TokenTypeAccess {
		secret = ts.config.AccessSecret
		expiry = ts.config.AccessExpiry()
	} else {
		secret = ts.config.RefreshSecret
		expiry = ts.config.RefreshExpiry()
	}
	if secret == "" {
		return "", time.Time{}, errors.New("jwt secret is not configured")
	}

	expiresAt := now.Add(expiry)
	registered := jwt.RegisteredClaims{
		Issuer:    ts.config.Issuer,
		Subject:   fmt.Sprintf("%d", identity.UserID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}

	var claims jwt.Claims
	if tokenType == constants.TokenTypeAccess {
		claims = &AccessClaims{Identity: identity, RegisteredClaims: registered}
	} else {
		claims = &RefreshClaims{Identity: identity, UserType: userType, RegisteredClaims: registered}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	return signed, expiresAt, nil
}

// ValidateAccessToken parses and verifies an access token string.
func (ts *TokenService) ValidateAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := ts.validate(tokenString, ts.config.AccessSecret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ValidateRefreshToken parses and verifies a refresh token string.
func (ts *TokenService) ValidateRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := ts.validate(tokenString, ts.config.RefreshSecret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (ts *TokenService) validate(tokenString, secret string, claims jwt.Claims) error {
	if tokenString == "" {
		return utils.NewInvalidTokenError()
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Only HMAC is accepted. Rejecting other families here closes the
		// classic alg-substitution hole.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return utils.NewExpiredTokenError()
		}
		return utils.NewInvalidTokenError()
	}

	if !token.Valid {
		return utils.NewInvalidTokenError()
	}

	return nil
}
