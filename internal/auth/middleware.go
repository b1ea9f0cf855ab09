package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/apsx/clinic-api/internal/constants"
	"github.com/apsx/clinic-api/internal/utils"
)

// contextKey is a private type for request context keys set by the guards.
type contextKey string

const (
	authUserKey      contextKey = constants.AuthUserContextKey
	refreshClaimsKey contextKey = constants.RefreshClaimsContextKey
)

// AuthUser is the identity projection attached to the request context after a
// successful access token check.
type AuthUser struct {
	UserID          int64
	ShopID          int64
	ShopMotherID    int64
	RoleID          int64
	ShopRoleID      int64
	Email           string
	DiscountTypeID  int64
	Discount        float64
	PasswordVersion int64
}

// Middleware provides the HTTP guards built on top of a TokenService.
type Middleware struct {
	tokenService *TokenService
}

// NewMiddleware creates authentication middleware using the given token service.
func NewMiddleware(ts *TokenService) *Middleware {
	return &Middleware{tokenService: ts}
}

// RequireAccessToken guards routes that need an authenticated user. It
// extracts the bearer token, validates it against the access secret and
// attaches the identity projection to the request context.
func (m *Middleware) RequireAccessToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := extractBearerToken(r)
		if !ok {
			utils.Unauthorized(w, constants.MsgAuthRequired)
			return
		}

		claims, err := m.tokenService.ValidateAccessToken(tokenString)
		if err != nil {
			utils.Unauthorized(w, constants.MsgInvalidToken)
			return
		}

		user := &AuthUser{
			UserID:          claims.UserID,
			ShopID:          claims.ShopID,
			ShopMotherID:    claims.ShopMotherID,
			RoleID:          claims.RoleID,
			ShopRoleID:      claims.ShopRoleID,
			Email:           claims.UserEmail,
			DiscountTypeID:  claims.DiscountTypeID,
			Discount:        claims.Discount,
			PasswordVersion: claims.PasswordVersion,
		}

		ctx := context.WithValue(r.Context(), authUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRefreshToken guards the token renewal route. A valid access token
// does not pass this guard because the two classes use distinct secrets.
func (m *Middleware) RequireRefreshToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := extractBearerToken(r)
		if !ok {
			utils.Unauthorized(w, constants.MsgAuthRequired)
			return
		}

		claims, err := m.tokenService.ValidateRefreshToken(tokenString)
		if err != nil {
			utils.Unauthorized(w, constants.MsgInvalidToken)
			return
		}

		ctx := context.WithValue(r.Context(), refreshClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAPIKey guards machine-to-machine routes with a static key carried in
// the X-API-Key header. The comparison is constant time.
func RequireAPIKey(expectedKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expectedKey == "" {
				log.Error().Str("path", r.URL.Path).Msg("API key guard configured without a key")
				utils.Unauthorized(w, constants.MsgInvalidAPIKey)
				return
			}

			provided := r.Header.Get(constants.HeaderXAPIKey)
			if provided == "" {
				utils.Unauthorized(w, constants.MsgInvalidAPIKey)
				return
			}

			if subtle.ConstantTimeCompare([]byte(provided), []byte(expectedKey)) != 1 {
				utils.Unauthorized(w, constants.MsgInvalidAPIKey)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractBearerToken pulls the token out of the Authorization header.
func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(constants.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	if !strings.HasPrefix(header, constants.BearerTokenPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, constants.BearerTokenPrefix))
	if token == "" {
		return "", false
	}
	return token, true
}

// GetAuthUser retrieves the authenticated identity from the request context.
func GetAuthUser(ctx context.Context) (*AuthUser, bool) {
	user, ok := ctx.Value(authUserKey).(*AuthUser)
	return user, ok
}

// GetRefreshClaims retrieves verified refresh claims from the request context.
func GetRefreshClaims(ctx context.Context) (*RefreshClaims, bool) {
	claims, ok := ctx.Value(refreshClaimsKey).(*RefreshClaims)
	return claims, ok
}

// Identity converts the context projection back into a token claim set.
func (u *AuthUser) Identity() Identity {
	return Identity{
		UserID:          u.UserID,
		ShopID:          u.ShopID,
		ShopMotherID:    u.ShopMotherID,
		RoleID:          u.RoleID,
		ShopRoleID:      u.ShopRoleID,
		UserEmail:       u.Email,
		DiscountTypeID:  u.DiscountTypeID,
		Discount:        u.Discount,
		PasswordVersion: u.PasswordVersion,
	}
}
