// Package constants provides shared constant values used throughout the application.
//
// The http_const.go file defines HTTP headers, token prefixes, context keys and
// user-facing messages so that every handler and guard speaks the same dialect.
package constants

// HTTP Headers used by the authentication guards and middleware.
const (
	// HeaderAuthorization carries the bearer token on protected routes.
	HeaderAuthorization = "Authorization"

	// HeaderXAPIKey carries the static key on machine-to-machine routes.
	HeaderXAPIKey = "X-API-Key"

	// HeaderXRequestID carries the request correlation identifier.
	HeaderXRequestID = "X-Request-ID"

	// BearerTokenPrefix is the required prefix of the Authorization header value.
	BearerTokenPrefix = "Bearer "
)

// Security header names and values applied to every response.
const (
	HeaderXContentTypeOptions  = "X-Content-Type-Options"
	HeaderXFrameOptions        = "X-Frame-Options"
	HeaderReferrerPolicy       = "Referrer-Policy"
	ContentTypeOptionsNoSniff  = "nosniff"
	FrameOptionsDeny           = "DENY"
	ReferrerPolicyStrictOrigin = "strict-origin-when-cross-origin"
)

// Context Keys for values attached to the request context by the guards.
const (
	// AuthUserContextKey stores the authenticated identity projection.
	AuthUserContextKey = "auth_user"

	// RefreshClaimsContextKey stores verified refresh token claims.
	RefreshClaimsContextKey = "refresh_claims"

	// RequestIDContextKey stores the unique request ID.
	RequestIDContextKey = "request_id"
)

// Token Types discriminate the two token classes in logs.
const (
	// TokenTypeAccess identifies short-lived API tokens.
	TokenTypeAccess = "access"

	// TokenTypeRefresh identifies long-lived renewal tokens.
	TokenTypeRefresh = "refresh"
)

// User-facing messages. Auth failures are deliberately generic so that the
// response body never reveals whether the account exists.
const (
	// MsgInvalidCredentials is returned for unknown users and wrong passwords alike.
	MsgInvalidCredentials = "Invalid username or password"

	// MsgAccountDeactivated is returned after a successful credential match
	// against a deactivated account.
	MsgAccountDeactivated = "User account is deactivated"

	// MsgAuthRequired is returned when a protected route is called without credentials.
	MsgAuthRequired = "Authentication required"

	// MsgInvalidToken is returned for malformed, forged or expired bearer tokens.
	MsgInvalidToken = "Invalid or expired token"

	// MsgInvalidAPIKey is returned when the X-API-Key header is missing or wrong.
	MsgInvalidAPIKey = "Invalid API key"

	// MsgOTPRequired is returned when an OTP-enrolled user logs in without a code.
	MsgOTPRequired = "OTP code required"
)
