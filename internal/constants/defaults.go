// Package constants provides shared constant values used throughout the application.
//
// The defaults.go file defines default values and limits used throughout the
// application. These constants provide sensible defaults for configuration
// settings and establish boundaries for resource usage.
package constants

import "time"

// Default Pagination Values define the parameters used for paginated responses.
const (
	// DefaultPage is the default page number for paginated results when not specified.
	DefaultPage = 1

	// DefaultPageSize is the default number of items per page when not specified.
	DefaultPageSize = 20

	// MaxPageSize is the maximum allowable page size to prevent excessive resource usage.
	MaxPageSize = 100
)

// Default Configuration Values define fallback settings when not specified in configuration.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8002

	// DefaultDBMaxConnections is the default maximum number of connections per pool.
	DefaultDBMaxConnections = 20

	// DefaultDBMinConnections is the default number of idle connections per pool.
	DefaultDBMinConnections = 5

	// DefaultLogLevel is the default logging verbosity level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default logging output format.
	DefaultLogFormat = "json"
)

// Environment Types define the recognized application running environments.
const (
	// EnvDevelopment identifies a development environment with debugging features enabled.
	EnvDevelopment = "development"

	// EnvTesting identifies a testing environment for automated tests.
	EnvTesting = "testing"

	// EnvProduction identifies a production environment with optimized settings.
	EnvProduction = "production"
)

// JWT Defaults define the default token lifetimes and issuer.
const (
	// DefaultAccessExpiryMinutes is the default access token lifetime in minutes.
	DefaultAccessExpiryMinutes = 90

	// DefaultRefreshExpiryHours is the default refresh token lifetime in hours.
	DefaultRefreshExpiryHours = 720

	// DefaultJWTIssuer is the default issuer claim placed in signed tokens.
	DefaultJWTIssuer = "clinic-api"
)

// Password Hashing Defaults configure the bcrypt cost factor.
const (
	// DefaultBcryptCost is the bcrypt cost used in production.
	DefaultBcryptCost = 12

	// DevBcryptCost is a lighter bcrypt cost used outside production.
	DevBcryptCost = 10
)

// Request Limits protect against oversized payloads.
const (
	// MaxRequestBodySize is the maximum size in bytes for HTTP request bodies.
	MaxRequestBodySize = 1 << 20 // 1 MB

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 6
)

// Server Timeouts define default HTTP server timeout values.
const (
	// DefaultReadTimeout is the maximum duration for reading an entire request.
	DefaultReadTimeout = 10 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out response writes.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultShutdownTimeout is how long graceful shutdown waits for in-flight requests.
	DefaultShutdownTimeout = 15 * time.Second

	// DefaultIdleTimeout is the maximum time to wait for the next request on a kept-alive connection.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultDBConnectTimeout bounds the initial connection and ping of each pool.
	DefaultDBConnectTimeout = 10 * time.Second
)

// Logging values used when redacting sensitive fields.
const (
	// LogRedactedValue replaces sensitive values in log output.
	LogRedactedValue = "[REDACTED]"
)
