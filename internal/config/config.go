// Package config loads and validates the application configuration.
//
// Configuration is assembled in three layers: an optional YAML file, then
// environment variable overrides, then defaults for anything still unset.
// Secrets are only ever read here, once, at process start: the rest of the
// application receives immutable settings structs by reference.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/apsx/clinic-api/internal/constants"
)

// AppConfig represents the entire application configuration.
type AppConfig struct {
	App          AppSettings     `yaml:"app"`
	Server       ServerSettings  `yaml:"server"`
	Databases    DatabaseCluster `yaml:"databases"`
	JWT          JWTSettings     `yaml:"jwt"`
	APIKeys      APIKeySettings  `yaml:"api_keys"`
	Logging      LoggingSettings `yaml:"logging"`
	CORS         CORSSettings    `yaml:"cors"`
	PasswordHash HashSettings    `yaml:"password_hash"`
}

// AppSettings contains general application settings.
type AppSettings struct {
	Environment string `yaml:"environment" env:"APP_ENV"`
	Name        string `yaml:"name" env:"APP_NAME"`
	Version     string `yaml:"version" env:"APP_VERSION"`
}

// ServerSettings contains HTTP server settings.
type ServerSettings struct {
	Host            string        `yaml:"host" env:"SERVER_HOST"`
	Port            int           `yaml:"port" env:"API_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

// DatabaseSettings contains connection settings for a single MySQL pool.
type DatabaseSettings struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// DatabaseCluster holds the four pools the service talks to: the main
// read/write pair and the logging read/write pair.
type DatabaseCluster struct {
	Main       DatabaseSettings `yaml:"main"`
	Replica    DatabaseSettings `yaml:"replica"`
	Log        DatabaseSettings `yaml:"log"`
	LogReplica DatabaseSettings `yaml:"log_replica"`
}

// JWTSettings contains the token codec configuration. Access and refresh
// tokens are signed with independent secrets so the two token classes can be
// rotated separately.
type JWTSettings struct {
	AccessSecret        string `yaml:"access_secret" env:"JWT_AC_KEY"`
	RefreshSecret       string `yaml:"refresh_secret" env:"JWT_RF_KEY"`
	AccessExpiryMinutes int    `yaml:"access_expiry_minutes" env:"JWT_AC_EXPIRE"`
	RefreshExpiryHours  int    `yaml:"refresh_expiry_hours" env:"JWT_RF_EXPIRE"`
	Issuer              string `yaml:"issuer" env:"JWT_ISSUER"`
}

// AccessExpiry returns the access token lifetime.
func (js *JWTSettings) AccessExpiry() time.Duration {
	return time.Duration(js.AccessExpiryMinutes) * time.Minute
}

// RefreshExpiry returns the refresh token lifetime.
func (js *JWTSettings) RefreshExpiry() time.Duration {
	return time.Duration(js.RefreshExpiryHours) * time.Hour
}

// APIKeySettings contains the static keys for machine-to-machine routes.
type APIKeySettings struct {
	PublicKey     string `yaml:"public_key" env:"TK_PUBLIC_KEY"`
	TelePublicKey string `yaml:"tele_public_key" env:"TK_TELE_PUBLIC_KEY"`
}

// LoggingSettings contains logging configuration.
type LoggingSettings struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	Format     string `yaml:"format" env:"LOG_FORMAT"`
	RequestLog bool   `yaml:"request_log" env:"LOG_REQUESTS"`
}

// CORSSettings contains CORS configuration.
type CORSSettings struct {
	AllowedOrigins   []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	AllowedMethods   []string `yaml:"allowed_methods" env:"CORS_ALLOWED_METHODS"`
	AllowedHeaders   []string `yaml:"allowed_headers" env:"CORS_ALLOWED_HEADERS"`
	AllowCredentials bool     `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS"`
	MaxAge           int      `yaml:"max_age" env:"CORS_MAX_AGE"`
}

// HashSettings contains password hashing settings.
type HashSettings struct {
	BcryptCost int `yaml:"bcrypt_cost" env:"HASH_BCRYPT_COST"`
}

// ConnectionString returns the MySQL DSN for this pool.
func (dbs *DatabaseSettings) ConnectionString() string {
	password := dbs.Password
	if password != "" {
		password = ":" + password
	}

	return fmt.Sprintf(
		"%s%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci",
		dbs.User, password, dbs.Host, dbs.Port, dbs.Name,
	)
}

// ServerAddress returns the complete server address.
func (ss *ServerSettings) ServerAddress() string {
	return fmt.Sprintf("%s:%d", ss.Host, ss.Port)
}

// IsDevelopment checks if the application is running in development mode.
func (as *AppSettings) IsDevelopment() bool {
	return strings.ToLower(as.Environment) == constants.EnvDevelopment
}

// IsProduction checks if the application is running in production mode.
func (as *AppSettings) IsProduction() bool {
	return strings.ToLower(as.Environment) == constants.EnvProduction
}

// IsTesting checks if the application is running in testing mode.
func (as *AppSettings) IsTesting() bool {
	return strings.ToLower(as.Environment) == constants.EnvTesting
}

// Load loads the configuration from a config file and environment variables.
// Missing signing secrets or API keys are a fatal condition: the process must
// not come up able to mint or accept unsigned credentials.
func Load(configPath string) (*AppConfig, error) {
	config := &AppConfig{}

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := LoadEnv(config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	setDefaults(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logConfig(config)

	return config, nil
}

// setDefaults sets default values for any missing configuration.
func setDefaults(config *AppConfig) {
	if config.App.Environment == "" {
		config.App.Environment = constants.EnvDevelopment
	}
	if config.App.Name == "" {
		config.App.Name = "clinic-api"
	}
	if config.App.Version == "" {
		config.App.Version = "1.0.0"
	}

	if config.Server.Port == 0 {
		config.Server.Port = constants.DefaultServerPort
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = constants.DefaultReadTimeout
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = constants.DefaultWriteTimeout
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = constants.DefaultShutdownTimeout
	}

	for _, dbs := range []*DatabaseSettings{
		&config.Databases.Main,
		&config.Databases.Replica,
		&config.Databases.Log,
		&config.Databases.LogReplica,
	} {
		if dbs.Port == 0 {
			dbs.Port = 3306
		}
		if dbs.MaxConns == 0 {
			dbs.MaxConns = constants.DefaultDBMaxConnections
		}
		if dbs.MinConns == 0 {
			dbs.MinConns = constants.DefaultDBMinConnections
		}
	}

	if config.JWT.AccessExpiryMinutes == 0 {
		config.JWT.AccessExpiryMinutes = constants.DefaultAccessExpiryMinutes
	}
	if config.JWT.RefreshExpiryHours == 0 {
		config.JWT.RefreshExpiryHours = constants.DefaultRefreshExpiryHours
	}
	if config.JWT.Issuer == "" {
		config.JWT.Issuer = constants.DefaultJWTIssuer
	}

	if config.Logging.Level == "" {
		config.Logging.Level = constants.DefaultLogLevel
	}
	if config.Logging.Format == "" {
		config.Logging.Format = constants.DefaultLogFormat
	}

	if len(config.CORS.AllowedOrigins) == 0 {
		config.CORS.AllowedOrigins = []string{"*"}
	}
	if len(config.CORS.AllowedMethods) == 0 {
		config.CORS.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(config.CORS.AllowedHeaders) == 0 {
		config.CORS.AllowedHeaders = []string{"Authorization", "Content-Type", "X-API-Key", "X-Request-ID"}
	}
	if config.CORS.MaxAge == 0 {
		config.CORS.MaxAge = 300
	}

	if config.PasswordHash.BcryptCost == 0 {
		if config.App.IsProduction() {
			config.PasswordHash.BcryptCost = constants.DefaultBcryptCost
		} else {
			config.PasswordHash.BcryptCost = constants.DevBcryptCost
		}
	}
}

// validateConfig validates that the configuration has all required values.
func validateConfig(config *AppConfig) error {
	env := strings.ToLower(config.App.Environment)
	if env != constants.EnvDevelopment && env != constants.EnvTesting && env != constants.EnvProduction {
		log.Warn().Str("environment", config.App.Environment).Msg("Unknown environment, defaulting to development")
		config.App.Environment = constants.EnvDevelopment
	}

	// Running without signing secrets is unsafe regardless of environment.
	if config.JWT.AccessSecret == "" {
		return fmt.Errorf("access token secret must be set (JWT_AC_KEY)")
	}
	if config.JWT.RefreshSecret == "" {
		return fmt.Errorf("refresh token secret must be set (JWT_RF_KEY)")
	}
	if config.JWT.AccessSecret == config.JWT.RefreshSecret {
		return fmt.Errorf("access and refresh token secrets must differ")
	}

	if config.APIKeys.PublicKey == "" {
		return fmt.Errorf("public API key must be set (TK_PUBLIC_KEY)")
	}
	if config.APIKeys.TelePublicKey == "" {
		return fmt.Errorf("telemedicine API key must be set (TK_TELE_PUBLIC_KEY)")
	}

	if config.Databases.Main.User == "" {
		return fmt.Errorf("main database user must be set")
	}

	if err := validateLogLevel(config.Logging.Level); err != nil {
		return err
	}

	return nil
}

func validateLogLevel(level string) error {
	logLevel := strings.ToLower(level)
	for _, valid := range []string{"debug", "info", "warn", "error", "fatal", "panic"} {
		if logLevel == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s", level)
}

// logConfig logs the current configuration, masking sensitive values.
func logConfig(config *AppConfig) {
	log.Info().
		Str("environment", config.App.Environment).
		Str("version", config.App.Version).
		Str("server", config.Server.ServerAddress()).
		Str("db_main", fmt.Sprintf("%s:%d/%s", config.Databases.Main.Host, config.Databases.Main.Port, config.Databases.Main.Name)).
		Str("db_replica", fmt.Sprintf("%s:%d/%s", config.Databases.Replica.Host, config.Databases.Replica.Port, config.Databases.Replica.Name)).
		Int("access_expiry_minutes", config.JWT.AccessExpiryMinutes).
		Int("refresh_expiry_hours", config.JWT.RefreshExpiryHours).
		Str("log_level", config.Logging.Level).
		Msg("Configuration loaded")
}
