package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequiredEnv sets the minimum environment for a valid configuration.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_AC_KEY", "access-secret")
	t.Setenv("JWT_RF_KEY", "refresh-secret")
	t.Setenv("TK_PUBLIC_KEY", "public-api-key")
	t.Setenv("TK_TELE_PUBLIC_KEY", "tele-api-key")
	t.Setenv("DB_USER", "clinic_rw")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, 8002, cfg.Server.Port)
	assert.Equal(t, 90, cfg.JWT.AccessExpiryMinutes)
	assert.Equal(t, 720, cfg.JWT.RefreshExpiryHours)
	assert.Equal(t, "clinic-api", cfg.JWT.Issuer)
	assert.Equal(t, 20, cfg.Databases.Main.MaxConns)
	assert.Equal(t, 3306, cfg.Databases.Replica.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.PasswordHash.BcryptCost)
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("API_PORT", "9000")
	t.Setenv("JWT_AC_EXPIRE", "30")
	t.Setenv("JWT_RF_EXPIRE", "24")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PWD", "main-password")
	t.Setenv("DBR_HOST", "db-replica.internal")
	t.Setenv("DBL_HOST", "db-log.internal")
	t.Setenv("DBLR_HOST", "db-log-replica.internal")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessExpiry())
	assert.Equal(t, 24*time.Hour, cfg.JWT.RefreshExpiry())
	assert.Equal(t, "db.internal", cfg.Databases.Main.Host)
	assert.Equal(t, "main-password", cfg.Databases.Main.Password)
	assert.Equal(t, "db-replica.internal", cfg.Databases.Replica.Host)
	assert.Equal(t, "db-log.internal", cfg.Databases.Log.Host)
	assert.Equal(t, "db-log-replica.internal", cfg.Databases.LogReplica.Host)
}

func TestLoad_YAMLFile(t *testing.T) {
	setRequiredEnv(t)

	content := `
app:
  environment: production
server:
  port: 8080
jwt:
  access_expiry_minutes: 45
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 45, cfg.JWT.AccessExpiryMinutes)
	assert.Equal(t, 12, cfg.PasswordHash.BcryptCost)
	assert.True(t, cfg.App.IsProduction())
}

func TestLoad_MissingAccessSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_AC_KEY", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_AC_KEY")
}

func TestLoad_IdenticalSecrets(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_RF_KEY", "access-secret")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestLoad_MissingAPIKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TK_TELE_PUBLIC_KEY", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TK_TELE_PUBLIC_KEY")
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOG_LEVEL", "chatty")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestDatabaseSettings_ConnectionString(t *testing.T) {
	dbs := &DatabaseSettings{
		Host:     "db.internal",
		Port:     3306,
		Name:     "clinic",
		User:     "clinic_rw",
		Password: "secret",
	}

	dsn := dbs.ConnectionString()
	assert.Contains(t, dsn, "clinic_rw:secret@tcp(db.internal:3306)/clinic")
	assert.Contains(t, dsn, "parseTime=true")
}

func TestDatabaseSettings_ConnectionString_NoPassword(t *testing.T) {
	dbs := &DatabaseSettings{
		Host: "localhost",
		Port: 3306,
		Name: "clinic",
		User: "clinic_ro",
	}

	assert.Contains(t, dbs.ConnectionString(), "clinic_ro@tcp(localhost:3306)/clinic")
}

func TestServerSettings_ServerAddress(t *testing.T) {
	ss := &ServerSettings{Host: "0.0.0.0", Port: 8002}
	assert.Equal(t, "0.0.0.0:8002", ss.ServerAddress())
}
