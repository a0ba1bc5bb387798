package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"commercial-file-service/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	origWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origWd) })
}

// clearEnv unsets keys for the rest of the test and restores them afterwards.
// Reading a .env file exports its keys into the process environment.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func envKeys(content string) []string {
	var keys []string
	for _, line := range strings.Split(content, "\n") {
		if k, _, ok := strings.Cut(line, "="); ok {
			keys = append(keys, k)
		}
	}
	return keys
}

func TestNew_Success(t *testing.T) {
	td := t.TempDir()
	cfgDir := filepath.Join(td, "config")
	require.NoError(t, os.Mkdir(cfgDir, 0o755))

	envContent := `POSTGRES_HOST=localhost
POSTGRES_PORT=5433
POSTGRES_USER=files
POSTGRES_PASSWORD=2529
POSTGRES_DB=files

JWT_TOKEN=very_very_secret_key
GRPC_PORT=50051

REDIS_HOST=localhost
REDIS_PORT=6380
REDIS_DB=0

STORAGE_TYPE=s3
S3_BUCKET=commercial-files

NOTIFICATION_EMAIL=ops@example.com
NOTIFICATION_INTERVAL=5
`
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "local.env"), []byte(envContent), 0o644))
	clearEnv(t, envKeys(envContent)...)
	chdir(t, td)

	cfg, err := config.New()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, uint16(5433), cfg.Postgres.Port)
	assert.Equal(t, "files", cfg.Postgres.Username)
	assert.Equal(t, "2529", cfg.Postgres.Password)

	assert.Equal(t, "very_very_secret_key", cfg.JWTSecret)
	assert.Equal(t, "50051", cfg.GRPCPort)
	assert.Equal(t, "8080", cfg.HTTPPort)

	assert.Equal(t, "6380", cfg.Redis.Port)
	assert.Equal(t, "s3", string(cfg.Storage.Type))
	assert.Equal(t, "commercial-files", cfg.Storage.S3Bucket)

	assert.Equal(t, "ops@example.com", cfg.Notification.Email)
	assert.Equal(t, 5, cfg.Notification.Interval)
	assert.Equal(t, "0 0 2 * * *", cfg.Notification.CleanupCron)
	assert.Equal(t, 30, cfg.Notification.RetentionDays)
}

func TestNew_FileDoesNotLeakIntoLaterReads(t *testing.T) {
	clearEnv(t, "STORAGE_TYPE")

	t.Run("file sets s3", func(t *testing.T) {
		td := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(td, "config"), 0o755))
		content := "JWT_TOKEN=file-secret\nSTORAGE_TYPE=s3\n"
		require.NoError(t, os.WriteFile(filepath.Join(td, "config", "local.env"), []byte(content), 0o644))
		clearEnv(t, envKeys(content)...)
		chdir(t, td)

		cfg, err := config.New()
		require.NoError(t, err)
		assert.Equal(t, "s3", string(cfg.Storage.Type))
	})

	t.Run("environment falls back to default", func(t *testing.T) {
		chdir(t, t.TempDir())
		t.Setenv("JWT_TOKEN", "env-secret")

		cfg, err := config.New()
		require.NoError(t, err)
		assert.Equal(t, "minio", string(cfg.Storage.Type))
	})
}

func TestNew_FromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	clearEnv(t, "STORAGE_TYPE", "S3_BUCKET")
	t.Setenv("JWT_TOKEN", "env-secret")
	t.Setenv("NOTIFICATION_RETENTION_DAYS", "45")

	cfg, err := config.New()
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.JWTSecret)
	assert.Equal(t, 45, cfg.Notification.RetentionDays)
	assert.Equal(t, "minio", string(cfg.Storage.Type))
}

func TestNew_MissingSecret(t *testing.T) {
	chdir(t, t.TempDir())
	clearEnv(t, "JWT_TOKEN")

	_, err := config.New()
	assert.Error(t, err)
}

func TestNew_RejectsBadRetention(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JWT_TOKEN", "s")
	t.Setenv("NOTIFICATION_RETENTION_DAYS", "0")

	_, err := config.New()
	assert.Error(t, err)
}
