package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelin/comite/internal/modules/scoring"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("COMITE_DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, scoring.PillarSetFull, cfg.PillarSet)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.True(t, filepath.IsAbs(cfg.DataDir))
	assert.Equal(t, scoring.DefaultThresholds(), cfg.Thresholds)
	assert.False(t, cfg.Backup.Enabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("COMITE_DATA_DIR", t.TempDir())
	t.Setenv("COMITE_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("COMITE_PILLAR_SET", "minimal")
	t.Setenv("COMITE_CACHE_TTL_MINUTES", "15")
	t.Setenv("BACKUP_S3_BUCKET", "comite-backups")
	t.Setenv("BACKUP_S3_ENDPOINT", "https://storage.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, scoring.PillarSetMinimal, cfg.PillarSet)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.Backup.Enabled())
	assert.Equal(t, "comite-backups", cfg.Backup.Bucket)
	assert.Equal(t, "comite", cfg.Backup.Prefix)
}

func TestLoadCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	t.Setenv("COMITE_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	info, err := os.Stat(cfg.DataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestThresholdsOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scoring:
  grade_a_plus: 85
  verdict_go: 70
decision:
  dscr_floor: 1.1
`), 0644))

	t.Setenv("COMITE_DATA_DIR", t.TempDir())
	t.Setenv("COMITE_THRESHOLDS_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 85.0, cfg.Thresholds.GradeAPlus)
	assert.Equal(t, 70.0, cfg.Thresholds.VerdictGo)
	assert.Equal(t, 1.1, cfg.Decision.DSCRFloor)

	// Keys absent from the file keep their defaults.
	defaults := scoring.DefaultThresholds()
	assert.Equal(t, defaults.GradeB, cfg.Thresholds.GradeB)
	assert.Equal(t, defaults.PenaltyCap, cfg.Thresholds.PenaltyCap)
}

func TestThresholdsFileMissingIsError(t *testing.T) {
	t.Setenv("COMITE_DATA_DIR", t.TempDir())
	t.Setenv("COMITE_THRESHOLDS_FILE", "/does/not/exist.yaml")

	_, err := Load()
	assert.Error(t, err, "an explicitly configured file must exist")
}

func TestThresholdsFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scoring: ["), 0644))

	t.Setenv("COMITE_DATA_DIR", t.TempDir())
	t.Setenv("COMITE_THRESHOLDS_FILE", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STR", "value")
	assert.Equal(t, "value", getEnv("TEST_STR", "fallback"))
	assert.Equal(t, "fallback", getEnv("TEST_STR_ABSENT", "fallback"))

	t.Setenv("TEST_INT", "42")
	assert.Equal(t, 42, getEnvAsInt("TEST_INT", 7))
	t.Setenv("TEST_INT_BAD", "nope")
	assert.Equal(t, 7, getEnvAsInt("TEST_INT_BAD", 7))

	t.Setenv("TEST_BOOL", "true")
	assert.True(t, getEnvAsBool("TEST_BOOL", false))
	t.Setenv("TEST_BOOL_BAD", "maybe")
	assert.False(t, getEnvAsBool("TEST_BOOL_BAD", false))
}
