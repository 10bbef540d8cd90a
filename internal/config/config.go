// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/avelin/comite/internal/modules/decision"
	"github.com/avelin/comite/internal/modules/scoring"
)

// Config holds application configuration.
type Config struct {
	DataDir        string // Base directory for the SQLite stores, always absolute
	Port           int
	LogLevel       string
	DevMode        bool
	PillarSet      scoring.PillarSet
	ThresholdsPath string // Optional YAML overriding scoring and decision thresholds
	CacheTTL       time.Duration
	Backup         *BackupConfig

	Thresholds scoring.Thresholds
	Decision   decision.Config
}

// BackupConfig holds S3-compatible backup settings. Backups are disabled
// when the bucket is empty.
type BackupConfig struct {
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

// Enabled reports whether backups are configured.
func (b *BackupConfig) Enabled() bool {
	return b != nil && b.Bucket != ""
}

// thresholdsFile is the YAML shape of the optional thresholds override.
type thresholdsFile struct {
	Scoring  scoring.Thresholds `yaml:"scoring"`
	Decision decision.Config    `yaml:"decision"`
}

// Load reads configuration from environment variables and the optional
// thresholds file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("COMITE_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:        absDataDir,
		Port:           getEnvAsInt("COMITE_PORT", 8080),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		PillarSet:      pillarSet(getEnv("COMITE_PILLAR_SET", "full")),
		ThresholdsPath: getEnv("COMITE_THRESHOLDS_FILE", ""),
		CacheTTL:       time.Duration(getEnvAsInt("COMITE_CACHE_TTL_MINUTES", 60)) * time.Minute,
		Backup:         loadBackupConfig(),
		Thresholds:     scoring.DefaultThresholds(),
		Decision:       decision.DefaultConfig(),
	}

	if err := cfg.loadThresholds(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadThresholds overlays the YAML file onto the compiled-in defaults. A
// missing file path is not an error; a set path that cannot be read is.
func (c *Config) loadThresholds() error {
	if c.ThresholdsPath == "" {
		return nil
	}

	content, err := os.ReadFile(c.ThresholdsPath)
	if err != nil {
		return fmt.Errorf("failed to read thresholds file %s: %w", c.ThresholdsPath, err)
	}

	overlay := thresholdsFile{
		Scoring:  c.Thresholds,
		Decision: c.Decision,
	}
	if err := yaml.Unmarshal(content, &overlay); err != nil {
		return fmt.Errorf("failed to parse thresholds file %s: %w", c.ThresholdsPath, err)
	}

	c.Thresholds = overlay.Scoring
	c.Decision = overlay.Decision
	return nil
}

func pillarSet(value string) scoring.PillarSet {
	if value == "minimal" {
		return scoring.PillarSetMinimal
	}
	return scoring.PillarSetFull
}

func loadBackupConfig() *BackupConfig {
	return &BackupConfig{
		Bucket:          getEnv("BACKUP_S3_BUCKET", ""),
		Endpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
		Region:          getEnv("BACKUP_S3_REGION", "auto"),
		AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
		Prefix:          getEnv("BACKUP_S3_PREFIX", "comite"),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
