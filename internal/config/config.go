package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the backup/DR and licensing knobs. Everything comes from the
// environment with working defaults for development.
type Config struct {
	BackupBucket  string
	SandboxPrefix string
	ProdPrefix    string

	ExportTimeout time.Duration
	ImportTimeout time.Duration

	RetentionDays      int
	TrialDays          int
	ReminderWindowDays int
	SweepBatchSize     int

	// AllowDirectRestore enables the legacy restore-to-production path that
	// bypasses the validation gate. Off unless explicitly turned on.
	AllowDirectRestore bool
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		BackupBucket:       envString("BACKUP_BUCKET", "fleet-backups"),
		SandboxPrefix:      envString("DR_SANDBOX_PREFIX", "sandbox"),
		ProdPrefix:         envString("DR_PROD_PREFIX", "prod"),
		ExportTimeout:      envDuration("BACKUP_EXPORT_TIMEOUT", 30*time.Minute),
		ImportTimeout:      envDuration("DR_IMPORT_TIMEOUT", 30*time.Minute),
		RetentionDays:      envInt("BACKUP_RETENTION_DAYS", 90),
		TrialDays:          envInt("LICENSE_TRIAL_DAYS", 30),
		ReminderWindowDays: envInt("LICENSE_REMINDER_WINDOW_DAYS", 7),
		SweepBatchSize:     envInt("LICENSE_SWEEP_BATCH_SIZE", 100),
		AllowDirectRestore: envBool("DR_ALLOW_DIRECT_RESTORE", false),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
