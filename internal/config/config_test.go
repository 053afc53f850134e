package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "fleet-backups", cfg.BackupBucket)
	assert.Equal(t, "sandbox", cfg.SandboxPrefix)
	assert.Equal(t, "prod", cfg.ProdPrefix)
	assert.Equal(t, 90, cfg.RetentionDays)
	assert.Equal(t, 30, cfg.TrialDays)
	assert.Equal(t, 7, cfg.ReminderWindowDays)
	assert.Equal(t, 30*time.Minute, cfg.ExportTimeout)
	assert.False(t, cfg.AllowDirectRestore)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BACKUP_BUCKET", "dr-test")
	t.Setenv("BACKUP_RETENTION_DAYS", "30")
	t.Setenv("DR_IMPORT_TIMEOUT", "5m")
	t.Setenv("DR_ALLOW_DIRECT_RESTORE", "true")

	cfg := Load()

	assert.Equal(t, "dr-test", cfg.BackupBucket)
	assert.Equal(t, 30, cfg.RetentionDays)
	assert.Equal(t, 5*time.Minute, cfg.ImportTimeout)
	assert.True(t, cfg.AllowDirectRestore)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("BACKUP_RETENTION_DAYS", "ninety")
	t.Setenv("DR_ALLOW_DIRECT_RESTORE", "yes please")

	cfg := Load()

	assert.Equal(t, 90, cfg.RetentionDays)
	assert.False(t, cfg.AllowDirectRestore)
}
