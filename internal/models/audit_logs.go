package models

import (
	"time"

	"github.com/google/uuid"
)

// ActorSystem is recorded when a scheduled job, not an operator, makes the change.
const ActorSystem = "system"

// Audit actions for the licensing and backup/DR flows.
const (
	ActionLicenseGrant       = "LICENSE_GRANT"
	ActionLicenseTrialCreate = "LICENSE_TRIAL_CREATE"
	ActionLicenseExpireAuto  = "LICENSE_EXPIRE_AUTO"
	ActionBackupRun          = "BACKUP_RUN"
	ActionBackupFailed       = "BACKUP_FAILED"
	ActionDrSimulation       = "DR_SIMULATION"
	ActionSandboxPromoted    = "SANDBOX_PROMOTED_TO_PROD"
	ActionProdDirectRestore  = "PROD_DIRECT_RESTORE"
	ActionDrReport           = "DR_DRILL_REPORT"
	ActionRetentionSweep     = "BACKUP_RETENTION_SWEEP"
	ActionExpiryReminderSent = "EXPIRY_REMINDER_SENT"
)

// Entities referenced by audit entries.
const (
	EntityLicense      = "licenses"
	EntityTenant       = "tenants"
	EntityBackup       = "backups"
	EntityDrSimulation = "dr_simulations"
	EntityDrReport     = "dr_reports"
)

// AuditLog is an append-only record of a state-changing operation. Entries
// are written in the same transaction as the change they describe and are
// never updated or deleted afterwards.
type AuditLog struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	TenantID  *uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Actor     string     `json:"actor" db:"actor"`
	Action    string     `json:"action" db:"action"`
	Entity    string     `json:"entity" db:"entity"`
	RecordID  string     `json:"record_id" db:"record_id"`
	Details   JSONB      `json:"details" db:"details"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// AuditLogFilters narrows compliance queries over the ledger.
type AuditLogFilters struct {
	TenantID  *uuid.UUID `json:"tenant_id"`
	Action    *string    `json:"action"`
	Entity    *string    `json:"entity"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}

// JSONB represents a PostgreSQL jsonb column.
type JSONB map[string]interface{}
