package repositories

import (
	"context"
	"testing"
	"time"

	"fleetgov/internal/models"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuditRepoMock(t *testing.T) (AuditLogsRepository, pgxmock.PgxPoolIface) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewAuditLogsRepo(mock), mock
}

func TestAuditRepoCreateAssignsIDAndTimestamp(t *testing.T) {
	repo, mock := newAuditRepoMock(t)
	entry := &models.AuditLog{
		Actor:    "admin@fleet.example",
		Action:   models.ActionBackupRun,
		Entity:   models.EntityBackup,
		RecordID: uuid.NewString(),
		Details:  models.JSONB{"kind": "MANUAL"},
	}

	mock.ExpectExec(`INSERT INTO audit_logs`).
		WithArgs(pgxmock.AnyArg(), entry.TenantID, entry.Actor, entry.Action, entry.Entity, entry.RecordID, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), entry)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepoCreateTx(t *testing.T) {
	repo, mock := newAuditRepoMock(t)
	ctx := context.Background()
	tenantID := uuid.New()
	entry := &models.AuditLog{
		TenantID: &tenantID,
		Actor:    models.ActorSystem,
		Action:   models.ActionLicenseExpireAuto,
		Entity:   models.EntityTenant,
		RecordID: tenantID.String(),
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO audit_logs`).
		WithArgs(pgxmock.AnyArg(), &tenantID, entry.Actor, entry.Action, entry.Entity, entry.RecordID, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.CreateTx(ctx, tx, entry))
	require.NoError(t, tx.Commit(ctx))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepoListAppliesFilters(t *testing.T) {
	repo, mock := newAuditRepoMock(t)
	tenantID := uuid.New()
	action := models.ActionLicenseGrant
	createdAt := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"id", "tenant_id", "actor", "action", "entity", "record_id", "details", "created_at"}).
		AddRow(uuid.New(), &tenantID, "admin", action, models.EntityLicense, uuid.NewString(), []byte(`{"type":"ANNUAL"}`), createdAt)

	mock.ExpectQuery(`SELECT (.+) FROM audit_logs WHERE 1=1 AND tenant_id = \$1 AND action = \$2 ORDER BY created_at DESC LIMIT \$3`).
		WithArgs(tenantID, action, 50).
		WillReturnRows(rows)

	entries, err := repo.List(context.Background(), &models.AuditLogFilters{
		TenantID: &tenantID,
		Action:   &action,
		Limit:    50,
	})

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ANNUAL", entries[0].Details["type"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepoListNoFilters(t *testing.T) {
	repo, mock := newAuditRepoMock(t)

	mock.ExpectQuery(`SELECT (.+) FROM audit_logs WHERE 1=1 ORDER BY created_at DESC`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "tenant_id", "actor", "action", "entity", "record_id", "details", "created_at"}))

	entries, err := repo.List(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}
