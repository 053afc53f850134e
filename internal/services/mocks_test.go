package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"fleetgov/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTenantRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) SetLicenseStateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, active bool, status string) error {
	args := m.Called(ctx, tx, id, active, status)
	return args.Error(0)
}

func (m *MockTenantRepository) ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]*models.Tenant, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Tenant), args.Error(1)
}

type MockLicenseRepository struct {
	mock.Mock
}

func (m *MockLicenseRepository) GetActiveByTenant(ctx context.Context, tenantID uuid.UUID) (*models.License, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockLicenseRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.License, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.License), args.Error(1)
}

func (m *MockLicenseRepository) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.License, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.License), args.Error(1)
}

func (m *MockLicenseRepository) CreateTx(ctx context.Context, tx pgx.Tx, license *models.License) error {
	args := m.Called(ctx, tx, license)
	return args.Error(0)
}

func (m *MockLicenseRepository) SupersedeActiveTx(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID) error {
	args := m.Called(ctx, tx, tenantID)
	return args.Error(0)
}

func (m *MockLicenseRepository) RestrictActiveTx(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID) error {
	args := m.Called(ctx, tx, tenantID)
	return args.Error(0)
}

type MockAuditLogsRepository struct {
	mock.Mock
}

func (m *MockAuditLogsRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditLogsRepository) CreateTx(ctx context.Context, tx pgx.Tx, entry *models.AuditLog) error {
	args := m.Called(ctx, tx, entry)
	return args.Error(0)
}

func (m *MockAuditLogsRepository) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

type MockBackupRepository struct {
	mock.Mock
}

func (m *MockBackupRepository) CreateTx(ctx context.Context, tx pgx.Tx, record *models.BackupRecord) error {
	args := m.Called(ctx, tx, record)
	return args.Error(0)
}

func (m *MockBackupRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BackupRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BackupRecord), args.Error(1)
}

func (m *MockBackupRepository) Latest(ctx context.Context, status string) (*models.BackupRecord, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BackupRecord), args.Error(1)
}

func (m *MockBackupRepository) List(ctx context.Context, limit, offset int) ([]*models.BackupRecord, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BackupRecord), args.Error(1)
}

func (m *MockBackupRepository) ListOlderThan(ctx context.Context, cutoff time.Time) ([]*models.BackupRecord, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BackupRecord), args.Error(1)
}

func (m *MockBackupRepository) DeleteTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

type MockDrRepository struct {
	mock.Mock
}

func (m *MockDrRepository) CreateTx(ctx context.Context, tx pgx.Tx, sim *models.DrSimulation) error {
	args := m.Called(ctx, tx, sim)
	return args.Error(0)
}

func (m *MockDrRepository) FinishTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string, finishedAt time.Time, rtoSeconds int64, notes string) error {
	args := m.Called(ctx, tx, id, status, finishedAt, rtoSeconds, notes)
	return args.Error(0)
}

func (m *MockDrRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DrSimulation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DrSimulation), args.Error(1)
}

func (m *MockDrRepository) ListSimulations(ctx context.Context, limit, offset int) ([]*models.DrSimulation, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DrSimulation), args.Error(1)
}

func (m *MockDrRepository) LatestSuccessfulForBackup(ctx context.Context, backupID uuid.UUID) (*models.DrSimulation, error) {
	args := m.Called(ctx, backupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DrSimulation), args.Error(1)
}

func (m *MockDrRepository) CreateReportTx(ctx context.Context, tx pgx.Tx, report *models.DrReport) error {
	args := m.Called(ctx, tx, report)
	return args.Error(0)
}

func (m *MockDrRepository) ListReports(ctx context.Context, limit, offset int) ([]*models.DrReport, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DrReport), args.Error(1)
}

type MockGateCache struct {
	mock.Mock
}

func (m *MockGateCache) IsActive(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGateCache) SetActive(ctx context.Context, tenantID uuid.UUID, active bool, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, active, ttl)
	return args.Error(0)
}

func (m *MockGateCache) Invalidate(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

type MockMailSender struct {
	mock.Mock
}

func (m *MockMailSender) Send(recipients []string, subject, body string) error {
	args := m.Called(recipients, subject, body)
	return args.Error(0)
}

// fakeObjectStore is an in-memory ObjectStore. Copy and List behave like the
// real bucket, which the DR pipeline's restore-and-verify logic depends on.
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) EnsureBucket(ctx context.Context, bucket string) error {
	return nil
}

func (f *fakeObjectStore) Put(ctx context.Context, bucket, key string, data []byte) error {
	if f.failPut {
		return fmt.Errorf("put %s: storage unavailable", key)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeObjectStore) Copy(ctx context.Context, bucket, srcKey, dstKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[srcKey]
	if !ok {
		return fmt.Errorf("source object %s does not exist", srcKey)
	}
	f.objects[dstKey] = data
	return nil
}

func (f *fakeObjectStore) List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	var out []ObjectInfo
	for key, data := range f.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	return out, nil
}

func (f *fakeObjectStore) Remove(ctx context.Context, bucket, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeObjectStore) keysWithPrefix(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	return out
}

type fakeDumper struct {
	failOn string
}

func (d *fakeDumper) Collections() []string {
	return tenantCollections
}

func (d *fakeDumper) Dump(ctx context.Context, collection string) ([]byte, error) {
	if d.failOn == collection {
		return nil, fmt.Errorf("dump %s: connection reset", collection)
	}
	return []byte(`[]`), nil
}
