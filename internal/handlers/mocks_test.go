package handlers

import (
	"context"
	"time"

	"fleetgov/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockLicenseService struct {
	mock.Mock
}

func (m *MockLicenseService) Evaluate(license *models.License, now time.Time) string {
	args := m.Called(license, now)
	return args.String(0)
}

func (m *MockLicenseService) Grant(ctx context.Context, tenantID uuid.UUID, kind string, durationDays int, processNumber *string, actor string) (*models.License, error) {
	args := m.Called(ctx, tenantID, kind, durationDays, processNumber, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockLicenseService) CreateTrial(ctx context.Context, tenantID uuid.UUID) (*models.License, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockLicenseService) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockLicenseService) GetActive(ctx context.Context, tenantID uuid.UUID) (*models.License, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

type MockDrService struct {
	mock.Mock
}

func (m *MockDrService) RunSimulation(ctx context.Context, kind string, backupID uuid.UUID, actor string) (*models.DrSimulation, error) {
	args := m.Called(ctx, kind, backupID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DrSimulation), args.Error(1)
}

func (m *MockDrService) Promote(ctx context.Context, backupID uuid.UUID, actor string) (*models.DrSimulation, error) {
	args := m.Called(ctx, backupID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DrSimulation), args.Error(1)
}

func (m *MockDrService) DirectRestore(ctx context.Context, backupID uuid.UUID, actor, confirm string) error {
	args := m.Called(ctx, backupID, actor, confirm)
	return args.Error(0)
}

func (m *MockDrService) RunQuarterlyDrill(ctx context.Context) (*models.DrReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DrReport), args.Error(1)
}

func (m *MockDrService) ListSimulations(ctx context.Context, limit, offset int) ([]*models.DrSimulation, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DrSimulation), args.Error(1)
}

func (m *MockDrService) ListReports(ctx context.Context, limit, offset int) ([]*models.DrReport, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DrReport), args.Error(1)
}

type MockBackupService struct {
	mock.Mock
}

func (m *MockBackupService) Run(ctx context.Context, kind, actor string) (*models.BackupRecord, error) {
	args := m.Called(ctx, kind, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BackupRecord), args.Error(1)
}

func (m *MockBackupService) Get(ctx context.Context, id uuid.UUID) (*models.BackupRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BackupRecord), args.Error(1)
}

func (m *MockBackupService) List(ctx context.Context, limit, offset int) ([]*models.BackupRecord, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BackupRecord), args.Error(1)
}
