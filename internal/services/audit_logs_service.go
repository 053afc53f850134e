package services

import (
	"context"
	"fmt"
	"time"

	"fleetgov/internal/common"
	"fleetgov/internal/models"
	"fleetgov/internal/repositories"
)

// AuditLogsService exposes append and compliance queries over the ledger.
// State-changing flows do not go through it; they append inside their own
// transactions via the repository.
type AuditLogsService interface {
	Append(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
}

type auditLogsService struct {
	auditRepo repositories.AuditLogsRepository
}

func NewAuditLogsService(auditRepo repositories.AuditLogsRepository) AuditLogsService {
	return &auditLogsService{auditRepo: auditRepo}
}

func (s *auditLogsService) Append(ctx context.Context, entry *models.AuditLog) error {
	if entry.Action == "" {
		return fmt.Errorf("%w: action is required", common.ErrInvalidArgument)
	}
	if entry.Entity == "" {
		return fmt.Errorf("%w: entity is required", common.ErrInvalidArgument)
	}
	if entry.Actor == "" {
		entry.Actor = models.ActorSystem
	}
	return s.auditRepo.Create(ctx, entry)
}

func (s *auditLogsService) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{Limit: 50}
	}
	if filters.Limit <= 0 || filters.Limit > 1000 {
		filters.Limit = 50
	}
	if filters.StartDate != nil && filters.EndDate != nil {
		if filters.StartDate.After(*filters.EndDate) {
			return nil, fmt.Errorf("%w: start_date cannot be after end_date", common.ErrInvalidArgument)
		}
		if filters.EndDate.Sub(*filters.StartDate) > 365*24*time.Hour {
			return nil, fmt.Errorf("%w: date range cannot exceed 1 year", common.ErrInvalidArgument)
		}
	}
	return s.auditRepo.List(ctx, filters)
}
