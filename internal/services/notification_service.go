package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"fleetgov/internal/common"
	"fleetgov/internal/models"
	"fleetgov/internal/repositories"
)

// MailSender is the external notification collaborator. Failures are logged
// by the caller, never retried here.
type MailSender interface {
	Send(recipients []string, subject, body string) error
}

// NotificationService reads upcoming license expirations off the tenant
// ledger and fires reminder mail. A thin consumer; it owns no state.
type NotificationService interface {
	SendExpiryReminders(ctx context.Context, withinDays int) (int, error)
}

type notificationService struct {
	tenantRepo  repositories.TenantRepository
	licenseRepo repositories.LicenseRepository
	auditRepo   repositories.AuditLogsRepository
	sender      MailSender
	recipients  []string
	now         func() time.Time
}

func NewNotificationService(
	tenantRepo repositories.TenantRepository,
	licenseRepo repositories.LicenseRepository,
	auditRepo repositories.AuditLogsRepository,
	sender MailSender,
	recipients []string,
) NotificationService {
	return &notificationService{
		tenantRepo:  tenantRepo,
		licenseRepo: licenseRepo,
		auditRepo:   auditRepo,
		sender:      sender,
		recipients:  recipients,
		now:         time.Now,
	}
}

func (s *notificationService) SendExpiryReminders(ctx context.Context, withinDays int) (int, error) {
	if withinDays <= 0 {
		return 0, fmt.Errorf("%w: reminder window must be positive", common.ErrInvalidArgument)
	}

	now := s.now()
	expiring, err := s.licenseRepo.ListExpiringBetween(ctx, now, now.AddDate(0, 0, withinDays))
	if err != nil {
		return 0, fmt.Errorf("%w: query expiring licenses: %v", common.ErrInternal, err)
	}

	sent := 0
	for _, license := range expiring {
		tenant, err := s.tenantRepo.GetByID(ctx, license.TenantID)
		if err != nil {
			log.Printf("Failed to load tenant %s for expiry reminder: %v", license.TenantID, err)
			continue
		}

		subject := fmt.Sprintf("License for %s expires on %s", tenant.Name, license.ExpiresAt.Format("2006-01-02"))
		body := fmt.Sprintf(
			"The %s license for tenant %s (%s) expires at %s. Renew it to avoid automatic restriction of write access.",
			license.Type, tenant.Name, tenant.Subdomain, license.ExpiresAt.Format(time.RFC3339),
		)
		if err := s.sender.Send(s.recipients, subject, body); err != nil {
			log.Printf("Failed to send expiry reminder for tenant %s: %v", tenant.ID, err)
			continue
		}

		entry := &models.AuditLog{
			TenantID: &license.TenantID,
			Actor:    models.ActorSystem,
			Action:   models.ActionExpiryReminderSent,
			Entity:   models.EntityLicense,
			RecordID: license.ID.String(),
			Details:  models.JSONB{"expires_at": license.ExpiresAt.Format(time.RFC3339)},
		}
		if err := s.auditRepo.Create(ctx, entry); err != nil {
			log.Printf("Failed to record expiry reminder for tenant %s: %v", tenant.ID, err)
		}
		sent++
	}
	return sent, nil
}
