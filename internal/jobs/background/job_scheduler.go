package background

import (
	"context"
	"log"
	"sync"
	"time"

	"fleetgov/internal/config"
	"fleetgov/internal/models"
	"fleetgov/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler owns every time-triggered task: the expiration sweep, daily
// backup, retention sweep, expiry notifier and the quarterly DR drill. Each
// job is stateless between runs and logs failures instead of crashing; the
// next tick retries whatever still matches its predicate.
type JobScheduler struct {
	scheduler       gocron.Scheduler
	licenseSvc      services.LicenseService
	backupSvc       services.BackupService
	retentionSvc    services.RetentionService
	drSvc           services.DrService
	notificationSvc services.NotificationService
	cfg             *config.Config
	jobs            map[string]gocron.Job
	mu              sync.RWMutex
}

func NewJobScheduler(
	licenseSvc services.LicenseService,
	backupSvc services.BackupService,
	retentionSvc services.RetentionService,
	drSvc services.DrService,
	notificationSvc services.NotificationService,
	cfg *config.Config,
) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:       scheduler,
		licenseSvc:      licenseSvc,
		backupSvc:       backupSvc,
		retentionSvc:    retentionSvc,
		drSvc:           drSvc,
		notificationSvc: notificationSvc,
		cfg:             cfg,
		jobs:            make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js, nil
}

func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	js.register("license-expiration-sweep", "0 2 * * *", js.runExpirationSweep)
	js.register("daily-backup", "0 3 * * *", js.runDailyBackup)
	js.register("backup-retention-sweep", "0 4 * * *", js.runRetentionSweep)
	js.register("license-expiry-notifier", "0 8 * * *", js.runExpiryNotifier)
	js.register("quarterly-dr-drill", "0 5 1 */3 *", js.runQuarterlyDrill)

	log.Printf("Registered %d background jobs", len(js.jobs))
}

func (js *JobScheduler) register(name, cronExpr string, task func(context.Context)) {
	job, err := js.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(task, context.Background()),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create %s job: %v", name, err)
		return
	}
	js.jobs[name] = job
}

func (js *JobScheduler) runExpirationSweep(ctx context.Context) {
	log.Printf("Starting license expiration sweep")
	restricted, err := js.licenseSvc.ExpireOverdue(ctx, time.Now())
	if err != nil {
		log.Printf("License expiration sweep failed: %v", err)
		return
	}
	log.Printf("License expiration sweep restricted %d tenants", restricted)
}

func (js *JobScheduler) runDailyBackup(ctx context.Context) {
	log.Printf("Starting daily backup")
	record, err := js.backupSvc.Run(ctx, models.BackupKindAutomatic, models.ActorSystem)
	if err != nil {
		// The failure is already cataloged and audited; nothing else to do
		// on the scheduled path.
		log.Printf("Daily backup failed: %v", err)
		return
	}
	log.Printf("Daily backup completed: %s", record.StorageLocation)
}

func (js *JobScheduler) runRetentionSweep(ctx context.Context) {
	log.Printf("Starting backup retention sweep")
	deleted, err := js.retentionSvc.Sweep(ctx, js.cfg.RetentionDays)
	if err != nil {
		log.Printf("Backup retention sweep failed: %v", err)
		return
	}
	log.Printf("Backup retention sweep deleted %d backups", deleted)
}

func (js *JobScheduler) runExpiryNotifier(ctx context.Context) {
	log.Printf("Starting license expiry notifier")
	sent, err := js.notificationSvc.SendExpiryReminders(ctx, js.cfg.ReminderWindowDays)
	if err != nil {
		log.Printf("License expiry notifier failed: %v", err)
		return
	}
	log.Printf("License expiry notifier sent %d reminders", sent)
}

func (js *JobScheduler) runQuarterlyDrill(ctx context.Context) {
	log.Printf("Starting quarterly DR drill")
	report, err := js.drSvc.RunQuarterlyDrill(ctx)
	if err != nil {
		log.Printf("Quarterly DR drill failed: %v", err)
		return
	}
	log.Printf("Quarterly DR drill completed: report %s for period %s", report.ID, report.Period)
}

// JobNames returns the registered job names, for the health endpoint.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return names
}
