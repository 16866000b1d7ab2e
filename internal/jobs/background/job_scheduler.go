package background

import (
	"context"
	"log"
	"sync"
	"time"

	"elevate2/internal/caching"
	"elevate2/internal/repositories"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

const programCacheTTL = 30 * time.Minute

// JobScheduler manages background jobs for distributed environment
type JobScheduler struct {
	scheduler     gocron.Scheduler
	cacheSvc      caching.CacheService
	licenseRepo   repositories.LicenseRepository
	auditRepo     repositories.PermissionAuditRepository
	programRepo   repositories.ProgramRepository
	tenantRepo    repositories.TenantRepository
	retentionDays int
	jobJobs       map[string]gocron.Job
	mu            sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(cacheSvc caching.CacheService, licenseRepo repositories.LicenseRepository,
	auditRepo repositories.PermissionAuditRepository, programRepo repositories.ProgramRepository,
	tenantRepo repositories.TenantRepository, retentionDays int) *JobScheduler {

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:     scheduler,
		cacheSvc:      cacheSvc,
		licenseRepo:   licenseRepo,
		auditRepo:     auditRepo,
		programRepo:   programRepo,
		tenantRepo:    tenantRepo,
		retentionDays: retentionDays,
		jobJobs:       make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	// License expiry sweep - every hour. Expiry is also enforced at request
	// time; the sweep keeps the stored status column honest for reporting.
	licenseJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.sweepExpiredLicenses, context.Background()),
		gocron.WithName("license-expiry-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create license sweep job: %v", err)
	} else {
		js.jobJobs["license-sweep"] = licenseJob
	}

	// Audit retention - daily
	retentionJob, err := js.scheduler.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(js.pruneAuditTrail, context.Background()),
		gocron.WithName("audit-retention"),
	)
	if err != nil {
		log.Printf("Failed to create audit retention job: %v", err)
	} else {
		js.jobJobs["audit-retention"] = retentionJob
	}

	// Program catalog cache refresh - every 15 minutes
	cacheJob, err := js.scheduler.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(js.refreshProgramCache, context.Background()),
		gocron.WithName("program-cache-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create program cache job: %v", err)
	} else {
		js.jobJobs["program-cache"] = cacheJob
	}

	log.Printf("Registered %d background jobs", len(js.jobJobs))
}

// sweepExpiredLicenses flips stale database-authority licenses to expired.
// Subscription tiers are skipped; Stripe webhooks own those transitions.
func (js *JobScheduler) sweepExpiredLicenses(ctx context.Context) error {
	count, err := js.licenseRepo.ExpireStale(ctx)
	if err != nil {
		log.Printf("License expiry sweep failed: %v", err)
		return err
	}
	if count > 0 {
		log.Printf("License expiry sweep marked %d licenses expired", count)
	}
	return nil
}

// pruneAuditTrail deletes permission audit rows older than the retention
// window.
func (js *JobScheduler) pruneAuditTrail(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -js.retentionDays)
	count, err := js.auditRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("Audit retention failed: %v", err)
		return err
	}
	if count > 0 {
		log.Printf("Audit retention removed %d rows older than %s", count, cutoff.Format("2006-01-02"))
	}
	return nil
}

// refreshProgramCache re-warms the program catalog cache for all active
// tenants.
func (js *JobScheduler) refreshProgramCache(ctx context.Context) error {
	tenants, err := js.tenantRepo.List(ctx, 1000, 0)
	if err != nil {
		log.Printf("Failed to get tenants for program cache refresh: %v", err)
		return err
	}

	semaphore := make(chan struct{}, 5)
	var wg sync.WaitGroup

	for _, tenant := range tenants {
		if tenant.Status != "active" {
			continue
		}

		wg.Add(1)
		go func(tenantID uuid.UUID) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			programs, err := js.programRepo.List(ctx, tenantID, 1000, 0)
			if err != nil {
				log.Printf("Failed to list programs for tenant %s: %v", tenantID.String(), err)
				return
			}
			for _, program := range programs {
				if err := js.cacheSvc.SetProgram(ctx, tenantID, program, programCacheTTL); err != nil {
					log.Printf("Failed to cache program %s: %v", program.Slug, err)
				}
			}
		}(tenant.ID)
	}

	wg.Wait()
	return nil
}

// AddJob adds a custom job to the scheduler
func (js *JobScheduler) AddJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
	)

	if err != nil {
		return err
	}

	js.jobJobs[name] = job
	return nil
}

// RemoveJob removes a job from the scheduler
func (js *JobScheduler) RemoveJob(name string) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobJobs[name]; exists {
		err := js.scheduler.RemoveJob(job.ID())
		delete(js.jobJobs, name)
		return err
	}

	return nil
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	status := make(map[string]interface{})
	status["total_jobs"] = len(js.jobJobs)
	jobs := make([]string, 0, len(js.jobJobs))

	for name := range js.jobJobs {
		jobs = append(jobs, name)
	}

	status["jobs"] = jobs

	return status
}
