package background

import (
	"context"
	"log"
	"sync"
	"time"

	"altify/internal/caching"
	"altify/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// JobScheduler manages the recurring maintenance jobs: coverage refresh,
// session sweep, and the mirror bucket check.
type JobScheduler struct {
	scheduler      gocron.Scheduler
	cacheSvc       caching.CacheService
	productService services.ProductService
	mirrorService  services.MirrorService
	jobs           map[string]gocron.Job
	mu             sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(cacheSvc caching.CacheService, productService services.ProductService, mirrorService services.MirrorService) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:      scheduler,
		cacheSvc:       cacheSvc,
		productService: productService,
		mirrorService:  mirrorService,
		jobs:           make(map[string]gocron.Job),
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
	coverageJob, err := js.scheduler.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(js.refreshCoverageReports, context.Background()),
		gocron.WithName("coverage-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create coverage refresh job: %v", err)
	} else {
		js.jobs["coverage-refresh"] = coverageJob
	}

	sweepJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.sweepSessions, context.Background()),
		gocron.WithName("session-sweep"),
	)
	if err != nil {
		log.Printf("Failed to create session sweep job: %v", err)
	} else {
		js.jobs["session-sweep"] = sweepJob
	}

	mirrorJob, err := js.scheduler.NewJob(
		gocron.DurationJob(30*time.Minute),
		gocron.NewTask(js.checkMirrorBucket, context.Background()),
		gocron.WithName("mirror-bucket-check"),
	)
	if err != nil {
		log.Printf("Failed to create mirror bucket job: %v", err)
	} else {
		js.jobs["mirror-bucket-check"] = mirrorJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

// refreshCoverageReports recomputes the cached coverage report for every
// active session from its snapshot.
func (js *JobScheduler) refreshCoverageReports(ctx context.Context) error {
	sessionIDs, err := js.cacheSvc.ActiveSessionIDs(ctx)
	if err != nil {
		log.Printf("Failed to list active sessions for coverage refresh: %v", err)
		return err
	}

	semaphore := make(chan struct{}, 5)
	var wg sync.WaitGroup

	for _, sessionID := range sessionIDs {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if _, err := js.productService.RefreshCoverage(ctx, id); err != nil {
				log.Printf("Failed to refresh coverage for session %s: %v", id.String(), err)
			}
		}(sessionID)
	}

	wg.Wait()
	log.Printf("Completed coverage refresh for %d sessions", len(sessionIDs))
	return nil
}

// sweepSessions drops derived keys whose session has already expired. The
// session keys themselves expire via TTL; this catches the leftovers.
func (js *JobScheduler) sweepSessions(ctx context.Context) error {
	sessionIDs, err := js.cacheSvc.ActiveSessionIDs(ctx)
	if err != nil {
		log.Printf("Failed to list sessions for sweep: %v", err)
		return err
	}

	swept := 0
	for _, sessionID := range sessionIDs {
		session, err := js.cacheSvc.GetSession(ctx, sessionID)
		if err != nil {
			continue
		}
		if session == nil {
			if err := js.cacheSvc.DeleteSession(ctx, sessionID); err == nil {
				swept++
			}
		}
	}

	log.Printf("Session sweep completed, removed %d stale sessions", swept)
	return nil
}

// checkMirrorBucket verifies the mirror bucket still exists and recreates it
// if storage was wiped.
func (js *JobScheduler) checkMirrorBucket(ctx context.Context) error {
	if js.mirrorService == nil {
		return nil
	}
	if err := js.mirrorService.EnsureBucketExists(ctx); err != nil {
		log.Printf("Mirror bucket check failed: %v", err)
		return err
	}
	return nil
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	status := make(map[string]interface{})
	status["total_jobs"] = len(js.jobs)
	jobs := make([]string, 0, len(js.jobs))

	for name := range js.jobs {
		jobs = append(jobs, name)
	}

	status["jobs"] = jobs

	return status
}
