package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sahilchouksey/school-admin-api/database"
	"github.com/sahilchouksey/school-admin-api/services"
)

// Pinger is satisfied by the Redis cache
type Pinger interface {
	Ping(ctx context.Context) error
}

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron     *cron.Cron
	store    database.Storage
	cache    Pinger
	courses  *services.CourseService
	students *services.StudentService
}

// NewCronManager creates a new cron manager. cache may be nil.
func NewCronManager(store database.Storage, cache Pinger, courses *services.CourseService, students *services.StudentService) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:     c,
		store:    store,
		cache:    cache,
		courses:  courses,
		students: students,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	// Register all jobs
	if err := m.registerJobs(); err != nil {
		return err
	}

	// Start the cron scheduler
	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// 1. Every minute: Ping database and cache
	_, err := m.cron.AddFunc("0 * * * * *", func() {
		m.logJobStart("health_check")
		m.CheckHealth()
	})
	if err != nil {
		return err
	}

	// 2. Every 5 minutes: Recompute cached stats
	_, err = m.cron.AddFunc("30 */5 * * * *", func() {
		m.logJobStart("warm_stats_cache")
		m.WarmStatsCache()
	})
	if err != nil {
		return err
	}

	log.Println("All cron jobs registered successfully")
	return nil
}

// Entries reports how many jobs are scheduled
func (m *CronManager) Entries() int {
	return len(m.cron.Entries())
}

// logJobStart logs the start of a cron job
func (m *CronManager) logJobStart(jobName string) {
	log.Printf("[CRON] Starting job: %s at %s", jobName, time.Now().Format(time.RFC3339))
}

// logJobComplete logs successful completion of a cron job
func (m *CronManager) logJobComplete(jobName string, message string) {
	log.Printf("[CRON] Completed job: %s - %s", jobName, message)
}

// logJobError logs a cron job error
func (m *CronManager) logJobError(jobName string, err error) {
	log.Printf("[CRON] Error in job: %s - %v", jobName, err)
}
