package cron

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// CheckHealth pings the database and, when configured, the cache.
// database/sql re-dials broken connections on the next query, so the job
// only reports failures.
func (m *CronManager) CheckHealth() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	jobName := "health_check"

	var errs []error
	if err := m.store.HealthCheck(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}
	if m.cache != nil {
		if err := m.cache.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("cache: %w", err))
		}
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		m.logJobError(jobName, err)
		return err
	}

	m.logJobComplete(jobName, "Database and cache reachable")
	return nil
}

// WarmStatsCache recomputes the course and student stats so reads hit the cache
func (m *CronManager) WarmStatsCache() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	jobName := "warm_stats_cache"

	courseStats, err := m.courses.RefreshStats(ctx)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to refresh course stats: %w", err))
		return err
	}

	studentStats, err := m.students.RefreshStats(ctx)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to refresh student stats: %w", err))
		return err
	}

	m.logJobComplete(jobName, fmt.Sprintf("Cached stats for %d courses and %d students",
		courseStats.TotalCourses, studentStats.TotalStudents))
	return nil
}
