package services

import (
	"context"
	"log"
	"time"

	"github.com/sahilchouksey/school-admin-api/utils/cache"
)

// CacheTTL is how long stats and dropdown listings stay cached
const CacheTTL = 5 * time.Minute

// Cache keys
const (
	CourseStatsKey     = "stats:courses"
	StudentStatsKey    = "stats:students"
	CourseDropdownKey  = "dropdown:courses"
	TeacherDropdownKey = "dropdown:teachers"
	StudentDropdownKey = "dropdown:students"
)

// cached reads key into dest, or calls load and stores its result.
// A nil cache, or any cache failure, falls through to load.
func cached[T any](ctx context.Context, c cache.Cache, key string, load func() (T, error)) (T, error) {
	if c != nil {
		var hit T
		if err := c.GetJSON(ctx, key, &hit); err == nil {
			return hit, nil
		}
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	if c != nil {
		if err := c.SetJSON(ctx, key, value, CacheTTL); err != nil {
			log.Printf("[Cache] failed to store %s: %v", key, err)
		}
	}
	return value, nil
}

// invalidate drops cached keys after a write
func invalidate(ctx context.Context, c cache.Cache, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	if err := c.Delete(ctx, keys...); err != nil {
		log.Printf("[Cache] failed to invalidate %v: %v", keys, err)
	}
}
