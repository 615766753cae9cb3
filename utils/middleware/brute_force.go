package middleware

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/school-admin-api/utils/cache"
	"github.com/sahilchouksey/school-admin-api/utils/response"
)

// BruteForceProtection locks out IPs after repeated failed admin logins
type BruteForceProtection struct {
	redisCache *cache.RedisCache
}

// NewBruteForceProtection creates a new brute force protection instance
func NewBruteForceProtection(redisCache *cache.RedisCache) *BruteForceProtection {
	return &BruteForceProtection{
		redisCache: redisCache,
	}
}

func attemptKey(ip string) string {
	return fmt.Sprintf("brute_force:attempts:%s", ip)
}

func lockKey(ip string) string {
	return fmt.Sprintf("brute_force:lock:%s", ip)
}

// CheckAndRecordAttempt middleware rejects requests from locked out IPs
func (b *BruteForceProtection) CheckAndRecordAttempt() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		ctx := c.UserContext()

		// Check if IP is locked
		locked, err := b.redisCache.Exists(ctx, lockKey(ip))
		if err != nil {
			// Don't block legitimate users due to cache issues
			log.Printf("[BruteForce] lock check failed for %s: %v", ip, err)
			return c.Next()
		}

		if locked {
			// Get TTL for retry time
			ttl, _ := b.redisCache.TTL(ctx, lockKey(ip))
			retryAfter := int(ttl.Seconds())
			if retryAfter <= 0 {
				retryAfter = 60 // Default to 60 seconds
			}

			c.Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			return response.TooManyRequests(c, fmt.Sprintf("Too many failed attempts. Try again in %d seconds", retryAfter))
		}

		return c.Next()
	}
}

// lockDuration returns the lockout for the given number of failures
func lockDuration(attempts int64) time.Duration {
	switch {
	case attempts >= 25:
		return 24 * time.Hour
	case attempts >= 10:
		return time.Hour
	case attempts >= 5:
		return 2 * time.Minute
	default:
		return 0
	}
}

// RecordFailedAttempt records a failed login attempt and applies progressive lockouts
func (b *BruteForceProtection) RecordFailedAttempt(ctx context.Context, ip string) error {
	// Increment attempt counter
	attempts, err := b.redisCache.Increment(ctx, attemptKey(ip))
	if err != nil {
		// If Redis is down, just return without blocking
		return nil
	}

	// Set expiry on attempts counter (15 minute window)
	if attempts == 1 {
		if err := b.redisCache.Expire(ctx, attemptKey(ip), 15*time.Minute); err != nil {
			return err
		}
	}

	duration := lockDuration(attempts)
	if duration == 0 {
		return nil
	}

	log.Printf("[BruteForce] locking %s for %s after %d failed attempts", ip, duration, attempts)
	return b.redisCache.Set(ctx, lockKey(ip), "locked", duration)
}

// RecordSuccessfulAttempt clears failed attempts on successful login
func (b *BruteForceProtection) RecordSuccessfulAttempt(ctx context.Context, ip string) error {
	return b.redisCache.Delete(ctx, attemptKey(ip), lockKey(ip))
}

// IsIPLocked checks if an IP is currently locked
func (b *BruteForceProtection) IsIPLocked(ctx context.Context, ip string) (bool, error) {
	return b.redisCache.Exists(ctx, lockKey(ip))
}
