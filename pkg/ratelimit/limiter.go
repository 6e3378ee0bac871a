package ratelimit

import (
	"context"
	"math"
	"time"

	"eirybot-assistant-be/internal/entity"
	"eirybot-assistant-be/internal/pkg/logger"
	"eirybot-assistant-be/internal/repository/contract"
)

const (
	DefaultWindow        = 60 * time.Second
	DefaultMaxRequests   = 10
	DefaultBlockDuration = time.Hour
)

// Decision is the outcome of a CheckAndRecord call.
type Decision struct {
	Allowed bool
	// Minutes the caller has to wait, rounded up. Zero when allowed.
	RetryAfterMinutes int
	// FreshlyBlocked marks the request that triggered the block, as opposed
	// to one arriving while a block is already in force.
	FreshlyBlocked bool
}

// Limiter implements the fixed-window block-escalation policy: at most
// MaxRequests per Window; the request that exceeds the cap blocks the
// identifier for BlockDuration. The window is reset, not slid, once stale.
//
// Reads and writes are separate store round-trips, so concurrent requests
// from one identifier can under- or over-count. That is acceptable: this is
// an abuse deterrent, not a hard quota.
type Limiter struct {
	repo   contract.RateLimitRepository
	logger logger.ILogger

	Window        time.Duration
	MaxRequests   int
	BlockDuration time.Duration

	// Now is replaceable in tests.
	Now func() time.Time
}

func NewLimiter(repo contract.RateLimitRepository, log logger.ILogger) *Limiter {
	return &Limiter{
		repo:          repo,
		logger:        log,
		Window:        DefaultWindow,
		MaxRequests:   DefaultMaxRequests,
		BlockDuration: DefaultBlockDuration,
		Now:           time.Now,
	}
}

// CheckAndRecord consults and updates the ledger for one identifier.
// Store failures fail OPEN: a transient outage must not lock out real
// visitors, so we log and allow the turn through.
func (l *Limiter) CheckAndRecord(ctx context.Context, identifier string) Decision {
	now := l.Now()

	record, err := l.repo.Find(ctx, identifier)
	if err != nil {
		l.logError("rate limit read failed", identifier, err)
		return Decision{Allowed: true}
	}

	if record == nil {
		// First request ever from this identifier.
		l.save(ctx, &entity.RateLimitRecord{
			Ip:          identifier,
			Count:       1,
			WindowStart: now,
			CreatedAt:   now,
		})
		return Decision{Allowed: true}
	}

	if record.BlockedUntil != nil && now.Before(*record.BlockedUntil) {
		wait := minutesUntil(now, *record.BlockedUntil)
		return Decision{Allowed: false, RetryAfterMinutes: wait}
	}

	if now.Sub(record.WindowStart) > l.Window {
		// Window expired: reset, discarding the old count and any lapsed block.
		record.Count = 1
		record.WindowStart = now
		record.BlockedUntil = nil
		l.save(ctx, record)
		return Decision{Allowed: true}
	}

	record.Count++
	if record.Count > l.MaxRequests {
		blockedUntil := now.Add(l.BlockDuration)
		record.BlockedUntil = &blockedUntil
		l.save(ctx, record)
		return Decision{
			Allowed:           false,
			RetryAfterMinutes: int(l.BlockDuration / time.Minute),
			FreshlyBlocked:    true,
		}
	}

	l.save(ctx, record)
	return Decision{Allowed: true}
}

func (l *Limiter) save(ctx context.Context, record *entity.RateLimitRecord) {
	if err := l.repo.Save(ctx, record); err != nil {
		l.logError("rate limit write failed", record.Ip, err)
	}
}

func (l *Limiter) logError(msg, identifier string, err error) {
	if l.logger != nil {
		l.logger.Error("RateLimiter", msg, map[string]interface{}{
			"identifier": identifier,
			"error":      err.Error(),
		})
	}
}

func minutesUntil(now, deadline time.Time) int {
	ms := deadline.Sub(now).Milliseconds()
	return int(math.Ceil(float64(ms) / 60000.0))
}
