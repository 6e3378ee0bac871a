package entity

import "time"

// RateLimitRecord is the durable per-IP ledger behind the chat rate limiter.
// Records are never deleted; a stale window is superseded on the next request.
type RateLimitRecord struct {
	Ip           string `gorm:"primaryKey;size:64"`
	Count        int
	WindowStart  time.Time
	BlockedUntil *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
