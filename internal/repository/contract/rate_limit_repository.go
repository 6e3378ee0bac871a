package contract

import (
	"context"

	"eirybot-assistant-be/internal/entity"
)

// RateLimitRepository persists the per-IP request ledger. Find returns
// (nil, nil) when no record exists so callers can tell "new identifier"
// apart from a store failure.
type RateLimitRepository interface {
	Find(ctx context.Context, ip string) (*entity.RateLimitRecord, error)
	// Save upserts the full record (last write wins, no transaction).
	Save(ctx context.Context, record *entity.RateLimitRecord) error
	FindAll(ctx context.Context, limit, offset int) ([]*entity.RateLimitRecord, error)
}
