package memory

import (
	"context"
	"time"

	"eirybot-assistant-be/internal/entity"
	"eirybot-assistant-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// RateLimitRepository is the in-process variant used in development and
// tests. Entries never expire; the limiter treats staleness itself.
type RateLimitRepository struct {
	cache *cache.Cache
}

func NewRateLimitRepository() *RateLimitRepository {
	return &RateLimitRepository{
		cache: cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

var _ contract.RateLimitRepository = (*RateLimitRepository)(nil)

func (r *RateLimitRepository) Find(_ context.Context, ip string) (*entity.RateLimitRecord, error) {
	if x, found := r.cache.Get(ip); found {
		record := x.(entity.RateLimitRecord)
		return &record, nil
	}
	return nil, nil
}

func (r *RateLimitRepository) Save(_ context.Context, record *entity.RateLimitRecord) error {
	record.UpdatedAt = time.Now()
	r.cache.Set(record.Ip, *record, cache.NoExpiration)
	return nil
}

func (r *RateLimitRepository) FindAll(_ context.Context, limit, offset int) ([]*entity.RateLimitRecord, error) {
	var records []*entity.RateLimitRecord
	skipped := 0
	for _, item := range r.cache.Items() {
		if skipped < offset {
			skipped++
			continue
		}
		if len(records) >= limit {
			break
		}
		record := item.Object.(entity.RateLimitRecord)
		records = append(records, &record)
	}
	return records, nil
}
