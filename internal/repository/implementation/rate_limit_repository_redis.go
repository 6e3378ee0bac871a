package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"eirybot-assistant-be/internal/entity"
	"eirybot-assistant-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "rate_limits:"

// RedisRateLimitRepository keeps the ledger in Redis. Records carry no TTL:
// like the document-store variant they act as a durable ledger and stale
// windows are superseded, not expired.
type RedisRateLimitRepository struct {
	rdb *redis.Client
}

func NewRedisRateLimitRepository(rdb *redis.Client) contract.RateLimitRepository {
	return &RedisRateLimitRepository{rdb: rdb}
}

func (r *RedisRateLimitRepository) Find(ctx context.Context, ip string) (*entity.RateLimitRecord, error) {
	data, err := r.rdb.Get(ctx, rateLimitKeyPrefix+ip).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var record entity.RateLimitRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *RedisRateLimitRepository) Save(ctx context.Context, record *entity.RateLimitRecord) error {
	record.UpdatedAt = time.Now()
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, rateLimitKeyPrefix+record.Ip, data, 0).Err()
}

func (r *RedisRateLimitRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.RateLimitRecord, error) {
	var records []*entity.RateLimitRecord

	iter := r.rdb.Scan(ctx, 0, rateLimitKeyPrefix+"*", int64(limit+offset)).Iterator()
	skipped := 0
	for iter.Next(ctx) {
		if skipped < offset {
			skipped++
			continue
		}
		if len(records) >= limit {
			break
		}
		data, err := r.rdb.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		var record entity.RateLimitRecord
		if err := json.Unmarshal(data, &record); err != nil {
			continue
		}
		records = append(records, &record)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
