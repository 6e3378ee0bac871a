package implementation

import (
	"context"
	"errors"
	"time"

	"eirybot-assistant-be/internal/entity"
	"eirybot-assistant-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RateLimitRepositoryImpl struct {
	db *gorm.DB
}

func NewRateLimitRepository(db *gorm.DB) contract.RateLimitRepository {
	return &RateLimitRepositoryImpl{db: db}
}

func (r *RateLimitRepositoryImpl) Find(ctx context.Context, ip string) (*entity.RateLimitRecord, error) {
	var record entity.RateLimitRecord
	err := r.db.WithContext(ctx).First(&record, "ip = ?", ip).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *RateLimitRepositoryImpl) Save(ctx context.Context, record *entity.RateLimitRecord) error {
	record.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "ip"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"count", "window_start", "blocked_until", "updated_at",
		}),
	}).Create(record).Error
}

func (r *RateLimitRepositoryImpl) FindAll(ctx context.Context, limit, offset int) ([]*entity.RateLimitRecord, error) {
	var records []*entity.RateLimitRecord
	err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}
