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

type ConversationRepositoryImpl struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) contract.ConversationRepository {
	return &ConversationRepositoryImpl{db: db}
}

// mergeColumn upserts the session row and merges the given jsonb column with
// the new value. Existing keys not present in the new value are preserved,
// which gives the same semantics as a Firestore set(..., {merge: true}).
func (r *ConversationRepositoryImpl) mergeColumn(ctx context.Context, conversationId, column string, value map[string]interface{}) error {
	now := time.Now()
	session := &entity.ConversationSession{
		Id:        conversationId,
		CreatedAt: now,
		UpdatedAt: now,
	}
	switch column {
	case "metadata":
		session.Metadata = value
	case "lead":
		session.Lead = value
	default:
		return errors.New("unknown merge column: " + column)
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			column:       gorm.Expr("COALESCE(conversation_sessions." + column + ", '{}'::jsonb) || EXCLUDED." + column),
			"updated_at": now,
		}),
	}).Create(session).Error
}

func (r *ConversationRepositoryImpl) MergeMetadata(ctx context.Context, conversationId string, metadata map[string]interface{}) error {
	return r.mergeColumn(ctx, conversationId, "metadata", metadata)
}

func (r *ConversationRepositoryImpl) MergeLead(ctx context.Context, conversationId string, lead map[string]interface{}) error {
	return r.mergeColumn(ctx, conversationId, "lead", lead)
}

func (r *ConversationRepositoryImpl) AppendMessage(ctx context.Context, message *entity.ConversationMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *ConversationRepositoryImpl) FindSessions(ctx context.Context, limit, offset int) ([]*entity.ConversationSession, error) {
	var sessions []*entity.ConversationSession
	err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&sessions).Error
	return sessions, err
}

func (r *ConversationRepositoryImpl) FindSession(ctx context.Context, conversationId string) (*entity.ConversationSession, error) {
	var session entity.ConversationSession
	err := r.db.WithContext(ctx).First(&session, "id = ?", conversationId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ConversationRepositoryImpl) FindMessages(ctx context.Context, conversationId string) ([]*entity.ConversationMessage, error) {
	var messages []*entity.ConversationMessage
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationId).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

func (r *ConversationRepositoryImpl) FindSessionsWithLead(ctx context.Context, limit, offset int) ([]*entity.ConversationSession, error) {
	var sessions []*entity.ConversationSession
	err := r.db.WithContext(ctx).
		Where("lead IS NOT NULL").
		Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&sessions).Error
	return sessions, err
}
