package contract

import (
	"context"

	"eirybot-assistant-be/internal/entity"
)

// ConversationRepository is the document-store surface used by the persister.
// Merges are partial updates keyed by conversation id; absent keys survive,
// so a lead merge never clears previously captured contact info.
type ConversationRepository interface {
	MergeMetadata(ctx context.Context, conversationId string, metadata map[string]interface{}) error
	MergeLead(ctx context.Context, conversationId string, lead map[string]interface{}) error
	AppendMessage(ctx context.Context, message *entity.ConversationMessage) error

	// Read side, used by the admin API only. The chat path never reads back.
	FindSessions(ctx context.Context, limit, offset int) ([]*entity.ConversationSession, error)
	FindSession(ctx context.Context, conversationId string) (*entity.ConversationSession, error)
	FindMessages(ctx context.Context, conversationId string) ([]*entity.ConversationMessage, error)
	FindSessionsWithLead(ctx context.Context, limit, offset int) ([]*entity.ConversationSession, error)
}
