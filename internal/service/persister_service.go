package service

import (
	"context"
	"encoding/json"
	"time"

	"eirybot-assistant-be/internal/constant"
	"eirybot-assistant-be/internal/dto"
	"eirybot-assistant-be/internal/entity"
	"eirybot-assistant-be/internal/pkg/logger"
	"eirybot-assistant-be/internal/repository/contract"
	"eirybot-assistant-be/pkg/events"
	"eirybot-assistant-be/pkg/lead"
	pktNats "eirybot-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// IPersisterService drains the persistence queue. Every write is
// best-effort: failures are logged and the message is acked anyway, since
// replaying an analytics write is worth less than a clean queue.
type IPersisterService interface {
	Start(ctx context.Context) error
}

type persisterService struct {
	pubSub           *gochannel.GoChannel
	conversationRepo contract.ConversationRepository
	natsPub          *pktNats.Publisher
	logger           logger.ILogger
}

func NewPersisterService(
	pubSub *gochannel.GoChannel,
	conversationRepo contract.ConversationRepository,
	natsPub *pktNats.Publisher,
	log logger.ILogger,
) IPersisterService {
	return &persisterService{
		pubSub:           pubSub,
		conversationRepo: conversationRepo,
		natsPub:          natsPub,
		logger:           log,
	}
}

func (ps *persisterService) Start(ctx context.Context) error {
	userTurns, err := ps.pubSub.Subscribe(ctx, constant.TopicPersistUserTurn)
	if err != nil {
		return err
	}
	assistantTurns, err := ps.pubSub.Subscribe(ctx, constant.TopicPersistAssistantTurn)
	if err != nil {
		return err
	}

	go func() {
		for msg := range userTurns {
			ps.processUserTurn(ctx, msg)
		}
	}()
	go func() {
		for msg := range assistantTurns {
			ps.processAssistantTurn(ctx, msg)
		}
	}()

	return nil
}

// processUserTurn merges the turn's client metadata onto the session and
// appends the user message to the transcript.
func (ps *persisterService) processUserTurn(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.PersistUserTurnMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		ps.logger.Error("Persister", "Failed to unmarshal user turn", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := ps.conversationRepo.MergeMetadata(ctx, payload.ChatId, payload.Metadata.ToMap()); err != nil {
		ps.logger.Error("Persister", "Failed to merge session metadata", map[string]interface{}{
			"conversation_id": payload.ChatId,
			"error":           err.Error(),
		})
	}

	ps.appendMessage(ctx, payload.ChatId, constant.ChatMessageRoleUser, payload.Content)
}

// processAssistantTurn runs passive lead capture against the user text that
// produced the reply, then appends the assistant message.
func (ps *persisterService) processAssistantTurn(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.PersistAssistantTurnMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		ps.logger.Error("Persister", "Failed to unmarshal assistant turn", map[string]interface{}{"error": err.Error()})
		return
	}

	if payload.UserContent != "" {
		if contact := lead.Extract(payload.UserContent); !contact.Empty() {
			ps.captureLead(ctx, payload.ChatId, contact)
		}
	}

	if payload.Content != "" {
		ps.appendMessage(ctx, payload.ChatId, constant.ChatMessageRoleAssistant, payload.Content)
	}
}

func (ps *persisterService) captureLead(ctx context.Context, conversationId string, contact lead.Contact) {
	ps.logger.Info("Persister", "Passive lead capture found contact info", map[string]interface{}{
		"conversation_id": conversationId,
	})

	if err := ps.conversationRepo.MergeLead(ctx, conversationId, contact.ToMap()); err != nil {
		ps.logger.Error("Persister", "Failed to merge lead", map[string]interface{}{
			"conversation_id": conversationId,
			"error":           err.Error(),
		})
	}

	if ps.natsPub != nil {
		event := events.NewLeadCaptured(conversationId, contact.Email, contact.Phone)
		if err := ps.natsPub.Publish(ctx, event); err != nil {
			ps.logger.Warn("Persister", "Failed to publish lead event", map[string]interface{}{
				"conversation_id": conversationId,
				"error":           err.Error(),
			})
		}
	}
}

func (ps *persisterService) appendMessage(ctx context.Context, conversationId, role, content string) {
	err := ps.conversationRepo.AppendMessage(ctx, &entity.ConversationMessage{
		Id:             uuid.New(),
		ConversationId: conversationId,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now(),
	})
	if err != nil {
		ps.logger.Error("Persister", "Failed to append message", map[string]interface{}{
			"conversation_id": conversationId,
			"role":            role,
			"error":           err.Error(),
		})
	}
}
