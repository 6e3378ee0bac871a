package service

import (
	"encoding/json"

	"eirybot-assistant-be/internal/constant"
	"eirybot-assistant-be/internal/dto"
	"eirybot-assistant-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IPersistencePublisher puts conversation writes on the in-process queue.
// Both methods are fire-and-forget: a failed publish is logged, never
// returned, because the user-facing stream must not depend on persistence.
type IPersistencePublisher interface {
	PublishUserTurn(msg *dto.PersistUserTurnMessage)
	PublishAssistantTurn(msg *dto.PersistAssistantTurnMessage)
}

type persistencePublisher struct {
	pubSub *gochannel.GoChannel
	logger logger.ILogger
}

func NewPersistencePublisher(pubSub *gochannel.GoChannel, log logger.ILogger) IPersistencePublisher {
	return &persistencePublisher{
		pubSub: pubSub,
		logger: log,
	}
}

func (p *persistencePublisher) publish(topic string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("PersistencePublisher", "Failed to marshal payload", map[string]interface{}{
			"topic": topic,
			"error": err.Error(),
		})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := p.pubSub.Publish(topic, msg); err != nil {
		p.logger.Error("PersistencePublisher", "Failed to publish persistence message", map[string]interface{}{
			"topic": topic,
			"error": err.Error(),
		})
	}
}

func (p *persistencePublisher) PublishUserTurn(msg *dto.PersistUserTurnMessage) {
	p.publish(constant.TopicPersistUserTurn, msg)
}

func (p *persistencePublisher) PublishAssistantTurn(msg *dto.PersistAssistantTurnMessage) {
	p.publish(constant.TopicPersistAssistantTurn, msg)
}
