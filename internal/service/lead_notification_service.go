package service

import (
	"context"

	"eirybot-assistant-be/internal/pkg/logger"
	"eirybot-assistant-be/internal/pkg/mailer"
	"eirybot-assistant-be/pkg/events"
	pktNats "eirybot-assistant-be/pkg/nats"
)

// LeadDelivery pushes real-time lead updates. Implemented by the
// websocket Hub.
type LeadDelivery interface {
	Broadcast(payload map[string]interface{})
}

// LeadNotificationService turns LEAD_CAPTURED events into a sales email
// and a live dashboard push. Both deliveries are best-effort.
type LeadNotificationService struct {
	subscriber *pktNats.Subscriber
	emailer    mailer.IEmailService
	leadInbox  string
	delivery   LeadDelivery
	logger     logger.ILogger
}

func NewLeadNotificationService(
	sub *pktNats.Subscriber,
	emailer mailer.IEmailService,
	leadInbox string,
	delivery LeadDelivery,
	log logger.ILogger,
) *LeadNotificationService {
	return &LeadNotificationService{
		subscriber: sub,
		emailer:    emailer,
		leadInbox:  leadInbox,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *LeadNotificationService) Start() {
	err := s.subscriber.Subscribe("events."+events.LeadCapturedType, "lead-notif-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("LeadNotification", "Failed to start lead subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("LeadNotification", "Lead notification service started", nil)
}

func (s *LeadNotificationService) handleEvent(_ context.Context, event events.Event) error {
	if event.EventType() != events.LeadCapturedType {
		return nil
	}

	payload := event.Payload()
	conversationId, _ := payload["conversation_id"].(string)
	email, _ := payload["email"].(string)
	phone, _ := payload["phone"].(string)

	s.logger.Info("LeadNotification", "Processing captured lead", map[string]interface{}{
		"conversation_id": conversationId,
	})

	if s.delivery != nil {
		s.delivery.Broadcast(payload)
	}

	if s.emailer != nil && s.leadInbox != "" {
		if err := s.emailer.SendLeadAlert(s.leadInbox, conversationId, email, phone); err != nil {
			s.logger.Warn("LeadNotification", "Failed to send lead alert email", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	// Never Nak: a lost notification is cheaper than a retry loop that
	// re-mails sales.
	return nil
}
