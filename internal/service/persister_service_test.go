package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"eirybot-assistant-be/internal/constant"
	"eirybot-assistant-be/internal/dto"
	"eirybot-assistant-be/internal/entity"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopLogger struct{}

func (noopLogger) Debug(string, string, map[string]interface{}) {}
func (noopLogger) Info(string, string, map[string]interface{})  {}
func (noopLogger) Warn(string, string, map[string]interface{})  {}
func (noopLogger) Error(string, string, map[string]interface{}) {}
func (noopLogger) Sync() error                                  { return nil }

type fakeConversationRepo struct {
	mu       sync.Mutex
	metadata map[string]map[string]interface{}
	leads    map[string]map[string]interface{}
	messages []*entity.ConversationMessage
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		metadata: map[string]map[string]interface{}{},
		leads:    map[string]map[string]interface{}{},
	}
}

func (r *fakeConversationRepo) MergeMetadata(_ context.Context, id string, metadata map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.metadata[id] == nil {
		r.metadata[id] = map[string]interface{}{}
	}
	for k, v := range metadata {
		r.metadata[id][k] = v
	}
	return nil
}

func (r *fakeConversationRepo) MergeLead(_ context.Context, id string, lead map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.leads[id] == nil {
		r.leads[id] = map[string]interface{}{}
	}
	for k, v := range lead {
		r.leads[id][k] = v
	}
	return nil
}

func (r *fakeConversationRepo) AppendMessage(_ context.Context, msg *entity.ConversationMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

func (r *fakeConversationRepo) FindSessions(context.Context, int, int) ([]*entity.ConversationSession, error) {
	return nil, nil
}

func (r *fakeConversationRepo) FindSession(context.Context, string) (*entity.ConversationSession, error) {
	return nil, nil
}

func (r *fakeConversationRepo) FindMessages(context.Context, string) ([]*entity.ConversationMessage, error) {
	return nil, nil
}

func (r *fakeConversationRepo) FindSessionsWithLead(context.Context, int, int) ([]*entity.ConversationSession, error) {
	return nil, nil
}

func (r *fakeConversationRepo) snapshot() ([]*entity.ConversationMessage, map[string]map[string]interface{}, map[string]map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := append([]*entity.ConversationMessage{}, r.messages...)
	return msgs, r.metadata, r.leads
}

func startPersister(t *testing.T) (*fakeConversationRepo, IPersistencePublisher) {
	t.Helper()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	repo := newFakeConversationRepo()

	persister := NewPersisterService(pubSub, repo, nil, noopLogger{})
	require.NoError(t, persister.Start(context.Background()))

	return repo, NewPersistencePublisher(pubSub, noopLogger{})
}

func TestPersisterStoresUserTurn(t *testing.T) {
	repo, publisher := startPersister(t)

	publisher.PublishUserTurn(&dto.PersistUserTurnMessage{
		ChatId:  "chat-1",
		Content: "hola, quiero informacion",
		Metadata: dto.ClientMetadata{
			Ip:      "1.2.3.4",
			Country: "ES",
			City:    "Madrid",
		},
	})

	assert.Eventually(t, func() bool {
		msgs, metadata, _ := repo.snapshot()
		if len(msgs) != 1 || metadata["chat-1"] == nil {
			return false
		}
		loc, _ := metadata["chat-1"]["location"].(map[string]interface{})
		return msgs[0].Role == constant.ChatMessageRoleUser &&
			msgs[0].Content == "hola, quiero informacion" &&
			metadata["chat-1"]["ip"] == "1.2.3.4" &&
			loc != nil && loc["city"] == "Madrid"
	}, time.Second, 10*time.Millisecond)
}

func TestPersisterCapturesLeadFromUserText(t *testing.T) {
	repo, publisher := startPersister(t)

	publisher.PublishAssistantTurn(&dto.PersistAssistantTurnMessage{
		ChatId:      "chat-1",
		Content:     "te escribimos pronto",
		UserContent: "mi correo es ana@empresa.es y mi telefono 612345678",
	})

	assert.Eventually(t, func() bool {
		msgs, _, leads := repo.snapshot()
		lead := leads["chat-1"]
		return len(msgs) == 1 &&
			msgs[0].Role == constant.ChatMessageRoleAssistant &&
			lead != nil &&
			lead["email"] == "ana@empresa.es" &&
			lead["phone"] == "612345678"
	}, time.Second, 10*time.Millisecond)
}

func TestPersisterSkipsEmptyAssistantContent(t *testing.T) {
	repo, publisher := startPersister(t)

	publisher.PublishAssistantTurn(&dto.PersistAssistantTurnMessage{
		ChatId:      "chat-1",
		Content:     "",
		UserContent: "sin datos de contacto aqui",
	})
	// A second, real turn proves the first was processed and skipped.
	publisher.PublishAssistantTurn(&dto.PersistAssistantTurnMessage{
		ChatId:  "chat-1",
		Content: "respuesta",
	})

	assert.Eventually(t, func() bool {
		msgs, _, _ := repo.snapshot()
		return len(msgs) == 1 && msgs[0].Content == "respuesta"
	}, time.Second, 10*time.Millisecond)

	_, _, leads := repo.snapshot()
	assert.Empty(t, leads["chat-1"])
}
