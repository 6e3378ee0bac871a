package service

import (
	"context"
	"strings"

	"eirybot-assistant-be/internal/constant"
	"eirybot-assistant-be/internal/dto"
	"eirybot-assistant-be/internal/pkg/logger"
	"eirybot-assistant-be/pkg/knowledge"
	"eirybot-assistant-be/pkg/llm"
	"eirybot-assistant-be/pkg/rag/prompt"
	"eirybot-assistant-be/pkg/ratelimit"
)

// IChatService runs one turn of the embedded site assistant.
type IChatService interface {
	// RateLimit gates the turn by client IP.
	RateLimit(ctx context.Context, ip string) ratelimit.Decision

	// StreamTurn starts the completion and returns token chunks as they
	// arrive. The chunk channel closes when the model finishes; at most one
	// error is delivered. Persistence happens off the request path.
	StreamTurn(ctx context.Context, chatId string, messages []dto.IncomingMessage, meta dto.ClientMetadata) (<-chan string, <-chan error)
}

type chatService struct {
	limiter     *ratelimit.Limiter
	retriever   *knowledge.Retriever
	llmProvider llm.LLMProvider
	publisher   IPersistencePublisher
	logger      logger.ILogger
}

func NewChatService(
	limiter *ratelimit.Limiter,
	retriever *knowledge.Retriever,
	llmProvider llm.LLMProvider,
	publisher IPersistencePublisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		limiter:     limiter,
		retriever:   retriever,
		llmProvider: llmProvider,
		publisher:   publisher,
		logger:      log,
	}
}

func (cs *chatService) RateLimit(ctx context.Context, ip string) ratelimit.Decision {
	return cs.limiter.CheckAndRecord(ctx, ip)
}

func (cs *chatService) StreamTurn(ctx context.Context, chatId string, messages []dto.IncomingMessage, meta dto.ClientMetadata) (<-chan string, <-chan error) {
	out := make(chan string, 16)
	errs := make(chan error, 1)

	lastUserContent := ""
	if len(messages) > 0 {
		lastUserContent = messages[len(messages)-1].Flatten()
	}

	// Eager write of metadata + user message. Not awaited: under adversarial
	// timing the assistant write can land first; CreatedAt decides order.
	if chatId != "" && lastUserContent != "" {
		cs.publisher.PublishUserTurn(&dto.PersistUserTurnMessage{
			ChatId:   chatId,
			Content:  lastUserContent,
			Metadata: meta,
		})
	}

	contextText := cs.retriever.Retrieve(lastUserContent)
	systemInstruction := prompt.Compose(constant.AssistantSystemPrompt, contextText)

	history := make([]llm.Message, 0, len(messages)+1)
	history = append(history, llm.Message{
		Role:    constant.ChatMessageRoleSystem,
		Content: systemInstruction,
	})
	for _, m := range messages {
		content := m.Flatten()
		if content == "" {
			continue
		}
		history = append(history, llm.Message{Role: m.Role, Content: content})
	}

	go func() {
		defer close(out)
		defer close(errs)

		chunks, providerErrs := cs.streamCompletion(ctx, history)

		var full strings.Builder
		for chunk := range chunks {
			full.WriteString(chunk)
			select {
			case out <- chunk:
			case <-ctx.Done():
				// Client gone: abandon the stream. The eager user-message
				// write already happened and is kept on purpose.
				errs <- ctx.Err()
				return
			}
		}

		if err := <-providerErrs; err != nil {
			errs <- err
			return
		}

		if chatId != "" {
			cs.publisher.PublishAssistantTurn(&dto.PersistAssistantTurnMessage{
				ChatId:      chatId,
				Content:     full.String(),
				UserContent: lastUserContent,
			})
		}
	}()

	return out, errs
}

// streamCompletion prefers a streaming backend and falls back to a single
// buffered chunk for providers that cannot stream.
func (cs *chatService) streamCompletion(ctx context.Context, history []llm.Message) (<-chan string, <-chan error) {
	if sp, ok := cs.llmProvider.(llm.StreamProvider); ok {
		return sp.StreamChat(ctx, history)
	}

	chunks := make(chan string, 1)
	errs := make(chan error, 1)
	go func() {
		defer close(chunks)
		defer close(errs)

		text, err := cs.llmProvider.Chat(ctx, history)
		if err != nil {
			errs <- err
			return
		}
		chunks <- text
	}()
	return chunks, errs
}
