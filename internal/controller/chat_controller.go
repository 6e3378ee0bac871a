package controller

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"eirybot-assistant-be/internal/dto"
	"eirybot-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// maxTurnDuration caps one completion, retrieval included.
const maxTurnDuration = 30 * time.Second

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Post("/chat", c.Chat)
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	ip := clientIp(ctx)

	decision := c.chatService.RateLimit(ctx.Context(), ip)
	if !decision.Allowed {
		details := fmt.Sprintf("You are blocked for %d more minutes.", decision.RetryAfterMinutes)
		if decision.FreshlyBlocked {
			details = "Rate limit exceeded. Blocked for 1 hour."
		}
		return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":   "Too Many Requests",
			"details": details,
		})
	}

	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Messages) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "messages must not be empty")
	}

	// Session id resolution: query param wins, then header, then body.
	chatId := ctx.Query("chatId")
	if chatId == "" {
		chatId = ctx.Get("x-chat-id")
	}
	if chatId == "" {
		chatId = req.ChatId
	}

	meta := dto.ClientMetadata{
		Ip:        ip,
		UserAgent: headerOr(ctx, "user-agent", "unknown"),
		Country:   headerOr(ctx, "x-vercel-ip-country", "unknown"),
		City:      headerOr(ctx, "x-vercel-ip-city", "unknown"),
		Client:    req.Metadata,
	}

	// The turn outlives the fasthttp handler (the body is streamed after the
	// handler returns), so it gets its own deadline instead of ctx.Context().
	turnCtx, cancel := context.WithTimeout(context.Background(), maxTurnDuration)

	chunks, errs := c.chatService.StreamTurn(turnCtx, chatId, req.Messages, meta)

	// Hold the status line until the model produces something, so an upstream
	// failure still surfaces as a clean 500.
	first, ok := <-chunks
	if !ok {
		cancel()
		if err := <-errs; err != nil {
			return err
		}
		ctx.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
		return ctx.SendString("")
	}

	ctx.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		if !writeChunk(w, first) {
			return
		}
		for chunk := range chunks {
			if !writeChunk(w, chunk) {
				return
			}
		}

		// Mid-stream failure after a committed 200 can only truncate the body.
		<-errs
	}))

	return nil
}

// writeChunk flushes each token immediately; a failed flush means the client
// went away.
func writeChunk(w *bufio.Writer, chunk string) bool {
	if _, err := w.WriteString(chunk); err != nil {
		return false
	}
	return w.Flush() == nil
}

// headerOr keeps absent client context as an explicit sentinel so session
// documents always carry the same fields.
func headerOr(ctx *fiber.Ctx, key, fallback string) string {
	if v := ctx.Get(key); v != "" {
		return v
	}
	return fallback
}

func clientIp(ctx *fiber.Ctx) string {
	forwarded := ctx.Get("x-forwarded-for")
	if forwarded == "" {
		return "unknown"
	}
	// First hop in the chain is the client.
	if i := strings.IndexByte(forwarded, ','); i >= 0 {
		forwarded = forwarded[:i]
	}
	return strings.TrimSpace(forwarded)
}
