package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"eirybot-assistant-be/internal/dto"
	"eirybot-assistant-be/internal/pkg/serverutils"
	"eirybot-assistant-be/internal/service"
	"eirybot-assistant-be/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatService struct {
	decision ratelimit.Decision
	chunks   []string
	err      error

	gotIp     string
	gotChatId string
	gotMeta   dto.ClientMetadata
}

func (s *stubChatService) RateLimit(_ context.Context, ip string) ratelimit.Decision {
	s.gotIp = ip
	return s.decision
}

func (s *stubChatService) StreamTurn(_ context.Context, chatId string, _ []dto.IncomingMessage, meta dto.ClientMetadata) (<-chan string, <-chan error) {
	s.gotChatId = chatId
	s.gotMeta = meta

	out := make(chan string, len(s.chunks))
	errs := make(chan error, 1)
	for _, c := range s.chunks {
		out <- c
	}
	if s.err != nil {
		errs <- s.err
	}
	close(out)
	close(errs)
	return out, errs
}

func newTestApp(svc service.IChatService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewChatController(svc).RegisterRoutes(api)
	return app
}

func TestChatStreamsResponseBody(t *testing.T) {
	svc := &stubChatService{
		decision: ratelimit.Decision{Allowed: true},
		chunks:   []string{"Hola", ", ", "soy EiryBot"},
	}
	app := newTestApp(svc)

	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"messages":[{"role":"user","content":"hola"}]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Hola, soy EiryBot", string(body))
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
}

func TestChatRejectsWhileBlocked(t *testing.T) {
	svc := &stubChatService{
		decision: ratelimit.Decision{Allowed: false, RetryAfterMinutes: 12},
	}
	app := newTestApp(svc)

	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"messages":[{"role":"user","content":"hola"}]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-forwarded-for", "1.2.3.4")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "Too Many Requests", payload["error"])
	assert.Equal(t, "You are blocked for 12 more minutes.", payload["details"])
	assert.Equal(t, "1.2.3.4", svc.gotIp)
}

func TestChatRejectsOnFreshBlock(t *testing.T) {
	svc := &stubChatService{
		decision: ratelimit.Decision{Allowed: false, RetryAfterMinutes: 60, FreshlyBlocked: true},
	}
	app := newTestApp(svc)

	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"messages":[{"role":"user","content":"hola"}]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "Rate limit exceeded. Blocked for 1 hour.", payload["details"])
}

func TestChatRejectsMalformedBody(t *testing.T) {
	svc := &stubChatService{decision: ratelimit.Decision{Allowed: true}}
	app := newTestApp(svc)

	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "Bad Request", payload["error"])
}

func TestChatRejectsEmptyMessages(t *testing.T) {
	svc := &stubChatService{decision: ratelimit.Decision{Allowed: true}}
	app := newTestApp(svc)

	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"messages":[]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestChatSurfacesUpstreamFailureAs500(t *testing.T) {
	svc := &stubChatService{
		decision: ratelimit.Decision{Allowed: true},
		err:      errors.New("completion backend unavailable"),
	}
	app := newTestApp(svc)

	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"messages":[{"role":"user","content":"hola"}]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "Internal Server Error", payload["error"])
	assert.Equal(t, "completion backend unavailable", payload["details"])
}

func TestChatSessionIdPriority(t *testing.T) {
	tests := []struct {
		name   string
		target string
		header string
		body   string
		want   string
	}{
		{
			name:   "query param wins",
			target: "/api/chat?chatId=from-query",
			header: "from-header",
			body:   `{"chatId":"from-body","messages":[{"role":"user","content":"hola"}]}`,
			want:   "from-query",
		},
		{
			name:   "header beats body",
			target: "/api/chat",
			header: "from-header",
			body:   `{"chatId":"from-body","messages":[{"role":"user","content":"hola"}]}`,
			want:   "from-header",
		},
		{
			name:   "body as fallback",
			target: "/api/chat",
			body:   `{"chatId":"from-body","messages":[{"role":"user","content":"hola"}]}`,
			want:   "from-body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubChatService{
				decision: ratelimit.Decision{Allowed: true},
				chunks:   []string{"ok"},
			}
			app := newTestApp(svc)

			req := httptest.NewRequest("POST", tt.target, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.header != "" {
				req.Header.Set("x-chat-id", tt.header)
			}

			resp, err := app.Test(req, 5000)
			require.NoError(t, err)
			io.Copy(io.Discard, resp.Body)

			assert.Equal(t, tt.want, svc.gotChatId)
		})
	}
}

func TestChatCapturesClientMetadata(t *testing.T) {
	svc := &stubChatService{
		decision: ratelimit.Decision{Allowed: true},
		chunks:   []string{"ok"},
	}
	app := newTestApp(svc)

	body := `{"messages":[{"role":"user","content":"hola"}],"metadata":{"lang":"es"}}`
	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-forwarded-for", "9.8.7.6, 10.0.0.1")
	req.Header.Set("user-agent", "Mozilla/5.0")
	req.Header.Set("x-vercel-ip-country", "ES")
	req.Header.Set("x-vercel-ip-city", "Madrid")

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	io.Copy(io.Discard, resp.Body)

	assert.Equal(t, "9.8.7.6", svc.gotMeta.Ip)
	assert.Equal(t, "Mozilla/5.0", svc.gotMeta.UserAgent)
	assert.Equal(t, "ES", svc.gotMeta.Country)
	assert.Equal(t, "Madrid", svc.gotMeta.City)
	assert.Equal(t, "es", svc.gotMeta.Client["lang"])
}

func TestChatUnknownIpFallback(t *testing.T) {
	svc := &stubChatService{
		decision: ratelimit.Decision{Allowed: true},
		chunks:   []string{"ok"},
	}
	app := newTestApp(svc)

	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"messages":[{"role":"user","content":"hola"}]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	io.Copy(io.Discard, resp.Body)

	assert.Equal(t, "unknown", svc.gotIp)
}

func TestChatAbsentMetadataHeadersUseUnknownSentinel(t *testing.T) {
	svc := &stubChatService{
		decision: ratelimit.Decision{Allowed: true},
		chunks:   []string{"ok"},
	}
	app := newTestApp(svc)

	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"messages":[{"role":"user","content":"hola"}]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	io.Copy(io.Discard, resp.Body)

	assert.Equal(t, "unknown", svc.gotMeta.UserAgent)
	assert.Equal(t, "unknown", svc.gotMeta.Country)
	assert.Equal(t, "unknown", svc.gotMeta.City)
}
