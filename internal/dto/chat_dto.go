package dto

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ChatRequest is the body of POST /api/chat. The Vercel AI SDK client sends
// messages whose content is either a plain string or an array of typed parts.
type ChatRequest struct {
	Messages []IncomingMessage      `json:"messages" validate:"required"`
	ChatId   string                 `json:"chatId"`
	Metadata map[string]interface{} `json:"metadata"`
}

type IncomingMessage struct {
	Role    string         `json:"role"`
	Content MessageContent `json:"content"`
	// Newer SDK versions put parts at the top level instead of content.
	Parts []ContentPart `json:"parts"`
}

type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// MessageContent is a tagged union: a raw string or an array of parts.
type MessageContent struct {
	Text  string
	Parts []ContentPart
}

func (c *MessageContent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Text = s
		c.Parts = nil
		return nil
	}

	var parts []ContentPart
	if err := json.Unmarshal(data, &parts); err == nil {
		c.Parts = parts
		return nil
	}

	return fmt.Errorf("message content must be a string or an array of parts")
}

func (c MessageContent) MarshalJSON() ([]byte, error) {
	if c.Parts != nil {
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Text)
}

// Flatten extracts the plain text of a message. Non-text parts (images, tool
// calls) are discarded; text parts are concatenated in order.
func (m IncomingMessage) Flatten() string {
	if m.Content.Parts == nil && m.Content.Text != "" {
		return m.Content.Text
	}

	parts := m.Content.Parts
	if parts == nil {
		parts = m.Parts
	}

	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p.Type == "text" && p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// ClientMetadata is the passive per-turn context captured from request
// headers plus whatever the browser self-reported in the body.
type ClientMetadata struct {
	Ip        string                 `json:"ip"`
	UserAgent string                 `json:"userAgent"`
	Country   string                 `json:"country"`
	City      string                 `json:"city"`
	Client    map[string]interface{} `json:"client"`
}

// ToMap shapes the metadata for the session document merge.
func (m ClientMetadata) ToMap() map[string]interface{} {
	client := m.Client
	if client == nil {
		client = map[string]interface{}{}
	}
	return map[string]interface{}{
		"ip":        m.Ip,
		"userAgent": m.UserAgent,
		"location": map[string]interface{}{
			"country": m.Country,
			"city":    m.City,
		},
		"client": client,
	}
}

// Payloads published on the persistence queue.

type PersistUserTurnMessage struct {
	ChatId   string         `json:"chat_id"`
	Content  string         `json:"content"`
	Metadata ClientMetadata `json:"metadata"`
}

type PersistAssistantTurnMessage struct {
	ChatId  string `json:"chat_id"`
	Content string `json:"content"`
	// Last user text, re-scanned for contact info once the stream finished.
	UserContent string `json:"user_content"`
}
