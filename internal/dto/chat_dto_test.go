package dto

import (
	"encoding/json"
	"testing"
)

func TestChatRequestUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "string content",
			body: `{"messages":[{"role":"user","content":"hola"}]}`,
			want: "hola",
		},
		{
			name: "content as parts array",
			body: `{"messages":[{"role":"user","content":[{"type":"text","text":"hola"},{"type":"text","text":"mundo"}]}]}`,
			want: "hola\nmundo",
		},
		{
			name: "top level parts",
			body: `{"messages":[{"role":"user","parts":[{"type":"text","text":"hola"}]}]}`,
			want: "hola",
		},
		{
			name: "non-text parts are dropped",
			body: `{"messages":[{"role":"user","content":[{"type":"image","text":"ignored"},{"type":"text","text":"visible"}]}]}`,
			want: "visible",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req ChatRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(req.Messages) != 1 {
				t.Fatalf("got %d messages, want 1", len(req.Messages))
			}
			if got := req.Messages[0].Flatten(); got != tt.want {
				t.Errorf("Flatten() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessageContentRejectsInvalidShape(t *testing.T) {
	var req ChatRequest
	err := json.Unmarshal([]byte(`{"messages":[{"role":"user","content":42}]}`), &req)
	if err == nil {
		t.Fatal("numeric content must be rejected")
	}
}

func TestClientMetadataToMap(t *testing.T) {
	meta := ClientMetadata{
		Ip:        "1.2.3.4",
		UserAgent: "Mozilla/5.0",
		Country:   "ES",
		City:      "Madrid",
		Client:    map[string]interface{}{"lang": "es"},
	}

	m := meta.ToMap()
	if m["ip"] != "1.2.3.4" || m["userAgent"] != "Mozilla/5.0" {
		t.Errorf("unexpected top-level fields: %v", m)
	}
	loc, ok := m["location"].(map[string]interface{})
	if !ok {
		t.Fatal("location must be a nested map")
	}
	if loc["country"] != "ES" || loc["city"] != "Madrid" {
		t.Errorf("unexpected location: %v", loc)
	}
	client, ok := m["client"].(map[string]interface{})
	if !ok || client["lang"] != "es" {
		t.Errorf("unexpected client block: %v", m["client"])
	}
}

func TestClientMetadataToMapNilClient(t *testing.T) {
	m := ClientMetadata{Ip: "1.2.3.4"}.ToMap()
	if _, ok := m["client"].(map[string]interface{}); !ok {
		t.Error("nil client must serialize as an empty map, not null")
	}
}
