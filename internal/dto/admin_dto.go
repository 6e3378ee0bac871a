package dto

import (
	"time"

	"github.com/google/uuid"
)

type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AdminLoginResponse struct {
	Token string `json:"token"`
}

type ConversationSummaryResponse struct {
	Id        string                 `json:"id"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Lead      map[string]interface{} `json:"lead,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

type TranscriptMessageResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type LeadResponse struct {
	ConversationId string                 `json:"conversation_id"`
	Lead           map[string]interface{} `json:"lead"`
	CapturedAt     time.Time              `json:"captured_at"`
}

type RateLimitRecordResponse struct {
	Ip           string     `json:"ip"`
	Count        int        `json:"count"`
	WindowStart  time.Time  `json:"window_start"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`
}
