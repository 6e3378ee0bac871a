package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ConversationSession is keyed by the client-generated chat identifier.
// Metadata and Lead are merged document-style: keys are added or replaced,
// never cleared by an absent field.
type ConversationSession struct {
	Id        string            `gorm:"primaryKey;size:128"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb"`
	Lead      datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ConversationMessage is an append-only transcript entry. CreatedAt is
// server-assigned and is the source of truth for display order.
type ConversationMessage struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConversationId string    `gorm:"size:128;index"`
	Role           string
	Content        string
	CreatedAt      time.Time
}
