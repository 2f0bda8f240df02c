package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id            uuid.UUID
	Chat          string
	Role          string
	ChatSessionId uuid.UUID
	// VisibleToUser is false for the persona preamble.
	VisibleToUser bool
	// Seed marks the persona preamble and greeting that open every session.
	Seed      bool
	Metadata  map[string]interface{}
	CreatedAt time.Time
}
