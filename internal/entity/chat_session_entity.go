package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id     uuid.UUID
	UserId uuid.UUID
	// Title stays at the default until the first real question arrives.
	Title         string
	LastMessageAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}
