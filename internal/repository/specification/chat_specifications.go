package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByChatSessionID struct {
	ChatSessionID uuid.UUID
}

func (s ByChatSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionID)
}

// VisibleToUser drops the hidden persona preamble.
type VisibleToUser struct{}

func (s VisibleToUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("visible_to_user = ?", true)
}
