package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatSession struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId        uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_sessions_user_created,priority:1"`
	Title         string    `gorm:"type:varchar(255);not null"`
	LastMessageAt *time.Time
	CreatedAt     time.Time      `gorm:"autoCreateTime;index:idx_chat_sessions_user_created,priority:2"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
