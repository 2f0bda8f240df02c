package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Activity struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId         uuid.UUID `gorm:"type:uuid;not null;index:idx_activity_user_created,priority:1"`
	SourceFileName string    `gorm:"type:varchar(255);not null"`
	FileLocator    string    `gorm:"type:text;not null"`
	PageCount      int
	IsSummon       *bool
	Questions      string `gorm:"type:text"`
	Answers        string `gorm:"type:text"`
	Reasons        string `gorm:"type:text"`

	QuestionItems datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	AnswerItems   datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	ReasonItems   datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`

	ExtraNotes string    `gorm:"type:text"`
	ReplyText  string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"index:idx_activity_user_created,priority:2"`
	UpdatedAt  time.Time
}

func (Activity) TableName() string {
	return "activity_history"
}
