package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CaseRecord keeps the legacy flattened list columns: questions are
// joined with "?," and answers and reasons with ".,". The *Items JSON
// columns hold the same lists item for item and are what the app reads.
type CaseRecord struct {
	Id                string    `gorm:"type:varchar(64);primaryKey"`
	UserId            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	ActivityId        uuid.UUID `gorm:"type:uuid;not null"`
	NoticeText        string    `gorm:"type:text;not null"`
	IsSummon          *bool
	Questions         string `gorm:"type:text"`
	Answers           string `gorm:"type:text"`
	Reasons           string `gorm:"type:text"`
	SelectedQuestions string `gorm:"type:text"`
	SelectedAnswers   string `gorm:"type:text"`

	QuestionItems         datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	AnswerItems           datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	ReasonItems           datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	SelectedQuestionItems datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	SelectedAnswerItems   datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`

	SelectedReason string `gorm:"type:text"`
	ExtraNotes     string `gorm:"type:text"`
	SubmittedData  string `gorm:"type:text"`
	TargetLength   int
	CurrentDraft   string    `gorm:"type:text"`
	Stage          string    `gorm:"type:varchar(32);not null"`
	Version        int64     `gorm:"not null;default:0"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time
}

func (CaseRecord) TableName() string {
	return "case_records"
}
