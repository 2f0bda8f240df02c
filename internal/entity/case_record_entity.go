package entity

import (
	"time"

	"github.com/google/uuid"
)

type CaseRecord struct {
	Id         string
	UserId     uuid.UUID
	ActivityId uuid.UUID

	NoticeText string
	IsSummon   *bool

	Questions []string
	Answers   []string
	Reasons   []string

	SelectedQuestions []string
	SelectedAnswers   []string
	SelectedReason    string
	ExtraNotes        string
	SubmittedData     string

	TargetLength int
	CurrentDraft string
	Stage        string
	Version      int64

	CreatedAt time.Time
	UpdatedAt time.Time
}
