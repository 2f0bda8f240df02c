package entity

import (
	"time"

	"github.com/google/uuid"
)

type Activity struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	SourceFileName string
	FileLocator    string
	PageCount      int
	IsSummon       *bool
	Questions      []string
	Answers        []string
	Reasons        []string
	ExtraNotes     string
	ReplyText      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
