package notice

import (
	"context"

	"github.com/google/uuid"

	"legal-aid-be/pkg/pdf"
)

// Store is the persistence port. SaveCaseRecord succeeds only when the
// stored version equals expectedVersion (0 means no record yet) and sets
// record.Version to the new version. Missing rows are ErrNotFound and
// version mismatches ErrStaleRecord.
type Store interface {
	GetCaseRecord(ctx context.Context, userID uuid.UUID) (*CaseRecord, error)
	SaveCaseRecord(ctx context.Context, record *CaseRecord, expectedVersion int64) error
	CreateActivity(ctx context.Context, entry *ActivityEntry) error
	GetActivity(ctx context.Context, userID, activityID uuid.UUID) (*ActivityEntry, error)
	GetLatestActivity(ctx context.Context, userID uuid.UUID) (*ActivityEntry, error)
	UpdateActivity(ctx context.Context, entry *ActivityEntry) error
	// SaveCaseRecordCounting saves record and bumps the user's counter
	// atomically: both land or neither does.
	SaveCaseRecordCounting(ctx context.Context, record *CaseRecord, expectedVersion int64, counter Counter) error
}

type Inspector interface {
	Inspect(ctx context.Context, data []byte) (*pdf.Info, error)
}

// Extractor turns an uploaded document into plain notice text.
type Extractor interface {
	Extract(ctx context.Context, fileName string, data []byte) (string, error)
}

// Locker serialises pipeline transitions per key.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// EventPublisher is fire-and-forget; implementations log their own failures.
type EventPublisher interface {
	PublishNoticeUploaded(ctx context.Context, entry *ActivityEntry)
	PublishReplySaved(ctx context.Context, entry *ActivityEntry)
}

// PromptBuilder renders the text sent to the generation backend.
type PromptBuilder interface {
	Persona() string
	Classification(noticeText string) string
	Reasons(noticeText string) string
	Questions(noticeText string) string
	Answers(noticeText string, questions []string) string
	Draft(req DraftRequest) string
}
