package notice

import (
	"time"

	"github.com/google/uuid"
)

type Stage string

const (
	StageUploaded          Stage = "UPLOADED"
	StageClassified        Stage = "CLASSIFIED"
	StageAwaitingUserInput Stage = "AWAITING_USER_INPUT"
	StageInputSubmitted    Stage = "INPUT_SUBMITTED"
	StageDraftGenerated    Stage = "DRAFT_GENERATED"
	StageSaved             Stage = "SAVED"
)

// Derived reports whether classification and derivation have completed.
func (s Stage) Derived() bool {
	switch s {
	case StageAwaitingUserInput, StageInputSubmitted, StageDraftGenerated, StageSaved:
		return true
	}
	return false
}

type Counter string

const (
	CounterUploads          Counter = "uploads_count"
	CounterRepliesGenerated Counter = "replies_generated_count"
)

// CaseRecord is the single in-progress scratch slot a user works in. A new
// upload overwrites it. Version increases on every successful write.
type CaseRecord struct {
	ID         string
	UserID     uuid.UUID
	ActivityID uuid.UUID

	NoticeText string
	IsSummon   *bool

	DerivedQuestions []string
	DerivedAnswers   []string
	DerivedReasons   []string

	SelectedQuestions   []string
	SelectedAnswers     []string
	SelectedReason      string
	ExtraNotes          string
	SubmittedTranscript string

	TargetLength int
	CurrentDraft string

	Stage     Stage
	Version   int64
	UpdatedAt time.Time
}

// CaseRecordID is the deterministic key of a user's scratch record.
func CaseRecordID(userID uuid.UUID) string {
	return "CD" + userID.String()
}

// ActivityEntry is the permanent history row for one upload.
type ActivityEntry struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time

	SourceFileName string
	FileLocator    string
	PageCount      int

	IsSummon   *bool
	Questions  []string
	Answers    []string
	Reasons    []string
	ExtraNotes string
	ReplyText  string
}

type Derivation struct {
	IsSummon  bool
	Questions []string
	Answers   []string
	Reasons   []string
}

type UploadInput struct {
	UserID      uuid.UUID
	FileName    string
	ContentType string
	Data        []byte
	// NoticeText skips extraction when the caller already has the text.
	NoticeText string
}

// Selection is what the user submits after reviewing the derivation.
// Answers overrides the derived answer for the given question index.
// Reason, when non-empty, replaces the reason picked by Indices[0].
type Selection struct {
	Indices     []int
	Answers     map[int]string
	Reason      string
	ExtraNotes  string
	TargetPages int
}

// DraftRequest carries everything the reply prompt is built from.
type DraftRequest struct {
	NoticeText     string
	IsSummon       bool
	SelectedReason string
	Transcript     string
	ExtraNotes     string
	Date           string
	WordCount      int
}

func derivationOf(rec *CaseRecord) *Derivation {
	d := &Derivation{
		Questions: rec.DerivedQuestions,
		Answers:   rec.DerivedAnswers,
		Reasons:   rec.DerivedReasons,
	}
	if rec.IsSummon != nil {
		d.IsSummon = *rec.IsSummon
	}
	return d
}
