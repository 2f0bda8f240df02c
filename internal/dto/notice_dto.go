package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadNoticeResponse struct {
	ActivityId uuid.UUID `json:"activity_id"`
	FileName   string    `json:"file_name"`
	PageCount  int       `json:"page_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// DerivationResponse carries either questions with suggested answers or
// summon reasons, never both.
type DerivationResponse struct {
	IsSummon  bool     `json:"is_summon"`
	Questions []string `json:"questions,omitempty"`
	Answers   []string `json:"answers,omitempty"`
	Reasons   []string `json:"reasons,omitempty"`
}

type CaseRecordResponse struct {
	ActivityId        uuid.UUID `json:"activity_id"`
	Stage             string    `json:"stage"`
	NoticeText        string    `json:"notice_text"`
	IsSummon          *bool     `json:"is_summon"`
	Questions         []string  `json:"questions"`
	Answers           []string  `json:"answers"`
	Reasons           []string  `json:"reasons"`
	SelectedQuestions []string  `json:"selected_questions"`
	SelectedAnswers   []string  `json:"selected_answers"`
	SelectedReason    string    `json:"selected_reason"`
	ExtraNotes        string    `json:"extra_notes"`
	TargetLength      int       `json:"target_length"`
	CurrentDraft      string    `json:"current_draft"`
	Version           int64     `json:"version"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// SubmitSelectionRequest answers either the question list (Indices with
// optional edited Answers keyed by index) or the summon reasons (Indices[0]
// or an edited Reason).
type SubmitSelectionRequest struct {
	Indices     []int          `json:"indices" validate:"omitempty,dive,min=0"`
	Answers     map[int]string `json:"answers" validate:"omitempty,dive,max=4000"`
	Reason      string         `json:"reason" validate:"max=4000"`
	ExtraNotes  string         `json:"extra_notes" validate:"max=8000"`
	TargetPages int            `json:"target_pages" validate:"min=0,max=50"`
}

type GenerateDraftResponse struct {
	Draft        string `json:"draft"`
	TargetLength int    `json:"target_length"`
}

type SaveDraftRequest struct {
	Text string `json:"text" validate:"required"`
}

type HistoryItemResponse struct {
	Id        uuid.UUID `json:"id"`
	FileName  string    `json:"file_name"`
	IsSummon  *bool     `json:"is_summon"`
	HasReply  bool      `json:"has_reply"`
	CreatedAt time.Time `json:"created_at"`
}

type HistoryDetailResponse struct {
	Id         uuid.UUID `json:"id"`
	FileName   string    `json:"file_name"`
	PageCount  int       `json:"page_count"`
	IsSummon   *bool     `json:"is_summon"`
	Questions  []string  `json:"questions"`
	Answers    []string  `json:"answers"`
	Reasons    []string  `json:"reasons"`
	ExtraNotes string    `json:"extra_notes"`
	ReplyText  string    `json:"reply_text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type DocumentURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
