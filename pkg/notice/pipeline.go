package notice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"legal-aid-be/internal/pkg/logger"
	"legal-aid-be/pkg/llm"
	"legal-aid-be/pkg/pdf"
	"legal-aid-be/pkg/storage"
)

const logModule = "NOTICE"

type Config struct {
	Store     Store
	LLM       llm.LLMProvider
	Documents storage.DocumentStore
	Inspector Inspector
	Extractor Extractor
	Locker    Locker
	Events    EventPublisher
	Prompts   PromptBuilder
	Logger    logger.ILogger

	// MaxOutputTokens bounds the draft call. Defaults to 8192.
	MaxOutputTokens int
	// RetryMaxTries bounds persistence retries after a successful
	// generation call. Defaults to 3.
	RetryMaxTries uint
	// RetryInitialInterval defaults to the backoff package default.
	RetryInitialInterval time.Duration
	Now                  func() time.Time
}

// Pipeline drives one user's notice from upload to a saved reply. Every
// entry point holds the per-user lock for its whole duration.
type Pipeline struct {
	cfg Config
}

func NewPipeline(cfg Config) *Pipeline {
	if cfg.Locker == nil {
		cfg.Locker = NewKeyedMutex()
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 8192
	}
	if cfg.RetryMaxTries == 0 {
		cfg.RetryMaxTries = 3
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Pipeline{cfg: cfg}
}

func (p *Pipeline) Upload(ctx context.Context, in UploadInput) (*ActivityEntry, error) {
	if in.UserID == uuid.Nil || strings.TrimSpace(in.FileName) == "" || len(in.Data) == 0 {
		return nil, fmt.Errorf("%w: file is required", ErrValidationFailed)
	}

	unlock, err := p.lock(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	pages := 0
	if p.cfg.Inspector != nil {
		info, err := p.cfg.Inspector.Inspect(ctx, in.Data)
		if err != nil {
			if errors.Is(err, pdf.ErrInvalidPDF) {
				return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
			}
			return nil, err
		}
		pages = info.Pages
	}

	text := strings.TrimSpace(in.NoticeText)
	if text == "" {
		if p.cfg.Extractor == nil {
			return nil, fmt.Errorf("%w: notice text is required", ErrValidationFailed)
		}
		text, err = p.cfg.Extractor.Extract(ctx, in.FileName, in.Data)
		if err != nil {
			return nil, fmt.Errorf("extract notice text: %w", err)
		}
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w: no readable text in %s", ErrDerivationEmpty, in.FileName)
		}
	}

	loc, err := p.cfg.Documents.Store(ctx, in.UserID.String(), in.FileName, in.ContentType, bytes.NewReader(in.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageWriteFailed, err)
	}

	now := p.cfg.Now()
	entry := &ActivityEntry{
		ID:             uuid.New(),
		UserID:         in.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
		SourceFileName: in.FileName,
		FileLocator:    string(loc),
		PageCount:      pages,
	}
	if err := p.persist(ctx, "create activity", func() error {
		return p.cfg.Store.CreateActivity(ctx, entry)
	}); err != nil {
		return nil, err
	}

	var expected int64
	current, err := p.cfg.Store.GetCaseRecord(ctx, in.UserID)
	switch {
	case err == nil:
		expected = current.Version
	case errors.Is(err, ErrNotFound):
	default:
		return nil, fmt.Errorf("load case record: %w", err)
	}

	rec := &CaseRecord{
		ID:         CaseRecordID(in.UserID),
		UserID:     in.UserID,
		ActivityID: entry.ID,
		NoticeText: text,
		Stage:      StageUploaded,
		UpdatedAt:  now,
	}
	if err := p.saveCounting(ctx, rec, expected, CounterUploads); err != nil {
		return nil, err
	}

	p.log("Notice uploaded", map[string]interface{}{
		"user_id":     in.UserID,
		"activity_id": entry.ID,
		"pages":       pages,
	})

	if p.cfg.Events != nil {
		p.cfg.Events.PublishNoticeUploaded(ctx, entry)
	}

	return entry, nil
}

// ClassifyAndDerive advances an Uploaded or Classified record to
// AwaitingUserInput. Records that are already derived are returned as is.
func (p *Pipeline) ClassifyAndDerive(ctx context.Context, userID uuid.UUID) (*Derivation, error) {
	unlock, err := p.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	rec, err := p.cfg.Store.GetCaseRecord(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.classifyAndDerive(ctx, rec)
}

// Reclassify discards the classification and everything derived from it,
// then classifies again.
func (p *Pipeline) Reclassify(ctx context.Context, userID uuid.UUID) (*Derivation, error) {
	unlock, err := p.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	rec, err := p.cfg.Store.GetCaseRecord(ctx, userID)
	if err != nil {
		return nil, err
	}

	reset := &CaseRecord{
		ID:         rec.ID,
		UserID:     rec.UserID,
		ActivityID: rec.ActivityID,
		NoticeText: rec.NoticeText,
		Stage:      StageUploaded,
		UpdatedAt:  p.cfg.Now(),
	}
	if err := p.save(ctx, reset, rec.Version); err != nil {
		return nil, err
	}

	return p.classifyAndDerive(ctx, reset)
}

func (p *Pipeline) classifyAndDerive(ctx context.Context, rec *CaseRecord) (*Derivation, error) {
	if rec.Stage.Derived() {
		return derivationOf(rec), nil
	}

	if rec.Stage == StageUploaded {
		raw, err := p.cfg.LLM.Generate(ctx, p.cfg.Prompts.Classification(rec.NoticeText),
			llm.WithSystemPrompt(p.cfg.Prompts.Persona()),
			llm.WithChoices(ClassificationChoices...),
		)
		if err != nil {
			return nil, fmt.Errorf("classify notice: %w", err)
		}

		isSummon, err := ParseClassification(raw)
		if err != nil {
			p.warn("Ambiguous classification", map[string]interface{}{"user_id": rec.UserID, "raw": truncate(raw, 80)})
			return nil, err
		}

		rec.IsSummon = &isSummon
		rec.Stage = StageClassified
		rec.UpdatedAt = p.cfg.Now()
		if err := p.save(ctx, rec, rec.Version); err != nil {
			return nil, err
		}
	}

	if rec.Stage != StageClassified || rec.IsSummon == nil {
		return nil, fmt.Errorf("%w: cannot derive from %s", ErrInvalidStage, rec.Stage)
	}

	if *rec.IsSummon {
		if err := p.deriveReasons(ctx, rec); err != nil {
			return nil, err
		}
	} else {
		if err := p.deriveQuestions(ctx, rec); err != nil {
			return nil, err
		}
	}

	rec.Stage = StageAwaitingUserInput
	rec.UpdatedAt = p.cfg.Now()
	if err := p.save(ctx, rec, rec.Version); err != nil {
		return nil, err
	}

	if err := p.updateActivity(ctx, rec, func(a *ActivityEntry) {
		a.IsSummon = rec.IsSummon
	}); err != nil {
		return nil, err
	}

	p.log("Notice classified", map[string]interface{}{
		"user_id":   rec.UserID,
		"is_summon": *rec.IsSummon,
		"questions": len(rec.DerivedQuestions),
		"reasons":   len(rec.DerivedReasons),
	})

	return derivationOf(rec), nil
}

func (p *Pipeline) deriveReasons(ctx context.Context, rec *CaseRecord) error {
	raw, err := p.cfg.LLM.Generate(ctx, p.cfg.Prompts.Reasons(rec.NoticeText),
		llm.WithSystemPrompt(p.cfg.Prompts.Persona()),
	)
	if err != nil {
		return fmt.Errorf("derive reasons: %w", err)
	}

	reasons := ParseReasons(raw)
	if len(reasons) == 0 {
		return fmt.Errorf("%w: no reasons derived", ErrDerivationEmpty)
	}

	rec.DerivedReasons = reasons
	rec.DerivedQuestions = nil
	rec.DerivedAnswers = nil
	return nil
}

func (p *Pipeline) deriveQuestions(ctx context.Context, rec *CaseRecord) error {
	raw, err := p.cfg.LLM.Generate(ctx, p.cfg.Prompts.Questions(rec.NoticeText),
		llm.WithSystemPrompt(p.cfg.Prompts.Persona()),
	)
	if err != nil {
		return fmt.Errorf("derive questions: %w", err)
	}

	questions := ParseQuestions(raw)
	if len(questions) == 0 {
		return fmt.Errorf("%w: no questions derived", ErrDerivationEmpty)
	}

	raw, err = p.cfg.LLM.Generate(ctx, p.cfg.Prompts.Answers(rec.NoticeText, questions),
		llm.WithSystemPrompt(p.cfg.Prompts.Persona()),
	)
	if err != nil {
		return fmt.Errorf("derive answers: %w", err)
	}
	answers := AlignAnswers(ParseLines(raw), len(questions))

	rec.DerivedQuestions = append(questions, CatchAllQuestion)
	rec.DerivedAnswers = append(answers, "")
	rec.DerivedReasons = nil
	return nil
}

func (p *Pipeline) SubmitSelection(ctx context.Context, userID uuid.UUID, sel Selection) error {
	unlock, err := p.lock(ctx, userID)
	if err != nil {
		return err
	}
	defer unlock()

	rec, err := p.cfg.Store.GetCaseRecord(ctx, userID)
	if err != nil {
		return err
	}
	if !rec.Stage.Derived() || rec.IsSummon == nil {
		return fmt.Errorf("%w: submit selection at %s", ErrInvalidStage, rec.Stage)
	}

	notes := strings.TrimSpace(sel.ExtraNotes)

	if *rec.IsSummon {
		reason := strings.TrimSpace(sel.Reason)
		if reason == "" && len(sel.Indices) > 0 {
			idx := sel.Indices[0]
			if idx < 0 || idx >= len(rec.DerivedReasons) {
				return fmt.Errorf("%w: reason index %d out of range", ErrValidationFailed, idx)
			}
			reason = rec.DerivedReasons[idx]
		}
		if reason == "" && notes == "" {
			return fmt.Errorf("%w: select a reason or add notes", ErrValidationFailed)
		}
		rec.SelectedReason = reason
		rec.SelectedQuestions = nil
		rec.SelectedAnswers = nil
		rec.SubmittedTranscript = ""
	} else {
		indices, err := normalizeIndices(sel.Indices, len(rec.DerivedQuestions))
		if err != nil {
			return err
		}
		for i, a := range sel.Answers {
			if i < 0 || i >= len(rec.DerivedAnswers) {
				return fmt.Errorf("%w: answer index %d out of range", ErrValidationFailed, i)
			}
			rec.DerivedAnswers[i] = strings.TrimSpace(a)
		}

		questions := make([]string, len(indices))
		answers := make([]string, len(indices))
		for n, i := range indices {
			questions[n] = rec.DerivedQuestions[i]
			answers[n] = rec.DerivedAnswers[i]
		}
		rec.SelectedQuestions = questions
		rec.SelectedAnswers = answers
		rec.SubmittedTranscript = Transcript(questions, answers)
		rec.SelectedReason = ""
	}

	rec.ExtraNotes = notes
	rec.TargetLength = TargetLength(sel.TargetPages)
	rec.Stage = StageInputSubmitted
	rec.UpdatedAt = p.cfg.Now()
	if err := p.save(ctx, rec, rec.Version); err != nil {
		return err
	}

	return p.updateActivity(ctx, rec, func(a *ActivityEntry) {
		a.IsSummon = rec.IsSummon
		a.ExtraNotes = rec.ExtraNotes
		if *rec.IsSummon {
			a.Reasons = nil
			if rec.SelectedReason != "" {
				a.Reasons = []string{rec.SelectedReason}
			}
			a.Questions, a.Answers = nil, nil
		} else {
			a.Questions = rec.SelectedQuestions
			a.Answers = rec.SelectedAnswers
			a.Reasons = nil
		}
	})
}

func (p *Pipeline) GenerateDraft(ctx context.Context, userID uuid.UUID, currentDate time.Time) (string, error) {
	unlock, err := p.lock(ctx, userID)
	if err != nil {
		return "", err
	}
	defer unlock()

	rec, err := p.cfg.Store.GetCaseRecord(ctx, userID)
	if err != nil {
		return "", err
	}
	switch rec.Stage {
	case StageInputSubmitted, StageDraftGenerated, StageSaved:
	default:
		return "", fmt.Errorf("%w: generate draft at %s", ErrInvalidStage, rec.Stage)
	}

	req := DraftRequest{
		NoticeText:     rec.NoticeText,
		IsSummon:       rec.IsSummon != nil && *rec.IsSummon,
		SelectedReason: rec.SelectedReason,
		Transcript:     rec.SubmittedTranscript,
		ExtraNotes:     rec.ExtraNotes,
		Date:           currentDate.Format("2006-01-02"),
		WordCount:      rec.TargetLength,
	}
	if req.WordCount == 0 {
		req.WordCount = TargetLength(MinPages)
	}

	draft, err := p.cfg.LLM.Generate(ctx, p.cfg.Prompts.Draft(req),
		llm.WithSystemPrompt(p.cfg.Prompts.Persona()),
		llm.WithMaxTokens(p.cfg.MaxOutputTokens),
	)
	if err != nil {
		return "", fmt.Errorf("generate draft: %w", err)
	}
	if strings.TrimSpace(draft) == "" {
		return "", fmt.Errorf("%w: empty draft", ErrDerivationEmpty)
	}

	rec.CurrentDraft = draft
	rec.Stage = StageDraftGenerated
	rec.UpdatedAt = p.cfg.Now()
	if err := p.save(ctx, rec, rec.Version); err != nil {
		return "", err
	}

	p.log("Draft generated", map[string]interface{}{"user_id": userID, "words_requested": req.WordCount})
	return draft, nil
}

// SaveDraft commits the (possibly edited) draft. Only the transition into
// Saved counts a generated reply; saving again just overwrites the text.
func (p *Pipeline) SaveDraft(ctx context.Context, userID uuid.UUID, finalText string) error {
	if strings.TrimSpace(finalText) == "" {
		return fmt.Errorf("%w: reply text is required", ErrValidationFailed)
	}

	unlock, err := p.lock(ctx, userID)
	if err != nil {
		return err
	}
	defer unlock()

	rec, err := p.cfg.Store.GetCaseRecord(ctx, userID)
	if err != nil {
		return err
	}
	if rec.Stage != StageDraftGenerated && rec.Stage != StageSaved {
		return fmt.Errorf("%w: save draft at %s", ErrInvalidStage, rec.Stage)
	}

	firstSave := rec.Stage != StageSaved

	// The activity goes first: the stage write below is what makes the
	// save count, so a failure before it leaves the save retryable.
	var saved *ActivityEntry
	if err := p.updateActivity(ctx, rec, func(a *ActivityEntry) {
		a.ReplyText = finalText
		saved = a
	}); err != nil {
		return err
	}

	rec.CurrentDraft = finalText
	rec.Stage = StageSaved
	rec.UpdatedAt = p.cfg.Now()
	if !firstSave {
		return p.save(ctx, rec, rec.Version)
	}
	if err := p.saveCounting(ctx, rec, rec.Version, CounterRepliesGenerated); err != nil {
		return err
	}

	p.log("Reply saved", map[string]interface{}{"user_id": userID, "activity_id": rec.ActivityID})
	if p.cfg.Events != nil {
		p.cfg.Events.PublishReplySaved(ctx, saved)
	}
	return nil
}

func (p *Pipeline) Current(ctx context.Context, userID uuid.UUID) (*CaseRecord, error) {
	return p.cfg.Store.GetCaseRecord(ctx, userID)
}

func (p *Pipeline) lock(ctx context.Context, userID uuid.UUID) (func(), error) {
	unlock, err := p.cfg.Locker.Lock(ctx, "notice:"+userID.String())
	if err != nil {
		return nil, fmt.Errorf("acquire pipeline lock: %w", err)
	}
	return unlock, nil
}

func (p *Pipeline) save(ctx context.Context, rec *CaseRecord, expected int64) error {
	return p.persist(ctx, "save case record", func() error {
		return p.cfg.Store.SaveCaseRecord(ctx, rec, expected)
	})
}

func (p *Pipeline) saveCounting(ctx context.Context, rec *CaseRecord, expected int64, counter Counter) error {
	return p.persist(ctx, "save case record", func() error {
		return p.cfg.Store.SaveCaseRecordCounting(ctx, rec, expected, counter)
	})
}

func (p *Pipeline) updateActivity(ctx context.Context, rec *CaseRecord, mutate func(a *ActivityEntry)) error {
	entry, err := p.cfg.Store.GetActivity(ctx, rec.UserID, rec.ActivityID)
	if err != nil {
		return fmt.Errorf("load activity %s: %w", rec.ActivityID, err)
	}
	mutate(entry)
	entry.UpdatedAt = p.cfg.Now()
	return p.persist(ctx, "update activity", func() error {
		return p.cfg.Store.UpdateActivity(ctx, entry)
	})
}

// persist retries a store write with exponential backoff. Stale and
// missing records are not retried.
func (p *Pipeline) persist(ctx context.Context, op string, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	if p.cfg.RetryInitialInterval > 0 {
		b.InitialInterval = p.cfg.RetryInitialInterval
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := fn()
		if err == nil {
			return struct{}{}, nil
		}
		if errors.Is(err, ErrStaleRecord) || errors.Is(err, ErrNotFound) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(p.cfg.RetryMaxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			p.warn("Retrying store write", map[string]interface{}{"op": op, "error": err.Error(), "next": next.String()})
		}),
	)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStaleRecord) || errors.Is(err, ErrNotFound) {
		return err
	}
	if p.cfg.Logger != nil {
		p.cfg.Logger.Error(logModule, "Store write failed", map[string]interface{}{"op": op, "error": err.Error()})
	}
	return fmt.Errorf("%w: %s: %w", ErrStorageWriteFailed, op, err)
}

func (p *Pipeline) log(message string, details map[string]interface{}) {
	if p.cfg.Logger != nil {
		p.cfg.Logger.Info(logModule, message, details)
	}
}

func (p *Pipeline) warn(message string, details map[string]interface{}) {
	if p.cfg.Logger != nil {
		p.cfg.Logger.Warn(logModule, message, details)
	}
}

// normalizeIndices sorts and de-duplicates the selected question indices.
func normalizeIndices(indices []int, n int) ([]int, error) {
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: select at least one question", ErrValidationFailed)
	}
	seen := make(map[int]bool, len(indices))
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= n {
			return nil, fmt.Errorf("%w: question index %d out of range", ErrValidationFailed, i)
		}
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out, nil
}
