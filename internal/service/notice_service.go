package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"legal-aid-be/internal/dto"
	"legal-aid-be/internal/pkg/logger"
	"legal-aid-be/internal/repository/specification"
	"legal-aid-be/internal/repository/unitofwork"
	"legal-aid-be/pkg/notice"
	"legal-aid-be/pkg/storage"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const historySheet = "History"

type INoticeService interface {
	Upload(ctx context.Context, userId uuid.UUID, fileName, contentType string, data []byte, noticeText string) (*dto.UploadNoticeResponse, error)
	Classify(ctx context.Context, userId uuid.UUID) (*dto.DerivationResponse, error)
	Reclassify(ctx context.Context, userId uuid.UUID) (*dto.DerivationResponse, error)
	Current(ctx context.Context, userId uuid.UUID) (*dto.CaseRecordResponse, error)
	SubmitSelection(ctx context.Context, userId uuid.UUID, req *dto.SubmitSelectionRequest) (*dto.CaseRecordResponse, error)
	GenerateDraft(ctx context.Context, userId uuid.UUID) (*dto.GenerateDraftResponse, error)
	SaveDraft(ctx context.Context, userId uuid.UUID, req *dto.SaveDraftRequest) error

	GetHistory(ctx context.Context, userId uuid.UUID) ([]*dto.HistoryItemResponse, error)
	GetHistoryDetail(ctx context.Context, userId, activityId uuid.UUID) (*dto.HistoryDetailResponse, error)
	GetDocumentURL(ctx context.Context, userId, activityId uuid.UUID) (*dto.DocumentURLResponse, error)
	ExportHistory(ctx context.Context, userId uuid.UUID) ([]byte, error)
}

type noticeService struct {
	pipeline   *notice.Pipeline
	uowFactory unitofwork.RepositoryFactory
	store      notice.Store
	documents  storage.DocumentStore
	logger     logger.ILogger
	now        func() time.Time
}

func NewNoticeService(
	pipeline *notice.Pipeline,
	uowFactory unitofwork.RepositoryFactory,
	store notice.Store,
	documents storage.DocumentStore,
	logger logger.ILogger,
) INoticeService {
	return &noticeService{
		pipeline:   pipeline,
		uowFactory: uowFactory,
		store:      store,
		documents:  documents,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *noticeService) Upload(ctx context.Context, userId uuid.UUID, fileName, contentType string, data []byte, noticeText string) (*dto.UploadNoticeResponse, error) {
	entry, err := s.pipeline.Upload(ctx, notice.UploadInput{
		UserID:      userId,
		FileName:    fileName,
		ContentType: contentType,
		Data:        data,
		NoticeText:  noticeText,
	})
	if err != nil {
		return nil, err
	}
	return &dto.UploadNoticeResponse{
		ActivityId: entry.ID,
		FileName:   entry.SourceFileName,
		PageCount:  entry.PageCount,
		CreatedAt:  entry.CreatedAt,
	}, nil
}

func (s *noticeService) Classify(ctx context.Context, userId uuid.UUID) (*dto.DerivationResponse, error) {
	d, err := s.pipeline.ClassifyAndDerive(ctx, userId)
	if err != nil {
		return nil, err
	}
	return derivationResponse(d), nil
}

func (s *noticeService) Reclassify(ctx context.Context, userId uuid.UUID) (*dto.DerivationResponse, error) {
	d, err := s.pipeline.Reclassify(ctx, userId)
	if err != nil {
		return nil, err
	}
	return derivationResponse(d), nil
}

func (s *noticeService) Current(ctx context.Context, userId uuid.UUID) (*dto.CaseRecordResponse, error) {
	rec, err := s.pipeline.Current(ctx, userId)
	if err != nil {
		return nil, err
	}
	return caseRecordResponse(rec), nil
}

func (s *noticeService) SubmitSelection(ctx context.Context, userId uuid.UUID, req *dto.SubmitSelectionRequest) (*dto.CaseRecordResponse, error) {
	err := s.pipeline.SubmitSelection(ctx, userId, notice.Selection{
		Indices:     req.Indices,
		Answers:     req.Answers,
		Reason:      req.Reason,
		ExtraNotes:  req.ExtraNotes,
		TargetPages: req.TargetPages,
	})
	if err != nil {
		return nil, err
	}
	return s.Current(ctx, userId)
}

func (s *noticeService) GenerateDraft(ctx context.Context, userId uuid.UUID) (*dto.GenerateDraftResponse, error) {
	draft, err := s.pipeline.GenerateDraft(ctx, userId, s.now())
	if err != nil {
		return nil, err
	}
	rec, err := s.pipeline.Current(ctx, userId)
	if err != nil {
		return nil, err
	}
	return &dto.GenerateDraftResponse{Draft: draft, TargetLength: rec.TargetLength}, nil
}

func (s *noticeService) SaveDraft(ctx context.Context, userId uuid.UUID, req *dto.SaveDraftRequest) error {
	return s.pipeline.SaveDraft(ctx, userId, req.Text)
}

// GetHistory lists every upload, newest first.
func (s *noticeService) GetHistory(ctx context.Context, userId uuid.UUID) ([]*dto.HistoryItemResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	activities, err := uow.ActivityRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.Chronological{Desc: true},
	)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.HistoryItemResponse, 0, len(activities))
	for _, a := range activities {
		resp = append(resp, &dto.HistoryItemResponse{
			Id:        a.Id,
			FileName:  a.SourceFileName,
			IsSummon:  a.IsSummon,
			HasReply:  strings.TrimSpace(a.ReplyText) != "",
			CreatedAt: a.CreatedAt,
		})
	}
	return resp, nil
}

func (s *noticeService) GetHistoryDetail(ctx context.Context, userId, activityId uuid.UUID) (*dto.HistoryDetailResponse, error) {
	entry, err := s.store.GetActivity(ctx, userId, activityId)
	if err != nil {
		return nil, err
	}
	return &dto.HistoryDetailResponse{
		Id:         entry.ID,
		FileName:   entry.SourceFileName,
		PageCount:  entry.PageCount,
		IsSummon:   entry.IsSummon,
		Questions:  nonNil(entry.Questions),
		Answers:    nonNil(entry.Answers),
		Reasons:    nonNil(entry.Reasons),
		ExtraNotes: entry.ExtraNotes,
		ReplyText:  entry.ReplyText,
		CreatedAt:  entry.CreatedAt,
		UpdatedAt:  entry.UpdatedAt,
	}, nil
}

func (s *noticeService) GetDocumentURL(ctx context.Context, userId, activityId uuid.UUID) (*dto.DocumentURLResponse, error) {
	entry, err := s.store.GetActivity(ctx, userId, activityId)
	if err != nil {
		return nil, err
	}

	u, err := s.documents.IssueAccessURL(ctx, storage.Locator(entry.FileLocator))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidLocator) {
			return nil, fmt.Errorf("document for activity %s: %w", activityId, notice.ErrNotFound)
		}
		return nil, err
	}
	return &dto.DocumentURLResponse{URL: u.URL, ExpiresAt: u.ExpiresAt}, nil
}

// ExportHistory renders every activity of the user as one worksheet row.
func (s *noticeService) ExportHistory(ctx context.Context, userId uuid.UUID) ([]byte, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	activities, err := uow.ActivityRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.Chronological{Desc: true},
	)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return nil, err
	}

	header := []interface{}{"Uploaded At", "File Name", "Pages", "Type", "Questions", "Answers", "Reasons", "Extra Notes", "Reply"}
	if err := f.SetSheetRow(historySheet, "A1", &header); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(historySheet, 1, 1, bold); err != nil {
		return nil, err
	}

	for i, a := range activities {
		row := []interface{}{
			a.CreatedAt.Format(time.RFC3339),
			a.SourceFileName,
			a.PageCount,
			noticeKind(a.IsSummon),
			strings.Join(a.Questions, "\n"),
			strings.Join(a.Answers, "\n"),
			strings.Join(a.Reasons, "\n"),
			a.ExtraNotes,
			a.ReplyText,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(historySheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render history workbook: %w", err)
	}

	s.logger.Info("NOTICE", "History exported", map[string]interface{}{
		"user_id": userId.String(),
		"rows":    len(activities),
	})
	return buf.Bytes(), nil
}

func noticeKind(isSummon *bool) string {
	switch {
	case isSummon == nil:
		return "Unclassified"
	case *isSummon:
		return "Summon"
	default:
		return "Notice"
	}
}

func derivationResponse(d *notice.Derivation) *dto.DerivationResponse {
	if d.IsSummon {
		return &dto.DerivationResponse{IsSummon: true, Reasons: d.Reasons}
	}
	return &dto.DerivationResponse{IsSummon: false, Questions: d.Questions, Answers: d.Answers}
}

func caseRecordResponse(rec *notice.CaseRecord) *dto.CaseRecordResponse {
	return &dto.CaseRecordResponse{
		ActivityId:        rec.ActivityID,
		Stage:             string(rec.Stage),
		NoticeText:        rec.NoticeText,
		IsSummon:          rec.IsSummon,
		Questions:         nonNil(rec.DerivedQuestions),
		Answers:           nonNil(rec.DerivedAnswers),
		Reasons:           nonNil(rec.DerivedReasons),
		SelectedQuestions: nonNil(rec.SelectedQuestions),
		SelectedAnswers:   nonNil(rec.SelectedAnswers),
		SelectedReason:    rec.SelectedReason,
		ExtraNotes:        rec.ExtraNotes,
		TargetLength:      rec.TargetLength,
		CurrentDraft:      rec.CurrentDraft,
		Version:           rec.Version,
		UpdatedAt:         rec.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
