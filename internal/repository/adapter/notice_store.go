package adapter

import (
	"context"
	"errors"
	"fmt"

	"legal-aid-be/internal/entity"
	"legal-aid-be/internal/repository/contract"
	"legal-aid-be/internal/repository/specification"
	"legal-aid-be/internal/repository/unitofwork"
	"legal-aid-be/pkg/notice"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NoticeStore implements notice.Store on top of the unit of work.
type NoticeStore struct {
	uowFactory unitofwork.RepositoryFactory
}

var _ notice.Store = (*NoticeStore)(nil)

func NewNoticeStore(uowFactory unitofwork.RepositoryFactory) *NoticeStore {
	return &NoticeStore{uowFactory: uowFactory}
}

func (s *NoticeStore) GetCaseRecord(ctx context.Context, userID uuid.UUID) (*notice.CaseRecord, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	rec, err := uow.CaseRecordRepository().FindOne(ctx, specification.ByCaseRecordID{ID: notice.CaseRecordID(userID)})
	if err != nil {
		return nil, fmt.Errorf("find case record: %w", err)
	}
	if rec == nil {
		return nil, notice.ErrNotFound
	}
	return caseRecordToDomain(rec), nil
}

func (s *NoticeStore) SaveCaseRecord(ctx context.Context, record *notice.CaseRecord, expectedVersion int64) error {
	e, err := saveCaseRecord(ctx, s.uowFactory.NewUnitOfWork(ctx), record, expectedVersion)
	if err != nil {
		return err
	}
	record.Version = e.Version
	record.UpdatedAt = e.UpdatedAt
	return nil
}

// SaveCaseRecordCounting commits the record write and the counter bump in
// one transaction. record is left untouched when either fails.
func (s *NoticeStore) SaveCaseRecordCounting(ctx context.Context, record *notice.CaseRecord, expectedVersion int64, counter notice.Counter) error {
	var saved *entity.CaseRecord
	err := unitofwork.InTransaction(ctx, s.uowFactory, func(tx unitofwork.UnitOfWork) error {
		e, err := saveCaseRecord(ctx, tx, record, expectedVersion)
		if err != nil {
			return err
		}
		if err := incrementCounter(ctx, tx, record.UserID, counter); err != nil {
			return err
		}
		saved = e
		return nil
	})
	if err != nil {
		return err
	}
	record.Version = saved.Version
	record.UpdatedAt = saved.UpdatedAt
	return nil
}

func saveCaseRecord(ctx context.Context, uow unitofwork.UnitOfWork, record *notice.CaseRecord, expectedVersion int64) (*entity.CaseRecord, error) {
	repo := uow.CaseRecordRepository()
	e := caseRecordFromDomain(record)

	if expectedVersion == 0 {
		if err := repo.Create(ctx, e); err != nil {
			// A concurrent first write wins; ours is stale.
			if existing, findErr := repo.FindOne(ctx, specification.ByCaseRecordID{ID: e.Id}); findErr == nil && existing != nil {
				return nil, notice.ErrStaleRecord
			}
			return nil, fmt.Errorf("create case record: %w", err)
		}
		return e, nil
	}

	err := repo.UpdateVersioned(ctx, e, expectedVersion)
	switch {
	case errors.Is(err, contract.ErrVersionConflict):
		existing, findErr := repo.FindOne(ctx, specification.ByCaseRecordID{ID: e.Id})
		if findErr != nil {
			return nil, fmt.Errorf("find case record: %w", findErr)
		}
		if existing == nil {
			return nil, notice.ErrNotFound
		}
		return nil, notice.ErrStaleRecord
	case err != nil:
		return nil, fmt.Errorf("update case record: %w", err)
	}
	return e, nil
}

func (s *NoticeStore) CreateActivity(ctx context.Context, entry *notice.ActivityEntry) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	e := activityFromDomain(entry)
	if err := uow.ActivityRepository().Create(ctx, e); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	entry.ID = e.Id
	entry.CreatedAt = e.CreatedAt
	entry.UpdatedAt = e.UpdatedAt
	return nil
}

func (s *NoticeStore) GetActivity(ctx context.Context, userID, activityID uuid.UUID) (*notice.ActivityEntry, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	a, err := uow.ActivityRepository().FindOne(ctx,
		specification.ByID{ID: activityID},
		specification.UserOwnedBy{UserID: userID},
	)
	if err != nil {
		return nil, fmt.Errorf("find activity: %w", err)
	}
	if a == nil {
		return nil, notice.ErrNotFound
	}
	return activityToDomain(a), nil
}

func (s *NoticeStore) GetLatestActivity(ctx context.Context, userID uuid.UUID) (*notice.ActivityEntry, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	a, err := uow.ActivityRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userID},
		specification.Latest{},
	)
	if err != nil {
		return nil, fmt.Errorf("find latest activity: %w", err)
	}
	if a == nil {
		return nil, notice.ErrNotFound
	}
	return activityToDomain(a), nil
}

func (s *NoticeStore) UpdateActivity(ctx context.Context, entry *notice.ActivityEntry) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	e := activityFromDomain(entry)
	ok, err := uow.ActivityRepository().Update(ctx, e)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	if !ok {
		return notice.ErrNotFound
	}
	entry.UpdatedAt = e.UpdatedAt
	return nil
}

func incrementCounter(ctx context.Context, uow unitofwork.UnitOfWork, userID uuid.UUID, counter notice.Counter) error {
	err := uow.UserRepository().IncrementCounter(ctx, userID, string(counter))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notice.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("increment %s: %w", counter, err)
	}
	return nil
}

func caseRecordToDomain(e *entity.CaseRecord) *notice.CaseRecord {
	return &notice.CaseRecord{
		ID:                  e.Id,
		UserID:              e.UserId,
		ActivityID:          e.ActivityId,
		NoticeText:          e.NoticeText,
		IsSummon:            e.IsSummon,
		DerivedQuestions:    e.Questions,
		DerivedAnswers:      e.Answers,
		DerivedReasons:      e.Reasons,
		SelectedQuestions:   e.SelectedQuestions,
		SelectedAnswers:     e.SelectedAnswers,
		SelectedReason:      e.SelectedReason,
		ExtraNotes:          e.ExtraNotes,
		SubmittedTranscript: e.SubmittedData,
		TargetLength:        e.TargetLength,
		CurrentDraft:        e.CurrentDraft,
		Stage:               notice.Stage(e.Stage),
		Version:             e.Version,
		UpdatedAt:           e.UpdatedAt,
	}
}

func caseRecordFromDomain(r *notice.CaseRecord) *entity.CaseRecord {
	return &entity.CaseRecord{
		Id:                r.ID,
		UserId:            r.UserID,
		ActivityId:        r.ActivityID,
		NoticeText:        r.NoticeText,
		IsSummon:          r.IsSummon,
		Questions:         r.DerivedQuestions,
		Answers:           r.DerivedAnswers,
		Reasons:           r.DerivedReasons,
		SelectedQuestions: r.SelectedQuestions,
		SelectedAnswers:   r.SelectedAnswers,
		SelectedReason:    r.SelectedReason,
		ExtraNotes:        r.ExtraNotes,
		SubmittedData:     r.SubmittedTranscript,
		TargetLength:      r.TargetLength,
		CurrentDraft:      r.CurrentDraft,
		Stage:             string(r.Stage),
		UpdatedAt:         r.UpdatedAt,
	}
}

func activityToDomain(e *entity.Activity) *notice.ActivityEntry {
	return &notice.ActivityEntry{
		ID:             e.Id,
		UserID:         e.UserId,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
		SourceFileName: e.SourceFileName,
		FileLocator:    e.FileLocator,
		PageCount:      e.PageCount,
		IsSummon:       e.IsSummon,
		Questions:      e.Questions,
		Answers:        e.Answers,
		Reasons:        e.Reasons,
		ExtraNotes:     e.ExtraNotes,
		ReplyText:      e.ReplyText,
	}
}

func activityFromDomain(a *notice.ActivityEntry) *entity.Activity {
	return &entity.Activity{
		Id:             a.ID,
		UserId:         a.UserID,
		SourceFileName: a.SourceFileName,
		FileLocator:    a.FileLocator,
		PageCount:      a.PageCount,
		IsSummon:       a.IsSummon,
		Questions:      a.Questions,
		Answers:        a.Answers,
		Reasons:        a.Reasons,
		ExtraNotes:     a.ExtraNotes,
		ReplyText:      a.ReplyText,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}
