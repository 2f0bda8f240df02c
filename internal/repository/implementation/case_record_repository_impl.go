package implementation

import (
	"context"
	"errors"
	"time"

	"legal-aid-be/internal/entity"
	"legal-aid-be/internal/mapper"
	"legal-aid-be/internal/model"
	"legal-aid-be/internal/repository/contract"
	"legal-aid-be/internal/repository/specification"

	"gorm.io/gorm"
)

type CaseRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoticeMapper
}

func NewCaseRecordRepository(db *gorm.DB) contract.CaseRecordRepository {
	return &CaseRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoticeMapper(),
	}
}

func (r *CaseRecordRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CaseRecord, error) {
	var m model.CaseRecord
	query := specification.Apply(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.CaseRecordToEntity(&m), nil
}

func (r *CaseRecordRepositoryImpl) Create(ctx context.Context, record *entity.CaseRecord) error {
	record.Version = 1
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now()
	}
	m := r.mapper.CaseRecordToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.CaseRecordToEntity(m)
	return nil
}

func (r *CaseRecordRepositoryImpl) UpdateVersioned(ctx context.Context, record *entity.CaseRecord, expectedVersion int64) error {
	record.Version = expectedVersion + 1
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now()
	}
	m := r.mapper.CaseRecordToModel(record)

	res := r.db.WithContext(ctx).Model(&model.CaseRecord{}).
		Where("id = ? AND version = ?", m.Id, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(m)
	if res.Error != nil {
		record.Version = expectedVersion
		return res.Error
	}
	if res.RowsAffected == 0 {
		record.Version = expectedVersion
		return contract.ErrVersionConflict
	}
	return nil
}
