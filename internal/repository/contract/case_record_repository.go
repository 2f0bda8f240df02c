package contract

import (
	"context"
	"errors"

	"legal-aid-be/internal/entity"
	"legal-aid-be/internal/repository/specification"
)

// ErrVersionConflict is returned when a versioned update matched no row.
var ErrVersionConflict = errors.New("version conflict")

type CaseRecordRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CaseRecord, error)
	Create(ctx context.Context, record *entity.CaseRecord) error
	// UpdateVersioned writes every column when the stored version equals
	// expectedVersion and bumps the version by one.
	UpdateVersioned(ctx context.Context, record *entity.CaseRecord, expectedVersion int64) error
}
