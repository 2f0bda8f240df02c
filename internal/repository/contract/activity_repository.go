package contract

import (
	"context"

	"legal-aid-be/internal/entity"
	"legal-aid-be/internal/repository/specification"
)

type ActivityRepository interface {
	Create(ctx context.Context, activity *entity.Activity) error
	// Update returns false when no row matched the id and owner.
	Update(ctx context.Context, activity *entity.Activity) (bool, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Activity, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Activity, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
