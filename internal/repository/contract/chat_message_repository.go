package contract

import (
	"context"

	"legal-aid-be/internal/entity"
	"legal-aid-be/internal/repository/specification"
)

type ChatMessageRepository interface {
	// CreateBulk keeps slice order as creation order.
	CreateBulk(ctx context.Context, messages []*entity.ChatMessage) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
