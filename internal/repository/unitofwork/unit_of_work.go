package unitofwork

import (
	"context"

	"legal-aid-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	CaseRecordRepository() contract.CaseRecordRepository
	ActivityRepository() contract.ActivityRepository
	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
}
