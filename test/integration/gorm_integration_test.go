package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"legal-aid-be/internal/entity"
	"legal-aid-be/internal/model"
	"legal-aid-be/internal/repository/adapter"
	"legal-aid-be/internal/repository/specification"
	"legal-aid-be/internal/repository/unitofwork"
	"legal-aid-be/pkg/database"
	"legal-aid-be/pkg/notice"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real database, e.g.
// DB_DRIVER=postgres DB_CONNECTION_STRING=postgres://... go test ./test/integration/...
func TestGormPersistence(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.Open(os.Getenv("DB_DRIVER"), dsn)
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(model.All()...))

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Ping())

	ctx := context.Background()
	factory := unitofwork.NewRepositoryFactory(gormDB)
	store := adapter.NewNoticeStore(factory)

	user := &entity.User{
		Email:         "integration-" + uuid.NewString() + "@example.com",
		PasswordHash:  "x",
		FullName:      "Integration Test User",
		Role:          entity.UserRoleUser,
		Status:        entity.UserStatusActive,
		EmailVerified: true,
	}
	require.NoError(t, factory.NewUnitOfWork(ctx).UserRepository().Create(ctx, user))

	t.Run("Case record and activity survive a round trip", func(t *testing.T) {
		entry := &notice.ActivityEntry{
			ID:             uuid.New(),
			UserID:         user.Id,
			SourceFileName: "notice.pdf",
			FileLocator:    "notices/" + user.Id.String() + "/notice.pdf",
			PageCount:      2,
		}
		require.NoError(t, store.CreateActivity(ctx, entry))

		rec := &notice.CaseRecord{
			ID:         notice.CaseRecordID(user.Id),
			UserID:     user.Id,
			ActivityID: entry.ID,
			NoticeText: "Legal notice under section 138",
			Stage:      notice.StageUploaded,
			UpdatedAt:  time.Now(),
		}
		require.NoError(t, store.SaveCaseRecord(ctx, rec, 0))

		stale := *rec
		assert.ErrorIs(t, store.SaveCaseRecord(ctx, &stale, 0), notice.ErrStaleRecord)

		latest, err := store.GetLatestActivity(ctx, user.Id)
		require.NoError(t, err)
		assert.Equal(t, entry.ID, latest.ID)
		assert.Equal(t, 2, latest.PageCount)
	})

	t.Run("Usage counters increment with the record write", func(t *testing.T) {
		rec, err := store.GetCaseRecord(ctx, user.Id)
		require.NoError(t, err)
		rec.Stage = notice.StageClassified
		require.NoError(t, store.SaveCaseRecordCounting(ctx, rec, rec.Version, notice.CounterUploads))

		got, err := factory.NewUnitOfWork(ctx).UserRepository().FindOne(ctx, specification.ByID{ID: user.Id})
		require.NoError(t, err)
		assert.Equal(t, 1, got.UploadsCount)
	})

	t.Run("Deleting a chat session removes its messages in one transaction", func(t *testing.T) {
		sess := &entity.ChatSession{UserId: user.Id, Title: "Integration"}
		require.NoError(t, factory.NewUnitOfWork(ctx).ChatSessionRepository().Create(ctx, sess))

		err := unitofwork.InTransaction(ctx, factory, func(tx unitofwork.UnitOfWork) error {
			return tx.ChatMessageRepository().CreateBulk(ctx, []*entity.ChatMessage{
				{ChatSessionId: sess.Id, Role: "user", Chat: "hello", VisibleToUser: true},
				{ChatSessionId: sess.Id, Role: "model", Chat: "hi", VisibleToUser: true},
			})
		})
		require.NoError(t, err)

		err = unitofwork.InTransaction(ctx, factory, func(tx unitofwork.UnitOfWork) error {
			return tx.ChatSessionRepository().Delete(ctx, sess.Id)
		})
		require.NoError(t, err)

		remaining, err := factory.NewUnitOfWork(ctx).ChatMessageRepository().Count(ctx, specification.ByChatSessionID{ChatSessionID: sess.Id})
		require.NoError(t, err)
		assert.Zero(t, remaining)
	})
}
