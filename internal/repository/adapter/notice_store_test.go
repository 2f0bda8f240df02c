package adapter

import (
	"context"
	"testing"
	"time"

	"legal-aid-be/internal/repository/specification"
	"legal-aid-be/internal/repository/unitofwork"
	"legal-aid-be/internal/testutil"
	"legal-aid-be/pkg/notice"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*NoticeStore, unitofwork.RepositoryFactory) {
	t.Helper()
	factory := unitofwork.NewRepositoryFactory(testutil.NewDB(t))
	return NewNoticeStore(factory), factory
}

func boolPtr(b bool) *bool { return &b }

func TestNoticeStore_CaseRecordRoundTrip(t *testing.T) {
	store, factory := newTestStore(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, factory, "a@example.com")

	_, err := store.GetCaseRecord(ctx, user.Id)
	require.ErrorIs(t, err, notice.ErrNotFound)

	rec := &notice.CaseRecord{
		ID:               notice.CaseRecordID(user.Id),
		UserID:           user.Id,
		ActivityID:       uuid.New(),
		NoticeText:       "Demand notice",
		IsSummon:         boolPtr(false),
		DerivedQuestions: []string{"Did you receive the goods", "When did you pay", notice.CatchAllQuestion},
		DerivedAnswers:   []string{"Yes", "", ""},
		Stage:            notice.StageAwaitingUserInput,
		UpdatedAt:        time.Now(),
	}
	require.NoError(t, store.SaveCaseRecord(ctx, rec, 0))
	assert.Equal(t, int64(1), rec.Version)

	got, err := store.GetCaseRecord(ctx, user.Id)
	require.NoError(t, err)
	assert.Equal(t, "CD"+user.Id.String(), got.ID)
	assert.Equal(t, rec.ActivityID, got.ActivityID)
	assert.Equal(t, []string{"Did you receive the goods", "When did you pay", notice.CatchAllQuestion}, got.DerivedQuestions)
	assert.Equal(t, []string{"Yes", "", ""}, got.DerivedAnswers)
	assert.Empty(t, got.DerivedReasons)
	require.NotNil(t, got.IsSummon)
	assert.False(t, *got.IsSummon)
	assert.Equal(t, notice.StageAwaitingUserInput, got.Stage)
}

func TestNoticeStore_ListItemsContainingJoiners(t *testing.T) {
	store, factory := newTestStore(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, factory, "joiner@example.com")

	questions := []string{"Were any items (e.g., chairs) damaged?", "Did you reply?, and when", notice.CatchAllQuestion}
	answers := []string{"Yes, several items (e.g., chairs) arrived damaged.", "On 5 March.", ""}
	reasons := []string{
		"I had a medical emergency (e.g., surgery) on that date.",
		"I was travelling abroad.",
		"I need time to engage counsel.",
	}

	rec := &notice.CaseRecord{
		ID:                notice.CaseRecordID(user.Id),
		UserID:            user.Id,
		ActivityID:        uuid.New(),
		NoticeText:        "Notice",
		IsSummon:          boolPtr(false),
		DerivedQuestions:  questions,
		DerivedAnswers:    answers,
		DerivedReasons:    reasons,
		SelectedQuestions: questions[:2],
		SelectedAnswers:   answers[:2],
		Stage:             notice.StageInputSubmitted,
	}
	require.NoError(t, store.SaveCaseRecord(ctx, rec, 0))

	got, err := store.GetCaseRecord(ctx, user.Id)
	require.NoError(t, err)
	assert.Equal(t, questions, got.DerivedQuestions)
	assert.Equal(t, answers, got.DerivedAnswers)
	assert.Equal(t, reasons, got.DerivedReasons)
	assert.Equal(t, questions[:2], got.SelectedQuestions)
	assert.Equal(t, answers[:2], got.SelectedAnswers)

	entry := &notice.ActivityEntry{ID: uuid.New(), UserID: user.Id, SourceFileName: "n.pdf", FileLocator: "u/n.pdf"}
	require.NoError(t, store.CreateActivity(ctx, entry))
	entry.Questions, entry.Answers, entry.Reasons = questions, answers, reasons[:1]
	require.NoError(t, store.UpdateActivity(ctx, entry))

	activity, err := store.GetActivity(ctx, user.Id, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, questions, activity.Questions)
	assert.Equal(t, answers, activity.Answers)
	assert.Equal(t, reasons[:1], activity.Reasons)
}

func TestNoticeStore_VersionedWrites(t *testing.T) {
	store, factory := newTestStore(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, factory, "b@example.com")

	rec := &notice.CaseRecord{
		ID: notice.CaseRecordID(user.Id), UserID: user.Id, ActivityID: uuid.New(),
		NoticeText: "text", Stage: notice.StageUploaded,
	}
	require.NoError(t, store.SaveCaseRecord(ctx, rec, 0))

	// A second first write loses.
	dup := *rec
	assert.ErrorIs(t, store.SaveCaseRecord(ctx, &dup, 0), notice.ErrStaleRecord)

	rec.Stage = notice.StageClassified
	require.NoError(t, store.SaveCaseRecord(ctx, rec, 1))
	assert.Equal(t, int64(2), rec.Version)

	stale := *rec
	stale.Stage = notice.StageSaved
	assert.ErrorIs(t, store.SaveCaseRecord(ctx, &stale, 1), notice.ErrStaleRecord)

	got, err := store.GetCaseRecord(ctx, user.Id)
	require.NoError(t, err)
	assert.Equal(t, notice.StageClassified, got.Stage)
	assert.Equal(t, int64(2), got.Version)

	// Clearing a field writes the zero value.
	rec.IsSummon = boolPtr(true)
	require.NoError(t, store.SaveCaseRecord(ctx, rec, 2))
	rec.IsSummon = nil
	require.NoError(t, store.SaveCaseRecord(ctx, rec, 3))
	got, err = store.GetCaseRecord(ctx, user.Id)
	require.NoError(t, err)
	assert.Nil(t, got.IsSummon)
}

func TestNoticeStore_UpdateMissingRecord(t *testing.T) {
	store, _ := newTestStore(t)
	userID := uuid.New()
	rec := &notice.CaseRecord{ID: notice.CaseRecordID(userID), UserID: userID, Stage: notice.StageUploaded}

	assert.ErrorIs(t, store.SaveCaseRecord(context.Background(), rec, 4), notice.ErrNotFound)
}

func TestNoticeStore_Activities(t *testing.T) {
	store, factory := newTestStore(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, factory, "c@example.com")
	other := testutil.SeedUser(t, factory, "d@example.com")

	_, err := store.GetLatestActivity(ctx, user.Id)
	require.ErrorIs(t, err, notice.ErrNotFound)

	base := time.Now().Add(-time.Hour)
	first := &notice.ActivityEntry{ID: uuid.New(), UserID: user.Id, SourceFileName: "one.pdf", FileLocator: "u/1-one.pdf", CreatedAt: base, UpdatedAt: base}
	second := &notice.ActivityEntry{ID: uuid.New(), UserID: user.Id, SourceFileName: "two.pdf", FileLocator: "u/2-two.pdf", PageCount: 4, CreatedAt: base.Add(time.Minute), UpdatedAt: base}
	require.NoError(t, store.CreateActivity(ctx, first))
	require.NoError(t, store.CreateActivity(ctx, second))

	latest, err := store.GetLatestActivity(ctx, user.Id)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, 4, latest.PageCount)

	second.IsSummon = boolPtr(true)
	second.Reasons = []string{"I am travelling on the hearing date."}
	second.ExtraNotes = "Request adjournment"
	second.ReplyText = "Dear Sir"
	require.NoError(t, store.UpdateActivity(ctx, second))

	got, err := store.GetActivity(ctx, user.Id, second.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"I am travelling on the hearing date."}, got.Reasons)
	assert.Equal(t, "Dear Sir", got.ReplyText)
	require.NotNil(t, got.IsSummon)
	assert.True(t, *got.IsSummon)

	_, err = store.GetActivity(ctx, other.Id, second.ID)
	assert.ErrorIs(t, err, notice.ErrNotFound, "ownership enforced")

	foreign := *second
	foreign.UserID = other.Id
	assert.ErrorIs(t, store.UpdateActivity(ctx, &foreign), notice.ErrNotFound)
}

func TestNoticeStore_SaveCaseRecordCounting(t *testing.T) {
	store, factory := newTestStore(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, factory, "e@example.com")

	rec := &notice.CaseRecord{
		ID:         notice.CaseRecordID(user.Id),
		UserID:     user.Id,
		ActivityID: uuid.New(),
		NoticeText: "Demand notice",
		Stage:      notice.StageUploaded,
		UpdatedAt:  time.Now(),
	}
	require.NoError(t, store.SaveCaseRecordCounting(ctx, rec, 0, notice.CounterUploads))
	assert.Equal(t, int64(1), rec.Version)

	rec.Stage = notice.StageSaved
	require.NoError(t, store.SaveCaseRecordCounting(ctx, rec, rec.Version, notice.CounterRepliesGenerated))
	assert.Equal(t, int64(2), rec.Version)

	stale := *rec
	stale.CurrentDraft = "stale"
	assert.ErrorIs(t, store.SaveCaseRecordCounting(ctx, &stale, 1, notice.CounterRepliesGenerated), notice.ErrStaleRecord)

	got, err := factory.NewUnitOfWork(ctx).UserRepository().FindOne(ctx, specification.ByID{ID: user.Id})
	require.NoError(t, err)
	assert.Equal(t, 1, got.UploadsCount)
	assert.Equal(t, 1, got.RepliesGeneratedCount, "a stale write counts nothing")

	stored, err := store.GetCaseRecord(ctx, user.Id)
	require.NoError(t, err)
	assert.Equal(t, notice.StageSaved, stored.Stage)
	assert.Empty(t, stored.CurrentDraft)
}

func TestNoticeStore_SaveCaseRecordCountingRollsBack(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	ghost := uuid.New()

	rec := &notice.CaseRecord{
		ID:         notice.CaseRecordID(ghost),
		UserID:     ghost,
		ActivityID: uuid.New(),
		NoticeText: "Demand notice",
		Stage:      notice.StageUploaded,
		UpdatedAt:  time.Now(),
	}
	err := store.SaveCaseRecordCounting(ctx, rec, 0, notice.CounterUploads)
	assert.ErrorIs(t, err, notice.ErrNotFound)
	assert.Zero(t, rec.Version)

	_, err = store.GetCaseRecord(ctx, ghost)
	assert.ErrorIs(t, err, notice.ErrNotFound, "record write rolled back with the counter")
}
