package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"legal-aid-be/internal/constant"
	"legal-aid-be/internal/dto"
	"legal-aid-be/internal/repository/adapter"
	"legal-aid-be/internal/testutil"
	"legal-aid-be/pkg/notice"
	"legal-aid-be/pkg/pdf"
	"legal-aid-be/pkg/storage/local"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fixedInspector struct{ pages int }

func (f fixedInspector) Inspect(ctx context.Context, data []byte) (*pdf.Info, error) {
	return &pdf.Info{Pages: f.pages}, nil
}

type noticeFixture struct {
	svc     INoticeService
	llm     *fakeLLM
	userID  uuid.UUID
	otherID uuid.UUID
}

func newNoticeFixture(t *testing.T, replies ...string) *noticeFixture {
	t.Helper()
	factory := newFactory(t)
	user := testutil.SeedUser(t, factory, "notice@example.com")
	other := testutil.SeedUser(t, factory, "other@example.com")

	docs, err := local.New(t.TempDir(), "http://localhost:3000", []byte("secret"))
	require.NoError(t, err)

	store := adapter.NewNoticeStore(factory)
	provider := &fakeLLM{replies: replies}
	pipeline := notice.NewPipeline(notice.Config{
		Store:     store,
		LLM:       provider,
		Documents: docs,
		Inspector: fixedInspector{pages: 2},
		Prompts:   constant.NoticePrompts{},
		Logger:    nopLogger(),
		Now:       func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) },
	})

	return &noticeFixture{
		svc:     NewNoticeService(pipeline, factory, store, docs, nopLogger()),
		llm:     provider,
		userID:  user.Id,
		otherID: other.Id,
	}
}

func TestNoticeService_SummonFlowToHistory(t *testing.T) {
	ctx := context.Background()
	f := newNoticeFixture(t, "TRUE", "Unpaid rent\nLate filing", "To the Court,\nReply body.")

	up, err := f.svc.Upload(ctx, f.userID, "summon.pdf", "application/pdf", []byte("%PDF-1.4"), "You are summoned to appear.")
	require.NoError(t, err)
	assert.Equal(t, 2, up.PageCount)

	d, err := f.svc.Classify(ctx, f.userID)
	require.NoError(t, err)
	assert.True(t, d.IsSummon)
	assert.Equal(t, []string{"Unpaid rent", "Late filing"}, d.Reasons)
	assert.Empty(t, d.Questions)

	rec, err := f.svc.SubmitSelection(ctx, f.userID, &dto.SubmitSelectionRequest{Indices: []int{1}, TargetPages: 1})
	require.NoError(t, err)
	assert.Equal(t, "Late filing", rec.SelectedReason)
	assert.Equal(t, 750, rec.TargetLength)
	assert.Equal(t, string(notice.StageInputSubmitted), rec.Stage)

	draft, err := f.svc.GenerateDraft(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, "To the Court,\nReply body.", draft.Draft)
	assert.Equal(t, 750, draft.TargetLength)
	assert.Equal(t, 3, f.llm.calls)

	require.NoError(t, f.svc.SaveDraft(ctx, f.userID, &dto.SaveDraftRequest{Text: "Final reply"}))

	history, err := f.svc.GetHistory(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].HasReply)
	assert.Equal(t, "summon.pdf", history[0].FileName)

	detail, err := f.svc.GetHistoryDetail(ctx, f.userID, up.ActivityId)
	require.NoError(t, err)
	assert.Equal(t, "Final reply", detail.ReplyText)
	require.NotNil(t, detail.IsSummon)
	assert.True(t, *detail.IsSummon)

	url, err := f.svc.GetDocumentURL(ctx, f.userID, up.ActivityId)
	require.NoError(t, err)
	assert.Contains(t, url.URL, "/api/documents/download?token=")

	empty, err := f.svc.GetHistory(ctx, f.otherID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestNoticeService_HistoryOwnership(t *testing.T) {
	ctx := context.Background()
	f := newNoticeFixture(t)

	up, err := f.svc.Upload(ctx, f.userID, "notice.pdf", "application/pdf", []byte("%PDF-1.4"), "Pay within 7 days.")
	require.NoError(t, err)

	_, err = f.svc.GetHistoryDetail(ctx, f.otherID, up.ActivityId)
	assert.ErrorIs(t, err, notice.ErrNotFound)

	_, err = f.svc.GetDocumentURL(ctx, f.otherID, up.ActivityId)
	assert.ErrorIs(t, err, notice.ErrNotFound)

	_, err = f.svc.Current(ctx, f.otherID)
	assert.ErrorIs(t, err, notice.ErrNotFound)
}

func TestNoticeService_ExportHistory(t *testing.T) {
	ctx := context.Background()
	f := newNoticeFixture(t)

	for _, name := range []string{"first.pdf", "second.pdf"} {
		_, err := f.svc.Upload(ctx, f.userID, name, "application/pdf", []byte("%PDF-1.4"), "Notice text")
		require.NoError(t, err)
	}

	data, err := f.svc.ExportHistory(ctx, f.userID)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(historySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "File Name", rows[0][1])
	assert.ElementsMatch(t, []string{"first.pdf", "second.pdf"}, []string{rows[1][1], rows[2][1]})
	assert.Equal(t, "Unclassified", rows[1][3])
}

func TestNoticeService_SelectionSurvivesPunctuatedItems(t *testing.T) {
	questions := []string{
		"Is the claim for rent?, or for damages?",
		"When did you return the furniture (e.g., chairs)?",
		"Was any payment made?",
	}
	answers := []string{
		"Rent only., not damages.",
		"On 5 March (e.g., before the deadline).",
		"No.",
	}
	reasons := []string{
		"Unpaid rent",
		"Damage to fixtures, e.g., the doors.",
		"Breach of the lease?, as alleged",
	}

	tests := []struct {
		name          string
		replies       []string
		req           *dto.SubmitSelectionRequest
		wantQuestions []string
		wantAnswers   []string
		wantReason    string
	}{
		{
			name:          "deselected question keeps answers aligned",
			replies:       []string{"FALSE", strings.Join(questions, "\n"), strings.Join(answers, "\n")},
			req:           &dto.SubmitSelectionRequest{Indices: []int{2, 1}},
			wantQuestions: questions[1:],
			wantAnswers:   answers[1:],
		},
		{
			name:          "reason picked by index",
			replies:       []string{"TRUE", strings.Join(reasons, "\n")},
			req:           &dto.SubmitSelectionRequest{Indices: []int{2}},
			wantQuestions: []string{},
			wantAnswers:   []string{},
			wantReason:    reasons[2],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newNoticeFixture(t, tt.replies...)

			_, err := f.svc.Upload(ctx, f.userID, "notice.pdf", "application/pdf", []byte("%PDF-1.4"), "Notice text")
			require.NoError(t, err)
			_, err = f.svc.Classify(ctx, f.userID)
			require.NoError(t, err)

			current, err := f.svc.Current(ctx, f.userID)
			require.NoError(t, err)
			if tt.wantReason == "" {
				assert.Equal(t, append(append([]string{}, questions...), notice.CatchAllQuestion), current.Questions)
				assert.Equal(t, append(append([]string{}, answers...), ""), current.Answers)
			} else {
				assert.Equal(t, reasons, current.Reasons)
			}

			rec, err := f.svc.SubmitSelection(ctx, f.userID, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuestions, rec.SelectedQuestions)
			assert.Equal(t, tt.wantAnswers, rec.SelectedAnswers)
			assert.Equal(t, tt.wantReason, rec.SelectedReason)
		})
	}
}
