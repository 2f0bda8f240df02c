package mapper

import (
	"encoding/json"

	"legal-aid-be/internal/entity"
	"legal-aid-be/internal/model"
	"legal-aid-be/pkg/notice"

	"gorm.io/datatypes"
)

// NoticeMapper converts case records and activity rows. Lists are written
// twice: as JSON, which is what gets read back, and in the legacy joined
// form. The joined form is only read for rows that predate the JSON
// columns, since an item containing a joiner does not survive it.
type NoticeMapper struct{}

func NewNoticeMapper() *NoticeMapper {
	return &NoticeMapper{}
}

func (m *NoticeMapper) CaseRecordToEntity(r *model.CaseRecord) *entity.CaseRecord {
	if r == nil {
		return nil
	}
	questions := itemsFrom(r.QuestionItems, r.Questions, notice.SplitQuestions)
	selected := itemsFrom(r.SelectedQuestionItems, r.SelectedQuestions, notice.SplitQuestions)
	return &entity.CaseRecord{
		Id:                r.Id,
		UserId:            r.UserId,
		ActivityId:        r.ActivityId,
		NoticeText:        r.NoticeText,
		IsSummon:          r.IsSummon,
		Questions:         questions,
		Answers:           answersFrom(r.AnswerItems, r.Answers, len(questions)),
		Reasons:           itemsFrom(r.ReasonItems, r.Reasons, notice.SplitItems),
		SelectedQuestions: selected,
		SelectedAnswers:   answersFrom(r.SelectedAnswerItems, r.SelectedAnswers, len(selected)),
		SelectedReason:    r.SelectedReason,
		ExtraNotes:        r.ExtraNotes,
		SubmittedData:     r.SubmittedData,
		TargetLength:      r.TargetLength,
		CurrentDraft:      r.CurrentDraft,
		Stage:             r.Stage,
		Version:           r.Version,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func (m *NoticeMapper) CaseRecordToModel(r *entity.CaseRecord) *model.CaseRecord {
	if r == nil {
		return nil
	}
	return &model.CaseRecord{
		Id:                    r.Id,
		UserId:                r.UserId,
		ActivityId:            r.ActivityId,
		NoticeText:            r.NoticeText,
		IsSummon:              r.IsSummon,
		Questions:             notice.JoinQuestions(r.Questions),
		Answers:               notice.JoinItems(r.Answers),
		Reasons:               notice.JoinItems(r.Reasons),
		SelectedQuestions:     notice.JoinQuestions(r.SelectedQuestions),
		SelectedAnswers:       notice.JoinItems(r.SelectedAnswers),
		QuestionItems:         itemsJSON(r.Questions),
		AnswerItems:           itemsJSON(r.Answers),
		ReasonItems:           itemsJSON(r.Reasons),
		SelectedQuestionItems: itemsJSON(r.SelectedQuestions),
		SelectedAnswerItems:   itemsJSON(r.SelectedAnswers),
		SelectedReason:        r.SelectedReason,
		ExtraNotes:            r.ExtraNotes,
		SubmittedData:         r.SubmittedData,
		TargetLength:          r.TargetLength,
		CurrentDraft:          r.CurrentDraft,
		Stage:                 r.Stage,
		Version:               r.Version,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}

func (m *NoticeMapper) ActivityToEntity(a *model.Activity) *entity.Activity {
	if a == nil {
		return nil
	}
	questions := itemsFrom(a.QuestionItems, a.Questions, notice.SplitQuestions)
	return &entity.Activity{
		Id:             a.Id,
		UserId:         a.UserId,
		SourceFileName: a.SourceFileName,
		FileLocator:    a.FileLocator,
		PageCount:      a.PageCount,
		IsSummon:       a.IsSummon,
		Questions:      questions,
		Answers:        answersFrom(a.AnswerItems, a.Answers, len(questions)),
		Reasons:        itemsFrom(a.ReasonItems, a.Reasons, notice.SplitItems),
		ExtraNotes:     a.ExtraNotes,
		ReplyText:      a.ReplyText,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func (m *NoticeMapper) ActivityToModel(a *entity.Activity) *model.Activity {
	if a == nil {
		return nil
	}
	return &model.Activity{
		Id:             a.Id,
		UserId:         a.UserId,
		SourceFileName: a.SourceFileName,
		FileLocator:    a.FileLocator,
		PageCount:      a.PageCount,
		IsSummon:       a.IsSummon,
		Questions:      notice.JoinQuestions(a.Questions),
		Answers:        notice.JoinItems(a.Answers),
		Reasons:        notice.JoinItems(a.Reasons),
		QuestionItems:  itemsJSON(a.Questions),
		AnswerItems:    itemsJSON(a.Answers),
		ReasonItems:    itemsJSON(a.Reasons),
		ExtraNotes:     a.ExtraNotes,
		ReplyText:      a.ReplyText,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func (m *NoticeMapper) ActivitiesToEntities(rows []*model.Activity) []*entity.Activity {
	entities := make([]*entity.Activity, len(rows))
	for i, a := range rows {
		entities[i] = m.ActivityToEntity(a)
	}
	return entities
}

// itemsJSON never returns NULL; an empty list is [].
func itemsJSON(items []string) datatypes.JSON {
	if len(items) == 0 {
		return datatypes.JSON("[]")
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}

func decodeItems(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		return nil
	}
	return items
}

func itemsFrom(raw datatypes.JSON, legacy string, split func(string) []string) []string {
	if items := decodeItems(raw); items != nil {
		return items
	}
	return split(legacy)
}

// answersFrom keeps answers aligned with n questions.
func answersFrom(raw datatypes.JSON, legacy string, n int) []string {
	if n == 0 {
		return nil
	}
	items := decodeItems(raw)
	if items == nil {
		return notice.SplitAnswers(legacy, n)
	}
	if len(items) == n {
		return items
	}
	out := make([]string, n)
	copy(out, items)
	return out
}
