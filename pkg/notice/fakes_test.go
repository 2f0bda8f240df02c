package notice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"legal-aid-be/pkg/llm"
	"legal-aid-be/pkg/pdf"
	"legal-aid-be/pkg/storage"
)

type reply struct {
	out string
	err error
}

// scriptedLLM answers by prompt kind (the text before the first colon).
type scriptedLLM struct {
	mu      sync.Mutex
	queue   map[string][]reply
	prompts map[string][]string
	calls   int
}

func newScriptedLLM() *scriptedLLM {
	return &scriptedLLM{queue: map[string][]reply{}, prompts: map[string][]string{}}
}

func (s *scriptedLLM) on(kind string, replies ...reply) *scriptedLLM {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue[kind] = append(s.queue[kind], replies...)
	return s
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	kind := prompt[:strings.Index(prompt, ":")]
	s.prompts[kind] = append(s.prompts[kind], prompt)
	q := s.queue[kind]
	if len(q) == 0 {
		return "", fmt.Errorf("%w: no scripted reply for %s", llm.ErrUpstreamUnavailable, kind)
	}
	s.queue[kind] = q[1:]
	return q[0].out, q[0].err
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return s.Generate(ctx, history[len(history)-1].Content, opts...)
}

type testPrompts struct{}

func (testPrompts) Persona() string { return "persona" }
func (testPrompts) Classification(text string) string { return "CLASSIFY:" + text }
func (testPrompts) Reasons(text string) string { return "REASONS:" + text }
func (testPrompts) Questions(text string) string { return "QUESTIONS:" + text }
func (testPrompts) Answers(text string, qs []string) string {
	return "ANSWERS:" + text + "|" + strings.Join(qs, "|")
}
func (testPrompts) Draft(req DraftRequest) string {
	return fmt.Sprintf("DRAFT:%s|reason=%s|transcript=%s|notes=%s|date=%s|words=%d",
		req.NoticeText, req.SelectedReason, req.Transcript, req.ExtraNotes, req.Date, req.WordCount)
}

// memStore is an in-memory Store with version checks. failSaves makes the
// next n record saves fail with a transient error; failCounts does the same
// to the counter half of SaveCaseRecordCounting, leaving nothing written.
type memStore struct {
	mu         sync.Mutex
	records    map[uuid.UUID]*CaseRecord
	activities map[uuid.UUID]*ActivityEntry
	order      []uuid.UUID
	counters   map[uuid.UUID]map[Counter]int
	failSaves  int
	failCounts int
	saveCalls  int
}

func newMemStore() *memStore {
	return &memStore{
		records:    map[uuid.UUID]*CaseRecord{},
		activities: map[uuid.UUID]*ActivityEntry{},
		counters:   map[uuid.UUID]map[Counter]int{},
	}
}

func cloneRecord(r *CaseRecord) *CaseRecord {
	c := *r
	c.DerivedQuestions = append([]string(nil), r.DerivedQuestions...)
	c.DerivedAnswers = append([]string(nil), r.DerivedAnswers...)
	c.DerivedReasons = append([]string(nil), r.DerivedReasons...)
	c.SelectedQuestions = append([]string(nil), r.SelectedQuestions...)
	c.SelectedAnswers = append([]string(nil), r.SelectedAnswers...)
	if r.IsSummon != nil {
		v := *r.IsSummon
		c.IsSummon = &v
	}
	return &c
}

func cloneActivity(a *ActivityEntry) *ActivityEntry {
	c := *a
	c.Questions = append([]string(nil), a.Questions...)
	c.Answers = append([]string(nil), a.Answers...)
	c.Reasons = append([]string(nil), a.Reasons...)
	return &c
}

func (m *memStore) GetCaseRecord(ctx context.Context, userID uuid.UUID) (*CaseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRecord(r), nil
}

func (m *memStore) SaveCaseRecord(ctx context.Context, record *CaseRecord, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkSave(record, expectedVersion); err != nil {
		return err
	}
	m.commit(record, expectedVersion)
	return nil
}

func (m *memStore) SaveCaseRecordCounting(ctx context.Context, record *CaseRecord, expectedVersion int64, counter Counter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkSave(record, expectedVersion); err != nil {
		return err
	}
	if m.failCounts > 0 {
		m.failCounts--
		return errors.New("deadlock detected")
	}
	m.commit(record, expectedVersion)
	if m.counters[record.UserID] == nil {
		m.counters[record.UserID] = map[Counter]int{}
	}
	m.counters[record.UserID][counter]++
	return nil
}

func (m *memStore) checkSave(record *CaseRecord, expectedVersion int64) error {
	m.saveCalls++
	if m.failSaves > 0 {
		m.failSaves--
		return errors.New("connection reset by peer")
	}
	var current int64
	if r, ok := m.records[record.UserID]; ok {
		current = r.Version
	}
	if current != expectedVersion {
		return ErrStaleRecord
	}
	return nil
}

func (m *memStore) commit(record *CaseRecord, expectedVersion int64) {
	record.Version = expectedVersion + 1
	m.records[record.UserID] = cloneRecord(record)
}

func (m *memStore) CreateActivity(ctx context.Context, entry *ActivityEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities[entry.ID] = cloneActivity(entry)
	m.order = append(m.order, entry.ID)
	return nil
}

func (m *memStore) GetActivity(ctx context.Context, userID, activityID uuid.UUID) (*ActivityEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.activities[activityID]
	if !ok || a.UserID != userID {
		return nil, ErrNotFound
	}
	return cloneActivity(a), nil
}

func (m *memStore) GetLatestActivity(ctx context.Context, userID uuid.UUID) (*ActivityEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.order) - 1; i >= 0; i-- {
		if a := m.activities[m.order[i]]; a.UserID == userID {
			return cloneActivity(a), nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) UpdateActivity(ctx context.Context, entry *ActivityEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.activities[entry.ID]; !ok {
		return ErrNotFound
	}
	m.activities[entry.ID] = cloneActivity(entry)
	return nil
}

func (m *memStore) counter(userID uuid.UUID, c Counter) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[userID][c]
}

type memDocuments struct {
	mu     sync.Mutex
	files  map[storage.Locator][]byte
	failed bool
}

func (d *memDocuments) Store(ctx context.Context, ownerID, fileName, contentType string, r io.Reader) (storage.Locator, error) {
	if d.failed {
		return "", storage.ErrWriteFailed
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.files == nil {
		d.files = map[storage.Locator][]byte{}
	}
	loc := storage.Locator(fmt.Sprintf("%s/%d-%s", ownerID, len(d.files), fileName))
	d.files[loc] = data
	return loc, nil
}

func (d *memDocuments) IssueAccessURL(ctx context.Context, loc storage.Locator) (*storage.AccessURL, error) {
	return &storage.AccessURL{URL: "https://files.test/" + string(loc)}, nil
}

type fixedInspector struct {
	pages int
	err   error
}

func (f fixedInspector) Inspect(ctx context.Context, data []byte) (*pdf.Info, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &pdf.Info{Pages: f.pages}, nil
}

type recordingEvents struct {
	mu       sync.Mutex
	uploaded []uuid.UUID
	saved    []uuid.UUID
}

func (e *recordingEvents) PublishNoticeUploaded(ctx context.Context, entry *ActivityEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.uploaded = append(e.uploaded, entry.ID)
}

func (e *recordingEvents) PublishReplySaved(ctx context.Context, entry *ActivityEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.saved = append(e.saved, entry.ID)
}
