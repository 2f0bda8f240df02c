package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"legal-aid-be/internal/pkg/logger"
	"legal-aid-be/internal/repository/unitofwork"
	"legal-aid-be/internal/testutil"
	"legal-aid-be/pkg/llm"
)

// fakeLLM answers from replies in order, then falls back to reply.
type fakeLLM struct {
	mu      sync.Mutex
	replies []string
	reply   string
	err     error
	calls   int
	history [][]llm.Message
	opts    []*llm.Options
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.history = append(f.history, history)
	f.opts = append(f.opts, llm.Apply(llm.Options{}, options...))
	if f.err == nil && len(f.replies) > 0 {
		out := f.replies[0]
		f.replies = f.replies[1:]
		return out, nil
	}
	return f.reply, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

type sentMail struct {
	kind string
	to   string
	code string
	body string
}

type fakeMailer struct {
	sent chan sentMail
	err  error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(chan sentMail, 8)}
}

func (m *fakeMailer) SendOTP(to, otp string) error {
	m.sent <- sentMail{kind: "otp", to: to, code: otp}
	return m.err
}

func (m *fakeMailer) SendResetCode(to, otp string) error {
	m.sent <- sentMail{kind: "reset", to: to, code: otp}
	return m.err
}

func (m *fakeMailer) SendReplyCopy(to, fullName, fileName, replyText string) error {
	m.sent <- sentMail{kind: "reply", to: to, body: replyText}
	return m.err
}

func (m *fakeMailer) next(t *testing.T) sentMail {
	t.Helper()
	select {
	case mail := <-m.sent:
		return mail
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for mail")
		return sentMail{}
	}
}

func newFactory(t *testing.T) unitofwork.RepositoryFactory {
	t.Helper()
	return unitofwork.NewRepositoryFactory(testutil.NewDB(t))
}

func nopLogger() logger.ILogger {
	return logger.NewNopLogger()
}
