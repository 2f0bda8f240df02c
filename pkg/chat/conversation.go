package chat

import (
	"strings"

	"legal-aid-be/pkg/llm"
)

const DefaultWindow = 10

// Turn is one stored message. Seed turns open every session and are
// rebuilt from the Conversation rather than counted against the window.
type Turn struct {
	Role          string
	Text          string
	VisibleToUser bool
	Seed          bool
}

// Conversation holds the fixed framing of every chat request: a hidden
// persona preamble, the visible greeting, and the instruction that wraps
// each new question.
type Conversation struct {
	Persona     string
	Greeting    string
	Instruction func(question string) string
	Window      int
}

func (c Conversation) Seed() []Turn {
	return []Turn{
		{Role: llm.RoleUser, Text: c.Persona, VisibleToUser: false, Seed: true},
		{Role: llm.RoleModel, Text: c.Greeting, VisibleToUser: true, Seed: true},
	}
}

// Messages assembles the provider request: seed turns, the most recent
// Window non-seed turns, then the wrapped question.
func (c Conversation) Messages(history []Turn, userText string) []llm.Message {
	body := make([]Turn, 0, len(history))
	for _, t := range history {
		if !t.Seed {
			body = append(body, t)
		}
	}
	body = Recent(body, c.window())

	seed := c.Seed()
	out := make([]llm.Message, 0, len(seed)+len(body)+1)
	for _, t := range seed {
		out = append(out, llm.Message{Role: t.Role, Content: t.Text})
	}
	for _, t := range body {
		out = append(out, llm.Message{Role: t.Role, Content: t.Text})
	}

	question := strings.TrimSpace(userText)
	if c.Instruction != nil {
		question = c.Instruction(question)
	}
	return append(out, llm.Message{Role: llm.RoleUser, Content: question})
}

func (c Conversation) window() int {
	if c.Window <= 0 {
		return DefaultWindow
	}
	return c.Window
}

// Recent keeps the last n turns. A leading model turn is dropped so the
// request still alternates after the greeting.
func Recent(turns []Turn, n int) []Turn {
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	if len(turns) > 0 && turns[0].Role != llm.RoleUser {
		turns = turns[1:]
	}
	return turns
}

// Visible is the display-only view of a session.
func Visible(turns []Turn) []Turn {
	out := make([]Turn, 0, len(turns))
	for _, t := range turns {
		if t.VisibleToUser {
			out = append(out, t)
		}
	}
	return out
}

// Title derives a session title from its first question.
func Title(firstQuestion string) string {
	t := strings.Join(strings.Fields(firstQuestion), " ")
	r := []rune(t)
	if len(r) > 50 {
		return string(r[:50]) + "..."
	}
	return t
}
