package chat

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-aid-be/pkg/llm"
)

func testConversation() Conversation {
	return Conversation{
		Persona:     "You are Genie.",
		Greeting:    "Hello! I am Genie.",
		Instruction: func(q string) string { return "Answer as a legal adviser: " + q },
	}
}

func pairs(n int) []Turn {
	var turns []Turn
	for i := 0; i < n; i++ {
		turns = append(turns,
			Turn{Role: llm.RoleUser, Text: fmt.Sprintf("q%d", i), VisibleToUser: true},
			Turn{Role: llm.RoleModel, Text: fmt.Sprintf("a%d", i), VisibleToUser: true},
		)
	}
	return turns
}

func TestMessages_SeedFirstAndWrappedQuestionLast(t *testing.T) {
	c := testConversation()
	msgs := c.Messages(nil, "  Can my landlord evict me?  ")

	require.Len(t, msgs, 3)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "You are Genie."}, msgs[0])
	assert.Equal(t, llm.Message{Role: llm.RoleModel, Content: "Hello! I am Genie."}, msgs[1])
	assert.Equal(t, "Answer as a legal adviser: Can my landlord evict me?", msgs[2].Content)
}

func TestMessages_WindowKeepsMostRecentTen(t *testing.T) {
	c := testConversation()
	history := append(c.Seed(), pairs(8)...)

	msgs := c.Messages(history, "next")

	// 2 seed + 10 history + 1 question
	require.Len(t, msgs, 13)
	assert.Equal(t, "You are Genie.", msgs[0].Content)
	assert.Equal(t, "Hello! I am Genie.", msgs[1].Content)
	assert.Equal(t, "q3", msgs[2].Content)
	assert.Equal(t, "a7", msgs[11].Content)
	for _, m := range msgs[2:12] {
		assert.NotContains(t, []string{"q0", "a0", "q1", "a1", "q2", "a2"}, m.Content)
	}
}

func TestMessages_CustomWindow(t *testing.T) {
	c := testConversation()
	c.Window = 4

	msgs := c.Messages(pairs(5), "next")
	require.Len(t, msgs, 7)
	assert.Equal(t, "q3", msgs[2].Content)
}

func TestRecent(t *testing.T) {
	tests := []struct {
		name  string
		turns []Turn
		n     int
		first string
		want  int
	}{
		{name: "short history untouched", turns: pairs(2), n: 10, first: "q0", want: 4},
		{name: "exact window", turns: pairs(5), n: 10, first: "q0", want: 10},
		{name: "oldest dropped first", turns: pairs(6), n: 10, first: "q1", want: 10},
		{name: "leading model turn dropped", turns: pairs(6), n: 9, first: "q2", want: 8},
		{name: "empty", turns: nil, n: 10, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recent(tt.turns, tt.n)
			assert.Len(t, got, tt.want)
			if tt.want > 0 {
				assert.Equal(t, tt.first, got[0].Text)
			}
		})
	}
}

func TestVisible_HidesPersona(t *testing.T) {
	c := testConversation()
	turns := append(c.Seed(), pairs(1)...)

	visible := Visible(turns)
	require.Len(t, visible, 3)
	assert.Equal(t, "Hello! I am Genie.", visible[0].Text)
	for _, v := range visible {
		assert.NotEqual(t, c.Persona, v.Text)
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "What is a legal notice?", Title("  What is a\n legal notice? "))
	long := strings.Repeat("x", 80)
	assert.Equal(t, strings.Repeat("x", 50)+"...", Title(long))
}
