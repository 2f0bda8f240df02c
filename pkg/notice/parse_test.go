package notice

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestParseClassification(t *testing.T) {
	tests := []struct {
		raw     string
		want    bool
		wantErr bool
	}{
		{raw: "true", want: true},
		{raw: "True", want: true},
		{raw: " TRUE.\n", want: true},
		{raw: `"false"`, want: false},
		{raw: "False", want: false},
		{raw: "**false**", want: false},
		{raw: "yes", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "true, this is a summon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseClassification(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrClassificationAmbiguous)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLines(t *testing.T) {
	assert.Equal(t, []string{"one", "two", "three"}, ParseLines("one\r\n\n  two  \n\nthree\n"))
	assert.Empty(t, ParseLines("   \n\t\n"))
}

func TestTargetLength(t *testing.T) {
	tests := []struct {
		pages int
		want  int
	}{
		{pages: -3, want: 750},
		{pages: 0, want: 750},
		{pages: 1, want: 750},
		{pages: 2, want: 750},
		{pages: 3, want: 1125},
		{pages: 10, want: 3750},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TargetLength(tt.pages), "pages=%d", tt.pages)
	}
}

func TestTranscript(t *testing.T) {
	got := Transcript([]string{"q1", "q2"}, []string{"a1"})
	assert.Equal(t, "Question: q1\nAnswer: a1\n\nQuestion: q2\nAnswer: ", got)
	assert.Equal(t, "", Transcript(nil, nil))
}

func TestAlignAnswers(t *testing.T) {
	assert.Equal(t, []string{"a", ""}, AlignAnswers([]string{"a"}, 2))
	assert.Equal(t, []string{"a"}, AlignAnswers([]string{"a", "b"}, 1))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "short", in: "false", n: 80, want: "false"},
		{name: "ascii cut", in: "abcdef", n: 3, want: "abc..."},
		{name: "exact runes", in: "नोटिस", n: 5, want: "नोटिस"},
		{name: "multibyte cut", in: "नोटिस जारी", n: 3, want: "नोट..."},
		{name: "emoji cut", in: "⚖️⚖️⚖️", n: 1, want: "⚖..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
