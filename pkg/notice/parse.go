package notice

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxReasons        = 10
	MaxModelQuestions = 3

	WordsPerPage = 375
	MinPages     = 2
)

// CatchAllQuestion is appended to every generated question list. It is a
// fixed string rather than model output so the UI can rely on it.
const CatchAllQuestion = "Please enter any relevant details you want to be considered while generating the notice reply."

// ClassificationChoices is the enumerated answer set of the summon check.
var ClassificationChoices = []string{"true", "false"}

// ParseClassification accepts "true"/"false" in any case, optionally
// quoted or followed by punctuation. Anything else is ambiguous.
func ParseClassification(raw string) (bool, error) {
	v := strings.ToLower(strings.Trim(strings.TrimSpace(raw), "\"'`.!* \n\t"))
	switch v {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", ErrClassificationAmbiguous, truncate(raw, 80))
}

// ParseLines splits model output on line breaks, trims and drops empties.
func ParseLines(raw string) []string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// ParseReasons keeps at most MaxReasons lines.
func ParseReasons(raw string) []string {
	reasons := ParseLines(raw)
	if len(reasons) > MaxReasons {
		reasons = reasons[:MaxReasons]
	}
	return reasons
}

// ParseQuestions returns the model questions without any copy of the
// catch-all question, capped at MaxModelQuestions.
func ParseQuestions(raw string) []string {
	lines := ParseLines(raw)
	out := make([]string, 0, len(lines))
	for _, q := range lines {
		if strings.EqualFold(q, CatchAllQuestion) {
			continue
		}
		out = append(out, q)
		if len(out) == MaxModelQuestions {
			break
		}
	}
	return out
}

// AlignAnswers pads or truncates answers to n entries.
func AlignAnswers(answers []string, n int) []string {
	out := make([]string, n)
	copy(out, answers)
	return out
}

// TargetLength converts requested pages to words, clamping to MinPages.
func TargetLength(pages int) int {
	if pages < MinPages {
		pages = MinPages
	}
	return pages * WordsPerPage
}

// Transcript renders the submitted question/answer pairs.
func Transcript(questions, answers []string) string {
	blocks := make([]string, len(questions))
	for i, q := range questions {
		a := ""
		if i < len(answers) {
			a = answers[i]
		}
		blocks[i] = fmt.Sprintf("Question: %s\nAnswer: %s", q, a)
	}
	return strings.Join(blocks, "\n\n")
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
