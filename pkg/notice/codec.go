package notice

import "strings"

// Legacy flattening of list fields into single text columns. Items are
// joined as "a?, b" with no joiner after the last item.
const (
	QuestionJoiner = "?,"
	ItemJoiner     = ".,"
)

func JoinQuestions(items []string) string {
	return join(items, QuestionJoiner)
}

func SplitQuestions(s string) []string {
	return split(s, QuestionJoiner)
}

// JoinItems flattens answers and reasons.
func JoinItems(items []string) string {
	return join(items, ItemJoiner)
}

func SplitItems(s string) []string {
	return split(s, ItemJoiner)
}

// SplitAnswers keeps empty positions so answers stay aligned with their
// questions, then pads or truncates to n.
func SplitAnswers(s string, n int) []string {
	out := make([]string, n)
	if s == "" {
		return out
	}
	for i, part := range strings.Split(s, ItemJoiner) {
		if i >= n {
			break
		}
		out[i] = strings.TrimSpace(part)
	}
	return out
}

func join(items []string, joiner string) string {
	return strings.Join(items, joiner+" ")
}

func split(s, joiner string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, joiner)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
