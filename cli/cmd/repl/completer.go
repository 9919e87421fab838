package repl

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// isWordByte reports whether b can be part of an identifier.
func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// wordAt returns the byte range [start, end) of the identifier touching
// cursor in s. The range is empty if no identifier touches it.
func wordAt(s string, cursor int) (start, end int) {
	cursor = min(max(cursor, 0), len(s))

	start, end = cursor, cursor

	for start > 0 && isWordByte(s[start-1]) {
		start--
	}

	for end < len(s) && isWordByte(s[end]) {
		end++
	}

	return start, end
}

// complete returns the candidates fuzzily matching word, best first.
func complete(word string, candidates []string) fuzzy.Matches {
	if word == "" {
		return nil
	}

	return fuzzy.Find(word, candidates)
}

// renderCandidate renders one candidate with its matched runes emphasized.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base := suggestionStyle
	if selected {
		base = selectedStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, i := range match.MatchedIndexes {
		matched[i] = true
	}

	var sb strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			sb.WriteString(base.Bold(true).Render(string(r)))
		} else {
			sb.WriteString(base.Render(string(r)))
		}
	}

	return sb.String()
}

// renderCandidateBar renders matches on one line, truncated to width.
func renderCandidateBar(matches fuzzy.Matches, selected, width int) string {
	part := make([]string, len(matches))
	for i, m := range matches {
		part[i] = renderCandidate(m, i == selected)
	}

	bar := strings.Join(part, " ")
	if width > 0 && lipgloss.Width(bar) > width {
		bar = lipgloss.NewStyle().MaxWidth(width).Render(bar)
	}

	return bar
}
