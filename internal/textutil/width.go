package textutil

import "github.com/mattn/go-runewidth"

const ellipsis = "…"

// DisplayWidth reports the number of terminal columns text occupies.
func DisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// TruncateLeft shortens text to at most width columns by dropping leading
// runes and marking the cut with an ellipsis. The tail of a path is usually
// the part that identifies it.
func TruncateLeft(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	budget := width - runewidth.StringWidth(ellipsis)
	if budget <= 0 {
		return ellipsis
	}

	runes := []rune(text)
	used := 0
	start := len(runes)
	for start > 0 {
		w := runewidth.RuneWidth(runes[start-1])
		if used+w > budget {
			break
		}
		used += w
		start--
	}
	return ellipsis + string(runes[start:])
}
