package sdgen

import "strings"

// SanitizePrompt cleans a prompt by trimming surrounding whitespace.
func SanitizePrompt(prompt string) string {
	return strings.TrimSpace(prompt)
}

// ShortPrompt returns a compact single-line form of a prompt suitable for
// labels and history listings. Newlines are flattened and the text is
// truncated with an ellipsis if longer than maxLen runes.
func ShortPrompt(text string, maxLen int) string {
	if text == "" || maxLen <= 0 {
		return ""
	}

	text = strings.ReplaceAll(text, "\n", " ")
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	// Reserve one rune for the ellipsis.
	return string(runes[:maxLen-1]) + "…"
}
