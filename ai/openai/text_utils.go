package openai

import "strings"

// clipText truncates text to at most max bytes, cutting at the last line
// boundary before the limit so the model never sees a half sentence.
func clipText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	clipped := s[:max]
	if idx := strings.LastIndexByte(clipped, '\n'); idx > 0 {
		clipped = clipped[:idx]
	}
	return clipped
}

// isLetter returns true if the rune is an ASCII letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
