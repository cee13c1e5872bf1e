package formatting

import "strings"

const (
	fence       = "```"
	taggedFence = "```json"
)

// StripFence extracts the body of the first markdown code fence in s.
// A ```json fence takes precedence over an untagged one. Text with no
// fence is returned trimmed. An unclosed fence yields the rest of s.
func StripFence(s string) string {
	s = strings.TrimSpace(s)

	if body, ok := between(s, taggedFence); ok {
		return body
	}
	if body, ok := between(s, fence); ok {
		return body
	}
	return s
}

func between(s, open string) (string, bool) {
	_, rest, ok := strings.Cut(s, open)
	if !ok {
		return "", false
	}
	// A reply cut off before its closing fence keeps everything after the
	// opening marker.
	body, _, _ := strings.Cut(rest, fence)
	return strings.TrimSpace(body), true
}
