package gate

import (
	"fmt"
	"strings"
)

// Moderator rejects submissions whose text matches a configured denylist.
// Matching is a case-insensitive substring scan; there is no fuzzy or
// partial-word matching.
type Moderator struct {
	blocked []string
}

// NewModerator builds a Moderator from a denylist of terms. Terms are
// lowercased once up front.
func NewModerator(blockedWords []string) *Moderator {
	blocked := make([]string, 0, len(blockedWords))
	for _, word := range blockedWords {
		word = strings.TrimSpace(strings.ToLower(word))
		if word != "" {
			blocked = append(blocked, word)
		}
	}
	return &Moderator{blocked: blocked}
}

// ScanText returns a Rejection if the text contains any denylisted term
func (m *Moderator) ScanText(text string) error {
	lowered := strings.ToLower(text)
	for _, word := range m.blocked {
		if strings.Contains(lowered, word) {
			return &Rejection{
				Code:    CodeContentPolicy,
				Message: fmt.Sprintf("content contains prohibited term %q", word),
			}
		}
	}
	return nil
}

// ScanPayload walks a structured submission and scans every string value,
// including strings nested in maps and slices
func (m *Moderator) ScanPayload(payload map[string]any) error {
	for _, value := range payload {
		if err := m.scanValue(value); err != nil {
			return err
		}
	}
	return nil
}

func (m *Moderator) scanValue(value any) error {
	switch v := value.(type) {
	case string:
		return m.ScanText(v)
	case map[string]any:
		return m.ScanPayload(v)
	case []any:
		for _, item := range v {
			if err := m.scanValue(item); err != nil {
				return err
			}
		}
	}
	return nil
}
