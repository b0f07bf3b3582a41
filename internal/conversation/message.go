package conversation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Message is one entry of a conversation history, oldest first.
type Message struct {
	Text   string `json:"text"`
	FromMe bool   `json:"fromMe"`
}

// ParseHistory decodes a JSON array of {text, fromMe} objects. Blank input
// yields an empty history. Unknown fields on each object are ignored.
func ParseHistory(raw string) ([]Message, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var msgs []Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		return nil, fmt.Errorf("decoding history: %w", err)
	}
	return msgs, nil
}

// SelfAuthored returns the text of every message sent by the account owner.
func SelfAuthored(history []Message) []string {
	var out []string
	for _, m := range history {
		if m.FromMe {
			out = append(out, m.Text)
		}
	}
	return out
}

// Recent returns at most the last n messages of history.
func Recent(history []Message, n int) []Message {
	if n <= 0 {
		return nil
	}
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

// JoinLower concatenates the text of every message with single spaces and
// lowercases the result.
func JoinLower(history []Message) string {
	parts := make([]string, len(history))
	for i, m := range history {
		parts[i] = m.Text
	}
	return strings.ToLower(strings.Join(parts, " "))
}
