package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Reply is one generated auto-reply and the signals it was produced from.
type Reply struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Contact      string    `json:"contact"`
	Message      string    `json:"message"`
	Reply        string    `json:"reply"`
	Source       string    `json:"source"` // "model" or "fallback"
	Model        string    `json:"model,omitempty"`
	Relationship string    `json:"relationship"`
	Urgency      string    `json:"urgency"`
	Sentiment    string    `json:"sentiment"`
	QuestionType string    `json:"question_type"`
	Error        string    `json:"error,omitempty"` // why the fallback was used
}

// SourceCount is the number of logged replies produced by one source.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}
