package analysis

import (
	"strings"

	"github.com/kalambet/autoreply/internal/rules"
)

// Urgency of an incoming message.
type Urgency string

const (
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
)

// Sentiment of an incoming message.
type Sentiment string

const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
	Neutral  Sentiment = "neutral"
)

// QuestionNone and QuestionGeneral bracket the labels taken from the rule
// table (timing, location, explanation, request by default).
const (
	QuestionNone    = "none"
	QuestionGeneral = "general"
)

// Result is the classification of one incoming message.
type Result struct {
	Urgency      Urgency   `json:"urgency"`
	Sentiment    Sentiment `json:"sentiment"`
	QuestionType string    `json:"question_type"`
}

// IsQuestion reports whether the message was classified as a question.
func (r Result) IsQuestion() bool {
	return r.QuestionType != "" && r.QuestionType != QuestionNone
}

// Analyzer classifies single messages by keyword presence.
type Analyzer struct {
	rules rules.MessageRules
}

// NewAnalyzer creates an Analyzer over the given keyword tables.
func NewAnalyzer(r rules.MessageRules) *Analyzer {
	return &Analyzer{rules: r}
}

// Analyze classifies text. Matching is case-insensitive substring presence.
func (a *Analyzer) Analyze(text string) Result {
	lower := strings.ToLower(text)

	res := Result{
		Urgency:      UrgencyNormal,
		Sentiment:    Neutral,
		QuestionType: QuestionNone,
	}
	if rules.ContainsAny(lower, a.rules.UrgentWords) {
		res.Urgency = UrgencyHigh
	}

	pos := rules.CountPresent(lower, a.rules.PositiveWords)
	neg := rules.CountPresent(lower, a.rules.NegativeWords)
	switch {
	case pos > neg:
		res.Sentiment = Positive
	case neg > pos:
		res.Sentiment = Negative
	}

	if strings.Contains(text, "?") {
		res.QuestionType = QuestionGeneral
		if label, ok := rules.FirstMatch(lower, a.rules.QuestionTypes); ok {
			res.QuestionType = label
		}
	}
	return res
}
