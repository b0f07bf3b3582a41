package analysis

import (
	"testing"

	"github.com/kalambet/autoreply/internal/rules"
)

func TestAnalyze(t *testing.T) {
	a := NewAnalyzer(rules.Default().Message)

	tests := []struct {
		text string
		want Result
	}{
		{"ok", Result{UrgencyNormal, Neutral, QuestionNone}},
		{"URGENT: call me", Result{UrgencyHigh, Neutral, QuestionNone}},
		{"Great news, I'm so happy", Result{UrgencyNormal, Positive, QuestionNone}},
		{"this is terrible and sad", Result{UrgencyNormal, Negative, QuestionNone}},
		{"good but bad", Result{UrgencyNormal, Neutral, QuestionNone}},
		{"when and where should we meet?", Result{UrgencyNormal, Neutral, "timing"}},
		{"where is it?", Result{UrgencyNormal, Neutral, "location"}},
		{"why not?", Result{UrgencyNormal, Neutral, "explanation"}},
		{"can you pick me up?", Result{UrgencyNormal, Neutral, "request"}},
		{"really?", Result{UrgencyNormal, Neutral, QuestionGeneral}},
		{"where are you", Result{UrgencyNormal, Neutral, QuestionNone}},
		{"I have a problem, can you help?", Result{UrgencyHigh, Neutral, "request"}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := a.Analyze(tt.text); got != tt.want {
				t.Errorf("Analyze(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestAnalyze_SentimentTieIsNeutral(t *testing.T) {
	a := NewAnalyzer(rules.Default().Message)
	for _, text := range []string{"", "nothing here", "love and hate", "great awesome, bad terrible"} {
		if got := a.Analyze(text).Sentiment; got != Neutral {
			t.Errorf("Analyze(%q).Sentiment = %q, want neutral", text, got)
		}
	}
}

func TestAnalyze_QuestionOrderFollowsTable(t *testing.T) {
	r := rules.Default().Message
	r.QuestionTypes = []rules.KeywordRule{
		{Label: "location", Keywords: []string{"where"}},
		{Label: "timing", Keywords: []string{"when"}},
	}
	got := NewAnalyzer(r).Analyze("when and where should we meet?")
	if got.QuestionType != "location" {
		t.Errorf("QuestionType = %q, want location", got.QuestionType)
	}
}

func TestResultIsQuestion(t *testing.T) {
	if (Result{QuestionType: QuestionNone}).IsQuestion() {
		t.Error("none reported as question")
	}
	if !(Result{QuestionType: "timing"}).IsQuestion() {
		t.Error("timing not reported as question")
	}
}
