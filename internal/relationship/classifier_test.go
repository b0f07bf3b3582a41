package relationship

import (
	"testing"

	"github.com/kalambet/autoreply/internal/conversation"
	"github.com/kalambet/autoreply/internal/rules"
)

func newTestClassifier() *Classifier {
	return NewClassifier(rules.Default().Relationship)
}

// history returns n messages alternating sender, each with text.
func history(n int, text string) []conversation.Message {
	out := make([]conversation.Message, n)
	for i := range out {
		out[i] = conversation.Message{Text: text, FromMe: i%2 == 0}
	}
	return out
}

func TestClassify_EmptyHistory(t *testing.T) {
	if got := newTestClassifier().Classify("Mom", nil); got != Acquaintance {
		t.Errorf("Classify(empty) = %q, want acquaintance", got)
	}
}

func TestClassify_Thresholds(t *testing.T) {
	personal := "love miss family home work"
	casual := "lol haha dude bro"

	tests := []struct {
		name    string
		contact string
		history []conversation.Message
		want    Level
	}{
		{"ten messages", "Bob", history(10, "ok"), Acquaintance},
		{"eleven messages", "Bob", history(11, "ok"), Friend},
		{"twenty one plain", "Bob", history(21, "ok"), Friend},
		{"twenty one personal", "Bob", history(21, personal), CloseFriend},
		{"twenty one casual", "Bob", history(21, casual), CloseFriend},
		{"fifty personal", "Bob", history(50, personal), CloseFriend},
		{"fifty one personal", "Bob", history(51, personal), CloseFamily},
		{"fifty one casual only", "Bob", history(51, casual), CloseFriend},
		{"fifty one plain mom", "Mom", history(51, "ok"), CloseFamily},
		{"fifty one plain grandad", "Grandad Joe", history(51, "ok"), CloseFamily},
		{"twenty one plain mom", "mom", history(21, "ok"), Friend},
	}
	c := newTestClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.contact, tt.history); got != tt.want {
				t.Errorf("Classify = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := newTestClassifier()
	h := history(25, "lol haha dude bro hey")
	first := c.Classify("Sam", h)
	for i := 0; i < 10; i++ {
		if got := c.Classify("Sam", h); got != first {
			t.Fatalf("call %d = %q, want %q", i, got, first)
		}
	}
}

func TestClassify_MonotonicInMessageCount(t *testing.T) {
	rank := map[Level]int{Acquaintance: 0, Friend: 1, CloseFriend: 2, CloseFamily: 3}
	c := newTestClassifier()

	for _, text := range []string{"ok", "love miss family home", "lol haha dude bro"} {
		prev := Acquaintance
		for n := 1; n <= 60; n++ {
			got := c.Classify("Dad", history(n, text))
			if rank[got] < rank[prev] {
				t.Fatalf("text %q: tier dropped from %q to %q at n=%d", text, prev, got, n)
			}
			prev = got
		}
	}
}

func TestStats(t *testing.T) {
	s := newTestClassifier().Stats([]conversation.Message{
		{Text: "I miss you, love", FromMe: true},
		{Text: "lol bro"},
	})
	if s.MessageCount != 2 {
		t.Errorf("MessageCount = %d, want 2", s.MessageCount)
	}
	if s.PersonalScore != 2 {
		t.Errorf("PersonalScore = %d, want 2", s.PersonalScore)
	}
	if s.CasualScore != 2 {
		t.Errorf("CasualScore = %d, want 2", s.CasualScore)
	}
	if s.AvgLength != 11.5 {
		t.Errorf("AvgLength = %v, want 11.5", s.AvgLength)
	}
}

func TestLevelClose(t *testing.T) {
	if !CloseFamily.Close() || !CloseFriend.Close() {
		t.Error("close tiers not reported as close")
	}
	if Friend.Close() || Acquaintance.Close() {
		t.Error("distant tiers reported as close")
	}
}
