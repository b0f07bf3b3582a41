package fallback

import (
	"testing"

	"github.com/kalambet/autoreply/internal/conversation"
	"github.com/kalambet/autoreply/internal/relationship"
	"github.com/kalambet/autoreply/internal/rules"
)

func newTestResponder(r rules.Set) *Responder {
	return NewResponder(r.Fallback, relationship.NewClassifier(r.Relationship))
}

// familyHistory is long enough and personal enough to classify as close_family.
func familyHistory() []conversation.Message {
	out := make([]conversation.Message, 51)
	for i := range out {
		out[i] = conversation.Message{Text: "ok", FromMe: i%2 == 0}
	}
	out[0].Text = "love you, miss home and family"
	return out
}

func friendHistory() []conversation.Message {
	out := make([]conversation.Message, 21)
	for i := range out {
		out[i] = conversation.Message{Text: "lol haha dude bro", FromMe: i%2 == 0}
	}
	return out
}

func TestRespond_CloseFamilyGreeting(t *testing.T) {
	r := newTestResponder(rules.Default())
	got := r.Respond("hi mom", "Mom", familyHistory())
	want := "Hi Mom! Just busy with some work, will catch up soon! ❤️"
	if got != want {
		t.Errorf("Respond = %q, want %q", got, want)
	}
}

func TestRespond_AcquaintanceGreeting(t *testing.T) {
	r := newTestResponder(rules.Default())
	got := r.Respond("hello", "Alice", nil)
	want := "Hi Alice! I'm busy at the moment but will respond soon."
	if got != want {
		t.Errorf("Respond = %q, want %q", got, want)
	}
}

func TestRespond_Rules(t *testing.T) {
	r := newTestResponder(rules.Default())

	tests := []struct {
		name    string
		message string
		history []conversation.Message
		want    string
	}{
		{"friend greeting", "hey!", friendHistory(), "Hey Sam! Busy rn but will hit you up soon! 😊"},
		{"wellbeing", "How R U doing", nil, "I'm doing well, thanks! Just caught up with work right now. How about you?"},
		{"call family", "pls phone me", familyHistory(), "Can't take calls right now but will call you back soon! ❤️"},
		{"call other", "can we talk on the phone", nil, "Can't take calls at the moment, but will call you back later!"},
		{"urgent", "URGENT: need the keys", nil, "Got your message! If it's really urgent, please call. Otherwise I'll respond soon."},
		{"question", "are you free tomorrow?", nil, "Thanks for your question! I'll get back to you with an answer soon."},
		{"general family", "ok", familyHistory(), "I'm tied up right now but will get back to you soon!"},
		{"general friend", "ok", friendHistory(), "Busy right now but will get back to you!"},
		{"general other", "ok", nil, "Thanks for your message! I'll respond when I'm free."},
		{"greeting beats question", "hey, free tomorrow?", nil, "Hi Sam! I'm busy at the moment but will respond soon."},
		{"call beats urgent", "urgent, call me", nil, "Can't take calls at the moment, but will call you back later!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Respond(tt.message, "Sam", tt.history); got != tt.want {
				t.Errorf("Respond(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestRespond_OrderFromRules(t *testing.T) {
	set := rules.Default()
	set.Fallback.Order = []string{rules.TriggerQuestion, rules.TriggerGreeting}
	r := newTestResponder(set)

	got := r.Respond("hey, free tomorrow?", "Sam", nil)
	if got != set.Fallback.QuestionReply {
		t.Errorf("Respond = %q, want question reply", got)
	}
}

func TestRespond_PartialPoolFallsBackToDefault(t *testing.T) {
	set := rules.Default()
	set.Fallback.Pools["friend"] = rules.Pool{General: []string{"Later, friend."}}
	r := newTestResponder(set)

	h := make([]conversation.Message, 11)
	if got := r.Respond("ok", "Sam", h); got != "Later, friend." {
		t.Errorf("general = %q", got)
	}
	if got := r.Respond("hello", "Sam", h); got != "Hi Sam! I'm busy at the moment but will respond soon." {
		t.Errorf("greeting = %q", got)
	}
	if got := r.Respond("ring me", "Sam", h); got != "Can't take calls at the moment, but will call you back later!" {
		t.Errorf("call = %q", got)
	}
}
