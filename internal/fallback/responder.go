package fallback

import (
	"strings"

	"github.com/kalambet/autoreply/internal/conversation"
	"github.com/kalambet/autoreply/internal/relationship"
	"github.com/kalambet/autoreply/internal/rules"
)

// Responder picks a canned reply from the relationship tier and keywords in
// the incoming message. It never fails and never calls out of process.
type Responder struct {
	rules      rules.FallbackRules
	classifier *relationship.Classifier
}

// NewResponder creates a Responder. The classifier is used to recompute the
// tier on every call.
func NewResponder(r rules.FallbackRules, classifier *relationship.Classifier) *Responder {
	return &Responder{rules: r, classifier: classifier}
}

// Respond returns the canned reply for message. Triggers are tried in the
// configured order and the first match wins; the pool's first general reply
// is used when none match.
func (r *Responder) Respond(message, contact string, history []conversation.Message) string {
	level := r.classifier.Classify(contact, history)
	pool := r.pool(level)
	lower := strings.ToLower(message)

	for _, trigger := range r.rules.Order {
		if reply, ok := r.try(trigger, message, lower, contact, pool); ok {
			return reply
		}
	}
	return pool.General[0]
}

func (r *Responder) try(trigger, message, lower, contact string, pool rules.Pool) (string, bool) {
	switch trigger {
	case rules.TriggerGreeting:
		if rules.ContainsAny(lower, r.rules.GreetingWords) {
			return strings.ReplaceAll(pool.Greetings[0], "{contact}", contact), true
		}
	case rules.TriggerWellbeing:
		if rules.ContainsAny(lower, r.rules.WellbeingWords) {
			return r.rules.WellbeingReply, true
		}
	case rules.TriggerCall:
		if rules.ContainsAny(lower, r.rules.CallWords) {
			return pool.Call, true
		}
	case rules.TriggerUrgent:
		if rules.ContainsAny(lower, r.rules.UrgentWords) {
			return r.rules.UrgentReply, true
		}
	case rules.TriggerQuestion:
		if strings.Contains(message, "?") {
			return r.rules.QuestionReply, true
		}
	}
	return "", false
}

// pool returns the pool for level, filling anything it lacks from the
// default pool.
func (r *Responder) pool(level relationship.Level) rules.Pool {
	def := r.rules.Pools[rules.DefaultPool]
	p, ok := r.rules.Pools[string(level)]
	if !ok {
		return def
	}
	if len(p.Greetings) == 0 {
		p.Greetings = def.Greetings
	}
	if len(p.General) == 0 {
		p.General = def.General
	}
	if p.Call == "" {
		p.Call = def.Call
	}
	return p
}
