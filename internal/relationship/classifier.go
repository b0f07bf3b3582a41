package relationship

import (
	"strings"
	"unicode/utf8"

	"github.com/kalambet/autoreply/internal/conversation"
	"github.com/kalambet/autoreply/internal/rules"
)

// Level is a coarse relationship tier between the account owner and a
// contact.
type Level string

const (
	Acquaintance Level = "acquaintance"
	Friend       Level = "friend"
	CloseFriend  Level = "close_friend"
	CloseFamily  Level = "close_family"
)

// Close reports whether l is one of the two closest tiers.
func (l Level) Close() bool {
	return l == CloseFamily || l == CloseFriend
}

// Stats are the signals a classification is based on.
type Stats struct {
	MessageCount  int
	AvgLength     float64
	PersonalScore int
	CasualScore   int
}

// Classifier maps a contact and a conversation history to a Level. It holds
// no state beyond its rules, so Classify is safe for concurrent use.
type Classifier struct {
	rules rules.RelationshipRules
}

// NewClassifier creates a Classifier with the given thresholds and word lists.
func NewClassifier(r rules.RelationshipRules) *Classifier {
	return &Classifier{rules: r}
}

// Stats computes the classification signals over history, both directions.
func (c *Classifier) Stats(history []conversation.Message) Stats {
	if len(history) == 0 {
		return Stats{}
	}
	total := 0
	for _, m := range history {
		total += utf8.RuneCountInString(m.Text)
	}
	lower := conversation.JoinLower(history)
	return Stats{
		MessageCount:  len(history),
		AvgLength:     float64(total) / float64(len(history)),
		PersonalScore: rules.CountPresent(lower, c.rules.PersonalWords),
		CasualScore:   rules.CountPresent(lower, c.rules.CasualWords),
	}
}

// Classify returns the tier for contact. The first matching rule wins:
// close family, close friend, friend, then acquaintance.
func (c *Classifier) Classify(contact string, history []conversation.Message) Level {
	if len(history) == 0 {
		return Acquaintance
	}
	s := c.Stats(history)
	r := c.rules

	switch {
	case s.MessageCount > r.CloseFamilyMessagesOver &&
		(s.PersonalScore > r.CloseFamilyPersonalOver || rules.ContainsAny(strings.ToLower(contact), r.FamilyNameMarkers)):
		return CloseFamily
	case s.MessageCount > r.CloseFriendMessagesOver &&
		(s.PersonalScore > r.CloseFriendPersonalOver || s.CasualScore > r.CloseFriendCasualOver):
		return CloseFriend
	case s.MessageCount > r.FriendMessagesOver:
		return Friend
	default:
		return Acquaintance
	}
}
