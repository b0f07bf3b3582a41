package rules

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Set holds every keyword list, threshold and canned reply used by the
// heuristic analyzers and the fallback responder. The zero value is not
// useful; start from Default.
type Set struct {
	Style        StyleRules        `yaml:"style"`
	Relationship RelationshipRules `yaml:"relationship"`
	Message      MessageRules      `yaml:"message"`
	Fallback     FallbackRules     `yaml:"fallback"`
}

// StyleRules drives formality detection.
type StyleRules struct {
	FormalWords   []string `yaml:"formal_words"`
	InformalWords []string `yaml:"informal_words"`
}

// RelationshipRules holds the tier thresholds. Every threshold is exclusive:
// a count must be strictly greater than the value to pass.
type RelationshipRules struct {
	PersonalWords     []string `yaml:"personal_words"`
	CasualWords       []string `yaml:"casual_words"`
	FamilyNameMarkers []string `yaml:"family_name_markers"`

	CloseFamilyMessagesOver int `yaml:"close_family_messages_over"`
	CloseFamilyPersonalOver int `yaml:"close_family_personal_over"`
	CloseFriendMessagesOver int `yaml:"close_friend_messages_over"`
	CloseFriendPersonalOver int `yaml:"close_friend_personal_over"`
	CloseFriendCasualOver   int `yaml:"close_friend_casual_over"`
	FriendMessagesOver      int `yaml:"friend_messages_over"`
}

// MessageRules classifies a single incoming message. QuestionTypes is
// ordered: the first rule with a matching keyword wins.
type MessageRules struct {
	UrgentWords   []string      `yaml:"urgent_words"`
	PositiveWords []string      `yaml:"positive_words"`
	NegativeWords []string      `yaml:"negative_words"`
	QuestionTypes []KeywordRule `yaml:"question_types"`
}

// FallbackRules holds the canned replies. Order lists the trigger names
// in precedence order; the general pool reply is used when none match.
type FallbackRules struct {
	Pools map[string]Pool `yaml:"pools"`
	Order []string        `yaml:"order"`

	GreetingWords  []string `yaml:"greeting_words"`
	WellbeingWords []string `yaml:"wellbeing_words"`
	CallWords      []string `yaml:"call_words"`
	UrgentWords    []string `yaml:"urgent_words"`

	WellbeingReply string `yaml:"wellbeing_reply"`
	UrgentReply    string `yaml:"urgent_reply"`
	QuestionReply  string `yaml:"question_reply"`
}

// Pool is the set of replies for one relationship tier. Greetings may
// contain the {contact} placeholder.
type Pool struct {
	Greetings []string `yaml:"greetings"`
	General   []string `yaml:"general"`
	Call      string   `yaml:"call"`
}

// KeywordRule labels text that contains any of its keywords.
type KeywordRule struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// Fallback trigger names accepted in FallbackRules.Order.
const (
	TriggerGreeting  = "greeting"
	TriggerWellbeing = "wellbeing"
	TriggerCall      = "call"
	TriggerUrgent    = "urgent"
	TriggerQuestion  = "question"
)

// DefaultPool is the pool key used for tiers without a dedicated pool.
const DefaultPool = "default"

// Load reads a YAML rule file and applies it over Default. Keys absent
// from the file keep their default values. An empty path returns Default.
func Load(path string) (Set, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("reading rules file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Set{}, fmt.Errorf("parsing rules file %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Set{}, fmt.Errorf("rules file %s: %w", path, err)
	}
	return s, nil
}

// Validate checks that the set can drive the fallback responder.
func (s Set) Validate() error {
	def, ok := s.Fallback.Pools[DefaultPool]
	if !ok {
		return errors.New("fallback.pools.default is required")
	}
	if len(def.Greetings) == 0 || len(def.General) == 0 {
		return errors.New("fallback.pools.default needs at least one greeting and one general reply")
	}
	for _, name := range s.Fallback.Order {
		switch name {
		case TriggerGreeting, TriggerWellbeing, TriggerCall, TriggerUrgent, TriggerQuestion:
		default:
			return fmt.Errorf("unknown fallback trigger %q", name)
		}
	}
	r := s.Relationship
	for _, v := range []int{r.CloseFamilyMessagesOver, r.CloseFamilyPersonalOver, r.CloseFriendMessagesOver, r.CloseFriendPersonalOver, r.CloseFriendCasualOver, r.FriendMessagesOver} {
		if v < 0 {
			return errors.New("relationship thresholds must be >= 0")
		}
	}
	return nil
}

// ContainsAny reports whether any word occurs in lower as a substring.
// Callers pass text already lowercased.
func ContainsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// CountPresent returns how many distinct words occur in lower at least once.
func CountPresent(lower string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(lower, w) {
			n++
		}
	}
	return n
}

// FirstMatch returns the label of the first rule in table with a keyword
// present in lower.
func FirstMatch(lower string, table []KeywordRule) (string, bool) {
	for _, r := range table {
		if ContainsAny(lower, r.Keywords) {
			return r.Label, true
		}
	}
	return "", false
}
