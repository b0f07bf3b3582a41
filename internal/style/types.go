package style

// Formality is the inferred register of the account owner's messages.
type Formality string

const (
	Formal   Formality = "formal"
	Informal Formality = "informal"
	Neutral  Formality = "neutral"
)

// Profile is the account owner's communication style. Every dimension is
// optional: a nil or empty field means "unknown", never false or zero.
type Profile struct {
	AvgMessageLength  *float64          `json:"avg_message_length,omitempty"`
	UsesEmojis        *bool             `json:"uses_emojis,omitempty"`
	UsesAbbreviations *bool             `json:"uses_abbreviations,omitempty"`
	PunctuationStyle  *PunctuationStyle `json:"punctuation_style,omitempty"`
	GreetingStyle     *GreetingStyle    `json:"greeting_style,omitempty"`
	FormalityLevel    Formality         `json:"formality_level,omitempty" jsonschema:"enum=formal,enum=informal,enum=neutral"`
	ResponsePatterns  *ResponsePatterns `json:"response_patterns,omitempty"`
}

// PunctuationStyle records which punctuation marks appear at all.
type PunctuationStyle struct {
	UsesPeriods             bool `json:"uses_periods"`
	UsesExclamation         bool `json:"uses_exclamation"`
	UsesQuestionMarks       bool `json:"uses_question_marks"`
	UsesMultiplePunctuation bool `json:"uses_multiple_punctuation"`
	UsesEllipsis            bool `json:"uses_ellipsis"`
}

// GreetingStyle holds up to five distinct greeting messages and the share
// of messages that contain a greeting.
type GreetingStyle struct {
	CommonGreetings   []string `json:"common_greetings"`
	GreetingFrequency float64  `json:"greeting_frequency"`
}

// ResponsePatterns holds fractions in [0, 1] over the analyzed messages.
type ResponsePatterns struct {
	AsksQuestions      float64 `json:"asks_questions"`
	GivesExplanations  float64 `json:"gives_explanations"`
	UsesShortResponses float64 `json:"uses_short_responses"`
}

// IsEmpty reports whether no dimension is set.
func (p Profile) IsEmpty() bool {
	return p.AvgMessageLength == nil &&
		p.UsesEmojis == nil &&
		p.UsesAbbreviations == nil &&
		p.PunctuationStyle == nil &&
		p.GreetingStyle == nil &&
		p.FormalityLevel == "" &&
		p.ResponsePatterns == nil
}

// Merge returns p with every dimension set in update overwriting the
// corresponding dimension of p.
func (p Profile) Merge(update Profile) Profile {
	out := p
	if update.AvgMessageLength != nil {
		out.AvgMessageLength = update.AvgMessageLength
	}
	if update.UsesEmojis != nil {
		out.UsesEmojis = update.UsesEmojis
	}
	if update.UsesAbbreviations != nil {
		out.UsesAbbreviations = update.UsesAbbreviations
	}
	if update.PunctuationStyle != nil {
		out.PunctuationStyle = update.PunctuationStyle
	}
	if update.GreetingStyle != nil {
		out.GreetingStyle = update.GreetingStyle
	}
	if update.FormalityLevel != "" {
		out.FormalityLevel = update.FormalityLevel
	}
	if update.ResponsePatterns != nil {
		out.ResponsePatterns = update.ResponsePatterns
	}
	return out
}
