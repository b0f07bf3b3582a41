package style

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kalambet/autoreply/internal/conversation"
	"github.com/kalambet/autoreply/internal/rules"
)

const maxCommonGreetings = 5

var (
	abbreviationRe = wordRe(`u|ur|r|n|y|k|lol|brb|ttyl|omg|btw`)
	multiPunctRe   = regexp.MustCompile(`[.!?]{2,}`)

	greetingRes = []*regexp.Regexp{
		wordRe(`hi|hello|hey|hiya|sup|wassup|yo`),
		wordRe(`good morning|good afternoon|good evening|good night`),
		wordRe(`how are you|how r u|what's up|how's it going`),
	}
)

// wordRe matches any of the alternatives as a whole word. RE2's \b only
// treats ASCII as word characters, so the boundary is spelled out to keep
// letters like "ñ" inside the word.
func wordRe(alternatives string) *regexp.Regexp {
	const boundary = `[^\p{L}\p{N}_]`
	return regexp.MustCompile(`(?:^|` + boundary + `)(?:` + alternatives + `)(?:$|` + boundary + `)`)
}

// emojiRanges are the code point blocks counted as emoji.
var emojiRanges = [][2]rune{
	{0x1F600, 0x1F64F},
	{0x1F300, 0x1F5FF},
	{0x1F680, 0x1F6FF},
	{0x1F1E0, 0x1F1FF},
}

// Analyzer infers a Profile from the account owner's own messages.
type Analyzer struct {
	rules rules.StyleRules
}

// NewAnalyzer creates an Analyzer using the given formality word lists.
func NewAnalyzer(r rules.StyleRules) *Analyzer {
	return &Analyzer{rules: r}
}

// Analyze considers only messages with FromMe set. When there are none it
// returns an empty Profile.
func (a *Analyzer) Analyze(history []conversation.Message) Profile {
	msgs := conversation.SelfAuthored(history)
	if len(msgs) == 0 {
		return Profile{}
	}

	all := strings.Join(msgs, " ")
	lower := strings.ToLower(all)

	total := 0
	for _, m := range msgs {
		total += utf8.RuneCountInString(m)
	}
	avg := float64(total) / float64(len(msgs))
	emojis := hasEmoji(all)
	abbrev := abbreviationRe.MatchString(lower)

	return Profile{
		AvgMessageLength:  &avg,
		UsesEmojis:        &emojis,
		UsesAbbreviations: &abbrev,
		PunctuationStyle:  punctuation(all),
		GreetingStyle:     greetings(msgs),
		FormalityLevel:    a.formality(lower),
		ResponsePatterns:  responsePatterns(msgs),
	}
}

func hasEmoji(s string) bool {
	for _, r := range s {
		for _, rg := range emojiRanges {
			if r >= rg[0] && r <= rg[1] {
				return true
			}
		}
	}
	return false
}

func punctuation(all string) *PunctuationStyle {
	return &PunctuationStyle{
		UsesPeriods:             strings.Contains(all, "."),
		UsesExclamation:         strings.Contains(all, "!"),
		UsesQuestionMarks:       strings.Contains(all, "?"),
		UsesMultiplePunctuation: multiPunctRe.MatchString(all),
		UsesEllipsis:            strings.Contains(all, "...") || strings.Contains(all, "…"),
	}
}

func greetings(msgs []string) *GreetingStyle {
	common := []string{}
	seen := make(map[string]struct{})
	matched := 0
	for _, m := range msgs {
		lower := strings.ToLower(m)
		if !isGreeting(lower) {
			continue
		}
		matched++
		if _, ok := seen[lower]; ok || len(common) >= maxCommonGreetings {
			continue
		}
		seen[lower] = struct{}{}
		common = append(common, lower)
	}
	return &GreetingStyle{
		CommonGreetings:   common,
		GreetingFrequency: float64(matched) / float64(len(msgs)),
	}
}

func isGreeting(lower string) bool {
	for _, re := range greetingRes {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

func (a *Analyzer) formality(lower string) Formality {
	formal := rules.CountPresent(lower, a.rules.FormalWords)
	informal := rules.CountPresent(lower, a.rules.InformalWords)
	switch {
	case formal > informal:
		return Formal
	case informal > formal:
		return Informal
	default:
		return Neutral
	}
}

func responsePatterns(msgs []string) *ResponsePatterns {
	var questions, long, short int
	for _, m := range msgs {
		n := utf8.RuneCountInString(m)
		if strings.Contains(m, "?") {
			questions++
		}
		if n > 50 {
			long++
		}
		if n <= 10 {
			short++
		}
	}
	total := float64(len(msgs))
	return &ResponsePatterns{
		AsksQuestions:      float64(questions) / total,
		GivesExplanations:  float64(long) / total,
		UsesShortResponses: float64(short) / total,
	}
}
