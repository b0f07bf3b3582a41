package composer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kalambet/autoreply/internal/analysis"
	"github.com/kalambet/autoreply/internal/conversation"
	"github.com/kalambet/autoreply/internal/relationship"
	"github.com/kalambet/autoreply/internal/style"
)

const (
	closeTranscriptSize   = 8
	defaultTranscriptSize = 5
	maxTranscriptRunes    = 150
)

// Personality is the fixed preamble of every prompt.
const Personality = `You are replying as the owner of this chat account. Your replies should be:
- Natural and conversational, in the owner's established communication style
- Brief (usually 1-2 sentences, at most 3) unless the conversation needs more
- Appropriate to the relationship with the contact
- In the same language as the incoming message
- Written like a real person, never like an AI assistant
- Consistent with the owner's past messages`

// StyleStore persists the cumulative style profile. Implemented by
// profile.Manager.
type StyleStore interface {
	Merge(update style.Profile) (style.Profile, error)
}

// Context is the rendered conversation context plus the tier it was built for.
type Context struct {
	Text         string
	Relationship relationship.Level
}

// Composer builds the conversation context and the final model prompt.
type Composer struct {
	analyzer   *style.Analyzer
	classifier *relationship.Classifier
	store      StyleStore
}

// New creates a Composer. store may be nil, in which case the style profile
// is neither loaded nor saved and only the fresh analysis is rendered.
func New(analyzer *style.Analyzer, classifier *relationship.Classifier, store StyleStore) *Composer {
	return &Composer{analyzer: analyzer, classifier: classifier, store: store}
}

// BuildContext renders the context block for contact. With a non-empty
// history it analyzes the owner's style, merges it into the stored profile
// and renders the merged profile together with a recent transcript.
func (c *Composer) BuildContext(contact string, history []conversation.Message) Context {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are chatting with %s.", contact)

	if len(history) == 0 {
		sb.WriteString(" This is the start of your conversation.")
		return Context{Text: sb.String(), Relationship: relationship.Acquaintance}
	}

	level := c.classifier.Classify(contact, history)
	profile := c.mergeStyle(c.analyzer.Analyze(history))

	fmt.Fprintf(&sb, "\n\nRelationship level: %s", level)
	if section := renderStyle(profile); section != "" {
		sb.WriteString("\n\nYour communication style analysis:")
		sb.WriteString(section)
	}

	size := defaultTranscriptSize
	if level.Close() {
		size = closeTranscriptSize
	}
	sb.WriteString("\n\nRecent conversation:\n")
	for _, m := range conversation.Recent(history, size) {
		sender := contact
		if m.FromMe {
			sender = "You"
		}
		fmt.Fprintf(&sb, "%s: %s\n", sender, Truncate(m.Text, maxTranscriptRunes))
	}

	return Context{Text: sb.String(), Relationship: level}
}

// mergeStyle folds fresh into the stored profile. Store failures are logged
// and the fresh analysis is used on its own.
func (c *Composer) mergeStyle(fresh style.Profile) style.Profile {
	if c.store == nil {
		return fresh
	}
	merged, err := c.store.Merge(fresh)
	if err != nil {
		slog.Warn("style profile update failed, using current analysis only", "error", err)
		return fresh
	}
	return merged
}

func renderStyle(p style.Profile) string {
	var sb strings.Builder
	if p.FormalityLevel != "" {
		fmt.Fprintf(&sb, "\n- Formality: %s", p.FormalityLevel)
	}
	if p.UsesEmojis != nil {
		fmt.Fprintf(&sb, "\n- Emoji usage: %s", yesNo(*p.UsesEmojis))
	}
	if p.UsesAbbreviations != nil {
		fmt.Fprintf(&sb, "\n- Abbreviations: %s", yesNo(*p.UsesAbbreviations))
	}
	if p.AvgMessageLength != nil {
		fmt.Fprintf(&sb, "\n- Average message length: %.0f characters", *p.AvgMessageLength)
	}
	return sb.String()
}

// BuildPrompt assembles the full model prompt for an incoming message.
func BuildPrompt(message, contact string, ctx Context, a analysis.Result) string {
	var sb strings.Builder
	sb.WriteString(Personality)
	sb.WriteString("\n\n")
	sb.WriteString(ctx.Text)
	sb.WriteString("\n\nMessage analysis:\n")
	fmt.Fprintf(&sb, "- Urgency level: %s\n", a.Urgency)
	fmt.Fprintf(&sb, "- Sentiment: %s\n", a.Sentiment)
	fmt.Fprintf(&sb, "- Question type: %s\n", a.QuestionType)
	fmt.Fprintf(&sb, "\nNew message from %s: \"%s\"\n\n", contact, message)
	sb.WriteString("Reply naturally as the account owner, in your established style:\n")
	sb.WriteString("- Match the formality of your past messages\n")
	sb.WriteString("- Use similar punctuation\n")
	sb.WriteString("- Keep emoji usage consistent\n")
	fmt.Fprintf(&sb, "- Take your relationship with %s into account\n", contact)
	sb.WriteString("- Never mention being an AI or analyzing messages\n")
	sb.WriteString("- If asked about availability, answer according to the relationship\n")
	sb.WriteString("- Keep the reply appropriate to the urgency and sentiment of the message")
	return sb.String()
}

// Truncate shortens s to limit characters followed by "..." when it is longer.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}

// EstimateTokens provides a rough token count using 4 chars per token heuristic.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
