package profile

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kalambet/autoreply/internal/style"
)

// Store defines the persistence operations the Manager needs.
// Implemented by FileStore.
type Store interface {
	Load() (style.Profile, error)
	Save(style.Profile) error
	Remove() error
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Manager is the single writer of the style profile within a process.
// Reads are served from a short-lived cache; Merge and Reset run as
// load-modify-save transactions under one lock.
type Manager struct {
	store Store
	clock Clock
	ttl   time.Duration

	mu       sync.Mutex
	cached   *style.Profile
	cachedAt time.Time
}

// NewManager creates a Manager with a 60-second cache TTL.
func NewManager(store Store) *Manager {
	return &Manager{
		store: store,
		clock: realClock{},
		ttl:   60 * time.Second,
	}
}

// NewManagerWithClock creates a Manager with a custom clock (for testing).
func NewManagerWithClock(store Store, clock Clock, ttl time.Duration) *Manager {
	return &Manager{
		store: store,
		clock: clock,
		ttl:   ttl,
	}
}

// GetProfile returns the stored profile, or an empty one if nothing has
// been saved yet.
func (m *Manager) GetProfile() (style.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cached != nil && m.clock.Now().Before(m.cachedAt.Add(m.ttl)) {
		return copyProfile(*m.cached), nil
	}
	p, err := m.store.Load()
	if err != nil {
		return style.Profile{}, fmt.Errorf("loading style profile: %w", err)
	}
	m.remember(p)
	return copyProfile(p), nil
}

// Merge folds update into the stored profile and saves the result. It
// always reloads from the store first so that writes made by other
// processes since the last read are kept. An empty update is not saved.
// The merged profile is returned.
func (m *Manager) Merge(update style.Profile) (style.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, err := m.store.Load()
	if err != nil {
		return style.Profile{}, fmt.Errorf("loading style profile: %w", err)
	}
	if update.IsEmpty() {
		m.remember(current)
		return copyProfile(current), nil
	}

	merged := current.Merge(update)
	if err := m.store.Save(merged); err != nil {
		return style.Profile{}, fmt.Errorf("saving style profile: %w", err)
	}
	m.remember(merged)
	return copyProfile(merged), nil
}

// Reset deletes the stored profile.
func (m *Manager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Remove(); err != nil {
		return err
	}
	m.cached = nil
	return nil
}

// GetSummary returns a one-paragraph description of the stored profile.
func (m *Manager) GetSummary() (string, error) {
	p, err := m.GetProfile()
	if err != nil {
		return "", fmt.Errorf("getting profile for summary: %w", err)
	}
	return Summarize(p), nil
}

func (m *Manager) remember(p style.Profile) {
	cp := copyProfile(p)
	m.cached = &cp
	m.cachedAt = m.clock.Now()
}

// Summarize renders every known dimension of p as short sentences.
func Summarize(p style.Profile) string {
	var parts []string

	if p.FormalityLevel != "" {
		parts = append(parts, fmt.Sprintf("Tone: %s.", p.FormalityLevel))
	}
	if p.AvgMessageLength != nil {
		parts = append(parts, fmt.Sprintf("Average message length: %.0f characters.", *p.AvgMessageLength))
	}
	if p.UsesEmojis != nil {
		parts = append(parts, fmt.Sprintf("Emojis: %s.", yesNo(*p.UsesEmojis)))
	}
	if p.UsesAbbreviations != nil {
		parts = append(parts, fmt.Sprintf("Abbreviations: %s.", yesNo(*p.UsesAbbreviations)))
	}
	if ps := p.PunctuationStyle; ps != nil {
		var marks []string
		if ps.UsesPeriods {
			marks = append(marks, "periods")
		}
		if ps.UsesExclamation {
			marks = append(marks, "exclamation marks")
		}
		if ps.UsesQuestionMarks {
			marks = append(marks, "question marks")
		}
		if ps.UsesMultiplePunctuation {
			marks = append(marks, "repeated punctuation")
		}
		if ps.UsesEllipsis {
			marks = append(marks, "ellipses")
		}
		if len(marks) == 0 {
			parts = append(parts, "Punctuation: rarely used.")
		} else {
			parts = append(parts, fmt.Sprintf("Punctuation: %s.", strings.Join(marks, ", ")))
		}
	}
	if gs := p.GreetingStyle; gs != nil {
		s := fmt.Sprintf("Greets in %.0f%% of messages", gs.GreetingFrequency*100)
		if len(gs.CommonGreetings) > 0 {
			s += fmt.Sprintf(" (e.g. %q)", gs.CommonGreetings[0])
		}
		parts = append(parts, s+".")
	}
	if rp := p.ResponsePatterns; rp != nil {
		parts = append(parts, fmt.Sprintf("Questions: %.0f%%, long messages: %.0f%%, short replies: %.0f%%.",
			rp.AsksQuestions*100, rp.GivesExplanations*100, rp.UsesShortResponses*100))
	}

	if len(parts) == 0 {
		return "Communication style: not yet learned."
	}
	return strings.Join(parts, " ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func copyProfile(p style.Profile) style.Profile {
	cp := p
	if p.AvgMessageLength != nil {
		v := *p.AvgMessageLength
		cp.AvgMessageLength = &v
	}
	if p.UsesEmojis != nil {
		v := *p.UsesEmojis
		cp.UsesEmojis = &v
	}
	if p.UsesAbbreviations != nil {
		v := *p.UsesAbbreviations
		cp.UsesAbbreviations = &v
	}
	if p.PunctuationStyle != nil {
		v := *p.PunctuationStyle
		cp.PunctuationStyle = &v
	}
	if p.GreetingStyle != nil {
		v := *p.GreetingStyle
		if p.GreetingStyle.CommonGreetings != nil {
			v.CommonGreetings = make([]string, len(p.GreetingStyle.CommonGreetings))
			copy(v.CommonGreetings, p.GreetingStyle.CommonGreetings)
		}
		cp.GreetingStyle = &v
	}
	if p.ResponsePatterns != nil {
		v := *p.ResponsePatterns
		cp.ResponsePatterns = &v
	}
	return cp
}
