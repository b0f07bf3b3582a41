package reply

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/kalambet/autoreply/internal/analysis"
	"github.com/kalambet/autoreply/internal/composer"
	"github.com/kalambet/autoreply/internal/conversation"
	"github.com/kalambet/autoreply/internal/engine"
	"github.com/kalambet/autoreply/internal/fallback"
	"github.com/kalambet/autoreply/internal/relationship"
	"github.com/kalambet/autoreply/internal/storage"
)

// DefaultTimeout bounds a single model call.
const DefaultTimeout = 15 * time.Second

// Source says which path produced a reply.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Recorder persists generated replies. Implemented by storage.Store.
type Recorder interface {
	SaveReply(ctx context.Context, r storage.Reply) (storage.Reply, error)
}

// Result is a generated reply plus the signals it was derived from.
type Result struct {
	Text         string             `json:"reply"`
	Source       Source             `json:"source"`
	Model        string             `json:"model,omitempty"`
	Relationship relationship.Level `json:"relationship"`
	Analysis     analysis.Result    `json:"analysis"`
	// Err is why the fallback responder was used. It is nil for model replies.
	Err        error `json:"-"`
	DurationMs int64 `json:"duration_ms"`
}

// Config wires a Generator. Model may be nil when no provider is usable, in
// which case ModelErr says why and every reply comes from the fallback.
type Config struct {
	Composer *composer.Composer
	Analyzer *analysis.Analyzer
	Fallback *fallback.Responder
	Model    engine.Generator
	ModelErr error
	Recorder Recorder
	Timeout  time.Duration
}

// Generator produces one reply per incoming message: a model reply when the
// backend answers, otherwise a canned fallback reply.
type Generator struct {
	cfg Config
}

// New creates a Generator. A zero Timeout selects DefaultTimeout.
func New(cfg Config) *Generator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Model == nil && cfg.ModelErr == nil {
		cfg.ModelErr = engine.ErrNotConfigured
	}
	return &Generator{cfg: cfg}
}

// Generate replies to message from contact. It never returns an error:
// every model failure is logged and answered by the fallback responder.
//  1. Classify the incoming message
//  2. Build the conversation context (updates the style profile)
//  3. Call the model with a bounded timeout, no retry
//  4. Fall back on configuration errors, call errors or empty text
func (g *Generator) Generate(ctx context.Context, message, contact string, history []conversation.Message) (res Result) {
	start := time.Now()
	defer func() {
		res.DurationMs = time.Since(start).Milliseconds()
		g.record(ctx, message, contact, res)
	}()

	res.Analysis = g.cfg.Analyzer.Analyze(message)
	built := g.cfg.Composer.BuildContext(contact, history)
	res.Relationship = built.Relationship

	if g.cfg.Model == nil {
		slog.Error("model unavailable, using fallback reply", "error", g.cfg.ModelErr)
		return g.fallback(res, message, contact, history, g.cfg.ModelErr)
	}
	res.Model = g.cfg.Model.Model()

	prompt := composer.BuildPrompt(message, contact, built, res.Analysis)
	slog.Debug("prompt built",
		"relationship", built.Relationship,
		"estimated_tokens", composer.EstimateTokens(prompt),
	)

	callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	text, err := g.cfg.Model.Generate(callCtx, prompt)
	if err == nil {
		text = strings.TrimSpace(text)
		if text == "" {
			err = engine.ErrEmptyResponse
		}
	}
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			slog.Error("model call timed out, using fallback reply", "timeout", g.cfg.Timeout, "model", res.Model)
		} else {
			slog.Error("model call failed, using fallback reply", "error", err, "model", res.Model)
		}
		return g.fallback(res, message, contact, history, err)
	}

	res.Text = text
	res.Source = SourceModel
	return res
}

func (g *Generator) fallback(res Result, message, contact string, history []conversation.Message, cause error) Result {
	res.Text = strings.TrimSpace(g.cfg.Fallback.Respond(message, contact, history))
	res.Source = SourceFallback
	res.Err = cause
	return res
}

// record logs the reply. Failures are logged and never affect the reply.
func (g *Generator) record(ctx context.Context, message, contact string, res Result) {
	if g.cfg.Recorder == nil {
		return
	}
	if ctx.Err() != nil {
		// The caller is gone and the reply was never delivered.
		slog.Debug("not recording cancelled reply", "contact", contact)
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	r := storage.Reply{
		Contact:      contact,
		Message:      message,
		Reply:        res.Text,
		Source:       string(res.Source),
		Model:        res.Model,
		Relationship: string(res.Relationship),
		Urgency:      string(res.Analysis.Urgency),
		Sentiment:    string(res.Analysis.Sentiment),
		QuestionType: res.Analysis.QuestionType,
	}
	if res.Err != nil {
		r.Error = res.Err.Error()
	}
	if _, err := g.cfg.Recorder.SaveReply(ctx, r); err != nil {
		slog.Warn("failed to record reply", "error", err)
	}
}
