package main

import (
	"log/slog"

	"github.com/kalambet/autoreply/internal/analysis"
	"github.com/kalambet/autoreply/internal/composer"
	"github.com/kalambet/autoreply/internal/config"
	"github.com/kalambet/autoreply/internal/engine"
	"github.com/kalambet/autoreply/internal/fallback"
	"github.com/kalambet/autoreply/internal/profile"
	"github.com/kalambet/autoreply/internal/relationship"
	"github.com/kalambet/autoreply/internal/reply"
	"github.com/kalambet/autoreply/internal/rules"
	"github.com/kalambet/autoreply/internal/storage"
	"github.com/kalambet/autoreply/internal/style"
)

// app holds the components shared by the reply, serve and mcp commands.
type app struct {
	cfg       config.Config
	profile   *profile.Manager
	analyzer  *analysis.Analyzer
	generator *reply.Generator
	model     engine.Generator // nil when no provider is usable
	store     *storage.Store   // nil when reply logging is off or unavailable
}

// newApp wires every component from cfg. It never fails: a broken rule file,
// an unusable provider or an unopenable reply log each degrade with a log line.
func newApp(cfg config.Config) *app {
	set := loadRules(cfg.Rules.Path)

	a := &app{
		cfg:      cfg,
		profile:  profile.NewManager(profile.NewFileStore(cfg.Style.ProfilePath)),
		analyzer: analysis.NewAnalyzer(set.Message),
	}

	classifier := relationship.NewClassifier(set.Relationship)

	model, modelErr := engine.New(engine.Config{
		Provider: cfg.Model.Provider,
		Model:    cfg.Model.Name,
		BaseURL:  cfg.Model.BaseURL,
		APIKey:   cfg.Model.APIKey,
	})
	a.model = model

	gcfg := reply.Config{
		Composer: composer.New(style.NewAnalyzer(set.Style), classifier, a.profile),
		Analyzer: a.analyzer,
		Fallback: fallback.NewResponder(set.Fallback, classifier),
		Model:    model,
		ModelErr: modelErr,
		Timeout:  cfg.Model.Timeout,
	}

	if cfg.Storage.LogReplies {
		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			slog.Warn("reply log unavailable", "error", err)
		} else {
			a.store = store
			gcfg.Recorder = store
		}
	}

	a.generator = reply.New(gcfg)
	return a
}

func loadRules(path string) rules.Set {
	if path == "" {
		return rules.Default()
	}
	set, err := rules.Load(path)
	if err != nil {
		slog.Error("loading rules, using built-in rules", "path", path, "error", err)
		return rules.Default()
	}
	return set
}

// checker returns the model health check when the provider supports one.
func (a *app) checker() engine.Checker {
	if c, ok := a.model.(engine.Checker); ok {
		return c
	}
	return nil
}

func (a *app) modelName() string {
	if a.model == nil {
		return ""
	}
	return a.model.Model()
}

func (a *app) Close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		slog.Warn("closing storage", "error", err)
	}
}
